package mergeerr

import (
	"errors"
	"testing"
)

func TestErrorStringForms(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{NewHead("append", "#/list", "head must be an array"), "'append' merge strategy: head must be an array: #/list"},
		{NewBase("version", "", "base history entry is missing a 'value' key"), "'version' merge strategy: base history entry is missing a 'value' key"},
		{NewSchema("", "#/properties/x", "can't descend to allOf/anyOf"), "can't descend to allOf/anyOf: #/properties/x"},
		{NewSchema("", "", "unknown merge strategy"), "unknown merge strategy"},
	}
	for _, c := range cases {
		if got := c.err.Error(); got != c.want {
			t.Errorf("Error() = %q, want %q", got, c.want)
		}
	}
}

func TestErrorsAsDistinguishesKinds(t *testing.T) {
	var headErr *HeadInstanceError
	var baseErr *BaseInstanceError
	var schemaErr *SchemaError

	err := error(NewHead("objectMerge", "#", "head must be an object"))
	if !errors.As(err, &headErr) {
		t.Error("expected errors.As to match *HeadInstanceError")
	}
	if errors.As(err, &baseErr) || errors.As(err, &schemaErr) {
		t.Error("head error should not match the other kinds")
	}
	if headErr.Strategy != "objectMerge" || headErr.Ref != "#" {
		t.Errorf("unexpected fields: %+v", headErr)
	}
}
