package jsvalidator

import (
	"testing"

	"github.com/avian2/jsonmerge/schemaref"
)

func newTestValidator(t *testing.T, schema map[string]any) *Validator {
	t.Helper()
	store := schemaref.NewStore(rootURI, schema)
	v, err := New(store, schema)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return v
}

func TestIsType(t *testing.T) {
	v := newTestValidator(t, map[string]any{"type": "object"})

	cases := []struct {
		value any
		typ   string
		want  bool
	}{
		{map[string]any{}, "object", true},
		{[]any{}, "array", true},
		{"x", "string", true},
		{true, "boolean", true},
		{nil, "null", true},
		{float64(5), "integer", true},
		{float64(5.5), "integer", false},
		{float64(5.5), "number", true},
		{"x", "object", false},
	}
	for _, c := range cases {
		if got := v.IsType(c.value, c.typ); got != c.want {
			t.Errorf("IsType(%#v, %q) = %v, want %v", c.value, c.typ, got, c.want)
		}
	}
}

func TestIterErrorsValid(t *testing.T) {
	schema := map[string]any{
		"type":       "object",
		"properties": map[string]any{"name": map[string]any{"type": "string"}},
		"required":   []any{"name"},
	}
	v := newTestValidator(t, schema)

	issues, err := v.IterErrors(map[string]any{"name": "alice"}, "#")
	if err != nil {
		t.Fatalf("IterErrors: %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("expected no issues, got %v", issues)
	}
}

func TestIterErrorsInvalid(t *testing.T) {
	schema := map[string]any{
		"type":       "object",
		"properties": map[string]any{"name": map[string]any{"type": "string"}},
		"required":   []any{"name"},
	}
	v := newTestValidator(t, schema)

	issues, err := v.IterErrors(map[string]any{}, "#")
	if err != nil {
		t.Fatalf("IterErrors: %v", err)
	}
	if len(issues) == 0 {
		t.Errorf("expected at least one issue for missing required property")
	}
}

func TestIterErrorsSubschemaRef(t *testing.T) {
	schema := map[string]any{
		"$defs": map[string]any{
			"widget": map[string]any{"type": "string"},
		},
	}
	v := newTestValidator(t, schema)

	issues, err := v.IterErrors("hello", "#/$defs/widget")
	if err != nil {
		t.Fatalf("IterErrors: %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("expected valid string, got issues %v", issues)
	}

	issues, err = v.IterErrors(float64(5), "#/$defs/widget")
	if err != nil {
		t.Fatalf("IterErrors: %v", err)
	}
	if len(issues) == 0 {
		t.Errorf("expected issue validating a number against a string schema")
	}
}
