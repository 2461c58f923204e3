package merge

import (
	"testing"

	"github.com/avian2/jsonmerge/jsonvalue"
	"github.com/avian2/jsonmerge/jsvalidator"
	"github.com/avian2/jsonmerge/objclass"
	"github.com/avian2/jsonmerge/schemaref"
)

// newTestWalker builds a Walker over schema, backed by a real jsvalidator
// instance, for exercising the walker/descender/strategy machinery the way
// a Merger.Merge call would.
func newTestWalker(t *testing.T, schema map[string]any, base, head any) *Walker {
	t.Helper()
	store := schemaref.NewStore("jsonmerge://root", schema)
	v, err := jsvalidator.New(store, schema)
	if err != nil {
		t.Fatalf("jsvalidator.New: %v", err)
	}

	baseVal := jsonvalue.Undefined("#")
	if base != nil {
		baseVal = jsonvalue.New(base)
	}
	headVal := jsonvalue.New(head)

	return NewWalker(v, NewRegistry(nil), objclass.NewMenu("", nil), baseVal, headVal, nil)
}

// valOrUndef wraps v as a defined Value, or the root undefined Value when v
// is nil - the same "nil base means no prior document" convention Merger.Merge
// uses.
func valOrUndef(v any) jsonvalue.Value {
	if v == nil {
		return jsonvalue.Undefined("#")
	}
	return jsonvalue.New(v)
}

func mustDescend(t *testing.T, schema map[string]any, base, head any) any {
	t.Helper()
	w := newTestWalker(t, schema, base, head)
	baseVal := jsonvalue.Undefined("#")
	if base != nil {
		baseVal = jsonvalue.New(base)
	}
	result, err := w.Descend(jsonvalue.NewAt(schema, "#"), baseVal, jsonvalue.New(head), nil)
	if err != nil {
		t.Fatalf("Descend: %v", err)
	}
	return result.Val
}
