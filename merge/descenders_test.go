package merge

import (
	"testing"

	"github.com/avian2/jsonmerge/jsonvalue"
)

func TestOneOfDispatchesToMatchingBranch(t *testing.T) {
	schema := map[string]any{
		"oneOf": []any{
			map[string]any{"type": "array", "mergeStrategy": "append"},
			map[string]any{"type": "object"},
		},
	}

	arrGot := mustDescend(t, schema, []any{float64(1)}, []any{float64(2)})
	if want := []any{float64(1), float64(2)}; !deepEqualAny(arrGot, want) {
		t.Errorf("array branch: got %#v, want %#v", arrGot, want)
	}

	objGot := mustDescend(t, schema, map[string]any{"a": float64(1)}, map[string]any{"b": float64(2)})
	if want := map[string]any{"a": float64(1), "b": float64(2)}; !deepEqualAny(objGot, want) {
		t.Errorf("object branch: got %#v, want %#v", objGot, want)
	}
}

func TestOneOfNoMatchIsHeadError(t *testing.T) {
	schema := map[string]any{
		"oneOf": []any{
			map[string]any{"type": "array", "mergeStrategy": "append"},
			map[string]any{"type": "object"},
		},
	}
	w := newTestWalker(t, schema, []any{float64(1)}, map[string]any{"b": float64(2)})
	_, err := w.Descend(jsonvalue.NewAt(schema, "#"), jsonvalue.New([]any{float64(1)}), jsonvalue.New(map[string]any{"b": float64(2)}), nil)
	if err == nil {
		t.Fatal("expected head error when base and head validate against different branches")
	}
}

func TestOneOfExplicitStrategyWins(t *testing.T) {
	schema := map[string]any{
		"mergeStrategy": "overwrite",
		"oneOf": []any{
			map[string]any{"type": "string"},
		},
	}
	got := mustDescend(t, schema, "old", float64(5))
	if got != float64(5) {
		t.Errorf("got %v, want 5 (overwrite, oneOf ignored)", got)
	}
}

func TestAnyOfWithoutOverwriteIsSchemaError(t *testing.T) {
	schema := map[string]any{
		"anyOf": []any{
			map[string]any{"type": "string"},
			map[string]any{"type": "number"},
		},
	}
	w := newTestWalker(t, schema, nil, "x")
	_, err := w.Descend(jsonvalue.NewAt(schema, "#"), jsonvalue.Undefined("#"), jsonvalue.New("x"), nil)
	if err == nil {
		t.Fatal("expected schema error for anyOf without an explicit overwrite strategy")
	}
}

func TestAnyOfWithOverwritePassesThrough(t *testing.T) {
	schema := map[string]any{
		"mergeStrategy": "overwrite",
		"anyOf": []any{
			map[string]any{"type": "string"},
			map[string]any{"type": "number"},
		},
	}
	got := mustDescend(t, schema, "old", "new")
	if got != "new" {
		t.Errorf("got %v, want new", got)
	}
}

func TestRefDescenderFollowsReferencedSchema(t *testing.T) {
	schema := map[string]any{
		"$defs": map[string]any{
			"widget": map[string]any{"mergeStrategy": "append"},
		},
		"$ref": "#/$defs/widget",
	}
	got := mustDescend(t, schema, []any{float64(1)}, []any{float64(2)})
	want := []any{float64(1), float64(2)}
	if !deepEqualAny(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func deepEqualAny(a, b any) bool {
	return jsonvalue.DeepEqual(a, b)
}
