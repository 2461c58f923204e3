package merge

import (
	"reflect"
	"testing"

	"github.com/avian2/jsonmerge/jsonvalue"
)

func TestObjectMergeDefaultDeepMerges(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name": map[string]any{"type": "string"},
			"address": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"city": map[string]any{"type": "string"},
					"zip":  map[string]any{"type": "string"},
				},
			},
		},
	}
	base := map[string]any{
		"name":    "old",
		"address": map[string]any{"city": "Ljubljana", "zip": "1000"},
	}
	head := map[string]any{
		"address": map[string]any{"city": "Maribor"},
	}

	got := mustDescend(t, schema, base, head)
	want := map[string]any{
		"name":    "old",
		"address": map[string]any{"city": "Maribor", "zip": "1000"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func TestObjectMergePreservesBaseKeyOrderAndAppendsNew(t *testing.T) {
	schema := map[string]any{"type": "object"}
	w := newTestWalker(t, schema, nil, nil)

	base := jsonvalue.Value{Val: &jsonvalue.OrderedMap{Keys: []string{"b", "a"}, M: map[string]any{"b": 1, "a": 2}}, Ref: "#"}
	head := jsonvalue.New(map[string]any{"c": 3})

	result, err := w.Descend(jsonvalue.NewAt(schema, "#"), base, head, nil)
	if err != nil {
		t.Fatalf("Descend: %v", err)
	}
	om, ok := result.Val.(*jsonvalue.OrderedMap)
	if !ok {
		t.Fatalf("result = %T, want *jsonvalue.OrderedMap", result.Val)
	}
	want := []string{"b", "a", "c"}
	if !reflect.DeepEqual(om.Keys, want) {
		t.Errorf("order = %v, want %v", om.Keys, want)
	}
}

func TestObjectMergeHeadMustBeObject(t *testing.T) {
	// objectMerge is named explicitly: with no mergeStrategy the instance
	// walk picks overwrite for a non-object head and never reaches objectMerge.
	schema := map[string]any{"type": "object", "mergeStrategy": "objectMerge"}
	w := newTestWalker(t, schema, nil, "not an object")
	_, err := w.Descend(jsonvalue.NewAt(schema, "#"), jsonvalue.Undefined("#"), jsonvalue.New("not an object"), nil)
	if err == nil {
		t.Fatal("expected error when head is not an object")
	}
}

func TestObjectMergePatternPropertiesTieBreakIsDeterministic(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"patternProperties": map[string]any{
			"^a": map[string]any{"mergeStrategy": "overwrite"},
			"^ab": map[string]any{"mergeStrategy": "discard"},
		},
	}
	// newTestWalker builds the schema from a plain map[string]any with no
	// recorded patternProperties order (the shape a Merger.CacheSchema
	// document has too), so the tie-break between "^a" and "^ab" (both
	// match "abc") must still be stable across runs rather than following
	// Go's randomized map iteration.
	for i := 0; i < 5; i++ {
		base := map[string]any{"abc": "base"}
		head := map[string]any{"abc": "head"}
		got := mustDescend(t, schema, base, head)
		if got.(map[string]any)["abc"] != "head" {
			t.Fatalf("run %d: abc = %v, want head (sorted tie-break picks \"^a\" before \"^ab\")", i, got.(map[string]any)["abc"])
		}
	}
}

func TestObjectMergeDeletesKeyWhenDiscardedByHead(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"secret": map[string]any{"mergeStrategy": "discard"},
		},
	}
	// base has no "secret", so discard yields undefined for it and
	// objectMerge leaves the key out of the result.
	base := map[string]any{"kept": "k"}
	head := map[string]any{"secret": "s2", "kept": "k2"}

	got := mustDescend(t, schema, base, head)
	m, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("got %T, want map[string]any", got)
	}
	if _, has := m["secret"]; has {
		t.Errorf("expected 'secret' to be discarded, got %v", m["secret"])
	}
	if m["kept"] != "k2" {
		t.Errorf("kept = %v, want k2", m["kept"])
	}
}
