package merge

import (
	"reflect"
	"testing"

	"github.com/avian2/jsonmerge/jsonvalue"
)

func TestVersionAccumulatesHistoryAndDedups(t *testing.T) {
	schema := map[string]any{"mergeStrategy": "version"}

	w := newTestWalker(t, schema, nil, nil)
	step := func(base any, head any) any {
		r, err := w.Descend(jsonvalue.NewAt(schema, "#"), valOrUndef(base), jsonvalue.New(head), nil)
		if err != nil {
			t.Fatalf("Descend: %v", err)
		}
		return r.Val
	}

	v1 := step(nil, "a")
	v2 := step(v1, "b")
	v3 := step(v2, "b")

	want := []any{
		map[string]any{"value": "a"},
		map[string]any{"value": "b"},
	}
	if !reflect.DeepEqual(v3, want) {
		t.Errorf("history = %#v, want %#v", v3, want)
	}
}

func TestVersionLimitTruncates(t *testing.T) {
	schema := map[string]any{
		"mergeStrategy": "version",
		"mergeOptions":  map[string]any{"limit": float64(2), "ignoreDups": false},
	}
	w := newTestWalker(t, schema, nil, nil)

	base := any(nil)
	for _, head := range []string{"a", "b", "c"} {
		r, err := w.Descend(jsonvalue.NewAt(schema, "#"), valOrUndef(base), jsonvalue.New(head), nil)
		if err != nil {
			t.Fatalf("Descend: %v", err)
		}
		base = r.Val
	}

	want := []any{
		map[string]any{"value": "b"},
		map[string]any{"value": "c"},
	}
	if !reflect.DeepEqual(base, want) {
		t.Errorf("history = %#v, want %#v", base, want)
	}
}

func TestVersionGetSchema(t *testing.T) {
	schema := map[string]any{
		"mergeStrategy": "version",
		"type":          "string",
	}
	w := newTestWalker(t, schema, nil, "x")
	got, err := w.DescendSchema(jsonvalue.NewAt(schema, "#"), nil)
	if err != nil {
		t.Fatalf("DescendSchema: %v", err)
	}
	m, ok := got.Map()
	if !ok {
		t.Fatalf("got %T, want map", got.Val)
	}
	if m["type"] != "array" {
		t.Errorf("type = %v, want array", m["type"])
	}
	items, ok := m["items"].(map[string]any)
	if !ok {
		t.Fatalf("items = %T, want map", m["items"])
	}
	props, ok := items["properties"].(map[string]any)
	if !ok {
		t.Fatalf("items.properties = %T, want map", items["properties"])
	}
	if _, ok := props["value"]; !ok {
		t.Errorf("items.properties missing 'value'")
	}
}
