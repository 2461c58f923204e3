package merge

import (
	"testing"

	"github.com/avian2/jsonmerge/jsonvalue"
)

func TestDiscardKeepsBaseWhenPresent(t *testing.T) {
	schema := map[string]any{"mergeStrategy": "discard"}
	got := mustDescend(t, schema, "old", "new")
	if got != "old" {
		t.Errorf("got %v, want %q", got, "old")
	}
}

func TestDiscardDropsHeadWhenBaseUndefined(t *testing.T) {
	schema := map[string]any{"mergeStrategy": "discard"}
	w := newTestWalker(t, schema, nil, "new")
	result, err := w.Descend(jsonvalue.NewAt(schema, "#"), jsonvalue.Undefined("#"), jsonvalue.New("new"), nil)
	if err != nil {
		t.Fatalf("Descend: %v", err)
	}
	if !result.IsUndef() {
		t.Errorf("got %v, want undefined", result.Val)
	}
}

func TestDiscardKeepIfUndef(t *testing.T) {
	schema := map[string]any{
		"mergeStrategy": "discard",
		"mergeOptions":  map[string]any{"keepIfUndef": true},
	}
	got := mustDescend(t, schema, nil, "first")
	if got != "first" {
		t.Errorf("got %v, want %q", got, "first")
	}

	// Once base is set, subsequent heads are still discarded.
	got2 := mustDescend(t, schema, "first", "second")
	if got2 != "first" {
		t.Errorf("got %v, want %q", got2, "first")
	}
}
