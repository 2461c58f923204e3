package jsonvalue

import (
	"reflect"
	"testing"
)

func TestEscapeToken(t *testing.T) {
	cases := map[string]string{
		"plain": "plain",
		"a/b":   "a~1b",
		"a~b":   "a~0b",
		"a~/b":  "a~0~1b",
		"a/~b":  "a~1~0b",
	}
	for in, want := range cases {
		if got := EscapeToken(in); got != want {
			t.Errorf("EscapeToken(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestKeyEscapesRef(t *testing.T) {
	v := New(map[string]any{"a/b": map[string]any{"c~d": 1.0}})
	sub := v.Key("a/b").Key("c~d")
	if sub.Ref != "#/a~1b/c~0d" {
		t.Errorf("ref = %q, want #/a~1b/c~0d", sub.Ref)
	}
	if sub.Val != 1.0 {
		t.Errorf("val = %v, want 1.0", sub.Val)
	}
}

func TestKeyUndefined(t *testing.T) {
	v := New(map[string]any{"a": 1.0})
	sub := v.Key("missing")
	if !sub.IsUndef() {
		t.Errorf("expected undefined for missing key")
	}
	if sub.Ref != "#/missing" {
		t.Errorf("ref = %q, want #/missing", sub.Ref)
	}
}

func TestUndefinedPropagatesThroughKey(t *testing.T) {
	u := Undefined("#/x")
	sub := u.Key("y")
	if !sub.IsUndef() {
		t.Errorf("expected undefined to stay undefined")
	}
	if sub.Ref != "#/x/y" {
		t.Errorf("ref = %q, want #/x/y", sub.Ref)
	}
}

func TestResolveRoundTrip(t *testing.T) {
	doc := New(map[string]any{
		"buyer": map[string]any{
			"id": map[string]any{"name": "Test"},
		},
		"list": []any{"a", "b", "c"},
	})

	got := doc.Resolve("/buyer/id/name")
	if got.Val != "Test" {
		t.Errorf("Resolve(/buyer/id/name) = %v, want Test", got.Val)
	}

	got2 := doc.Resolve("/list/1")
	if got2.Val != "b" {
		t.Errorf("Resolve(/list/1) = %v, want b", got2.Val)
	}
}

func TestResolveEscapedKey(t *testing.T) {
	doc := New(map[string]any{"a/b": map[string]any{"c~d": 42.0}})
	got := doc.Resolve("/a~1b/c~0d")
	if got.Val != 42.0 {
		t.Errorf("Resolve with escapes = %v, want 42", got.Val)
	}
}

func TestResolveMissingReturnsUndef(t *testing.T) {
	doc := New(map[string]any{"a": 1.0})
	got := doc.Resolve("/b/c")
	if !got.IsUndef() {
		t.Errorf("expected undefined for missing path")
	}
}

func TestIsObjectIsArray(t *testing.T) {
	obj := New(map[string]any{})
	arr := New([]any{})
	scalar := New("x")

	if !obj.IsObject() || obj.IsArray() {
		t.Errorf("object classification wrong")
	}
	if !arr.IsArray() || arr.IsObject() {
		t.Errorf("array classification wrong")
	}
	if scalar.IsObject() || scalar.IsArray() {
		t.Errorf("scalar misclassified")
	}
}

func TestDecodeJSONScalarsAndNesting(t *testing.T) {
	root, err := DecodeJSON([]byte(`{"n": 5, "f": 1.5, "b": true, "s": "x", "z": null, "a": [1, {"k": 2}]}`))
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if got := root.Key("n").Val; got != float64(5) {
		t.Errorf("n = %v (%T), want 5", got, got)
	}
	if got := root.Key("f").Val; got != 1.5 {
		t.Errorf("f = %v, want 1.5", got)
	}
	if got := root.Key("b").Val; got != true {
		t.Errorf("b = %v, want true", got)
	}
	if got := root.Key("z"); got.IsUndef() || got.Val != nil {
		t.Errorf("z = %#v, want JSON null", got)
	}
	if got := root.Key("a").Index(1).Key("k").Val; got != float64(2) {
		t.Errorf("a[1].k = %v, want 2", got)
	}
}

func TestCollectOrderRecordsDeclarationOrder(t *testing.T) {
	doc := []byte(`{"patternProperties":{"^b":{},"^a":{},"^c":{}}}`)
	root, err := DecodeJSON(doc)
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	order := CollectOrder(root)
	got, ok := order["#/patternProperties"]
	if !ok {
		t.Fatalf("no order recorded for #/patternProperties")
	}
	want := []string{"^b", "^a", "^c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}
