package schemaref

import "testing"

func TestResolveFragment(t *testing.T) {
	doc := map[string]any{
		"$defs": map[string]any{
			"widget": map[string]any{"type": "object"},
		},
	}
	store := NewStore("", doc)
	r := NewScoped(store, "")

	node, pop, err := r.Resolving("#/$defs/widget")
	defer pop()
	if err != nil {
		t.Fatalf("Resolving failed: %v", err)
	}
	if node["type"] != "object" {
		t.Errorf("resolved node = %v, want type object", node)
	}
}

func TestScopePushPop(t *testing.T) {
	store := NewStore("http://example.com/schema.json", map[string]any{})
	r := NewScoped(store, "http://example.com/schema.json")
	if r.BaseURI() != "http://example.com/schema.json" {
		t.Fatalf("unexpected base uri: %s", r.BaseURI())
	}

	pop := r.PushScope("#/$defs/x")
	if r.BaseURI() != "http://example.com/schema.json" {
		t.Errorf("pure-fragment ref should not change base uri, got %s", r.BaseURI())
	}
	pop()
	if r.BaseURI() != "http://example.com/schema.json" {
		t.Errorf("pop did not restore base uri")
	}
}

func TestIsRemoteRef(t *testing.T) {
	store := NewStore("http://example.com/schema.json", map[string]any{})
	r := NewScoped(store, "http://example.com/schema.json")
	if r.IsRemoteRef("#/$defs/widget") {
		t.Errorf("local fragment ref misclassified as remote")
	}
	if !r.IsRemoteRef("http://other.example.com/other.json#/x") {
		t.Errorf("cross-document ref not classified as remote")
	}
}

func TestResolvingUnknownRefErrors(t *testing.T) {
	store := NewStore("", map[string]any{})
	r := NewScoped(store, "")
	_, pop, err := r.Resolving("#/$defs/missing")
	defer pop()
	if err == nil {
		t.Fatalf("expected error resolving missing ref")
	}
}

func TestTwoScopedResolversShareStoreIndependentScopes(t *testing.T) {
	store := NewStore("root", map[string]any{})
	store.Cache("other", map[string]any{"k": "v"})

	a := NewScoped(store, "root")
	b := NewScoped(store, "root")

	popA := a.PushScope("other#/")
	defer popA()

	if b.BaseURI() != "root" {
		t.Errorf("b's scope should be unaffected by a's push, got %s", b.BaseURI())
	}
}
