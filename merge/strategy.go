package merge

import "github.com/avian2/jsonmerge/jsonvalue"

// Strategy implements one named mergeStrategy: how to combine base and head
// at a node (Merge), and how to describe the shape of that combination as a
// schema (GetSchema).
type Strategy interface {
	// Merge combines base and head at the node addressed by schema (which
	// has already had $ref/oneOf/anyOf/allOf handled by the walker, and may
	// itself be undefined). options is schema.mergeOptions, or an empty map
	// if absent.
	Merge(w *Walker, base, head, schema jsonvalue.Value, meta Meta, options map[string]any) (jsonvalue.Value, error)

	// GetSchema returns the schema describing what Merge produces. schema
	// has already had mergeStrategy/mergeOptions stripped.
	GetSchema(w *Walker, schema jsonvalue.Value, meta Meta, options map[string]any) (jsonvalue.Value, error)
}

// Registry is a name -> Strategy lookup table.
type Registry struct {
	entries map[string]Strategy
}

// Builtins returns the six strategies every Merger supports out of the box.
func Builtins() map[string]Strategy {
	return map[string]Strategy{
		"overwrite":      overwriteStrategy{},
		"discard":        discardStrategy{},
		"version":        versionStrategy{},
		"append":         appendStrategy{},
		"arrayMergeById": arrayMergeByIDStrategy{},
		"objectMerge":    objectMergeStrategy{},
	}
}

// NewRegistry builds a Registry from the built-ins overlaid with extra,
// which may override any built-in by name.
func NewRegistry(extra map[string]Strategy) *Registry {
	entries := Builtins()
	for name, s := range extra {
		entries[name] = s
	}
	return &Registry{entries: entries}
}

// Get resolves a strategy by name.
func (r *Registry) Get(name string) (Strategy, bool) {
	s, ok := r.entries[name]
	return s, ok
}
