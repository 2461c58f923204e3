package merge

import "github.com/avian2/jsonmerge/jsonvalue"

// overwriteStrategy is the simplest strategy and the instance walk's
// fallback for non-object nodes: head replaces base outright.
type overwriteStrategy struct{}

func (overwriteStrategy) Merge(w *Walker, base, head, schema jsonvalue.Value, meta Meta, options map[string]any) (jsonvalue.Value, error) {
	return head, nil
}

func (overwriteStrategy) GetSchema(w *Walker, schema jsonvalue.Value, meta Meta, options map[string]any) (jsonvalue.Value, error) {
	return schema, nil
}
