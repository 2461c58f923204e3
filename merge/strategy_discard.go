package merge

import "github.com/avian2/jsonmerge/jsonvalue"

// discardStrategy keeps base if present, otherwise produces undefined (the
// head value is dropped) unless mergeOptions.keepIfUndef is true, in which
// case an absent base falls back to head instead of vanishing.
type discardStrategy struct{}

func (discardStrategy) Merge(w *Walker, base, head, schema jsonvalue.Value, meta Meta, options map[string]any) (jsonvalue.Value, error) {
	if !base.IsUndef() {
		return base, nil
	}
	if keep, _ := options["keepIfUndef"].(bool); keep {
		return head, nil
	}
	return jsonvalue.Undefined(head.Ref), nil
}

func (discardStrategy) GetSchema(w *Walker, schema jsonvalue.Value, meta Meta, options map[string]any) (jsonvalue.Value, error) {
	return schema, nil
}
