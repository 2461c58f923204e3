package merge

import (
	"github.com/avian2/jsonmerge/jsonvalue"
	"github.com/avian2/jsonmerge/mergeerr"
)

// appendStrategy concatenates base and head arrays without deduplication or
// identity matching - the simplest array strategy, for logs/event streams
// where every head element is new.
type appendStrategy struct{}

func (appendStrategy) Merge(w *Walker, base, head, schema jsonvalue.Value, meta Meta, options map[string]any) (jsonvalue.Value, error) {
	headArr, ok := head.Slice()
	if !ok {
		return jsonvalue.Value{}, mergeerr.NewHead("append", head.Ref, "head must be an array")
	}

	var result []any
	if !base.IsUndef() {
		baseArr, ok := base.Slice()
		if !ok {
			return jsonvalue.Value{}, mergeerr.NewBase("append", base.Ref, "base must be an array")
		}
		result = append(result, baseArr...)
	}
	result = append(result, headArr...)

	return jsonvalue.Value{Val: result, Ref: base.Ref}, nil
}

func (appendStrategy) GetSchema(w *Walker, schema jsonvalue.Value, meta Meta, options map[string]any) (jsonvalue.Value, error) {
	m, ok := schema.Map()
	if !ok {
		return schema, nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if k == "maxItems" || k == "uniqueItems" {
			continue
		}
		out[k] = v
	}
	return jsonvalue.Value{Val: out, Ref: schema.Ref}, nil
}
