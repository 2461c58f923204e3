package merge

import (
	"github.com/avian2/jsonmerge/jsonvalue"
	"github.com/avian2/jsonmerge/mergeerr"
)

// versionStrategy appends head onto a history array of {...metadata,
// "value": head} entries, instead of overwriting base. Options: limit
// (truncate to the most recent N entries), ignoreDups (default true; skip
// appending when head deep-equals the last entry's value - "unique" is
// accepted as a legacy alias), and metadata (extra keys stamped onto the
// new entry alongside "value").
type versionStrategy struct{}

func ignoreDups(options map[string]any) bool {
	if v, ok := options["ignoreDups"].(bool); ok {
		return v
	}
	if v, ok := options["unique"].(bool); ok {
		return v
	}
	return true
}

func (versionStrategy) Merge(w *Walker, base, head, schema jsonvalue.Value, meta Meta, options map[string]any) (jsonvalue.Value, error) {
	var list []any
	if !base.IsUndef() {
		arr, ok := base.Slice()
		if !ok {
			return jsonvalue.Value{}, mergeerr.NewBase("version", base.Ref, "base must be an array of version history entries")
		}
		for _, e := range arr {
			if em, ok := e.(map[string]any); ok {
				if _, hasValue := em["value"]; hasValue {
					list = append(list, e)
					continue
				}
			}
			if om, ok := e.(*jsonvalue.OrderedMap); ok {
				if _, hasValue := om.Get("value"); hasValue {
					list = append(list, e)
					continue
				}
			}
			return jsonvalue.Value{}, mergeerr.NewBase("version", base.Ref, "base history entry is missing a 'value' key")
		}
	}

	if ignoreDups(options) && len(list) > 0 {
		last := list[len(list)-1]
		var lastValue any
		switch t := last.(type) {
		case map[string]any:
			lastValue = t["value"]
		case *jsonvalue.OrderedMap:
			lastValue, _ = t.Get("value")
		}
		if jsonvalue.DeepEqual(lastValue, head.Val) {
			return base, nil
		}
	}

	entry := map[string]any{}
	metadata, ok := options["metadata"].(map[string]any)
	if !ok {
		// Legacy call-site meta argument maps onto the same entry shape
		// when mergeOptions carries no metadata of its own.
		metadata, _ = meta.(map[string]any)
	}
	for k, v := range metadata {
		entry[k] = v
	}
	entry["value"] = head.Val

	list = append(append([]any(nil), list...), entry)

	if limitAny, ok := options["limit"]; ok {
		if limit, ok := toInt(limitAny); ok && limit >= 0 && len(list) > limit {
			list = list[len(list)-limit:]
		}
	}

	return jsonvalue.Value{Val: list, Ref: base.Ref}, nil
}

func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case float64:
		return int(t), true
	default:
		return 0, false
	}
}

func (versionStrategy) GetSchema(w *Walker, schema jsonvalue.Value, meta Meta, options map[string]any) (jsonvalue.Value, error) {
	valueSchema := any(map[string]any{})
	if !schema.IsUndef() {
		valueSchema = schema.Val
	}
	itemProps := map[string]any{"value": valueSchema}
	itemSchema := map[string]any{
		"type":       "object",
		"properties": itemProps,
		"required":   []any{"value"},
	}

	metaSchema, ok := options["metadataSchema"].(map[string]any)
	if !ok {
		// Legacy call-site metaSchema argument (Merger.GetSchema's own
		// metaSchema parameter, resolved and threaded down as meta) weaves
		// in the same way when mergeOptions carries no metadataSchema of
		// its own.
		metaSchema, ok = meta.(map[string]any)
	}
	if ok {
		for k, v := range metaSchema {
			if k == "properties" {
				continue
			}
			itemSchema[k] = v
		}
		if props, ok := metaSchema["properties"].(map[string]any); ok {
			for k, v := range props {
				itemProps[k] = v
			}
		}
	}

	out := map[string]any{
		"type":  "array",
		"items": itemSchema,
	}
	if limitAny, ok := options["limit"]; ok {
		if limit, ok := toInt(limitAny); ok {
			out["maxItems"] = limit
		}
	}

	return jsonvalue.Value{Val: out, Ref: schema.Ref}, nil
}
