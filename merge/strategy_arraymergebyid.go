package merge

import (
	"github.com/avian2/jsonmerge/jsonvalue"
	"github.com/avian2/jsonmerge/mergeerr"
)

// arrayMergeByIDStrategy merges two arrays of objects keyed by an id field
// (or composite of fields) instead of by position: head elements replace
// the base element with the same key, new keys are appended, and base
// elements with no matching head key are preserved in place.
//
// Options: idRef (a JSON Pointer string or array of them, default "id") and
// ignoreId (a value, or list of values, whose matching head elements are
// skipped entirely - neither replacing nor appending).
type arrayMergeByIDStrategy struct{}

func idRefPointers(options map[string]any) []string {
	switch v := options["idRef"].(type) {
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{"id"}
	}
}

// normalizePointer treats a bare property name (the common default "id")
// as shorthand for the single-segment pointer "/id".
func normalizePointer(ptr string) string {
	if ptr == "" || ptr[0] == '/' || ptr[0] == '#' {
		return ptr
	}
	return "/" + ptr
}

// resolveKey resolves every idRef pointer against elem, returning the
// composite key and whether every component resolved (an element with any
// unresolvable component has no key and is skipped entirely).
func resolveKey(elem jsonvalue.Value, pointers []string) ([]any, bool) {
	key := make([]any, len(pointers))
	for i, p := range pointers {
		v := elem.Resolve(normalizePointer(p))
		if v.IsUndef() {
			return nil, false
		}
		key[i] = v.Val
	}
	return key, true
}

func keysEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !jsonvalue.DeepEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// ignoreCandidates normalizes mergeOptions.ignoreId into a list of keys
// (each itself a []any composite, matching resolveKey's shape) to compare
// matched head elements against.
func ignoreCandidates(options map[string]any, numPointers int) [][]any {
	v, ok := options["ignoreId"]
	if !ok {
		return nil
	}
	if numPointers == 1 {
		if list, ok := v.([]any); ok {
			out := make([][]any, len(list))
			for i, e := range list {
				out[i] = []any{e}
			}
			return out
		}
		return [][]any{{v}}
	}
	// Composite id: a single tuple, or a list of tuples.
	if list, ok := v.([]any); ok {
		if len(list) > 0 {
			if _, isTuple := list[0].([]any); isTuple {
				out := make([][]any, 0, len(list))
				for _, e := range list {
					if tuple, ok := e.([]any); ok {
						out = append(out, tuple)
					}
				}
				return out
			}
		}
		return [][]any{list}
	}
	return nil
}

func keyIgnored(key []any, candidates [][]any) bool {
	for _, c := range candidates {
		if keysEqual(key, c) {
			return true
		}
	}
	return false
}

func (arrayMergeByIDStrategy) Merge(w *Walker, base, head, schema jsonvalue.Value, meta Meta, options map[string]any) (jsonvalue.Value, error) {
	if items := schema.Key("items"); items.IsArray() {
		return jsonvalue.Value{}, mergeerr.NewSchema("arrayMergeById", schema.Ref,
			"arrayMergeById does not support a per-index (tuple-form) 'items' schema")
	}
	itemsSchema := schema.Key("items")

	if _, ok := head.Slice(); !ok {
		return jsonvalue.Value{}, mergeerr.NewHead("arrayMergeById", head.Ref, "head must be an array")
	}
	headVals := head.Elements()

	var baseVals []jsonvalue.Value
	if !base.IsUndef() {
		if _, ok := base.Slice(); !ok {
			return jsonvalue.Value{}, mergeerr.NewBase("arrayMergeById", base.Ref, "base must be an array")
		}
		baseVals = base.Elements()
	}

	pointers := idRefPointers(options)
	candidates := ignoreCandidates(options, len(pointers))

	type keyed struct {
		key []any
		ok  bool
	}
	headKeys := make([]keyed, len(headVals))
	for i, h := range headVals {
		k, ok := resolveKey(h, pointers)
		headKeys[i] = keyed{key: k, ok: ok}
	}
	baseKeys := make([]keyed, len(baseVals))
	for i, b := range baseVals {
		k, ok := resolveKey(b, pointers)
		baseKeys[i] = keyed{key: k, ok: ok}
	}

	for i := range headKeys {
		if !headKeys[i].ok {
			continue
		}
		for j := i + 1; j < len(headKeys); j++ {
			if headKeys[j].ok && keysEqual(headKeys[i].key, headKeys[j].key) {
				return jsonvalue.Value{}, mergeerr.NewHead("arrayMergeById", head.Ref, "duplicate id among head elements")
			}
		}
	}

	result := make([]any, len(baseVals))
	for i, b := range baseVals {
		result[i] = b.Val
	}
	matched := make([]bool, len(baseVals))

	var appended []any
	for i, h := range headVals {
		if !headKeys[i].ok {
			continue
		}
		if keyIgnored(headKeys[i].key, candidates) {
			continue
		}

		matchIdx := -1
		matchCount := 0
		for j, b := range baseKeys {
			if b.ok && keysEqual(b.key, headKeys[i].key) {
				matchCount++
				matchIdx = j
			}
		}
		switch matchCount {
		case 0:
			merged, err := w.Descend(itemsSchema, jsonvalue.Undefined(h.Ref), h, meta)
			if err != nil {
				return jsonvalue.Value{}, err
			}
			appended = append(appended, merged.Val)
		case 1:
			merged, err := w.Descend(itemsSchema, baseVals[matchIdx], h, meta)
			if err != nil {
				return jsonvalue.Value{}, err
			}
			result[matchIdx] = merged.Val
			matched[matchIdx] = true
		default:
			return jsonvalue.Value{}, mergeerr.NewBase("arrayMergeById", base.Ref, "multiple base elements share the same id")
		}
	}

	result = append(result, appended...)
	return jsonvalue.Value{Val: result, Ref: base.Ref}, nil
}

func (arrayMergeByIDStrategy) GetSchema(w *Walker, schema jsonvalue.Value, meta Meta, options map[string]any) (jsonvalue.Value, error) {
	items := schema.Key("items")
	if items.IsUndef() {
		return schema, nil
	}
	rewrittenItems, err := w.DescendSchema(items, meta)
	if err != nil {
		return jsonvalue.Value{}, err
	}

	m, _ := schema.Map()
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	out["items"] = rewrittenItems.Val
	return jsonvalue.Value{Val: out, Ref: schema.Ref}, nil
}
