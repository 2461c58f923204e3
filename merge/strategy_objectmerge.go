package merge

import (
	"regexp"
	"sort"

	"github.com/avian2/jsonmerge/jsonvalue"
	"github.com/avian2/jsonmerge/mergeerr"
	"github.com/avian2/jsonmerge/objclass"
)

// patternMatches reports whether key matches the ECMA-ish regex pattern
// used by "patternProperties". An invalid pattern never matches rather
// than failing the whole merge - the validator, not the merge core, is
// responsible for rejecting malformed schemas.
func patternMatches(pattern, key string) bool {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(key)
}

// objectMergeStrategy is the default for object-shaped nodes: it descends
// into each head key against that key's subschema (from "properties",
// "patternProperties", or "additionalProperties", in that precedence
// order), preserving base's key order for pre-existing keys and appending
// new keys in head's order. Base keys absent from head are carried over
// untouched.
type objectMergeStrategy struct{}

// subschemaFor finds the subschema governing key, trying "properties",
// then the first matching "patternProperties" pattern in declared order,
// then "additionalProperties" (only if it is itself a schema object, not
// a bare boolean), in that order.
func subschemaFor(schema jsonvalue.Value, key string, w *Walker) jsonvalue.Value {
	if schema.IsUndef() {
		return jsonvalue.Undefined("")
	}
	if props := schema.Key("properties"); props.IsObject() {
		if sub := props.Key(key); !sub.IsUndef() {
			return sub
		}
	}
	ppNode := schema.Key("patternProperties")
	if pp, ok := ppNode.Map(); ok {
		for _, pattern := range orderedPatterns(w, ppNode, pp) {
			if patternMatches(pattern, key) {
				return ppNode.Key(pattern)
			}
		}
	}
	if ap := schema.Key("additionalProperties"); ap.IsObject() {
		return ap
	}
	return jsonvalue.Undefined("")
}

// orderedPatterns returns patternProperties's pattern keys in the order
// they were declared in the schema document, which is the tie-break for
// keys matching more than one pattern. node's JSON Pointer ref is
// looked up in w.PatternOrder, populated at schema-load time from an
// order-preserving decode of the document; a document with no recorded
// order (e.g. one registered via Merger.CacheSchema) falls back to a
// sorted order so the tie-break is at least deterministic.
func orderedPatterns(w *Walker, node jsonvalue.Value, pp map[string]any) []string {
	if order, ok := w.PatternOrder[node.Ref]; ok {
		out := make([]string, 0, len(pp))
		seen := make(map[string]bool, len(pp))
		for _, k := range order {
			if _, ok := pp[k]; ok && !seen[k] {
				out = append(out, k)
				seen[k] = true
			}
		}
		for k := range pp {
			if !seen[k] {
				out = append(out, k)
			}
		}
		return out
	}
	out := make([]string, 0, len(pp))
	for k := range pp {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (objectMergeStrategy) Merge(w *Walker, base, head, schema jsonvalue.Value, meta Meta, options map[string]any) (jsonvalue.Value, error) {
	if !w.Validator.IsType(head.Val, "object") {
		return jsonvalue.Value{}, mergeerr.NewHead("objectMerge", head.Ref, "head must be an object")
	}

	var baseMap map[string]any
	var baseOrder []string
	if !base.IsUndef() {
		if !w.Validator.IsType(base.Val, "object") {
			return jsonvalue.Value{}, mergeerr.NewBase("objectMerge", base.Ref, "base must be an object")
		}
		baseMap, _ = base.Map()
		baseOrder, _ = base.Order()
	}

	ctor, ok := w.ObjClassMenu.Get(objClassName(options))
	if !ok {
		return jsonvalue.Value{}, mergeerr.NewSchema("objectMerge", schema.Ref, "unknown objClass")
	}
	result := ctor(baseMap, baseOrder)

	err := head.Items(func(key string, h jsonvalue.Value) error {
		sub := subschemaFor(schema, key, w)
		b := base.Key(key)
		merged, err := w.Descend(sub, b, h, meta)
		if err != nil {
			return err
		}
		if merged.IsUndef() {
			result.Delete(key)
			return nil
		}
		result.Set(key, merged.Val)
		return nil
	})
	if err != nil {
		return jsonvalue.Value{}, err
	}

	return jsonvalue.Value{Val: objclass.Finish(result), Ref: base.Ref}, nil
}

func objClassName(options map[string]any) string {
	if s, ok := options["objClass"].(string); ok {
		return s
	}
	return objclass.DefaultClassName
}

func (objectMergeStrategy) GetSchema(w *Walker, schema jsonvalue.Value, meta Meta, options map[string]any) (jsonvalue.Value, error) {
	m, ok := schema.Map()
	if !ok {
		return schema, nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}

	if props, ok := schema.Key("properties").Map(); ok {
		newProps := make(map[string]any, len(props))
		err := schema.Key("properties").Items(func(key string, sub jsonvalue.Value) error {
			r, err := w.DescendSchema(sub, meta)
			if err != nil {
				return err
			}
			newProps[key] = r.Val
			return nil
		})
		if err != nil {
			return jsonvalue.Value{}, err
		}
		out["properties"] = newProps
	}

	ppNode := schema.Key("patternProperties")
	if pp, ok := ppNode.Map(); ok {
		newPP := make(map[string]any, len(pp))
		for _, key := range orderedPatterns(w, ppNode, pp) {
			r, err := w.DescendSchema(ppNode.Key(key), meta)
			if err != nil {
				return jsonvalue.Value{}, err
			}
			newPP[key] = r.Val
		}
		out["patternProperties"] = newPP
	}

	if ap := schema.Key("additionalProperties"); ap.IsObject() {
		r, err := w.DescendSchema(ap, meta)
		if err != nil {
			return jsonvalue.Value{}, err
		}
		out["additionalProperties"] = r.Val
	}

	return jsonvalue.Value{Val: out, Ref: schema.Ref}, nil
}
