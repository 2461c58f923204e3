package merge

import (
	"github.com/avian2/jsonmerge/jsonvalue"
	"github.com/avian2/jsonmerge/mergeerr"
)

// refDescender follows a schema node's "$ref" before any strategy sees it.
// On the instance walk it simply redirects descent to the referenced node.
// On the schema walk it rewrites the referenced node in place (so every
// other $ref to the same target sees the rewritten result too) and leaves
// the "$ref" pointer itself untouched.
type refDescender struct{}

func (refDescender) ref(schema jsonvalue.Value) (string, bool) {
	v := schema.Key("$ref")
	if v.IsUndef() {
		return "", false
	}
	s, ok := v.Val.(string)
	return s, ok
}

func (d refDescender) instance(w *Walker, schema, base, head jsonvalue.Value, meta Meta) (jsonvalue.Value, bool, error) {
	ref, ok := d.ref(schema)
	if !ok {
		return jsonvalue.Value{}, false, nil
	}
	node, pop, err := w.SchemaResolver.Resolving(ref)
	defer pop()
	if err != nil {
		return jsonvalue.Value{}, false, mergeerr.NewSchema("$ref", schema.Ref, err.Error())
	}
	result, err := w.Descend(jsonvalue.NewAt(node, ref), base, head, meta)
	return result, true, err
}

func (d refDescender) schema_(w *Walker, schema jsonvalue.Value, meta Meta) (jsonvalue.Value, bool, error) {
	ref, ok := d.ref(schema)
	if !ok {
		return jsonvalue.Value{}, false, nil
	}
	if w.refsDescended[ref] {
		return schema, true, nil
	}
	if w.SchemaResolver.IsRemoteRef(ref) {
		return schema, true, nil
	}
	w.refsDescended[ref] = true

	node, pop, err := w.SchemaResolver.Resolving(ref)
	defer pop()
	if err != nil {
		return jsonvalue.Value{}, false, mergeerr.NewSchema("$ref", schema.Ref, err.Error())
	}

	rewritten, err := w.DescendSchema(jsonvalue.NewAt(node, ref), meta)
	if err != nil {
		return jsonvalue.Value{}, false, err
	}
	rewrittenMap, ok := rewritten.Map()
	if !ok {
		return jsonvalue.Value{}, false, mergeerr.NewSchema("$ref", schema.Ref, "$ref does not resolve to an object")
	}

	// Mutate node in place so every other $ref sharing this target
	// observes the rewrite too.
	for k := range node {
		delete(node, k)
	}
	for k, v := range rewrittenMap {
		node[k] = v
	}

	return schema, true, nil
}

// oneOfDescender applies only when the node carries "oneOf" and no explicit
// mergeStrategy: on the instance walk it picks the single branch both base
// and head validate against; on the schema walk it rewrites every branch.
type oneOfDescender struct{}

func (oneOfDescender) branches(schema jsonvalue.Value) ([]jsonvalue.Value, bool) {
	if strategyName(schema) != "" {
		return nil, false
	}
	v := schema.Key("oneOf")
	if !v.IsArray() {
		return nil, false
	}
	return v.Elements(), true
}

func (d oneOfDescender) instance(w *Walker, schema, base, head jsonvalue.Value, meta Meta) (jsonvalue.Value, bool, error) {
	branches, ok := d.branches(schema)
	if !ok {
		return jsonvalue.Value{}, false, nil
	}

	matchIdx := -1
	for i, branch := range branches {
		baseOK, err := isValidAgainst(w, base, branch.Ref)
		if err != nil {
			return jsonvalue.Value{}, false, err
		}
		headOK, err := isValidAgainst(w, head, branch.Ref)
		if err != nil {
			return jsonvalue.Value{}, false, err
		}
		if baseOK && headOK {
			if matchIdx != -1 {
				return jsonvalue.Value{}, false, mergeerr.NewHead("oneOf", schema.Ref,
					"multiple elements of 'oneOf' validate both base and head")
			}
			matchIdx = i
		}
	}
	if matchIdx == -1 {
		return jsonvalue.Value{}, false, mergeerr.NewHead("oneOf", schema.Ref,
			"no element of 'oneOf' validates both base and head")
	}

	result, err := w.Descend(branches[matchIdx], base, head, meta)
	return result, true, err
}

func (d oneOfDescender) schema_(w *Walker, schema jsonvalue.Value, meta Meta) (jsonvalue.Value, bool, error) {
	branches, ok := d.branches(schema)
	if !ok {
		return jsonvalue.Value{}, false, nil
	}

	rewritten := make([]any, len(branches))
	for i, branch := range branches {
		r, err := w.DescendSchema(branch, meta)
		if err != nil {
			return jsonvalue.Value{}, false, err
		}
		rewritten[i] = r.Val
	}

	m, _ := schema.Map()
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	out["oneOf"] = rewritten
	return jsonvalue.Value{Val: out, Ref: schema.Ref}, true, nil
}

// anyOfAllOfDescender refuses to guess which branch of an "anyOf"/"allOf"
// node to descend into. An explicit "mergeStrategy": "overwrite" passes the
// node through untouched (the overwrite strategy needs no branch); any
// other combination of anyOf/allOf with (or without) a mergeStrategy is a
// schema error, since the core has no principled way to pick a branch.
type anyOfAllOfDescender struct{}

func (anyOfAllOfDescender) has(schema jsonvalue.Value) bool {
	return !schema.Key("anyOf").IsUndef() || !schema.Key("allOf").IsUndef()
}

// check returns a schema error when the node has anyOf/allOf without an
// explicit "mergeStrategy": "overwrite" to opt out of branch selection; it
// never reports handled=true, since both anyOf/allOf and overwrite still
// fall through to the strategy registry afterward.
func (d anyOfAllOfDescender) check(schema jsonvalue.Value) error {
	if !d.has(schema) {
		return nil
	}
	if strategyName(schema) == "overwrite" {
		return nil
	}
	return mergeerr.NewSchema(strategyName(schema), schema.Ref, "can't descend to allOf/anyOf")
}

func (d anyOfAllOfDescender) instance(w *Walker, schema, base, head jsonvalue.Value, meta Meta) (jsonvalue.Value, bool, error) {
	return jsonvalue.Value{}, false, d.check(schema)
}

func (d anyOfAllOfDescender) schema_(w *Walker, schema jsonvalue.Value, meta Meta) (jsonvalue.Value, bool, error) {
	return jsonvalue.Value{}, false, d.check(schema)
}
