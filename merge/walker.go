// Package merge implements the schema-driven recursive merge engine: a
// Walker descends base and head in lock step against a JSON Schema,
// dispatching to a small set of composition-keyword descenders ($ref,
// oneOf, anyOf/allOf) and, failing those, to a named Strategy looked up
// from the schema node's mergeStrategy annotation.
package merge

import (
	"fmt"

	"github.com/avian2/jsonmerge/jsonvalue"
	"github.com/avian2/jsonmerge/mergeerr"
	"github.com/avian2/jsonmerge/objclass"
	"github.com/avian2/jsonmerge/schemaref"
	"github.com/avian2/jsonmerge/validatorapi"
)

// Meta is caller-supplied metadata threaded unmodified through every
// descend/strategy call (e.g. the version strategy stamps it onto each
// history entry).
type Meta = any

// descender is a composition-keyword handler offered the current schema
// node before any named strategy is consulted. Returning handled=false lets
// the walker fall through to the next descender in the fixed chain.
type descender interface {
	instance(w *Walker, schema, base, head jsonvalue.Value, meta Meta) (result jsonvalue.Value, handled bool, err error)
	schema_(w *Walker, schema jsonvalue.Value, meta Meta) (result jsonvalue.Value, handled bool, err error)
}

// fixed descender precedence, per the merge algorithm.
var descenders = []descender{
	refDescender{},
	oneOfDescender{},
	anyOfAllOfDescender{},
}

// Walker carries everything a single Merge or GetSchema call needs to
// thread through recursive descent. A Walker is built fresh for each call
// and must not be shared across goroutines: its SchemaResolver keeps a
// scope stack that only makes sense for one single-threaded descent.
type Walker struct {
	Validator      validatorapi.Validator
	SchemaResolver schemaref.Resolver
	Registry       *Registry
	ObjClassMenu   *objclass.Menu

	// BaseRoot and HeadRoot are the untouched roots of the documents being
	// merged (not of the schema), for strategies that need a whole-document
	// JSON-Pointer lookup rather than the node-local values they are handed.
	BaseRoot jsonvalue.Value
	HeadRoot jsonvalue.Value

	// refsDescended is seeded with "#" and grows as the schema walk
	// rewrites $refs, so a cyclic schema is only ever descended once.
	refsDescended map[string]bool

	// PatternOrder records, for schema object nodes decoded with key order
	// preserved (keyed by the node's JSON Pointer ref, e.g. the root
	// schema's "#/properties/x/patternProperties"), the declared order of
	// its keys. objectMerge consults this to break ties when more than one
	// patternProperties pattern matches a key: the first pattern in
	// declaration order wins. Nil or missing entries fall back to a sorted
	// order, which is the best a document reached only through
	// Merger.CacheSchema (a plain map[string]any with no recorded order)
	// can offer.
	PatternOrder map[string][]string
}

// NewWalker constructs a Walker ready for one Merge or GetSchema call.
func NewWalker(v validatorapi.Validator, reg *Registry, menu *objclass.Menu, base, head jsonvalue.Value, patternOrder map[string][]string) *Walker {
	return &Walker{
		Validator:      v,
		SchemaResolver: v.Resolver(),
		Registry:       reg,
		ObjClassMenu:   menu,
		BaseRoot:       base,
		HeadRoot:       head,
		refsDescended:  map[string]bool{"#": true},
		PatternOrder:   patternOrder,
	}
}

// mergeOptions reads schema.mergeOptions into a fresh map, so strategies
// never need a nil check and can't corrupt the schema through it.
func mergeOptions(schema jsonvalue.Value) map[string]any {
	out := map[string]any{}
	if m, ok := schema.Key("mergeOptions").Map(); ok {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// strategyName reads schema.mergeStrategy, returning "" if absent or not a
// string.
func strategyName(schema jsonvalue.Value) string {
	name := schema.Key("mergeStrategy")
	if name.IsUndef() {
		return ""
	}
	s, _ := name.Val.(string)
	return s
}

// Descend performs one step of the instance walk: merge head into base at
// the node described by schema (which may be undefined, meaning "no
// constraints known for this node").
func (w *Walker) Descend(schema, base, head jsonvalue.Value, meta Meta) (jsonvalue.Value, error) {
	if !schema.IsUndef() {
		pop := w.SchemaResolver.PushScope(schema.Ref)
		defer pop()
	}

	for _, d := range descenders {
		if schema.IsUndef() {
			break
		}
		result, handled, err := d.instance(w, schema, base, head, meta)
		if err != nil {
			return jsonvalue.Value{}, err
		}
		if handled {
			return result, nil
		}
	}

	name := strategyName(schema)
	if name == "" {
		name = w.defaultInstanceStrategy(head)
	}

	strat, ok := w.Registry.Get(name)
	if !ok {
		return jsonvalue.Value{}, mergeerr.NewSchema(name, schema.Ref, "unknown merge strategy")
	}
	return strat.Merge(w, base, head, schema, meta, mergeOptions(schema))
}

// DescendSchema performs one step of the schema walk: compute the schema
// that documents what Descend would produce at this node.
func (w *Walker) DescendSchema(schema jsonvalue.Value, meta Meta) (jsonvalue.Value, error) {
	if !schema.IsUndef() {
		pop := w.SchemaResolver.PushScope(schema.Ref)
		defer pop()
	}

	for _, d := range descenders {
		if schema.IsUndef() {
			break
		}
		result, handled, err := d.schema_(w, schema, meta)
		if err != nil {
			return jsonvalue.Value{}, err
		}
		if handled {
			return result, nil
		}
	}

	name := strategyName(schema)
	if name == "" {
		name = w.defaultSchemaStrategy(schema)
	}

	strat, ok := w.Registry.Get(name)
	if !ok {
		return jsonvalue.Value{}, mergeerr.NewSchema(name, schema.Ref, "unknown merge strategy")
	}

	stripped := stripStrategyKeys(schema)
	return strat.GetSchema(w, stripped, meta, mergeOptions(schema))
}

// defaultInstanceStrategy picks objectMerge when head is an object,
// overwrite otherwise - the instance walk always has a defined head.
func (w *Walker) defaultInstanceStrategy(head jsonvalue.Value) string {
	if !head.IsUndef() && w.Validator.IsType(head.Val, "object") {
		return "objectMerge"
	}
	return "overwrite"
}

// objectSchemaKeys are the keywords whose presence signals "this node
// describes an object" for the schema walk's default-strategy heuristic,
// even without an explicit "type": "object".
var objectSchemaKeys = []string{
	"properties", "patternProperties", "additionalProperties", "required",
	"maxProperties", "minProperties", "dependencies",
}

func (w *Walker) defaultSchemaStrategy(schema jsonvalue.Value) string {
	if schema.IsUndef() {
		return "overwrite"
	}
	if t := schema.Key("type"); !t.IsUndef() {
		if s, ok := t.Val.(string); ok && s == "object" {
			return "objectMerge"
		}
	}
	for _, k := range objectSchemaKeys {
		if !schema.Key(k).IsUndef() {
			return "objectMerge"
		}
	}
	return "overwrite"
}

// stripStrategyKeys returns a copy of schema's object with mergeStrategy and
// mergeOptions removed, the way the schema walk hands a strategy's
// GetSchema a node that no longer carries its own dispatch annotations.
func stripStrategyKeys(schema jsonvalue.Value) jsonvalue.Value {
	if schema.IsUndef() {
		return schema
	}
	m, ok := schema.Map()
	if !ok {
		return schema
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if k == "mergeStrategy" || k == "mergeOptions" {
			continue
		}
		out[k] = v
	}
	return jsonvalue.Value{Val: out, Ref: schema.Ref}
}

// isValidAgainst reports whether v validates against the schema node
// addressed by ref, treating an undefined v as trivially valid (absence
// never violates a schema it was never checked against).
func isValidAgainst(w *Walker, v jsonvalue.Value, ref string) (bool, error) {
	if v.IsUndef() {
		return true, nil
	}
	issues, err := w.Validator.IterErrors(jsonvalue.Plain(v.Val), ref)
	if err != nil {
		return false, fmt.Errorf("merge: validating against %q: %w", ref, err)
	}
	return len(issues) == 0, nil
}
