// Package jsonmerge merges a sequence of JSON documents into an evolving
// base document by pairing each incoming head with a JSON Schema that
// annotates, at every node, how that node should be combined (via
// mergeStrategy/mergeOptions schema keywords). A companion operation derives
// the schema of the merged result from the same annotated schema.
//
// When merging using Merge(base, head):
//   - base is the accumulated document so far (nil/absent on the first call)
//   - head is the next document being merged in
//   - the schema's mergeStrategy annotations decide, node by node, whether
//     head overwrites base, is appended to a history, is merged key-by-key,
//     or something else entirely
package jsonmerge

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/avian2/jsonmerge/jsonvalue"
	"github.com/avian2/jsonmerge/jsvalidator"
	"github.com/avian2/jsonmerge/merge"
	"github.com/avian2/jsonmerge/objclass"
	"github.com/avian2/jsonmerge/schemaref"
	"github.com/avian2/jsonmerge/validatorapi"
)

// Schema wraps a loaded JSON Schema document along with the store its $refs
// resolve against.
type Schema struct {
	raw   map[string]any
	store *schemaref.Store
	// order records patternProperties (and other object) key declaration
	// order, keyed by JSON Pointer ref into raw, recovered from an
	// order-preserving decode of schemaJSON. objectMerge consults it to
	// break patternProperties ties in declaration order rather than Go's
	// randomized map iteration.
	order map[string][]string
}

// LoadSchema parses a JSON Schema from bytes.
func LoadSchema(schemaJSON []byte) (*Schema, error) {
	var raw map[string]any
	if err := json.Unmarshal(schemaJSON, &raw); err != nil {
		return nil, fmt.Errorf("jsonmerge: parsing schema: %w", err)
	}

	ordered, err := jsonvalue.DecodeJSON(schemaJSON)
	if err != nil {
		return nil, fmt.Errorf("jsonmerge: parsing schema: %w", err)
	}

	store := schemaref.NewStore("jsonmerge://root", raw)
	if id := schemaID(raw); id != "" {
		store.Cache(id, raw)
	}

	return &Schema{
		raw:   raw,
		store: store,
		order: jsonvalue.CollectOrder(ordered),
	}, nil
}

// schemaID returns doc's declared identity, honoring both the modern "$id"
// and the legacy "id" keyword.
func schemaID(doc map[string]any) string {
	if s, ok := doc["$id"].(string); ok {
		return s
	}
	if s, ok := doc["id"].(string); ok {
		return s
	}
	return ""
}

// LoadSchemaFromFile loads a JSON Schema from a file path.
func LoadSchemaFromFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("jsonmerge: reading schema file: %w", err)
	}
	return LoadSchema(data)
}

// LoadSchemaFromURL loads a JSON Schema from a URL.
func LoadSchemaFromURL(url string) (*Schema, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("jsonmerge: fetching schema: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jsonmerge: fetching schema: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("jsonmerge: reading schema response: %w", err)
	}
	return LoadSchema(data)
}

// LoadSchemaFromSource loads a schema from a file path, URL, or raw JSON
// text, detecting which based on the shape of source.
func LoadSchemaFromSource(source string) (*Schema, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return LoadSchemaFromURL(source)
	}
	if trimmed := strings.TrimSpace(source); strings.HasPrefix(trimmed, "{") {
		return LoadSchema([]byte(source))
	}
	return LoadSchemaFromFile(source)
}

// Options configures a Merger beyond its schema: named strategy overrides,
// the default object class used by objectMerge, extra object class
// constructors, and a validator constructor (for swapping in an
// alternative to jsvalidator).
type Options struct {
	Strategies      map[string]merge.Strategy
	ObjClassDefault string
	ObjClassMenu    map[string]objclass.Constructor
	NewValidator    func(store *schemaref.Store, root map[string]any) (validatorapi.Validator, error)
}

// Merger merges JSON instances according to a schema's mergeStrategy
// annotations. A Merger is immutable after construction except for its
// resolver's schema store, which CacheSchema extends; it is safe for
// concurrent Merge/GetSchema calls, each of which builds its own walker.
type Merger struct {
	schema   *Schema
	registry *merge.Registry
	menu     *objclass.Menu
	newVal   func(store *schemaref.Store, root map[string]any) (validatorapi.Validator, error)
}

// New constructs a Merger for schema with the given options (any zero Options
// field falls back to the built-in default).
func New(schema *Schema, opts Options) (*Merger, error) {
	newVal := opts.NewValidator
	if newVal == nil {
		newVal = func(store *schemaref.Store, root map[string]any) (validatorapi.Validator, error) {
			return jsvalidator.New(store, root)
		}
	}
	if _, err := newVal(schema.store, schema.raw); err != nil {
		return nil, fmt.Errorf("jsonmerge: schema rejected by validator: %w", err)
	}

	return &Merger{
		schema:   schema,
		registry: merge.NewRegistry(opts.Strategies),
		menu:     objclass.NewMenu(opts.ObjClassDefault, opts.ObjClassMenu),
		newVal:   newVal,
	}, nil
}

// CacheSchema registers an additional schema document under uri, so $refs
// pointing at uri resolve against it. An empty uri falls back to the
// document's own "$id"/"id". Intended to be called during setup, before
// concurrent Merge/GetSchema calls begin.
func (m *Merger) CacheSchema(uri string, doc map[string]any) error {
	if uri == "" {
		uri = schemaID(doc)
	}
	if uri == "" {
		return fmt.Errorf("jsonmerge: caching schema: no uri given and document has no $id")
	}
	m.schema.store.Cache(uri, doc)
	return nil
}

// Merge combines head into base according to m's schema, returning the
// merged result. meta, if supplied, is threaded unmodified through every
// strategy call (e.g. the version strategy stamps it onto new history
// entries); only the first variadic argument is used.
func (m *Merger) Merge(base, head any, meta ...any) (any, error) {
	var metaVal any
	if len(meta) > 0 {
		metaVal = meta[0]
	}

	validator, err := m.newVal(m.schema.store, m.schema.raw)
	if err != nil {
		return nil, fmt.Errorf("jsonmerge: constructing validator: %w", err)
	}

	baseVal := jsonvalue.Undefined("#")
	if base != nil {
		baseVal = jsonvalue.New(base)
	}
	headVal := jsonvalue.New(head)

	w := merge.NewWalker(validator, m.registry, m.menu, baseVal, headVal, m.schema.order)
	result, err := w.Descend(jsonvalue.NewAt(m.schema.raw, "#"), baseVal, headVal, metaVal)
	if err != nil {
		return nil, err
	}
	if result.IsUndef() {
		return nil, nil
	}
	return result.Val, nil
}

// GetSchema returns the schema describing what Merge would produce, given
// the same annotated input schema. metaSchema, if supplied, describes the
// extra metadata fields the version strategy should weave into each
// history entry's schema wherever a schema node's own mergeOptions carries
// no metadataSchema of its own; any $ref it carries is resolved against
// the root schema's resolver before the walk begins. Only the first
// variadic argument is used, mirroring Merge's optional trailing parameter.
func (m *Merger) GetSchema(metaSchema ...map[string]any) (map[string]any, error) {
	validator, err := m.newVal(m.schema.store, m.schema.raw)
	if err != nil {
		return nil, fmt.Errorf("jsonmerge: constructing validator: %w", err)
	}

	var metaVal any
	if len(metaSchema) > 0 && metaSchema[0] != nil {
		resolved, err := resolveMetaSchemaRef(validator.Resolver(), metaSchema[0])
		if err != nil {
			return nil, err
		}
		metaVal = resolved
	}

	w := merge.NewWalker(validator, m.registry, m.menu, jsonvalue.Undefined("#"), jsonvalue.Undefined("#"), m.schema.order)
	result, err := w.DescendSchema(jsonvalue.NewAt(m.schema.raw, "#"), metaVal)
	if err != nil {
		return nil, err
	}
	out, _ := result.Map()
	return out, nil
}

// resolveMetaSchemaRef resolves metaSchema's top-level "$ref" (if any)
// against resolver, so a caller can point GetSchema's metaSchema argument
// at a fragment of the root schema (e.g. a shared $defs entry) instead of
// repeating the metadata shape inline.
func resolveMetaSchemaRef(resolver schemaref.Resolver, metaSchema map[string]any) (map[string]any, error) {
	ref, ok := metaSchema["$ref"].(string)
	if !ok {
		return metaSchema, nil
	}
	node, pop, err := resolver.Resolving(ref)
	defer pop()
	if err != nil {
		return nil, fmt.Errorf("jsonmerge: resolving metaSchema $ref: %w", err)
	}
	return node, nil
}

// Validate checks instance against m's root schema, independent of any
// merge, returning every issue found (nil means the instance is valid).
func (m *Merger) Validate(instance any) ([]validatorapi.ValidationIssue, error) {
	validator, err := m.newVal(m.schema.store, m.schema.raw)
	if err != nil {
		return nil, fmt.Errorf("jsonmerge: constructing validator: %w", err)
	}
	return validator.IterErrors(jsonvalue.Plain(instance), "#")
}
