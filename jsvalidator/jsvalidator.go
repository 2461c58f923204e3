// Package jsvalidator implements validatorapi.Validator on top of
// github.com/santhosh-tekuri/jsonschema/v6.
package jsvalidator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/avian2/jsonmerge/jsonvalue"
	"github.com/avian2/jsonmerge/schemaref"
	"github.com/avian2/jsonmerge/validatorapi"
)

// rootURI is the synthetic resource name the root schema document is
// compiled under. The merge core never fetches schemas over the network
// (see the Non-goals in this repo's design notes), so a fixed local name is
// sufficient: every ref the core resolves is either this document's own
// fragment or a document explicitly cached via Merger.CacheSchema.
const rootURI = "jsonmerge://root"

// Validator wraps a compiled root schema document, compiling each
// sub-location on demand to answer IterErrors calls against arbitrary
// schema nodes reached by descent.
type Validator struct {
	compiler *jsonschema.Compiler
	resolver schemaref.Resolver
	// cache avoids recompiling the same ref repeatedly within one merge.
	cache map[string]*jsonschema.Schema
}

// New builds a Validator for root, registering it (and any schema docs
// already cached in store) as compiler resources. rootURI is the URI root
// is addressed under in resolver; subsequent IterErrors refs are resolved
// relative to it.
func New(store *schemaref.Store, root map[string]any) (*Validator, error) {
	compiler := jsonschema.NewCompiler()

	rootVal, err := reencode(root)
	if err != nil {
		return nil, fmt.Errorf("jsvalidator: encoding root schema: %w", err)
	}
	if err := compiler.AddResource(rootURI, rootVal); err != nil {
		return nil, fmt.Errorf("jsvalidator: adding root schema resource: %w", err)
	}

	// Register every document the store already knows about (e.g. one
	// deposited ahead of time via Merger.CacheSchema) as a compiler
	// resource too, so a $ref that descends into it resolves against an
	// in-memory resource instead of erroring or reaching for the network.
	for uri, doc := range store.Documents() {
		if uri == rootURI {
			continue
		}
		docVal, err := reencode(doc)
		if err != nil {
			return nil, fmt.Errorf("jsvalidator: encoding cached schema %q: %w", uri, err)
		}
		if err := compiler.AddResource(uri, docVal); err != nil {
			return nil, fmt.Errorf("jsvalidator: adding cached schema resource %q: %w", uri, err)
		}
	}

	return &Validator{
		compiler: compiler,
		resolver: schemaref.NewScoped(store, rootURI),
		cache:    make(map[string]*jsonschema.Schema),
	}, nil
}

// reencode round-trips v through jsonschema.UnmarshalJSON so the compiler
// sees the exact value shape it expects (json.Number rather than float64),
// independent of whatever concrete map/number types v currently holds.
func reencode(v any) (any, error) {
	plain := jsonvalue.Plain(v)
	b, err := json.Marshal(plain)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(b))
}

// Resolver returns the resolver backing this validator's $ref resolution.
func (v *Validator) Resolver() schemaref.Resolver {
	return v.resolver
}

// IsType reports whether value has the named JSON Schema primitive type.
// JSON Schema's type vocabulary maps directly onto the Go types
// encoding/json (and jsonvalue.DecodeJSON) produce, so no library call is
// needed here.
func (v *Validator) IsType(value any, typeName string) bool {
	switch typeName {
	case "object":
		_, ok := value.(map[string]any)
		if ok {
			return true
		}
		_, ok = value.(*jsonvalue.OrderedMap)
		return ok
	case "array":
		_, ok := value.([]any)
		return ok
	case "string":
		_, ok := value.(string)
		return ok
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "null":
		return value == nil
	case "number":
		_, ok := value.(float64)
		return ok
	case "integer":
		f, ok := value.(float64)
		return ok && f == float64(int64(f))
	default:
		return false
	}
}

// IterErrors validates value against the schema node addressed by ref,
// compiling that sub-location (and caching the result) on first use.
func (v *Validator) IterErrors(value any, ref string) ([]validatorapi.ValidationIssue, error) {
	schema, err := v.compile(ref)
	if err != nil {
		return nil, err
	}

	err = schema.Validate(jsonvalue.Plain(value))
	if err == nil {
		return nil, nil
	}

	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return nil, err
	}
	return flatten(verr), nil
}

func (v *Validator) compile(ref string) (*jsonschema.Schema, error) {
	if s, ok := v.cache[ref]; ok {
		return s, nil
	}
	loc := resourceLocation(ref)
	s, err := v.compiler.Compile(loc)
	if err != nil {
		return nil, fmt.Errorf("jsvalidator: compiling %q: %w", ref, err)
	}
	v.cache[ref] = s
	return s, nil
}

// normalizeFragment turns a jsonvalue ref ("#/a/b" or "#") into the
// "#/a/b" / "" fragment suffix jsonschema.Compile expects appended to a URI.
func normalizeFragment(ref string) string {
	if ref == "#" || ref == "" {
		return ""
	}
	return ref
}

// resourceLocation turns a jsonvalue ref into the compiler location it was
// registered under. A ref produced by following a $ref into a document
// other than the root one (see refDescender) already carries that
// document's own URI plus fragment (e.g.
// "https://example.com/types.json#/definitions/point"); root-local refs
// ("#/a/b") are still resolved against rootURI.
func resourceLocation(ref string) string {
	if strings.Contains(ref, "://") {
		if strings.Contains(ref, "#") {
			return ref
		}
		return ref + "#"
	}
	return rootURI + normalizeFragment(ref)
}

// flatten walks a *jsonschema.ValidationError's cause tree into a flat
// slice of issues, one per leaf cause.
func flatten(verr *jsonschema.ValidationError) []validatorapi.ValidationIssue {
	var out []validatorapi.ValidationIssue
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			out = append(out, validatorapi.ValidationIssue{
				Path:    "/" + joinPath(e.InstanceLocation),
				Message: e.Error(),
			})
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(verr)
	return out
}

func joinPath(segments []string) string {
	if len(segments) == 0 {
		return ""
	}
	out := segments[0]
	for _, s := range segments[1:] {
		out += "/" + s
	}
	return out
}
