// Package validatorapi defines the narrow interface the merge core consumes
// from an external JSON Schema validator. The core never implements schema
// validation itself - it only needs type checks, instance-against-subschema
// validation, and $ref resolution, all provided through this interface by a
// concrete collaborator (see package jsvalidator for the default one).
package validatorapi

import "github.com/avian2/jsonmerge/schemaref"

// ValidationIssue is one failure surfaced by IterErrors.
type ValidationIssue struct {
	Path    string
	Message string
}

// Validator is the collaborator the walker and descenders depend on.
type Validator interface {
	// IsType reports whether value has the named JSON Schema type
	// ("array", "object", "string", "number", "integer", "boolean",
	// "null"). An undefined-sentinel value (represented as Go nil passed
	// by convention) should report false for every type except by the
	// caller's own undefined check - IsType is only ever called with a
	// concrete, defined value in this codebase.
	IsType(value any, typeName string) bool

	// IterErrors validates value against the schema node addressed by ref
	// (a JSON Pointer fragment into the root schema document, e.g.
	// "#/properties/foo/oneOf/0", or a cached document's URI plus fragment,
	// e.g. "https://example.com/types.json#/definitions/point") and returns
	// every failure found (possibly
	// none). An empty, non-nil slice and a nil slice both mean "valid".
	IterErrors(value any, ref string) ([]ValidationIssue, error)

	// Resolver returns the schema resolver backing $ref resolution.
	Resolver() schemaref.Resolver
}

// IdentityOf is an optional capability: a Validator may also return the
// identity ("id"/"$id") of a schema node. Nothing in this module calls it:
// LoadSchema and Merger.CacheSchema read "$id"/"id" themselves.
type IdentityOf interface {
	IDOf(schema map[string]any) string
}
