// Package schemaref resolves "$ref" and JSON Pointer fragments against a
// schema document and a cache of named schemas, distinguishing local
// references (resolvable within the known document set) from remote ones
// (a different base URI, left untouched by schema-rewriting descenders).
package schemaref

import (
	"fmt"
	"strings"
)

// Resolver is the narrow surface the walker and the Ref descender need:
// resolve a "$ref" string to its target node, push/pop base-URI scope while
// descending into it, and tell local from remote references.
type Resolver interface {
	// Resolving resolves ref against the current scope and returns the
	// target schema node plus a pop function that must be called on every
	// exit path (including error) to unwind the scope this call pushed.
	Resolving(ref string) (node map[string]any, pop func(), err error)

	// ResolveFragment resolves a JSON Pointer fragment against doc.
	ResolveFragment(doc any, pointer string) (any, error)

	// BaseURI returns the current scope's base URI.
	BaseURI() string

	// IsRemoteRef reports whether ref points outside the current base URI.
	IsRemoteRef(ref string) bool

	// PushScope enters ref's base URI for the duration of a descent and
	// returns a pop function; used by the walker itself (step 2 of
	// descend), independently of whether a Ref descender also fires.
	PushScope(ref string) (pop func())
}

// Store is the long-lived mapping from schema URI to schema document. It is
// owned by the Merger and outlives any single merge/getSchema call; Cache
// extends it (e.g. via Merger.CacheSchema).
type Store struct {
	entries []storeEntry
}

type storeEntry struct {
	uri string
	doc map[string]any
}

// NewStore creates a store seeded with root under rootURI.
func NewStore(rootURI string, root map[string]any) *Store {
	return &Store{entries: []storeEntry{{uri: rootURI, doc: root}}}
}

// Cache deposits doc into the store under uri, overwriting any prior entry.
func (s *Store) Cache(uri string, doc map[string]any) {
	for i, e := range s.entries {
		if e.uri == uri {
			s.entries[i].doc = doc
			return
		}
	}
	s.entries = append(s.entries, storeEntry{uri: uri, doc: doc})
}

func (s *Store) lookup(uri string) (map[string]any, bool) {
	for _, e := range s.entries {
		if e.uri == uri {
			return e.doc, true
		}
	}
	return nil, false
}

// Documents returns every document currently registered in the store,
// keyed by URI (the root document included, under the URI it was seeded
// with). A validator backing this store's $ref resolution needs this to
// register every cached document - not just the root - as a resource it
// can compile against; see jsvalidator.New.
func (s *Store) Documents() map[string]map[string]any {
	out := make(map[string]map[string]any, len(s.entries))
	for _, e := range s.entries {
		out[e.uri] = e.doc
	}
	return out
}

// Scoped is a Resolver view over a shared Store with its own scope stack,
// so each walker can descend independently (pushing/popping its own scope)
// without racing other concurrent walkers over the same Store.
type Scoped struct {
	store *Store
	scope []string
}

// NewScoped creates a Scoped resolver rooted at rootURI, reading from store.
func NewScoped(store *Store, rootURI string) *Scoped {
	return &Scoped{store: store, scope: []string{rootURI}}
}

// BaseURI returns the current top-of-stack scope.
func (r *Scoped) BaseURI() string {
	if len(r.scope) == 0 {
		return ""
	}
	return r.scope[len(r.scope)-1]
}

// split separates a ref into its document URI and fragment ("#/a/b").
func split(ref string) (uri, fragment string) {
	if i := strings.IndexByte(ref, '#'); i >= 0 {
		return ref[:i], ref[i:]
	}
	return ref, ""
}

// join resolves a possibly-relative ref URI against base. The resolver
// never fetches schemas over the network, so any non-empty ref URI is
// treated as already-absolute within this resolver's closed world of named
// schemas.
func join(base, refURI string) string {
	if refURI == "" {
		return base
	}
	return refURI
}

// IsRemoteRef reports whether ref's document URI differs from the current
// base (i.e. it does not address a node within the document currently being
// walked).
func (r *Scoped) IsRemoteRef(ref string) bool {
	uri, _ := split(ref)
	if uri == "" {
		return false
	}
	return join(r.BaseURI(), uri) != r.BaseURI()
}

// PushScope enters ref's base URI, returning a pop function. Safe to call
// even when ref carries no document URI (a pure fragment): pushes the
// unchanged current base back onto the stack so callers have a uniform
// push/pop discipline regardless of ref's shape.
func (r *Scoped) PushScope(ref string) (pop func()) {
	uri, _ := split(ref)
	next := join(r.BaseURI(), uri)
	r.scope = append(r.scope, next)
	return func() {
		r.scope = r.scope[:len(r.scope)-1]
	}
}

// Resolving resolves ref (a "$ref" value) to its target map node, pushing
// ref's base URI as the new scope for the duration of the caller's descent
// into that node. The caller must invoke pop on every exit path.
func (r *Scoped) Resolving(ref string) (map[string]any, func(), error) {
	uri, fragment := split(ref)
	docURI := join(r.BaseURI(), uri)

	doc, ok := r.store.lookup(docURI)
	if !ok {
		return nil, func() {}, fmt.Errorf("schemaref: unknown schema document %q", docURI)
	}

	node, err := r.ResolveFragment(doc, fragment)
	if err != nil {
		return nil, func() {}, err
	}

	m, ok := node.(map[string]any)
	if !ok {
		return nil, func() {}, fmt.Errorf("schemaref: %q does not resolve to an object", ref)
	}

	pop := r.PushScope(ref)
	return m, pop, nil
}

// ResolveFragment resolves a JSON Pointer fragment (e.g. "#/$defs/foo" or
// "/$defs/foo") against doc.
func (r *Scoped) ResolveFragment(doc any, pointer string) (any, error) {
	pointer = strings.TrimPrefix(pointer, "#")
	if pointer == "" {
		return doc, nil
	}
	if !strings.HasPrefix(pointer, "/") {
		return nil, fmt.Errorf("schemaref: malformed pointer %q", pointer)
	}

	cur := doc
	for _, tok := range strings.Split(pointer, "/")[1:] {
		tok = unescape(tok)
		switch node := cur.(type) {
		case map[string]any:
			sub, ok := node[tok]
			if !ok {
				return nil, fmt.Errorf("schemaref: no such key %q in pointer %q", tok, pointer)
			}
			cur = sub
		case []any:
			idx, err := parseIndex(tok)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, fmt.Errorf("schemaref: index %q out of range in pointer %q", tok, pointer)
			}
			cur = node[idx]
		default:
			return nil, fmt.Errorf("schemaref: cannot descend into %q in pointer %q", tok, pointer)
		}
	}
	return cur, nil
}

func unescape(tok string) string {
	tok = strings.ReplaceAll(tok, "~1", "/")
	tok = strings.ReplaceAll(tok, "~0", "~")
	return tok
}

func parseIndex(tok string) (int, error) {
	n := 0
	if tok == "" {
		return 0, fmt.Errorf("empty index")
	}
	for _, c := range tok {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("not a number")
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}
