// Package objclass implements the "object class menu": a registry of
// constructors the objectMerge strategy uses to allocate result containers,
// so callers can choose an insertion-ordered or insertion-unordered map
// implementation (or their own) per schema node via mergeOptions.objClass.
package objclass

import "github.com/avian2/jsonmerge/jsonvalue"

// Container is the minimal surface objectMerge needs from a result
// container: set/delete entries by key, enumerate keys in the container's
// own order, and hand back a plain map for the final merged value.
type Container interface {
	Set(key string, val any)
	Delete(key string)
	Keys() []string
	Map() map[string]any

	// Ordered reports whether Keys() reflects a meaningful insertion order
	// that the caller should preserve in the encoded result (true for
	// "ordered", false for "dict").
	Ordered() bool
}

// Constructor builds a Container pre-populated with seed's entries, in
// seed's key order when the constructor supports ordering.
type Constructor func(seed map[string]any, seedOrder []string) Container

// DefaultClassName is the class name that resolves to the menu's configured
// default ("auto" unless overridden by a Merger construction option).
const DefaultClassName = "_default"

// Menu is a name -> Constructor registry. "dict", "ordered", and "auto" are
// always present; NewMenu merges in any user-supplied entries, which may
// override the built-ins by name.
type Menu struct {
	entries map[string]Constructor
	def     string
}

// NewMenu builds the built-in menu ("dict" -> unordered, "ordered" ->
// insertion-ordered, "auto" -> ordered iff the seed carries a recorded key
// order) overlaid with extra registrations; objclassDef selects which name
// _default points to, "auto" unless overridden.
func NewMenu(objclassDef string, extra map[string]Constructor) *Menu {
	m := &Menu{
		entries: map[string]Constructor{
			"dict":    newDict,
			"ordered": newOrdered,
			"auto":    newAuto,
		},
		def: "auto",
	}
	if objclassDef != "" {
		m.def = objclassDef
	}
	for name, ctor := range extra {
		m.entries[name] = ctor
	}
	return m
}

// Finish converts a finished Container into the value representation
// objectMerge's result carries: an *jsonvalue.OrderedMap when the container's
// key order is meaningful, otherwise a plain map[string]any.
func Finish(c Container) any {
	if c.Ordered() {
		return &jsonvalue.OrderedMap{Keys: c.Keys(), M: c.Map()}
	}
	return c.Map()
}

// Get resolves a class name (DefaultClassName maps to the configured
// default) to its Constructor. ok is false for an unregistered name.
func (m *Menu) Get(name string) (Constructor, bool) {
	if name == "" || name == DefaultClassName {
		name = m.def
	}
	ctor, ok := m.entries[name]
	return ctor, ok
}

// newAuto matches the result container to the base's own shape: a base that
// was decoded or merged with a recorded key order keeps it, while a plain
// map[string]any base (the common case for callers handing in
// encoding/json-decoded documents) stays a plain map.
func newAuto(seed map[string]any, seedOrder []string) Container {
	if seedOrder != nil {
		return newOrdered(seed, seedOrder)
	}
	return newDict(seed, nil)
}

// dict is the unordered Container backed directly by a Go map.
type dict struct {
	m map[string]any
}

func newDict(seed map[string]any, _ []string) Container {
	d := &dict{m: make(map[string]any, len(seed))}
	for k, v := range seed {
		d.m[k] = v
	}
	return d
}

func (d *dict) Set(key string, val any) { d.m[key] = val }
func (d *dict) Delete(key string)       { delete(d.m, key) }
func (d *dict) Keys() []string {
	keys := make([]string, 0, len(d.m))
	for k := range d.m {
		keys = append(keys, k)
	}
	return keys
}
func (d *dict) Map() map[string]any { return d.m }
func (d *dict) Ordered() bool       { return false }

// ordered is the insertion-ordered Container: base's keys keep their
// position, new keys append at the end.
type ordered struct {
	m     map[string]any
	order []string
}

func newOrdered(seed map[string]any, seedOrder []string) Container {
	o := &ordered{m: make(map[string]any, len(seed))}
	if len(seedOrder) == len(seed) {
		for _, k := range seedOrder {
			o.m[k] = seed[k]
			o.order = append(o.order, k)
		}
		return o
	}
	for k, v := range seed {
		o.m[k] = v
		o.order = append(o.order, k)
	}
	return o
}

func (o *ordered) Set(key string, val any) {
	if _, exists := o.m[key]; !exists {
		o.order = append(o.order, key)
	}
	o.m[key] = val
}

func (o *ordered) Delete(key string) {
	if _, exists := o.m[key]; !exists {
		return
	}
	delete(o.m, key)
	for i, k := range o.order {
		if k == key {
			o.order = append(o.order[:i], o.order[i+1:]...)
			break
		}
	}
}

func (o *ordered) Keys() []string {
	return append([]string(nil), o.order...)
}

func (o *ordered) Map() map[string]any { return o.m }
func (o *ordered) Ordered() bool       { return true }
