// Package jsonvalue provides an addressable wrapper around a decoded JSON
// node, carrying the JSON Pointer that locates it within its root document.
//
// A [Value] can also represent "undefined" - the absence of a node - which
// is distinct from a JSON null. Strategies and descenders use this to tell
// "the head has no such key" apart from "the head has this key set to null".
package jsonvalue

import (
	"strconv"
	"strings"
)

// Value pairs an arbitrary decoded JSON node with the JSON Pointer (RFC 6901)
// that addresses it relative to the document root ("#").
//
// Val holds one of: nil, bool, float64, string, []any (each element itself
// decoded JSON), map[string]any (each value itself decoded JSON), or an
// *OrderedMap (an object with recorded key order). Val is meaningless when
// Undef is true.
type Value struct {
	Val   any
	Ref   string
	Undef bool
}

// Undefined returns the undefined Value rooted at ref.
func Undefined(ref string) Value {
	return Value{Ref: ref, Undef: true}
}

// New wraps val as the document root ("#").
func New(val any) Value {
	return Value{Val: val, Ref: "#"}
}

// NewAt wraps val at an explicit pointer.
func NewAt(val any, ref string) Value {
	return Value{Val: val, Ref: ref}
}

// IsUndef reports whether v represents the absence of a node.
func (v Value) IsUndef() bool {
	return v.Undef
}

// EscapeToken escapes a single JSON Pointer reference token per RFC 6901:
// "~" becomes "~0" and "/" becomes "~1". The order matters - "~" must be
// escaped first or the "~" introduced by escaping "/" as "~1" would be
// re-escaped.
func EscapeToken(tok string) string {
	tok = strings.ReplaceAll(tok, "~", "~0")
	tok = strings.ReplaceAll(tok, "/", "~1")
	return tok
}

// childRef extends ref with an escaped child token.
func childRef(ref string, tok string) string {
	return ref + "/" + EscapeToken(tok)
}

// Resolve walks a JSON Pointer (e.g. "/id" or "#/buyer/id") against v and
// returns the value it addresses, or undefined if any segment is missing or
// addresses a non-container. An empty pointer (or "#") returns v itself.
func (v Value) Resolve(pointer string) Value {
	pointer = strings.TrimPrefix(pointer, "#")
	if pointer == "" {
		return v
	}
	if !strings.HasPrefix(pointer, "/") {
		return Undefined(v.Ref)
	}
	cur := v
	for _, tok := range strings.Split(pointer, "/")[1:] {
		tok = unescapeToken(tok)
		if cur.IsUndef() {
			return cur
		}
		if m, _, ok := asObject(cur.Val); ok && !cur.Undef {
			sub, ok := m[tok]
			if !ok {
				return Undefined(childRef(cur.Ref, tok))
			}
			cur = Value{Val: sub, Ref: childRef(cur.Ref, tok)}
			continue
		}
		if a, ok := cur.Slice(); ok {
			idx, err := strconv.Atoi(tok)
			if err != nil || idx < 0 || idx >= len(a) {
				return Undefined(childRef(cur.Ref, tok))
			}
			cur = Value{Val: a[idx], Ref: childRef(cur.Ref, tok)}
			continue
		}
		return Undefined(childRef(cur.Ref, tok))
	}
	return cur
}

// unescapeToken reverses EscapeToken: "~1" becomes "/" and "~0" becomes "~".
// The order matters - "~1" must be unescaped before "~0", mirroring
// EscapeToken's reversed escape order.
func unescapeToken(tok string) string {
	tok = strings.ReplaceAll(tok, "~1", "/")
	tok = strings.ReplaceAll(tok, "~0", "~")
	return tok
}

// Key returns the value at object key k, or an undefined Value at the
// corresponding child ref if v is undefined, not an object, or lacks k.
func (v Value) Key(k string) Value {
	ref := childRef(v.Ref, k)
	if v.Undef {
		return Undefined(ref)
	}
	m, _, ok := asObject(v.Val)
	if !ok {
		return Undefined(ref)
	}
	sub, ok := m[k]
	if !ok {
		return Undefined(ref)
	}
	return Value{Val: sub, Ref: ref}
}

// Index returns the value at array index i, or undefined if out of range.
func (v Value) Index(i int) Value {
	ref := childRef(v.Ref, strconv.Itoa(i))
	if v.Undef {
		return Undefined(ref)
	}
	a, ok := v.Val.([]any)
	if !ok || i < 0 || i >= len(a) {
		return Undefined(ref)
	}
	return Value{Val: a[i], Ref: ref}
}

// Items iterates an object's entries. When v wraps an *OrderedMap (see
// [DecodeJSON]) it iterates in that recorded key order; for a plain
// map[string]any it iterates in Go's randomized map order.
func (v Value) Items(fn func(key string, val Value) error) error {
	m, order, ok := asObject(v.Val)
	if !ok {
		return nil
	}
	if order != nil {
		for _, k := range order {
			if err := fn(k, Value{Val: m[k], Ref: childRef(v.Ref, k)}); err != nil {
				return err
			}
		}
		return nil
	}
	for k, sub := range m {
		if err := fn(k, Value{Val: sub, Ref: childRef(v.Ref, k)}); err != nil {
			return err
		}
	}
	return nil
}

// Elements iterates an array's elements in order.
func (v Value) Elements() []Value {
	a, ok := v.Val.([]any)
	if !ok {
		return nil
	}
	out := make([]Value, len(a))
	for i, e := range a {
		out[i] = Value{Val: e, Ref: childRef(v.Ref, strconv.Itoa(i))}
	}
	return out
}

// IsObject reports whether v is a defined JSON object.
func (v Value) IsObject() bool {
	if v.Undef {
		return false
	}
	_, _, ok := asObject(v.Val)
	return ok
}

// IsArray reports whether v is a defined JSON array.
func (v Value) IsArray() bool {
	if v.Undef {
		return false
	}
	_, ok := v.Val.([]any)
	return ok
}

// Map returns v's underlying map and true, or nil/false if v is not an
// object (or undefined). For an *OrderedMap node this returns its backing
// map directly; use Items to honor recorded key order.
func (v Value) Map() (map[string]any, bool) {
	if v.Undef {
		return nil, false
	}
	m, _, ok := asObject(v.Val)
	return m, ok
}

// Order returns v's recorded key order and true if v wraps an *OrderedMap,
// or nil/false otherwise (a plain map[string]any has no recorded order).
func (v Value) Order() ([]string, bool) {
	if v.Undef {
		return nil, false
	}
	_, order, ok := asObject(v.Val)
	return order, ok && order != nil
}

// Slice returns v's underlying slice and true, or nil/false if v is not an
// array (or undefined).
func (v Value) Slice() ([]any, bool) {
	if v.Undef {
		return nil, false
	}
	a, ok := v.Val.([]any)
	return a, ok
}

