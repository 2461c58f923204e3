package jsonvalue

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// OrderedMap is an object node that remembers the key order it was decoded
// or constructed with, so objectMerge can keep base key order for
// pre-existing keys and append insertions in head's key order, all the way
// out to the encoded result. Plain map[string]any values are still accepted
// everywhere in this package; OrderedMap is only produced by [DecodeJSON]
// and by the objectMerge strategy's ordered result containers (the "ordered"
// object class, and the "auto" class when the base has a recorded order).
type OrderedMap struct {
	Keys []string
	M    map[string]any
}

// Get returns the value at key and whether it was present.
func (o *OrderedMap) Get(key string) (any, bool) {
	v, ok := o.M[key]
	return v, ok
}

// MarshalJSON emits the object with its keys in recorded order, so an
// OrderedMap embedded anywhere in a value handed to encoding/json keeps the
// ordering guarantees the merge produced.
func (o *OrderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeAny(&buf, o); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// asObject normalizes v into (map lookup by key, ordered key list, ok). The
// key list is nil when v is a plain map[string]any (no recorded order).
func asObject(v any) (m map[string]any, order []string, ok bool) {
	switch t := v.(type) {
	case *OrderedMap:
		return t.M, t.Keys, true
	case map[string]any:
		return t, nil, true
	default:
		return nil, nil, false
	}
}

// DeepEqual reports whether a and b represent the same JSON value,
// comparing through *OrderedMap wrappers structurally rather than by
// identity (key order does not affect equality).
func DeepEqual(a, b any) bool {
	switch at := a.(type) {
	case *OrderedMap:
		return DeepEqual(at.M, b)
	case map[string]any:
		var bm map[string]any
		switch bt := b.(type) {
		case *OrderedMap:
			bm = bt.M
		case map[string]any:
			bm = bt
		default:
			return false
		}
		if len(at) != len(bm) {
			return false
		}
		for k, v := range at {
			bv, ok := bm[k]
			if !ok || !DeepEqual(v, bv) {
				return false
			}
		}
		return true
	case []any:
		bs, ok := b.([]any)
		if !ok || len(at) != len(bs) {
			return false
		}
		for i := range at {
			if !DeepEqual(at[i], bs[i]) {
				return false
			}
		}
		return true
	default:
		if _, isOM := b.(*OrderedMap); isOM {
			return DeepEqual(b, a)
		}
		return a == b
	}
}

// Plain recursively converts v (which may contain *OrderedMap nodes) into a
// tree of only the types encoding/json's default decoder produces
// (map[string]any, []any, and scalars), suitable for handing to an external
// JSON Schema validator that type-switches on those concrete types.
func Plain(v any) any {
	switch t := v.(type) {
	case *OrderedMap:
		out := make(map[string]any, len(t.M))
		for k, sub := range t.M {
			out[k] = Plain(sub)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, sub := range t {
			out[k] = Plain(sub)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, sub := range t {
			out[i] = Plain(sub)
		}
		return out
	default:
		return v
	}
}

// DecodeJSON parses data into a root Value, preserving each object's key
// order as an *OrderedMap rather than collapsing it into an unordered
// map[string]any the way encoding/json.Unmarshal would.
func DecodeJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	val, err := decodeValue(dec)
	if err != nil {
		return Value{}, err
	}
	return New(val), nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeFromToken(dec, tok)
}

func decodeFromToken(dec *json.Decoder, tok json.Token) (any, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return nil, fmt.Errorf("jsonvalue: unexpected delimiter %q", t)
		}
	case float64:
		return t, nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return f, nil
	case nil, bool, string:
		return t, nil
	default:
		return nil, fmt.Errorf("jsonvalue: unexpected token %v", tok)
	}
}

func decodeObject(dec *json.Decoder) (*OrderedMap, error) {
	om := &OrderedMap{M: make(map[string]any)}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("jsonvalue: object key is not a string: %v", keyTok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		if _, exists := om.M[key]; !exists {
			om.Keys = append(om.Keys, key)
		}
		om.M[key] = val
	}
	// consume the closing '}'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return om, nil
}

func decodeArray(dec *json.Decoder) ([]any, error) {
	arr := []any{}
	for dec.More() {
		val, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		arr = append(arr, val)
	}
	// consume the closing ']'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return arr, nil
}

// CollectOrder walks v (typically the root of a [DecodeJSON] tree) and
// returns, for every *OrderedMap node reachable from v, its JSON Pointer ref
// mapped to the key order recorded at that node. This lets a caller recover
// declaration order for a document it otherwise holds as plain
// map[string]any (the shape the rest of this package's strategies expect),
// for the handful of places - like patternProperties pattern tie-breaks -
// where JSON Schema cares about the order keys were written in.
func CollectOrder(v Value) map[string][]string {
	out := make(map[string][]string)
	collectOrder(v, out)
	return out
}

func collectOrder(v Value, out map[string][]string) {
	if v.IsUndef() {
		return
	}
	if order, ok := v.Order(); ok {
		out[v.Ref] = order
	}
	if v.IsObject() {
		v.Items(func(_ string, sub Value) error {
			collectOrder(sub, out)
			return nil
		})
		return
	}
	if v.IsArray() {
		for _, e := range v.Elements() {
			collectOrder(e, out)
		}
	}
}

// EncodeJSON marshals v back to JSON text, honoring any *OrderedMap's key
// order along the way instead of the randomized order map[string]any would
// produce through encoding/json directly.
func EncodeJSON(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if v.Undef {
		return nil, fmt.Errorf("jsonvalue: cannot encode an undefined value")
	}
	if err := encodeAny(&buf, v.Val); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeAny(buf *bytes.Buffer, val any) error {
	switch t := val.(type) {
	case *OrderedMap:
		buf.WriteByte('{')
		for i, k := range t.Keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if err := encodeAny(buf, t.M[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	case map[string]any:
		b, err := json.Marshal(t)
		if err != nil {
			return err
		}
		buf.Write(b)
		return nil
	case []any:
		buf.WriteByte('[')
		for i, e := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeAny(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return err
		}
		buf.Write(b)
		return nil
	}
}
