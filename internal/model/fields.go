package model

import (
	"bytes"
	"encoding/json"
	"slices"
	"sort"
)

// Fields is a string map that remembers insertion order. Chart table columns
// are derived from it, so the order must be stable across runs.
type Fields struct {
	keys []string
	vals map[string]string
}

// NewFields returns Fields holding the given keys, each set to "".
func NewFields(keys ...string) Fields {
	f := Fields{}
	for _, k := range keys {
		f.Set(k, "")
	}
	return f
}

// Set stores v under k. A new key is appended; an existing key keeps its position.
func (f *Fields) Set(k, v string) {
	if f.vals == nil {
		f.vals = make(map[string]string)
	}
	if _, ok := f.vals[k]; !ok {
		f.keys = append(f.keys, k)
	}
	f.vals[k] = v
}

// Get returns the value for k.
func (f Fields) Get(k string) (string, bool) {
	v, ok := f.vals[k]
	return v, ok
}

// Value returns the value for k or "".
func (f Fields) Value(k string) string {
	return f.vals[k]
}

// Keys returns the keys in insertion order.
func (f Fields) Keys() []string {
	return slices.Clone(f.keys)
}

// Len returns the number of keys.
func (f Fields) Len() int {
	return len(f.keys)
}

// Clone returns an independent copy.
func (f Fields) Clone() Fields {
	cp := Fields{keys: slices.Clone(f.keys)}
	if f.vals != nil {
		cp.vals = make(map[string]string, len(f.vals))
		for k, v := range f.vals {
			cp.vals[k] = v
		}
	}
	return cp
}

// Map returns a plain map copy, mostly for tests and templates.
func (f Fields) Map() map[string]string {
	m := make(map[string]string, len(f.vals))
	for k, v := range f.vals {
		m[k] = v
	}
	return m
}

// MarshalJSON encodes the fields as a JSON object in insertion order.
func (f Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range f.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(f.vals[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// SortedKeys returns the keys of m in lexical order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
