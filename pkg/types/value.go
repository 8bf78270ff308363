package types

import (
	"bytes"
	"encoding/json"
)

// OrderedObject is a JSON object that preserves source key-insertion order,
// since JSONata (like JSON itself in practice) treats member order as
// observable through $keys()/stringification even though map iteration in Go
// is not. Keys is the authoritative order; Values is the lookup table.
type OrderedObject struct {
	Keys   []string
	Values map[string]interface{}
}

// NewOrderedObject creates an empty ordered object.
func NewOrderedObject() *OrderedObject {
	return &OrderedObject{Values: make(map[string]interface{})}
}

// Set appends key to Keys (if new) and stores value.
func (o *OrderedObject) Set(key string, value interface{}) {
	if _, exists := o.Values[key]; !exists {
		o.Keys = append(o.Keys, key)
	}
	o.Values[key] = value
}

// Get returns the value for key and whether it was present.
func (o *OrderedObject) Get(key string) (interface{}, bool) {
	v, ok := o.Values[key]
	return v, ok
}

// Delete removes key from both Keys and Values.
func (o *OrderedObject) Delete(key string) {
	if _, exists := o.Values[key]; !exists {
		return
	}
	delete(o.Values, key)
	kept := o.Keys[:0]
	for _, k := range o.Keys {
		if k != key {
			kept = append(kept, k)
		}
	}
	o.Keys = kept
}

// Len returns the number of members.
func (o *OrderedObject) Len() int { return len(o.Keys) }

// Clone returns a shallow copy with independent Keys/Values storage.
func (o *OrderedObject) Clone() *OrderedObject {
	c := &OrderedObject{
		Keys:   make([]string, len(o.Keys)),
		Values: make(map[string]interface{}, len(o.Values)),
	}
	copy(c.Keys, o.Keys)
	for k, v := range o.Values {
		c.Values[k] = v
	}
	return c
}

// MarshalJSON renders the object as a standard JSON object literal with
// members in insertion order, so that hosts serializing an evaluation
// result via encoding/json see the same member order $keys() reports,
// instead of the struct's own Keys/Values fields.
func (o *OrderedObject) MarshalJSON() ([]byte, error) {
	if o == nil || len(o.Keys) == 0 {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.Keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(o.Values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Sequence is the internal carrier for the result of a path/predicate
// projection step. It is distinct from a plain Go
// []interface{} so the evaluator can tell "a single array-valued result"
// (KeepSingleton == true, or the user wrote [expr] / expr[]) apart from "a
// flattened multi-match projection sequence", which normalizes differently
// at the JSON boundary and when fed into further path steps:
//
//   - A bare []interface{} value encountered as JSON data is one value (an
//     array) and is never implicitly flattened by a subsequent path step.
//   - A Sequence is the accumulated result of stepping through a path/filter
//     and IS subject to further flattening and singleton-unwrapping rules.
type Sequence struct {
	Items []interface{}
	// KeepSingleton marks a sequence that must NOT be unwrapped to its sole
	// element at result-normalization time, even if len(Items) == 1 — set
	// when the originating step was an array constructor `[expr]` or a
	// kept filter `expr[]`.
	KeepSingleton bool
}

// NewSequence creates an empty, non-keeping sequence.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Append adds v to the sequence, flattening nested non-keeping Sequences
// and skipping Go nil (undefined) values, per the path-step flattening rule.
func (s *Sequence) Append(v interface{}) {
	if v == nil {
		return
	}
	if inner, ok := v.(*Sequence); ok {
		if inner.KeepSingleton {
			s.Items = append(s.Items, inner)
			return
		}
		s.Items = append(s.Items, inner.Items...)
		return
	}
	s.Items = append(s.Items, v)
}

// Len returns the number of items currently held.
func (s *Sequence) Len() int { return len(s.Items) }

// Normalize collapses the sequence: empty -> nil
// (undefined), single item (and not KeepSingleton) -> that item, otherwise
// the backing slice.
func (s *Sequence) Normalize() interface{} {
	if s == nil {
		return nil
	}
	switch {
	case len(s.Items) == 0:
		return nil
	case len(s.Items) == 1 && !s.KeepSingleton:
		return s.Items[0]
	default:
		return append([]interface{}(nil), s.Items...)
	}
}

// ToSlice exposes the contained items as a plain slice regardless of
// singleton rules, for callers (HOFs, aggregates) that always want an array.
func (s *Sequence) ToSlice() []interface{} {
	if s == nil {
		return nil
	}
	return s.Items
}
