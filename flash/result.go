package flash

import (
	"bytes"
	"encoding/json"
)

// Result is an insertion-ordered JSON object, the assembled shape spec §4.5
// builds up incrementally (assignment, slice flattening, meta injection)
// before a final key-reorder pass. Grounded on the pack's own hand-rolled
// ordered-map idiom (cue-lang-cue's encoding/openapi.OrderedMap) rather than
// pulling in an external ordered-map dependency for something this small.
type Result struct {
	order []string
	data  map[string]any
}

// NewResult creates an empty ordered result object.
func NewResult() *Result {
	return &Result{data: make(map[string]any)}
}

// Set assigns key, appending it to the key order on first use and leaving
// existing position unchanged on overwrite.
func (r *Result) Set(key string, value any) {
	if _, exists := r.data[key]; !exists {
		r.order = append(r.order, key)
	}
	r.data[key] = value
}

// Get returns the value at key and whether it is present.
func (r *Result) Get(key string) (any, bool) {
	v, ok := r.data[key]
	return v, ok
}

// Has reports whether key is present.
func (r *Result) Has(key string) bool {
	_, ok := r.data[key]
	return ok
}

// Delete removes key and its position in the order.
func (r *Result) Delete(key string) {
	if _, ok := r.data[key]; !ok {
		return
	}
	delete(r.data, key)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Keys returns the current key order.
func (r *Result) Keys() []string {
	return r.order
}

// Len returns the number of keys.
func (r *Result) Len() int {
	return len(r.order)
}

// InsertAfter inserts key right after afterKey in the key order (or at the
// front if afterKey is absent), used for meta.profile injection (spec
// §4.5: "immediately after id when present, else immediately after
// resourceType"). Overwrites the value in place if key already exists.
func (r *Result) InsertAfter(afterKey, key string, value any) {
	if r.Has(key) {
		r.data[key] = value
		return
	}
	r.data[key] = value
	idx := -1
	for i, k := range r.order {
		if k == afterKey {
			idx = i
			break
		}
	}
	if idx < 0 {
		r.order = append([]string{key}, r.order...)
		return
	}
	next := make([]string, 0, len(r.order)+1)
	next = append(next, r.order[:idx+1]...)
	next = append(next, key)
	next = append(next, r.order[idx+1:]...)
	r.order = next
}

// Reorder rebuilds the key order to match wanted, appending any keys present
// in the result but absent from wanted at the end in their prior relative
// order (spec §4.5 "Key reordering", "unknown keys are appended last").
func (r *Result) Reorder(wanted []string) {
	seen := make(map[string]bool, len(wanted))
	next := make([]string, 0, len(r.order))
	for _, k := range wanted {
		if r.Has(k) && !seen[k] {
			next = append(next, k)
			seen[k] = true
		}
	}
	for _, k := range r.order {
		if !seen[k] {
			next = append(next, k)
		}
	}
	r.order = next
}

// asMap reconciles a raw inline JSON object (map[string]any) with an
// already-assembled *Result (produced by this node's own child projection)
// for read-only lookups that don't care about key order: primitive-shape
// unwrapping, resource-base seeding, and inline harvesting all need to
// treat both the same way.
func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case *Result:
		return t.data, true
	}
	return nil, false
}

// Clone makes a shallow copy (same key order, same values).
func (r *Result) Clone() *Result {
	c := NewResult()
	for _, k := range r.order {
		c.Set(k, r.data[k])
	}
	return c
}

// MarshalJSON implements json.Marshaler, preserving insertion order.
func (r *Result) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(r.data[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
