package metadata

import (
	"slices"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Fields is an insertion-ordered mapping from field key to its values.
// A key mapped to an empty list is present; it is distinct from an absent key.
type Fields struct {
	om *orderedmap.OrderedMap[string, []string]
}

// NewFields returns an empty Fields.
func NewFields() *Fields {
	return &Fields{om: orderedmap.New[string, []string]()}
}

// FieldsOf builds Fields from alternating key and value-list arguments in
// the given order. It is mostly useful in tests.
func FieldsOf(pairs ...any) *Fields {
	f := NewFields()
	for i := 0; i+1 < len(pairs); i += 2 {
		key, _ := pairs[i].(string)
		f.Set(key, ToValues(pairs[i+1]))
	}
	return f
}

// Get returns the values stored for key.
func (f *Fields) Get(key string) ([]string, bool) {
	return f.om.Get(key)
}

// Has reports whether key is present.
func (f *Fields) Has(key string) bool {
	_, ok := f.om.Get(key)
	return ok
}

// Set stores values for key. A new key is appended at the end; an existing
// key keeps its position.
func (f *Fields) Set(key string, values []string) {
	if values == nil {
		values = []string{}
	}
	f.om.Set(key, values)
}

// Delete removes key and reports whether it was present.
func (f *Fields) Delete(key string) bool {
	_, ok := f.om.Delete(key)
	return ok
}

// Len returns the number of keys.
func (f *Fields) Len() int {
	return f.om.Len()
}

// Keys returns the keys in order.
func (f *Fields) Keys() []string {
	keys := make([]string, 0, f.om.Len())
	for pair := f.om.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Each calls fn for every key in order.
func (f *Fields) Each(fn func(key string, values []string)) {
	for pair := f.om.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// Clone returns a deep copy.
func (f *Fields) Clone() *Fields {
	out := NewFields()
	f.Each(func(key string, values []string) {
		out.Set(key, slices.Clone(values))
	})
	return out
}

// Equal reports whether f and o hold the same keys in the same order with
// the same values.
func (f *Fields) Equal(o *Fields) bool {
	if f.Len() != o.Len() {
		return false
	}
	a, b := f.om.Oldest(), o.om.Oldest()
	for ; a != nil; a, b = a.Next(), b.Next() {
		if a.Key != b.Key || !slices.Equal(a.Value, b.Value) {
			return false
		}
	}
	return true
}

// Map returns an unordered copy, convenient for comparisons and JSON payloads
// where order does not matter.
func (f *Fields) Map() map[string][]string {
	out := make(map[string][]string, f.Len())
	f.Each(func(key string, values []string) {
		out[key] = slices.Clone(values)
	})
	return out
}

// MarshalJSON encodes the fields as a JSON object preserving key order.
func (f *Fields) MarshalJSON() ([]byte, error) {
	return f.om.MarshalJSON()
}
