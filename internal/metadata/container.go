package metadata

import (
	"slices"
	"sort"
)

// Container is the mutable key to values model shared by the frontmatter and
// inline kinds. The zero value is not usable; containers are produced by
// ParseFrontmatter/ParseInline through New, or by NewContainer.
type Container struct {
	kind   Kind
	fields *Fields
}

// NewContainer wraps fields as a container of the given kind. A nil fields
// starts empty.
func NewContainer(kind Kind, fields *Fields) *Container {
	if fields == nil {
		fields = NewFields()
	}
	return &Container{kind: kind, fields: fields}
}

// Kind reports which location the container models.
func (c *Container) Kind() Kind { return c.kind }

// Fields exposes the underlying ordered mapping.
func (c *Container) Fields() *Fields { return c.fields }

// Get returns a copy of the values stored for key.
func (c *Container) Get(key string) ([]string, bool) {
	v, ok := c.fields.Get(key)
	if !ok {
		return nil, false
	}
	return slices.Clone(v), true
}

// Has reports whether key is present. With values == nil only presence is
// checked. An empty list requires the stored list to be empty; otherwise every
// given value must be stored, in any order.
func (c *Container) Has(key string, values any) bool {
	stored, ok := c.fields.Get(key)
	if !ok {
		return false
	}
	if values == nil {
		return true
	}
	want := ToValues(values)
	if len(want) == 0 {
		return len(stored) == 0
	}
	for _, v := range want {
		if !slices.Contains(stored, v) {
			return false
		}
	}
	return true
}

type addOptions struct {
	overwrite       bool
	allowDuplicates bool
}

// AddOption tunes Add.
type AddOption func(*addOptions)

// WithOverwrite replaces the stored list instead of appending to it.
func WithOverwrite() AddOption {
	return func(o *addOptions) { o.overwrite = true }
}

// WithDuplicates appends values even when they are already stored.
func WithDuplicates() AddOption {
	return func(o *addOptions) { o.allowDuplicates = true }
}

// Add stores values under key. A missing key is created.
func (c *Container) Add(key string, values any, opts ...AddOption) {
	var o addOptions
	for _, opt := range opts {
		opt(&o)
	}
	vals := ToValues(values)
	stored, ok := c.fields.Get(key)
	if o.overwrite || !ok {
		c.fields.Set(key, vals)
		return
	}
	for _, v := range vals {
		if !o.allowDuplicates && slices.Contains(stored, v) {
			continue
		}
		stored = append(stored, v)
	}
	c.fields.Set(key, stored)
}

// Remove deletes key when values is nil. Otherwise only the matching values
// are removed and the key stays, possibly with an empty list.
func (c *Container) Remove(key string, values any) {
	if values == nil {
		c.fields.Delete(key)
		return
	}
	stored, ok := c.fields.Get(key)
	if !ok {
		return
	}
	drop := ToValues(values)
	kept := make([]string, 0, len(stored))
	for _, v := range stored {
		if !slices.Contains(drop, v) {
			kept = append(kept, v)
		}
	}
	c.fields.Set(key, kept)
}

// RemoveEmpty deletes every key whose value list is empty.
func (c *Container) RemoveEmpty() {
	var empty []string
	c.fields.Each(func(key string, values []string) {
		if len(values) == 0 {
			empty = append(empty, key)
		}
	})
	for _, key := range empty {
		c.fields.Delete(key)
	}
}

// RemoveDuplicateValues keeps the first occurrence of each value for the
// given keys, or for all keys when none are given.
func (c *Container) RemoveDuplicateValues(keys ...string) {
	for _, key := range c.targets(keys) {
		stored, _ := c.fields.Get(key)
		seen := make(map[string]struct{}, len(stored))
		uniq := make([]string, 0, len(stored))
		for _, v := range stored {
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			uniq = append(uniq, v)
		}
		c.fields.Set(key, uniq)
	}
}

// OrderValues sorts the value lists of the given keys, or of all keys.
// Keys that are not stored are skipped.
func (c *Container) OrderValues(how Order, keys ...string) error {
	if err := checkOrder(how); err != nil {
		return err
	}
	for _, key := range c.targets(keys) {
		stored, _ := c.fields.Get(key)
		sorted := slices.Clone(stored)
		sortStrings(sorted, how)
		c.fields.Set(key, sorted)
	}
	return nil
}

// OrderKeys rebuilds the mapping with its keys sorted.
func (c *Container) OrderKeys(how Order) error {
	if err := checkOrder(how); err != nil {
		return err
	}
	keys := c.fields.Keys()
	sortStrings(keys, how)
	sorted := NewFields()
	for _, key := range keys {
		v, _ := c.fields.Get(key)
		sorted.Set(key, v)
	}
	c.fields = sorted
	return nil
}

// Order sorts keys then values. OrderNone skips the matching step.
func (c *Container) Order(orderKeys, orderValues Order, keys ...string) error {
	for _, how := range []Order{orderKeys, orderValues} {
		if how != OrderNone {
			if err := checkOrder(how); err != nil {
				return err
			}
		}
	}
	if orderKeys != OrderNone {
		if err := c.OrderKeys(orderKeys); err != nil {
			return err
		}
	}
	if orderValues != OrderNone {
		return c.OrderValues(orderValues, keys...)
	}
	return nil
}

func (c *Container) targets(keys []string) []string {
	if len(keys) == 0 {
		return c.fields.Keys()
	}
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		if c.fields.Has(key) {
			out = append(out, key)
		}
	}
	return out
}

func sortStrings(s []string, how Order) {
	if how == Desc {
		sort.Sort(sort.Reverse(sort.StringSlice(s)))
		return
	}
	sort.Strings(s)
}
