package metadata

import (
	"fmt"
	"slices"
	"sort"
)

// NoteMetadata is the frontmatter and the inline fields of one note, parsed
// from the same text.
type NoteMetadata struct {
	Frontmatter *Frontmatter
	Inline      *Inline

	policy *Policy
}

// New parses both metadata kinds of text. Inline fields are read from the
// text that follows the frontmatter block.
func New(text string, policy *Policy) (*NoteMetadata, error) {
	fm, body, err := ParseFrontmatter(text, policy)
	if err != nil {
		return nil, err
	}
	return &NoteMetadata{
		Frontmatter: &Frontmatter{NewContainer(KindFrontmatter, fm)},
		Inline:      &Inline{NewContainer(KindInline, ParseInline(body, policy))},
		policy:      policy,
	}, nil
}

// Policy returns the field policy the note was parsed with.
func (m *NoteMetadata) Policy() *Policy { return m.policy }

// DefaultKind reports where key is stored when no kind is given.
func (m *NoteMetadata) DefaultKind(key string) (Kind, error) {
	return m.policy.DefaultKind(key)
}

// containers returns the containers kind addresses, after resolving
// KindDefault for key.
func (m *NoteMetadata) containers(op, key string, kind Kind) ([]*Container, error) {
	if kind == KindDefault {
		resolved, err := m.DefaultKind(key)
		if err != nil {
			return nil, err
		}
		kind = resolved
	}
	switch kind {
	case KindFrontmatter:
		return []*Container{m.Frontmatter.Container}, nil
	case KindInline:
		return []*Container{m.Inline.Container}, nil
	case KindAll:
		return []*Container{m.Frontmatter.Container, m.Inline.Container}, nil
	}
	return nil, &UnsupportedKindError{Op: op, Kind: kind}
}

func (m *NoteMetadata) container(kind Kind) (*Container, error) {
	switch kind {
	case KindFrontmatter:
		return m.Frontmatter.Container, nil
	case KindInline:
		return m.Inline.Container, nil
	}
	return nil, &UnsupportedKindError{Op: "move", Kind: kind}
}

// Get returns the values of key. KindAll concatenates frontmatter then inline
// values and reports false only if neither kind has the key.
func (m *NoteMetadata) Get(key string, kind Kind) ([]string, bool) {
	cs, err := m.containers("get", key, kind)
	if err != nil {
		return nil, false
	}
	var (
		out   []string
		found bool
	)
	for _, c := range cs {
		if v, ok := c.Get(key); ok {
			out = append(out, v...)
			found = true
		}
	}
	if found && out == nil {
		out = []string{}
	}
	return out, found
}

// Has reports whether any addressed kind satisfies Container.Has.
func (m *NoteMetadata) Has(key string, values any, kind Kind) bool {
	cs, err := m.containers("has", key, kind)
	if err != nil {
		return false
	}
	for _, c := range cs {
		if c.Has(key, values) {
			return true
		}
	}
	return false
}

// Add stores values under key in one kind. KindDefault resolves through the
// policy; a kind that names both locations is rejected.
func (m *NoteMetadata) Add(key string, values any, kind Kind, opts ...AddOption) error {
	cs, err := m.containers("add", key, kind)
	if err != nil {
		return err
	}
	if len(cs) != 1 {
		return &UnsupportedKindError{Op: "add", Kind: KindAll}
	}
	cs[0].Add(key, values, opts...)
	return nil
}

// Remove deletes key, or only the given values, from the addressed kinds.
func (m *NoteMetadata) Remove(key string, values any, kind Kind) error {
	cs, err := m.containers("remove", key, kind)
	if err != nil {
		return err
	}
	for _, c := range cs {
		c.Remove(key, values)
	}
	return nil
}

// RemoveEmpty deletes fields without values.
func (m *NoteMetadata) RemoveEmpty(kind Kind) error {
	cs, err := m.containers("remove empty", "", kind)
	if err != nil {
		return err
	}
	for _, c := range cs {
		c.RemoveEmpty()
	}
	return nil
}

// RemoveDuplicateValues deduplicates the values of keys, or of every key.
func (m *NoteMetadata) RemoveDuplicateValues(kind Kind, keys ...string) error {
	cs, err := m.containers("remove duplicate values", "", kind)
	if err != nil {
		return err
	}
	for _, c := range cs {
		c.RemoveDuplicateValues(keys...)
	}
	return nil
}

// OrderValues sorts the values of keys, or of every key.
func (m *NoteMetadata) OrderValues(kind Kind, how Order, keys ...string) error {
	cs, err := m.containers("order values", "", kind)
	if err != nil {
		return err
	}
	for _, c := range cs {
		if err := c.OrderValues(how, keys...); err != nil {
			return err
		}
	}
	return nil
}

// OrderKeys sorts the keys.
func (m *NoteMetadata) OrderKeys(kind Kind, how Order) error {
	cs, err := m.containers("order keys", "", kind)
	if err != nil {
		return err
	}
	for _, c := range cs {
		if err := c.OrderKeys(how); err != nil {
			return err
		}
	}
	return nil
}

// Order sorts keys then values; OrderNone skips a step.
func (m *NoteMetadata) Order(kind Kind, orderKeys, orderValues Order, keys ...string) error {
	cs, err := m.containers("order", "", kind)
	if err != nil {
		return err
	}
	for _, c := range cs {
		if err := c.Order(orderKeys, orderValues, keys...); err != nil {
			return err
		}
	}
	return nil
}

// Move transfers keys, or every key of from, into to. Values are appended to
// what to already holds, without duplicates, and the key leaves from.
func (m *NoteMetadata) Move(from, to Kind, keys ...string) error {
	src, err := m.container(from)
	if err != nil {
		return err
	}
	dst, err := m.container(to)
	if err != nil {
		return err
	}
	if src == dst {
		return nil
	}
	if len(keys) == 0 {
		keys = src.fields.Keys()
	}
	for _, key := range keys {
		moveField(src, dst, key)
	}
	return nil
}

// MoveToDefaults moves every field with a configured default location into
// that location.
func (m *NoteMetadata) MoveToDefaults() error {
	if m.policy == nil {
		return nil
	}
	keys := make([]string, 0, len(m.policy.Fields))
	for key, opts := range m.policy.Fields {
		if opts.DefaultMeta != "" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		kind, err := ParseKind(m.policy.Fields[key].DefaultMeta)
		if err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		var src, dst *Container
		switch kind {
		case KindFrontmatter:
			src, dst = m.Inline.Container, m.Frontmatter.Container
		case KindInline:
			src, dst = m.Frontmatter.Container, m.Inline.Container
		default:
			continue
		}
		moveField(src, dst, key)
	}
	return nil
}

func moveField(src, dst *Container, key string) {
	values, ok := src.fields.Get(key)
	if !ok {
		return
	}
	dst.Add(key, slices.Clone(values))
	src.Remove(key, nil)
}

type updateOptions struct {
	position Position
	inplace  bool
	tmpl     Template
}

// UpdateOption tunes UpdateContent.
type UpdateOption func(*updateOptions)

// WithInlinePosition places new inline fields at the top or bottom of the body.
func WithInlinePosition(p Position) UpdateOption {
	return func(o *updateOptions) { o.position = p }
}

// WithInlineInplace toggles rewriting existing inline fields where they stand.
func WithInlineInplace(inplace bool) UpdateOption {
	return func(o *updateOptions) { o.inplace = inplace }
}

// WithInlineTemplate sets the template used for new inline fields.
func WithInlineTemplate(t Template) UpdateOption {
	return func(o *updateOptions) { o.tmpl = t }
}

// UpdateContent regenerates text from the current metadata. The frontmatter
// block always ends up at the top of the note. Defaults: new inline fields at
// the bottom, existing ones rewritten in place, standard template.
func (m *NoteMetadata) UpdateContent(text string, opts ...UpdateOption) (string, error) {
	o := updateOptions{position: Bottom, inplace: true, tmpl: TemplateStandard}
	for _, opt := range opts {
		opt(&o)
	}
	body, err := m.Inline.UpdateContent(EraseFrontmatter(text), o.position, o.inplace, o.tmpl)
	if err != nil {
		return "", err
	}
	return m.Frontmatter.String() + body, nil
}
