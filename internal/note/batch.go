package note

import (
	"context"

	"github.com/starford/notemeta/internal/metadata"
)

// Batch applies NoteMetadata edits to every note of a Notes. Edits only
// touch the in-memory metadata; call Notes.UpdateContent to regenerate text.
type Batch struct {
	notes *Notes
}

func (b *Batch) each(fn func(*metadata.NoteMetadata) error) error {
	return b.notes.Each(context.Background(), func(_ context.Context, n *Note) error {
		if err := fn(n.Metadata); err != nil {
			return &UpdateError{Path: n.Path, Err: err}
		}
		return nil
	})
}

// Add adds values under key in every note.
func (b *Batch) Add(key string, values any, kind metadata.Kind, opts ...metadata.AddOption) error {
	return b.each(func(m *metadata.NoteMetadata) error {
		return m.Add(key, values, kind, opts...)
	})
}

// Remove removes key, or some of its values, in every note.
func (b *Batch) Remove(key string, values any, kind metadata.Kind) error {
	return b.each(func(m *metadata.NoteMetadata) error {
		return m.Remove(key, values, kind)
	})
}

// Move moves keys between kinds in every note.
func (b *Batch) Move(from, to metadata.Kind, keys ...string) error {
	return b.each(func(m *metadata.NoteMetadata) error {
		return m.Move(from, to, keys...)
	})
}

// MoveToDefaults moves configured fields to their default kind in every note.
func (b *Batch) MoveToDefaults() error {
	return b.each(func(m *metadata.NoteMetadata) error {
		return m.MoveToDefaults()
	})
}

// RemoveEmpty removes fields without values in every note.
func (b *Batch) RemoveEmpty(kind metadata.Kind) error {
	return b.each(func(m *metadata.NoteMetadata) error {
		return m.RemoveEmpty(kind)
	})
}

// RemoveDuplicateValues deduplicates values in every note.
func (b *Batch) RemoveDuplicateValues(kind metadata.Kind, keys ...string) error {
	return b.each(func(m *metadata.NoteMetadata) error {
		return m.RemoveDuplicateValues(kind, keys...)
	})
}

// OrderValues sorts values in every note.
func (b *Batch) OrderValues(kind metadata.Kind, how metadata.Order, keys ...string) error {
	return b.each(func(m *metadata.NoteMetadata) error {
		return m.OrderValues(kind, how, keys...)
	})
}

// OrderKeys sorts keys in every note.
func (b *Batch) OrderKeys(kind metadata.Kind, how metadata.Order) error {
	return b.each(func(m *metadata.NoteMetadata) error {
		return m.OrderKeys(kind, how)
	})
}

// Order sorts keys and values in every note.
func (b *Batch) Order(kind metadata.Kind, orderKeys, orderValues metadata.Order, keys ...string) error {
	return b.each(func(m *metadata.NoteMetadata) error {
		return m.Order(kind, orderKeys, orderValues, keys...)
	})
}
