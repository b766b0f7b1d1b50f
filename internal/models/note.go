// Package models defines the plain row types shared by storage, the index
// and the service layer.
package models

import "time"

// NoteFile describes a note on disk as returned by list operations.
type NoteFile struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Field is one indexed metadata value. Value is nil for a key stored without
// values.
type Field struct {
	Path     string  `json:"path"`
	Kind     string  `json:"kind"` // "frontmatter" or "inline"
	Key      string  `json:"key"`
	Value    *string `json:"value"`
	Position int     `json:"position"`
}

// FieldCount is a distinct metadata key with the number of notes using it.
type FieldCount struct {
	Key   string `json:"key"`
	Kind  string `json:"kind"`
	Notes int    `json:"notes"`
}
