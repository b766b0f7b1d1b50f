// Package storage defines the vault file-system abstraction notes are read
// from and written back to.
package storage

import "github.com/starford/notemeta/internal/models"

// Provider is the interface for vault file operations. Paths are relative to
// the vault root.
type Provider interface {
	// List returns every .md file in dir. With recursive false only the
	// direct children of dir are returned.
	List(dir string, recursive bool) ([]models.NoteFile, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically replaces the content of path.
	Write(path string, content []byte) error
}
