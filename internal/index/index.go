package index

import "github.com/starford/notemeta/internal/models"

// NoteIndex defines the interface for metadata index operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type NoteIndex interface {
	UpsertNote(n models.NoteFile, fields []models.Field) error
	DeleteNote(path string) error
	GetChecksum(path string) (string, error)
	ListNotes(limit, offset int) ([]models.NoteFile, int, error)
	NoteFields(path string) ([]models.Field, error)
	FindNotes(q Query) ([]string, error)
	FieldCounts(kind string) ([]models.FieldCount, error)
	AllPaths() (map[string]struct{}, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Query selects notes by metadata. Key is required; a nil Value matches any
// value and an empty Kind matches both kinds.
type Query struct {
	Key   string
	Value *string
	Kind  string
}

// Verify *DB satisfies NoteIndex at compile time.
var _ NoteIndex = (*DB)(nil)
