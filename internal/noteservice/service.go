// Package noteservice coordinates vault storage, the metadata index and
// metadata edits for the HTTP and MCP transports.
package noteservice

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/starford/notemeta/internal/apperr"
	"github.com/starford/notemeta/internal/index"
	"github.com/starford/notemeta/internal/metadata"
	"github.com/starford/notemeta/internal/models"
	"github.com/starford/notemeta/internal/note"
	"github.com/starford/notemeta/internal/storage"
)

// NoteDetail is the metadata view of one note.
type NoteDetail struct {
	Path        string           `json:"path"`
	Checksum    string           `json:"checksum"`
	Frontmatter *metadata.Fields `json:"frontmatter"`
	Inline      *metadata.Fields `json:"inline"`
	Content     string           `json:"content,omitempty"`
	Changed     bool             `json:"changed"`
}

// EditRequest is a list of edits applied to one note as a unit.
type EditRequest struct {
	Edits []Edit `json:"edits"`
	// IfMatch, when set, must equal the current checksum of the note.
	IfMatch string `json:"if_match,omitempty"`
	// DryRun computes the new content without writing it.
	DryRun bool `json:"dry_run,omitempty"`
}

// Service coordinates storage and index operations.
type Service struct {
	store  storage.Provider
	db     index.NoteIndex
	policy *metadata.Policy
	update []metadata.UpdateOption
}

// NewService creates a new note service. update tunes how edited notes are
// rewritten.
func NewService(store storage.Provider, db index.NoteIndex, policy *metadata.Policy, update ...metadata.UpdateOption) *Service {
	return &Service{store: store, db: db, policy: policy, update: update}
}

// Policy returns the field policy notes are parsed with.
func (s *Service) Policy() *metadata.Policy { return s.policy }

// GetMetadata reads a note from storage and returns its parsed metadata.
func (s *Service) GetMetadata(_ context.Context, path string, withContent bool) (*NoteDetail, error) {
	n, err := s.load(path)
	if err != nil {
		return nil, err
	}
	d := detail(n)
	if withContent {
		d.Content = n.Content
	}
	return d, nil
}

// ApplyEdits applies req.Edits in order, regenerates the note and writes it
// back when its content changed. Nothing is written if any edit fails.
func (s *Service) ApplyEdits(_ context.Context, path string, req EditRequest) (*NoteDetail, error) {
	n, err := s.load(path)
	if err != nil {
		return nil, err
	}
	if req.IfMatch != "" && req.IfMatch != storage.Checksum([]byte(n.Content)) {
		return nil, apperr.ErrConflict
	}
	for i, e := range req.Edits {
		if err := e.Apply(n.Metadata); err != nil {
			return nil, fmt.Errorf("%w: edit %d (%s): %v", apperr.ErrInvalidEdit, i, e.Op, err)
		}
	}
	if err := n.UpdateContent(s.update...); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidEdit, err)
	}

	d := detail(n)
	d.Content = n.Content
	d.Changed = n.Changed()
	if !d.Changed || req.DryRun {
		return d, nil
	}
	if err := n.Write(); err != nil {
		return nil, err
	}
	if err := index.IndexNote(s.db, s.policy, path, []byte(n.Content)); err != nil {
		return nil, err
	}
	return d, nil
}

// ListNotes returns a page of indexed notes.
func (s *Service) ListNotes(_ context.Context, limit, offset int) ([]models.NoteFile, int, error) {
	return s.db.ListNotes(limit, offset)
}

// Find returns the paths of indexed notes having a key, optionally with a
// value and in a given kind.
func (s *Service) Find(_ context.Context, key string, value *string, kind string) ([]string, error) {
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("%w: key is required", apperr.ErrInvalidEdit)
	}
	if kind == "notemeta" {
		kind = ""
	}
	if kind != "" && kind != "frontmatter" && kind != "inline" {
		return nil, fmt.Errorf("%w: unknown kind %q", apperr.ErrInvalidEdit, kind)
	}
	return s.db.FindNotes(index.Query{Key: key, Value: value, Kind: kind})
}

// Fields returns the distinct indexed keys with the number of notes using
// them.
func (s *Service) Fields(_ context.Context, kind string) ([]models.FieldCount, error) {
	if kind == "notemeta" {
		kind = ""
	}
	return s.db.FieldCounts(kind)
}

func (s *Service) load(path string) (*note.Note, error) {
	if !strings.HasSuffix(path, ".md") {
		return nil, apperr.ErrNotFound
	}
	n, err := note.Load(s.store, path, s.policy)
	if err != nil {
		var parseErr *note.ParseError
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, apperr.ErrNotFound
		case errors.As(err, &parseErr):
			return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidNote, err)
		}
		return nil, err
	}
	return n, nil
}

func detail(n *note.Note) *NoteDetail {
	return &NoteDetail{
		Path:        n.Path,
		Checksum:    storage.Checksum([]byte(n.Content)),
		Frontmatter: n.Metadata.Frontmatter.Fields(),
		Inline:      n.Metadata.Inline.Fields(),
	}
}

