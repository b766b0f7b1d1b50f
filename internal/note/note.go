// Package note binds parsed metadata to a note file in the vault and applies
// edits to batches of notes.
package note

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/starford/notemeta/internal/metadata"
	"github.com/starford/notemeta/internal/storage"
)

// Note is one Markdown file: its current content and the metadata parsed
// from it when it was loaded.
type Note struct {
	Path     string
	Content  string
	Metadata *metadata.NoteMetadata

	original string
	store    storage.Provider
}

// Load reads path from store and parses its metadata.
func Load(store storage.Provider, path string, policy *metadata.Policy) (*Note, error) {
	data, err := store.Read(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	n, err := New(path, string(data), policy)
	if err != nil {
		return nil, err
	}
	n.store = store
	return n, nil
}

// New builds a note from content that is already in memory. The note has no
// store attached until WriteTo is used.
func New(path, content string, policy *metadata.Policy) (*Note, error) {
	meta, err := metadata.New(content, policy)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &Note{
		Path:     path,
		Content:  content,
		Metadata: meta,
		original: content,
	}, nil
}

// Name returns the file name of the note.
func (n *Note) Name() string {
	if i := strings.LastIndexByte(n.Path, '/'); i >= 0 {
		return n.Path[i+1:]
	}
	return n.Path
}

// Changed reports whether Content differs from what was loaded or last
// written.
func (n *Note) Changed() bool {
	return n.Content != n.original
}

// Append adds s on a new line at the end of the content. Unless allowRepeat
// is set, nothing happens when s already occurs in the note.
func (n *Note) Append(s string, allowRepeat bool) {
	if !allowRepeat && strings.Contains(n.Content, s) {
		return
	}
	n.Content += "\n" + s
}

// Sub replaces every occurrence of pattern with repl. pattern is literal
// text unless isRegex is set; repl may then use $1-style expansions.
func (n *Note) Sub(pattern, repl string, isRegex bool) error {
	if !isRegex {
		n.Content = strings.ReplaceAll(n.Content, pattern, repl)
		return nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("note: sub pattern %q: %w", pattern, err)
	}
	n.Content = re.ReplaceAllString(n.Content, repl)
	return nil
}

// UpdateContent regenerates Content from the current metadata.
func (n *Note) UpdateContent(opts ...metadata.UpdateOption) error {
	out, err := n.Metadata.UpdateContent(n.Content, opts...)
	if err != nil {
		return &UpdateError{Path: n.Path, Err: err}
	}
	n.Content = out
	return nil
}

// Write replaces the note's file with Content.
func (n *Note) Write() error {
	if err := n.WriteAs(n.Path); err != nil {
		return err
	}
	n.original = n.Content
	return nil
}

// WriteAs writes Content to another path in the same vault. The note keeps
// its own path.
func (n *Note) WriteAs(path string) error {
	if n.store == nil {
		return fmt.Errorf("note: write %s: no storage attached", path)
	}
	return n.WriteTo(n.store, path)
}

// WriteTo writes Content to path in store.
func (n *Note) WriteTo(store storage.Provider, path string) error {
	if err := store.Write(path, []byte(n.Content)); err != nil {
		return fmt.Errorf("note: write %s: %w", path, err)
	}
	return nil
}
