package note

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/starford/notemeta/internal/metadata"
	"github.com/starford/notemeta/internal/storage"
)

const defaultWorkers = 4

// Notes is a batch of notes. Every note owns its own content and metadata,
// so batch operations run on up to Workers notes at a time.
type Notes struct {
	Workers int

	notes []*Note
}

// NewNotes wraps already loaded notes.
func NewNotes(notes ...*Note) *Notes {
	return &Notes{Workers: defaultWorkers, notes: notes}
}

// LoadNotes loads every note named by paths. A path ending in ".md" is a
// single note; anything else is a directory whose notes are loaded, with its
// sub-directories when recursive is set. The first failing note aborts the
// load.
func LoadNotes(ctx context.Context, store storage.Provider, policy *metadata.Policy, paths []string, recursive bool, workers int) (*Notes, error) {
	var files []string
	seen := make(map[string]struct{})
	for _, p := range paths {
		if strings.HasSuffix(p, ".md") {
			if _, dup := seen[p]; !dup {
				seen[p] = struct{}{}
				files = append(files, p)
			}
			continue
		}
		listed, err := store.List(p, recursive)
		if err != nil {
			return nil, err
		}
		for _, f := range listed {
			if _, dup := seen[f.Path]; dup {
				continue
			}
			seen[f.Path] = struct{}{}
			files = append(files, f.Path)
		}
	}

	ns := &Notes{Workers: workers, notes: make([]*Note, len(files))}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(ns.limit())
	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			n, err := Load(store, path, policy)
			if err != nil {
				return err
			}
			ns.notes[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ns, nil
}

// Len returns the number of notes in the batch.
func (ns *Notes) Len() int { return len(ns.notes) }

// Notes returns the notes in load order.
func (ns *Notes) Notes() []*Note { return ns.notes }

func (ns *Notes) limit() int {
	if ns.Workers < 1 {
		return 1
	}
	return ns.Workers
}

// Each runs fn on every note, up to Workers at a time. The first error
// cancels the remaining work and is returned.
func (ns *Notes) Each(ctx context.Context, fn func(context.Context, *Note) error) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(ns.limit())
	for _, n := range ns.notes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(ctx, n)
		})
	}
	return g.Wait()
}

// MetaQuery is one NoteMetadata.Has condition.
type MetaQuery struct {
	Key    string
	Values any
	Kind   metadata.Kind
}

// Filter keeps the notes a batch operation applies to. Empty fields do not
// filter.
type Filter struct {
	// Prefix and Suffix match the file name.
	Prefix string
	Suffix string
	// Pattern is a regular expression that must match at the start of the
	// file name.
	Pattern string
	// HasMeta conditions must all hold.
	HasMeta []MetaQuery
}

// Filter drops the notes that do not satisfy f.
func (ns *Notes) Filter(f Filter) error {
	var re *regexp.Regexp
	if f.Pattern != "" {
		var err error
		re, err = regexp.Compile(`^(?:` + f.Pattern + `)`)
		if err != nil {
			return fmt.Errorf("note: filter pattern %q: %w", f.Pattern, err)
		}
	}
	kept := ns.notes[:0]
	for _, n := range ns.notes {
		if f.keep(n, re) {
			kept = append(kept, n)
		}
	}
	clear(ns.notes[len(kept):])
	ns.notes = kept
	return nil
}

func (f Filter) keep(n *Note, re *regexp.Regexp) bool {
	name := n.Name()
	if f.Prefix != "" && !strings.HasPrefix(name, f.Prefix) {
		return false
	}
	if f.Suffix != "" && !strings.HasSuffix(name, f.Suffix) {
		return false
	}
	if re != nil && !re.MatchString(name) {
		return false
	}
	for _, q := range f.HasMeta {
		if !n.Metadata.Has(q.Key, q.Values, q.Kind) {
			return false
		}
	}
	return true
}

// Append appends s to every note.
func (ns *Notes) Append(s string, allowRepeat bool) {
	for _, n := range ns.notes {
		n.Append(s, allowRepeat)
	}
}

// UpdateContent regenerates the content of every note.
func (ns *Notes) UpdateContent(ctx context.Context, opts ...metadata.UpdateOption) error {
	return ns.Each(ctx, func(_ context.Context, n *Note) error {
		return n.UpdateContent(opts...)
	})
}

// Write writes every note back to its file.
func (ns *Notes) Write(ctx context.Context) error {
	return ns.Each(ctx, func(_ context.Context, n *Note) error {
		return n.Write()
	})
}

// Changed returns the notes whose content differs from their file.
func (ns *Notes) Changed() []*Note {
	var out []*Note
	for _, n := range ns.notes {
		if n.Changed() {
			out = append(out, n)
		}
	}
	return out
}

// Metadata returns the batch metadata editor.
func (ns *Notes) Metadata() *Batch {
	return &Batch{notes: ns}
}
