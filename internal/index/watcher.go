package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/notemeta/internal/metadata"
	"github.com/starford/notemeta/internal/models"
	"github.com/starford/notemeta/internal/storage"
)

const reconcileDelay = 200 * time.Millisecond

// Event is one watcher-driven index change.
type Event struct {
	// Kind is "created", "updated" or "deleted".
	Kind string
	Path string
	// Keys are the metadata keys whose indexed values changed.
	Keys []string
}

// EventCallback is called after a watcher-driven index change.
type EventCallback func(Event)

type watcher struct {
	db     *DB
	store  storage.Provider
	policy *metadata.Policy
	root   string
	logger *slog.Logger
	cb     EventCallback
}

func (w *watcher) emit(kind, path string, before, after []models.Field) {
	if w.cb != nil {
		w.cb(Event{Kind: kind, Path: path, Keys: ChangedKeys(before, after)})
	}
}

// index re-indexes one note and reports it as kind.
func (w *watcher) index(file models.NoteFile, data []byte, kind string) error {
	before, _ := w.db.NoteFields(file.Path)
	after, err := indexFile(w.db, w.policy, file, data)
	if err != nil {
		return err
	}
	w.emit(kind, file.Path, before, after)
	return nil
}

// remove drops one note from the index and reports it as deleted.
func (w *watcher) remove(path string) error {
	before, _ := w.db.NoteFields(path)
	if err := w.db.DeleteNote(path); err != nil {
		return err
	}
	w.emit("deleted", path, before, nil)
	return nil
}

// Watch starts an fsnotify watcher on the vault root and keeps the metadata
// index in step with the notes until ctx is cancelled. It calls cb (if
// non-nil) after each successful index mutation.
//
// New directories created at runtime are automatically added to the watch
// list. Rename events trigger a debounced reconciliation pass that removes
// stale index entries and indexes notes that appeared under a new name.
func Watch(ctx context.Context, db *DB, store storage.Provider, policy *metadata.Policy, vaultRoot string, logger *slog.Logger, cb EventCallback) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := addDirsRecursive(fw, vaultRoot); err != nil {
		return err
	}

	w := &watcher{db: db, store: store, policy: policy, root: vaultRoot, logger: logger, cb: cb}
	logger.Info("watcher: started", slog.String("root", vaultRoot))

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(reconcileDelay)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(reconcileDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			w.reconcile()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.handle(fw, ev) {
				scheduleReconcile()
			}

		case watchErr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// handle applies one fsnotify event and reports whether a reconciliation
// pass is needed.
func (w *watcher) handle(fw *fsnotify.Watcher, ev fsnotify.Event) bool {
	absPath := ev.Name

	if ev.Op&fsnotify.Create != 0 {
		if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
			if hidden(info.Name()) {
				return false
			}
			if addErr := addDirsRecursive(fw, absPath); addErr != nil {
				w.logger.Warn("watcher: add new dir failed",
					slog.String("path", absPath),
					slog.String("error", addErr.Error()))
			} else {
				w.logger.Debug("watcher: watching new dir", slog.String("path", absPath))
			}
			w.indexDir(absPath)
			return false
		}
	}

	if !strings.HasSuffix(absPath, ".md") {
		return false
	}
	rel, relErr := filepath.Rel(w.root, absPath)
	if relErr != nil {
		return false
	}
	rel = filepath.ToSlash(rel)

	switch {
	case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
		data, readErr := w.store.Read(rel)
		if readErr != nil {
			w.logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", readErr.Error()))
			return false
		}
		kind := "updated"
		if ev.Op&fsnotify.Create != 0 {
			kind = "created"
		}
		if idxErr := w.index(models.NoteFile{Path: rel}, data, kind); idxErr != nil {
			w.logger.Warn("watcher: index failed", slog.String("path", rel), slog.String("error", idxErr.Error()))
			return false
		}
		w.logger.Debug("watcher: indexed", slog.String("path", rel), slog.String("op", kind))

	case ev.Op&fsnotify.Remove != 0:
		if delErr := w.remove(rel); delErr != nil {
			w.logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", delErr.Error()))
			return false
		}
		w.logger.Debug("watcher: deleted", slog.String("path", rel))

	case ev.Op&fsnotify.Rename != 0:
		// fsnotify fires Rename on the old path only; the new path arrives
		// as a separate Create when it stays inside a watched directory.
		if delErr := w.remove(rel); delErr != nil {
			w.logger.Warn("watcher: rename delete failed", slog.String("path", rel), slog.String("error", delErr.Error()))
		} else {
			w.logger.Debug("watcher: rename old deleted", slog.String("path", rel))
		}
		return true
	}
	return false
}

// reconcile removes index entries without a file on disk and indexes files
// whose checksum differs from the index.
func (w *watcher) reconcile() {
	checksums, err := w.db.AllChecksums()
	if err != nil {
		w.logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}

	metas, err := w.store.List("", true)
	if err != nil {
		w.logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]models.NoteFile, len(metas))
	for _, m := range metas {
		disk[m.Path] = m
	}

	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if delErr := w.remove(p); delErr == nil {
				w.logger.Debug("reconcile: removed stale", slog.String("path", p))
			}
		}
	}

	for p, m := range disk {
		if checksums[p] == m.Checksum {
			continue
		}
		data, readErr := w.store.Read(p)
		if readErr != nil {
			continue
		}
		kind := "created"
		if _, known := checksums[p]; known {
			kind = "updated"
		}
		if idxErr := w.index(m, data, kind); idxErr == nil {
			w.logger.Debug("reconcile: indexed", slog.String("path", p), slog.String("op", kind))
		}
	}
}

// indexDir indexes any notes found in a newly created directory.
func (w *watcher) indexDir(dirPath string) {
	_ = filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}
		rel, relErr := filepath.Rel(w.root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		data, readErr := w.store.Read(rel)
		if readErr != nil {
			return nil
		}
		if idxErr := w.index(models.NoteFile{Path: rel}, data, "created"); idxErr == nil {
			w.logger.Debug("watcher: indexed from new dir", slog.String("path", rel))
		}
		return nil
	})
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// addDirsRecursive adds root and all its non-hidden subdirectories to the
// watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && hidden(d.Name()) {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
