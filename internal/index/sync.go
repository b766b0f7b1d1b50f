package index

import (
	"log/slog"
	"slices"
	"sort"
	"time"

	"github.com/starford/notemeta/internal/metadata"
	"github.com/starford/notemeta/internal/models"
	"github.com/starford/notemeta/internal/storage"
)

// SyncStats counts what a Sync pass changed.
type SyncStats struct {
	Indexed int
	Removed int
	Failed  int
}

// Sync walks the vault and brings the index up to date:
//   - new/changed files are parsed and upserted
//   - files removed from disk are deleted from the index
//
// Notes that fail to read or parse are logged, counted and skipped.
func Sync(db *DB, store storage.Provider, policy *metadata.Policy, logger *slog.Logger) (SyncStats, error) {
	var stats SyncStats
	metas, err := store.List("", true)
	if err != nil {
		return stats, err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return stats, err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			stats.Failed++
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if _, err := indexFile(db, policy, m, data); err != nil {
			stats.Failed++
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			stats.Indexed++
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteNote(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				stats.Removed++
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return stats, nil
}

// IndexNote parses data and upserts the note at path.
func IndexNote(db NoteIndex, policy *metadata.Policy, path string, data []byte) error {
	_, err := indexFile(db, policy, models.NoteFile{Path: path}, data)
	return err
}

// indexFile parses data, upserts it into the DB and returns the rows it
// stored.
func indexFile(db NoteIndex, policy *metadata.Policy, file models.NoteFile, data []byte) ([]models.Field, error) {
	meta, err := metadata.New(string(data), policy)
	if err != nil {
		return nil, err
	}
	file.Checksum = storage.Checksum(data)
	if file.UpdatedAt.IsZero() {
		file.UpdatedAt = time.Now().UTC()
	}
	fields := Fields(file.Path, meta)
	if err := db.UpsertNote(file, fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// ChangedKeys returns, sorted, the keys whose indexed rows differ between
// before and after: added, removed, or holding other values in either kind.
func ChangedKeys(before, after []models.Field) []string {
	group := func(rows []models.Field) map[string][]string {
		out := make(map[string][]string)
		for _, f := range rows {
			v := f.Kind + "\x00"
			if f.Value != nil {
				v += "=" + *f.Value
			}
			out[f.Key] = append(out[f.Key], v)
		}
		return out
	}
	old, cur := group(before), group(after)

	var keys []string
	for key, rows := range old {
		if !slices.Equal(rows, cur[key]) {
			keys = append(keys, key)
		}
	}
	for key := range cur {
		if _, ok := old[key]; !ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// Fields flattens both metadata kinds into index rows. Position is the
// index of the key within its kind; a key without values yields one row with
// a nil Value.
func Fields(path string, meta *metadata.NoteMetadata) []models.Field {
	var out []models.Field
	for _, c := range []*metadata.Container{meta.Frontmatter.Container, meta.Inline.Container} {
		kind := c.Kind().String()
		pos := 0
		c.Fields().Each(func(key string, values []string) {
			if len(values) == 0 {
				out = append(out, models.Field{Path: path, Kind: kind, Key: key, Position: pos})
			}
			for _, v := range values {
				out = append(out, models.Field{Path: path, Kind: kind, Key: key, Value: &v, Position: pos})
			}
			pos++
		})
	}
	return out
}
