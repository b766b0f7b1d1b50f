package index

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/starford/notemeta/internal/models"
)

// UpsertNote inserts or replaces a note and all of its fields within a transaction.
func (db *DB) UpsertNote(n models.NoteFile, fields []models.Field) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO notes (path, checksum, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, n.Path, n.Checksum, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert note: %w", err)
	}

	// Replace fields: delete old then bulk insert.
	if _, err := tx.Exec(`DELETE FROM fields WHERE path = ?`, n.Path); err != nil {
		return fmt.Errorf("index: clear fields: %w", err)
	}
	if len(fields) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO fields (path, kind, key, value, position) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare field insert: %w", err)
		}
		defer stmt.Close()
		for _, f := range fields {
			if _, err := stmt.Exec(n.Path, f.Kind, f.Key, f.Value, f.Position); err != nil {
				return fmt.Errorf("index: insert field: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteNote removes a note and its fields.
func (db *DB) DeleteNote(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`DELETE FROM fields WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete fields: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM notes WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete note: %w", err)
	}

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a note, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM notes WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// ListNotes returns a page of indexed notes ordered by path, plus the total
// number of notes.
func (db *DB) ListNotes(limit, offset int) ([]models.NoteFile, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM notes`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count notes: %w", err)
	}
	rows, err := db.conn.Query(`
		SELECT path, checksum, updated_at
		FROM notes
		ORDER BY path
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list notes: %w", err)
	}
	defer rows.Close()

	out := []models.NoteFile{}
	for rows.Next() {
		var n models.NoteFile
		if err := rows.Scan(&n.Path, &n.Checksum, &n.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, n)
	}
	return out, total, rows.Err()
}

// NoteFields returns the indexed fields of one note in document order.
func (db *DB) NoteFields(path string) ([]models.Field, error) {
	rows, err := db.conn.Query(`
		SELECT path, kind, key, value, position
		FROM fields
		WHERE path = ?
		ORDER BY kind, position, rowid
	`, path)
	if err != nil {
		return nil, fmt.Errorf("index: note fields: %w", err)
	}
	defer rows.Close()

	var out []models.Field
	for rows.Next() {
		var (
			f     models.Field
			value sql.NullString
		)
		if err := rows.Scan(&f.Path, &f.Kind, &f.Key, &value, &f.Position); err != nil {
			return nil, err
		}
		if value.Valid {
			f.Value = &value.String
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// FindNotes returns the paths of the notes matching q, ordered by path.
func (db *DB) FindNotes(q Query) ([]string, error) {
	if q.Key == "" {
		return nil, fmt.Errorf("index: find notes: key is required")
	}
	where := []string{"key = ?"}
	args := []any{q.Key}
	if q.Value != nil {
		where = append(where, "value = ?")
		args = append(args, *q.Value)
	}
	if q.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, q.Kind)
	}
	rows, err := db.conn.Query(
		`SELECT DISTINCT path FROM fields WHERE `+strings.Join(where, " AND ")+` ORDER BY path`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("index: find notes: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// FieldCounts returns every distinct key per kind with the number of notes
// using it. An empty kind covers both kinds.
func (db *DB) FieldCounts(kind string) ([]models.FieldCount, error) {
	query := `SELECT key, kind, count(DISTINCT path) FROM fields`
	var args []any
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, kind)
	}
	query += ` GROUP BY key, kind ORDER BY key, kind`

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("index: field counts: %w", err)
	}
	defer rows.Close()

	out := []models.FieldCount{}
	for rows.Next() {
		var c models.FieldCount
		if err := rows.Scan(&c.Key, &c.Kind, &c.Notes); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// AllPaths returns every indexed note path.
func (db *DB) AllPaths() (map[string]struct{}, error) {
	rows, err := db.conn.Query(`SELECT path FROM notes`)
	if err != nil {
		return nil, fmt.Errorf("index: all paths: %w", err)
	}
	defer rows.Close()
	out := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out[p] = struct{}{}
	}
	return out, rows.Err()
}

// AllChecksums returns the stored checksum of every indexed note.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM notes`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}
