package cache

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/halvard/synapse/internal/apperr"
	"github.com/halvard/synapse/internal/models"
)

// storeErr tags a driver failure with the store-error sentinel while keeping
// the underlying cause in the chain.
func storeErr(op string, err error) error {
	return fmt.Errorf("cache: %s: %w: %w", op, apperr.ErrStore, err)
}

// nullable maps empty strings to SQL NULL so absent frontmatter timestamps
// stay distinguishable from empty ones.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// UpsertNote inserts or updates a note row. On conflict only title,
// modified_at, and word_count change: created_at keeps its first-indexed
// value and starred is user state that reindexing must never revert.
func (db *DB) UpsertNote(n models.CachedNote) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	_, err := db.conn.Exec(`
		INSERT INTO notes (path, title, created_at, modified_at, word_count, starred)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title       = excluded.title,
			modified_at = excluded.modified_at,
			word_count  = excluded.word_count
	`, n.Path, n.Title, nullable(n.CreatedAt), nullable(n.ModifiedAt), n.WordCount, n.Starred)
	if err != nil {
		return storeErr("upsert note", err)
	}
	return nil
}

// GetNote returns one cached note, or apperr.ErrNotFound.
func (db *DB) GetNote(path string) (*models.CachedNote, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	row := db.conn.QueryRow(`
		SELECT path, title, COALESCE(created_at, ''), COALESCE(modified_at, ''), word_count, starred
		FROM notes WHERE path = ?
	`, path)
	var n models.CachedNote
	if err := row.Scan(&n.Path, &n.Title, &n.CreatedAt, &n.ModifiedAt, &n.WordCount, &n.Starred); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("cache: note %s: %w", path, apperr.ErrNotFound)
		}
		return nil, storeErr("get note", err)
	}
	return &n, nil
}

// GetAllNotes returns every cached note, most recently modified first.
func (db *DB) GetAllNotes() ([]models.CachedNote, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	rows, err := db.conn.Query(`
		SELECT path, title, COALESCE(created_at, ''), COALESCE(modified_at, ''), word_count, starred
		FROM notes ORDER BY modified_at DESC
	`)
	if err != nil {
		return nil, storeErr("all notes", err)
	}
	defer rows.Close()

	var out []models.CachedNote
	for rows.Next() {
		var n models.CachedNote
		if err := rows.Scan(&n.Path, &n.Title, &n.CreatedAt, &n.ModifiedAt, &n.WordCount, &n.Starred); err != nil {
			return nil, storeErr("scan note", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// AllPaths returns the set of every cached note path.
func (db *DB) AllPaths() (map[string]struct{}, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	rows, err := db.conn.Query(`SELECT path FROM notes`)
	if err != nil {
		return nil, storeErr("all paths", err)
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, storeErr("scan path", err)
		}
		out[p] = struct{}{}
	}
	return out, rows.Err()
}

// DeleteNote removes a note and all its dependent rows in one logical
// operation. The cascade is manual: dependents are deleted before the note
// row, inside a single transaction, so a backlink query can never observe a
// link whose source note is gone.
func (db *DB) DeleteNote(path string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.conn.Begin()
	if err != nil {
		return storeErr("begin delete", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	for _, stmt := range []string{
		`DELETE FROM links WHERE source_path = ?`,
		`DELETE FROM tags WHERE note_path = ?`,
		`DELETE FROM headings WHERE note_path = ?`,
		`DELETE FROM notes WHERE path = ?`,
	} {
		if _, err := tx.Exec(stmt, path); err != nil {
			return storeErr("delete note", err)
		}
	}
	return tx.Commit()
}

// ToggleStar flips the starred flag and returns the new value. The
// read-modify-write runs inside one transaction on the mutex-guarded
// connection, so concurrent toggles on the same path serialize.
func (db *DB) ToggleStar(path string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.conn.Begin()
	if err != nil {
		return false, storeErr("begin toggle", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.Exec(`UPDATE notes SET starred = CASE WHEN starred = 0 THEN 1 ELSE 0 END WHERE path = ?`, path)
	if err != nil {
		return false, storeErr("toggle star", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, fmt.Errorf("cache: note %s: %w", path, apperr.ErrNotFound)
	}
	var starred bool
	if err := tx.QueryRow(`SELECT starred FROM notes WHERE path = ?`, path).Scan(&starred); err != nil {
		return false, storeErr("read star", err)
	}
	return starred, tx.Commit()
}

// ReplaceLinks swaps the full outgoing-link set of a note: delete all, then
// insert. Duplicate targets collapse on the (source, target) primary key.
func (db *DB) ReplaceLinks(sourcePath string, targets []string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.conn.Begin()
	if err != nil {
		return storeErr("begin links", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`DELETE FROM links WHERE source_path = ?`, sourcePath); err != nil {
		return storeErr("clear links", err)
	}
	if len(targets) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO links (source_path, target_name) VALUES (?, ?)`)
		if err != nil {
			return storeErr("prepare link insert", err)
		}
		defer stmt.Close()
		for _, target := range targets {
			if _, err := stmt.Exec(sourcePath, target); err != nil {
				return storeErr("insert link", err)
			}
		}
	}
	return tx.Commit()
}

// Backlinks returns the distinct paths of notes linking to targetName.
func (db *DB) Backlinks(targetName string) ([]string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	rows, err := db.conn.Query(`SELECT DISTINCT source_path FROM links WHERE target_name = ? ORDER BY source_path`, targetName)
	if err != nil {
		return nil, storeErr("backlinks", err)
	}
	defer rows.Close()
	return scanStrings(rows)
}

// OutgoingLinks returns the link targets recorded for a source note.
func (db *DB) OutgoingLinks(sourcePath string) ([]string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	rows, err := db.conn.Query(`SELECT target_name FROM links WHERE source_path = ? ORDER BY target_name`, sourcePath)
	if err != nil {
		return nil, storeErr("outgoing links", err)
	}
	defer rows.Close()
	return scanStrings(rows)
}

// AllLinks returns every link edge, for graph views.
func (db *DB) AllLinks() ([]models.Link, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	rows, err := db.conn.Query(`SELECT source_path, target_name FROM links ORDER BY source_path, target_name`)
	if err != nil {
		return nil, storeErr("all links", err)
	}
	defer rows.Close()

	var out []models.Link
	for rows.Next() {
		var l models.Link
		if err := rows.Scan(&l.SourcePath, &l.TargetName); err != nil {
			return nil, storeErr("scan link", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// ReplaceTags swaps the full tag set of a note.
func (db *DB) ReplaceTags(notePath string, tags []string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.conn.Begin()
	if err != nil {
		return storeErr("begin tags", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`DELETE FROM tags WHERE note_path = ?`, notePath); err != nil {
		return storeErr("clear tags", err)
	}
	if len(tags) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO tags (note_path, tag) VALUES (?, ?)`)
		if err != nil {
			return storeErr("prepare tag insert", err)
		}
		defer stmt.Close()
		for _, tag := range tags {
			if _, err := stmt.Exec(notePath, tag); err != nil {
				return storeErr("insert tag", err)
			}
		}
	}
	return tx.Commit()
}

// AllTags returns every tag with its note count, highest count first.
func (db *DB) AllTags() ([]models.TagCount, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	rows, err := db.conn.Query(`SELECT tag, COUNT(*) AS cnt FROM tags GROUP BY tag ORDER BY cnt DESC, tag`)
	if err != nil {
		return nil, storeErr("all tags", err)
	}
	defer rows.Close()

	var out []models.TagCount
	for rows.Next() {
		var tc models.TagCount
		if err := rows.Scan(&tc.Tag, &tc.Count); err != nil {
			return nil, storeErr("scan tag", err)
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}

// NotesByTag returns the paths of notes carrying the given tag.
func (db *DB) NotesByTag(tag string) ([]string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	rows, err := db.conn.Query(`SELECT note_path FROM tags WHERE tag = ? ORDER BY note_path`, tag)
	if err != nil {
		return nil, storeErr("notes by tag", err)
	}
	defer rows.Close()
	return scanStrings(rows)
}

// ReplaceHeadings swaps the full heading list of a note.
func (db *DB) ReplaceHeadings(notePath string, headings []models.Heading) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.conn.Begin()
	if err != nil {
		return storeErr("begin headings", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`DELETE FROM headings WHERE note_path = ?`, notePath); err != nil {
		return storeErr("clear headings", err)
	}
	if len(headings) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO headings (note_path, text, level, line_number) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return storeErr("prepare heading insert", err)
		}
		defer stmt.Close()
		for _, h := range headings {
			if _, err := stmt.Exec(notePath, h.Text, h.Level, h.Line); err != nil {
				return storeErr("insert heading", err)
			}
		}
	}
	return tx.Commit()
}

// Headings returns a note's headings ordered by line number.
func (db *DB) Headings(notePath string) ([]models.Heading, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	rows, err := db.conn.Query(`SELECT text, level, line_number FROM headings WHERE note_path = ? ORDER BY line_number`, notePath)
	if err != nil {
		return nil, storeErr("headings", err)
	}
	defer rows.Close()

	var out []models.Heading
	for rows.Next() {
		var h models.Heading
		if err := rows.Scan(&h.Text, &h.Level, &h.Line); err != nil {
			return nil, storeErr("scan heading", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// GetSetting returns a setting value; ok is false when the key is unset.
func (db *DB) GetSetting(key string) (string, bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var value string
	err := db.conn.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, storeErr("get setting", err)
	}
	return value, true, nil
}

// SetSetting upserts a setting value.
func (db *DB) SetSetting(key, value string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	_, err := db.conn.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return storeErr("set setting", err)
	}
	return nil
}

func scanStrings(rows *sql.Rows) ([]string, error) {
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, storeErr("scan", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
