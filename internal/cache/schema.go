// Package cache provides the SQLite-backed metadata cache that mirrors the
// vault's filesystem state. Link targets are stored as raw titles, not
// paths: a wikilink may reference a note that does not exist yet, so
// resolution happens by title equality at query time.
package cache

import (
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS notes (
	path        TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	created_at  TEXT,
	modified_at TEXT,
	word_count  INTEGER DEFAULT 0,
	starred     INTEGER DEFAULT 0
);

CREATE TABLE IF NOT EXISTS links (
	source_path TEXT NOT NULL,
	target_name TEXT NOT NULL,
	PRIMARY KEY (source_path, target_name)
);

CREATE TABLE IF NOT EXISTS tags (
	note_path TEXT NOT NULL,
	tag       TEXT NOT NULL,
	PRIMARY KEY (note_path, tag)
);

CREATE TABLE IF NOT EXISTS headings (
	note_path   TEXT NOT NULL,
	text        TEXT NOT NULL,
	level       INTEGER NOT NULL,
	line_number INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_links_target ON links(target_name);
CREATE INDEX IF NOT EXISTS idx_tags_tag ON tags(tag);
CREATE INDEX IF NOT EXISTS idx_headings_path ON headings(note_path);
`

// DB wraps a sql.DB with cache-specific operations. A single mutex guards
// the connection: at most one cache operation is in flight at a time, which
// is the serialization boundary the reconciler and query layer rely on.
type DB struct {
	mu   sync.Mutex
	conn *sql.DB
}

// Open opens (or creates) the SQLite cache database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("cache: open db: %w", err)
	}
	conn.SetMaxOpenConns(1)
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("cache: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("cache: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
