// Package index keeps a SQLite summary of every score in the library, with
// optional FTS5 full-text search.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS scores (
	path       TEXT PRIMARY KEY,
	title      TEXT NOT NULL DEFAULT '',
	composer   TEXT NOT NULL DEFAULT '',
	copyright  TEXT NOT NULL DEFAULT '',
	checksum   TEXT NOT NULL DEFAULT '',
	part_names TEXT NOT NULL DEFAULT '[]',
	parts      INTEGER NOT NULL DEFAULT 0,
	measures   INTEGER NOT NULL DEFAULT 0,
	notes      INTEGER NOT NULL DEFAULT 0,
	rests      INTEGER NOT NULL DEFAULT 0,
	warnings   INTEGER NOT NULL DEFAULT 0,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS diagnostics (
	path    TEXT NOT NULL REFERENCES scores(path) ON DELETE CASCADE,
	code    TEXT NOT NULL,
	message TEXT NOT NULL DEFAULT '',
	part    TEXT NOT NULL DEFAULT '',
	measure TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_diagnostics_path ON diagnostics(path);
CREATE INDEX IF NOT EXISTS idx_scores_composer ON scores(composer);
`

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks that the database is reachable.
func (db *DB) Ping() error {
	return db.conn.Ping()
}
