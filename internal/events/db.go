// Package events stores the two ingestion tables (content consumption and
// code contributions) in SQLite and reads them back grouped by date.
package events

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS consumption_events (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	date     TEXT    NOT NULL CHECK (date GLOB '[0-9][0-9][0-9][0-9]-[0-9][0-9]-[0-9][0-9]'),
	category TEXT    NOT NULL CHECK (category IN ('music', 'video')),
	count    INTEGER NOT NULL DEFAULT 1 CHECK (count >= 0)
);

CREATE TABLE IF NOT EXISTS commit_events (
	id    INTEGER PRIMARY KEY AUTOINCREMENT,
	date  TEXT    NOT NULL CHECK (date GLOB '[0-9][0-9][0-9][0-9]-[0-9][0-9]-[0-9][0-9]'),
	count INTEGER NOT NULL DEFAULT 1 CHECK (count >= 0)
);

CREATE INDEX IF NOT EXISTS idx_consumption_date ON consumption_events(date);
CREATE INDEX IF NOT EXISTS idx_commit_date ON commit_events(date);
`

// DB wraps a sql.DB with event-table operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("events: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("events: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("events: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
