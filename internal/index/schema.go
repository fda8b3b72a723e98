// Package index provides a SQLite-backed tag index that answers facet
// queries (images per tag) for live gallery sessions.
package index

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS image_tags (
	session_id TEXT    NOT NULL,
	image_id   TEXT    NOT NULL,
	tag        TEXT    NOT NULL,
	added_at   INTEGER NOT NULL DEFAULT (strftime('%s','now')),
	UNIQUE(session_id, image_id, tag)
);

CREATE INDEX IF NOT EXISTS idx_image_tags_session_tag ON image_tags(session_id, tag);
`

// MemoryDSN keeps the index in process memory.
const MemoryDSN = ":memory:"

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
// The in-memory DSN is pinned to a single connection so every query sees
// the same database.
func Open(dsn string) (*DB, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	conn, err := sql.Open("sqlite3", dsn+sep+"_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if strings.HasPrefix(dsn, MemoryDSN) {
		conn.SetMaxOpenConns(1)
		conn.SetConnMaxLifetime(0)
		conn.SetConnMaxIdleTime(0)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
