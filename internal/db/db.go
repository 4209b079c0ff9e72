package db

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite"

	"cocon/cooc/internal/errors"
)

// DB wraps a SQLite database holding the scholarly graph and sample manifests
type DB struct {
	conn *sql.DB
	Path string
}

// OpenDB opens a SQLite database with WAL mode and foreign keys enabled
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if path == ":memory:" {
		// every pooled connection would otherwise see its own empty database
		conn.SetMaxOpenConns(1)
	}

	// Enable WAL mode for concurrent reads
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "setting WAL mode")
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "enabling foreign keys")
	}

	return &DB{conn: conn, Path: path}, nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.conn.Close()
}

// Conn returns the underlying sql.DB for custom queries
func (d *DB) Conn() *sql.DB {
	return d.conn
}

const schema = `
CREATE TABLE IF NOT EXISTS nodes (
	id    TEXT PRIMARY KEY,
	type  TEXT NOT NULL DEFAULT '',
	name  TEXT NOT NULL DEFAULT '',
	year  INTEGER,
	month INTEGER,
	day   INTEGER,
	attrs TEXT
);
CREATE TABLE IF NOT EXISTS edges (
	source_id TEXT NOT NULL,
	target_id TEXT NOT NULL,
	type      TEXT NOT NULL,
	PRIMARY KEY (source_id, target_id, type)
);
CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target_id);
CREATE TABLE IF NOT EXISTS sample_runs (
	id         TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL,
	seed       INTEGER,
	requested  INTEGER NOT NULL,
	index_size INTEGER NOT NULL,
	positives  INTEGER NOT NULL,
	negatives  INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS samples (
	id          TEXT PRIMARY KEY,
	run_id      TEXT NOT NULL REFERENCES sample_runs(id) ON DELETE CASCADE,
	label       TEXT NOT NULL,
	position    INTEGER NOT NULL,
	e1          TEXT NOT NULL,
	e2          TEXT NOT NULL,
	year        INTEGER NOT NULL,
	month       INTEGER NOT NULL,
	cooc_papers TEXT NOT NULL,
	node_count  INTEGER NOT NULL,
	edge_count  INTEGER NOT NULL
);
`

// EnsureSchema creates the graph and manifest tables if they don't exist.
// Edges carry no foreign key to nodes: the store tolerates dangling edges
// and the snapshot layer filters them.
func (d *DB) EnsureSchema(ctx context.Context) error {
	if _, err := d.conn.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "creating schema")
	}
	return nil
}
