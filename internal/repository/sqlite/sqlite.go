// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which needs a C compiler and makes
// cross-compilation painful. modernc.org/sqlite is a pure Go translation of
// the SQLite sources: no C toolchain, works everywhere Go works, and tests
// can run against ":memory:" databases with zero setup.
package sqlite

import (
	"database/sql"
	"fmt"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements every repository
// interface. One type for all repositories keeps the migration set and the
// connection lifecycle in a single place.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" for an ephemeral database in tests.
func New(dbPath string) (*DB, error) {
	// Pragmas go in the DSN so every pooled connection gets them, not just
	// the one that happened to run an Exec. WAL allows concurrent reads
	// while a write is in progress; the stats aggregator and the execution
	// recorder hit the same tables from different requests. busy_timeout
	// covers the brief write lock WAL still takes.
	dsn := "file:" + dbPath +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=foreign_keys(1)" +
		"&_pragma=busy_timeout(5000)"

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// An in-memory database exists per connection; letting the pool grow
	// would hand later queries a fresh empty schema.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	// Force an immediate connection so a bad path fails here, not on the
	// first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates all tables. CREATE TABLE IF NOT EXISTS keeps this
// idempotent, so it is safe to run at every startup.
func (db *DB) migrate() error {
	// Users synced from the identity provider. subject is the provider's
	// user id and is the key every other table references.
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id                  TEXT PRIMARY KEY,
			subject             TEXT NOT NULL UNIQUE,
			email               TEXT NOT NULL DEFAULT '',
			name                TEXT NOT NULL DEFAULT '',
			is_pro              INTEGER NOT NULL DEFAULT 0,
			pro_since           DATETIME,
			billing_customer_id TEXT NOT NULL DEFAULT '',
			billing_order_id    TEXT NOT NULL DEFAULT '',
			created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// Execution log. created_at is stored as integer unix nanoseconds, not
	// DATETIME: the pagination cursor and the 24h-window comparison need
	// exact ordering, and text timestamps round-trip lossily.
	//
	// The implicit rowid is the insertion-order tie-breaker for records
	// sharing a timestamp.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS executions (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			language   TEXT NOT NULL,
			code       TEXT NOT NULL,
			succeeded  INTEGER NOT NULL DEFAULT 1,
			output     TEXT NOT NULL DEFAULT '',
			error      TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_executions_user_created
			ON executions(user_id, created_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("creating executions table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS snippets (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			title      TEXT NOT NULL,
			language   TEXT NOT NULL,
			code       TEXT NOT NULL DEFAULT '',
			user_name  TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_snippets_user_id ON snippets(user_id);
		CREATE INDEX IF NOT EXISTS idx_snippets_created_at ON snippets(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating snippets table: %w", err)
	}

	// The UNIQUE constraint is the real enforcement of one star per
	// (user, snippet) pair; the service layer's toggle relies on it.
	// snippet_id intentionally has no FK so a star survives snippet
	// deletion, matching the aggregator's dangling-star tolerance.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS stars (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			snippet_id TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, snippet_id)
		);
		CREATE INDEX IF NOT EXISTS idx_stars_snippet_id ON stars(snippet_id);
	`)
	if err != nil {
		return fmt.Errorf("creating stars table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS snippet_comments (
			id         TEXT PRIMARY KEY,
			snippet_id TEXT NOT NULL,
			user_id    TEXT NOT NULL,
			user_name  TEXT NOT NULL DEFAULT '',
			content    TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_comments_snippet_id
			ON snippet_comments(snippet_id);
	`)
	if err != nil {
		return fmt.Errorf("creating snippet_comments table: %w", err)
	}

	return nil
}
