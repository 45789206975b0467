// Package store persists tracker state in SQLite. The core operates on
// in-memory snapshots; the store's job is to load a snapshot and apply the
// replacement the core returns, transactionally.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/mimir/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS items (
	id         TEXT PRIMARY KEY,
	position   INTEGER NOT NULL DEFAULT 0,
	data       TEXT NOT NULL DEFAULT '{}',
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS inbox (
	position INTEGER PRIMARY KEY AUTOINCREMENT,
	title    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS achievements (
	id          TEXT PRIMARY KEY,
	unlocked_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_items_position ON items(position);
`

// Store is the persistence contract the service depends on. Consumers use
// this interface rather than the concrete *DB so tests can substitute
// fakes.
type Store interface {
	LoadItems() (models.Collection, error)
	ReplaceItems(col models.Collection) error
	Goal() (*models.Goal, error)
	SetGoal(goal *models.Goal) error
	Settings() (map[string]any, error)
	SetSettings(settings map[string]any) error
	Inbox() ([]string, error)
	AddInbox(titles []string) error
	ReplaceInbox(titles []string) error
	Achievements() (map[string]time.Time, error)
	RecordAchievements(ids []string, at time.Time) error
	ReplaceAchievements(unlocked map[string]time.Time) error
	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)

// DB wraps a sql.DB with tracker-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
