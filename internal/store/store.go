package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store is the durable document store for goals, profiles and saved
// sessions, plus the append-only event journal. Documents are stored as
// JSON values and replaced whole on write (last-writer-wins), which is
// what gives phase-level writes their all-or-nothing guarantee.
type Store struct {
	db  *sql.DB
	seq *seqAllocator
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and creates the schema.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	seq, err := newSeqAllocator(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init sequence counter: %w", err)
	}

	return &Store{db: db, seq: seq}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// EventRepo returns the event repository backed by this store.
func (s *Store) EventRepo() EventRepo {
	return &eventRepo{db: s.db, seq: s.seq}
}

// applyPragmas configures SQLite for optimal single-writer performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// migrate creates all tables. Statements are idempotent so Open can run
// them unconditionally.
func migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS goals (
			goal_id    TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			status     TEXT NOT NULL,
			doc        TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_goals_user ON goals(user_id)`,
		`CREATE TABLE IF NOT EXISTS profiles (
			user_id    TEXT PRIMARY KEY,
			doc        TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			user_id  TEXT NOT NULL,
			goal_id  TEXT NOT NULL,
			name     TEXT NOT NULL,
			phase    TEXT NOT NULL,
			state    TEXT NOT NULL,
			saved_at INTEGER NOT NULL,
			PRIMARY KEY (user_id, goal_id)
		)`,
		`CREATE TABLE IF NOT EXISTS learn_events (
			sequence    INTEGER PRIMARY KEY,
			timestamp   INTEGER NOT NULL,
			user_id     TEXT NOT NULL DEFAULT '',
			goal_id     TEXT NOT NULL DEFAULT '',
			concept_id  TEXT NOT NULL DEFAULT '',
			event_type  TEXT NOT NULL,
			text        TEXT NOT NULL DEFAULT '',
			affect      TEXT NOT NULL DEFAULT '',
			discrepancy TEXT NOT NULL DEFAULT '',
			score       INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS llm_events (
			sequence      INTEGER PRIMARY KEY,
			timestamp     INTEGER NOT NULL,
			provider      TEXT NOT NULL,
			model         TEXT NOT NULL,
			purpose       TEXT NOT NULL,
			input_tokens  INTEGER NOT NULL DEFAULT 0,
			output_tokens INTEGER NOT NULL DEFAULT 0,
			latency_ms    INTEGER NOT NULL DEFAULT 0,
			success       INTEGER NOT NULL,
			error_message TEXT NOT NULL DEFAULT '',
			request_body  TEXT NOT NULL DEFAULT '',
			response_body TEXT NOT NULL DEFAULT ''
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. LERNPATH_DB environment variable
// 2. $XDG_DATA_HOME/lernpath/lernpath.db
// 3. ~/.local/share/lernpath/lernpath.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("LERNPATH_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "lernpath", "lernpath.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
