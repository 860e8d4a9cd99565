// Package localstore provides a durable local key-value store backed by SQLite.
package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Fixed keys shared with the host application.
const (
	KeyGitHubToken     = "github_token"
	KeyContributions   = "offline_contributions"
	KeyCurrentUsername = "current_username"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// PersistenceError reports that the durable store is unavailable or a write failed.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("local store %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Store is a key-value store persisted in a local SQLite file.
// Every write runs in its own transaction; Update serializes
// read-modify-write cycles so concurrent writers cannot lose updates.
type Store struct {
	mu sync.Mutex
	db *sqlx.DB
}

// Open opens or creates the store file and ensures the schema exists.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("os.MkdirAll() > %w", err)
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlx.Open() > %w", err)
	}
	// SQLite serializes writers; a single connection avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema > %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the value stored under key. The second return value is false
// when the key does not exist.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value, "SELECT value FROM kv WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &PersistenceError{Op: "get", Err: err}
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value)
	if err != nil {
		return &PersistenceError{Op: "set", Err: err}
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
		return &PersistenceError{Op: "delete", Err: err}
	}
	return nil
}

// Update applies fn to the current value of key and stores the result, all
// within one transaction. fn receives the current value and whether the key
// existed. Returning an error from fn aborts the update untouched.
func (s *Store) Update(ctx context.Context, key string, fn func(current string, ok bool) (string, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return &PersistenceError{Op: "update", Err: err}
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var current string
	ok := true
	if err := tx.GetContext(ctx, &current, "SELECT value FROM kv WHERE key = ?", key); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return &PersistenceError{Op: "update", Err: err}
		}
		ok = false
	}

	next, err := fn(current, ok)
	if err != nil {
		return fmt.Errorf("update %s > %w", key, err)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, next); err != nil {
		return &PersistenceError{Op: "update", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return &PersistenceError{Op: "update", Err: err}
	}
	return nil
}
