// Package storage persists picker state in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// ErrClosed is returned by operations on a closed Store.
var ErrClosed = errors.New("storage: store is closed")

// Store is a SQLite-backed record of selected entries.
type Store struct {
	db        *sql.DB
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
	closeErr  error
	now       func() time.Time
}

// Open opens (creating if needed) the database at dbPath and brings its
// schema up to date.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// modernc.org/sqlite uses _pragma=name(value) syntax
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(2000)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

// Close closes the database. It is safe to call Close multiple times.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
		s.closeErr = s.db.Close()
	})
	return s.closeErr
}

// conn returns the database handle with the read lock held. Callers must
// call the returned release func.
func (s *Store) conn() (*sql.DB, func(), error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, nil, ErrClosed
	}
	return s.db, s.mu.RUnlock, nil
}

// migrate applies pending schema migrations in order.
func (s *Store) migrate(ctx context.Context) error {
	current := 0
	row := s.db.QueryRowContext(ctx, `SELECT version FROM schema_meta ORDER BY version DESC LIMIT 1`)
	if err := row.Scan(&current); err != nil {
		if !errors.Is(err, sql.ErrNoRows) && !isTableNotFoundError(err) {
			return fmt.Errorf("failed to read schema version: %w", err)
		}
		current = 0
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{version: 1, sql: migrationV1},
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if _, err := s.db.ExecContext(ctx, m.sql); err != nil {
			return fmt.Errorf("migration v%d failed: %w", m.version, err)
		}
		_, err := s.db.ExecContext(ctx,
			`INSERT OR REPLACE INTO schema_meta (version, applied_at_unix_ms) VALUES (?, ?)`,
			m.version, time.Now().UnixMilli())
		if err != nil {
			return fmt.Errorf("failed to record migration v%d: %w", m.version, err)
		}
	}
	return nil
}

// isTableNotFoundError checks if the error indicates a missing table.
func isTableNotFoundError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}

const migrationV1 = `
CREATE TABLE IF NOT EXISTS schema_meta (
	version            INTEGER PRIMARY KEY,
	applied_at_unix_ms INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS selections (
	id             TEXT PRIMARY KEY,
	channel        TEXT NOT NULL,
	entry          TEXT NOT NULL,
	selected_at_ms INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_selections_channel_time
	ON selections (channel, selected_at_ms DESC);
CREATE INDEX IF NOT EXISTS idx_selections_time
	ON selections (selected_at_ms DESC);
`
