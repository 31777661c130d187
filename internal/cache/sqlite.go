package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/GerritGeeraerts/data-explorer/pkg/types"
)

// sqliteSchema holds the cache table. One row per fingerprint; the primary
// key enforces the uniqueness invariant at the storage layer.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS llm_cache (
	fingerprint TEXT PRIMARY KEY,
	prompt      TEXT NOT NULL,
	model       TEXT NOT NULL,
	response    TEXT NOT NULL,
	created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SQLiteStore implements Store on a local SQLite file. The file lives next
// to the output directory and is shared across runs and base names.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the cache database at dsn and ensures
// the schema exists. Pass ":memory:" for an ephemeral store in tests.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	// SQLite only supports one concurrent writer. A single open connection
	// serialises writes and avoids SQLITE_BUSY under concurrent enrichment.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Get returns the entry for a fingerprint, or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, fingerprint string) (*types.CacheEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT fingerprint, prompt, model, response, created_at
		FROM llm_cache WHERE fingerprint = ?`, fingerprint)

	var entry types.CacheEntry
	err := row.Scan(&entry.Fingerprint, &entry.Prompt, &entry.Model, &entry.Response, &entry.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return &entry, nil
}

// Put inserts a new entry. An existing fingerprint is left untouched.
func (s *SQLiteStore) Put(ctx context.Context, entry *types.CacheEntry) error {
	if entry == nil || entry.Fingerprint == "" {
		return errors.New("cache entry requires a fingerprint")
	}

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO llm_cache (fingerprint, prompt, model, response, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(fingerprint) DO NOTHING`,
		entry.Fingerprint, entry.Prompt, entry.Model, entry.Response, createdAt)
	if err != nil {
		return fmt.Errorf("failed to persist cache entry: %w", err)
	}
	return nil
}

// Invalidate removes the entry for a fingerprint.
func (s *SQLiteStore) Invalidate(ctx context.Context, fingerprint string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM llm_cache WHERE fingerprint = ?`, fingerprint)
	if err != nil {
		return fmt.Errorf("failed to invalidate cache entry: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Compile-time assertion.
var _ Store = (*SQLiteStore)(nil)
