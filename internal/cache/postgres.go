package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/GerritGeeraerts/data-explorer/pkg/types"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS llm_cache (
	fingerprint TEXT PRIMARY KEY,
	prompt      TEXT NOT NULL,
	model       TEXT NOT NULL,
	response    TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// PostgresStore implements Store on PostgreSQL, for deployments where the
// cache is shared between machines. Same contract as SQLiteStore.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects with the given DSN and ensures the schema exists.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres cache: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to postgres cache: %w", err)
	}
	if _, err := db.Exec(postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Get returns the entry for a fingerprint, or ErrNotFound.
func (s *PostgresStore) Get(ctx context.Context, fingerprint string) (*types.CacheEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT fingerprint, prompt, model, response, created_at
		FROM llm_cache WHERE fingerprint = $1`, fingerprint)

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
func (s *PostgresStore) Put(ctx context.Context, entry *types.CacheEntry) error {
	if entry == nil || entry.Fingerprint == "" {
		return errors.New("cache entry requires a fingerprint")
	}

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO llm_cache (fingerprint, prompt, model, response, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (fingerprint) DO NOTHING`,
		entry.Fingerprint, entry.Prompt, entry.Model, entry.Response, createdAt)
	if err != nil {
		return fmt.Errorf("failed to persist cache entry: %w", err)
	}
	return nil
}

// Invalidate removes the entry for a fingerprint.
func (s *PostgresStore) Invalidate(ctx context.Context, fingerprint string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM llm_cache WHERE fingerprint = $1`, fingerprint)
	if err != nil {
		return fmt.Errorf("failed to invalidate cache entry: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Compile-time assertion.
var _ Store = (*PostgresStore)(nil)
