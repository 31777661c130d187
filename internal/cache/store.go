// Package cache provides the content-addressed enrichment cache: a durable
// key-value store of LLM responses keyed by request fingerprint, plus the
// coalescing get-or-compute layer the enricher calls through.
package cache

import (
	"context"
	"errors"

	"github.com/GerritGeeraerts/data-explorer/pkg/types"
)

// ErrNotFound indicates that no entry exists for the given fingerprint.
var ErrNotFound = errors.New("cache entry not found")

// Store is the durable backing store for cache entries. Implementations are
// keyed for point lookup by fingerprint, survive process restarts, and are
// shared across runs and base names.
//
// Put is insert-only: storing a fingerprint that already exists keeps the
// existing entry untouched. Last-write-wins applies only through explicit
// Invalidate, never during normal operation.
type Store interface {
	// Get returns the entry for a fingerprint, or ErrNotFound.
	Get(ctx context.Context, fingerprint string) (*types.CacheEntry, error)

	// Put persists a new entry. Inserting an already-present fingerprint is
	// a no-op, not an error.
	Put(ctx context.Context, entry *types.CacheEntry) error

	// Invalidate removes the entry for a fingerprint. Removing an absent
	// fingerprint is a no-op.
	Invalidate(ctx context.Context, fingerprint string) error

	// Close releases any resources held by the store.
	Close() error
}
