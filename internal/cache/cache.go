package cache

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/GerritGeeraerts/data-explorer/pkg/types"
)

// Cache resolves LLM requests through the durable store, computing and
// persisting on miss. Concurrent misses for the same fingerprint collapse to
// a single outbound call.
type Cache struct {
	store Store
	group singleflight.Group
}

// New wraps a Store in the get-or-compute layer.
func New(store Store) *Cache {
	return &Cache{store: store}
}

// GetOrCompute returns the cached response for req, or invokes compute
// exactly once, persists the result, and returns it. The returned hit flag
// reports whether the response came from the store.
//
// If persisting a freshly computed result fails, the result is still
// returned: a store write failure degrades to non-durable success for the
// current run instead of discarding a costly completion.
func (c *Cache) GetOrCompute(ctx context.Context, req Request, compute func(ctx context.Context) (string, error)) (string, bool, error) {
	fingerprint := req.Fingerprint()

	if entry, err := c.store.Get(ctx, fingerprint); err == nil {
		return entry.Response, true, nil
	} else if !errors.Is(err, ErrNotFound) {
		log.Printf("WARNING: cache lookup failed for %s: %v", fingerprint[:12], err)
	}

	// Collapse concurrent misses for the same fingerprint into one call.
	// Callers that joined an in-flight computation all receive its result.
	response, err, _ := c.group.Do(fingerprint, func() (any, error) {
		// A sibling caller may have finished and persisted while this one
		// waited for the flight slot.
		if entry, err := c.store.Get(ctx, fingerprint); err == nil {
			return entry.Response, nil
		}

		text, err := compute(ctx)
		if err != nil {
			return "", err
		}

		entry := &types.CacheEntry{
			Fingerprint: fingerprint,
			Prompt:      req.Prompt,
			Model:       req.Model,
			Response:    text,
			CreatedAt:   time.Now().UTC(),
		}
		if putErr := c.store.Put(context.WithoutCancel(ctx), entry); putErr != nil {
			log.Printf("WARNING: failed to persist cache entry %s: %v", fingerprint[:12], putErr)
		}
		return text, nil
	})
	if err != nil {
		return "", false, err
	}
	return response.(string), false, nil
}

// Invalidate removes the stored response for req so the next resolution
// recomputes it. This is the only path that replaces an existing entry.
func (c *Cache) Invalidate(ctx context.Context, req Request) error {
	return c.store.Invalidate(ctx, req.Fingerprint())
}
