package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GerritGeeraerts/data-explorer/pkg/types"
)

// flakyStore wraps a Store and fails writes on demand, for exercising the
// best-effort durability path.
type flakyStore struct {
	Store
	failPuts bool
}

func (s *flakyStore) Put(ctx context.Context, entry *types.CacheEntry) error {
	if s.failPuts {
		return errors.New("disk full")
	}
	return s.Store.Put(ctx, entry)
}

func TestGetOrComputeMissThenHit(t *testing.T) {
	c := New(newTestStore(t))
	ctx := context.Background()
	req := Request{Prompt: "describe status", Model: "test-model"}

	calls := 0
	compute := func(ctx context.Context) (string, error) {
		calls++
		return "a status description", nil
	}

	response, hit, err := c.GetOrCompute(ctx, req, compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "a status description", response)
	assert.Equal(t, 1, calls)

	response, hit, err = c.GetOrCompute(ctx, req, compute)
	require.NoError(t, err)
	assert.True(t, hit, "second resolution must come from the store")
	assert.Equal(t, "a status description", response)
	assert.Equal(t, 1, calls, "compute must not run on a hit")
}

func TestGetOrComputeConcurrentMissesCollapse(t *testing.T) {
	c := New(newTestStore(t))
	req := Request{Prompt: "expensive prompt", Model: "test-model"}

	var calls atomic.Int32
	release := make(chan struct{})
	compute := func(ctx context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "shared response", nil
	}

	const n = 8
	responses := make([]string, n)
	var wg sync.WaitGroup
	var started sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		started.Add(1)
		go func() {
			defer wg.Done()
			started.Done()
			resp, _, err := c.GetOrCompute(context.Background(), req, compute)
			assert.NoError(t, err)
			responses[i] = resp
		}()
	}
	started.Wait()
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load(), "concurrent misses must collapse to one call")
	for _, resp := range responses {
		assert.Equal(t, "shared response", resp)
	}
}

func TestGetOrComputeComputeErrorPropagates(t *testing.T) {
	c := New(newTestStore(t))
	req := Request{Prompt: "p", Model: "m"}

	wantErr := errors.New("provider timeout")
	_, _, err := c.GetOrCompute(context.Background(), req, func(ctx context.Context) (string, error) {
		return "", wantErr
	})
	assert.ErrorIs(t, err, wantErr)

	// A failed computation must not poison the cache.
	_, err = c.store.Get(context.Background(), req.Fingerprint())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetOrComputePersistFailureStillReturnsResult(t *testing.T) {
	flaky := &flakyStore{Store: newTestStore(t), failPuts: true}
	c := New(flaky)
	req := Request{Prompt: "p", Model: "m"}

	calls := 0
	compute := func(ctx context.Context) (string, error) {
		calls++
		return "computed anyway", nil
	}

	response, hit, err := c.GetOrCompute(context.Background(), req, compute)
	require.NoError(t, err, "a store write failure must not fail the enrichment")
	assert.False(t, hit)
	assert.Equal(t, "computed anyway", response)

	// Durability degraded: the next run recomputes.
	flaky.failPuts = false
	_, hit, err = c.GetOrCompute(context.Background(), req, compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, calls)
}

func TestInvalidateForcesRecompute(t *testing.T) {
	c := New(newTestStore(t))
	ctx := context.Background()
	req := Request{Prompt: "p", Model: "m"}

	calls := 0
	compute := func(ctx context.Context) (string, error) {
		calls++
		return "v", nil
	}

	_, _, err := c.GetOrCompute(ctx, req, compute)
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ctx, req))

	_, hit, err := c.GetOrCompute(ctx, req, compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, calls)
}
