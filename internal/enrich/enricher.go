// Package enrich orchestrates the LLM enrichment stage: one dataset-level
// call plus one call per field, all resolved through the enrichment cache.
// Field enrichments are independent of each other, so any subset can be
// re-run without invalidating the rest.
package enrich

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/GerritGeeraerts/data-explorer/internal/cache"
	"github.com/GerritGeeraerts/data-explorer/internal/llm"
	"github.com/GerritGeeraerts/data-explorer/pkg/types"
)

// DefaultConcurrency is the default bound on parallel field enrichments.
const DefaultConcurrency = 4

// Enricher resolves descriptions through the cache with bounded concurrency
// and provider-side rate limiting.
type Enricher struct {
	gen         llm.TextGenerator
	cache       *cache.Cache
	limiter     *rate.Limiter
	concurrency int
}

// NewEnricher creates an Enricher. requestsPerSecond <= 0 disables rate
// limiting; concurrency <= 0 falls back to DefaultConcurrency.
func NewEnricher(gen llm.TextGenerator, c *cache.Cache, requestsPerSecond float64, concurrency int) *Enricher {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Enricher{gen: gen, cache: c, limiter: limiter, concurrency: concurrency}
}

// Enrich produces the final artifact: the shrunk dataset with a
// natural-language description per field plus one dataset-level description.
//
// A provider error for one field is recorded as a placeholder description
// and does not abort the remaining fields; partial success beats total
// failure since calls are costly. Output preserves the dataset's field order
// regardless of completion order.
func (e *Enricher) Enrich(ctx context.Context, ds *types.ShrunkDataset) (*types.EnrichedDataset, error) {
	out := &types.EnrichedDataset{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Model:       e.gen.Model(),
		RowCount:    ds.RowCount,
		Fields:      make([]types.EnrichedField, len(ds.Fields)),
	}

	log.Printf("enrich: describing dataset (%d fields, model %s)", len(ds.Fields), e.gen.Model())
	description, err := e.resolve(ctx, datasetPrompt(ds))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Printf("ERROR: dataset description failed: %v", err)
		out.Description = placeholder(err)
		out.FailedFields = append(out.FailedFields, "_dataset")
	} else {
		out.Description = description
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	failed := make([]bool, len(ds.Fields))
	for i, field := range ds.Fields {
		out.Fields[i] = types.EnrichedField{ShrunkField: field}

		g.Go(func() error {
			prompt, err := fieldPrompt(ds, field)
			if err != nil {
				out.Fields[i].Description = placeholder(err)
				failed[i] = true
				return nil
			}

			description, err := e.resolve(gctx, prompt)
			if err != nil {
				// Cancellation is the only error that stops the group;
				// provider errors degrade to a placeholder.
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Printf("ERROR: enrichment failed for field %q: %v", field.Name, err)
				out.Fields[i].Description = placeholder(err)
				failed[i] = true
				return nil
			}
			out.Fields[i].Description = description
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, f := range failed {
		if f {
			out.FailedFields = append(out.FailedFields, ds.Fields[i].Name)
		}
	}
	return out, nil
}

// resolve routes one prompt through the cache, calling the provider only on
// a miss. The rate limiter gates outbound calls, not cache hits.
func (e *Enricher) resolve(ctx context.Context, prompt string) (string, error) {
	req := cache.Request{
		Prompt:      prompt,
		Model:       e.gen.Model(),
		MaxTokens:   e.gen.MaxTokens(),
		Temperature: e.gen.Temperature(),
	}

	response, hit, err := e.cache.GetOrCompute(ctx, req, func(ctx context.Context) (string, error) {
		if err := e.limiter.Wait(ctx); err != nil {
			return "", err
		}
		completion, err := e.gen.Complete(ctx, prompt)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(completion.Text), nil
	})
	if err != nil {
		return "", err
	}
	if hit {
		log.Printf("enrich: cache hit for %s", req.Fingerprint()[:12])
	}
	return response, nil
}

// placeholder is the description recorded for a field whose enrichment call
// failed. The error marker makes partial artifacts self-describing.
func placeholder(err error) string {
	return fmt.Sprintf("[description unavailable: %v]", err)
}
