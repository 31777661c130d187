package llm

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
)

// ErrCircuitOpen is returned when the circuit breaker rejects a request to
// prevent hammering a failing provider.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreaker wraps gobreaker around provider calls. After three
// consecutive failures the circuit opens and rejects requests for 30
// seconds, then allows probe requests until two succeed.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
}

// NewCircuitBreaker creates a breaker with the default thresholds.
func NewCircuitBreaker(name string) *CircuitBreaker {
	return &CircuitBreaker{
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 2,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		}),
	}
}

// Execute runs fn through the circuit breaker. If the circuit is open it
// returns ErrCircuitOpen without invoking fn. A context already cancelled on
// entry fails fast without counting against the breaker.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func() (Completion, error)) (Completion, error) {
	if err := ctx.Err(); err != nil {
		return Completion{}, err
	}

	result, err := cb.breaker.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return Completion{}, ErrCircuitOpen
		}
		return Completion{}, err
	}
	return result.(Completion), nil
}

// State returns "closed", "open", or "half-open".
func (cb *CircuitBreaker) State() string {
	switch cb.breaker.State() {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateOpen:
		return "open"
	case gobreaker.StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}
