package resilience

import (
	"context"
	"sync"
	"time"
)

// Executor composes the resilience patterns around one operation.
//
// Order, outermost first: rate limiter, bulkhead, circuit breaker, retry,
// timeout. The limiter and bulkhead admit a call once however many times
// it is retried; the breaker sees the outcome after all retries; the
// timeout bounds each attempt.
type Executor struct {
	rateLimiter    *RateLimiter
	bulkhead       *Bulkhead
	circuitBreaker *CircuitBreaker
	retry          *Retry
	timeout        *Timeout
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// NewExecutor creates a new resilience executor. With no options it runs
// the operation directly.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithCircuitBreaker adds a circuit breaker to the executor.
func WithCircuitBreaker(cb *CircuitBreaker) ExecutorOption {
	return func(e *Executor) { e.circuitBreaker = cb }
}

// WithRetry adds retry logic to the executor.
func WithRetry(r *Retry) ExecutorOption {
	return func(e *Executor) { e.retry = r }
}

// WithRateLimiter adds rate limiting to the executor.
func WithRateLimiter(rl *RateLimiter) ExecutorOption {
	return func(e *Executor) { e.rateLimiter = rl }
}

// WithBulkhead adds bulkhead isolation to the executor.
func WithBulkhead(b *Bulkhead) ExecutorOption {
	return func(e *Executor) { e.bulkhead = b }
}

// WithTimeout bounds each attempt. A non-positive value disables it.
func WithTimeout(timeout time.Duration) ExecutorOption {
	return func(e *Executor) {
		if timeout > 0 {
			e.timeout = NewTimeout(TimeoutConfig{Timeout: timeout})
		}
	}
}

// CircuitBreaker returns the configured breaker, or nil.
func (e *Executor) CircuitBreaker() *CircuitBreaker {
	return e.circuitBreaker
}

// Execute runs op through every configured pattern.
func (e *Executor) Execute(ctx context.Context, op func(context.Context) error) error {
	run := op
	if t := e.timeout; t != nil {
		run = wrap(run, t.Execute)
	}
	if r := e.retry; r != nil {
		run = wrap(run, r.Execute)
	}
	if cb := e.circuitBreaker; cb != nil {
		run = wrap(run, cb.Execute)
	}
	if b := e.bulkhead; b != nil {
		run = wrap(run, b.Execute)
	}
	if rl := e.rateLimiter; rl != nil {
		run = wrap(run, rl.Execute)
	}
	return run(ctx)
}

type stage func(context.Context, func(context.Context) error) error

func wrap(inner func(context.Context) error, outer stage) func(context.Context) error {
	return func(ctx context.Context) error {
		return outer(ctx, inner)
	}
}

// Do runs op through e and returns the value of the attempt that
// succeeded.
func Do[T any](ctx context.Context, e *Executor, op func(context.Context) (T, error)) (T, error) {
	var (
		mu  sync.Mutex
		out T
	)
	err := e.Execute(ctx, func(ctx context.Context) error {
		v, err := op(ctx)
		if err != nil {
			return err
		}
		// An attempt abandoned by the timeout can still finish late.
		mu.Lock()
		out = v
		mu.Unlock()
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	mu.Lock()
	defer mu.Unlock()
	return out, nil
}
