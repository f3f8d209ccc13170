package resilience

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestExecutor_NoPatterns(t *testing.T) {
	calls := 0
	err := NewExecutor().Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})
	if err != nil || calls != 1 {
		t.Errorf("Execute() = %v, calls = %d", err, calls)
	}
}

func TestExecutor_ZeroTimeoutDisabled(t *testing.T) {
	e := NewExecutor(WithTimeout(0))
	if e.timeout != nil {
		t.Error("WithTimeout(0) should not install a timeout")
	}
}

func TestExecutor_RetryInsideBreaker(t *testing.T) {
	clock := newFakeClock()
	cb := newTestBreaker(clock, nil)
	e := NewExecutor(
		WithCircuitBreaker(cb),
		WithRetry(fastRetry(3)),
	)

	calls := 0
	err := e.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return errRelay
	})
	if !errors.Is(err, ErrMaxRetriesExceeded) {
		t.Fatalf("Execute() error = %v, want ErrMaxRetriesExceeded", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	// Three attempts are one breaker failure.
	if got := cb.Metrics().Failures; got != 1 {
		t.Errorf("breaker failures = %d, want 1", got)
	}
}

func TestExecutor_TimeoutPerAttempt(t *testing.T) {
	e := NewExecutor(
		WithRetry(fastRetry(2)),
		WithTimeout(10*time.Millisecond),
	)

	var calls atomic.Int32
	err := e.Execute(context.Background(), func(ctx context.Context) error {
		if calls.Add(1) == 1 {
			<-ctx.Done()
			return ctx.Err()
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("calls = %d, want 2", n)
	}
}

func TestExecutor_RateLimiterIsOutermost(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 1, Burst: 1, Now: newFakeClock().Now})
	e := NewExecutor(WithRateLimiter(rl), WithRetry(fastRetry(3)))

	calls := 0
	_ = e.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return errRelay
	})
	if calls != 3 {
		t.Fatalf("calls = %d, retries should not consume tokens", calls)
	}
	if err := e.Execute(context.Background(), succeed); !errors.Is(err, ErrRateLimitExceeded) {
		t.Errorf("second Execute() error = %v, want ErrRateLimitExceeded", err)
	}
}

func TestDo(t *testing.T) {
	e := NewExecutor(WithRetry(fastRetry(3)))

	calls := 0
	id, err := Do(context.Background(), e, func(ctx context.Context) (string, error) {
		calls++
		if calls < 2 {
			return "", errRelay
		}
		return "<msg-1@relay>", nil
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if id != "<msg-1@relay>" {
		t.Errorf("Do() = %q", id)
	}

	out, err := Do(context.Background(), NewExecutor(), func(ctx context.Context) ([]byte, error) {
		return []byte("partial"), errRelay
	})
	if !errors.Is(err, errRelay) || out != nil {
		t.Errorf("Do() = %q, %v; want nil, errRelay", out, err)
	}
}

func TestExecutor_CircuitBreakerAccessor(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{})
	if NewExecutor(WithCircuitBreaker(cb)).CircuitBreaker() != cb {
		t.Error("CircuitBreaker() did not return the configured breaker")
	}
	if NewExecutor().CircuitBreaker() != nil {
		t.Error("CircuitBreaker() should be nil when unset")
	}
}
