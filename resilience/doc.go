// Package resilience guards the two places where coverforge waits on
// something it does not control: the print-shop mail relay and the pool of
// CPU-bound renders.
//
// The delivery path composes a rate limiter, a circuit breaker, a retry
// policy and a per-attempt timeout in an Executor:
//
//	exec := resilience.NewExecutor(
//	    resilience.WithRateLimiter(resilience.NewRateLimiter(resilience.RateLimiterConfig{Rate: 1, Burst: 5})),
//	    resilience.WithCircuitBreaker(resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{MaxFailures: 5})),
//	    resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{MaxAttempts: 3})),
//	    resilience.WithTimeout(10*time.Second),
//	)
//	id, err := resilience.Do(ctx, exec, func(ctx context.Context) (string, error) {
//	    return relay.Send(ctx, msg)
//	})
//
// The render path only uses a Bulkhead, which caps the number of renders
// running at once and queues the rest for at most MaxWait.
//
// Errors marked with Permanent are returned immediately: they are not
// retried and do not count against the circuit breaker.
package resilience
