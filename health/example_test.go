package health_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/coverforge/health"
	"github.com/jonwraymond/coverforge/resilience"
)

func ExampleAggregator() {
	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{MaxFailures: 1})
	_ = breaker.Execute(context.Background(), func(context.Context) error {
		return errors.New("dial tcp: connection refused")
	})

	agg := health.NewAggregator()
	agg.Register(health.NewRenderChecker("render", func(context.Context) error { return nil }))
	agg.RegisterOptional(health.NewBreakerChecker("mail", breaker))

	results := agg.CheckAll(context.Background())
	fmt.Println("render:", results["render"].Status)
	fmt.Println("mail:", results["mail"].Status)
	fmt.Println("overall:", agg.OverallStatus(results))
	// Output:
	// render: healthy
	// mail: unhealthy
	// overall: degraded
}
