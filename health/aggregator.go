package health

import (
	"context"
	"sync"
	"time"
)

// AggregatorConfig configures the health aggregator.
type AggregatorConfig struct {
	// Timeout bounds one round of checks. Default: 5s
	Timeout time.Duration
}

// Aggregator runs registered checkers concurrently and folds their results
// into one status.
type Aggregator struct {
	config AggregatorConfig

	mu       sync.RWMutex
	checkers map[string]Checker
	optional map[string]bool
	order    []string
}

// NewAggregator creates a new health aggregator.
func NewAggregator(config ...AggregatorConfig) *Aggregator {
	var cfg AggregatorConfig
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Aggregator{
		config:   cfg,
		checkers: make(map[string]Checker),
		optional: make(map[string]bool),
	}
}

// Register adds checkers whose failure makes the process unready. A
// checker replaces any earlier one with the same name.
func (a *Aggregator) Register(checkers ...Checker) {
	a.register(false, checkers)
}

// RegisterOptional adds checkers whose failure only degrades the process.
func (a *Aggregator) RegisterOptional(checkers ...Checker) {
	a.register(true, checkers)
}

func (a *Aggregator) register(optional bool, checkers []Checker) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, c := range checkers {
		name := c.Name()
		if _, exists := a.checkers[name]; !exists {
			a.order = append(a.order, name)
		}
		a.checkers[name] = c
		a.optional[name] = optional
	}
}

// CheckerNames returns the registered names in registration order.
func (a *Aggregator) CheckerNames() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]string(nil), a.order...)
}

// Check runs a single named health check.
func (a *Aggregator) Check(ctx context.Context, name string) (Result, error) {
	a.mu.RLock()
	checker, ok := a.checkers[name]
	a.mu.RUnlock()
	if !ok {
		return Result{}, ErrCheckerNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()
	return run(ctx, checker), nil
}

// CheckAll runs every registered checker concurrently.
func (a *Aggregator) CheckAll(ctx context.Context) map[string]Result {
	a.mu.RLock()
	checkers := make(map[string]Checker, len(a.checkers))
	for name, c := range a.checkers {
		checkers[name] = c
	}
	a.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make(map[string]Result, len(checkers))
	)
	for name, c := range checkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := run(ctx, c)
			mu.Lock()
			results[name] = r
			mu.Unlock()
		}()
	}
	wg.Wait()
	return results
}

// OverallStatus folds results into one status. The worst required result
// wins; an optional checker contributes at most StatusDegraded.
func (a *Aggregator) OverallStatus(results map[string]Result) Status {
	a.mu.RLock()
	defer a.mu.RUnlock()

	overall := StatusHealthy
	for name, r := range results {
		s := r.Status
		if a.optional[name] && s > StatusDegraded {
			s = StatusDegraded
		}
		overall = max(overall, s)
	}
	return overall
}

// run calls checker.Check and gives up when ctx ends. A checker that
// ignores ctx is left to finish in the background.
func run(ctx context.Context, checker Checker) Result {
	start := time.Now()
	done := make(chan Result, 1)

	go func() {
		r := checker.Check(ctx)
		if r.Timestamp.IsZero() {
			r.Timestamp = start
		}
		r.Duration = time.Since(start)
		done <- r
	}()

	select {
	case r := <-done:
		return r
	case <-ctx.Done():
		return Result{
			Status:    StatusUnhealthy,
			Message:   "check timed out",
			Error:     ErrCheckTimeout,
			Duration:  time.Since(start),
			Timestamp: start,
		}
	}
}
