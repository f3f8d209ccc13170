package health

import (
	"context"
	"fmt"
	"sync"

	"github.com/jonwraymond/coverforge/resilience"
)

// RenderChecker runs a canary render. A failure means the renderers or
// their assets are broken, so every download would fail too.
type RenderChecker struct {
	name  string
	probe func(context.Context) error
}

// NewRenderChecker creates a checker around probe. The probe should bypass
// the document cache so it exercises the renderers.
func NewRenderChecker(name string, probe func(context.Context) error) *RenderChecker {
	return &RenderChecker{name: name, probe: probe}
}

// Name returns the name of this checker.
func (c *RenderChecker) Name() string { return c.name }

// Check runs the canary render.
func (c *RenderChecker) Check(ctx context.Context) Result {
	if err := c.probe(ctx); err != nil {
		return Unhealthy("canary render failed", err)
	}
	return Healthy("canary render ok")
}

// BreakerChecker reports the state of a relay's circuit breaker.
type BreakerChecker struct {
	name string
	cb   *resilience.CircuitBreaker
}

// NewBreakerChecker creates a checker for cb.
func NewBreakerChecker(name string, cb *resilience.CircuitBreaker) *BreakerChecker {
	return &BreakerChecker{name: name, cb: cb}
}

// Name returns the name of this checker.
func (c *BreakerChecker) Name() string { return c.name }

// Check maps closed to healthy, half-open to degraded and open to
// unhealthy.
func (c *BreakerChecker) Check(ctx context.Context) Result {
	m := c.cb.Metrics()
	details := map[string]any{
		"state":    m.State.String(),
		"failures": m.Failures,
		"rejected": m.Rejected,
	}
	if !m.LastFailure.IsZero() {
		details["last_failure"] = m.LastFailure.UTC().Format("2006-01-02T15:04:05Z")
	}

	switch m.State {
	case resilience.StateOpen:
		return Unhealthy("circuit open", resilience.ErrCircuitOpen).WithDetails(details)
	case resilience.StateHalfOpen:
		return Degraded("circuit probing").WithDetails(details)
	default:
		return Healthy("circuit closed").WithDetails(details)
	}
}

// BulkheadChecker reports degraded while every render slot is taken.
type BulkheadChecker struct {
	name string
	b    *resilience.Bulkhead
}

// NewBulkheadChecker creates a checker for b.
func NewBulkheadChecker(name string, b *resilience.Bulkhead) *BulkheadChecker {
	return &BulkheadChecker{name: name, b: b}
}

// Name returns the name of this checker.
func (c *BulkheadChecker) Name() string { return c.name }

// Check reports slot usage.
func (c *BulkheadChecker) Check(ctx context.Context) Result {
	m := c.b.Metrics()
	details := map[string]any{
		"active":     m.Active,
		"max_active": m.MaxActive,
		"capacity":   m.MaxConcurrent,
		"rejected":   m.Rejected,
	}
	if m.Available <= 0 {
		return Degraded("all render slots busy").WithDetails(details)
	}
	return Healthy(fmt.Sprintf("%d of %d render slots free", m.Available, m.MaxConcurrent)).WithDetails(details)
}

// CacheStats is the view of a document cache CacheChecker needs.
// *cache.MemoryCache implements it.
type CacheStats interface {
	Len() int
	Capacity() int
	Evictions() int64
}

// CacheChecker reports degraded when a cache churns its whole capacity
// between two checks, which means entries are evicted before they can be
// reused.
type CacheChecker struct {
	name  string
	stats CacheStats

	mu   sync.Mutex
	last int64
}

// NewCacheChecker creates a checker for stats.
func NewCacheChecker(name string, stats CacheStats) *CacheChecker {
	return &CacheChecker{name: name, stats: stats, last: stats.Evictions()}
}

// Name returns the name of this checker.
func (c *CacheChecker) Name() string { return c.name }

// Check compares evictions since the previous check against capacity.
func (c *CacheChecker) Check(ctx context.Context) Result {
	evictions := c.stats.Evictions()
	capacity := c.stats.Capacity()

	c.mu.Lock()
	churn := evictions - c.last
	c.last = evictions
	c.mu.Unlock()

	details := map[string]any{
		"entries":   c.stats.Len(),
		"capacity":  capacity,
		"evictions": evictions,
		"churn":     churn,
	}
	if capacity > 0 && churn >= int64(capacity) {
		return Degraded("cache churning, consider raising max_entries").WithDetails(details)
	}
	return Healthy("cache ok").WithDetails(details)
}
