package cache

import (
	"fmt"
	"time"
)

// Policy configures caching behavior.
type Policy struct {
	// DefaultTTL is the TTL to use when none is specified.
	// If zero, caching is disabled.
	DefaultTTL time.Duration

	// MaxTTL is the maximum allowed TTL. Override TTLs are clamped to this.
	// If zero, no maximum is enforced.
	MaxTTL time.Duration

	// MaxEntries bounds the number of live entries. Inserting beyond it
	// evicts the least recently used entry. Must be positive.
	MaxEntries int

	// SweepInterval is the minimum time between access-triggered sweeps of
	// expired entries. If zero, expired entries are only reclaimed when
	// they are looked up or pushed out by capacity.
	SweepInterval time.Duration
}

// DefaultPolicy returns the default caching policy.
// DefaultTTL: 1 hour, MaxTTL: 24 hours, MaxEntries: 256, SweepInterval: 10 minutes
func DefaultPolicy() Policy {
	return Policy{
		DefaultTTL:    time.Hour,
		MaxTTL:        24 * time.Hour,
		MaxEntries:    256,
		SweepInterval: 10 * time.Minute,
	}
}

// NoCachePolicy returns a policy that disables caching entirely.
func NoCachePolicy() Policy {
	return Policy{
		DefaultTTL: 0,
		MaxTTL:     0,
		MaxEntries: 1,
	}
}

// Validate reports whether the policy can back a cache.
func (p Policy) Validate() error {
	if p.MaxEntries <= 0 {
		return fmt.Errorf("%w: max entries must be positive, got %d", ErrInvalidPolicy, p.MaxEntries)
	}
	if p.DefaultTTL < 0 || p.MaxTTL < 0 || p.SweepInterval < 0 {
		return fmt.Errorf("%w: durations must not be negative", ErrInvalidPolicy)
	}
	return nil
}

// ShouldCache returns true if caching is enabled by this policy.
func (p Policy) ShouldCache() bool {
	return p.DefaultTTL > 0
}

// EffectiveTTL returns the TTL to use, applying defaults and clamping.
func (p Policy) EffectiveTTL(override time.Duration) time.Duration {
	// Use default if no override (or negative override)
	ttl := override
	if ttl <= 0 {
		ttl = p.DefaultTTL
	}

	// Clamp to MaxTTL if set
	if p.MaxTTL > 0 && ttl > p.MaxTTL {
		ttl = p.MaxTTL
	}

	return ttl
}
