package cache

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// MemoryCache is an in-memory cache bounded by entry count and TTL.
//
// Expiry is lazy: an entry older than its TTL is a miss and is dropped when
// looked up. Set additionally sweeps all expired entries once per
// Policy.SweepInterval. Capacity is enforced by LRU eviction.
type MemoryCache struct {
	mu        sync.Mutex
	entries   *simplelru.LRU[string, *entry]
	policy    Policy
	now       func() time.Time
	lastSweep time.Time
	evictions int64
}

type entry struct {
	value     []byte
	createdAt time.Time
	ttl       time.Duration
}

func (e *entry) expired(now time.Time) bool {
	return now.Sub(e.createdAt) > e.ttl
}

// MemoryOption configures a MemoryCache.
type MemoryOption func(*MemoryCache)

// WithNow sets the clock used for entry timestamps and expiry checks.
func WithNow(now func() time.Time) MemoryOption {
	return func(c *MemoryCache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewMemoryCache creates a new in-memory cache with the given policy.
func NewMemoryCache(policy Policy, opts ...MemoryOption) (*MemoryCache, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	c := &MemoryCache{
		policy: policy,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	entries, err := simplelru.NewLRU[string, *entry](policy.MaxEntries, func(string, *entry) {
		c.evictions++
	})
	if err != nil {
		return nil, fmt.Errorf("cache: create lru: %w", err)
	}
	c.entries = entries
	c.lastSweep = c.now()

	return c, nil
}

// Get retrieves a value from the cache. Returns (nil, false) on miss or expiry.
// A hit marks the entry as most recently used.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	if e.expired(c.now()) {
		c.entries.Remove(key)
		return nil, false
	}
	return bytes.Clone(e.value), true
}

// Set stores a copy of value with the given TTL. TTL=0 means no caching.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.policy.SweepInterval > 0 && now.Sub(c.lastSweep) >= c.policy.SweepInterval {
		c.sweepLocked(now)
	}

	c.entries.Add(key, &entry{
		value:     bytes.Clone(value),
		createdAt: now,
		ttl:       ttl,
	})
	return nil
}

// Delete removes a value from the cache. Idempotent - no error on miss.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	c.entries.Remove(key)
	c.mu.Unlock()
	return nil
}

// Sweep removes every expired entry and returns how many were removed.
func (c *MemoryCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sweepLocked(c.now())
}

func (c *MemoryCache) sweepLocked(now time.Time) int {
	removed := 0
	for _, key := range c.entries.Keys() {
		e, ok := c.entries.Peek(key)
		if ok && e.expired(now) {
			c.entries.Remove(key)
			removed++
		}
	}
	c.lastSweep = now
	return removed
}

// Len returns the number of stored entries, including expired entries that
// have not been reclaimed yet.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

// Evictions returns how many entries were dropped by capacity, expiry or Delete.
func (c *MemoryCache) Evictions() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictions
}

// Capacity returns the configured maximum entry count.
func (c *MemoryCache) Capacity() int {
	return c.policy.MaxEntries
}

// Ensure MemoryCache implements Cache
var _ Cache = (*MemoryCache)(nil)
