package cache_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonwraymond/coverforge/cache"
)

func ExampleNewMemoryCache() {
	c, err := cache.NewMemoryCache(cache.DefaultPolicy())
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	ctx := context.Background()
	_ = c.Set(ctx, "pdf/classic:3f2a9c", []byte("%PDF-1.3"), time.Hour)

	if doc, ok := c.Get(ctx, "pdf/classic:3f2a9c"); ok {
		fmt.Printf("cached %q, %d entry\n", doc, c.Len())
	}
	// Output:
	// cached "%PDF-1.3", 1 entry
}

func ExampleMemoryCache_Set() {
	c, _ := cache.NewMemoryCache(cache.DefaultPolicy())
	ctx := context.Background()

	fmt.Println(c.Set(ctx, "pdf/classic:3f2a9c", []byte("%PDF-1.3"), time.Hour))

	// A zero TTL stores nothing.
	fmt.Println(c.Set(ctx, "pdf/stamped:3f2a9c", []byte("%PDF-1.3"), 0))
	_, ok := c.Get(ctx, "pdf/stamped:3f2a9c")
	fmt.Println("stamped cached:", ok)
	// Output:
	// <nil>
	// <nil>
	// stamped cached: false
}

func ExampleMemoryCache_Delete() {
	c, _ := cache.NewMemoryCache(cache.DefaultPolicy())
	ctx := context.Background()

	_ = c.Set(ctx, "to-delete", []byte("temporary"), time.Hour)

	_, ok := c.Get(ctx, "to-delete")
	fmt.Println("Before delete:", ok)

	err := c.Delete(ctx, "to-delete")
	fmt.Println("Delete error:", err)

	_, ok = c.Get(ctx, "to-delete")
	fmt.Println("After delete:", ok)

	// Delete is idempotent - no error on missing key
	err = c.Delete(ctx, "never-existed")
	fmt.Println("Delete missing:", err)
	// Output:
	// Before delete: true
	// Delete error: <nil>
	// After delete: false
	// Delete missing: <nil>
}

func ExampleDocumentCache_GetOrRender() {
	store, _ := cache.NewMemoryCache(cache.DefaultPolicy())
	keyer := cache.KeyerFunc[string](func(title string) (string, error) {
		return "cover:" + strings.ToLower(title), nil
	})

	renders := 0
	render := func(_ context.Context, title string) ([]byte, error) {
		renders++
		return []byte("%PDF " + title), nil
	}

	docs, _ := cache.NewDocumentCache[string](store, keyer, cache.DefaultPolicy(), render)
	ctx := context.Background()

	first, _ := docs.GetOrRender(ctx, "Sorting")
	second, _ := docs.GetOrRender(ctx, "Sorting")

	fmt.Println("First:", string(first))
	fmt.Println("Same bytes:", string(first) == string(second))
	fmt.Println("Renders:", renders)
	// Output:
	// First: %PDF Sorting
	// Same bytes: true
	// Renders: 1
}

func ExampleWithSkipRule() {
	store, _ := cache.NewMemoryCache(cache.DefaultPolicy())
	keyer := cache.KeyerFunc[string](func(s string) (string, error) { return "k:" + s, nil })

	renders := 0
	render := func(_ context.Context, s string) ([]byte, error) {
		renders++
		return []byte(s), nil
	}

	// Values ending in "!" are timestamped and must never be reused.
	docs, _ := cache.NewDocumentCache[string](store, keyer, cache.DefaultPolicy(), render,
		cache.WithSkipRule[string](func(s string) bool { return strings.HasSuffix(s, "!") }),
	)
	ctx := context.Background()

	_, _ = docs.GetOrRender(ctx, "now!")
	_, _ = docs.GetOrRender(ctx, "now!")
	fmt.Println("Bypassed renders:", renders)
	fmt.Println("Stats:", docs.Stats().Bypassed)
	// Output:
	// Bypassed renders: 2
	// Stats: 2
}

func ExampleDefaultPolicy() {
	policy := cache.DefaultPolicy()

	fmt.Println("Default TTL:", policy.DefaultTTL)
	fmt.Println("Max TTL:", policy.MaxTTL)
	fmt.Println("Max entries:", policy.MaxEntries)
	fmt.Println("Should cache:", policy.ShouldCache())
	// Output:
	// Default TTL: 1h0m0s
	// Max TTL: 24h0m0s
	// Max entries: 256
	// Should cache: true
}

func ExamplePolicy_EffectiveTTL() {
	policy := cache.Policy{
		DefaultTTL: 5 * time.Minute,
		MaxTTL:     1 * time.Hour,
		MaxEntries: 16,
	}

	fmt.Println("No override:", policy.EffectiveTTL(0))
	fmt.Println("10min override:", policy.EffectiveTTL(10*time.Minute))
	fmt.Println("2hr override (clamped):", policy.EffectiveTTL(2*time.Hour))
	// Output:
	// No override: 5m0s
	// 10min override: 10m0s
	// 2hr override (clamped): 1h0m0s
}

func ExampleValidateKey() {
	fmt.Println("normal key:", cache.ValidateKey("cover:abc123") == nil)
	fmt.Println("empty:", errors.Is(cache.ValidateKey(""), cache.ErrInvalidKey))
	fmt.Println("with newline:", errors.Is(cache.ValidateKey("key\nvalue"), cache.ErrInvalidKey))
	fmt.Println("too long:", errors.Is(cache.ValidateKey(strings.Repeat("x", 600)), cache.ErrKeyTooLong))
	// Output:
	// normal key: true
	// empty: true
	// with newline: true
	// too long: true
}
