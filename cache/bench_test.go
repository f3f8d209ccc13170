package cache

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func benchMemoryCache(b *testing.B, maxEntries int) *MemoryCache {
	b.Helper()
	policy := DefaultPolicy()
	policy.MaxEntries = maxEntries
	c, err := NewMemoryCache(policy)
	if err != nil {
		b.Fatal(err)
	}
	return c
}

// BenchmarkMemoryCache_Get_Hit measures cache hit performance.
func BenchmarkMemoryCache_Get_Hit(b *testing.B) {
	c := benchMemoryCache(b, 256)
	ctx := context.Background()
	_ = c.Set(ctx, "key", make([]byte, 4096), time.Hour)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.Get(ctx, "key")
	}
}

// BenchmarkMemoryCache_Get_Miss measures cache miss performance.
func BenchmarkMemoryCache_Get_Miss(b *testing.B) {
	c := benchMemoryCache(b, 256)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.Get(ctx, "missing")
	}
}

// BenchmarkMemoryCache_Set_Evicting measures writes past capacity.
func BenchmarkMemoryCache_Set_Evicting(b *testing.B) {
	c := benchMemoryCache(b, 64)
	ctx := context.Background()
	value := make([]byte, 4096)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Set(ctx, fmt.Sprintf("key-%d", i), value, time.Hour)
	}
}

// BenchmarkMemoryCache_Concurrent_ReadWrite measures mixed concurrent operations.
func BenchmarkMemoryCache_Concurrent_ReadWrite(b *testing.B) {
	c := benchMemoryCache(b, 256)
	ctx := context.Background()
	for i := 0; i < 100; i++ {
		_ = c.Set(ctx, fmt.Sprintf("key-%d", i), []byte("value"), time.Hour)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			key := fmt.Sprintf("key-%d", i%100)
			if i%4 == 0 {
				_ = c.Set(ctx, key, []byte("new-value"), time.Hour)
			} else {
				_, _ = c.Get(ctx, key)
			}
			i++
		}
	})
}

// BenchmarkDocumentCache_Hit measures GetOrRender on a warm entry.
func BenchmarkDocumentCache_Hit(b *testing.B) {
	store := benchMemoryCache(b, 256)
	render := func(_ context.Context, d doc) ([]byte, error) { return make([]byte, 4096), nil }
	docs, err := NewDocumentCache[doc](store, docKeyer, DefaultPolicy(), render)
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	_, _ = docs.GetOrRender(ctx, doc{ID: "warm"})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = docs.GetOrRender(ctx, doc{ID: "warm"})
	}
}

// BenchmarkDocumentCache_Concurrent measures contended lookups over a few keys.
func BenchmarkDocumentCache_Concurrent(b *testing.B) {
	store := benchMemoryCache(b, 256)
	render := func(_ context.Context, d doc) ([]byte, error) { return []byte(d.ID), nil }
	docs, err := NewDocumentCache[doc](store, docKeyer, DefaultPolicy(), render)
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			_, _ = docs.GetOrRender(ctx, doc{ID: fmt.Sprintf("doc-%d", i%10)})
			i++
		}
	})
}

// BenchmarkValidateKey measures key validation.
func BenchmarkValidateKey(b *testing.B) {
	key := "cover:0f3c8e2d1a9b7c6d5e4f3a2b1c0d9e8f7a6b5c4d3e2f1a0b9c8d7e6f5a4b3c2d"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ValidateKey(key)
	}
}
