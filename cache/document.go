package cache

import (
	"bytes"
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// RenderFunc produces the buffer for v. It is only called on a cache miss.
type RenderFunc[T any] func(ctx context.Context, v T) ([]byte, error)

// SkipRule reports whether v must bypass the cache. Bypassed values are
// rendered on every call and never stored.
type SkipRule[T any] func(v T) bool

// Outcome classifies one GetOrRender call.
type Outcome int

const (
	// OutcomeHit means a live entry was returned without rendering.
	OutcomeHit Outcome = iota
	// OutcomeMiss means this caller led a render.
	OutcomeMiss
	// OutcomeShared means this caller joined a render led by another caller.
	OutcomeShared
	// OutcomeBypass means a SkipRule or a disabled policy bypassed the cache.
	OutcomeBypass
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeHit:
		return "hit"
	case OutcomeMiss:
		return "miss"
	case OutcomeShared:
		return "shared"
	case OutcomeBypass:
		return "bypass"
	default:
		return "unknown"
	}
}

// Recorder receives one outcome per GetOrRender call.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic and must return quickly.
type Recorder interface {
	RecordLookup(ctx context.Context, outcome Outcome)
}

// Stats is a snapshot of DocumentCache counters.
type Stats struct {
	Hits     int64
	Misses   int64
	Shared   int64
	Bypassed int64
	Renders  int64
	Failures int64
}

// DocumentOption configures a DocumentCache.
type DocumentOption[T any] func(*DocumentCache[T])

// WithSkipRule sets the rule that routes values around the cache.
func WithSkipRule[T any](rule SkipRule[T]) DocumentOption[T] {
	return func(d *DocumentCache[T]) {
		d.skip = rule
	}
}

// WithRecorder sets the lookup outcome recorder.
func WithRecorder[T any](r Recorder) DocumentOption[T] {
	return func(d *DocumentCache[T]) {
		d.recorder = r
	}
}

// DocumentCache memoizes a render function behind a Cache.
//
// Contract:
//   - Concurrency: safe for concurrent use. For one key, concurrent callers
//     share a single render; different keys never wait on each other.
//   - Context: a caller whose context ends while waiting gets a
//     *CoordinationError; the render continues for the other callers.
//   - Errors: render errors are never cached and reach every caller that
//     shared the render unchanged.
//   - Ownership: every caller receives its own copy of the buffer.
type DocumentCache[T any] struct {
	store    Cache
	keyer    Keyer[T]
	policy   Policy
	render   RenderFunc[T]
	skip     SkipRule[T]
	recorder Recorder
	group    singleflight.Group

	hits     atomic.Int64
	misses   atomic.Int64
	shared   atomic.Int64
	bypassed atomic.Int64
	renders  atomic.Int64
	failures atomic.Int64
}

// NewDocumentCache creates a DocumentCache.
func NewDocumentCache[T any](store Cache, keyer Keyer[T], policy Policy, render RenderFunc[T], opts ...DocumentOption[T]) (*DocumentCache[T], error) {
	if store == nil {
		return nil, ErrNilCache
	}
	if keyer == nil {
		return nil, ErrNilKeyer
	}
	if render == nil {
		return nil, ErrNilRender
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	d := &DocumentCache[T]{
		store:  store,
		keyer:  keyer,
		policy: policy,
		render: render,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// GetOrRender returns the cached buffer for v, rendering it on a miss.
func (d *DocumentCache[T]) GetOrRender(ctx context.Context, v T) ([]byte, error) {
	if !d.policy.ShouldCache() || (d.skip != nil && d.skip(v)) {
		d.bypassed.Add(1)
		d.record(ctx, OutcomeBypass)
		return d.renderOnce(ctx, v)
	}

	key, err := d.keyer.Key(v)
	if err != nil {
		return nil, err
	}
	if err := ValidateKey(key); err != nil {
		return nil, fmt.Errorf("%w: %q", err, key)
	}

	if data, ok := d.store.Get(ctx, key); ok {
		d.hits.Add(1)
		d.record(ctx, OutcomeHit)
		return data, nil
	}

	// The flight outlives any single caller, so it runs detached from the
	// leader's cancellation.
	flightCtx := context.WithoutCancel(ctx)
	led := false
	ch := d.group.DoChan(key, func() (any, error) {
		led = true
		// A previous flight may have stored the entry after our lookup.
		if data, ok := d.store.Get(flightCtx, key); ok {
			return data, nil
		}
		data, err := d.renderOnce(flightCtx, v)
		if err != nil {
			return nil, err
		}
		_ = d.store.Set(flightCtx, key, data, d.policy.EffectiveTTL(0))
		return data, nil
	})

	select {
	case res := <-ch:
		// led is only written by this caller's own flight function, which
		// has returned before its result is delivered on ch.
		if led {
			d.misses.Add(1)
			d.record(ctx, OutcomeMiss)
		} else {
			d.shared.Add(1)
			d.record(ctx, OutcomeShared)
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return bytes.Clone(res.Val.([]byte)), nil
	case <-ctx.Done():
		return nil, &CoordinationError{Key: key, Err: ctx.Err()}
	}
}

// Invalidate drops the entry for v, if any.
func (d *DocumentCache[T]) Invalidate(ctx context.Context, v T) error {
	key, err := d.keyer.Key(v)
	if err != nil {
		return err
	}
	d.group.Forget(key)
	return d.store.Delete(ctx, key)
}

// Stats returns a snapshot of the cache counters.
func (d *DocumentCache[T]) Stats() Stats {
	return Stats{
		Hits:     d.hits.Load(),
		Misses:   d.misses.Load(),
		Shared:   d.shared.Load(),
		Bypassed: d.bypassed.Load(),
		Renders:  d.renders.Load(),
		Failures: d.failures.Load(),
	}
}

// Store returns the backing cache.
func (d *DocumentCache[T]) Store() Cache {
	return d.store
}

func (d *DocumentCache[T]) renderOnce(ctx context.Context, v T) (data []byte, err error) {
	d.renders.Add(1)
	defer func() {
		if r := recover(); r != nil {
			data, err = nil, fmt.Errorf("%w: %v", ErrRenderPanic, r)
		}
		if err != nil {
			d.failures.Add(1)
		}
	}()
	return d.render(ctx, v)
}

func (d *DocumentCache[T]) record(ctx context.Context, outcome Outcome) {
	if d.recorder != nil {
		d.recorder.RecordLookup(ctx, outcome)
	}
}
