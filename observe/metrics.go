package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jonwraymond/coverforge/cache"
)

// Metrics records render metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordRender records one render with its duration and error status.
	RecordRender(ctx context.Context, meta RenderMeta, duration time.Duration, err error)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
}

// newMetrics creates a new Metrics instance with the given meter.
func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	totalCount, err := meter.Int64Counter(
		"render.total",
		metric.WithDescription("Total number of document renders"),
		metric.WithUnit("{render}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"render.errors",
		metric.WithDescription("Total number of failed document renders"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"render.duration_ms",
		metric.WithDescription("Render duration in milliseconds, including cache lookup"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		totalCount:   totalCount,
		errorCount:   errorCount,
		durationHist: durationHist,
	}, nil
}

// RecordRender records metrics for a render.
func (m *metricsImpl) RecordRender(ctx context.Context, meta RenderMeta, duration time.Duration, err error) {
	opt := metric.WithAttributes(
		attribute.String("render.format", meta.Format),
		attribute.String("render.variant", meta.variant()),
	)

	m.totalCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Microseconds())/1000, opt)
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (m *noopMetrics) RecordRender(ctx context.Context, meta RenderMeta, duration time.Duration, err error) {
}

// CacheRecorder counts document cache lookups by outcome. It implements
// cache.Recorder.
type CacheRecorder struct {
	name     attribute.KeyValue
	hits     metric.Int64Counter
	misses   metric.Int64Counter
	shared   metric.Int64Counter
	bypassed metric.Int64Counter
}

var _ cache.Recorder = (*CacheRecorder)(nil)

// NewCacheRecorder creates a recorder whose measurements carry
// cache.name=name.
func NewCacheRecorder(meter metric.Meter, name string) (*CacheRecorder, error) {
	r := &CacheRecorder{name: attribute.String("cache.name", name)}
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&r.hits, "cache.hits", "Lookups served from a live entry"},
		{&r.misses, "cache.misses", "Lookups that led a render"},
		{&r.shared, "cache.shared", "Lookups that joined an in-flight render"},
		{&r.bypassed, "cache.bypassed", "Lookups routed around the cache"},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name,
			metric.WithDescription(c.desc),
			metric.WithUnit("{lookup}"),
		)
		if err != nil {
			return nil, err
		}
		*c.dst = counter
	}
	return r, nil
}

// RecordLookup implements cache.Recorder.
func (r *CacheRecorder) RecordLookup(ctx context.Context, outcome cache.Outcome) {
	opt := metric.WithAttributes(r.name)
	switch outcome {
	case cache.OutcomeHit:
		r.hits.Add(ctx, 1, opt)
	case cache.OutcomeMiss:
		r.misses.Add(ctx, 1, opt)
	case cache.OutcomeShared:
		r.shared.Add(ctx, 1, opt)
	case cache.OutcomeBypass:
		r.bypassed.Add(ctx, 1, opt)
	}
}

// CacheRecorderFromObserver creates a CacheRecorder on the observer's meter.
func CacheRecorderFromObserver(obs Observer, name string) (*CacheRecorder, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	return NewCacheRecorder(obs.Meter(), name)
}
