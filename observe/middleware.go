package observe

import (
	"context"
	"time"
)

// RenderFunc is the signature Middleware wraps: it produces the document
// bytes for one render.
type RenderFunc func(ctx context.Context, meta RenderMeta) ([]byte, error)

// Middleware wraps renders with observability (tracing, metrics, logging).
//
// Contract:
//   - Concurrency: Wrap() returns a thread-safe RenderFunc.
//   - Context: Propagates context through tracing spans.
//   - Errors: Errors from wrapped function are recorded and propagated unchanged.
//   - Ownership: Output bytes are passed through without modification.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability
// components. Nil components are replaced by no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = newNoopTracer()
	}
	if metrics == nil {
		metrics = &noopMetrics{}
	}
	if logger == nil {
		logger = &noopLogger{}
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Wrap wraps a RenderFunc with tracing, metrics, and logging.
func (m *Middleware) Wrap(fn RenderFunc) RenderFunc {
	return func(ctx context.Context, meta RenderMeta) ([]byte, error) {
		if meta.Format == "" {
			return nil, ErrMissingFormat
		}

		ctx, span := m.tracer.StartSpan(ctx, meta)
		start := time.Now()

		out, err := fn(ctx, meta)

		duration := time.Since(start)
		m.tracer.EndSpan(span, err)
		m.metrics.RecordRender(ctx, meta, duration, err)

		renderLogger := m.logger.WithRender(meta)
		fields := []Field{
			{Key: "duration_ms", Value: float64(duration.Microseconds()) / 1000},
		}

		if err != nil {
			fields = append(fields, Field{Key: "error", Value: err.Error()})
			renderLogger.Error(ctx, "render failed", fields...)
		} else {
			fields = append(fields, Field{Key: "bytes", Value: len(out)})
			renderLogger.Debug(ctx, "render completed", fields...)
		}

		return out, err
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	tracer := newTracer(obs.Tracer())

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(tracer, metrics, obs.Logger()), nil
}
