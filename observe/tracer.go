package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// RenderMeta describes one render for telemetry purposes.
type RenderMeta struct {
	Format  string // pdf|docx (required)
	Variant string // template variant, "default" when empty
	// Cacheable is false when the render bypasses the document cache.
	Cacheable bool
}

func (m RenderMeta) variant() string {
	if m.Variant == "" {
		return "default"
	}
	return m.Variant
}

// SpanName returns "render.<format>.<variant>".
func (m RenderMeta) SpanName() string {
	return "render." + m.Format + "." + m.variant()
}

// ID returns "<format>/<variant>".
func (m RenderMeta) ID() string {
	return m.Format + "/" + m.variant()
}

// Tracer opens and closes one span per render.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - EndSpan never panics.
type Tracer interface {
	StartSpan(ctx context.Context, meta RenderMeta) (context.Context, trace.Span)
	EndSpan(span trace.Span, err error)
}

type renderTracer struct {
	tracer trace.Tracer
}

func newTracer(t trace.Tracer) Tracer {
	return renderTracer{tracer: t}
}

func newNoopTracer() Tracer {
	return renderTracer{tracer: tracenoop.NewTracerProvider().Tracer("")}
}

// StartSpan names the span render.<format>.<variant>. render.error starts
// false and is flipped by EndSpan.
func (t renderTracer) StartSpan(ctx context.Context, meta RenderMeta) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("render.format", meta.Format),
			attribute.String("render.variant", meta.variant()),
			attribute.Bool("render.cacheable", meta.Cacheable),
			attribute.Bool("render.error", false),
		),
	)
}

func (t renderTracer) EndSpan(span trace.Span, err error) {
	defer span.End()
	if err == nil {
		span.SetStatus(codes.Ok, "")
		return
	}
	span.RecordError(err)
	span.SetAttributes(attribute.Bool("render.error", true))
	span.SetStatus(codes.Error, err.Error())
}
