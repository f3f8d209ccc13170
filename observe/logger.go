package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"maps"
	"os"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// LogLevel orders log records by severity.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"debug", "info", "warn", "error"}

// ParseLogLevel maps a level name to its LogLevel. Unknown names give
// LevelInfo.
func ParseLogLevel(s string) LogLevel {
	if i := slices.Index(levelNames[:], s); i >= 0 {
		return LogLevel(i)
	}
	return LevelInfo
}

func (l LogLevel) String() string {
	if l < LevelDebug || l > LevelError {
		return levelNames[LevelInfo]
	}
	return levelNames[l]
}

// jsonLogger writes one JSON object per line. Records logged under a
// recording span carry its trace_id and span_id.
type jsonLogger struct {
	min   LogLevel
	out   *lockedWriter
	attrs map[string]any
}

// lockedWriter is shared by a logger and everything derived from it, so
// lines never interleave.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lockedWriter) writeLine(b []byte) {
	lw.mu.Lock()
	_, _ = lw.w.Write(b)
	lw.mu.Unlock()
}

// NewLogger returns a JSON logger writing to stderr.
func NewLogger(level string) Logger {
	return NewLoggerWithWriter(level, os.Stderr)
}

// NewLoggerWithWriter returns a JSON logger writing to w.
func NewLoggerWithWriter(level string, w io.Writer) Logger {
	return &jsonLogger{min: ParseLogLevel(level), out: &lockedWriter{w: w}}
}

// NopLogger returns a logger that discards everything.
func NopLogger() Logger {
	return &noopLogger{}
}

func (l *jsonLogger) with(extra map[string]any) *jsonLogger {
	attrs := maps.Clone(l.attrs)
	if attrs == nil {
		attrs = make(map[string]any, len(extra))
	}
	maps.Copy(attrs, extra)
	return &jsonLogger{min: l.min, out: l.out, attrs: attrs}
}

func (l *jsonLogger) WithRender(meta RenderMeta) Logger {
	return l.with(map[string]any{
		"render.format":  meta.Format,
		"render.variant": meta.variant(),
	})
}

func (l *jsonLogger) With(fields ...Field) Logger {
	extra := make(map[string]any, len(fields))
	for _, f := range fields {
		extra[f.Key] = fieldValue(f)
	}
	return l.with(extra)
}

func (l *jsonLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.write(ctx, LevelDebug, msg, fields)
}

func (l *jsonLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.write(ctx, LevelInfo, msg, fields)
}

func (l *jsonLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.write(ctx, LevelWarn, msg, fields)
}

func (l *jsonLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.write(ctx, LevelError, msg, fields)
}

func (l *jsonLogger) write(ctx context.Context, level LogLevel, msg string, fields []Field) {
	if level < l.min {
		return
	}

	rec := make(map[string]any, len(l.attrs)+len(fields)+5)
	maps.Copy(rec, l.attrs)
	for _, f := range fields {
		rec[f.Key] = fieldValue(f)
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		rec["trace_id"] = sc.TraceID().String()
		rec["span_id"] = sc.SpanID().String()
	}
	rec["timestamp"] = time.Now().UTC().Format(time.RFC3339Nano)
	rec["level"] = level.String()
	rec["msg"] = msg

	// Message ids and addresses are written as-is so they can be grepped.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rec); err != nil {
		return
	}
	l.out.writeLine(buf.Bytes())
}

// fieldValue redacts sensitive keys and flattens errors, which would
// otherwise encode as {}.
func fieldValue(f Field) any {
	if slices.Contains(RedactedFields, f.Key) {
		return "[REDACTED]"
	}
	if err, ok := f.Value.(error); ok && err != nil {
		return err.Error()
	}
	return f.Value
}
