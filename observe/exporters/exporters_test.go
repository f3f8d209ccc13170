package exporters

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	promclient "github.com/prometheus/client_golang/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestExporter_InvalidName(t *testing.T) {
	_, err := NewTracingExporter(context.Background(), "jaeger", Options{})
	if !errors.Is(err, ErrUnknownExporter) {
		t.Errorf("NewTracingExporter(jaeger) error = %v, want ErrUnknownExporter", err)
	}
}

// TestExporter_StdoutTracingWriter verifies spans land in the configured writer.
func TestExporter_StdoutTracingWriter(t *testing.T) {
	var buf bytes.Buffer
	exp, err := NewTracingExporter(context.Background(), "stdout", Options{Writer: &buf})
	if err != nil {
		t.Fatalf("failed to create stdout tracing exporter: %v", err)
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	_, span := tp.Tracer("test").Start(context.Background(), "render.pdf.classic")
	span.End()
	if err := tp.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	if !strings.Contains(buf.String(), "render.pdf.classic") {
		t.Errorf("stdout exporter output missing span name: %q", buf.String())
	}
}

func TestExporter_StdoutMetrics(t *testing.T) {
	reader, err := NewMetricsReader(context.Background(), "stdout", Options{Writer: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("failed to create stdout metrics reader: %v", err)
	}
	if reader == nil {
		t.Fatal("expected non-nil reader")
	}
}

func TestExporter_OtlpMissingEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT", "")

	if _, err := NewTracingExporter(context.Background(), "otlp", Options{}); !errors.Is(err, ErrNoEndpoint) {
		t.Errorf("tracing: error = %v, want ErrNoEndpoint", err)
	}
	if _, err := NewMetricsReader(context.Background(), "otlp", Options{}); !errors.Is(err, ErrNoEndpoint) {
		t.Errorf("metrics: error = %v, want ErrNoEndpoint", err)
	}
}

func TestExporter_OtlpWithEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4317")

	exp, err := NewTracingExporter(context.Background(), "otlp", Options{})
	if err != nil {
		t.Fatalf("failed to create OTLP exporter with endpoint: %v", err)
	}
	if exp == nil {
		t.Fatal("expected non-nil exporter")
	}
}

// TestExporter_PrometheusRegistry verifies the reader registers with the
// supplied registry rather than the global one.
func TestExporter_PrometheusRegistry(t *testing.T) {
	reg := promclient.NewRegistry()
	reader, err := NewMetricsReader(context.Background(), "prometheus", Options{Registerer: reg})
	if err != nil {
		t.Fatalf("failed to create Prometheus reader: %v", err)
	}

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	counter, err := mp.Meter("test").Int64Counter("render.total")
	if err != nil {
		t.Fatal(err)
	}
	counter.Add(context.Background(), 1)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	var found bool
	for _, f := range families {
		if strings.HasPrefix(f.GetName(), "render_total") {
			found = true
		}
	}
	if !found {
		t.Error("render_total not exposed through the registry")
	}
}

func TestExporter_None(t *testing.T) {
	exp, err := NewTracingExporter(context.Background(), "none", Options{})
	if err != nil || exp != nil {
		t.Errorf("NewTracingExporter(none) = %v, %v, want nil, nil", exp, err)
	}
	reader, err := NewMetricsReader(context.Background(), "", Options{})
	if err != nil || reader != nil {
		t.Errorf("NewMetricsReader(\"\") = %v, %v, want nil, nil", reader, err)
	}
}

func TestExporter_MetricsInvalidName(t *testing.T) {
	_, err := NewMetricsReader(context.Background(), "statsd", Options{})
	if !errors.Is(err, ErrUnknownExporter) {
		t.Errorf("NewMetricsReader(statsd) error = %v, want ErrUnknownExporter", err)
	}
}
