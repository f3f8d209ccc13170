package observe_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/coverforge/observe"
)

func ExampleNewObserver() {
	cfg := observe.Config{
		ServiceName: "coverd",
		Version:     "1.0.0",
		Tracing:     observe.TracingConfig{Enabled: true, Exporter: "none"},
		Metrics:     observe.MetricsConfig{Enabled: false},
		Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
	}

	ctx := context.Background()
	obs, err := observe.NewObserver(ctx, cfg)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	defer func() {
		_ = obs.Shutdown(ctx)
	}()

	fmt.Println("Observer created successfully")
	// Output:
	// Observer created successfully
}

func ExampleNewObserver_validation() {
	_, err := observe.NewObserver(context.Background(), observe.Config{})
	if errors.Is(err, observe.ErrMissingServiceName) {
		fmt.Println("Caught: missing service name")
	}
	// Output:
	// Caught: missing service name
}

func ExampleConfig_Validate() {
	cfg := observe.Config{
		ServiceName: "coverd",
		Metrics:     observe.MetricsConfig{Enabled: true, Exporter: "graphite"},
	}
	err := cfg.Validate()
	fmt.Println(errors.Is(err, observe.ErrInvalidMetricsExporter))
	// Output:
	// true
}

func ExampleRenderMeta_SpanName() {
	fmt.Println(observe.RenderMeta{Format: "pdf", Variant: "labelled"}.SpanName())
	fmt.Println(observe.RenderMeta{Format: "docx"}.SpanName())
	// Output:
	// render.pdf.labelled
	// render.docx.default
}

func ExampleLogger_WithRender() {
	var buf bytes.Buffer
	logger := observe.NewLoggerWithWriter("info", &buf)

	logger.WithRender(observe.RenderMeta{Format: "docx", Variant: "classic"}).
		Info(context.Background(), "rendered", observe.Field{Key: "token", Value: "ASGN-1"})

	out := buf.Bytes()
	fmt.Println("Contains render.format:", bytes.Contains(out, []byte(`"render.format":"docx"`)))
	fmt.Println("Token redacted:", bytes.Contains(out, []byte(`"token":"[REDACTED]"`)))
	// Output:
	// Contains render.format: true
	// Token redacted: true
}

func ExampleMiddleware_Wrap() {
	ctx := context.Background()

	cfg := observe.Config{
		ServiceName: "coverd",
		Tracing:     observe.TracingConfig{Enabled: true, Exporter: "none"},
		Metrics:     observe.MetricsConfig{Enabled: true, Exporter: "none"},
	}
	obs, _ := observe.NewObserver(ctx, cfg)
	defer func() {
		_ = obs.Shutdown(ctx)
	}()

	mw, _ := observe.MiddlewareFromObserver(obs)

	render := mw.Wrap(func(ctx context.Context, meta observe.RenderMeta) ([]byte, error) {
		return []byte("%PDF-1.3"), nil
	})

	out, err := render(ctx, observe.RenderMeta{Format: "pdf", Variant: "classic"})
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Printf("Rendered %d bytes\n", len(out))
	// Output:
	// Rendered 8 bytes
}

func ExampleParseLogLevel() {
	levels := []string{"debug", "info", "warn", "error", "unknown"}
	for _, s := range levels {
		level := observe.ParseLogLevel(s)
		fmt.Printf("%s -> %s\n", s, level)
	}
	// Output:
	// debug -> debug
	// info -> info
	// warn -> warn
	// error -> error
	// unknown -> info
}
