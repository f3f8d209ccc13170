package observe

import "errors"

var (
	ErrMissingServiceName     = errors.New("observe: service name is required")
	ErrInvalidSamplePct       = errors.New("observe: sample percentage must be within [0, 1]")
	ErrInvalidTracingExporter = errors.New("observe: invalid tracing exporter")
	ErrInvalidMetricsExporter = errors.New("observe: invalid metrics exporter")
	ErrInvalidLogLevel        = errors.New("observe: invalid log level")
)

var (
	// ErrNilObserver is returned by the *FromObserver constructors.
	ErrNilObserver = errors.New("observe: observer is nil")
	// ErrMissingFormat means a render was instrumented without RenderMeta.Format.
	ErrMissingFormat = errors.New("observe: render format is required")
)

// Accepted exporter and level names. The empty string selects the default.
var (
	ValidTracingExporters = []string{"", "none", "stdout", "otlp"}
	ValidMetricsExporters = []string{"", "none", "stdout", "otlp", "prometheus"}
	ValidLogLevels        = []string{"", "debug", "info", "warn", "error"}
)

// RedactedFields are log keys whose values are replaced with [REDACTED].
// A delivery token is enough to claim a print job.
var RedactedFields = []string{
	"token",
	"password",
	"smtp_password",
	"secret",
	"credential",
	"api_key",
	"apiKey",
}
