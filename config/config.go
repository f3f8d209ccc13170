package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/coverforge/cache"
	"github.com/jonwraymond/coverforge/mail"
	"github.com/jonwraymond/coverforge/observe"
	"github.com/jonwraymond/coverforge/render"
	"github.com/jonwraymond/coverforge/secret"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config is the coverd configuration.
type Config struct {
	// Listen is the HTTP listen address. Default: :5000
	Listen string `yaml:"listen"`

	HTTP        HTTPConfig        `yaml:"http"`
	Cache       CacheConfig       `yaml:"cache"`
	Render      RenderConfig      `yaml:"render"`
	Institution InstitutionConfig `yaml:"institution"`
	SMTP        mail.SMTPConfig   `yaml:"smtp"`
	Delivery    DeliveryConfig    `yaml:"delivery"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
	Log         LogConfig         `yaml:"log"`
}

// HTTPConfig configures the HTTP front end.
type HTTPConfig struct {
	// BodyLimit caps request bodies in bytes. Default: 10 MiB
	BodyLimit       int64         `yaml:"body_limit"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// CacheConfig configures the document cache.
type CacheConfig struct {
	// TTL is the lifetime of a rendered document. Zero disables caching.
	// Default: 1h
	TTL time.Duration `yaml:"ttl"`
	// MaxEntries bounds the number of cached documents. Default: 256
	MaxEntries int `yaml:"max_entries"`
	// SweepInterval throttles expired-entry sweeps. Default: 10m
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// RenderConfig configures the renderers.
type RenderConfig struct {
	// Variant is the default template variant. Default: classic
	Variant string `yaml:"variant"`
	// LogoPath points at a PNG or JPEG header logo. A missing file renders
	// without a logo.
	LogoPath string `yaml:"logo_path"`
	// MaxConcurrent caps renders in progress. Default: 4
	MaxConcurrent int           `yaml:"max_concurrent"`
	MaxWait       time.Duration `yaml:"max_wait"`
}

// InstitutionConfig names the issuing institution.
type InstitutionConfig struct {
	Name      string `yaml:"name"`
	ShortName string `yaml:"short_name"`
}

// DeliveryConfig tunes the resilience wrapped around SMTP delivery.
type DeliveryConfig struct {
	// Attempts counts the first try. Default: 3
	Attempts int `yaml:"attempts"`
	// Timeout bounds one attempt. Default: 30s
	Timeout time.Duration `yaml:"timeout"`
	// BreakerFailures opens the circuit after this many consecutive
	// failed deliveries. Default: 5
	BreakerFailures int `yaml:"breaker_failures"`
	// BreakerReset is how long the circuit stays open. Default: 1m
	BreakerReset time.Duration `yaml:"breaker_reset"`
	// RatePerSecond and Burst size the token bucket that paces deliveries
	// to the shop. Default: 1/s with a burst of 5
	RatePerSecond float64 `yaml:"rate_per_second"`
	Burst         int     `yaml:"burst"`
}

// TelemetryConfig configures tracing and metrics export.
type TelemetryConfig struct {
	ServiceName string        `yaml:"service_name"`
	Tracing     TracingConfig `yaml:"tracing"`
	Metrics     MetricsConfig `yaml:"metrics"`
}

// TracingConfig configures span export.
type TracingConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Exporter  string  `yaml:"exporter"`
	SamplePct float64 `yaml:"sample_pct"`
}

// MetricsConfig configures metric export.
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	// Level is one of debug, info, warn or error. Default: info
	Level string `yaml:"level"`
}

// Default returns the configuration used before the file is applied.
func Default() *Config {
	inst := render.DefaultInstitution()
	return &Config{
		Listen: ":5000",
		HTTP: HTTPConfig{
			BodyLimit:       10 << 20,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Cache: CacheConfig{
			TTL:           time.Hour,
			MaxEntries:    256,
			SweepInterval: 10 * time.Minute,
		},
		Render: RenderConfig{
			Variant:       render.DefaultVariant.Name,
			MaxConcurrent: 4,
			MaxWait:       10 * time.Second,
		},
		Institution: InstitutionConfig{Name: inst.Name, ShortName: inst.ShortName},
		SMTP: mail.SMTPConfig{
			Port:     587,
			FromName: mail.DefaultFromName,
			TLS:      "mandatory",
			Timeout:  15 * time.Second,
		},
		Delivery: DeliveryConfig{
			Attempts:        3,
			Timeout:         30 * time.Second,
			BreakerFailures: 5,
			BreakerReset:    time.Minute,
			RatePerSecond:   1,
			Burst:           5,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "coverd",
			Tracing:     TracingConfig{Exporter: "none", SamplePct: 1},
			Metrics:     MetricsConfig{Enabled: true, Exporter: "prometheus"},
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults and applies COVERFORGE_* overrides from
// the process environment. An empty path skips the file.
func Load(path string) (*Config, error) {
	return LoadWith(path, os.LookupEnv)
}

// LoadWith is Load with an explicit environment lookup.
func LoadWith(path string, lookup secret.LookupFunc) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Resolve replaces secret references with their values.
func (c *Config) Resolve(ctx context.Context, r *secret.Resolver) error {
	if c.SMTP.Password == "" {
		return nil
	}
	v, err := r.ResolveValue(ctx, c.SMTP.Password)
	if err != nil {
		return fmt.Errorf("config: smtp.password: %w", err)
	}
	c.SMTP.Password = v
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error
	if c.Listen == "" {
		errs = append(errs, errors.New("listen is required"))
	}
	if c.HTTP.BodyLimit <= 0 {
		errs = append(errs, errors.New("http.body_limit must be positive"))
	}
	if err := c.Policy().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("cache: %w", err))
	}
	if _, err := render.LookupVariant(c.Render.Variant); err != nil {
		errs = append(errs, fmt.Errorf("render.variant: %w", err))
	}
	if c.Render.MaxConcurrent < 0 {
		errs = append(errs, errors.New("render.max_concurrent must not be negative"))
	}
	if c.SMTP.Enabled() {
		if err := c.SMTP.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("smtp: %w", err))
		}
	}
	if c.Delivery.Attempts < 1 {
		errs = append(errs, errors.New("delivery.attempts must be at least 1"))
	}
	if c.Delivery.RatePerSecond <= 0 || c.Delivery.Burst < 1 {
		errs = append(errs, errors.New("delivery.rate_per_second and delivery.burst must be positive"))
	}
	obs := c.Observe()
	if err := obs.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("telemetry: %w", err))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Policy returns the document cache policy.
func (c *Config) Policy() cache.Policy {
	return cache.Policy{
		DefaultTTL:    c.Cache.TTL,
		MaxTTL:        c.Cache.TTL,
		MaxEntries:    c.Cache.MaxEntries,
		SweepInterval: c.Cache.SweepInterval,
	}
}

// Observe returns the telemetry configuration.
func (c *Config) Observe() observe.Config {
	return observe.Config{
		ServiceName: c.Telemetry.ServiceName,
		Tracing: observe.TracingConfig{
			Enabled:   c.Telemetry.Tracing.Enabled,
			Exporter:  c.Telemetry.Tracing.Exporter,
			SamplePct: c.Telemetry.Tracing.SamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  c.Telemetry.Metrics.Enabled,
			Exporter: c.Telemetry.Metrics.Exporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   c.Log.Level,
		},
	}
}

// RenderOptions loads the logo and returns the renderer options.
func (c *Config) RenderOptions() (render.Options, error) {
	assets, err := render.LoadAssets(c.Render.LogoPath)
	if err != nil {
		return render.Options{}, err
	}
	return render.Options{
		Institution: render.Institution{
			Name:      c.Institution.Name,
			ShortName: c.Institution.ShortName,
		},
		Assets: assets,
	}, nil
}
