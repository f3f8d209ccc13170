package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jonwraymond/coverforge/secret"
)

// EnvPrefix prefixes every override variable.
const EnvPrefix = "COVERFORGE_"

type override struct {
	name  string
	apply func(c *Config, v string) error
}

func str(dst func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*dst(c) = v
		return nil
	}
}

func integer(dst func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*dst(c) = n
		return nil
	}
}

func duration(dst func(*Config) *time.Duration) func(*Config, string) error {
	return func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*dst(c) = d
		return nil
	}
}

func boolean(dst func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*dst(c) = b
		return nil
	}
}

var overrides = []override{
	{"LISTEN", str(func(c *Config) *string { return &c.Listen })},
	{"LOG_LEVEL", str(func(c *Config) *string { return &c.Log.Level })},
	{"CACHE_TTL", duration(func(c *Config) *time.Duration { return &c.Cache.TTL })},
	{"CACHE_MAX_ENTRIES", integer(func(c *Config) *int { return &c.Cache.MaxEntries })},
	{"CACHE_SWEEP_INTERVAL", duration(func(c *Config) *time.Duration { return &c.Cache.SweepInterval })},
	{"RENDER_VARIANT", str(func(c *Config) *string { return &c.Render.Variant })},
	{"RENDER_LOGO_PATH", str(func(c *Config) *string { return &c.Render.LogoPath })},
	{"RENDER_MAX_CONCURRENT", integer(func(c *Config) *int { return &c.Render.MaxConcurrent })},
	{"INSTITUTION_NAME", str(func(c *Config) *string { return &c.Institution.Name })},
	{"INSTITUTION_SHORT_NAME", str(func(c *Config) *string { return &c.Institution.ShortName })},
	{"SMTP_HOST", str(func(c *Config) *string { return &c.SMTP.Host })},
	{"SMTP_PORT", integer(func(c *Config) *int { return &c.SMTP.Port })},
	{"SMTP_USERNAME", str(func(c *Config) *string { return &c.SMTP.Username })},
	{"SMTP_PASSWORD", str(func(c *Config) *string { return &c.SMTP.Password })},
	{"SMTP_FROM", str(func(c *Config) *string { return &c.SMTP.From })},
	{"SMTP_TO", str(func(c *Config) *string { return &c.SMTP.To })},
	{"SMTP_TLS", str(func(c *Config) *string { return &c.SMTP.TLS })},
	{"TELEMETRY_TRACING_ENABLED", boolean(func(c *Config) *bool { return &c.Telemetry.Tracing.Enabled })},
	{"TELEMETRY_TRACING_EXPORTER", str(func(c *Config) *string { return &c.Telemetry.Tracing.Exporter })},
	{"TELEMETRY_METRICS_ENABLED", boolean(func(c *Config) *bool { return &c.Telemetry.Metrics.Enabled })},
	{"TELEMETRY_METRICS_EXPORTER", str(func(c *Config) *string { return &c.Telemetry.Metrics.Exporter })},
}

// applyEnv applies every COVERFORGE_* variable that is set.
func (c *Config) applyEnv(lookup secret.LookupFunc) error {
	for _, o := range overrides {
		v, ok := lookup(EnvPrefix + o.name)
		if !ok {
			continue
		}
		if err := o.apply(c, v); err != nil {
			return fmt.Errorf("%w: %s%s: %w", ErrInvalid, EnvPrefix, o.name, err)
		}
	}
	return nil
}
