package main

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jonwraymond/coverforge/config"
	"github.com/jonwraymond/coverforge/health"
	"github.com/jonwraymond/coverforge/httpapi"
	"github.com/jonwraymond/coverforge/mail"
	"github.com/jonwraymond/coverforge/observe"
	"github.com/jonwraymond/coverforge/resilience"
	"github.com/jonwraymond/coverforge/secret"
	"github.com/jonwraymond/coverforge/service"
)

// app holds the wired daemon.
type app struct {
	server   *httpapi.Server
	service  *service.Service
	health   *health.Aggregator
	observer observe.Observer
	logger   observe.Logger
}

func newApp(ctx context.Context, cfg *config.Config, logOut io.Writer) (*app, error) {
	if err := cfg.Resolve(ctx, secret.NewResolver(secret.Strict())); err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	obsCfg := cfg.Observe()
	obsCfg.Writer = logOut
	obsCfg.Registerer = reg
	obs, err := observe.NewObserver(ctx, obsCfg)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}
	logger := obs.Logger()

	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		return nil, err
	}
	recorder, err := observe.CacheRecorderFromObserver(obs, "documents")
	if err != nil {
		return nil, err
	}

	agg := health.NewAggregator()

	var sender mail.Sender
	if cfg.SMTP.Enabled() {
		breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			MaxFailures:  cfg.Delivery.BreakerFailures,
			ResetTimeout: cfg.Delivery.BreakerReset,
			OnStateChange: func(from, to resilience.State) {
				logger.Warn(context.Background(), "smtp circuit changed state",
					observe.Field{Key: "from", Value: from.String()},
					observe.Field{Key: "to", Value: to.String()},
				)
			},
		})
		exec := resilience.NewExecutor(
			resilience.WithCircuitBreaker(breaker),
			resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{
				MaxAttempts: cfg.Delivery.Attempts,
				Strategy:    resilience.BackoffExponential,
				Jitter:      true,
			})),
			resilience.WithRateLimiter(resilience.NewRateLimiter(resilience.RateLimiterConfig{
				Rate:        cfg.Delivery.RatePerSecond,
				Burst:       cfg.Delivery.Burst,
				WaitOnLimit: true,
				MaxWait:     cfg.Delivery.Timeout,
			})),
			resilience.WithTimeout(cfg.Delivery.Timeout),
		)
		smtp, err := mail.NewSMTPSender(cfg.SMTP, mail.WithExecutor(exec), mail.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		sender = smtp
		agg.RegisterOptional(health.NewBreakerChecker("smtp", breaker))
	} else {
		logger.Warn(ctx, "smtp not configured, print requests are only logged")
		sender = mail.NewLogSender(logger)
	}

	renderOpts, err := cfg.RenderOptions()
	if err != nil {
		return nil, err
	}
	policy := cfg.Policy()
	svc, err := service.New(service.Options{
		Policy:        &policy,
		Render:        renderOpts,
		Variant:       cfg.Render.Variant,
		MaxConcurrent: cfg.Render.MaxConcurrent,
		MaxWait:       cfg.Render.MaxWait,
		Sender:        sender,
		Logger:        logger,
		Middleware:    mw,
		Recorder:      recorder,
	})
	if err != nil {
		return nil, err
	}

	agg.Register(health.NewRenderChecker("render", svc.Probe))
	agg.RegisterOptional(
		health.NewMemoryChecker(health.MemoryCheckerConfig{}),
		health.NewCacheChecker("cache", svc.Store()),
		health.NewBulkheadChecker("render_slots", svc.Bulkhead()),
	)

	srv, err := httpapi.New(svc, httpapi.Config{
		Addr:            cfg.Listen,
		BodyLimit:       cfg.HTTP.BodyLimit,
		ReadTimeout:     cfg.HTTP.ReadTimeout,
		WriteTimeout:    cfg.HTTP.WriteTimeout,
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
		Logger:          logger,
		Health:          agg,
		Registry:        reg,
	})
	if err != nil {
		return nil, err
	}

	return &app{
		server:   srv,
		service:  svc,
		health:   agg,
		observer: obs,
		logger:   logger,
	}, nil
}

func (a *app) close(ctx context.Context) error {
	return a.observer.Shutdown(ctx)
}
