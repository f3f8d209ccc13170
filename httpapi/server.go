package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonwraymond/coverforge/cover"
	"github.com/jonwraymond/coverforge/health"
	"github.com/jonwraymond/coverforge/observe"
	"github.com/jonwraymond/coverforge/render"
	"github.com/jonwraymond/coverforge/service"
)

// DefaultBodyLimit caps request bodies.
const DefaultBodyLimit int64 = 10 << 20

// Service is the part of service.Service the handlers drive.
type Service interface {
	RenderVariant(ctx context.Context, f render.Format, variant string, rec *cover.Record) ([]byte, error)
	SendToShop(ctx context.Context, rec *cover.Record) (service.Delivery, error)
}

// Config configures a Server.
type Config struct {
	Addr            string
	BodyLimit       int64
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	Logger observe.Logger
	Health *health.Aggregator
	// Registry backs /metrics and the HTTP request metrics. Defaults to a
	// fresh registry.
	Registry *prometheus.Registry
}

func (c Config) withDefaults() Config {
	if c.Addr == "" {
		c.Addr = ":5000"
	}
	if c.BodyLimit <= 0 {
		c.BodyLimit = DefaultBodyLimit
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 30 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 60 * time.Second
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 120 * time.Second
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 15 * time.Second
	}
	if c.Logger == nil {
		c.Logger = observe.NopLogger()
	}
	if c.Health == nil {
		c.Health = health.NewAggregator()
	}
	if c.Registry == nil {
		c.Registry = prometheus.NewRegistry()
	}
	return c
}

// Server is the HTTP front end.
type Server struct {
	cfg        Config
	svc        Service
	router     chi.Router
	httpServer *http.Server
}

// New builds the router and the underlying http.Server.
func New(svc Service, cfg Config) (*Server, error) {
	cfg = cfg.withDefaults()
	metrics, err := newHTTPMetrics(cfg.Registry)
	if err != nil {
		return nil, err
	}

	s := &Server{cfg: cfg, svc: svc}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(cfg.Logger))
	r.Use(metrics.middleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	health.Mount(r, cfg.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))

	r.Route("/api/cover", func(r chi.Router) {
		r.Use(middleware.RequestSize(cfg.BodyLimit))
		r.Post("/download/pdf", s.download(render.FormatPDF))
		r.Post("/download/docx", s.download(render.FormatDOCX))
		r.Post("/send-to-shop", s.sendToShop)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Not found"})
	})

	s.router = r
	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s, nil
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx ends, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.cfg.Logger.Info(ctx, "http server started", observe.Field{Key: "addr", Value: s.httpServer.Addr})
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("httpapi: serve: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()

	s.cfg.Logger.Info(shutdownCtx, "http server shutting down")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("httpapi: shutdown: %w", err)
	}
	s.cfg.Logger.Info(shutdownCtx, "http server stopped")
	return nil
}
