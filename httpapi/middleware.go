package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jonwraymond/coverforge/observe"
)

type httpMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newHTTPMetrics(reg prometheus.Registerer) (m *httpMetrics, err error) {
	// promauto panics on duplicate registration.
	defer func() {
		if r := recover(); r != nil {
			m, err = nil, fmt.Errorf("httpapi: register metrics: %v", r)
		}
	}()
	factory := promauto.With(reg)
	return &httpMetrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "coverforge_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "coverforge_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}, nil
}

// route labels by the matched chi pattern so unknown paths collapse into
// one series.
func route(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

func (m *httpMetrics) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		rt := route(r)
		m.requests.WithLabelValues(r.Method, rt, strconv.Itoa(status(ww))).Inc()
		m.duration.WithLabelValues(r.Method, rt).Observe(time.Since(start).Seconds())
	})
}

// requestLogger logs one line per request. 5xx logs at error, 4xx at warn.
func requestLogger(logger observe.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			code := status(ww)
			fields := []observe.Field{
				{Key: "method", Value: r.Method},
				{Key: "path", Value: r.URL.Path},
				{Key: "status", Value: code},
				{Key: "bytes", Value: ww.BytesWritten()},
				{Key: "duration_ms", Value: float64(time.Since(start).Microseconds()) / 1000},
				{Key: "request_id", Value: middleware.GetReqID(r.Context())},
				{Key: "remote_addr", Value: r.RemoteAddr},
			}
			switch {
			case code >= 500:
				logger.Error(r.Context(), "http request", fields...)
			case code >= 400:
				logger.Warn(r.Context(), "http request", fields...)
			default:
				logger.Info(r.Context(), "http request", fields...)
			}
		})
	}
}

func status(ww middleware.WrapResponseWriter) int {
	if code := ww.Status(); code != 0 {
		return code
	}
	return http.StatusOK
}
