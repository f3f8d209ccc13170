// Package observe provides the telemetry used around cover sheet rendering:
// OpenTelemetry tracing and metrics, a JSON structured logger, a middleware
// that instruments each render, and a recorder for cache lookup outcomes.
//
// It is a pure instrumentation library with no I/O beyond exporter setup.
// The service package wires the middleware around its renderers and hands
// the cache recorder to each DocumentCache.
package observe
