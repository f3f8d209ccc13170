// Package health reports whether a coverforge process can serve downloads
// and deliver print requests.
//
// Checkers cover the moving parts of the service: a canary render through
// the real renderers, the print-shop relay's circuit breaker, the render
// bulkhead, the document caches and process memory. An Aggregator runs
// them together; checkers registered as optional can only degrade the
// overall status, so a mail outage never takes downloads out of rotation.
//
//	agg := health.NewAggregator()
//	agg.Register(health.NewRenderChecker("render", svc.Probe))
//	agg.RegisterOptional(health.NewBreakerChecker("mail", breaker))
//	health.Mount(router, agg)
//
// Mount serves /healthz (liveness), /readyz (readiness) and /health (JSON
// detail).
package health
