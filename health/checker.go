package health

import (
	"context"
	"time"
)

// Status orders outcomes from best to worst, so the worse of two statuses
// is the larger one.
type Status int

const (
	StatusHealthy Status = iota
	// StatusDegraded still serves traffic, but something needs attention:
	// a busy render pool, a churning cache or a relay being probed.
	StatusDegraded
	// StatusUnhealthy fails readiness when the checker is required.
	StatusUnhealthy
)

var statusNames = [...]string{"healthy", "degraded", "unhealthy"}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "unknown"
	}
	return statusNames[s]
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Result is one checker's verdict. Duration and Timestamp are filled in by
// the Aggregator.
type Result struct {
	Status    Status
	Message   string
	Details   map[string]any
	Error     error
	Duration  time.Duration
	Timestamp time.Time
}

func Healthy(message string) Result { return Result{Status: StatusHealthy, Message: message} }

func Degraded(message string) Result { return Result{Status: StatusDegraded, Message: message} }

func Unhealthy(message string, err error) Result {
	return Result{Status: StatusUnhealthy, Message: message, Error: err}
}

// WithDetails returns r carrying details.
func (r Result) WithDetails(details map[string]any) Result {
	r.Details = details
	return r
}

// Checker probes one dependency. Check must return promptly once ctx ends.
type Checker interface {
	Name() string
	Check(ctx context.Context) Result
}

type funcChecker struct {
	name  string
	check func(context.Context) Result
}

func (f funcChecker) Name() string                     { return f.name }
func (f funcChecker) Check(ctx context.Context) Result { return f.check(ctx) }

// Func turns check into a Checker called name.
func Func(name string, check func(context.Context) Result) Checker {
	return funcChecker{name: name, check: check}
}
