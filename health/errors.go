package health

import "errors"

var (
	// ErrCheckFailed is attached to unhealthy results that have no more
	// specific cause.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout is attached to results of checks that outlived the
	// aggregator timeout.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckerNotFound indicates a checker was not found.
	ErrCheckerNotFound = errors.New("health: checker not found")
)
