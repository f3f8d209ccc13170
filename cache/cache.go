package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// MaxKeyLength is the maximum allowed length for a cache key.
const MaxKeyLength = 512

// Sentinel errors for cache operations.
var (
	ErrNilCache      = errors.New("cache: cache is nil")
	ErrNilRender     = errors.New("cache: render function is nil")
	ErrNilKeyer      = errors.New("cache: keyer is nil")
	ErrInvalidKey    = errors.New("cache: key is invalid")
	ErrKeyTooLong    = errors.New("cache: key exceeds max length")
	ErrInvalidPolicy = errors.New("cache: policy is invalid")
	ErrCoordination  = errors.New("cache: coordination failed")
	ErrRenderPanic   = errors.New("cache: render panicked")
)

// CoordinationError is returned to a caller that stopped waiting on an
// in-flight render for Key, usually because its context ended. The render
// itself keeps running for the remaining callers.
type CoordinationError struct {
	Key string
	Err error
}

func (e *CoordinationError) Error() string {
	return fmt.Sprintf("cache: waiting on %s: %v", e.Key, e.Err)
}

// Unwrap returns the underlying cause.
func (e *CoordinationError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrCoordination.
func (e *CoordinationError) Is(target error) bool {
	return target == ErrCoordination
}

// Cache is the interface for storing rendered buffers.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Ownership: Set keeps its own copy of value; Get returns a copy the
// caller may modify.
// - Errors: Get should never error; it returns (nil, false) on miss.
type Cache interface {
	// Get retrieves a cached value. Returns (nil, false) on miss or expiry.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores a value with the given TTL. TTL=0 means no caching.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a cached value. Idempotent - no error on miss.
	Delete(ctx context.Context, key string) error
}

// ValidateKey checks if a key is valid for caching.
func ValidateKey(key string) error {
	if key == "" || strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	// Reject keys with newlines or carriage returns
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}
