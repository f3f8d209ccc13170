package cache

// Keyer derives deterministic cache keys from values of type T.
//
// Contract:
// - Determinism: logically equal values must produce the same key.
// - Purity: keys must not depend on time, randomness or I/O.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer[T any] interface {
	Key(v T) (string, error)
}

// KeyerFunc adapts a function to the Keyer interface.
type KeyerFunc[T any] func(v T) (string, error)

// Key calls f(v).
func (f KeyerFunc[T]) Key(v T) (string, error) {
	return f(v)
}
