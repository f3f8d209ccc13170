// Package cache provides content-addressed memoization for rendered documents.
//
// It provides a Cache interface with a TTL- and capacity-bounded memory
// implementation, a generic Keyer contract, and DocumentCache, a
// get-or-render layer that runs at most one render per key at a time.
package cache
