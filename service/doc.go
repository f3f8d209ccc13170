// Package service ties the cover sheet pipeline together.
//
// A Service owns one DocumentCache per output format over a shared
// MemoryCache, a render bulkhead, the token generator and the print shop
// Sender. The HTTP layer and the CLI both drive it.
//
// Renders for cacheable variants are memoized by the canonical record
// key; the stamped variant bypasses the cache because its footer carries
// the render time.
package service
