// Package cache provides the response cache for upstream calls.
//
// It provides a Cache interface with a bounded TTL+LRU memory implementation,
// scope-prefixed canonical key derivation, per-endpoint TTL tiers, and a
// middleware that puts the cache on the request path.
package cache
