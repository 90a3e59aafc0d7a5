// Package upstream is the resilient access layer in front of the
// release-versioned genomics REST API.
//
// A Client owns its response cache, rate limiter, retry policy and release
// resolver. A logical GET request flows through them in order:
//
//  1. the release of the configured server is resolved (probed once, then memoized)
//  2. a cache key is built from {server, release, endpoint, sorted params}
//  3. a cache hit returns at once
//  4. a miss passes through the rate limiter and the retrying executor
//  5. a success is stored with the TTL of the endpoint's tier
//
// POST requests skip the cache. Batch helpers split identifier lists into
// upstream-sized chunks and merge the results.
//
// Failures are returned as *enrich.EnrichedError for permanent upstream
// statuses and as *resilience.ExhaustedError (wrapping the last enriched
// failure) when the retry budget runs out.
package upstream
