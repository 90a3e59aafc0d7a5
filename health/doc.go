// Package health reports whether the access layer can serve requests.
//
// Three checkers cover the upstream path:
//
//   - UpstreamChecker pings the upstream liveness endpoint. A failed ping is
//     unhealthy.
//   - ReleaseChecker reports the memoized data release. An unknown release
//     is degraded: requests still work but are cached under "unknown".
//   - CacheChecker reports cache occupancy and hit rate, degrading when the
//     hit rate falls below a floor.
//
// An Aggregator runs checkers concurrently under one deadline, and the HTTP
// handlers expose the results as liveness, readiness and detailed reports:
//
//	agg := health.NewAggregator()
//	agg.Register(health.NewUpstreamChecker(client))
//	agg.Register(health.NewReleaseChecker(client))
//	agg.Register(health.NewCacheChecker(client, health.CacheCheckerConfig{}))
//	health.Mount(router, agg)
package health
