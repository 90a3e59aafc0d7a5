package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/ensemblops/cache"
)

// Pinger reaches the upstream liveness endpoint. *upstream.Client
// satisfies it.
type Pinger interface {
	Server() string
	Ping(ctx context.Context) error
}

// ReleaseSource reports the memoized data release without probing.
type ReleaseSource interface {
	Server() string
	KnownRelease() (string, bool)
}

// CacheSource reports cache counters.
type CacheSource interface {
	CacheStats() cache.Stats
}

// UpstreamChecker is unhealthy while the upstream does not answer pings.
type UpstreamChecker struct {
	upstream Pinger
}

var _ Checker = (*UpstreamChecker)(nil)

// NewUpstreamChecker creates an UpstreamChecker.
func NewUpstreamChecker(p Pinger) *UpstreamChecker {
	return &UpstreamChecker{upstream: p}
}

// Name returns "upstream".
func (c *UpstreamChecker) Name() string { return "upstream" }

// Check pings the upstream.
func (c *UpstreamChecker) Check(ctx context.Context) Result {
	details := map[string]any{"server": c.upstream.Server()}
	if err := c.upstream.Ping(ctx); err != nil {
		return Unhealthy("upstream unreachable", err).WithDetails(details)
	}
	return Healthy("upstream reachable").WithDetails(details)
}

// ReleaseChecker is degraded until a release probe has succeeded.
type ReleaseChecker struct {
	source ReleaseSource
}

var _ Checker = (*ReleaseChecker)(nil)

// NewReleaseChecker creates a ReleaseChecker.
func NewReleaseChecker(s ReleaseSource) *ReleaseChecker {
	return &ReleaseChecker{source: s}
}

// Name returns "release".
func (c *ReleaseChecker) Name() string { return "release" }

// Check reports the memoized release. It never probes the upstream.
func (c *ReleaseChecker) Check(context.Context) Result {
	version, ok := c.source.KnownRelease()
	if !ok {
		return Degraded("release unknown; responses are cached under the unknown scope").
			WithDetails(map[string]any{"server": c.source.Server()})
	}
	return Healthy("release " + version).WithDetails(map[string]any{
		"server":  c.source.Server(),
		"release": version,
	})
}

// CacheCheckerConfig configures a CacheChecker.
type CacheCheckerConfig struct {
	// MinHitRate below which the cache is degraded. Zero disables the floor.
	MinHitRate float64

	// MinLookups before the hit rate is judged. Default: 100
	MinLookups uint64
}

// CacheChecker reports cache occupancy and hit rate.
type CacheChecker struct {
	source CacheSource
	config CacheCheckerConfig
}

var _ Checker = (*CacheChecker)(nil)

// NewCacheChecker creates a CacheChecker.
func NewCacheChecker(s CacheSource, config CacheCheckerConfig) *CacheChecker {
	if config.MinLookups == 0 {
		config.MinLookups = 100
	}
	return &CacheChecker{source: s, config: config}
}

// Name returns "cache".
func (c *CacheChecker) Name() string { return "cache" }

// Check compares the hit rate against the configured floor.
func (c *CacheChecker) Check(context.Context) Result {
	s := c.source.CacheStats()
	details := map[string]any{
		"size":      s.Size,
		"capacity":  s.Capacity,
		"hits":      s.Hits,
		"misses":    s.Misses,
		"evictions": s.Evictions,
		"hit_rate":  s.HitRate,
	}

	lookups := s.Hits + s.Misses
	if c.config.MinHitRate > 0 && lookups >= c.config.MinLookups && s.HitRate < c.config.MinHitRate {
		return Degraded(fmt.Sprintf("hit rate %.2f below %.2f", s.HitRate, c.config.MinHitRate)).
			WithDetails(details)
	}
	return Healthy(fmt.Sprintf("%d/%d entries", s.Size, s.Capacity)).WithDetails(details)
}
