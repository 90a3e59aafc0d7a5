package upstream

import (
	"context"
	"time"

	"github.com/jonwraymond/ensemblops/cache"
	"github.com/jonwraymond/ensemblops/observe"
	"github.com/jonwraymond/ensemblops/resilience"
)

// NewSharedCache creates a MemoryCache for Config.Cache whose evictions are
// logged and counted like those of a client's own cache. Nil logger or
// metrics fall back to no-ops.
func NewSharedCache(maxEntries int, logger observe.Logger, metrics observe.Metrics) *cache.MemoryCache {
	h := newHooks(logger, metrics)
	return cache.NewMemoryCache(cache.MemoryConfig{
		MaxEntries: maxEntries,
		OnEvict:    h.onEvict,
	})
}

// NewSharedRateLimiter creates a RateLimiter for Config.RateLimiter whose
// waits are logged and timed like those of a client's own limiter.
func NewSharedRateLimiter(minInterval time.Duration, logger observe.Logger, metrics observe.Metrics) *resilience.RateLimiter {
	h := newHooks(logger, metrics)
	return resilience.NewRateLimiter(resilience.RateLimiterConfig{
		MinInterval: minInterval,
		OnWait:      h.onWait,
	})
}

func newHooks(logger observe.Logger, metrics observe.Metrics) hooks {
	if logger == nil {
		logger = observe.NopLogger()
	}
	if metrics == nil {
		metrics = observe.NopMetrics()
	}
	return hooks{logger: logger, metrics: metrics}
}

// hooks turns cache, limiter, retry and release events into log entries and
// metrics. Request fields come from the RequestMeta on ctx.
type hooks struct {
	logger  observe.Logger
	metrics observe.Metrics
}

var _ cache.Observer = hooks{}

func requestMeta(ctx context.Context) observe.RequestMeta {
	meta, _ := observe.RequestFromContext(ctx)
	return meta
}

func (h hooks) OnHit(ctx context.Context, key string) {
	h.metrics.RecordCacheHit(ctx, requestMeta(ctx))
	h.logger.Debug(ctx, "cache.hit", observe.F("cache.key", key))
}

func (h hooks) OnMiss(ctx context.Context, key string) {
	h.metrics.RecordCacheMiss(ctx, requestMeta(ctx))
	h.logger.Debug(ctx, "cache.miss", observe.F("cache.key", key))
}

func (h hooks) OnStore(ctx context.Context, key string, size int, ttl time.Duration) {
	h.logger.Debug(ctx, "cache.store",
		observe.F("cache.key", key),
		observe.F("bytes", size),
		observe.F("ttl", ttl),
	)
}

// onEvict runs under the cache lock; it must only log and count.
func (h hooks) onEvict(key string) {
	ctx := context.Background()
	h.metrics.RecordCacheEviction(ctx)
	h.logger.Debug(ctx, "cache.evict", observe.F("cache.key", key))
}

func (h hooks) onWait(ctx context.Context, wait time.Duration) {
	h.metrics.RecordRateLimitWait(ctx, wait)
	h.logger.Debug(ctx, "ratelimit.wait", observe.F("wait", wait))
}

func (h hooks) onRetry(ctx context.Context, attempt int, err error, delay time.Duration) {
	h.metrics.RecordRetry(ctx, requestMeta(ctx), delay)
	h.logger.Warn(ctx, "retry.scheduled",
		observe.F("attempt", attempt),
		observe.F("delay", delay),
		observe.F("error", err),
	)
}

func (h hooks) onReleaseResolved(ctx context.Context, server, version string) {
	h.logger.Info(ctx, "release.resolved",
		observe.F("upstream.server", server),
		observe.F("upstream.release", version),
	)
}

func (h hooks) onReleaseUnknown(ctx context.Context, server string, err error) {
	h.logger.Warn(ctx, "release.unknown",
		observe.F("upstream.server", server),
		observe.F("error", err),
	)
}
