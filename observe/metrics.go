package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names recorded by Metrics.
const (
	MetricRequestsTotal   = "upstream.requests.total"
	MetricRequestErrors   = "upstream.requests.errors"
	MetricRequestDuration = "upstream.request.duration_ms"
	MetricCacheHits       = "upstream.cache.hits"
	MetricCacheMisses     = "upstream.cache.misses"
	MetricCacheEvictions  = "upstream.cache.evictions"
	MetricRetries         = "upstream.retries"
	MetricRateLimitWait   = "upstream.ratelimit.wait_ms"
)

// Metrics records access-layer metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordRequest records one logical request with duration and error status.
	RecordRequest(ctx context.Context, meta RequestMeta, duration time.Duration, err error)

	// RecordCacheHit records a cache hit for the request.
	RecordCacheHit(ctx context.Context, meta RequestMeta)

	// RecordCacheMiss records a cache miss for the request.
	RecordCacheMiss(ctx context.Context, meta RequestMeta)

	// RecordCacheEviction records an LRU eviction.
	RecordCacheEviction(ctx context.Context)

	// RecordRetry records a scheduled retry and its delay.
	RecordRetry(ctx context.Context, meta RequestMeta, delay time.Duration)

	// RecordRateLimitWait records time spent waiting on the rate limiter.
	RecordRateLimitWait(ctx context.Context, wait time.Duration)
}

// metricsImpl is the OpenTelemetry implementation of Metrics.
type metricsImpl struct {
	totalCount    metric.Int64Counter
	errorCount    metric.Int64Counter
	durationHist  metric.Float64Histogram
	cacheHits     metric.Int64Counter
	cacheMisses   metric.Int64Counter
	cacheEvicts   metric.Int64Counter
	retries       metric.Int64Counter
	rateLimitWait metric.Float64Histogram
}

// NewMetrics creates Metrics backed by meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	return newMetrics(meter)
}

func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	m := &metricsImpl{}
	var err error

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
		unit string
	}{
		{&m.totalCount, MetricRequestsTotal, "Total number of logical upstream requests", "{request}"},
		{&m.errorCount, MetricRequestErrors, "Total number of failed logical upstream requests", "{error}"},
		{&m.cacheHits, MetricCacheHits, "Response cache hits", "{hit}"},
		{&m.cacheMisses, MetricCacheMisses, "Response cache misses", "{miss}"},
		{&m.cacheEvicts, MetricCacheEvictions, "Response cache LRU evictions", "{eviction}"},
		{&m.retries, MetricRetries, "Scheduled upstream retries", "{retry}"},
	}
	for _, c := range counters {
		*c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit(c.unit))
		if err != nil {
			return nil, err
		}
	}

	m.durationHist, err = meter.Float64Histogram(
		MetricRequestDuration,
		metric.WithDescription("Logical upstream request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	m.rateLimitWait, err = meter.Float64Histogram(
		MetricRateLimitWait,
		metric.WithDescription("Time spent waiting on the rate limiter in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func requestAttributes(meta RequestMeta) metric.MeasurementOption {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", meta.Method),
		attribute.String("upstream.route", meta.Route()),
	}
	if meta.Server != "" {
		attrs = append(attrs, attribute.String("upstream.server", meta.Server))
	}
	return metric.WithAttributes(attrs...)
}

func (m *metricsImpl) RecordRequest(ctx context.Context, meta RequestMeta, duration time.Duration, err error) {
	opt := requestAttributes(meta)

	m.totalCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

func (m *metricsImpl) RecordCacheHit(ctx context.Context, meta RequestMeta) {
	m.cacheHits.Add(ctx, 1, requestAttributes(meta))
}

func (m *metricsImpl) RecordCacheMiss(ctx context.Context, meta RequestMeta) {
	m.cacheMisses.Add(ctx, 1, requestAttributes(meta))
}

func (m *metricsImpl) RecordCacheEviction(ctx context.Context) {
	m.cacheEvicts.Add(ctx, 1)
}

func (m *metricsImpl) RecordRetry(ctx context.Context, meta RequestMeta, delay time.Duration) {
	m.retries.Add(ctx, 1, requestAttributes(meta))
}

func (m *metricsImpl) RecordRateLimitWait(ctx context.Context, wait time.Duration) {
	m.rateLimitWait.Record(ctx, float64(wait.Microseconds())/1000)
}

// NopMetrics returns a Metrics that records nothing.
func NopMetrics() Metrics {
	return noopMetrics{}
}

type noopMetrics struct{}

func (noopMetrics) RecordRequest(context.Context, RequestMeta, time.Duration, error) {}
func (noopMetrics) RecordCacheHit(context.Context, RequestMeta)                      {}
func (noopMetrics) RecordCacheMiss(context.Context, RequestMeta)                     {}
func (noopMetrics) RecordCacheEviction(context.Context)                              {}
func (noopMetrics) RecordRetry(context.Context, RequestMeta, time.Duration)          {}
func (noopMetrics) RecordRateLimitWait(context.Context, time.Duration)               {}
