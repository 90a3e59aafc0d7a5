package observe

import (
	"context"
	"errors"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func sumOf(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	m := findMetric(rm, name)
	if m == nil {
		return 0
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("%s: expected Sum[int64], got %T", name, m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func newTestMetrics(t *testing.T) (Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() = %v", err)
	}
	return m, reader
}

func TestMetrics_Requests(t *testing.T) {
	m, reader := newTestMetrics(t)
	meta := RequestMeta{Method: "GET", Endpoint: "/lookup/id/ENSG1", Server: "grch38"}

	m.RecordRequest(context.Background(), meta, 120*time.Millisecond, nil)
	m.RecordRequest(context.Background(), meta, 80*time.Millisecond, errors.New("404"))

	rm := collect(t, reader)
	if got := sumOf(t, rm, MetricRequestsTotal); got != 2 {
		t.Errorf("%s = %d, want 2", MetricRequestsTotal, got)
	}
	if got := sumOf(t, rm, MetricRequestErrors); got != 1 {
		t.Errorf("%s = %d, want 1", MetricRequestErrors, got)
	}

	hist := findMetric(rm, MetricRequestDuration)
	if hist == nil {
		t.Fatalf("%s not found", MetricRequestDuration)
	}
	data, ok := hist.Data.(metricdata.Histogram[float64])
	if !ok || len(data.DataPoints) != 1 || data.DataPoints[0].Count != 2 {
		t.Errorf("duration histogram = %+v", hist.Data)
	}
}

func TestMetrics_CacheRetryRateLimit(t *testing.T) {
	m, reader := newTestMetrics(t)
	meta := RequestMeta{Method: "GET", Endpoint: "/info/ping"}
	ctx := context.Background()

	m.RecordCacheHit(ctx, meta)
	m.RecordCacheHit(ctx, meta)
	m.RecordCacheMiss(ctx, meta)
	m.RecordCacheEviction(ctx)
	m.RecordRetry(ctx, meta, time.Second)
	m.RecordRateLimitWait(ctx, 67*time.Millisecond)

	rm := collect(t, reader)
	checks := map[string]int64{
		MetricCacheHits:      2,
		MetricCacheMisses:    1,
		MetricCacheEvictions: 1,
		MetricRetries:        1,
	}
	for name, want := range checks {
		if got := sumOf(t, rm, name); got != want {
			t.Errorf("%s = %d, want %d", name, got, want)
		}
	}
	if findMetric(rm, MetricRateLimitWait) == nil {
		t.Errorf("%s not recorded", MetricRateLimitWait)
	}
}

func TestNopMetrics_NoPanic(t *testing.T) {
	m := NopMetrics()
	ctx := context.Background()
	m.RecordRequest(ctx, RequestMeta{}, time.Millisecond, nil)
	m.RecordCacheHit(ctx, RequestMeta{})
	m.RecordCacheMiss(ctx, RequestMeta{})
	m.RecordCacheEviction(ctx)
	m.RecordRetry(ctx, RequestMeta{}, time.Millisecond)
	m.RecordRateLimitWait(ctx, time.Millisecond)
}
