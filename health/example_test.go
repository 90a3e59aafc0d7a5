package health_test

import (
	"context"
	"fmt"

	"github.com/jonwraymond/ensemblops/cache"
	"github.com/jonwraymond/ensemblops/health"
)

type staticRelease struct{}

func (staticRelease) Server() string               { return "grch38" }
func (staticRelease) KnownRelease() (string, bool) { return "", false }

type staticCache struct{}

func (staticCache) CacheStats() cache.Stats { return cache.Stats{Size: 12, Capacity: 1000} }

func ExampleAggregator() {
	agg := health.NewAggregator()
	agg.Register(health.NewReleaseChecker(staticRelease{}))
	agg.Register(health.NewCacheChecker(staticCache{}, health.CacheCheckerConfig{}))

	results := agg.CheckAll(context.Background())
	fmt.Println(results["release"].Status)
	fmt.Println(results["cache"].Message)
	fmt.Println(health.OverallStatus(results))
	// Output:
	// degraded
	// 12/1000 entries
	// degraded
}
