package cache_test

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/ensemblops/cache"
)

func ExampleNewMemoryCache() {
	c := cache.NewMemoryCache(cache.MemoryConfig{MaxEntries: 100})
	ctx := context.Background()

	_ = c.Set(ctx, "my-key", []byte("hello"), 5*time.Minute)

	value, ok := c.Get(ctx, "my-key")
	if ok {
		fmt.Println("Value:", string(value))
	}
	// Output:
	// Value: hello
}

func ExampleBuildKey() {
	scope := cache.Scope{Server: "grch38", Release: "115"}
	key := cache.ScopedKey(scope, "/lookup/symbol/homo_sapiens/BRAF", map[string]string{
		"expand": "1",
		"format": "",
	})
	fmt.Println(key)
	// Output:
	// grch38@115:/lookup/symbol/homo_sapiens/BRAF?expand=1
}

func ExamplePolicy_TTLForEndpoint() {
	p := cache.DefaultPolicy()
	fmt.Println(p.TTLForEndpoint("/lookup/id/ENSG00000157764"))
	fmt.Println(p.TTLForEndpoint("/variation/human/rs56116432"))
	// Output:
	// 24h0m0s
	// 1h0m0s
}
