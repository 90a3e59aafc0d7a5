package cache

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// FetchFunc performs the upstream call on a cache miss.
type FetchFunc func(ctx context.Context) ([]byte, error)

// SkipRule determines whether to bypass the cache for a request.
// Returns true if caching should be skipped.
type SkipRule func(method, endpoint string) bool

// CacheableMethods are the HTTP methods whose responses may be cached.
// POST bodies can be large and are not part of the key, so POST is excluded.
var CacheableMethods = []string{http.MethodGet, http.MethodHead}

// DefaultSkipRule skips caching for methods outside CacheableMethods.
// Method matching is case-insensitive.
func DefaultSkipRule(method, _ string) bool {
	for _, m := range CacheableMethods {
		if strings.EqualFold(method, m) {
			return false
		}
	}
	return true
}

// Observer receives cache lifecycle events. It is observational only.
type Observer interface {
	OnHit(ctx context.Context, key string)
	OnMiss(ctx context.Context, key string)
	OnStore(ctx context.Context, key string, size int, ttl time.Duration)
}

type noopObserver struct{}

func (noopObserver) OnHit(context.Context, string)                       {}
func (noopObserver) OnMiss(context.Context, string)                      {}
func (noopObserver) OnStore(context.Context, string, int, time.Duration) {}

// Middleware puts a Cache on the request path.
type Middleware struct {
	cache    Cache
	policy   Policy
	skipRule SkipRule
	observer Observer
}

// NewMiddleware creates a new cache middleware.
// If skipRule is nil, DefaultSkipRule is used. If observer is nil, events are
// discarded.
func NewMiddleware(cache Cache, policy Policy, skipRule SkipRule, observer Observer) *Middleware {
	if skipRule == nil {
		skipRule = DefaultSkipRule
	}
	if observer == nil {
		observer = noopObserver{}
	}
	return &Middleware{
		cache:    cache,
		policy:   policy,
		skipRule: skipRule,
		observer: observer,
	}
}

// Policy returns the middleware's TTL policy.
func (m *Middleware) Policy() Policy {
	return m.policy
}

// Execute serves key from the cache or calls fetch and stores its result with
// the TTL of endpoint's tier.
// On cache hit, returns the cached result without calling fetch.
// Errors are NOT cached.
func (m *Middleware) Execute(
	ctx context.Context,
	method string,
	endpoint string,
	key string,
	fetch FetchFunc,
) ([]byte, error) {
	if m.cache == nil || m.skipRule(method, endpoint) {
		return fetch(ctx)
	}

	ttl := m.policy.TTLForEndpoint(endpoint)
	if ttl <= 0 {
		return fetch(ctx)
	}

	// Unusable key - execute without caching
	if err := ValidateKey(key); err != nil {
		return fetch(ctx)
	}

	if cached, ok := m.cache.Get(ctx, key); ok {
		m.observer.OnHit(ctx, key)
		return cached, nil
	}
	m.observer.OnMiss(ctx, key)

	result, err := fetch(ctx)
	if err != nil {
		return result, err
	}

	if err := m.cache.Set(ctx, key, result, ttl); err == nil {
		m.observer.OnStore(ctx, key, len(result), ttl)
	}

	return result, nil
}
