package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonwraymond/ensemblops/batch"
	"github.com/jonwraymond/ensemblops/cache"
	"github.com/jonwraymond/ensemblops/enrich"
	"github.com/jonwraymond/ensemblops/observe"
	"github.com/jonwraymond/ensemblops/release"
	"github.com/jonwraymond/ensemblops/resilience"
)

const (
	// DefaultBaseURL is the public GRCh38 REST endpoint.
	DefaultBaseURL = "https://rest.ensembl.org"

	// DefaultUserAgent identifies the client to the upstream.
	DefaultUserAgent = "ensemblops"

	// DefaultReleaseEndpoint reports the current data release.
	DefaultReleaseEndpoint = "/info/data"

	// PingEndpoint is the upstream liveness probe.
	PingEndpoint = "/info/ping"

	// MaxResponseBytes bounds a single response body.
	MaxResponseBytes = 64 << 20
)

// Config configures a Client. Zero values take the defaults noted per field.
type Config struct {
	// BaseURL of the upstream. Default: DefaultBaseURL
	BaseURL string

	// Server names the upstream for cache scoping, e.g. "grch38".
	// Default: the BaseURL host
	Server string

	// Timeout bounds each attempt. Default: 30s
	Timeout time.Duration

	// Headers are added to every request.
	Headers map[string]string

	// UserAgent header value. Default: DefaultUserAgent
	UserAgent string

	// HTTPClient performs requests. Default: a client with no overall
	// timeout; attempts are bounded by Timeout.
	HTTPClient *http.Client

	// Cache stores responses. A cache may be shared by clients of different
	// servers; build it with NewSharedCache so evictions are observed.
	// Default: a MemoryCache with CacheEntries entries.
	Cache *cache.MemoryCache

	// CacheEntries sizes the default cache. Default: 1000
	CacheEntries int

	// Policy assigns TTLs per endpoint. Default: cache.DefaultPolicy()
	Policy *cache.Policy

	// RateLimiter gates every attempt. Share one limiter across clients that
	// hit the same upstream; build it with NewSharedRateLimiter so waits are
	// observed. Default: a limiter with MinInterval.
	RateLimiter *resilience.RateLimiter

	// MinInterval sizes the default limiter. Default: 67ms
	MinInterval time.Duration

	// Retry configures the retry loop. OnRetry, if set, runs after the
	// client's own logging hook.
	Retry resilience.RetryConfig

	// RetryableStatuses are retried. Default: resilience.DefaultRetryableStatuses
	RetryableStatuses []int

	// ReleaseEndpoint is probed to resolve the release. Default: /info/data
	ReleaseEndpoint string

	// ReleaseCooldown is how long a failed release probe is remembered.
	// Default: 5m
	ReleaseCooldown time.Duration

	// ChunkSize caps identifiers per batch POST. Default: 200
	ChunkSize int

	// MaxBatchItems caps identifiers per logical batch. Default: 1000
	MaxBatchItems int

	// Logger receives lifecycle events. Default: no-op
	Logger observe.Logger

	// Metrics records counters and latencies. Default: no-op
	Metrics observe.Metrics

	// Tracer creates a span per logical request. Default: no-op
	Tracer observe.Tracer
}

// Client is the resilient access layer for one upstream server.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Ordering: attempts start at least the limiter's interval apart,
//     process-wide for clients sharing a limiter.
//   - Errors: permanent failures return *enrich.EnrichedError; exhausted
//     retries return *resilience.ExhaustedError.
type Client struct {
	config    Config
	baseURL   *url.URL
	http      *http.Client
	cache     *cache.MemoryCache
	cacheMW   *cache.Middleware
	limiter   *resilience.RateLimiter
	executor  *resilience.Executor
	resolver  *release.Resolver
	retryable resilience.StatusSet
	mw        *observe.Middleware
	logger    observe.Logger
	metrics   observe.Metrics
}

// New creates a Client.
func New(config Config) (*Client, error) {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(config.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("upstream: invalid base url %q", config.BaseURL)
	}
	if config.Server == "" {
		config.Server = base.Host
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{}
	}
	if config.Policy == nil {
		p := cache.DefaultPolicy()
		config.Policy = &p
	}
	if len(config.RetryableStatuses) == 0 {
		config.RetryableStatuses = resilience.DefaultRetryableStatuses
	}
	if config.ReleaseEndpoint == "" {
		config.ReleaseEndpoint = DefaultReleaseEndpoint
	}
	if config.ChunkSize <= 0 {
		config.ChunkSize = batch.DefaultChunkSize
	}
	if config.MaxBatchItems <= 0 {
		config.MaxBatchItems = batch.DefaultMaxItems
	}
	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}
	if config.Metrics == nil {
		config.Metrics = observe.NopMetrics()
	}
	if config.Tracer == nil {
		config.Tracer = observe.NopTracer()
	}

	c := &Client{
		config:    config,
		baseURL:   base,
		http:      config.HTTPClient,
		retryable: resilience.NewStatusSet(config.RetryableStatuses...),
		logger:    config.Logger,
		metrics:   config.Metrics,
	}
	h := newHooks(c.logger, c.metrics)

	c.cache = config.Cache
	if c.cache == nil {
		c.cache = cache.NewMemoryCache(cache.MemoryConfig{
			MaxEntries: config.CacheEntries,
			OnEvict:    h.onEvict,
		})
	}
	c.cacheMW = cache.NewMiddleware(c.cache, *config.Policy, nil, h)

	c.limiter = config.RateLimiter
	if c.limiter == nil {
		c.limiter = resilience.NewRateLimiter(resilience.RateLimiterConfig{
			MinInterval: config.MinInterval,
			OnWait:      h.onWait,
		})
	}

	retryCfg := config.Retry
	userOnRetry := retryCfg.OnRetry
	retryCfg.OnRetry = func(ctx context.Context, attempt int, err error, delay time.Duration) {
		h.onRetry(ctx, attempt, err, delay)
		if userOnRetry != nil {
			userOnRetry(ctx, attempt, err, delay)
		}
	}

	c.executor = resilience.NewExecutor(
		resilience.WithRetry(resilience.NewRetry(retryCfg)),
		resilience.WithRateLimiter(c.limiter),
		resilience.WithTimeout(config.Timeout),
	)

	c.resolver, err = release.New(release.Config{
		Probe:             c.probeRelease,
		RetryAfterFailure: config.ReleaseCooldown,
		OnResolved:        h.onReleaseResolved,
		OnUnknown:         h.onReleaseUnknown,
	})
	if err != nil {
		return nil, err
	}

	c.mw = observe.NewMiddleware(config.Tracer, c.metrics, c.logger)
	return c, nil
}

// Server returns the server name used for cache scoping.
func (c *Client) Server() string {
	return c.config.Server
}

// Request performs a cached, rate-limited, retried GET.
func (c *Client) Request(ctx context.Context, endpoint string, params map[string]string) (json.RawMessage, error) {
	endpoint, err := normalizeEndpoint(endpoint)
	if err != nil {
		return nil, err
	}

	version := c.Release(ctx)
	scope := cache.Scope{Server: c.config.Server, Release: version}
	meta := observe.RequestMeta{
		Method:   http.MethodGet,
		Endpoint: endpoint,
		Server:   c.config.Server,
		Release:  version,
	}

	out, err := c.mw.Wrap(func(ctx context.Context, meta observe.RequestMeta) ([]byte, error) {
		key := cache.ScopedKey(scope, endpoint, params)
		return c.cacheMW.Execute(ctx, http.MethodGet, endpoint, key, func(ctx context.Context) ([]byte, error) {
			return c.execute(ctx, http.MethodGet, endpoint, params, nil)
		})
	})(ctx, meta)
	return json.RawMessage(out), err
}

// RequestPost performs a rate-limited, retried POST of body encoded as JSON.
// POST responses are never cached.
func (c *Client) RequestPost(ctx context.Context, endpoint string, body any, params map[string]string) (json.RawMessage, error) {
	endpoint, err := normalizeEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodeBody, err)
	}

	meta := observe.RequestMeta{
		Method:   http.MethodPost,
		Endpoint: endpoint,
		Server:   c.config.Server,
	}
	if version, ok := c.resolver.Known(c.config.Server); ok {
		meta.Release = version
	}

	out, err := c.mw.Wrap(func(ctx context.Context, meta observe.RequestMeta) ([]byte, error) {
		return c.execute(ctx, http.MethodPost, endpoint, params, payload)
	})(ctx, meta)
	return json.RawMessage(out), err
}

// Ping checks upstream liveness, bypassing the cache.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.execute(ctx, http.MethodGet, PingEndpoint, nil, nil)
	return err
}

// Release returns the server's current release, or release.Unknown.
func (c *Client) Release(ctx context.Context) string {
	return c.resolver.Resolve(ctx, c.config.Server)
}

// KnownRelease returns the release if a probe has succeeded.
func (c *Client) KnownRelease() (string, bool) {
	return c.resolver.Known(c.config.Server)
}

// ForgetRelease drops the memoized release so the next request probes again.
// Entries cached under the old release stay until they expire or are evicted.
func (c *Client) ForgetRelease() {
	c.resolver.Forget(c.config.Server)
}

// ClearCache removes every cached response.
func (c *Client) ClearCache() {
	c.cache.Clear()
	c.logger.Info(context.Background(), "cache.clear", observe.F("upstream.server", c.config.Server))
}

// CacheStats returns a snapshot of the cache counters.
func (c *Client) CacheStats() cache.Stats {
	return c.cache.Stats()
}

func (c *Client) probeRelease(ctx context.Context, _ string) (string, error) {
	body, err := c.execute(ctx, http.MethodGet, c.config.ReleaseEndpoint, nil, nil)
	if err != nil {
		return "", err
	}
	return release.ParseVersion(body)
}

// execute runs one logical call through the limiter, retry and timeout.
func (c *Client) execute(ctx context.Context, method, endpoint string, params map[string]string, payload []byte) ([]byte, error) {
	return resilience.Do(ctx, c.executor, func(ctx context.Context) ([]byte, error) {
		return c.attempt(ctx, method, endpoint, params, payload)
	})
}

// attempt performs a single HTTP exchange and classifies its outcome.
func (c *Client) attempt(ctx context.Context, method, endpoint string, params map[string]string, payload []byte) ([]byte, error) {
	target := c.url(endpoint, params)

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.config.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, resilience.Retryable(fmt.Errorf("%w: %w", ErrNetwork, err), 0)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes+1))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, resilience.Retryable(fmt.Errorf("%w: read body: %w", ErrNetwork, err), 0)
	}
	if len(body) > MaxResponseBytes {
		return nil, fmt.Errorf("%w: %s", ErrResponseTooLarge, endpoint)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	enriched := enrich.Enrich(resp.StatusCode, http.StatusText(resp.StatusCode), withQuery(endpoint, params), body)
	if c.retryable.Contains(resp.StatusCode) {
		hint := resilience.ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
		return nil, resilience.Retryable(enriched, hint)
	}
	return nil, enriched
}

func (c *Client) url(endpoint string, params map[string]string) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + endpoint
	u.RawQuery = encodeParams(params)
	return u.String()
}

// encodeParams sorts names and drops empty values, matching cache keys.
func encodeParams(params map[string]string) string {
	q := url.Values{}
	for k, v := range params {
		if k == "" || v == "" {
			continue
		}
		q.Set(k, v)
	}
	return q.Encode()
}

func withQuery(endpoint string, params map[string]string) string {
	if q := encodeParams(params); q != "" {
		return endpoint + "?" + q
	}
	return endpoint
}

// normalizeEndpoint ensures a single leading slash and rejects paths that
// carry a query or are empty.
func normalizeEndpoint(endpoint string) (string, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" || endpoint == "/" {
		return "", fmt.Errorf("%w: empty", ErrInvalidEndpoint)
	}
	if strings.ContainsAny(endpoint, "?#\n\r") {
		return "", fmt.Errorf("%w: %q: pass parameters separately", ErrInvalidEndpoint, endpoint)
	}
	if strings.Contains(endpoint, "://") {
		return "", fmt.Errorf("%w: %q: must be a path", ErrInvalidEndpoint, endpoint)
	}
	return "/" + strings.TrimLeft(endpoint, "/"), nil
}
