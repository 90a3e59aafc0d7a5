package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jonwraymond/ensemblops/cache"
	"github.com/jonwraymond/ensemblops/observe"
	"github.com/jonwraymond/ensemblops/resilience"
)

// Config is the complete ensemblops configuration.
type Config struct {
	Upstream  UpstreamConfig  `yaml:"upstream" json:"upstream" toml:"upstream"`
	Cache     CacheConfig     `yaml:"cache" json:"cache" toml:"cache"`
	RateLimit RateLimitConfig `yaml:"ratelimit" json:"ratelimit" toml:"ratelimit"`
	Retry     RetryConfig     `yaml:"retry" json:"retry" toml:"retry"`
	Release   ReleaseConfig   `yaml:"release" json:"release" toml:"release"`
	Batch     BatchConfig     `yaml:"batch" json:"batch" toml:"batch"`
	Observe   ObserveConfig   `yaml:"observe" json:"observe" toml:"observe"`
	Admin     AdminConfig     `yaml:"admin" json:"admin" toml:"admin"`
	Secrets   SecretsConfig   `yaml:"secrets" json:"secrets" toml:"secrets"`
}

// UpstreamConfig locates the REST API.
type UpstreamConfig struct {
	BaseURL   string            `yaml:"base_url" json:"base_url" toml:"base_url"`
	Server    string            `yaml:"server" json:"server" toml:"server"`
	Timeout   Duration          `yaml:"timeout" json:"timeout" toml:"timeout"`
	UserAgent string            `yaml:"user_agent" json:"user_agent" toml:"user_agent"`
	Headers   map[string]string `yaml:"headers" json:"headers" toml:"headers"`
}

// CacheConfig sizes the response cache and its TTL tiers.
type CacheConfig struct {
	MaxEntries int      `yaml:"max_entries" json:"max_entries" toml:"max_entries"`
	DefaultTTL Duration `yaml:"default_ttl" json:"default_ttl" toml:"default_ttl"`
	MaxTTL     Duration `yaml:"max_ttl" json:"max_ttl" toml:"max_ttl"`

	// Tiers replace the built-in tiers when non-empty.
	Tiers []TierConfig `yaml:"tiers" json:"tiers" toml:"tiers"`
}

// TierConfig is one prefix-to-TTL rule.
type TierConfig struct {
	Name   string   `yaml:"name" json:"name" toml:"name"`
	Prefix string   `yaml:"prefix" json:"prefix" toml:"prefix"`
	TTL    Duration `yaml:"ttl" json:"ttl" toml:"ttl"`
}

// RateLimitConfig sets the global request spacing.
type RateLimitConfig struct {
	MinInterval Duration `yaml:"min_interval" json:"min_interval" toml:"min_interval"`
}

// RetryConfig tunes the retry loop.
type RetryConfig struct {
	MaxRetries        int      `yaml:"max_retries" json:"max_retries" toml:"max_retries"`
	BaseDelay         Duration `yaml:"base_delay" json:"base_delay" toml:"base_delay"`
	MaxDelay          Duration `yaml:"max_delay" json:"max_delay" toml:"max_delay"`
	Multiplier        float64  `yaml:"multiplier" json:"multiplier" toml:"multiplier"`
	Jitter            bool     `yaml:"jitter" json:"jitter" toml:"jitter"`
	RetryableStatuses []int    `yaml:"retryable_statuses" json:"retryable_statuses" toml:"retryable_statuses"`
}

// ReleaseConfig tunes release resolution.
type ReleaseConfig struct {
	ProbeEndpoint   string   `yaml:"probe_endpoint" json:"probe_endpoint" toml:"probe_endpoint"`
	FailureCooldown Duration `yaml:"failure_cooldown" json:"failure_cooldown" toml:"failure_cooldown"`
}

// BatchConfig caps batch requests.
type BatchConfig struct {
	ChunkSize int `yaml:"chunk_size" json:"chunk_size" toml:"chunk_size"`
	MaxItems  int `yaml:"max_items" json:"max_items" toml:"max_items"`
}

// ObserveConfig selects logging, tracing and metrics.
type ObserveConfig struct {
	ServiceName string        `yaml:"service_name" json:"service_name" toml:"service_name"`
	Logging     LoggingConfig `yaml:"logging" json:"logging" toml:"logging"`
	Tracing     TracingConfig `yaml:"tracing" json:"tracing" toml:"tracing"`
	Metrics     MetricsConfig `yaml:"metrics" json:"metrics" toml:"metrics"`
}

// LoggingConfig selects the log level and format.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level" toml:"level"`
	Format string `yaml:"format" json:"format" toml:"format"`
}

// TracingConfig selects the span exporter.
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled" json:"enabled" toml:"enabled"`
	Exporter   string  `yaml:"exporter" json:"exporter" toml:"exporter"`
	SampleRate float64 `yaml:"sample_rate" json:"sample_rate" toml:"sample_rate"`
}

// MetricsConfig selects the metrics exporter.
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled" json:"enabled" toml:"enabled"`
	Exporter string `yaml:"exporter" json:"exporter" toml:"exporter"`
}

// AdminConfig configures the admin HTTP server.
type AdminConfig struct {
	Addr            string         `yaml:"addr" json:"addr" toml:"addr"`
	ShutdownTimeout Duration       `yaml:"shutdown_timeout" json:"shutdown_timeout" toml:"shutdown_timeout"`
	APIKeyHeader    string         `yaml:"api_key_header" json:"api_key_header" toml:"api_key_header"`
	APIKeys         []APIKeyConfig `yaml:"api_keys" json:"api_keys" toml:"api_keys"`
	JWT             JWTConfig      `yaml:"jwt" json:"jwt" toml:"jwt"`

	// MinHitRate degrades the cache health check below this rate.
	MinHitRate float64 `yaml:"min_hit_rate" json:"min_hit_rate" toml:"min_hit_rate"`
}

// APIKeyConfig is one admin API key. Key usually holds a secretref.
type APIKeyConfig struct {
	ID    string   `yaml:"id" json:"id" toml:"id"`
	Key   string   `yaml:"key" json:"key" toml:"key"`
	Roles []string `yaml:"roles" json:"roles" toml:"roles"`
}

// JWTConfig enables bearer tokens on the admin server.
type JWTConfig struct {
	Secret   string `yaml:"secret" json:"secret" toml:"secret"`
	Issuer   string `yaml:"issuer" json:"issuer" toml:"issuer"`
	Audience string `yaml:"audience" json:"audience" toml:"audience"`
}

// SecretsConfig configures secret providers by name.
type SecretsConfig struct {
	Strict    bool                      `yaml:"strict" json:"strict" toml:"strict"`
	Providers map[string]map[string]any `yaml:"providers" json:"providers" toml:"providers"`
}

// Default returns the built-in configuration.
func Default() Config {
	policy := cache.DefaultPolicy()
	retry := resilience.NewRetry(resilience.RetryConfig{}).Config()

	return Config{
		Upstream: UpstreamConfig{
			BaseURL:   "https://rest.ensembl.org",
			Timeout:   Duration(30 * time.Second),
			UserAgent: "ensemblops",
		},
		Cache: CacheConfig{
			MaxEntries: cache.DefaultMaxEntries,
			DefaultTTL: Duration(policy.DefaultTTL),
			MaxTTL:     Duration(policy.MaxTTL),
		},
		RateLimit: RateLimitConfig{MinInterval: Duration(resilience.DefaultMinInterval)},
		Retry: RetryConfig{
			MaxRetries:        retry.MaxRetries,
			BaseDelay:         Duration(retry.BaseDelay),
			MaxDelay:          Duration(retry.MaxDelay),
			Multiplier:        retry.Multiplier,
			Jitter:            true,
			RetryableStatuses: append([]int(nil), resilience.DefaultRetryableStatuses...),
		},
		Release: ReleaseConfig{
			ProbeEndpoint:   "/info/data",
			FailureCooldown: Duration(5 * time.Minute),
		},
		Batch: BatchConfig{ChunkSize: 200, MaxItems: 1000},
		Observe: ObserveConfig{
			ServiceName: "ensemblops",
			Logging:     LoggingConfig{Level: "info", Format: "text"},
			Tracing:     TracingConfig{Exporter: "none", SampleRate: 1},
			Metrics:     MetricsConfig{Exporter: "prometheus"},
		},
		Admin: AdminConfig{
			Addr:            "127.0.0.1:8089",
			ShutdownTimeout: Duration(10 * time.Second),
		},
	}
}

// Validate reports every invalid field, joined.
func (c Config) Validate() error {
	var problems []string
	bad := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if u, err := url.Parse(c.Upstream.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		bad("upstream.base_url %q must be an absolute URL", c.Upstream.BaseURL)
	}
	if c.Upstream.Timeout <= 0 {
		bad("upstream.timeout must be positive")
	}
	if c.Cache.MaxEntries <= 0 {
		bad("cache.max_entries must be positive")
	}
	for i, t := range c.Cache.Tiers {
		if !strings.HasPrefix(t.Prefix, "/") {
			bad("cache.tiers[%d].prefix %q must start with /", i, t.Prefix)
		}
		if t.TTL < 0 {
			bad("cache.tiers[%d].ttl must not be negative", i)
		}
	}
	if c.RateLimit.MinInterval < 0 {
		bad("ratelimit.min_interval must not be negative")
	}
	if c.Retry.MaxRetries < 1 {
		bad("retry.max_retries must be at least 1")
	}
	if c.Retry.Multiplier != 0 && c.Retry.Multiplier < 1 {
		bad("retry.multiplier must be at least 1")
	}
	if c.Retry.MaxDelay < c.Retry.BaseDelay {
		bad("retry.max_delay must be at least retry.base_delay")
	}
	for _, s := range c.Retry.RetryableStatuses {
		if s < 400 || s > 599 {
			bad("retry.retryable_statuses: %d is not an error status", s)
		}
	}
	if !strings.HasPrefix(c.Release.ProbeEndpoint, "/") {
		bad("release.probe_endpoint must start with /")
	}
	if c.Batch.ChunkSize <= 0 {
		bad("batch.chunk_size must be positive")
	}
	if c.Batch.MaxItems > 0 && c.Batch.MaxItems < c.Batch.ChunkSize {
		bad("batch.max_items must be at least batch.chunk_size")
	}
	for i, k := range c.Admin.APIKeys {
		if k.Key == "" {
			bad("admin.api_keys[%d].key is empty", i)
		}
	}

	obs := c.ObserveConfig()
	if err := obs.Validate(); err != nil {
		bad("observe: %v", err)
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// CachePolicy returns the TTL policy. Configured tiers replace the
// built-in ones.
func (c Config) CachePolicy() cache.Policy {
	p := cache.Policy{
		Tiers:      cache.DefaultTiers(),
		DefaultTTL: c.Cache.DefaultTTL.D(),
		MaxTTL:     c.Cache.MaxTTL.D(),
	}
	if len(c.Cache.Tiers) > 0 {
		p.Tiers = make([]cache.Tier, 0, len(c.Cache.Tiers))
		for _, t := range c.Cache.Tiers {
			p.Tiers = append(p.Tiers, cache.Tier{Name: t.Name, Prefix: t.Prefix, TTL: t.TTL.D()})
		}
	}
	return p
}

// RetryConfig returns the retry settings.
func (c Config) RetryConfig() resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxRetries: c.Retry.MaxRetries,
		BaseDelay:  c.Retry.BaseDelay.D(),
		MaxDelay:   c.Retry.MaxDelay.D(),
		Multiplier: c.Retry.Multiplier,
		Jitter:     c.Retry.Jitter,
	}
}

// ObserveConfig returns the observer settings. Logging is always enabled.
func (c Config) ObserveConfig() observe.Config {
	return observe.Config{
		ServiceName: c.Observe.ServiceName,
		Version:     Version,
		Server:      c.Upstream.Server,
		Tracing: observe.TracingConfig{
			Enabled:   c.Observe.Tracing.Enabled,
			Exporter:  c.Observe.Tracing.Exporter,
			SamplePct: c.Observe.Tracing.SampleRate,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  c.Observe.Metrics.Enabled,
			Exporter: c.Observe.Metrics.Exporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   c.Observe.Logging.Level,
			Format:  c.Observe.Logging.Format,
		},
	}
}

// Version is the build version, set with -ldflags "-X".
var Version = "dev"
