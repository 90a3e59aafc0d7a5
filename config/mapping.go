package config

import (
	"github.com/jonwraymond/ensemblops/auth"
	"github.com/jonwraymond/ensemblops/upstream"
)

// ClientConfig returns the upstream client settings. Logger, Metrics,
// Tracer and shared Cache or RateLimiter are left for the caller to wire.
func (c Config) ClientConfig() upstream.Config {
	policy := c.CachePolicy()
	return upstream.Config{
		BaseURL:           c.Upstream.BaseURL,
		Server:            c.Upstream.Server,
		Timeout:           c.Upstream.Timeout.D(),
		Headers:           c.Upstream.Headers,
		UserAgent:         c.Upstream.UserAgent,
		CacheEntries:      c.Cache.MaxEntries,
		Policy:            &policy,
		MinInterval:       c.RateLimit.MinInterval.D(),
		Retry:             c.RetryConfig(),
		RetryableStatuses: c.Retry.RetryableStatuses,
		ReleaseEndpoint:   c.Release.ProbeEndpoint,
		ReleaseCooldown:   c.Release.FailureCooldown.D(),
		ChunkSize:         c.Batch.ChunkSize,
		MaxBatchItems:     c.Batch.MaxItems,
	}
}

// AuthConfig returns the admin authentication settings. Every configured
// key without roles is granted the admin role.
func (c Config) AuthConfig() auth.Config {
	keys := make([]auth.APIKey, 0, len(c.Admin.APIKeys))
	for _, k := range c.Admin.APIKeys {
		roles := k.Roles
		if len(roles) == 0 {
			roles = []string{"admin"}
		}
		keys = append(keys, auth.APIKey{ID: k.ID, Key: k.Key, Roles: roles})
	}
	return auth.Config{
		APIKeys:      keys,
		APIKeyHeader: c.Admin.APIKeyHeader,
		JWTSecret:    c.Admin.JWT.Secret,
		JWTIssuer:    c.Admin.JWT.Issuer,
		JWTAudience:  c.Admin.JWT.Audience,
	}
}
