package cache

import (
	"strings"
	"time"
)

// Tier assigns a TTL to every endpoint whose path starts with Prefix.
type Tier struct {
	Name   string
	Prefix string
	TTL    time.Duration
}

// Policy configures caching behavior.
type Policy struct {
	// Tiers are consulted in order; the first matching prefix wins.
	Tiers []Tier

	// DefaultTTL applies to endpoints that match no tier.
	// If zero, unmatched endpoints are not cached.
	DefaultTTL time.Duration

	// MaxTTL is the maximum allowed TTL. Tier TTLs are clamped to this.
	// If zero, no maximum is enforced.
	MaxTTL time.Duration
}

// DefaultTiers returns the built-in tier list. Data that is fixed within a
// release gets a long TTL; annotation data that can change within a release
// gets a short one. Order matters: /info/ping must precede /info/.
func DefaultTiers() []Tier {
	const (
		day    = 24 * time.Hour
		hour   = time.Hour
		minute = time.Minute
	)
	return []Tier{
		{Name: "liveness", Prefix: "/info/ping", TTL: minute},
		{Name: "annotation", Prefix: "/variation/", TTL: hour},
		{Name: "annotation", Prefix: "/vep/", TTL: hour},
		{Name: "annotation", Prefix: "/phenotype/", TTL: hour},
		{Name: "annotation", Prefix: "/ld/", TTL: hour},
		{Name: "release", Prefix: "/lookup/", TTL: day},
		{Name: "release", Prefix: "/sequence/", TTL: day},
		{Name: "release", Prefix: "/overlap/", TTL: day},
		{Name: "release", Prefix: "/map/", TTL: day},
		{Name: "release", Prefix: "/xrefs/", TTL: day},
		{Name: "release", Prefix: "/homology/", TTL: day},
		{Name: "release", Prefix: "/archive/", TTL: day},
		{Name: "release", Prefix: "/info/", TTL: day},
	}
}

// DefaultPolicy returns the default caching policy.
// Tiers: DefaultTiers, DefaultTTL: 6 hours, MaxTTL: 24 hours.
func DefaultPolicy() Policy {
	return Policy{
		Tiers:      DefaultTiers(),
		DefaultTTL: 6 * time.Hour,
		MaxTTL:     24 * time.Hour,
	}
}

// NoCachePolicy returns a policy that disables caching entirely.
func NoCachePolicy() Policy {
	return Policy{}
}

// ShouldCache returns true if caching is enabled for at least one endpoint.
func (p Policy) ShouldCache() bool {
	if p.DefaultTTL > 0 {
		return true
	}
	for _, t := range p.Tiers {
		if t.TTL > 0 {
			return true
		}
	}
	return false
}

// TTLForEndpoint returns the TTL for path using first-match-wins prefix rules.
// Paths without a leading slash are treated as if they had one.
func (p Policy) TTLForEndpoint(path string) time.Duration {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	ttl := p.DefaultTTL
	for _, t := range p.Tiers {
		if strings.HasPrefix(path, t.Prefix) {
			ttl = t.TTL
			break
		}
	}

	return p.EffectiveTTL(ttl)
}

// TierForEndpoint returns the name of the tier that governs path, or "default".
func (p Policy) TierForEndpoint(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	for _, t := range p.Tiers {
		if strings.HasPrefix(path, t.Prefix) {
			return t.Name
		}
	}
	return "default"
}

// EffectiveTTL clamps ttl to MaxTTL. Negative values become zero.
func (p Policy) EffectiveTTL(ttl time.Duration) time.Duration {
	if ttl < 0 {
		return 0
	}
	if p.MaxTTL > 0 && ttl > p.MaxTTL {
		ttl = p.MaxTTL
	}
	return ttl
}
