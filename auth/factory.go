package auth

import (
	"time"
)

// Config selects the admin authenticators.
type Config struct {
	// APIKeys are accepted in APIKeyHeader.
	APIKeys []APIKey

	// APIKeyHeader. Default: DefaultAPIKeyHeader
	APIKeyHeader string

	// JWTSecret enables bearer tokens when set.
	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	JWTLeeway   time.Duration
}

// Enabled reports whether any credential is configured.
func (c Config) Enabled() bool {
	return len(c.APIKeys) > 0 || c.JWTSecret != ""
}

// New builds the authenticator described by c. It returns nil, nil when
// nothing is configured, which Middleware treats as disabled.
func New(c Config) (Authenticator, error) {
	if !c.Enabled() {
		return nil, nil
	}

	var auths []Authenticator
	if len(c.APIKeys) > 0 {
		a, err := NewAPIKeyAuthenticator(c.APIKeyHeader, c.APIKeys...)
		if err != nil {
			return nil, err
		}
		auths = append(auths, a)
	}
	if c.JWTSecret != "" {
		a, err := NewJWTAuthenticator(JWTConfig{
			Secret:   []byte(c.JWTSecret),
			Issuer:   c.JWTIssuer,
			Audience: c.JWTAudience,
			Leeway:   c.JWTLeeway,
		})
		if err != nil {
			return nil, err
		}
		auths = append(auths, a)
	}
	return NewComposite(auths...), nil
}
