package auth

import (
	"context"
	"net/http"
	"slices"
	"time"
)

// Method indicates how a caller was authenticated.
type Method string

const (
	MethodAPIKey    Method = "api_key"
	MethodJWT       Method = "jwt"
	MethodAnonymous Method = "anonymous"
)

// Identity is an authenticated caller.
type Identity struct {
	Principal string
	Roles     []string
	Method    Method
	ExpiresAt time.Time
	Claims    map[string]any
}

// HasRole reports whether the identity holds role.
func (id *Identity) HasRole(role string) bool {
	return id != nil && slices.Contains(id.Roles, role)
}

// Anonymous returns the identity used when authentication is disabled.
// Passing roles keeps role-gated routes reachable in that mode.
func Anonymous(roles ...string) *Identity {
	return &Identity{Principal: "anonymous", Method: MethodAnonymous, Roles: roles}
}

// Authenticator validates request credentials.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Errors: a rejected credential returns (nil, err) wrapping one of the
//     sentinels; Supports reports whether the request carries a credential
//     this authenticator understands.
type Authenticator interface {
	Name() string
	Supports(h http.Header) bool
	Authenticate(ctx context.Context, h http.Header) (*Identity, error)
}

// Composite tries each authenticator that supports the request, in order,
// and returns the first identity.
type Composite struct {
	authenticators []Authenticator
}

var _ Authenticator = (*Composite)(nil)

// NewComposite creates a Composite. Nil authenticators are skipped.
func NewComposite(auths ...Authenticator) *Composite {
	c := &Composite{}
	for _, a := range auths {
		if a != nil {
			c.authenticators = append(c.authenticators, a)
		}
	}
	return c
}

// Name returns "composite".
func (c *Composite) Name() string { return "composite" }

// Len returns the number of authenticators.
func (c *Composite) Len() int { return len(c.authenticators) }

// Supports reports whether any authenticator supports h.
func (c *Composite) Supports(h http.Header) bool {
	return slices.ContainsFunc(c.authenticators, func(a Authenticator) bool { return a.Supports(h) })
}

// Authenticate returns the first success. If none succeeds it returns the
// last rejection, or ErrMissingCredentials when no authenticator applied.
func (c *Composite) Authenticate(ctx context.Context, h http.Header) (*Identity, error) {
	if len(c.authenticators) == 0 {
		return nil, ErrNoAuthenticators
	}
	last := ErrMissingCredentials
	for _, a := range c.authenticators {
		if !a.Supports(h) {
			continue
		}
		id, err := a.Authenticate(ctx, h)
		if err == nil {
			return id, nil
		}
		last = err
	}
	return nil, last
}
