package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultAPIKeyHeader carries API keys.
const DefaultAPIKeyHeader = "X-API-Key"

// APIKey is a configured key. Key holds the plaintext secret as resolved
// from configuration; only its hash is retained.
type APIKey struct {
	ID        string
	Key       string
	Roles     []string
	ExpiresAt time.Time
}

type storedKey struct {
	id        string
	hash      [sha256.Size]byte
	roles     []string
	expiresAt time.Time
}

// APIKeyAuthenticator validates keys against a fixed set.
type APIKeyAuthenticator struct {
	header string
	keys   []storedKey
	now    func() time.Time
}

var _ Authenticator = (*APIKeyAuthenticator)(nil)

// NewAPIKeyAuthenticator creates an authenticator for keys. header defaults
// to DefaultAPIKeyHeader. Empty keys are rejected.
func NewAPIKeyAuthenticator(header string, keys ...APIKey) (*APIKeyAuthenticator, error) {
	if header == "" {
		header = DefaultAPIKeyHeader
	}
	a := &APIKeyAuthenticator{header: header, now: time.Now}
	for i, k := range keys {
		if strings.TrimSpace(k.Key) == "" {
			return nil, fmt.Errorf("%w: api key %d is empty", ErrInvalidCredentials, i)
		}
		id := k.ID
		if id == "" {
			id = fmt.Sprintf("key-%d", i)
		}
		a.keys = append(a.keys, storedKey{
			id:        id,
			hash:      sha256.Sum256([]byte(k.Key)),
			roles:     k.Roles,
			expiresAt: k.ExpiresAt,
		})
	}
	return a, nil
}

// Name returns "api_key".
func (a *APIKeyAuthenticator) Name() string { return string(MethodAPIKey) }

// Supports reports whether h carries the key header.
func (a *APIKeyAuthenticator) Supports(h http.Header) bool {
	return h.Get(a.header) != ""
}

// Authenticate compares the presented key's hash to every stored hash in
// constant time.
func (a *APIKeyAuthenticator) Authenticate(_ context.Context, h http.Header) (*Identity, error) {
	presented := strings.TrimSpace(h.Get(a.header))
	if presented == "" {
		return nil, ErrMissingCredentials
	}
	sum := sha256.Sum256([]byte(presented))

	var match *storedKey
	for i := range a.keys {
		if subtle.ConstantTimeCompare(sum[:], a.keys[i].hash[:]) == 1 {
			match = &a.keys[i]
		}
	}
	if match == nil {
		return nil, ErrInvalidCredentials
	}
	if !match.expiresAt.IsZero() && a.now().After(match.expiresAt) {
		return nil, fmt.Errorf("%w: api key %s", ErrTokenExpired, match.id)
	}
	return &Identity{
		Principal: match.id,
		Roles:     match.roles,
		Method:    MethodAPIKey,
		ExpiresAt: match.expiresAt,
		Claims:    map[string]any{"key_fingerprint": hex.EncodeToString(sum[:4])},
	}, nil
}
