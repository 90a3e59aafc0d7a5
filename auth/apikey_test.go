package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func header(k, v string) http.Header {
	h := http.Header{}
	h.Set(k, v)
	return h
}

func TestAPIKeyAuthenticator(t *testing.T) {
	a, err := NewAPIKeyAuthenticator("",
		APIKey{ID: "ops", Key: "ops-key", Roles: []string{"admin"}},
		APIKey{ID: "old", Key: "old-key", ExpiresAt: time.Now().Add(-time.Hour)},
		APIKey{Key: "anon-key"},
	)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		key       string
		principal string
		wantErr   error
	}{
		{"valid", "ops-key", "ops", nil},
		{"trimmed", "  ops-key ", "ops", nil},
		{"generated id", "anon-key", "key-2", nil},
		{"unknown", "nope", "", ErrInvalidCredentials},
		{"expired", "old-key", "", ErrTokenExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := a.Authenticate(context.Background(), header(DefaultAPIKeyHeader, tt.key))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && (id.Principal != tt.principal || id.Method != MethodAPIKey) {
				t.Errorf("identity = %+v", id)
			}
		})
	}

	if a.Supports(http.Header{}) {
		t.Error("Supports() without header should be false")
	}
	if _, err := a.Authenticate(context.Background(), http.Header{}); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("missing header error = %v", err)
	}
}

func TestAPIKeyAuthenticator_RejectsEmptyKey(t *testing.T) {
	if _, err := NewAPIKeyAuthenticator("", APIKey{ID: "x", Key: " "}); err == nil {
		t.Error("empty key should be rejected")
	}
}

func TestAPIKeyAuthenticator_CustomHeader(t *testing.T) {
	a, _ := NewAPIKeyAuthenticator("X-Admin-Key", APIKey{Key: "k"})
	if !a.Supports(header("X-Admin-Key", "k")) || a.Supports(header(DefaultAPIKeyHeader, "k")) {
		t.Error("Supports() should follow the configured header")
	}
}
