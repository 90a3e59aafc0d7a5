package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func protected(a Authenticator, role string, anon ...string) http.Handler {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(PrincipalFromContext(r.Context())))
	})
	var h http.Handler = ok
	if role != "" {
		h = RequireRole(role)(h)
	}
	return Middleware(a, anon...)(h)
}

func do(h http.Handler, hdr http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/v1/cache/stats", nil)
	for k, v := range hdr {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware(t *testing.T) {
	a, err := New(Config{
		APIKeys:   []APIKey{{ID: "reader", Key: "r"}, {ID: "ops", Key: "o", Roles: []string{"admin"}}},
		JWTSecret: string(testSecret),
	})
	if err != nil {
		t.Fatal(err)
	}
	token := sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
		"sub":   "alice",
		"exp":   time.Now().Add(time.Hour).Unix(),
		"roles": []string{"admin"},
	})

	tests := []struct {
		name   string
		role   string
		hdr    http.Header
		code   int
		body   string
		wwwHdr bool
	}{
		{"no credentials", "", http.Header{}, http.StatusUnauthorized, "", true},
		{"bad key", "", header(DefaultAPIKeyHeader, "x"), http.StatusUnauthorized, "", true},
		{"key ok", "", header(DefaultAPIKeyHeader, "r"), http.StatusOK, "reader", false},
		{"key lacks role", "admin", header(DefaultAPIKeyHeader, "r"), http.StatusForbidden, "", false},
		{"key has role", "admin", header(DefaultAPIKeyHeader, "o"), http.StatusOK, "ops", false},
		{"jwt has role", "admin", header("Authorization", "Bearer "+token), http.StatusOK, "alice", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(protected(a, tt.role), tt.hdr)
			if rec.Code != tt.code {
				t.Fatalf("code = %d, want %d (%s)", rec.Code, tt.code, rec.Body.String())
			}
			if tt.body != "" && rec.Body.String() != tt.body {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.body)
			}
			if got := rec.Header().Get("WWW-Authenticate") != ""; got != tt.wwwHdr {
				t.Errorf("WWW-Authenticate present = %v", got)
			}
		})
	}
}

func TestMiddleware_Disabled(t *testing.T) {
	a, err := New(Config{})
	if err != nil || a != nil {
		t.Fatalf("New(empty) = %v, %v; want nil, nil", a, err)
	}

	rec := do(protected(nil, "admin", "admin"), http.Header{})
	if rec.Code != http.StatusOK || rec.Body.String() != "anonymous" {
		t.Errorf("disabled auth = %d %q", rec.Code, rec.Body.String())
	}
	if rec := do(protected(nil, "admin"), http.Header{}); rec.Code != http.StatusForbidden {
		t.Errorf("anonymous without roles = %d", rec.Code)
	}
}

func TestComposite(t *testing.T) {
	keys, _ := NewAPIKeyAuthenticator("", APIKey{ID: "k", Key: "k"})
	c := NewComposite(nil, keys)
	if c.Len() != 1 {
		t.Errorf("Len() = %d", c.Len())
	}
	if _, err := NewComposite().Authenticate(t.Context(), http.Header{}); !errors.Is(err, ErrNoAuthenticators) {
		t.Errorf("empty composite error = %v", err)
	}
	if _, err := c.Authenticate(t.Context(), http.Header{}); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("no credential error = %v", err)
	}
}

func TestNew_Errors(t *testing.T) {
	if _, err := New(Config{JWTSecret: "short"}); !errors.Is(err, ErrWeakSecret) {
		t.Errorf("weak secret error = %v", err)
	}
	if _, err := New(Config{APIKeys: []APIKey{{Key: ""}}}); err == nil {
		t.Error("empty key should fail")
	}
}
