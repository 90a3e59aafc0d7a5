package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestNewJWTAuthenticator_WeakSecret(t *testing.T) {
	if _, err := NewJWTAuthenticator(JWTConfig{Secret: []byte("short")}); !errors.Is(err, ErrWeakSecret) {
		t.Errorf("error = %v, want ErrWeakSecret", err)
	}
}

func TestJWTAuthenticator(t *testing.T) {
	a, err := NewJWTAuthenticator(JWTConfig{Secret: testSecret, Issuer: "ops", Audience: "ensemblops"})
	if err != nil {
		t.Fatal(err)
	}
	now := time.Now()
	valid := jwt.MapClaims{
		"sub":   "alice",
		"iss":   "ops",
		"aud":   []string{"ensemblops"},
		"exp":   now.Add(time.Hour).Unix(),
		"roles": []string{"admin", "reader"},
	}
	with := func(k string, v any) jwt.MapClaims {
		c := jwt.MapClaims{}
		for key, val := range valid {
			c[key] = val
		}
		if v == nil {
			delete(c, k)
		} else {
			c[k] = v
		}
		return c
	}

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"valid", sign(t, jwt.SigningMethodHS256, testSecret, valid), nil},
		{"expired", sign(t, jwt.SigningMethodHS256, testSecret, with("exp", now.Add(-time.Hour).Unix())), ErrTokenExpired},
		{"no exp", sign(t, jwt.SigningMethodHS256, testSecret, with("exp", nil)), ErrInvalidCredentials},
		{"wrong issuer", sign(t, jwt.SigningMethodHS256, testSecret, with("iss", "other")), ErrInvalidCredentials},
		{"wrong audience", sign(t, jwt.SigningMethodHS256, testSecret, with("aud", "other")), ErrInvalidCredentials},
		{"wrong key", sign(t, jwt.SigningMethodHS256, []byte("ffffffffffffffffffffffffffffffff"), valid), ErrInvalidCredentials},
		{"alg none", sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, valid), ErrInvalidCredentials},
		{"garbage", "not.a.jwt", ErrTokenMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := header("Authorization", "Bearer "+tt.token)
			if !a.Supports(h) {
				t.Fatal("Supports() should be true for a bearer header")
			}
			id, err := a.Authenticate(context.Background(), h)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if id.Principal != "alice" || !id.HasRole("admin") || id.Method != MethodJWT {
				t.Errorf("identity = %+v", id)
			}
			if id.ExpiresAt.IsZero() {
				t.Error("ExpiresAt should be set")
			}
		})
	}
}

func TestJWTAuthenticator_Supports(t *testing.T) {
	a, _ := NewJWTAuthenticator(JWTConfig{Secret: testSecret})
	for _, v := range []string{"", "Basic abc", "Bearer", "Bearer  "} {
		if a.Supports(header("Authorization", v)) {
			t.Errorf("Supports(%q) = true", v)
		}
	}
	if !a.Supports(header("Authorization", "bearer tok")) {
		t.Error("scheme match should be case-insensitive")
	}
}
