package auth

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Middleware authenticates every request with a. A nil a disables
// authentication and attaches an anonymous identity holding anonRoles.
func Middleware(a Authenticator, anonRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if a == nil {
				next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), Anonymous(anonRoles...))))
				return
			}
			if !a.Supports(r.Header) {
				deny(w, http.StatusUnauthorized, ErrMissingCredentials)
				return
			}
			id, err := a.Authenticate(r.Context(), r.Header)
			if err != nil {
				deny(w, http.StatusUnauthorized, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireRole rejects requests whose identity lacks role.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IdentityFromContext(r.Context()).HasRole(role) {
				deny(w, http.StatusForbidden, ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// deny writes a JSON error. Internal detail stays out of the body: only the
// sentinel text is returned.
func deny(w http.ResponseWriter, status int, err error) {
	msg := ErrInvalidCredentials.Error()
	for _, s := range []error{ErrMissingCredentials, ErrTokenExpired, ErrTokenMalformed, ErrForbidden, ErrNoAuthenticators} {
		if errors.Is(err, s) {
			msg = s.Error()
			break
		}
	}
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="ensemblops"`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
