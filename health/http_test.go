package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func newRouter(statuses map[string]Status) http.Handler {
	agg := NewAggregator()
	for name, s := range statuses {
		agg.Register(fixed(name, s))
	}
	r := chi.NewRouter()
	Mount(r, agg)
	return r
}

func serve(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestLivenessHandler(t *testing.T) {
	rec := serve(newRouter(map[string]Status{"upstream": StatusUnhealthy}), "/healthz")
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("liveness = %d %q", rec.Code, rec.Body.String())
	}
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name     string
		statuses map[string]Status
		code     int
		body     string
	}{
		{"healthy", map[string]Status{"upstream": StatusHealthy}, http.StatusOK, "OK"},
		{"degraded", map[string]Status{"upstream": StatusHealthy, "release": StatusDegraded}, http.StatusOK, "DEGRADED"},
		{"unhealthy", map[string]Status{"upstream": StatusUnhealthy}, http.StatusServiceUnavailable, "UNHEALTHY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(newRouter(tt.statuses), "/readyz")
			if rec.Code != tt.code || rec.Body.String() != tt.body {
				t.Errorf("readiness = %d %q, want %d %q", rec.Code, rec.Body.String(), tt.code, tt.body)
			}
		})
	}
}

func TestDetailedHandler(t *testing.T) {
	rec := serve(newRouter(map[string]Status{"upstream": StatusUnhealthy, "cache": StatusHealthy}), "/health")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("code = %d", rec.Code)
	}

	var body struct {
		Status string                       `json:"status"`
		Checks map[string]map[string]string `json:"checks"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "unhealthy" || body.Checks["cache"]["status"] != "healthy" {
		t.Errorf("body = %+v", body)
	}
}

func TestSingleCheckHandler(t *testing.T) {
	h := newRouter(map[string]Status{"release": StatusDegraded})

	rec := serve(h, "/health/release")
	if rec.Code != http.StatusOK || !json.Valid(rec.Body.Bytes()) {
		t.Errorf("release = %d %s", rec.Code, rec.Body.String())
	}
	if rec := serve(h, "/health/missing"); rec.Code != http.StatusNotFound {
		t.Errorf("missing = %d", rec.Code)
	}
}
