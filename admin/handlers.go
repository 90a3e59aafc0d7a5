package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonwraymond/ensemblops/auth"
	"github.com/jonwraymond/ensemblops/cache"
	"github.com/jonwraymond/ensemblops/enrich"
	"github.com/jonwraymond/ensemblops/health"
	"github.com/jonwraymond/ensemblops/observe"
	"github.com/jonwraymond/ensemblops/resilience"
	"github.com/jonwraymond/ensemblops/upstream"
)

// RoleAdmin gates destructive routes.
const RoleAdmin = "admin"

// Client is the access layer surface the admin routes use.
// *upstream.Client satisfies it.
type Client interface {
	Server() string
	Request(ctx context.Context, endpoint string, params map[string]string) (json.RawMessage, error)
	Release(ctx context.Context) string
	KnownRelease() (string, bool)
	ForgetRelease()
	ClearCache()
	CacheStats() cache.Stats
}

var _ Client = (*upstream.Client)(nil)

// Handlers holds the dependencies of the admin routes.
type Handlers struct {
	Client Client

	// Health runs readiness checks. Nil mounts no health routes.
	Health *health.Aggregator

	// Authenticator protects /v1. Nil disables authentication.
	Authenticator auth.Authenticator

	// Gatherer backs /metrics. Default: prometheus.DefaultGatherer
	Gatherer prometheus.Gatherer

	// Logger receives admin.request and admin.cache_cleared events.
	// Default: no-op
	Logger observe.Logger
}

// Routes returns the admin router.
func (h *Handlers) Routes() chi.Router {
	if h.Logger == nil {
		h.Logger = observe.NopLogger()
	}
	if h.Gatherer == nil {
		h.Gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	if h.Health != nil {
		health.Mount(r, h.Health)
	}
	r.Handle("/metrics", promhttp.HandlerFor(h.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		// With auth disabled the anonymous caller holds the admin role.
		r.Use(auth.Middleware(h.Authenticator, RoleAdmin))

		r.Get("/cache/stats", h.cacheStats)
		r.Get("/release", h.release)
		r.Get("/upstream/*", h.passthrough)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(RoleAdmin))
			r.Delete("/cache", h.clearCache)
			r.Post("/release/refresh", h.refreshRelease)
		})
	})
	return r
}

func (h *Handlers) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.Logger.Debug(r.Context(), "admin.request",
			observe.F("http.method", r.Method),
			observe.F("http.path", r.URL.Path),
			observe.F("http.status", ww.Status()),
		)
	})
}

func (h *Handlers) cacheStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.Client.CacheStats())
}

func (h *Handlers) clearCache(w http.ResponseWriter, r *http.Request) {
	before := h.Client.CacheStats().Size
	h.Client.ClearCache()
	h.Logger.Info(r.Context(), "admin.cache_cleared",
		observe.F("principal", auth.PrincipalFromContext(r.Context())),
		observe.F("entries", before),
	)
	writeJSON(w, http.StatusOK, map[string]int{"cleared": before})
}

type releaseResponse struct {
	Server  string `json:"server"`
	Release string `json:"release"`
	Known   bool   `json:"known"`
}

func (h *Handlers) release(w http.ResponseWriter, _ *http.Request) {
	version, ok := h.Client.KnownRelease()
	writeJSON(w, http.StatusOK, releaseResponse{Server: h.Client.Server(), Release: version, Known: ok})
}

func (h *Handlers) refreshRelease(w http.ResponseWriter, r *http.Request) {
	h.Client.ForgetRelease()
	version := h.Client.Release(r.Context())
	_, ok := h.Client.KnownRelease()
	writeJSON(w, http.StatusOK, releaseResponse{Server: h.Client.Server(), Release: version, Known: ok})
}

// passthrough sends GET /v1/upstream/<endpoint>?<params> through the access
// layer. Repeated query parameters keep their first value.
func (h *Handlers) passthrough(w http.ResponseWriter, r *http.Request) {
	endpoint := "/" + strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	params := make(map[string]string, len(r.URL.Query()))
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}

	body, err := h.Client.Request(r.Context(), endpoint, params)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

// writeUpstreamError maps access layer failures to HTTP. Enriched errors
// keep their upstream status unless retries were exhausted, which is a
// gateway failure.
func writeUpstreamError(w http.ResponseWriter, err error) {
	var enriched *enrich.EnrichedError
	hasEnriched := errors.As(err, &enriched)

	switch {
	case errors.Is(err, upstream.ErrInvalidEndpoint):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, resilience.ErrMaxRetriesExceeded), errors.Is(err, resilience.ErrTimeout):
		resp := map[string]any{"error": err.Error()}
		if hasEnriched {
			resp["upstream"] = enriched
		}
		writeJSON(w, http.StatusBadGateway, resp)
	case hasEnriched:
		writeJSON(w, enriched.StatusCode, enriched)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusGatewayTimeout, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
