package observe

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// RequestMeta describes one logical upstream request for telemetry.
type RequestMeta struct {
	ID       string // Request ID; generated by Middleware when empty
	Method   string // HTTP method
	Endpoint string // Endpoint path as requested
	Server   string // Upstream server name
	Release  string // Upstream release the request is scoped to
}

// NewRequestID returns a fresh request identifier.
func NewRequestID() string {
	return uuid.NewString()
}

// Route returns the bounded-cardinality route of the endpoint: its first
// path segment, e.g. "/lookup" for "/lookup/id/ENSG00000139618".
func (m RequestMeta) Route() string {
	path, _, _ := strings.Cut(m.Endpoint, "?")
	path = strings.Trim(path, "/")
	if path == "" {
		return "/"
	}
	first, _, _ := strings.Cut(path, "/")
	return "/" + first
}

// SpanName returns the deterministic span name for this request.
// Format: upstream.<METHOD> <route>
func (m RequestMeta) SpanName() string {
	method := m.Method
	if method == "" {
		method = "GET"
	}
	return "upstream." + method + " " + m.Route()
}

type requestMetaKey struct{}

// ContextWithRequest attaches meta to ctx.
func ContextWithRequest(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestFromContext returns the RequestMeta attached to ctx, if any.
func RequestFromContext(ctx context.Context) (RequestMeta, bool) {
	meta, ok := ctx.Value(requestMetaKey{}).(RequestMeta)
	return meta, ok
}
