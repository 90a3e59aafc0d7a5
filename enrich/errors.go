package enrich

import (
	"errors"
	"net/http"
	"strings"
)

// Status-class sentinels. Every EnrichedError unwraps to exactly one.
var (
	ErrRateLimited = errors.New("enrich: rate limited")
	ErrUnavailable = errors.New("enrich: upstream unavailable")
	ErrNotFound    = errors.New("enrich: not found")
	ErrBadRequest  = errors.New("enrich: bad request")
	ErrServer      = errors.New("enrich: upstream server error")
	ErrUpstream    = errors.New("enrich: upstream error")
)

// EnrichedError is an upstream failure with corrective guidance.
// It is immutable once built.
type EnrichedError struct {
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
	Endpoint   string `json:"endpoint"`
	Suggestion string `json:"suggestion,omitempty"`
	Example    string `json:"example,omitempty"`
}

func (e *EnrichedError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Suggestion != "" {
		b.WriteString("; suggestion: ")
		b.WriteString(e.Suggestion)
	}
	if e.Example != "" {
		b.WriteString("; example: ")
		b.WriteString(e.Example)
	}
	return b.String()
}

// Unwrap returns the status-class sentinel.
func (e *EnrichedError) Unwrap() error {
	return ClassOf(e.StatusCode)
}

// Transient reports whether the status is one the upstream may recover from.
func (e *EnrichedError) Transient() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// ClassOf maps a status code to its sentinel.
func ClassOf(status int) error {
	switch {
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	case status == http.StatusServiceUnavailable:
		return ErrUnavailable
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusBadRequest:
		return ErrBadRequest
	case status >= 500:
		return ErrServer
	default:
		return ErrUpstream
	}
}
