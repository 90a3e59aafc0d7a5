package observe

import (
	"errors"
	"strings"
)

var (
	// ErrMissingServiceName is returned when Config.ServiceName is empty.
	ErrMissingServiceName = errors.New("observe: service name is required")

	// ErrInvalidSamplePct is returned for a sample rate outside [0, 1].
	ErrInvalidSamplePct = errors.New("observe: sample rate out of range")

	// ErrInvalidTracingExporter is returned for an unknown span exporter.
	ErrInvalidTracingExporter = errors.New("observe: unknown tracing exporter")

	// ErrInvalidMetricsExporter is returned for an unknown metrics exporter.
	ErrInvalidMetricsExporter = errors.New("observe: unknown metrics exporter")

	// ErrInvalidLogLevel is returned for an unknown log level.
	ErrInvalidLogLevel = errors.New("observe: unknown log level")

	// ErrInvalidLogFormat is returned for a format other than json or text.
	ErrInvalidLogFormat = errors.New("observe: unknown log format")

	// ErrNilObserver is returned by MiddlewareFromObserver for a nil Observer.
	ErrNilObserver = errors.New("observe: observer is nil")
)

// Sample rate bounds.
const (
	MinSamplePct = 0.0
	MaxSamplePct = 1.0
)

// Accepted configuration values. The empty string selects the default.
var (
	ValidTracingExporters = []string{"", "none", "stdout", "otlp"}
	ValidMetricsExporters = []string{"", "none", "stdout", "otlp", "prometheus"}
	ValidLogLevels        = []string{"", "debug", "info", "warn", "error"}
	ValidLogFormats       = []string{"", "json", "text"}
)

// RedactedFields lists key fragments whose values never reach a log sink.
// Matching is case-insensitive, so "X-API-Key" and "upstream.api_key" are
// both redacted. POST bodies can carry patient-derived variant notations.
var RedactedFields = []string{
	"authorization",
	"api_key",
	"api-key",
	"apikey",
	"token",
	"secret",
	"password",
	"credential",
	"jwt",
	"body",
}

func isRedactedField(key string) bool {
	key = strings.ToLower(key)
	for _, frag := range RedactedFields {
		if strings.Contains(key, frag) {
			return true
		}
	}
	return false
}
