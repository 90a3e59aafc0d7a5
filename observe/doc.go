// Package observe provides the logging, metrics and tracing sink for upstream
// requests.
//
// It is observational only: nothing here sits on the decision path of a
// request. The Observer builds OpenTelemetry tracer and meter providers through
// the exporters package and a Logger in either JSON or human-readable text
// form. Middleware wraps one logical request with a span, metrics and
// request.start/request.complete/request.failed log events.
//
// Event names logged by the access layer:
//
//	request.start  request.complete  request.failed
//	cache.hit      cache.miss        cache.evict
//	retry.scheduled  ratelimit.wait
//	release.resolved release.unknown
package observe
