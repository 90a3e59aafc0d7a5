// Package admin serves the operational HTTP surface of an ensemblops
// process: health probes, Prometheus metrics, cache statistics and
// clearing, release inspection, and a read-only passthrough that sends GET
// requests through the access layer.
//
//	GET    /healthz /readyz /health /health/{name}
//	GET    /metrics
//	GET    /v1/cache/stats
//	DELETE /v1/cache                 (admin role)
//	GET    /v1/release
//	POST   /v1/release/refresh       (admin role)
//	GET    /v1/upstream/*
//
// Everything under /v1 is authenticated when credentials are configured.
package admin
