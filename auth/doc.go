// Package auth authenticates callers of the admin HTTP surface.
//
// Two credential types are accepted: static API keys sent in X-API-Key and
// HMAC-signed JWTs sent as "Authorization: Bearer <token>". Middleware
// attaches the resulting Identity to the request context and RequireRole
// gates destructive routes such as cache clearing.
package auth
