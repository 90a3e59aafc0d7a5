// Package release resolves and memoizes the upstream data release per server.
//
// Upstream data is immutable within a release, so the release token is part of
// every cache scope. The Resolver probes each server at most once at a time:
// concurrent callers share the in-flight probe. A successful token is kept for
// the life of the Resolver. A failed probe resolves to Unknown and is retried
// after a cooldown.
package release
