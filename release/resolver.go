package release

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Unknown is the token used when the release could not be determined.
const Unknown = "unknown"

// DefaultRetryAfterFailure is how long an Unknown result is kept before the
// server is probed again.
const DefaultRetryAfterFailure = 5 * time.Minute

// DefaultResolveTimeout bounds one shared release lookup, including its retries.
const DefaultResolveTimeout = 30 * time.Second

// ProbeFunc fetches the current release token of a server.
type ProbeFunc func(ctx context.Context, server string) (string, error)

// Config configures a Resolver.
type Config struct {
	// Probe fetches the release token. Required.
	Probe ProbeFunc

	// RetryAfterFailure is how long a failed probe is remembered as Unknown.
	// Default: 5 minutes
	RetryAfterFailure time.Duration

	// ResolveTimeout bounds a shared lookup. Lookups run detached from any
	// one caller's context so that callers sharing the flight are not cut
	// short by a single cancellation. Default: 30 seconds
	ResolveTimeout time.Duration

	// Now returns the current time. Default: time.Now
	Now func() time.Time

	// OnResolved is called after a successful probe.
	OnResolved func(ctx context.Context, server, version string)

	// OnUnknown is called after a failed probe.
	OnUnknown func(ctx context.Context, server string, err error)
}

type entry struct {
	version  string
	failedAt time.Time
}

// Resolver memoizes the release token per server.
//
// Contract:
//   - Concurrency: safe for concurrent use; at most one probe per server is in
//     flight at any time.
//   - Errors: Resolve never fails; probe errors resolve to Unknown.
type Resolver struct {
	config Config

	mu      sync.RWMutex
	entries map[string]entry
	group   singleflight.Group
}

// New creates a Resolver.
func New(config Config) (*Resolver, error) {
	if config.Probe == nil {
		return nil, ErrNoProbe
	}
	if config.RetryAfterFailure <= 0 {
		config.RetryAfterFailure = DefaultRetryAfterFailure
	}
	if config.ResolveTimeout <= 0 {
		config.ResolveTimeout = DefaultResolveTimeout
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &Resolver{
		config:  config,
		entries: make(map[string]entry),
	}, nil
}

// Resolve returns the release token of server, probing it if needed. A
// caller whose ctx ends first gets Unknown; the shared lookup keeps running
// for the other callers and its result is memoized.
func (r *Resolver) Resolve(ctx context.Context, server string) string {
	if version, ok := r.cached(server); ok {
		return version
	}
	if ctx.Err() != nil {
		return Unknown
	}

	ch := r.group.DoChan(server, func() (any, error) {
		// A caller that queued behind a finished probe may find the result.
		if version, ok := r.cached(server); ok {
			return version, nil
		}
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.config.ResolveTimeout)
		defer cancel()
		return r.probe(flightCtx, server), nil
	})

	select {
	case res := <-ch:
		return res.Val.(string)
	case <-ctx.Done():
		return Unknown
	}
}

func (r *Resolver) cached(server string) (string, bool) {
	r.mu.RLock()
	e, ok := r.entries[server]
	r.mu.RUnlock()
	if !ok {
		return "", false
	}
	if e.version != Unknown {
		return e.version, true
	}
	if r.config.Now().Sub(e.failedAt) < r.config.RetryAfterFailure {
		return Unknown, true
	}
	return "", false
}

func (r *Resolver) probe(ctx context.Context, server string) string {
	version, err := r.config.Probe(ctx, server)
	if err == nil && version == "" {
		err = ErrNoRelease
	}

	if err != nil {
		r.mu.Lock()
		r.entries[server] = entry{version: Unknown, failedAt: r.config.Now()}
		r.mu.Unlock()
		if r.config.OnUnknown != nil {
			r.config.OnUnknown(ctx, server, err)
		}
		return Unknown
	}

	r.mu.Lock()
	r.entries[server] = entry{version: version}
	r.mu.Unlock()
	if r.config.OnResolved != nil {
		r.config.OnResolved(ctx, server, version)
	}
	return version
}

// Known returns the memoized token for server if a probe has succeeded.
func (r *Resolver) Known(server string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[server]
	if !ok || e.version == Unknown {
		return "", false
	}
	return e.version, true
}

// Forget drops the memoized token so the next Resolve probes again.
func (r *Resolver) Forget(server string) {
	r.mu.Lock()
	delete(r.entries, server)
	r.mu.Unlock()
}
