package resilience

import (
	"context"
	"sync"
	"time"
)

// DefaultMinInterval keeps outbound traffic at roughly 15 requests per second.
const DefaultMinInterval = 67 * time.Millisecond

// RateLimiterConfig configures the rate limiter.
type RateLimiterConfig struct {
	// MinInterval is the minimum spacing between the starts of two
	// acquisitions.
	// Default: 67ms
	MinInterval time.Duration

	// Now returns the current time. Default: time.Now
	Now func() time.Time

	// Sleep waits for d or until ctx is done. Default: a timer select.
	Sleep func(ctx context.Context, d time.Duration) error

	// OnWait is called before the limiter blocks for a positive duration.
	OnWait func(ctx context.Context, wait time.Duration)
}

// RateLimiter is a global minimum-interval gate.
//
// Contract:
//   - Concurrency: safe for concurrent use; acquisitions are spaced at least
//     MinInterval apart regardless of how many goroutines call Acquire.
//   - Ordering: spacing applies to starts only, not to completion order.
type RateLimiter struct {
	config RateLimiterConfig

	mu   sync.Mutex
	last time.Time
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.MinInterval <= 0 {
		config.MinInterval = DefaultMinInterval
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.Sleep == nil {
		config.Sleep = sleepContext
	}

	return &RateLimiter{config: config}
}

// Acquire blocks until MinInterval has elapsed since the previous acquisition
// started, then records its own start. If ctx ends while waiting, the slot is
// released when no later caller has queued behind it and ctx.Err() is returned.
func (rl *RateLimiter) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rl.mu.Lock()
	now := rl.config.Now()
	prev := rl.last
	start := now
	if !prev.IsZero() {
		if earliest := prev.Add(rl.config.MinInterval); earliest.After(now) {
			start = earliest
		}
	}
	rl.last = start
	rl.mu.Unlock()

	wait := start.Sub(now)
	if wait <= 0 {
		return nil
	}

	if rl.config.OnWait != nil {
		rl.config.OnWait(ctx, wait)
	}

	if err := rl.config.Sleep(ctx, wait); err != nil {
		rl.mu.Lock()
		if rl.last.Equal(start) {
			rl.last = prev
		}
		rl.mu.Unlock()
		return err
	}
	return nil
}

// Execute acquires the limiter and then runs op.
func (rl *RateLimiter) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := rl.Acquire(ctx); err != nil {
		return err
	}
	return op(ctx)
}

// MinInterval returns the configured spacing.
func (rl *RateLimiter) MinInterval() time.Duration {
	return rl.config.MinInterval
}

// Reset forgets the last acquisition so the next Acquire proceeds at once.
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.last = time.Time{}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
