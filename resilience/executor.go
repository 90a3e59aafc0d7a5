package resilience

import (
	"context"
	"time"
)

// Executor composes the rate limiter, retry and per-attempt timeout.
type Executor struct {
	retry       *Retry
	rateLimiter *RateLimiter
	timeout     *Timeout
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// NewExecutor creates a new resilience executor.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithRetry adds retry logic to the executor.
func WithRetry(r *Retry) ExecutorOption {
	return func(e *Executor) {
		e.retry = r
	}
}

// WithRateLimiter adds rate limiting to the executor.
func WithRateLimiter(rl *RateLimiter) ExecutorOption {
	return func(e *Executor) {
		e.rateLimiter = rl
	}
}

// WithTimeout adds a per-attempt timeout to the executor.
func WithTimeout(timeout time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.timeout = NewTimeout(TimeoutConfig{Timeout: timeout})
	}
}

// WithTimeoutConfig adds a per-attempt timeout with custom config.
func WithTimeoutConfig(t *Timeout) ExecutorOption {
	return func(e *Executor) {
		e.timeout = t
	}
}

// Execute runs the operation through all configured patterns.
//
// The execution order is:
// 1. Retry (if configured) - outermost, owns the attempt loop
// 2. Rate Limiter (if configured) - acquired once per attempt
// 3. Timeout (if configured) - bounds each attempt
func (e *Executor) Execute(ctx context.Context, op func(context.Context) error) error {
	_, err := Do(ctx, e, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// Do runs op through e like Execute and returns the value of the attempt
// that succeeded. Values of attempts abandoned by the timeout are dropped.
func Do[T any](ctx context.Context, e *Executor, op func(context.Context) (T, error)) (T, error) {
	var out T

	// Wrap with timeout (innermost). out is only written on this goroutine.
	attempt := func(ctx context.Context) error {
		var val T
		var err error
		if e.timeout != nil {
			val, err = withTimeout(ctx, e.timeout, op)
		} else {
			val, err = op(ctx)
		}
		if err == nil {
			out = val
		}
		return err
	}

	// Every attempt, including retries, passes the limiter.
	if e.rateLimiter != nil {
		inner := attempt
		attempt = func(ctx context.Context) error {
			return e.rateLimiter.Execute(ctx, inner)
		}
	}

	var err error
	if e.retry != nil {
		err = e.retry.Execute(ctx, attempt)
	} else {
		err = attempt(ctx)
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// RateLimiter returns the executor's rate limiter, or nil.
func (e *Executor) RateLimiter() *RateLimiter {
	return e.rateLimiter
}
