package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultRetryableStatuses are the upstream statuses treated as transient.
var DefaultRetryableStatuses = []int{
	http.StatusTooManyRequests,
	http.StatusInternalServerError,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

// MaxRetryAfter caps server-provided retry hints.
const MaxRetryAfter = time.Hour

// RetryConfig configures the retry behavior.
type RetryConfig struct {
	// MaxRetries is the number of retries after the first attempt, so an
	// operation runs at most MaxRetries+1 times.
	// Default: 3
	MaxRetries int

	// BaseDelay is the backoff before the first retry.
	// Default: 500ms
	BaseDelay time.Duration

	// MaxDelay caps the computed backoff. Retry hints are not capped by it.
	// Default: 30s
	MaxDelay time.Duration

	// Multiplier is the backoff growth factor. Values below 1 would shrink
	// the backoff and are replaced by the default.
	// Default: 2.0
	Multiplier float64

	// Jitter adds up to 25% random delay to prevent synchronized retries.
	Jitter bool

	// RetryIf determines if an error should trigger a retry.
	// Default: IsRetryable
	RetryIf func(err error) bool

	// OnRetry is called before each backoff sleep. attempt is 1-based and
	// names the attempt that just failed.
	OnRetry func(ctx context.Context, attempt int, err error, delay time.Duration)

	// Sleep waits for d or until ctx is done. Default: a timer select.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Retry implements retry with backoff. State is local to each Execute call.
type Retry struct {
	config RetryConfig
}

// NewRetry creates a new retry handler.
func NewRetry(config RetryConfig) *Retry {
	// Apply defaults
	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}
	if config.BaseDelay <= 0 {
		config.BaseDelay = 500 * time.Millisecond
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 30 * time.Second
	}
	if config.MaxDelay < config.BaseDelay {
		config.MaxDelay = config.BaseDelay
	}
	if config.Multiplier < 1 {
		config.Multiplier = 2.0
	}
	if config.RetryIf == nil {
		config.RetryIf = IsRetryable
	}
	if config.Sleep == nil {
		config.Sleep = sleepContext
	}

	return &Retry{config: config}
}

type attemptKey struct{}

// AttemptFromContext returns the 1-based attempt number set by Retry, or 0
// when ctx did not come from a retry loop.
func AttemptFromContext(ctx context.Context) int {
	n, _ := ctx.Value(attemptKey{}).(int)
	return n
}

// Execute runs op, retrying transient failures.
//
// A nil error returns immediately. A non-retryable error is returned as is on
// whatever attempt produced it. When every attempt fails transiently the
// result is an *ExhaustedError wrapping the last failure.
func (r *Retry) Execute(ctx context.Context, op func(context.Context) error) error {
	for attempt := 0; ; attempt++ {
		err := op(context.WithValue(ctx, attemptKey{}, attempt+1))
		if err == nil {
			return nil
		}

		// Caller cancellation is never retried.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return err
		}

		if !r.config.RetryIf(err) {
			return err
		}

		if attempt >= r.config.MaxRetries {
			return &ExhaustedError{Attempts: attempt + 1, Last: err}
		}

		delay := r.delayFor(attempt, err)

		if r.config.OnRetry != nil {
			r.config.OnRetry(ctx, attempt+1, err, delay)
		}

		if err := r.config.Sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// BackoffDelay returns the computed backoff, without jitter, before retry
// number attempt (0-based): min(BaseDelay * Multiplier^attempt, MaxDelay).
func (r *Retry) BackoffDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := float64(r.config.BaseDelay) * math.Pow(r.config.Multiplier, float64(attempt))
	if d >= float64(r.config.MaxDelay) || math.IsInf(d, 0) || math.IsNaN(d) {
		return r.config.MaxDelay
	}
	return time.Duration(d)
}

func (r *Retry) delayFor(attempt int, err error) time.Duration {
	delay := RetryAfterHint(err)
	if delay <= 0 {
		delay = r.BackoffDelay(attempt)
	}
	if delay > MaxRetryAfter {
		delay = MaxRetryAfter
	}

	// Add up to 25% jitter
	if r.config.Jitter && delay/4 > 0 {
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		delay += time.Duration(rand.Int64N(int64(delay / 4)))
	}

	return delay
}

// Config returns the retry configuration.
func (r *Retry) Config() RetryConfig {
	return r.config
}

// ParseRetryAfter parses a Retry-After header value. It accepts
// delta-seconds (fractional values allowed) and HTTP-date forms. Unparseable,
// negative or past values return zero; results are capped at MaxRetryAfter.
func ParseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}

	if secs, err := strconv.ParseFloat(value, 64); err == nil {
		if secs <= 0 || math.IsNaN(secs) || math.IsInf(secs, 0) {
			return 0
		}
		d := time.Duration(secs * float64(time.Second))
		return min(d, MaxRetryAfter)
	}

	if t, err := http.ParseTime(value); err == nil {
		d := t.Sub(now)
		if d <= 0 {
			return 0
		}
		return min(d, MaxRetryAfter)
	}

	return 0
}

// StatusSet is a set of HTTP status codes.
type StatusSet map[int]struct{}

// NewStatusSet builds a StatusSet from codes.
func NewStatusSet(codes ...int) StatusSet {
	s := make(StatusSet, len(codes))
	for _, c := range codes {
		s[c] = struct{}{}
	}
	return s
}

// Contains reports whether code is in the set.
func (s StatusSet) Contains(code int) bool {
	_, ok := s[code]
	return ok
}
