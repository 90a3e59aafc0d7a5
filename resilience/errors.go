package resilience

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for resilience operations.
var (
	// ErrMaxRetriesExceeded is returned when the retry budget is exhausted.
	ErrMaxRetriesExceeded = errors.New("resilience: max retries exceeded")

	// ErrTimeout is returned when an attempt exceeds its timeout.
	ErrTimeout = errors.New("resilience: operation timed out")
)

// RetryableError marks an error as transient. RetryAfter, when positive, is a
// server-provided hint that overrides the computed backoff.
type RetryableError struct {
	Err        error
	RetryAfter time.Duration
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err so that Retry will attempt the operation again.
// A nil err returns nil.
func Retryable(err error, retryAfter time.Duration) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err, RetryAfter: retryAfter}
}

// IsRetryable reports whether err is transient: a RetryableError anywhere in
// its chain, or an attempt timeout.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTimeout) {
		return true
	}
	var re *RetryableError
	return errors.As(err, &re)
}

// RetryAfterHint returns the retry-after hint carried by err, or zero.
func RetryAfterHint(err error) time.Duration {
	var re *RetryableError
	if errors.As(err, &re) {
		return re.RetryAfter
	}
	return 0
}

// ExhaustedError is returned when every attempt failed with a transient error.
// It matches ErrMaxRetriesExceeded and unwraps to the last failure.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%v after %d attempts: %v", ErrMaxRetriesExceeded, e.Attempts, e.Last)
}

// Unwrap exposes both the sentinel and the last cause to errors.Is/As.
func (e *ExhaustedError) Unwrap() []error {
	return []error{ErrMaxRetriesExceeded, e.Last}
}
