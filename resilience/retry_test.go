package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// recordedSleep captures requested delays without blocking.
type recordedSleep struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *recordedSleep) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.delays = append(s.delays, d)
	s.mu.Unlock()
	return ctx.Err()
}

func (s *recordedSleep) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.delays)
}

var errTransient = errors.New("upstream 503")

func TestNewRetry_Defaults(t *testing.T) {
	r := NewRetry(RetryConfig{})
	cfg := r.Config()

	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.MaxRetries)
	}
	if cfg.BaseDelay != 500*time.Millisecond {
		t.Errorf("BaseDelay = %v, want 500ms", cfg.BaseDelay)
	}
	if cfg.MaxDelay != 30*time.Second {
		t.Errorf("MaxDelay = %v, want 30s", cfg.MaxDelay)
	}
	if cfg.Multiplier != 2.0 {
		t.Errorf("Multiplier = %f, want 2.0", cfg.Multiplier)
	}
	if cfg.RetryIf == nil || cfg.Sleep == nil {
		t.Error("RetryIf and Sleep should default")
	}
}

func TestRetry_SuccessOnFirstAttempt(t *testing.T) {
	s := &recordedSleep{}
	r := NewRetry(RetryConfig{Sleep: s.sleep})

	attempts := 0
	err := r.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		return nil
	})

	if err != nil {
		t.Errorf("Execute() error = %v", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
	if s.count() != 0 {
		t.Errorf("sleeps = %d, want 0", s.count())
	}
}

func TestRetry_TwoThrottlesThenSuccess(t *testing.T) {
	s := &recordedSleep{}
	r := NewRetry(RetryConfig{MaxRetries: 3, BaseDelay: 10 * time.Millisecond, Sleep: s.sleep})

	statuses := []int{429, 429, 200}
	attempts := 0
	err := r.Execute(context.Background(), func(ctx context.Context) error {
		status := statuses[attempts]
		attempts++
		if status == 429 {
			return Retryable(errors.New("429 too many requests"), 0)
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if s.count() != 2 {
		t.Errorf("sleeps = %d, want 2", s.count())
	}
	if s.delays[0] != 10*time.Millisecond || s.delays[1] != 20*time.Millisecond {
		t.Errorf("delays = %v, want [10ms 20ms]", s.delays)
	}
}

func TestRetry_NonRetryableFailsImmediately(t *testing.T) {
	s := &recordedSleep{}
	r := NewRetry(RetryConfig{MaxRetries: 3, Sleep: s.sleep})

	badRequest := errors.New("400 bad request")
	attempts := 0
	err := r.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		return badRequest
	})

	if !errors.Is(err, badRequest) {
		t.Errorf("Execute() error = %v, want %v", err, badRequest)
	}
	if errors.Is(err, ErrMaxRetriesExceeded) {
		t.Error("non-retryable error should not be reported as exhausted")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
	if s.count() != 0 {
		t.Errorf("sleeps = %d, want 0", s.count())
	}
}

func TestRetry_ExhaustedAfterMaxRetriesPlusOne(t *testing.T) {
	for _, maxRetries := range []int{1, 2, 5} {
		s := &recordedSleep{}
		r := NewRetry(RetryConfig{MaxRetries: maxRetries, BaseDelay: time.Millisecond, Sleep: s.sleep})

		attempts := 0
		err := r.Execute(context.Background(), func(ctx context.Context) error {
			attempts++
			return Retryable(errTransient, 0)
		})

		if attempts != maxRetries+1 {
			t.Errorf("MaxRetries=%d: attempts = %d, want %d", maxRetries, attempts, maxRetries+1)
		}
		if s.count() != maxRetries {
			t.Errorf("MaxRetries=%d: sleeps = %d, want %d", maxRetries, s.count(), maxRetries)
		}
		if !errors.Is(err, ErrMaxRetriesExceeded) {
			t.Errorf("error should match ErrMaxRetriesExceeded, got %v", err)
		}
		if !errors.Is(err, errTransient) {
			t.Errorf("error should wrap last failure, got %v", err)
		}
		var exhausted *ExhaustedError
		if !errors.As(err, &exhausted) || exhausted.Attempts != maxRetries+1 {
			t.Errorf("ExhaustedError = %+v", exhausted)
		}
	}
}

func TestRetry_RetryAfterOverridesBackoff(t *testing.T) {
	s := &recordedSleep{}
	r := NewRetry(RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, Sleep: s.sleep})

	attempts := 0
	_ = r.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts == 1 {
			return Retryable(errTransient, 2*time.Second)
		}
		return nil
	})

	if len(s.delays) != 1 || s.delays[0] != 2*time.Second {
		t.Errorf("delays = %v, want [2s]", s.delays)
	}
}

func TestNewRetry_MultiplierBelowOne(t *testing.T) {
	tests := []struct {
		name       string
		multiplier float64
		want       float64
	}{
		{"fractional", 0.5, 2.0},
		{"negative", -3, 2.0},
		{"one", 1, 1},
		{"growth", 1.5, 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRetry(RetryConfig{BaseDelay: 100 * time.Millisecond, MaxDelay: time.Second, Multiplier: tt.multiplier})
			if got := r.Config().Multiplier; got != tt.want {
				t.Errorf("Multiplier = %v, want %v", got, tt.want)
			}
			if r.BackoffDelay(1) < r.BackoffDelay(0) {
				t.Errorf("backoff decreased: %v then %v", r.BackoffDelay(0), r.BackoffDelay(1))
			}
		})
	}
}

func TestRetry_BackoffNonDecreasingAndCapped(t *testing.T) {
	r := NewRetry(RetryConfig{BaseDelay: 100 * time.Millisecond, MaxDelay: time.Second, Multiplier: 2})

	prev := time.Duration(0)
	for attempt := 0; attempt < 40; attempt++ {
		d := r.BackoffDelay(attempt)
		if d < prev {
			t.Fatalf("BackoffDelay(%d) = %v, less than previous %v", attempt, d, prev)
		}
		if d > time.Second {
			t.Fatalf("BackoffDelay(%d) = %v, exceeds max", attempt, d)
		}
		prev = d
	}
	if got := r.BackoffDelay(0); got != 100*time.Millisecond {
		t.Errorf("BackoffDelay(0) = %v, want 100ms", got)
	}
	if got := r.BackoffDelay(3); got != 800*time.Millisecond {
		t.Errorf("BackoffDelay(3) = %v, want 800ms", got)
	}
	if got := r.BackoffDelay(4); got != time.Second {
		t.Errorf("BackoffDelay(4) = %v, want 1s", got)
	}
}

func TestRetry_JitterBounded(t *testing.T) {
	r := NewRetry(RetryConfig{BaseDelay: 100 * time.Millisecond, Jitter: true})

	for i := 0; i < 100; i++ {
		d := r.delayFor(0, errTransient)
		if d < 100*time.Millisecond || d >= 125*time.Millisecond {
			t.Fatalf("jittered delay = %v, want [100ms, 125ms)", d)
		}
	}
}

func TestRetry_OnRetryCallback(t *testing.T) {
	var seen []int
	r := NewRetry(RetryConfig{
		MaxRetries: 2,
		BaseDelay:  time.Millisecond,
		Sleep:      (&recordedSleep{}).sleep,
		OnRetry: func(ctx context.Context, attempt int, err error, delay time.Duration) {
			seen = append(seen, attempt)
		},
	})

	_ = r.Execute(context.Background(), func(ctx context.Context) error {
		return Retryable(errTransient, 0)
	})

	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Errorf("OnRetry attempts = %v, want [1 2]", seen)
	}
}

func TestRetry_AttemptFromContext(t *testing.T) {
	r := NewRetry(RetryConfig{MaxRetries: 2, Sleep: (&recordedSleep{}).sleep})

	var got []int
	_ = r.Execute(context.Background(), func(ctx context.Context) error {
		got = append(got, AttemptFromContext(ctx))
		return Retryable(errTransient, 0)
	})

	want := []int{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("attempts = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("attempt[%d] = %d, want %d", i, got[i], want[i])
		}
	}
	if AttemptFromContext(context.Background()) != 0 {
		t.Error("AttemptFromContext on plain context should be 0")
	}
}

func TestRetry_ContextCancelledDuringBackoff(t *testing.T) {
	r := NewRetry(RetryConfig{MaxRetries: 5, BaseDelay: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := r.Execute(ctx, func(ctx context.Context) error {
		attempts++
		return Retryable(errTransient, 0)
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestRetry_CustomRetryIf(t *testing.T) {
	s := &recordedSleep{}
	r := NewRetry(RetryConfig{
		MaxRetries: 2,
		Sleep:      s.sleep,
		RetryIf:    func(err error) bool { return true },
	})

	attempts := 0
	_ = r.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		return errors.New("plain")
	})

	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC)

	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{name: "empty", value: "", want: 0},
		{name: "seconds", value: "2", want: 2 * time.Second},
		{name: "fractional", value: "1.5", want: 1500 * time.Millisecond},
		{name: "negative", value: "-3", want: 0},
		{name: "garbage", value: "soon", want: 0},
		{name: "capped", value: "999999", want: MaxRetryAfter},
		{name: "http date", value: now.Add(30 * time.Second).Format(time.RFC1123), want: 30 * time.Second},
		{name: "past date", value: now.Add(-time.Minute).Format(time.RFC1123), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseRetryAfter(tt.value, now); got != tt.want {
				t.Errorf("ParseRetryAfter(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestStatusSet(t *testing.T) {
	s := NewStatusSet(DefaultRetryableStatuses...)
	for _, code := range []int{429, 500, 502, 503, 504} {
		if !s.Contains(code) {
			t.Errorf("Contains(%d) = false", code)
		}
	}
	for _, code := range []int{200, 400, 404} {
		if s.Contains(code) {
			t.Errorf("Contains(%d) = true", code)
		}
	}
}
