package httputil

import (
	"context"
	"errors"
	"testing"
	"time"
)

var fast = RetryOptions{InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fast, func(context.Context) error {
		calls++
		if calls < 3 {
			return &RetryableError{Err: errors.New("status 503")}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryStopsOnNonRetryable(t *testing.T) {
	notFound := errors.New("not found")
	calls := 0
	err := Retry(context.Background(), fast, func(context.Context) error {
		calls++
		return notFound
	})
	if !errors.Is(err, notFound) {
		t.Errorf("Retry() error = %v, want %v", err, notFound)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryExhaustsBudget(t *testing.T) {
	tests := []struct {
		name       string
		maxRetries int
		wantCalls  int
	}{
		{"default", 0, DefaultMaxRetries + 1},
		{"explicit", 1, 2},
		{"disabled", -1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := fast
			opts.MaxRetries = tt.maxRetries
			calls := 0
			err := Retry(context.Background(), opts, func(context.Context) error {
				calls++
				return &RetryableError{Err: errors.New("timeout")}
			})
			if !IsRetryable(err) {
				t.Errorf("last error should be returned unchanged, got %v", err)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRetryCustomPredicateAndObserver(t *testing.T) {
	var attempts []int
	var delays []time.Duration
	opts := fast
	opts.MaxRetries = 5
	opts.ShouldRetry = func(_ error, attempt int) bool { return attempt < 2 }
	opts.OnRetry = func(_ error, attempt int, delay time.Duration) {
		attempts = append(attempts, attempt)
		delays = append(delays, delay)
	}

	calls := 0
	_ = Retry(context.Background(), opts, func(context.Context) error {
		calls++
		return errors.New("plain")
	})

	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if len(attempts) != 2 || attempts[0] != 0 || attempts[1] != 1 {
		t.Errorf("OnRetry attempts = %v, want [0 1]", attempts)
	}
	for i, d := range delays {
		base := Backoff(opts, i)
		if d < base || d > base+base*3/10 {
			t.Errorf("delay[%d] = %v, want within [%v, %v]", i, d, base, base+base*3/10)
		}
	}
}

func TestRetryValue(t *testing.T) {
	calls := 0
	v, err := RetryValue(context.Background(), fast, func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", &RetryableError{Err: errors.New("reset")}
		}
		return "# 1.0.0", nil
	})
	if err != nil || v != "# 1.0.0" {
		t.Errorf("RetryValue() = %q, %v", v, err)
	}
}

func TestRetryContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	opts := RetryOptions{InitialDelay: time.Hour}
	calls := 0
	err := Retry(ctx, opts, func(context.Context) error {
		calls++
		cancel()
		return &RetryableError{Err: errors.New("timeout")}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Retry() error = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestBackoff(t *testing.T) {
	opts := RetryOptions{}
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{100, 30 * time.Second},
	}
	for _, tt := range tests {
		if got := Backoff(opts, tt.attempt); got != tt.want {
			t.Errorf("Backoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestWithDefaults(t *testing.T) {
	o := RetryOptions{}.WithDefaults()
	if o.MaxRetries != 3 || o.InitialDelay != time.Second || o.MaxDelay != 30*time.Second || o.Multiplier != 2 {
		t.Errorf("WithDefaults() = %+v", o)
	}
	if o.ShouldRetry(errors.New("plain"), 0) {
		t.Error("default predicate should not retry plain errors")
	}
	if !o.ShouldRetry(&RetryableError{Err: errors.New("x")}, 0) {
		t.Error("default predicate should retry RetryableError")
	}
}
