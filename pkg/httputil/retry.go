package httputil

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// Default retry settings.
const (
	DefaultMaxRetries   = 3
	DefaultInitialDelay = time.Second
	DefaultMaxDelay     = 30 * time.Second
	DefaultMultiplier   = 2.0

	// jitterFraction is the upper bound of random delay added on top of the
	// computed backoff, as a fraction of it.
	jitterFraction = 0.3
)

// RetryableError wraps an error to indicate it should trigger a retry.
// Wrap transient failures (network timeouts, 5xx responses) with this type
// so that the default predicate knows to attempt the operation again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is (or wraps) a [RetryableError].
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// RetryOptions configures [Retry]. The zero value is usable: every unset
// field falls back to its default in [RetryOptions.WithDefaults].
type RetryOptions struct {
	// MaxRetries is the number of retries after the first attempt.
	// Zero means DefaultMaxRetries; a negative value disables retries.
	MaxRetries int

	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64

	// ShouldRetry decides whether a failed attempt (0-based) is retried.
	// Defaults to [IsRetryable].
	ShouldRetry func(err error, attempt int) bool

	// OnRetry is called before sleeping ahead of each retry.
	OnRetry func(err error, attempt int, delay time.Duration)
}

// WithDefaults returns a copy of o with unset fields filled in.
func (o RetryOptions) WithDefaults() RetryOptions {
	switch {
	case o.MaxRetries == 0:
		o.MaxRetries = DefaultMaxRetries
	case o.MaxRetries < 0:
		o.MaxRetries = 0
	}
	if o.InitialDelay <= 0 {
		o.InitialDelay = DefaultInitialDelay
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = DefaultMaxDelay
	}
	if o.Multiplier <= 0 {
		o.Multiplier = DefaultMultiplier
	}
	if o.ShouldRetry == nil {
		o.ShouldRetry = func(err error, _ int) bool { return IsRetryable(err) }
	}
	return o
}

// Backoff returns the delay before retry number attempt (0-based), without
// jitter: min(InitialDelay * Multiplier^attempt, MaxDelay).
func Backoff(o RetryOptions, attempt int) time.Duration {
	o = o.WithDefaults()
	d := float64(o.InitialDelay) * math.Pow(o.Multiplier, float64(attempt))
	if d > float64(o.MaxDelay) || math.IsInf(d, 1) {
		return o.MaxDelay
	}
	return time.Duration(d)
}

func jitter(d time.Duration) time.Duration {
	return d + time.Duration(rand.Float64()*jitterFraction*float64(d))
}

// Retry executes fn until it succeeds, the predicate declines, or the retry
// budget is exhausted. The last error is returned unchanged so callers can
// inspect it with errors.Is/As. Returns ctx.Err() if cancelled while waiting.
func Retry(ctx context.Context, opts RetryOptions, fn func(ctx context.Context) error) error {
	_, err := RetryValue(ctx, opts, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// RetryValue is [Retry] for operations that produce a value.
func RetryValue[T any](ctx context.Context, opts RetryOptions, fn func(ctx context.Context) (T, error)) (T, error) {
	opts = opts.WithDefaults()

	for attempt := 0; ; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if attempt >= opts.MaxRetries || !opts.ShouldRetry(err, attempt) {
			return v, err
		}

		delay := jitter(Backoff(opts, attempt))
		if opts.OnRetry != nil {
			opts.OnRetry(err, attempt, delay)
		}

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			var zero T
			return zero, ctx.Err()
		case <-t.C:
		}
	}
}
