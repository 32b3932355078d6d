// Package httputil provides the retry and concurrency primitives shared by
// the changelog source and registry clients.
//
// # Overview
//
//   - [Retry] / [RetryValue]: bounded exponential backoff with jitter
//   - [Gate]: bounded-concurrency FIFO admission with optional pacing
//
// Neither primitive knows about HTTP; they wrap any unit of work.
//
// # Retry
//
// Failed attempts are retried while the predicate agrees and the budget
// lasts. The delay before retry n is
//
//	min(InitialDelay * Multiplier^n, MaxDelay)
//
// plus up to 30% random jitter. By default only errors wrapped in
// [RetryableError] are retried, so a "not found" response fails fast:
//
//	body, err := httputil.RetryValue(ctx, httputil.RetryOptions{}, func(ctx context.Context) (string, error) {
//	    return fetch(ctx, url)
//	})
//
// # Gate
//
// [Gate] queues callers beyond the concurrency limit in arrival order:
//
//	gate := httputil.NewGate(6, 50*time.Millisecond)
//	err := gate.Do(ctx, func(ctx context.Context) error { return fetch(ctx) })
package httputil
