package api

import (
	"context"
	"time"
)

// RetryPolicy controls how a DataLoader wrapped with WithRetry is retried.
// MaxAttempts includes the first attempt. For example:
//
//	MaxAttempts = 1 => no retries (just the initial call)
//	MaxAttempts = 3 => initial call + up to 2 retries
//
// InitialBackoff is the delay before the first retry. Each later delay is
// multiplied by BackoffMultiplier (default 2.0 when <= 0) and capped by
// MaxBackoff when it is positive. A zero InitialBackoff retries immediately.
type RetryPolicy struct {
	MaxAttempts       int
	InitialBackoff    time.Duration
	BackoffMultiplier float64
	MaxBackoff        time.Duration
}

// WithRetry wraps loader so that failed loads are retried according to policy
// before the error reaches the engine. The engine itself never retries; this
// decorator is how a caller opts in.
//
// Context cancellation stops retrying and returns the context error.
func WithRetry[K comparable, V any](loader DataLoader[K, V], policy RetryPolicy) DataLoader[K, V] {
	return DataLoaderFunc[K, V](func(ctx context.Context, dir Direction, limit int, offset K) ([]V, error) {
		maxAttempts := policy.MaxAttempts
		if maxAttempts <= 0 {
			maxAttempts = 1
		}
		multiplier := policy.BackoffMultiplier
		if multiplier <= 0 {
			multiplier = 2.0
		}
		backoff := policy.InitialBackoff

		var lastErr error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			items, err := loader.LoadData(ctx, dir, limit, offset)
			if err == nil {
				return items, nil
			}
			lastErr = err

			if attempt == maxAttempts {
				break
			}

			if backoff > 0 {
				delay := backoff
				if policy.MaxBackoff > 0 && delay > policy.MaxBackoff {
					delay = policy.MaxBackoff
				}

				timer := time.NewTimer(delay)
				select {
				case <-ctx.Done():
					timer.Stop()
					return nil, ctx.Err()
				case <-timer.C:
				}

				next := time.Duration(float64(backoff) * multiplier)
				if policy.MaxBackoff > 0 && next > policy.MaxBackoff {
					next = policy.MaxBackoff
				}
				backoff = next
			} else if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		return nil, lastErr
	})
}
