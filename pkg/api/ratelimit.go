package api

import (
	"context"

	"golang.org/x/time/rate"
)

// WithRateLimit wraps loader so that every call first waits for a token from
// limiter. A nil limiter returns loader unchanged.
func WithRateLimit[K comparable, V any](loader DataLoader[K, V], limiter *rate.Limiter) DataLoader[K, V] {
	if limiter == nil {
		return loader
	}
	return DataLoaderFunc[K, V](func(ctx context.Context, dir Direction, limit int, offset K) ([]V, error) {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}
		return loader.LoadData(ctx, dir, limit, offset)
	})
}
