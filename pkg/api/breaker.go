package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
)

// ErrBreakerOpen is returned by a loader wrapped with WithCircuitBreaker while
// the breaker rejects calls.
var ErrBreakerOpen = errors.New("data loader circuit open")

// BreakerPolicy configures WithCircuitBreaker.
//
// The breaker opens after ConsecutiveFailures failed loads in a row (default
// 5), rejects calls for OpenTimeout (default 30s), then lets HalfOpenRequests
// trial calls through (default 1). Cancelled loads are not counted as failures.
type BreakerPolicy struct {
	Name                string
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
	HalfOpenRequests    uint32

	// OnStateChange, if set, is called on every transition, e.g. for logging.
	OnStateChange func(name string, from, to gobreaker.State)
}

// WithCircuitBreaker wraps loader so that a persistently failing source is
// short-circuited with ErrBreakerOpen instead of being called for every page.
func WithCircuitBreaker[K comparable, V any](loader DataLoader[K, V], policy BreakerPolicy) DataLoader[K, V] {
	threshold := policy.ConsecutiveFailures
	if threshold == 0 {
		threshold = 5
	}
	timeout := policy.OpenTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	halfOpen := policy.HalfOpenRequests
	if halfOpen == 0 {
		halfOpen = 1
	}
	name := policy.Name
	if name == "" {
		name = "data-loader"
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: halfOpen,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: policy.OnStateChange,
	})

	return DataLoaderFunc[K, V](func(ctx context.Context, dir Direction, limit int, offset K) ([]V, error) {
		out, err := cb.Execute(func() (any, error) {
			return loader.LoadData(ctx, dir, limit, offset)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %s: %v", ErrBreakerOpen, name, err)
		}
		if err != nil {
			return nil, err
		}
		items, _ := out.([]V)
		return items, nil
	})
}
