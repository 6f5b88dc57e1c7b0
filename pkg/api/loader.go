package api

import (
	"context"
)

// DataLoader fetches one page of values.
//
// Implementations receive the direction of the current load, the maximum
// number of items to return and the offset to start from. A returned error is
// surfaced as an Error result; the engine does not retry.
type DataLoader[K comparable, V any] interface {
	LoadData(ctx context.Context, dir Direction, limit int, offset K) ([]V, error)
}

// DataLoaderFunc adapts a plain function to DataLoader.
type DataLoaderFunc[K comparable, V any] func(ctx context.Context, dir Direction, limit int, offset K) ([]V, error)

// Ensure DataLoaderFunc implements DataLoader.
var _ DataLoader[int, struct{}] = DataLoaderFunc[int, struct{}](nil)

func (f DataLoaderFunc[K, V]) LoadData(ctx context.Context, dir Direction, limit int, offset K) ([]V, error) {
	return f(ctx, dir, limit, offset)
}
