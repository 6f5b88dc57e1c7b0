package history

import (
	"context"

	"github.com/petrijr/pager/internal/stream"
	"github.com/petrijr/pager/pkg/api"
)

// Pager is the part of an engine (or Feed) that Drain drives.
type Pager[V any] interface {
	LoadNextPage(ctx context.Context) error
	Results(ctx context.Context) *stream.Subscription[api.Result[V]]
}

// Drain requests pages from p one at a time until a page reports no more
// data, and returns everything loaded. A restart result seen along the way
// discards what was collected so far. On a load error Drain returns the
// items collected before it together with the error.
//
// p must not be driven by anyone else while Drain runs: Drain attributes the
// next progress/outcome pair it observes to its own request.
func Drain[V any](ctx context.Context, p Pager[V]) ([]V, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sub := p.Results(ctx)
	defer sub.Close()

	items := make([]V, 0)
	for {
		if err := p.LoadNextPage(ctx); err != nil {
			return items, err
		}

		r, err := awaitOutcome(ctx, sub)
		if err != nil {
			return items, err
		}
		if r.Direction == api.DirectionRestart {
			items = items[:0]
		}
		switch r.Kind {
		case api.ResultError:
			return items, r.Err
		case api.ResultData:
			items = append(items, r.Items...)
			if !r.HasMore {
				return items, nil
			}
		}
	}
}

// awaitOutcome waits for a Progress and returns the Data or Error that
// follows it. Outcomes replayed from before the request are skipped.
func awaitOutcome[V any](ctx context.Context, sub *stream.Subscription[api.Result[V]]) (api.Result[V], error) {
	seenProgress := false
	for {
		select {
		case r, ok := <-sub.C():
			if !ok {
				if err := ctx.Err(); err != nil {
					return api.Result[V]{}, err
				}
				return api.Result[V]{}, api.ErrEngineClosed
			}
			if r.IsProgress() {
				seenProgress = true
				continue
			}
			if seenProgress {
				return r, nil
			}
		case <-ctx.Done():
			return api.Result[V]{}, ctx.Err()
		}
	}
}
