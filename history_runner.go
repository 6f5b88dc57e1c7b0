package pager

import (
	"context"
	"errors"
	"sync"

	"github.com/petrijr/pager/pkg/history"
)

// HistoryRunner drives a HistoryFeed the way a diary screen does: it folds
// the feed's results into a HistoryState and turns item visibility into
// page requests.
//
// Typical usage:
//
//	runner := pager.NewHistoryRunner(feed)
//	_ = runner.Start(ctx)
//	...
//	// while rendering item i:
//	runner.Visit(ctx, i)
//	...
//	runner.Stop()
type HistoryRunner struct {
	Feed *HistoryFeed

	threshold *history.Threshold

	mu      sync.Mutex
	state   HistoryState
	changed chan struct{}
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewHistoryRunner returns a runner for feed. Call Start to begin.
func NewHistoryRunner(feed *HistoryFeed) *HistoryRunner {
	return &HistoryRunner{
		Feed:      feed,
		threshold: history.NewThreshold(nil),
		state:     NewHistoryState(feed.Config().Limit),
		changed:   make(chan struct{}),
	}
}

// Start subscribes to the feed and initializes it, which requests the first
// page. The subscription lives until Stop is called or ctx is done.
//
// If Start is called more than once without Stop, it returns an error.
func (r *HistoryRunner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return errors.New("pager: HistoryRunner already started")
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.running = true
	r.state = NewHistoryState(r.Feed.Config().Limit)
	r.threshold.Reset()

	sub := r.Feed.Results(ctx)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for res := range sub.C() {
			r.apply(func(s HistoryState) HistoryState { return s.Reduce(res) })
		}
	}()
	r.mu.Unlock()

	if err := r.Feed.Init(ctx); err != nil {
		r.Stop()
		return err
	}
	return nil
}

func (r *HistoryRunner) apply(fn func(HistoryState) HistoryState) {
	r.mu.Lock()
	r.state = fn(r.state)
	close(r.changed)
	r.changed = make(chan struct{})
	r.mu.Unlock()
}

// State returns the current folded state.
func (r *HistoryRunner) State() HistoryState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Visit reports that the item at index is visible. When index reaches the
// state's next offset to notify, the next page is requested; each trigger
// point requests at most one page. It returns whether a page was requested.
func (r *HistoryRunner) Visit(ctx context.Context, index int) (bool, error) {
	r.mu.Lock()
	target, ok := r.state.NextOffsetToNotify()
	fire := r.threshold.Visit(index, target, ok)
	r.mu.Unlock()

	if !fire {
		return false, nil
	}
	return true, r.Feed.LoadNextPage(ctx)
}

// Refresh reloads the history from the newest entry.
func (r *HistoryRunner) Refresh(ctx context.Context) error {
	r.mu.Lock()
	r.threshold.Reset()
	r.mu.Unlock()
	return r.Feed.Refresh(ctx)
}

// WaitFor blocks until cond holds for the current state or ctx is done.
func (r *HistoryRunner) WaitFor(ctx context.Context, cond func(HistoryState) bool) (HistoryState, error) {
	for {
		r.mu.Lock()
		st := r.state
		changed := r.changed
		r.mu.Unlock()

		if cond(st) {
			return st, nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return st, ctx.Err()
		}
	}
}

// Stop cancels the subscription started by Start and waits for it to exit.
// The feed itself is left open so it can be started again.
func (r *HistoryRunner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	cancel := r.cancel
	r.running = false
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	r.wg.Wait()
}
