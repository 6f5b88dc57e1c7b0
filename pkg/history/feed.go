package history

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/petrijr/pager/internal/engine"
	"github.com/petrijr/pager/internal/stream"
	"github.com/petrijr/pager/pkg/api"
	"github.com/petrijr/pager/pkg/diary"
)

var (
	// ErrNotInitialized is returned by paging calls made before Init.
	ErrNotInitialized = errors.New("history feed not initialized")

	// errReinitialized is the cancellation cause of an engine replaced by Init.
	errReinitialized = errors.New("history feed re-initialized")

	// errFeedClosed is the cancellation cause of the engine stopped by Close.
	errFeedClosed = errors.New("history feed closed")
)

// Options configures a Feed. The zero value uses DefaultConfig and no
// observer.
type Options struct {
	Config      api.Config[int]
	Observer    api.Observer
	LoadTimeout time.Duration
	// Limiter, when set, throttles every store call, retries included.
	Limiter *rate.Limiter
	// Retry, when set, wraps the store loader with api.WithRetry.
	Retry *api.RetryPolicy
	// Breaker, when set, wraps the retried loader with api.WithCircuitBreaker.
	Breaker *api.BreakerPolicy
}

// Feed pages the food history of a store.
//
// Each Init replaces the underlying engine. Results from every engine are
// forwarded, in order, onto the same stream, so subscribers survive
// re-initialization.
type Feed struct {
	store  diary.Store
	opts   Options
	loader api.DataLoader[int, diary.Food]

	results *stream.Replay[api.Result[diary.Food]]

	mu      sync.Mutex
	eng     *engine.Engine[int, diary.Food]
	stopFwd context.CancelFunc
	fwdDone chan struct{}
	inits   int
	closed  bool
}

// NewFeed returns a feed over store. Call Init to start paging.
func NewFeed(store diary.Store, opts Options) *Feed {
	if opts.Config == (api.Config[int]{}) {
		opts.Config = DefaultConfig()
	}
	loader := api.WithRateLimit(NewLoader(store), opts.Limiter)
	if opts.Retry != nil {
		loader = api.WithRetry(loader, *opts.Retry)
	}
	if opts.Breaker != nil {
		loader = api.WithCircuitBreaker(loader, *opts.Breaker)
	}
	return &Feed{
		store:   store,
		opts:    opts,
		loader:  loader,
		results: stream.NewReplay[api.Result[diary.Food]](),
	}
}

// Init cancels any previous engine and its forwarder, starts a fresh engine
// scoped to ctx and requests the first page.
//
// Before the new engine's results, Init publishes a restart Progress marker
// so consumers drop whatever they accumulated from the previous engine.
func (f *Feed) Init(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return api.ErrEngineClosed
	}
	f.stopLocked(errReinitialized)

	eng, err := engine.NewIntOffset[diary.Food](ctx, f.opts.Config, f.loader, engine.Options{
		Observer:    f.opts.Observer,
		LoadTimeout: f.opts.LoadTimeout,
	})
	if err != nil {
		return fmt.Errorf("history feed: %w", err)
	}

	f.results.Publish(api.Progress[diary.Food](api.DirectionRestart))

	fwdCtx, stop := context.WithCancel(context.Background())
	sub := eng.Results(fwdCtx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for r := range sub.C() {
			f.results.Publish(r)
		}
	}()

	f.eng = eng
	f.stopFwd = stop
	f.fwdDone = done
	f.inits++

	return eng.LoadNextPage(ctx)
}

// stopLocked cancels the current engine and waits for its forwarder.
// Results the old engine published before cancellation are still forwarded.
func (f *Feed) stopLocked(cause error) {
	if f.eng == nil {
		return
	}
	f.eng.Cancel(cause)
	<-f.eng.Done()
	<-f.fwdDone
	f.stopFwd()

	f.eng = nil
	f.stopFwd = nil
	f.fwdDone = nil
}

func (f *Feed) current() (*engine.Engine[int, diary.Food], error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, api.ErrEngineClosed
	}
	if f.eng == nil {
		return nil, ErrNotInitialized
	}
	return f.eng, nil
}

// LoadNextPage asks the current engine for the next page.
func (f *Feed) LoadNextPage(ctx context.Context) error {
	eng, err := f.current()
	if err != nil {
		return err
	}
	return eng.LoadNextPage(ctx)
}

// Refresh reloads the history from the newest entry.
func (f *Feed) Refresh(ctx context.Context) error {
	eng, err := f.current()
	if err != nil {
		return err
	}
	return eng.Refresh(ctx)
}

// Results subscribes to the forwarded result stream.
func (f *Feed) Results(ctx context.Context) *stream.Subscription[api.Result[diary.Food]] {
	return f.results.Subscribe(ctx)
}

// Config returns the paging configuration the feed's engines use.
func (f *Feed) Config() api.Config[int] {
	return f.opts.Config
}

// Initializations counts successful Init calls.
func (f *Feed) Initializations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inits
}

// Close stops the current engine and closes the result stream. It is
// idempotent.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}
	f.closed = true
	f.stopLocked(errFeedClosed)
	f.results.Close()
}
