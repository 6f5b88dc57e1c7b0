package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/petrijr/pager/internal/actionqueue"
	"github.com/petrijr/pager/internal/stream"
	"github.com/petrijr/pager/pkg/api"
)

// Options describes optional engine wiring.
// Only used inside this module; external callers use the helper functions.
type Options struct {
	// Observer receives load lifecycle callbacks. Defaults to NoopObserver.
	Observer api.Observer

	// LoadTimeout bounds each loader call when positive. Zero means the
	// loader may run for as long as the engine scope is alive.
	LoadTimeout time.Duration

	// Queue overrides the action mailbox. Defaults to an InMemoryQueue.
	// The engine takes ownership and closes it on shutdown.
	Queue actionqueue.Queue
}

// Engine serializes paging actions, invokes the loader, tracks the committed
// offset and republishes results.
//
// All mutable state (the offset and both streams) is written only by the
// processing goroutine started in New, so actions never overlap: each one is
// fully processed, including the loader call, before the next is dequeued.
type Engine[K comparable, V any] struct {
	cfg         api.Config[K]
	loader      api.DataLoader[K, V]
	policy      api.OffsetPolicy[K, V]
	observer    api.Observer
	loadTimeout time.Duration

	queue   actionqueue.Queue
	results *stream.Replay[api.Result[V]]
	offsets *stream.Replay[K]

	// current is owned by the processing goroutine.
	current K

	ctx     context.Context
	cancel  context.CancelCauseFunc
	stopped chan struct{}
}

// New validates cfg, starts the processing goroutine inside a scope derived
// from ctx and returns the engine. Cancelling ctx has the same effect as
// calling Cancel.
func New[K comparable, V any](
	ctx context.Context,
	cfg api.Config[K],
	loader api.DataLoader[K, V],
	policy api.OffsetPolicy[K, V],
	opts Options,
) (*Engine[K, V], error) {
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if loader == nil {
		return nil, fmt.Errorf("%w: data loader is required", api.ErrInvalidConfig)
	}
	if policy == nil {
		return nil, fmt.Errorf("%w: offset policy is required", api.ErrInvalidConfig)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	obs := opts.Observer
	if obs == nil {
		obs = api.NoopObserver{}
	}
	q := opts.Queue
	if q == nil {
		q = actionqueue.NewInMemoryQueue()
	}

	scope, cancel := context.WithCancelCause(ctx)
	e := &Engine[K, V]{
		cfg:         cfg,
		loader:      loader,
		policy:      policy,
		observer:    obs,
		loadTimeout: opts.LoadTimeout,
		queue:       q,
		results:     stream.NewReplay[api.Result[V]](),
		offsets:     stream.NewReplayWith(cfg.InitialOffset),
		current:     cfg.InitialOffset,
		ctx:         scope,
		cancel:      cancel,
		stopped:     make(chan struct{}),
	}

	go e.run()
	return e, nil
}

// NewIntOffset returns an engine for count-based integer offsets.
func NewIntOffset[V any](
	ctx context.Context,
	cfg api.Config[int],
	loader api.DataLoader[int, V],
	opts Options,
) (*Engine[int, V], error) {
	return New[int, V](ctx, cfg, loader, api.IntOffsetPolicy[V]{}, opts)
}

// Config returns the normalized configuration.
func (e *Engine[K, V]) Config() api.Config[K] {
	return e.cfg
}

// PerformAction queues action and returns without waiting for it to be
// processed. It returns api.ErrEngineClosed once the engine is cancelled.
func (e *Engine[K, V]) PerformAction(ctx context.Context, action api.Action) error {
	if !action.Valid() {
		return fmt.Errorf("%w: %q", api.ErrUnknownAction, string(action))
	}
	if e.ctx.Err() != nil {
		return api.ErrEngineClosed
	}
	if err := e.queue.Enqueue(ctx, action); err != nil {
		if errors.Is(err, actionqueue.ErrQueueClosed) {
			return api.ErrEngineClosed
		}
		return err
	}
	e.observer.OnActionQueued(ctx, action)
	return nil
}

// LoadNextPage is shorthand for PerformAction(ctx, api.ActionLoadNextPage).
func (e *Engine[K, V]) LoadNextPage(ctx context.Context) error {
	return e.PerformAction(ctx, api.ActionLoadNextPage)
}

// Refresh is shorthand for PerformAction(ctx, api.ActionRefresh).
func (e *Engine[K, V]) Refresh(ctx context.Context) error {
	return e.PerformAction(ctx, api.ActionRefresh)
}

// Results subscribes to the result stream. The latest result, if any, is
// delivered first. The subscription channel closes when ctx is done or after
// the engine has stopped and all pending results were delivered.
func (e *Engine[K, V]) Results(ctx context.Context) *stream.Subscription[api.Result[V]] {
	return e.results.Subscribe(ctx)
}

// LatestResult returns the most recently published result.
func (e *Engine[K, V]) LatestResult() (api.Result[V], bool) {
	return e.results.Latest()
}

// Offsets subscribes to committed offset changes, starting with the current one.
func (e *Engine[K, V]) Offsets(ctx context.Context) *stream.Subscription[K] {
	return e.offsets.Subscribe(ctx)
}

// CurrentOffset returns the committed offset.
func (e *Engine[K, V]) CurrentOffset() K {
	k, _ := e.offsets.Latest()
	return k
}

// Pending returns the number of queued, not yet started actions.
func (e *Engine[K, V]) Pending() int {
	return e.queue.Len()
}

// Cancel terminates the engine scope. Queued actions are discarded and no
// further results or offsets are published, including for a load that is
// still running. Cancel is idempotent; only the first cause is kept.
func (e *Engine[K, V]) Cancel(cause error) {
	e.cancel(cause)
}

// Done is closed once the processing goroutine has exited and both streams
// are closed.
func (e *Engine[K, V]) Done() <-chan struct{} {
	return e.stopped
}

// Err returns nil while the engine is running and the cancellation cause
// (context.Canceled when none was given) afterwards.
func (e *Engine[K, V]) Err() error {
	if e.ctx.Err() == nil {
		return nil
	}
	return context.Cause(e.ctx)
}

func (e *Engine[K, V]) run() {
	defer e.shutdown()

	for {
		action, err := e.queue.Dequeue(e.ctx)
		if err != nil {
			// Cancellation or a closed queue: either way the engine is done.
			return
		}
		if e.ctx.Err() != nil {
			return
		}
		e.loadPortion(action.Direction())
	}
}

func (e *Engine[K, V]) shutdown() {
	e.cancel(nil)
	e.queue.Close()
	e.results.Close()
	e.offsets.Close()
	close(e.stopped)
}

func (e *Engine[K, V]) loadPortion(dir api.Direction) {
	if dir == api.DirectionRestart {
		e.commitOffset(e.cfg.InitialOffset)
	}
	e.results.Publish(api.Progress[V](dir))

	limit := e.cfg.Limit
	if e.current == e.cfg.InitialOffset {
		limit = e.cfg.FirstLimit
	}
	requestOffset := e.current

	info := api.LoadInfo{Direction: dir, Limit: limit, Offset: requestOffset}
	e.observer.OnLoadStart(e.ctx, info)

	start := time.Now()
	items, err := e.invoke(dir, limit, requestOffset)
	elapsed := time.Since(start)

	if e.ctx.Err() != nil {
		return
	}

	if err != nil {
		e.observer.OnLoadFailed(e.ctx, info, err, elapsed)
		e.results.Publish(api.Failure[V](dir, err))
		return
	}

	if items == nil {
		items = make([]V, 0)
	}
	e.commitOffset(e.policy.NewOffset(requestOffset, items))
	hasMore := e.policy.HasMore(dir, limit, requestOffset, items)

	e.observer.OnLoadCompleted(e.ctx, info, len(items), hasMore, elapsed)
	e.results.Publish(api.Data(items, dir, hasMore))
}

// invoke calls the loader, converting a panic into a LoaderPanicError so the
// processing goroutine survives a misbehaving loader.
func (e *Engine[K, V]) invoke(dir api.Direction, limit int, offset K) (items []V, err error) {
	ctx := e.ctx
	if e.loadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.loadTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			items = nil
			err = &api.LoaderPanicError{Value: r, Stack: debug.Stack()}
		}
	}()

	return e.loader.LoadData(ctx, dir, limit, offset)
}

// commitOffset stores k and publishes it when it differs from the current value.
func (e *Engine[K, V]) commitOffset(k K) {
	if k == e.current {
		return
	}
	e.current = k
	e.offsets.Publish(k)
}
