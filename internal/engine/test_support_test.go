package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/petrijr/pager/internal/stream"
	"github.com/petrijr/pager/pkg/api"
)

// loadCall records one loader invocation.
type loadCall struct {
	Direction api.Direction
	Limit     int
	Offset    int
}

// sliceLoader serves pages out of a fixed backing slice and records every call.
type sliceLoader struct {
	mu      sync.Mutex
	backing []int
	calls   []loadCall

	// failOn makes the call with this 1-based index return errLoad.
	failOn int

	// delay is slept inside every call.
	delay time.Duration

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

var errLoad = errors.New("load failed")

func newSliceLoader(n int) *sliceLoader {
	backing := make([]int, n)
	for i := range backing {
		backing[i] = i
	}
	return &sliceLoader{backing: backing}
}

func (l *sliceLoader) LoadData(ctx context.Context, dir api.Direction, limit int, offset int) ([]int, error) {
	n := l.inFlight.Add(1)
	defer l.inFlight.Add(-1)
	for {
		cur := l.maxInFlight.Load()
		if n <= cur || l.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}

	if l.delay > 0 {
		time.Sleep(l.delay)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls = append(l.calls, loadCall{Direction: dir, Limit: limit, Offset: offset})
	if l.failOn == len(l.calls) {
		return nil, errLoad
	}

	if offset >= len(l.backing) {
		return []int{}, nil
	}
	end := offset + limit
	if end > len(l.backing) {
		end = len(l.backing)
	}
	page := make([]int, end-offset)
	copy(page, l.backing[offset:end])
	return page, nil
}

func (l *sliceLoader) Calls() []loadCall {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]loadCall, len(l.calls))
	copy(out, l.calls)
	return out
}

func newIntEngine(t *testing.T, cfg api.Config[int], loader api.DataLoader[int, int], opts Options) *Engine[int, int] {
	t.Helper()

	eng, err := NewIntOffset[int](context.Background(), cfg, loader, opts)
	require.NoError(t, err)
	t.Cleanup(func() {
		eng.Cancel(nil)
		<-eng.Done()
	})
	return eng
}

func next[T any](t *testing.T, sub *stream.Subscription[T]) T {
	t.Helper()
	select {
	case v, ok := <-sub.C():
		require.True(t, ok, "stream closed unexpectedly")
		return v
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for stream value")
	}
	var zero T
	return zero
}

// nextOutcome skips Progress results and returns the next Data or Error.
func nextOutcome[V any](t *testing.T, sub *stream.Subscription[api.Result[V]]) api.Result[V] {
	t.Helper()
	for {
		r := next(t, sub)
		if !r.IsProgress() {
			return r
		}
	}
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatalf("engine did not stop")
	}
}
