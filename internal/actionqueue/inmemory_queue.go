package actionqueue

import (
	"context"
	"sync"

	"github.com/petrijr/pager/pkg/api"
)

// InMemoryQueue is an unbounded FIFO guarded by a mutex. Enqueue never
// blocks, so every action submitted before the consumer starts survives.
// It is safe for concurrent use.
type InMemoryQueue struct {
	mu      sync.Mutex
	pending []api.Action
	closed  bool

	// ready holds a token whenever pending may be non-empty.
	ready  chan struct{}
	closeC chan struct{}
}

// NewInMemoryQueue creates an empty queue.
func NewInMemoryQueue() *InMemoryQueue {
	return &InMemoryQueue{
		ready:  make(chan struct{}, 1),
		closeC: make(chan struct{}),
	}
}

// Ensure InMemoryQueue implements Queue.
var _ Queue = (*InMemoryQueue)(nil)

func (q *InMemoryQueue) Enqueue(ctx context.Context, a api.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.pending = append(q.pending, a)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
	return nil
}

func (q *InMemoryQueue) Dequeue(ctx context.Context) (api.Action, error) {
	for {
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return "", ErrQueueClosed
		}
		if len(q.pending) > 0 {
			a := q.pending[0]
			q.pending = q.pending[1:]
			more := len(q.pending) > 0
			q.mu.Unlock()
			if more {
				select {
				case q.ready <- struct{}{}:
				default:
				}
			}
			return a, nil
		}
		q.mu.Unlock()

		select {
		case <-q.ready:
		case <-q.closeC:
			return "", ErrQueueClosed
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

func (q *InMemoryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *InMemoryQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	q.pending = nil
	close(q.closeC)
}
