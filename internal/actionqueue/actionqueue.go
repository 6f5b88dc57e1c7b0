// Package actionqueue provides the mailbox that serializes paging actions
// for a single engine.
package actionqueue

import (
	"context"
	"errors"

	"github.com/petrijr/pager/pkg/api"
)

// ErrQueueClosed is returned by Enqueue and Dequeue after Close.
var ErrQueueClosed = errors.New("action queue closed")

// Queue is a FIFO of paging actions with a single consumer.
type Queue interface {
	// Enqueue adds an action to the queue. It does not wait for the action
	// to be processed.
	Enqueue(ctx context.Context, a api.Action) error

	// Dequeue removes and returns the next action, blocking until one is
	// available, the queue is closed, or the context is cancelled.
	Dequeue(ctx context.Context) (api.Action, error)

	// Len returns the number of queued actions.
	Len() int

	// Close rejects further actions and discards pending ones. It is idempotent.
	Close()
}
