// Package stream implements a hot, multicast value stream that replays the
// most recent value to every new subscriber.
package stream

import (
	"context"
	"sync"
)

// Replay is a broadcast subject with replay-of-one semantics.
//
// Publish never blocks on subscribers: every subscription owns an unbounded
// mailbox drained by its own goroutine. Values reach each subscriber in
// publish order. A Replay is safe for concurrent use, although the paging
// engine only ever publishes from a single goroutine.
type Replay[T any] struct {
	mu     sync.Mutex
	latest T
	has    bool
	closed bool
	subs   map[*Subscription[T]]struct{}
}

// NewReplay returns an empty subject.
func NewReplay[T any]() *Replay[T] {
	return &Replay[T]{subs: make(map[*Subscription[T]]struct{})}
}

// NewReplayWith returns a subject that already holds initial as its latest value.
func NewReplayWith[T any](initial T) *Replay[T] {
	r := NewReplay[T]()
	r.latest = initial
	r.has = true
	return r
}

// Publish stores v as the latest value and delivers it to all subscribers.
// It returns false once the subject is closed.
func (r *Replay[T]) Publish(v T) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return false
	}
	r.latest = v
	r.has = true
	for s := range r.subs {
		s.push(v)
	}
	return true
}

// Latest returns the most recently published value.
func (r *Replay[T]) Latest() (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest, r.has
}

// Close stops accepting values. Subscribers receive what is already in their
// mailbox, then their channel is closed. The latest value is kept, so later
// subscribers still observe it before their channel closes.
func (r *Replay[T]) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true
	for s := range r.subs {
		s.end()
	}
}

// Closed reports whether Close has been called.
func (r *Replay[T]) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Subscribers returns the number of attached subscriptions.
func (r *Replay[T]) Subscribers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

// Subscribe attaches a new subscriber. The latest value, if any, is the first
// value delivered. The subscription ends when ctx is done, when Close is
// called on it, or after the subject is closed and the mailbox is drained.
func (r *Replay[T]) Subscribe(ctx context.Context) *Subscription[T] {
	s := &Subscription[T]{
		parent: r,
		notify: make(chan struct{}, 1),
		out:    make(chan T),
		done:   make(chan struct{}),
	}

	r.mu.Lock()
	if r.has {
		s.buf = append(s.buf, r.latest)
	}
	if r.closed {
		s.ended = true
	} else {
		r.subs[s] = struct{}{}
	}
	r.mu.Unlock()

	go s.forward(ctx)
	return s
}

func (r *Replay[T]) remove(s *Subscription[T]) {
	r.mu.Lock()
	delete(r.subs, s)
	r.mu.Unlock()
}

// Subscription is one subscriber's view of a Replay.
type Subscription[T any] struct {
	parent *Replay[T]

	mu    sync.Mutex
	buf   []T
	ended bool

	notify chan struct{}
	out    chan T
	done   chan struct{}
	once   sync.Once
}

// C returns the channel values are delivered on. It is closed when the
// subscription ends.
func (s *Subscription[T]) C() <-chan T {
	return s.out
}

// Close detaches the subscriber. Undelivered values are dropped.
func (s *Subscription[T]) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *Subscription[T]) push(v T) {
	s.mu.Lock()
	if !s.ended {
		s.buf = append(s.buf, v)
	}
	s.mu.Unlock()
	s.wake()
}

func (s *Subscription[T]) end() {
	s.mu.Lock()
	s.ended = true
	s.mu.Unlock()
	s.wake()
}

func (s *Subscription[T]) wake() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *Subscription[T]) forward(ctx context.Context) {
	defer close(s.out)
	defer s.parent.remove(s)

	var zero T
	for {
		s.mu.Lock()
		if len(s.buf) == 0 {
			ended := s.ended
			s.mu.Unlock()
			if ended {
				return
			}
			select {
			case <-s.notify:
				continue
			case <-ctx.Done():
				return
			case <-s.done:
				return
			}
		}
		v := s.buf[0]
		s.buf[0] = zero
		s.buf = s.buf[1:]
		s.mu.Unlock()

		select {
		case s.out <- v:
		case <-ctx.Done():
			return
		case <-s.done:
			return
		}
	}
}
