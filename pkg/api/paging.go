package api

import (
	"fmt"
)

// Direction describes what a load means for the list being built.
type Direction string

const (
	// DirectionAppend loads the next portion and appends it to the existing list.
	DirectionAppend Direction = "append"
	// DirectionRestart starts over from the initial offset.
	DirectionRestart Direction = "restart"
)

func (d Direction) String() string { return string(d) }

// Action is a caller-issued paging request.
type Action string

const (
	ActionLoadNextPage Action = "load-next-page"
	ActionRefresh      Action = "refresh"
)

func (a Action) String() string { return string(a) }

// Valid reports whether a is one of the known actions.
func (a Action) Valid() bool {
	return a == ActionLoadNextPage || a == ActionRefresh
}

// Direction returns the load direction an action is processed with.
func (a Action) Direction() Direction {
	if a == ActionRefresh {
		return DirectionRestart
	}
	return DirectionAppend
}

// Config describes how pages are requested.
//
// InitialOffset is where paging starts (and restarts). Limit is the page size
// for every page after the first one. FirstLimit is the page size used
// whenever the cursor sits at InitialOffset; zero means "same as Limit".
type Config[K comparable] struct {
	InitialOffset K
	Limit         int
	FirstLimit    int
}

// NewConfig returns a Config whose first page has the same size as the others.
func NewConfig[K comparable](initialOffset K, limit int) Config[K] {
	return Config[K]{
		InitialOffset: initialOffset,
		Limit:         limit,
		FirstLimit:    limit,
	}
}

// WithFirstLimit returns a copy of c with a different first page size.
func (c Config[K]) WithFirstLimit(n int) Config[K] {
	c.FirstLimit = n
	return c
}

// Normalize fills defaulted fields.
func (c Config[K]) Normalize() Config[K] {
	if c.FirstLimit == 0 {
		c.FirstLimit = c.Limit
	}
	return c
}

// Validate checks that the page sizes are usable.
func (c Config[K]) Validate() error {
	if c.Limit <= 0 {
		return fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidConfig, c.Limit)
	}
	if c.FirstLimit < 0 {
		return fmt.Errorf("%w: first limit must not be negative, got %d", ErrInvalidConfig, c.FirstLimit)
	}
	return nil
}

// ResultKind identifies which variant a Result carries.
type ResultKind string

const (
	ResultProgress ResultKind = "progress"
	ResultData     ResultKind = "data"
	ResultError    ResultKind = "error"
)

// Result is one event on an engine's result stream.
//
//   - Progress: a load in Direction is in flight.
//   - Data: the load succeeded; Items holds the page and HasMore tells whether
//     another page is likely available.
//   - Error: the load failed with Err. The committed offset did not move.
type Result[V any] struct {
	Kind      ResultKind
	Direction Direction
	Items     []V
	HasMore   bool
	Err       error
}

// Progress builds a progress result.
func Progress[V any](dir Direction) Result[V] {
	return Result[V]{Kind: ResultProgress, Direction: dir}
}

// Data builds a successful page result.
func Data[V any](items []V, dir Direction, hasMore bool) Result[V] {
	return Result[V]{Kind: ResultData, Direction: dir, Items: items, HasMore: hasMore}
}

// Failure builds an error result.
func Failure[V any](dir Direction, err error) Result[V] {
	return Result[V]{Kind: ResultError, Direction: dir, Err: err}
}

func (r Result[V]) IsProgress() bool { return r.Kind == ResultProgress }
func (r Result[V]) IsData() bool     { return r.Kind == ResultData }
func (r Result[V]) IsError() bool    { return r.Kind == ResultError }

func (r Result[V]) String() string {
	switch r.Kind {
	case ResultData:
		return fmt.Sprintf("Data(%d items, %s, hasMore=%t)", len(r.Items), r.Direction, r.HasMore)
	case ResultError:
		return fmt.Sprintf("Error(%s, %v)", r.Direction, r.Err)
	default:
		return fmt.Sprintf("Progress(%s)", r.Direction)
	}
}
