package history

import (
	"github.com/petrijr/pager/pkg/api"
)

// State is the list a paging consumer renders, folded from results.
type State[V any] struct {
	Items   []V
	HasMore bool
	Loading bool
	Err     error

	limit int
}

// NewState returns an empty state for pages of the given size.
func NewState[V any](limit int) State[V] {
	return State[V]{limit: limit}
}

// Reduce folds r into the state and returns the new state. s is not
// modified.
//
// Any restart result discards the accumulated items. Data appends its items
// and records HasMore; an error stops further automatic loads by clearing
// HasMore.
func (s State[V]) Reduce(r api.Result[V]) State[V] {
	next := s
	if r.Direction == api.DirectionRestart {
		next.Items = nil
	}

	switch r.Kind {
	case api.ResultProgress:
		next.Loading = true
	case api.ResultData:
		items := make([]V, 0, len(next.Items)+len(r.Items))
		items = append(items, next.Items...)
		items = append(items, r.Items...)
		next.Items = items
		next.HasMore = r.HasMore
		next.Loading = false
		next.Err = nil
	case api.ResultError:
		next.HasMore = false
		next.Loading = false
		next.Err = r.Err
	}
	return next
}

// NextOffsetToNotify returns the list index whose appearance should trigger
// the next page, one page before the end of the loaded items. ok is false
// when there is nothing more to load.
func (s State[V]) NextOffsetToNotify() (index int, ok bool) {
	if !s.HasMore {
		return 0, false
	}
	index = len(s.Items) - s.limit
	if index < 0 {
		index = 0
	}
	return index, true
}
