package history

import (
	"context"

	"github.com/petrijr/pager/pkg/api"
	"github.com/petrijr/pager/pkg/diary"
)

// DefaultConfig is the paging configuration of the food history screen.
func DefaultConfig() api.Config[int] {
	return api.Config[int]{
		InitialOffset: 0,
		Limit:         10,
		FirstLimit:    10,
	}
}

// NewLoader adapts store to the engine's loader contract. The direction is
// irrelevant to the query: a restart simply asks for offset zero again.
func NewLoader(store diary.Store) api.DataLoader[int, diary.Food] {
	return api.DataLoaderFunc[int, diary.Food](func(ctx context.Context, _ api.Direction, limit int, offset int) ([]diary.Food, error) {
		return store.ListPaginated(ctx, offset, limit)
	})
}
