package diary

import (
	"context"
	"sort"
)

// Store persists food entries.
//
// ListPaginated returns entries newest first (created_at DESC, id DESC) so
// the order is stable across pages even when timestamps collide. An offset
// past the end yields an empty slice, not an error.
type Store interface {
	// Insert stores f and returns the assigned id. A zero f.ID asks the
	// store to allocate one; a non-zero id replaces any existing entry.
	Insert(ctx context.Context, f Food) (int64, error)
	Update(ctx context.Context, f Food) error
	Get(ctx context.Context, id int64) (Food, error)
	// Delete is idempotent.
	Delete(ctx context.Context, id int64) error
	DeleteMany(ctx context.Context, ids []int64) error
	ListAll(ctx context.Context) ([]Food, error)
	ListPaginated(ctx context.Context, offset, limit int) ([]Food, error)
	CountAll(ctx context.Context) (int, error)
	DailyStats(ctx context.Context, r TimeRange) (DailyStats, error)
}

// SortNewestFirst orders entries the way ListPaginated does.
func SortNewestFirst(entries []Food) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}

// Window clamps [offset, offset+limit) to n, for stores that page in memory.
func Window(n, offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	end := offset + limit
	if limit < 0 || end > n {
		end = n
	}
	return offset, end
}
