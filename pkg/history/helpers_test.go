package history

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/petrijr/pager/internal/persistence"
	"github.com/petrijr/pager/internal/stream"
	"github.com/petrijr/pager/pkg/api"
	"github.com/petrijr/pager/pkg/diary"
)

var seedTime = time.Date(2024, 6, 1, 7, 0, 0, 0, time.UTC)

// seededStore returns a memory store holding n entries, one minute apart.
// Entry i is named "food-<i>", so the newest is food-(n-1).
func seededStore(t *testing.T, n int) *persistence.MemoryStore {
	t.Helper()
	s := persistence.NewMemoryStore()
	for i := 0; i < n; i++ {
		_, err := s.Insert(context.Background(), diary.Food{
			Name:      foodName(i),
			Calories:  float64(100 + i),
			CreatedAt: seedTime.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}
	return s
}

func foodName(i int) string {
	return "food-" + string(rune('a'+i))
}

// fold reduces results from sub into st until until returns true.
// At least one result is consumed.
func fold(t *testing.T, sub *stream.Subscription[api.Result[diary.Food]], st State[diary.Food], until func(State[diary.Food]) bool) State[diary.Food] {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case r, ok := <-sub.C():
			require.True(t, ok, "result stream closed")
			st = st.Reduce(r)
			if until(st) {
				return st
			}
		case <-deadline:
			t.Fatalf("timed out folding results, state so far: %d items, loading=%v", len(st.Items), st.Loading)
		}
	}
}

func settled(n int) func(State[diary.Food]) bool {
	return func(s State[diary.Food]) bool {
		return !s.Loading && len(s.Items) == n
	}
}

func names(items []diary.Food) []string {
	out := make([]string, len(items))
	for i, f := range items {
		out[i] = f.Name
	}
	return out
}

// flakyStore fails the first failures ListPaginated calls.
type flakyStore struct {
	diary.Store

	mu       sync.Mutex
	failures int
	calls    int
}

func (s *flakyStore) ListPaginated(ctx context.Context, offset, limit int) ([]diary.Food, error) {
	s.mu.Lock()
	s.calls++
	fail := s.calls <= s.failures
	s.mu.Unlock()

	if fail {
		return nil, errFlaky
	}
	return s.Store.ListPaginated(ctx, offset, limit)
}

var errFlaky = errors.New("store temporarily unavailable")
