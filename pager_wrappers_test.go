package pager

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func words(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("w%02d", i)
	}
	return out
}

func nextOutcome[V any](t *testing.T, sub *Subscription[Result[V]]) Result[V] {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case r, ok := <-sub.C():
			require.True(t, ok, "result stream closed")
			if !r.IsProgress() {
				return r
			}
		case <-deadline:
			t.Fatalf("timed out waiting for a result")
		}
	}
}

func TestPager_IntOffsetEngineWrapper(t *testing.T) {
	ctx := context.Background()
	data := words(13)
	loader := DataLoaderFunc[int, string](func(ctx context.Context, _ Direction, limit int, offset int) ([]string, error) {
		end := offset + limit
		if end > len(data) {
			end = len(data)
		}
		if offset >= end {
			return []string{}, nil
		}
		return data[offset:end], nil
	})

	eng, err := NewIntOffsetEngine[string](ctx, Config[int]{Limit: 5, FirstLimit: 8}, loader)
	require.NoError(t, err)
	defer eng.Cancel(nil)

	results := eng.Results(ctx)
	defer results.Close()

	require.NoError(t, eng.LoadNextPage(ctx))
	r := nextOutcome(t, results)
	require.Len(t, r.Items, 8)
	require.True(t, r.HasMore)

	require.NoError(t, eng.LoadNextPage(ctx))
	r = nextOutcome(t, results)
	require.Equal(t, data[8:], r.Items)
	require.True(t, r.HasMore)
	require.Equal(t, 13, eng.CurrentOffset())

	require.NoError(t, eng.PerformAction(ctx, ActionRefresh))
	r = nextOutcome(t, results)
	require.Equal(t, DirectionRestart, r.Direction)
	require.Len(t, r.Items, 8)

	require.ErrorIs(t, eng.PerformAction(ctx, Action("jump")), ErrUnknownAction)
}

func TestPager_KeysetEngineWrapper(t *testing.T) {
	ctx := context.Background()
	data := words(7)
	loader := DataLoaderFunc[string, string](func(ctx context.Context, _ Direction, limit int, after string) ([]string, error) {
		var page []string
		for _, w := range data {
			if strings.Compare(w, after) > 0 && len(page) < limit {
				page = append(page, w)
			}
		}
		return page, nil
	})

	eng, err := NewKeysetEngine[string, string](ctx, Config[string]{Limit: 4}, loader, func(w string) string { return w })
	require.NoError(t, err)
	defer eng.Cancel(nil)

	results := eng.Results(ctx)
	defer results.Close()

	require.NoError(t, eng.LoadNextPage(ctx))
	require.Equal(t, data[:4], nextOutcome(t, results).Items)
	require.Equal(t, "w03", eng.CurrentOffset())

	require.NoError(t, eng.LoadNextPage(ctx))
	r := nextOutcome(t, results)
	require.Equal(t, data[4:], r.Items)
	require.False(t, r.HasMore)
}

func TestPager_EngineWithOptionsObserver(t *testing.T) {
	ctx := context.Background()
	metrics := &BasicMetrics{}
	loader := DataLoaderFunc[int, int](func(ctx context.Context, _ Direction, limit int, offset int) ([]int, error) {
		return nil, nil
	})

	eng, err := NewEngineWithOptions[int, int](ctx, Config[int]{Limit: 3}, loader, IntOffsetPolicy[int]{}, EngineOptions{
		Observer: NewCompositeObserver(NewLoggingObserver(nil), metrics),
	})
	require.NoError(t, err)
	defer eng.Cancel(nil)

	results := eng.Results(ctx)
	defer results.Close()

	require.NoError(t, eng.LoadNextPage(ctx))
	r := nextOutcome(t, results)
	require.NotNil(t, r.Items, "a nil page is reported as an empty slice")
	require.Empty(t, r.Items)
	require.False(t, r.HasMore)

	require.Equal(t, int64(1), metrics.Snapshot().LoadsCompleted)
}

func TestPager_NewEngineValidates(t *testing.T) {
	loader := DataLoaderFunc[int, int](func(ctx context.Context, _ Direction, limit int, offset int) ([]int, error) {
		return nil, nil
	})
	_, err := NewEngine[int, int](context.Background(), Config[int]{}, loader, IntOffsetPolicy[int]{})
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestPager_StoreWrappersAndDrain(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryFoodStore()

	day := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 21; i++ {
		_, err := store.Insert(ctx, Food{Name: "bite", Calories: 10, Protein: 1, CreatedAt: day.Add(time.Duration(i) * time.Minute)})
		require.NoError(t, err)
	}

	items, err := DrainHistory(ctx, store)
	require.NoError(t, err)
	require.Len(t, items, 21)

	stats, err := store.DailyStats(ctx, DayRange(day, time.UTC))
	require.NoError(t, err)
	require.Equal(t, 210, stats.TotalCalories)

	_, err = store.Get(ctx, 9999)
	require.ErrorIs(t, err, ErrEntryNotFound)

	require.Equal(t, 10, DefaultHistoryConfig().Limit)
	page, err := NewHistoryLoader(store).LoadData(ctx, DirectionAppend, 5, 20)
	require.NoError(t, err)
	require.Len(t, page, 1)
}

func TestPager_LoaderDecorators(t *testing.T) {
	ctx := context.Background()
	var calls int
	failing := DataLoaderFunc[int, int](func(ctx context.Context, _ Direction, limit int, offset int) ([]int, error) {
		calls++
		return nil, errors.New("database is locked")
	})

	loader := WithRateLimit(WithCircuitBreaker(WithRetry[int, int](failing, Retry(2).Policy()), BreakerPolicy{ConsecutiveFailures: 1, OpenTimeout: time.Hour}), rate.NewLimiter(rate.Inf, 1))

	_, err := loader.LoadData(ctx, DirectionAppend, 10, 0)
	require.EqualError(t, err, "database is locked")
	require.Equal(t, 2, calls)

	_, err = loader.LoadData(ctx, DirectionAppend, 10, 0)
	require.ErrorIs(t, err, ErrBreakerOpen)
	require.Equal(t, 2, calls)
}
