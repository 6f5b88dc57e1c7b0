package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/petrijr/pager/pkg/diary"
)

// baseTime is millisecond aligned so round trips compare equal.
var baseTime = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func sampleFood(name string, at time.Time) diary.Food {
	return diary.Food{
		Name:      name,
		Calories:  120.5,
		Protein:   4,
		Carbs:     20.25,
		Fats:      2.5,
		CreatedAt: at,
	}
}

// runStoreContract exercises the behaviour every diary.Store must share.
// newStore must return an empty store.
func runStoreContract(t *testing.T, newStore func(t *testing.T) diary.Store) {
	ctx := context.Background()

	t.Run("InsertGet", func(t *testing.T) {
		s := newStore(t)

		in := sampleFood("Oatmeal", baseTime.Add(1500*time.Microsecond))
		id, err := s.Insert(ctx, in)
		require.NoError(t, err)
		require.NotZero(t, id)

		got, err := s.Get(ctx, id)
		require.NoError(t, err)

		want := in
		want.ID = id
		want.CreatedAt = baseTime.Add(time.Millisecond)
		require.Equal(t, want, got)

		id2, err := s.Insert(ctx, sampleFood("Apple", baseTime))
		require.NoError(t, err)
		require.NotEqual(t, id, id2)
	})

	t.Run("InsertInvalid", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Insert(ctx, diary.Food{Name: "", CreatedAt: baseTime})
		require.ErrorIs(t, err, diary.ErrInvalidEntry)
	})

	t.Run("InsertExplicitIDReplaces", func(t *testing.T) {
		s := newStore(t)

		f := sampleFood("Rice", baseTime)
		f.ID = 42
		id, err := s.Insert(ctx, f)
		require.NoError(t, err)
		require.Equal(t, int64(42), id)

		f.Name = "Brown rice"
		_, err = s.Insert(ctx, f)
		require.NoError(t, err)

		got, err := s.Get(ctx, 42)
		require.NoError(t, err)
		require.Equal(t, "Brown rice", got.Name)

		n, err := s.CountAll(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, n)
	})

	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(ctx, 999)
		require.ErrorIs(t, err, diary.ErrEntryNotFound)
	})

	t.Run("Update", func(t *testing.T) {
		s := newStore(t)

		id, err := s.Insert(ctx, sampleFood("Egg", baseTime))
		require.NoError(t, err)

		upd := sampleFood("Two eggs", baseTime.Add(time.Minute))
		upd.ID = id
		upd.Calories = 155
		require.NoError(t, s.Update(ctx, upd))

		got, err := s.Get(ctx, id)
		require.NoError(t, err)
		require.Equal(t, upd, got)

		missing := upd
		missing.ID = id + 100
		require.ErrorIs(t, s.Update(ctx, missing), diary.ErrEntryNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		s := newStore(t)

		var ids []int64
		for i := 0; i < 4; i++ {
			id, err := s.Insert(ctx, sampleFood("item", baseTime.Add(time.Duration(i)*time.Second)))
			require.NoError(t, err)
			ids = append(ids, id)
		}

		require.NoError(t, s.Delete(ctx, ids[0]))
		require.NoError(t, s.Delete(ctx, ids[0]), "delete is idempotent")
		_, err := s.Get(ctx, ids[0])
		require.ErrorIs(t, err, diary.ErrEntryNotFound)

		require.NoError(t, s.DeleteMany(ctx, ids[1:3]))
		require.NoError(t, s.DeleteMany(ctx, nil))

		all, err := s.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		require.Equal(t, ids[3], all[0].ID)
	})

	t.Run("ListOrderNewestFirst", func(t *testing.T) {
		s := newStore(t)

		older, err := s.Insert(ctx, sampleFood("older", baseTime))
		require.NoError(t, err)
		newest, err := s.Insert(ctx, sampleFood("newest", baseTime.Add(time.Hour)))
		require.NoError(t, err)
		tie, err := s.Insert(ctx, sampleFood("tie", baseTime))
		require.NoError(t, err)

		all, err := s.ListAll(ctx)
		require.NoError(t, err)
		require.Equal(t, []int64{newest, tie, older}, foodIDs(all))
	})

	t.Run("ListPaginated", func(t *testing.T) {
		s := newStore(t)

		for i := 0; i < 23; i++ {
			_, err := s.Insert(ctx, sampleFood("entry", baseTime.Add(time.Duration(i)*time.Minute)))
			require.NoError(t, err)
		}
		all, err := s.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 23)

		var paged []diary.Food
		for _, want := range []int{10, 10, 3, 0} {
			page, err := s.ListPaginated(ctx, len(paged), 10)
			require.NoError(t, err)
			require.NotNil(t, page)
			require.Len(t, page, want)
			paged = append(paged, page...)
		}
		require.Equal(t, foodIDs(all), foodIDs(paged))

		page, err := s.ListPaginated(ctx, 100, 10)
		require.NoError(t, err)
		require.Empty(t, page)

		n, err := s.CountAll(ctx)
		require.NoError(t, err)
		require.Equal(t, 23, n)
	})

	t.Run("DailyStats", func(t *testing.T) {
		s := newStore(t)

		day := diary.DayRange(baseTime, time.UTC)
		for _, f := range []diary.Food{
			{Name: "breakfast", Calories: 300.7, Protein: 10, Carbs: 40, Fats: 8, CreatedAt: day.Start},
			{Name: "dinner", Calories: 500.6, Protein: 30, Carbs: 50, Fats: 20, CreatedAt: day.End},
			{Name: "yesterday", Calories: 999, Protein: 99, Carbs: 99, Fats: 99, CreatedAt: day.Start.Add(-time.Millisecond)},
			{Name: "tomorrow", Calories: 999, Protein: 99, Carbs: 99, Fats: 99, CreatedAt: day.End.Add(time.Millisecond)},
		} {
			_, err := s.Insert(ctx, f)
			require.NoError(t, err)
		}

		stats, err := s.DailyStats(ctx, day)
		require.NoError(t, err)
		require.Equal(t, 801, stats.TotalCalories)
		require.InDelta(t, 40.0, stats.Protein, 1e-9)
		require.InDelta(t, 90.0, stats.Carbs, 1e-9)
		require.InDelta(t, 28.0, stats.Fat, 1e-9)

		empty, err := s.DailyStats(ctx, diary.DayRange(baseTime.AddDate(1, 0, 0), time.UTC))
		require.NoError(t, err)
		require.Equal(t, diary.DailyStats{}, empty)
	})
}

func foodIDs(entries []diary.Food) []int64 {
	ids := make([]int64, len(entries))
	for i, f := range entries {
		ids[i] = f.ID
	}
	return ids
}
