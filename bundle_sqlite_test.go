package pager

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// TestSQLiteHistoryBundle_DurableAcrossRestart shows that entries written
// through one bundle are paged, newest first, by a bundle opened later on
// the same database file.
func TestSQLiteHistoryBundle_DurableAcrossRestart(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbPath := filepath.Join(t.TempDir(), "diary_bundle.db")
	dsn := "file:" + dbPath + "?_journal=WAL"

	// --- Phase 1: write entries, then shut down.

	db1, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)

	bundle1, err := NewSQLiteHistoryBundle(db1, HistoryOptions{})
	require.NoError(t, err)

	base := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		_, err := bundle1.Store.Insert(ctx, Food{
			Name:      "meal",
			Calories:  float64(200 + i),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	bundle1.Close()
	require.NoError(t, db1.Close())

	// --- Phase 2: reopen and page everything.

	db2, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	defer db2.Close()

	bundle2, err := NewSQLiteHistoryBundle(db2, HistoryOptions{})
	require.NoError(t, err)
	defer bundle2.Close()

	runner := NewHistoryRunner(bundle2.Feed)
	require.NoError(t, runner.Start(ctx))
	defer runner.Stop()

	st, err := runner.WaitFor(ctx, func(s HistoryState) bool { return !s.Loading && len(s.Items) == 10 })
	require.NoError(t, err)
	require.True(t, st.HasMore)

	fired, err := runner.Visit(ctx, 0)
	require.NoError(t, err)
	require.True(t, fired)

	st, err = runner.WaitFor(ctx, func(s HistoryState) bool { return !s.Loading && !s.HasMore })
	require.NoError(t, err)
	require.Len(t, st.Items, 12)
	require.Equal(t, 211.0, st.Items[0].Calories)
	require.Equal(t, 200.0, st.Items[11].Calories)

	snap := bundle2.Metrics.Snapshot()
	require.Equal(t, int64(2), snap.LoadsCompleted)
	require.Equal(t, int64(0), snap.LoadsFailed)
	require.Equal(t, int64(12), snap.ItemsLoaded)
}

func TestInMemoryHistoryBundle_ChainsObserver(t *testing.T) {
	ctx := context.Background()
	extra := &BasicMetrics{}
	bundle := NewInMemoryHistoryBundle(HistoryOptions{Observer: extra})
	defer bundle.Close()

	_, err := bundle.Store.Insert(ctx, Food{Name: "tea", CreatedAt: time.Now()})
	require.NoError(t, err)

	runner := NewHistoryRunner(bundle.Feed)
	require.NoError(t, runner.Start(ctx))
	defer runner.Stop()

	_, err = runner.WaitFor(ctx, func(s HistoryState) bool { return !s.Loading && len(s.Items) == 1 })
	require.NoError(t, err)

	require.Equal(t, bundle.Metrics.Snapshot().LoadsCompleted, extra.Snapshot().LoadsCompleted)
	require.Positive(t, extra.Snapshot().LoadsCompleted)
}
