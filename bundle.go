package pager

import (
	"database/sql"

	"github.com/petrijr/pager/internal/persistence"
	"github.com/petrijr/pager/pkg/api"
	"github.com/petrijr/pager/pkg/history"
)

// HistoryBundle wires together a food store, a history feed over it, and
// metrics collected from the feed's engines.
type HistoryBundle struct {
	Store   FoodStore
	Feed    *HistoryFeed
	Metrics *BasicMetrics
}

// NewSQLiteHistoryBundle constructs a durable store + feed combo on the
// provided *sql.DB. Food entries are persisted in the food_entries table.
//
// Typical usage:
//
//	db, _ := sql.Open("sqlite", "file:diary.db?_journal=WAL")
//	bundle, err := pager.NewSQLiteHistoryBundle(db, pager.HistoryOptions{})
//	// insert entries via bundle.Store
//	// page them via bundle.Feed
func NewSQLiteHistoryBundle(db *sql.DB, opts HistoryOptions) (*HistoryBundle, error) {
	store, err := persistence.NewSQLiteStore(db)
	if err != nil {
		return nil, err
	}
	return newHistoryBundle(store, opts), nil
}

// NewInMemoryHistoryBundle is the non-durable variant, handy in tests.
func NewInMemoryHistoryBundle(opts HistoryOptions) *HistoryBundle {
	return newHistoryBundle(persistence.NewMemoryStore(), opts)
}

func newHistoryBundle(store FoodStore, opts HistoryOptions) *HistoryBundle {
	metrics := &api.BasicMetrics{}
	if opts.Observer != nil {
		opts.Observer = api.NewCompositeObserver(opts.Observer, metrics)
	} else {
		opts.Observer = metrics
	}

	return &HistoryBundle{
		Store:   store,
		Feed:    history.NewFeed(store, opts),
		Metrics: metrics,
	}
}

// Close stops the feed. The caller still owns the database handle.
func (b *HistoryBundle) Close() {
	b.Feed.Close()
}
