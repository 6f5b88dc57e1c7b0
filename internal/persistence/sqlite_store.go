package persistence

import (
	"context"
	"database/sql"

	"github.com/petrijr/pager/pkg/diary"
)

// SQLiteStore is a diary.Store backed by SQLite.
//
// It expects an *sql.DB that uses a SQLite driver (for example,
// "modernc.org/sqlite"). The caller is responsible for importing
// the driver, e.g.:
//
//	import _ "modernc.org/sqlite"
type SQLiteStore struct {
	*sqlStore
}

// Ensure SQLiteStore implements diary.Store.
var _ diary.Store = (*SQLiteStore)(nil)

var sqliteDialect = dialect{
	name: "sqlite",
	schema: `
		CREATE TABLE IF NOT EXISTS food_entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			calories REAL NOT NULL,
			protein REAL NOT NULL,
			carbs REAL NOT NULL,
			fat REAL NOT NULL,
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_food_entries_created_at ON food_entries(created_at DESC, id DESC);`,
	insertReturningID: func(ctx context.Context, db *sql.DB, query string, args ...any) (int64, error) {
		res, err := db.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	},
	upsert: `INSERT OR REPLACE INTO food_entries (` + foodColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`,
}

// NewSQLiteStore initializes the food_entries schema in db and returns a
// new SQLiteStore.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s, err := newSQLStore(db, sqliteDialect)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{sqlStore: s}, nil
}
