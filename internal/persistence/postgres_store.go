package persistence

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/petrijr/pager/pkg/diary"
)

// PostgresStore is a diary.Store backed by PostgreSQL.
//
// It expects an *sql.DB that uses a PostgreSQL driver (for example,
// "github.com/jackc/pgx/v5/stdlib" or "github.com/lib/pq").
//
// The caller is responsible for:
//   - importing the driver for its side effects, e.g.:
//     _ "github.com/jackc/pgx/v5/stdlib"
//   - providing a DSN via sql.Open.
type PostgresStore struct {
	*sqlStore
}

// Ensure PostgresStore implements diary.Store.
var _ diary.Store = (*PostgresStore)(nil)

var postgresDialect = dialect{
	name:        "postgres",
	placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	schema: `
		CREATE TABLE IF NOT EXISTS food_entries (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			calories DOUBLE PRECISION NOT NULL,
			protein DOUBLE PRECISION NOT NULL,
			carbs DOUBLE PRECISION NOT NULL,
			fat DOUBLE PRECISION NOT NULL,
			created_at BIGINT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_food_entries_created_at ON food_entries(created_at DESC, id DESC);
	`,
	insertReturningID: func(ctx context.Context, db *sql.DB, query string, args ...any) (int64, error) {
		var id int64
		err := db.QueryRowContext(ctx, query+" RETURNING id", args...).Scan(&id)
		return id, err
	},
	upsert: `
		INSERT INTO food_entries (` + foodColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			calories = EXCLUDED.calories,
			protein = EXCLUDED.protein,
			carbs = EXCLUDED.carbs,
			fat = EXCLUDED.fat,
			created_at = EXCLUDED.created_at`,
	// Keep BIGSERIAL ahead of explicitly chosen ids.
	afterExplicitID: `SELECT setval(pg_get_serial_sequence('food_entries', 'id'), (SELECT MAX(id) FROM food_entries))`,
}

// NewPostgresStore initializes the food_entries schema in db and returns a
// new PostgresStore.
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	s, err := newSQLStore(db, postgresDialect)
	if err != nil {
		return nil, err
	}
	return &PostgresStore{sqlStore: s}, nil
}
