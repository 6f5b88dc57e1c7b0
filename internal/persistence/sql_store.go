package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/petrijr/pager/pkg/diary"
)

// dialect captures the differences between the SQL backends.
type dialect struct {
	name string
	// placeholder returns the bind marker for the n-th (1-based) argument.
	placeholder func(n int) string
	schema      string
	// insertReturningID inserts a row without an id and yields the new id.
	insertReturningID func(ctx context.Context, db *sql.DB, query string, args ...any) (int64, error)
	// upsert stores a row with an explicit id, replacing any existing row.
	upsert string
	// afterExplicitID runs after an explicit-id upsert, if set.
	afterExplicitID string
}

// sqlStore is the database/sql implementation shared by SQLiteStore and
// PostgresStore. The caller owns db and imports the driver.
type sqlStore struct {
	db *sql.DB
	d  dialect
}

func newSQLStore(db *sql.DB, d dialect) (*sqlStore, error) {
	if db == nil {
		return nil, fmt.Errorf("%s store: nil *sql.DB", d.name)
	}
	s := &sqlStore{db: db, d: d}
	if _, err := db.Exec(d.schema); err != nil {
		return nil, fmt.Errorf("%s store: init schema: %w", d.name, err)
	}
	return s, nil
}

// bind rewrites '?' markers into the dialect's placeholders.
func (s *sqlStore) bind(query string) string {
	if s.d.placeholder == nil {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(s.d.placeholder(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

const foodColumns = "id, name, calories, protein, carbs, fat, created_at"

func (s *sqlStore) Insert(ctx context.Context, f diary.Food) (int64, error) {
	if err := f.Validate(); err != nil {
		return 0, err
	}

	if f.ID == 0 {
		return s.d.insertReturningID(ctx, s.db,
			s.bind(`INSERT INTO food_entries (name, calories, protein, carbs, fat, created_at) VALUES (?, ?, ?, ?, ?, ?)`),
			f.Name, f.Calories, f.Protein, f.Carbs, f.Fats, toMillis(f.CreatedAt),
		)
	}

	if _, err := s.db.ExecContext(ctx, s.bind(s.d.upsert),
		f.ID, f.Name, f.Calories, f.Protein, f.Carbs, f.Fats, toMillis(f.CreatedAt),
	); err != nil {
		return 0, err
	}
	if s.d.afterExplicitID != "" {
		if _, err := s.db.ExecContext(ctx, s.d.afterExplicitID); err != nil {
			return 0, err
		}
	}
	return f.ID, nil
}

func (s *sqlStore) Update(ctx context.Context, f diary.Food) error {
	if err := f.Validate(); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, s.bind(`
		UPDATE food_entries
		SET name = ?, calories = ?, protein = ?, carbs = ?, fat = ?, created_at = ?
		WHERE id = ?`),
		f.Name, f.Calories, f.Protein, f.Carbs, f.Fats, toMillis(f.CreatedAt), f.ID,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return diary.ErrEntryNotFound
	}
	return nil
}

func (s *sqlStore) Get(ctx context.Context, id int64) (diary.Food, error) {
	row := s.db.QueryRowContext(ctx, s.bind(`SELECT `+foodColumns+` FROM food_entries WHERE id = ?`), id)

	f, err := scanFood(row)
	if errors.Is(err, sql.ErrNoRows) {
		return diary.Food{}, diary.ErrEntryNotFound
	}
	return f, err
}

func (s *sqlStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, s.bind(`DELETE FROM food_entries WHERE id = ?`), id)
	return err
}

func (s *sqlStore) DeleteMany(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	_, err := s.db.ExecContext(ctx, s.bind(`DELETE FROM food_entries WHERE id IN (`+marks+`)`), args...)
	return err
}

func (s *sqlStore) ListAll(ctx context.Context) ([]diary.Food, error) {
	return s.query(ctx, `SELECT `+foodColumns+` FROM food_entries ORDER BY created_at DESC, id DESC`)
}

func (s *sqlStore) ListPaginated(ctx context.Context, offset, limit int) ([]diary.Food, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		return []diary.Food{}, nil
	}
	return s.query(ctx,
		s.bind(`SELECT `+foodColumns+` FROM food_entries ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`),
		limit, offset,
	)
}

func (s *sqlStore) CountAll(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM food_entries`).Scan(&n)
	return n, err
}

func (s *sqlStore) DailyStats(ctx context.Context, r diary.TimeRange) (diary.DailyStats, error) {
	lo, hi := millisRange(r)
	row := s.db.QueryRowContext(ctx, s.bind(`
		SELECT
			COALESCE(SUM(calories), 0),
			COALESCE(SUM(protein), 0),
			COALESCE(SUM(carbs), 0),
			COALESCE(SUM(fat), 0)
		FROM food_entries
		WHERE created_at BETWEEN ? AND ?`),
		lo, hi,
	)

	var cal float64
	var stats diary.DailyStats
	if err := row.Scan(&cal, &stats.Protein, &stats.Carbs, &stats.Fat); err != nil {
		return diary.DailyStats{}, err
	}
	stats.TotalCalories = int(cal)
	return stats, nil
}

func (s *sqlStore) query(ctx context.Context, query string, args ...any) ([]diary.Food, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]diary.Food, 0)
	for rows.Next() {
		f, err := scanFood(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFood(sc scanner) (diary.Food, error) {
	var f diary.Food
	var createdAt int64
	if err := sc.Scan(&f.ID, &f.Name, &f.Calories, &f.Protein, &f.Carbs, &f.Fats, &createdAt); err != nil {
		return diary.Food{}, err
	}
	f.CreatedAt = fromMillis(createdAt)
	return f, nil
}
