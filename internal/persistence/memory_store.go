package persistence

import (
	"context"
	"sync"

	"github.com/petrijr/pager/pkg/diary"
)

// MemoryStore is a simple, goroutine-safe diary.Store backed by a map.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[int64]diary.Food
	nextID  int64
}

// Ensure MemoryStore implements diary.Store.
var _ diary.Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[int64]diary.Food)}
}

func (s *MemoryStore) Insert(ctx context.Context, f diary.Food) (int64, error) {
	if err := f.Validate(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if f.ID == 0 {
		s.nextID++
		f.ID = s.nextID
	} else if f.ID > s.nextID {
		s.nextID = f.ID
	}
	s.entries[f.ID] = normalize(f)
	return f.ID, nil
}

func (s *MemoryStore) Update(ctx context.Context, f diary.Food) error {
	if err := f.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[f.ID]; !ok {
		return diary.ErrEntryNotFound
	}
	s.entries[f.ID] = normalize(f)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id int64) (diary.Food, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.entries[id]
	if !ok {
		return diary.Food{}, diary.ErrEntryNotFound
	}
	return f, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, id)
	return nil
}

func (s *MemoryStore) DeleteMany(ctx context.Context, ids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		delete(s.entries, id)
	}
	return nil
}

func (s *MemoryStore) ListAll(ctx context.Context) ([]diary.Food, error) {
	return s.sorted(), nil
}

func (s *MemoryStore) ListPaginated(ctx context.Context, offset, limit int) ([]diary.Food, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	all := s.sorted()
	start, end := diary.Window(len(all), offset, limit)
	page := make([]diary.Food, end-start)
	copy(page, all[start:end])
	return page, nil
}

func (s *MemoryStore) CountAll(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

func (s *MemoryStore) DailyStats(ctx context.Context, r diary.TimeRange) (diary.DailyStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lo, hi := millisRange(r)

	var in []diary.Food
	for _, f := range s.entries {
		if ms := toMillis(f.CreatedAt); ms >= lo && ms <= hi {
			in = append(in, f)
		}
	}
	return diary.Sum(in), nil
}

func (s *MemoryStore) sorted() []diary.Food {
	s.mu.RLock()
	out := make([]diary.Food, 0, len(s.entries))
	for _, f := range s.entries {
		out = append(out, f)
	}
	s.mu.RUnlock()

	diary.SortNewestFirst(out)
	return out
}
