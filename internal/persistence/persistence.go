// Package persistence provides diary.Store implementations for the supported
// backends: in-memory, SQLite, PostgreSQL, Redis and MongoDB.
//
// All backends store created_at with millisecond precision and return it in
// UTC, so entries read back compare equal across stores.
package persistence

import (
	"time"

	"github.com/petrijr/pager/pkg/diary"
)

// Backend names a storage implementation.
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
	BackendRedis    Backend = "redis"
	BackendMongo    Backend = "mongo"
)

// Backends lists every supported backend.
func Backends() []Backend {
	return []Backend{BackendMemory, BackendSQLite, BackendPostgres, BackendRedis, BackendMongo}
}

// Valid reports whether b is one of Backends.
func (b Backend) Valid() bool {
	for _, known := range Backends() {
		if b == known {
			return true
		}
	}
	return false
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// millisRange converts r to the inclusive millisecond bounds used in queries.
func millisRange(r diary.TimeRange) (int64, int64) {
	return toMillis(r.Start), toMillis(r.End)
}

// normalize rounds CreatedAt to the precision every backend can store.
func normalize(f diary.Food) diary.Food {
	f.CreatedAt = fromMillis(toMillis(f.CreatedAt))
	return f
}
