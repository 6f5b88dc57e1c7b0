package pager

import (
	"context"
	"database/sql"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/time/rate"

	"github.com/petrijr/pager/internal/engine"
	"github.com/petrijr/pager/internal/persistence"
	"github.com/petrijr/pager/internal/stream"
	"github.com/petrijr/pager/pkg/api"
	"github.com/petrijr/pager/pkg/diary"
	"github.com/petrijr/pager/pkg/history"
)

// Re-export key types so users don't need to dig into pkg/api.

type (
	Direction            = api.Direction
	Action               = api.Action
	ResultKind           = api.ResultKind
	LoadInfo             = api.LoadInfo
	RetryPolicy          = api.RetryPolicy
	BreakerPolicy        = api.BreakerPolicy
	LoaderPanicError     = api.LoaderPanicError
	Observer             = api.Observer
	LoggingObserver      = api.LoggingObserver
	BasicMetrics         = api.BasicMetrics
	BasicMetricsSnapshot = api.BasicMetricsSnapshot
	CompositeObserver    = api.CompositeObserver
	NoopObserver         = api.NoopObserver
	EngineOptions        = engine.Options
)

type (
	Config[K comparable]                = api.Config[K]
	Result[V any]                       = api.Result[V]
	DataLoader[K comparable, V any]     = api.DataLoader[K, V]
	DataLoaderFunc[K comparable, V any] = api.DataLoaderFunc[K, V]
	OffsetPolicy[K comparable, V any]   = api.OffsetPolicy[K, V]
	IntOffsetPolicy[V any]              = api.IntOffsetPolicy[V]
	KeysetPolicy[K comparable, V any]   = api.KeysetPolicy[K, V]
	Engine[K comparable, V any]         = engine.Engine[K, V]
	Subscription[T any]                 = stream.Subscription[T]
)

// Diary and history types.

type (
	Food           = diary.Food
	DailyStats     = diary.DailyStats
	TimeRange      = diary.TimeRange
	FoodStore      = diary.Store
	HistoryFeed    = history.Feed
	HistoryOptions = history.Options
)

// HistoryState is the folded list of food entries a screen renders.
type HistoryState = history.State[diary.Food]

const (
	DirectionAppend  = api.DirectionAppend
	DirectionRestart = api.DirectionRestart

	ActionLoadNextPage = api.ActionLoadNextPage
	ActionRefresh      = api.ActionRefresh

	ResultProgress = api.ResultProgress
	ResultData     = api.ResultData
	ResultError    = api.ResultError
)

var (
	ErrEngineClosed   = api.ErrEngineClosed
	ErrInvalidConfig  = api.ErrInvalidConfig
	ErrUnknownAction  = api.ErrUnknownAction
	ErrBreakerOpen    = api.ErrBreakerOpen
	ErrEntryNotFound  = diary.ErrEntryNotFound
	ErrInvalidEntry   = diary.ErrInvalidEntry
	ErrNotInitialized = history.ErrNotInitialized
)

// Re-export common observer helpers.

var (
	NewLoggingObserver   = api.NewLoggingObserver
	NewCompositeObserver = api.NewCompositeObserver
	DayRange             = diary.DayRange
)

// Engine constructors
// These wrap the internal/engine package so external callers
// never need to import internal packages.

// NewEngine starts a paging engine over loader. The engine lives until ctx
// is cancelled or Cancel is called on it.
func NewEngine[K comparable, V any](ctx context.Context, cfg Config[K], loader DataLoader[K, V], policy OffsetPolicy[K, V]) (*Engine[K, V], error) {
	return engine.New(ctx, cfg, loader, policy, engine.Options{})
}

// NewEngineWithOptions is NewEngine with an observer, load timeout or custom
// action queue.
func NewEngineWithOptions[K comparable, V any](ctx context.Context, cfg Config[K], loader DataLoader[K, V], policy OffsetPolicy[K, V], opts EngineOptions) (*Engine[K, V], error) {
	return engine.New(ctx, cfg, loader, policy, opts)
}

// NewIntOffsetEngine starts an engine whose offset counts loaded items.
func NewIntOffsetEngine[V any](ctx context.Context, cfg Config[int], loader DataLoader[int, V]) (*Engine[int, V], error) {
	return engine.NewIntOffset(ctx, cfg, loader, engine.Options{})
}

// NewKeysetEngine starts an engine whose offset is the key of the last loaded
// item, as returned by keyOf.
func NewKeysetEngine[K comparable, V any](ctx context.Context, cfg Config[K], loader DataLoader[K, V], keyOf func(V) K) (*Engine[K, V], error) {
	return engine.New(ctx, cfg, loader, api.KeysetPolicy[K, V]{KeyOf: keyOf}, engine.Options{})
}

// WithRetry wraps loader so failed loads are retried according to policy.
func WithRetry[K comparable, V any](loader DataLoader[K, V], policy RetryPolicy) DataLoader[K, V] {
	return api.WithRetry(loader, policy)
}

// WithCircuitBreaker wraps loader so a failing source is short-circuited
// with ErrBreakerOpen.
func WithCircuitBreaker[K comparable, V any](loader DataLoader[K, V], policy BreakerPolicy) DataLoader[K, V] {
	return api.WithCircuitBreaker(loader, policy)
}

// WithRateLimit wraps loader so every call waits for a token from limiter.
func WithRateLimit[K comparable, V any](loader DataLoader[K, V], limiter *rate.Limiter) DataLoader[K, V] {
	return api.WithRateLimit(loader, limiter)
}

// Store constructors.

// NewMemoryFoodStore returns a non-durable store, best for tests.
func NewMemoryFoodStore() FoodStore {
	return persistence.NewMemoryStore()
}

// NewSQLiteFoodStore returns a store that keeps entries in a SQLite
// database. The caller imports the driver, e.g. modernc.org/sqlite.
func NewSQLiteFoodStore(db *sql.DB) (FoodStore, error) {
	s, err := persistence.NewSQLiteStore(db)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// NewPostgresFoodStore returns a store that keeps entries in PostgreSQL.
// The caller imports the driver, e.g. github.com/jackc/pgx/v5/stdlib.
func NewPostgresFoodStore(db *sql.DB) (FoodStore, error) {
	s, err := persistence.NewPostgresStore(db)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// NewRedisFoodStore returns a store that keeps entries in Redis under prefix.
func NewRedisFoodStore(client *redis.Client, prefix string) FoodStore {
	return persistence.NewRedisStore(client, prefix)
}

// NewMongoFoodStore returns a store that keeps entries in a MongoDB
// collection and makes sure its ordering index exists.
func NewMongoFoodStore(ctx context.Context, client *mongo.Client, dbName, collName string) (FoodStore, error) {
	s := persistence.NewMongoStore(client, dbName, collName)
	if err := s.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// History helpers.

// DefaultHistoryConfig is the paging configuration of the food history.
func DefaultHistoryConfig() Config[int] {
	return history.DefaultConfig()
}

// NewHistoryLoader adapts a store to the engine's loader contract.
func NewHistoryLoader(store FoodStore) DataLoader[int, Food] {
	return history.NewLoader(store)
}

// NewHistoryFeed returns a feed over store. Call Init to start paging.
func NewHistoryFeed(store FoodStore, opts HistoryOptions) *HistoryFeed {
	return history.NewFeed(store, opts)
}

// NewHistoryState returns an empty state for pages of limit entries.
func NewHistoryState(limit int) HistoryState {
	return history.NewState[diary.Food](limit)
}

// DrainHistory pages through the whole store, newest first, with a
// short-lived engine using the default history configuration.
func DrainHistory(ctx context.Context, store FoodStore) ([]Food, error) {
	eng, err := engine.NewIntOffset(ctx, history.DefaultConfig(), history.NewLoader(store), engine.Options{})
	if err != nil {
		return nil, err
	}
	defer func() {
		eng.Cancel(nil)
		<-eng.Done()
	}()
	return history.Drain[diary.Food](ctx, eng)
}
