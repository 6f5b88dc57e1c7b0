// Package pager provides an incremental paging engine for Go, together with
// the food diary history it was built for.
//
// # Engine
//
// An Engine turns a stream of paging actions into a stream of results:
//
//   - LoadNextPage appends the next portion after the committed offset.
//   - Refresh resets the offset to its initial value and loads again.
//
// Actions are queued and processed strictly one at a time on the engine's own
// goroutine, including the loader call, so two loads never overlap and the
// offset is only ever touched by one writer. Each processed action publishes
// a Progress result followed by either Data or Error.
//
// Results and committed offsets are hot streams that replay their latest
// value to new subscribers. Publishing never waits for a slow subscriber.
//
// The offset is generic. NewIntOffsetEngine counts loaded items, which suits
// LIMIT/OFFSET queries; NewKeysetEngine uses the key of the last loaded item.
// An offset only moves after a successful load, so a failed page can simply
// be requested again.
//
// # Loaders
//
// A DataLoader fetches one page. Loaders receive a context that is cancelled
// with the engine (and bounded by EngineOptions.LoadTimeout when set); a
// loader panic is reported as an Error result carrying *LoaderPanicError.
// WithRetry and the Retry builder add retries with backoff around any loader.
// WithCircuitBreaker stops calling a source that keeps failing, and
// WithRateLimit throttles calls with a token bucket.
//
// # Food history
//
// FoodStore is implemented for memory, SQLite, PostgreSQL, Redis and MongoDB.
// A HistoryFeed pages a store newest first and keeps one result stream across
// re-initializations; HistoryRunner folds that stream into a HistoryState and
// requests the next page when the rendered list gets close to its end.
// HistoryBundle wires a SQLite store, a feed and BasicMetrics together.
//
// # Observability
//
// The engine itself does not log. Pass an Observer in EngineOptions or
// HistoryOptions: LoggingObserver writes structured log/slog events,
// BasicMetrics keeps atomic counters, and CompositeObserver fans out to both.
//
// For runnable programs, see the /examples directory.
package pager
