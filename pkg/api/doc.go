// Package api contains the building blocks of the pager engine: paging
// configuration, the loader contract, offset policies, results and the
// observer hooks.
//
// Most users interact with the higher-level pager package, which re-exports
// selected types and helpers from this package. The api package is intended
// for custom loaders and policies, or contributors extending the engine.
//
// # Concepts
//
//   - Config: initial offset, page size and first page size
//   - DataLoader: fetches one page for a direction, limit and offset
//   - OffsetPolicy: moves the cursor and decides whether more pages exist
//   - Result: Progress, Data or Error events published by an engine
//   - Observer: lifecycle callbacks for logging and metrics
//
// # Loaders
//
// A DataLoader receives the direction of the load (append or restart), the
// number of items to return and the offset to start from. Errors surface as
// Error results and do not move the offset. The engine never retries; wrap a
// loader with WithRetry to opt in.
//
// # Offset Policies
//
// IntOffsetPolicy uses the number of items loaded so far as the offset.
// A full page is taken to mean that more items are available, so a source
// whose size is an exact multiple of the page size costs one extra request
// that returns an empty page. KeysetPolicy uses the key of the last item.
//
// # Observability
//
// LoggingObserver writes structured log/slog records, BasicMetrics keeps
// in-memory counters and NewCompositeObserver fans out to several observers.
package api
