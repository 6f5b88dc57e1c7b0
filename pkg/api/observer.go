package api

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// LoadInfo describes one loader invocation as seen by observers.
// Offset holds the engine's key value.
type LoadInfo struct {
	Direction Direction
	Limit     int
	Offset    any
}

// Observer receives callbacks from a paging engine for logging and metrics.
//
// OnActionQueued runs on the goroutine that called PerformAction; the load
// callbacks run on the engine's processing goroutine. Implementations should
// be fast and non-blocking, since a slow observer delays the next page.
type Observer interface {
	// OnActionQueued is called after an action has been accepted by the queue.
	OnActionQueued(ctx context.Context, action Action)

	// OnLoadStart is called right before the loader is invoked.
	OnLoadStart(ctx context.Context, info LoadInfo)

	// OnLoadCompleted is called after a successful load and offset commit.
	OnLoadCompleted(ctx context.Context, info LoadInfo, items int, hasMore bool, duration time.Duration)

	// OnLoadFailed is called when the loader returned an error or panicked.
	OnLoadFailed(ctx context.Context, info LoadInfo, err error, duration time.Duration)
}

// NoopObserver is an Observer that does nothing.
// It is used as the default when no observer is configured.
type NoopObserver struct{}

func (NoopObserver) OnActionQueued(ctx context.Context, action Action) {}
func (NoopObserver) OnLoadStart(ctx context.Context, info LoadInfo)    {}
func (NoopObserver) OnLoadCompleted(ctx context.Context, info LoadInfo, items int, hasMore bool, d time.Duration) {
}
func (NoopObserver) OnLoadFailed(ctx context.Context, info LoadInfo, err error, d time.Duration) {}

// CompositeObserver fans out events to multiple observers.
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver creates an Observer that forwards events to each
// non-nil observer in obs.
func NewCompositeObserver(obs ...Observer) Observer {
	filtered := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeObserver{observers: filtered}
}

func (c *CompositeObserver) OnActionQueued(ctx context.Context, action Action) {
	for _, o := range c.observers {
		o.OnActionQueued(ctx, action)
	}
}

func (c *CompositeObserver) OnLoadStart(ctx context.Context, info LoadInfo) {
	for _, o := range c.observers {
		o.OnLoadStart(ctx, info)
	}
}

func (c *CompositeObserver) OnLoadCompleted(ctx context.Context, info LoadInfo, items int, hasMore bool, d time.Duration) {
	for _, o := range c.observers {
		o.OnLoadCompleted(ctx, info, items, hasMore, d)
	}
}

func (c *CompositeObserver) OnLoadFailed(ctx context.Context, info LoadInfo, err error, d time.Duration) {
	for _, o := range c.observers {
		o.OnLoadFailed(ctx, info, err, d)
	}
}

// LoggingObserver writes structured logs using log/slog.
type LoggingObserver struct {
	Logger *slog.Logger
}

// NewLoggingObserver creates an Observer that logs paging events using the
// provided slog.Logger. If logger is nil, slog.Default() is used.
func NewLoggingObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnActionQueued(ctx context.Context, action Action) {
	o.Logger.DebugContext(ctx, "paging_action_queued",
		slog.String("action", string(action)),
	)
}

func (o *LoggingObserver) OnLoadStart(ctx context.Context, info LoadInfo) {
	o.Logger.DebugContext(ctx, "paging_load_start",
		slog.String("direction", string(info.Direction)),
		slog.Int("limit", info.Limit),
		slog.Any("offset", info.Offset),
	)
}

func (o *LoggingObserver) OnLoadCompleted(ctx context.Context, info LoadInfo, items int, hasMore bool, d time.Duration) {
	o.Logger.InfoContext(ctx, "paging_load_completed",
		slog.String("direction", string(info.Direction)),
		slog.Int("limit", info.Limit),
		slog.Any("offset", info.Offset),
		slog.Int("items", items),
		slog.Bool("has_more", hasMore),
		slog.Duration("duration", d),
	)
}

func (o *LoggingObserver) OnLoadFailed(ctx context.Context, info LoadInfo, err error, d time.Duration) {
	o.Logger.ErrorContext(ctx, "paging_load_failed",
		slog.String("direction", string(info.Direction)),
		slog.Int("limit", info.Limit),
		slog.Any("offset", info.Offset),
		slog.Duration("duration", d),
		slog.Any("error", err),
	)
}

// BasicMetrics collects simple counters and aggregate load durations.
// It implements Observer, and can be combined with LoggingObserver via
// NewCompositeObserver.
type BasicMetrics struct {
	NoopObserver

	actionsQueued     atomic.Int64
	loadsStarted      atomic.Int64
	loadsCompleted    atomic.Int64
	loadsFailed       atomic.Int64
	itemsLoaded       atomic.Int64
	totalLoadDuration atomic.Int64 // nanoseconds
}

// BasicMetricsSnapshot is an immutable snapshot of BasicMetrics.
type BasicMetricsSnapshot struct {
	ActionsQueued  int64
	LoadsStarted   int64
	LoadsCompleted int64
	LoadsFailed    int64
	LoadsInFlight  int64

	ItemsLoaded     int64
	AvgLoadDuration time.Duration
}

func (m *BasicMetrics) OnActionQueued(ctx context.Context, action Action) {
	m.actionsQueued.Add(1)
}

func (m *BasicMetrics) OnLoadStart(ctx context.Context, info LoadInfo) {
	m.loadsStarted.Add(1)
}

func (m *BasicMetrics) OnLoadCompleted(ctx context.Context, info LoadInfo, items int, hasMore bool, d time.Duration) {
	m.loadsCompleted.Add(1)
	m.itemsLoaded.Add(int64(items))
	m.totalLoadDuration.Add(d.Nanoseconds())
}

func (m *BasicMetrics) OnLoadFailed(ctx context.Context, info LoadInfo, err error, d time.Duration) {
	m.loadsFailed.Add(1)
}

// Snapshot returns a snapshot of the current metrics.
func (m *BasicMetrics) Snapshot() BasicMetricsSnapshot {
	started := m.loadsStarted.Load()
	completed := m.loadsCompleted.Load()
	failed := m.loadsFailed.Load()
	totalNs := m.totalLoadDuration.Load()

	// Only successful loads count toward the average duration.
	var avg time.Duration
	if completed > 0 {
		avg = time.Duration(totalNs / completed)
	}

	return BasicMetricsSnapshot{
		ActionsQueued:   m.actionsQueued.Load(),
		LoadsStarted:    started,
		LoadsCompleted:  completed,
		LoadsFailed:     failed,
		LoadsInFlight:   started - completed - failed,
		ItemsLoaded:     m.itemsLoaded.Load(),
		AvgLoadDuration: avg,
	}
}
