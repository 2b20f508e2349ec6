package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"sentinel-hq/sentinel/pkg/budget"
	"sentinel-hq/sentinel/pkg/clock"
	"sentinel-hq/sentinel/pkg/config"
	"sentinel-hq/sentinel/pkg/routing"
	"sentinel-hq/sentinel/pkg/telemetry/metrics"
	"sentinel-hq/sentinel/pkg/telemetry/tracing"
)

var errNoEnforcer = errors.New("usage metrics: no budget enforcer")

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock driving ticks and timestamps.
func WithClock(clk clock.Clock) Option {
	return func(e *Engine) {
		e.clock = clk
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(collector *metrics.Collector) Option {
	return func(e *Engine) {
		e.metrics = collector
	}
}

// WithTracer records a span for each executed task.
func WithTracer(t *tracing.Tracer) Option {
	return func(e *Engine) {
		e.tracer = t
	}
}

// WithAnalyzer replaces the default analysis routines.
func WithAnalyzer(a Analyzer) Option {
	return func(e *Engine) {
		e.analyzer = a
	}
}

// Engine is the consumer-facing boundary of the background intelligence
// engine. It owns the context store, scheduler and insight pool and drives
// them from two tickers once started.
type Engine struct {
	cfg      config.SchedulerConfig
	router   Querier
	enforcer *budget.Enforcer
	analyzer Analyzer
	clock    clock.Clock
	metrics  *metrics.Collector
	tracer   *tracing.Tracer
	logger   *slog.Logger

	contexts  *ContextStore
	scheduler *Scheduler
	pool      *InsightPool

	priceSchedule cron.Schedule

	mu           sync.Mutex
	nextPriceRun time.Time
	running      bool
	stopped      bool
	cancel       context.CancelFunc
	done         chan struct{}
	wg           sync.WaitGroup
}

// New creates an engine that queries through router and reports usage from
// enforcer. Zero scheduler settings take their defaults.
func New(router Querier, enforcer *budget.Enforcer, cfg config.SchedulerConfig, opts ...Option) (*Engine, error) {
	if cfg.ProcessInterval <= 0 {
		cfg.ProcessInterval = config.DefaultProcessInterval
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = config.DefaultCleanupInterval
	}
	if cfg.PriceTrackingSchedule == "" {
		cfg.PriceTrackingSchedule = config.DefaultPriceTrackingSchedule
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = config.DefaultTaskTimeout
	}

	schedule, err := cron.ParseStandard(cfg.PriceTrackingSchedule)
	if err != nil {
		return nil, fmt.Errorf("invalid price tracking schedule %q: %w", cfg.PriceTrackingSchedule, err)
	}

	e := &Engine{
		cfg:           cfg,
		router:        router,
		enforcer:      enforcer,
		clock:         clock.Real(),
		logger:        slog.Default().With("component", "engine"),
		contexts:      NewContextStore(),
		pool:          NewInsightPool(),
		priceSchedule: schedule,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.analyzer == nil {
		e.analyzer = NewRoutines(router, e.clock)
	}

	e.scheduler = NewScheduler(e.analyzer, e.contexts, e.pool,
		WithSchedulerClock(e.clock),
		WithTaskTimeout(cfg.TaskTimeout),
		WithSchedulerMetrics(e.metrics),
		WithSchedulerTracer(e.tracer),
	)
	return e, nil
}

// Start begins ticking. The tickers exist when Start returns. Calling Start
// on a running engine does nothing.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		return ErrStopped
	}
	if e.running {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	processTicker := e.clock.NewTicker(e.cfg.ProcessInterval)
	cleanupTicker := e.clock.NewTicker(e.cfg.CleanupInterval)

	e.cancel = cancel
	e.done = make(chan struct{})
	e.running = true

	go e.loop(ctx, processTicker, cleanupTicker)

	e.logger.Info("engine started",
		"process_interval", e.cfg.ProcessInterval,
		"cleanup_interval", e.cfg.CleanupInterval,
		"price_tracking", e.cfg.PriceTrackingSchedule,
	)
	return nil
}

// Stop halts the tickers, cancels any in-flight task and tears down the
// session. It blocks until background work has returned. Stop is
// idempotent.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	cancel, done, running := e.cancel, e.done, e.running
	e.running = false
	e.nextPriceRun = time.Time{}
	e.mu.Unlock()

	if running {
		cancel()
		<-done
	}
	e.wg.Wait()
	e.contexts.Clear()

	e.logger.Info("engine stopped")
}

func (e *Engine) loop(ctx context.Context, processTicker, cleanupTicker clock.Ticker) {
	defer close(e.done)
	defer processTicker.Stop()
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-processTicker.C():
			e.onProcessTick(ctx)
		case <-cleanupTicker.C():
			e.onCleanupTick()
		}
	}
}

// onProcessTick queues due periodic work and hands the queue to a worker.
// The scheduler's single-flight flag drops the worker when one is busy.
func (e *Engine) onProcessTick(ctx context.Context) {
	e.seedPriceTracking(e.clock.Now())

	if e.scheduler.Len() == 0 || e.scheduler.Processing() {
		return
	}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.scheduler.ProcessQueue(ctx)
	}()
}

func (e *Engine) onCleanupTick() {
	if removed := e.pool.CleanupExpired(e.clock.Now()); removed > 0 {
		e.logger.Debug("expired insights removed", "count", removed)
	}
	e.metrics.UpdateInsightCount(e.pool.Len())
}

// seedPriceTracking queues a price_tracking task when the schedule is due.
func (e *Engine) seedPriceTracking(now time.Time) bool {
	e.mu.Lock()
	due := !e.nextPriceRun.IsZero() && !now.Before(e.nextPriceRun)
	if due {
		e.nextPriceRun = e.priceSchedule.Next(now)
	}
	e.mu.Unlock()

	if !due {
		return false
	}
	e.scheduler.QueueTask(TaskPriceTracking, PriorityMedium)
	return true
}

// armPriceTracking enables the periodic schedule while the session has
// upcoming trips and disables it otherwise.
func (e *Engine) armPriceTracking(c *AIContext) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped || c == nil || len(c.SessionData.UpcomingTrips) == 0 {
		e.nextPriceRun = time.Time{}
		return
	}
	if e.nextPriceRun.IsZero() {
		e.nextPriceRun = e.priceSchedule.Next(e.clock.Now())
	}
}

// InitializeContext replaces the session context and seeds the first
// tasks for paid tiers.
func (e *Engine) InitializeContext(c AIContext) {
	e.contexts.Initialize(c)

	if c.Paid() {
		e.scheduler.QueueTask(TaskComplianceMonitoring, PriorityHigh)
		if len(c.SessionData.UpcomingTrips) > 0 {
			e.scheduler.QueueTask(TaskDealHunting, PriorityMedium)
		}
	}

	e.mu.Lock()
	e.nextPriceRun = time.Time{}
	e.mu.Unlock()
	e.armPriceTracking(&c)

	e.logger.Info("context initialized",
		"tier", c.Tier,
		"trips", c.TripCount(),
		"queued", e.scheduler.Len(),
	)
}

// UpdateContext shallow-merges partial into the session context.
func (e *Engine) UpdateContext(partial map[string]any) error {
	if err := e.contexts.Update(partial); err != nil {
		return err
	}
	e.armPriceTracking(e.contexts.Snapshot())
	return nil
}

// EndSession clears the context and disarms periodic seeding.
func (e *Engine) EndSession() {
	e.contexts.Clear()
	e.armPriceTracking(nil)
}

// Context returns a copy of the session context, or nil.
func (e *Engine) Context() *AIContext {
	return e.contexts.Snapshot()
}

// GetCurrentInsights returns the insights to present now.
func (e *Engine) GetCurrentInsights() []Insight {
	return e.pool.Current(e.clock.Now())
}

// MarkInsightsViewed flags insights as presented so they never re-surface.
func (e *Engine) MarkInsightsViewed(ids ...string) int {
	return e.pool.MarkPresented(ids...)
}

// DismissInsights removes insights from the pool.
func (e *Engine) DismissInsights(ids ...string) int {
	return e.pool.Dismiss(ids...)
}

// TriggerBackgroundAnalysis queues a high-priority task of typ. It runs on
// the next processing tick.
func (e *Engine) TriggerBackgroundAnalysis(typ TaskType) *Task {
	return e.scheduler.QueueTask(typ, PriorityHigh)
}

// GetUsageMetrics reports spend and savings from the ledger.
func (e *Engine) GetUsageMetrics(ctx context.Context) (budget.UsageMetrics, error) {
	if e.enforcer == nil {
		return budget.UsageMetrics{}, errNoEnforcer
	}
	return e.enforcer.GetUsageMetrics(ctx)
}

// Ask routes req directly, outside the scheduler. Missing user and trip
// details are filled from the session context.
func (e *Engine) Ask(ctx context.Context, req routing.Request) *routing.Result {
	if c := e.contexts.Snapshot(); c != nil {
		if req.UserID == "" {
			req.UserID = c.UserID
		}
		if req.FamilyMembers == 0 {
			req.FamilyMembers = c.FamilyMembers
		}
		if req.TripCount == 0 {
			req.TripCount = c.TripCount()
		}
		if req.IntentType == "" {
			req.IntentType = c.CurrentIntent
		}
	}
	return e.router.Route(ctx, &req)
}

// OnInsights subscribes fn to insight notifications.
func (e *Engine) OnInsights(fn func([]Insight)) *Subscription {
	return e.pool.Subscribe(fn)
}

// OnBudgetAlert subscribes fn to budget alerts.
func (e *Engine) OnBudgetAlert(fn func(budget.Alert)) (unsubscribe func()) {
	if e.enforcer == nil {
		return func() {}
	}
	return e.enforcer.Subscribe(fn)
}

// Scheduler returns the task scheduler.
func (e *Engine) Scheduler() *Scheduler {
	return e.scheduler
}

// Pool returns the insight pool.
func (e *Engine) Pool() *InsightPool {
	return e.pool
}

// Running reports whether the tickers are active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}
