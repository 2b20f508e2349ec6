package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"sentinel-hq/sentinel/pkg/clock"
	"sentinel-hq/sentinel/pkg/config"
	"sentinel-hq/sentinel/pkg/telemetry/logging"
	"sentinel-hq/sentinel/pkg/telemetry/metrics"
	"sentinel-hq/sentinel/pkg/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
)

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithSchedulerClock sets the clock used for task timestamps.
func WithSchedulerClock(clk clock.Clock) SchedulerOption {
	return func(s *Scheduler) {
		s.clock = clk
	}
}

// WithTaskTimeout bounds each task execution. Zero disables the deadline.
func WithTaskTimeout(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		s.timeout = d
	}
}

// WithSchedulerMetrics sets the metrics collector.
func WithSchedulerMetrics(collector *metrics.Collector) SchedulerOption {
	return func(s *Scheduler) {
		s.metrics = collector
	}
}

// WithSchedulerTracer records an engine.task span per executed task.
func WithSchedulerTracer(t *tracing.Tracer) SchedulerOption {
	return func(s *Scheduler) {
		s.tracer = t
	}
}

// Scheduler is a single-flight priority queue of analysis tasks.
type Scheduler struct {
	mu    sync.Mutex
	queue taskQueue

	processing atomic.Bool

	analyzer Analyzer
	contexts *ContextStore
	pool     *InsightPool
	clock    clock.Clock
	timeout  time.Duration
	metrics  *metrics.Collector
	tracer   *tracing.Tracer
	logger   *slog.Logger
}

// NewScheduler creates a scheduler that snapshots contexts from store and
// appends results to pool.
func NewScheduler(analyzer Analyzer, store *ContextStore, pool *InsightPool, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		analyzer: analyzer,
		contexts: store,
		pool:     pool,
		clock:    clock.Real(),
		timeout:  config.DefaultTaskTimeout,
		logger:   slog.Default().With("component", "scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QueueTask appends a task for typ at priority with a snapshot of the
// current context. Identical tasks are not deduplicated.
func (s *Scheduler) QueueTask(typ TaskType, priority Priority) *Task {
	task := &Task{
		ID:           uuid.New().String(),
		Type:         typ,
		Priority:     priority,
		Status:       StatusQueued,
		Context:      s.contexts.Snapshot(),
		ScheduledFor: s.clock.Now(),
	}

	s.mu.Lock()
	s.queue.push(task)
	depth := s.queue.len()
	s.mu.Unlock()

	s.metrics.UpdateQueueDepth(depth)
	s.logger.Debug("task queued", "task_id", task.ID, "type", typ, "priority", priority, "depth", depth)
	return task
}

// ProcessQueue executes the highest-priority queued task. It returns false
// without doing anything when another call is processing or the queue is
// empty.
func (s *Scheduler) ProcessQueue(ctx context.Context) bool {
	if !s.processing.CompareAndSwap(false, true) {
		return false
	}
	defer s.processing.Store(false)

	s.mu.Lock()
	task := s.queue.next()
	if task != nil {
		started := s.clock.Now()
		task.ProcessingStarted = &started
		task.Status = StatusProcessing
	}
	s.mu.Unlock()

	if task == nil {
		return false
	}

	s.execute(ctx, task)
	return true
}

// Processing reports whether a task is executing.
func (s *Scheduler) Processing() bool {
	return s.processing.Load()
}

// Len returns the number of live tasks.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.len()
}

// Pending returns copies of the live tasks in queue order.
func (s *Scheduler) Pending() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Task, len(s.queue.tasks))
	for i, t := range s.queue.tasks {
		out[i] = *t
	}
	return out
}

func (s *Scheduler) execute(ctx context.Context, task *Task) {
	ctx = logging.WithTask(ctx, task.ID)
	if task.Context != nil && task.Context.UserID != "" {
		ctx = logging.WithUser(ctx, task.Context.UserID)
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	ctx, span := s.tracer.Start(ctx, "engine.task",
		tracing.TaskAttributes(task.ID, string(task.Type), string(task.Priority))...)

	start := time.Now()
	insights, err := s.run(ctx, task)
	if errors.Is(err, ErrUnknownAnalysisType) {
		s.logger.WarnContext(ctx, "no routine for task type", "type", task.Type)
		insights, err = nil, nil
	}
	span.SetAttributes(attribute.Int(tracing.AttrInsights, len(insights)))
	tracing.End(span, err)
	completed := s.clock.Now()

	s.mu.Lock()
	task.CompletedAt = &completed
	if err != nil {
		task.Status = StatusFailed
		task.Error = &TaskExecutionError{TaskID: task.ID, Type: task.Type, Err: err}
	} else {
		task.Status = StatusCompleted
		task.Result = insights
	}
	s.queue.remove(task.ID)
	depth := s.queue.len()
	s.mu.Unlock()

	s.metrics.UpdateQueueDepth(depth)
	s.metrics.RecordTask(string(task.Type), string(task.Status), time.Since(start))

	if err != nil {
		s.logger.ErrorContext(ctx, "task failed", "type", task.Type, "error", err)
		return
	}

	s.pool.Add(insights...)
	s.metrics.UpdateInsightCount(s.pool.Len())

	significant := false
	for _, in := range insights {
		s.metrics.RecordInsight(string(in.Type))
		if in.Confidence > SignificantConfidence {
			significant = true
		}
	}

	s.logger.InfoContext(ctx, "task completed",
		"type", task.Type,
		"priority", task.Priority,
		"insights", len(insights),
		"significant", significant,
	)

	if significant {
		s.pool.Notify(completed)
	}
}

// run calls the analyzer and converts a panic into an error.
func (s *Scheduler) run(ctx context.Context, task *Task) (insights []Insight, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("analysis panicked: %v", r)
		}
	}()
	if s.analyzer == nil {
		return nil, ErrUnknownAnalysisType
	}
	return s.analyzer.Analyze(ctx, task)
}
