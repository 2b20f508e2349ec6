package metrics

import (
	"time"

	"sentinel-hq/sentinel/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// TaskMetrics tracks the background scheduler and the insight pool.
type TaskMetrics struct {
	tasks      *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	queueDepth prometheus.Gauge
	produced   *prometheus.CounterVec
	insights   prometheus.Gauge
}

// NewTaskMetrics creates and registers task metrics with the provided registry.
func NewTaskMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *TaskMetrics {
	tm := &TaskMetrics{
		tasks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "tasks_total",
				Help:      "Total background tasks processed by type and status",
			},
			[]string{"type", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "task_duration_seconds",
				Help:      "Background task duration in seconds",
				Buckets:   []float64{0.01, 0.1, 0.5, 1.0, 5.0, 15.0, 30.0},
			},
			[]string{"type"},
		),
		queueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "task_queue_depth",
				Help:      "Number of pending background tasks",
			},
		),
		produced: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "insights_produced_total",
				Help:      "Total insights produced by type",
			},
			[]string{"type"},
		),
		insights: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "insights",
				Help:      "Number of insights held in the pool",
			},
		),
	}

	registry.MustRegister(tm.tasks, tm.duration, tm.queueDepth, tm.produced, tm.insights)

	return tm
}

// RecordTask records a finished task.
func (tm *TaskMetrics) RecordTask(taskType, status string, duration time.Duration) {
	tm.tasks.WithLabelValues(taskType, status).Inc()
	tm.duration.WithLabelValues(taskType).Observe(duration.Seconds())
}

// UpdateQueueDepth sets the queue depth gauge.
func (tm *TaskMetrics) UpdateQueueDepth(depth int) {
	tm.queueDepth.Set(float64(depth))
}

// RecordInsight increments the produced-insight counter.
func (tm *TaskMetrics) RecordInsight(insightType string) {
	tm.produced.WithLabelValues(insightType).Inc()
}

// UpdateInsightCount sets the pool size gauge.
func (tm *TaskMetrics) UpdateInsightCount(count int) {
	tm.insights.Set(float64(count))
}
