package metrics

import (
	"time"

	"sentinel-hq/sentinel/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns every Prometheus metric exposed by the engine.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	budgetMetrics   *BudgetMetrics
	routingMetrics  *RoutingMetrics
	providerMetrics *ProviderMetrics
	taskMetrics     *TaskMetrics
}

// NewCollector creates a collector and registers its metrics with
// registry. A nil registry gets a fresh one, so tests can create as many
// collectors as they like.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := *cfg
	if c.Namespace == "" {
		c.Namespace = config.DefaultMetricsNamespace
	}
	if c.Subsystem == "" {
		c.Subsystem = config.DefaultMetricsSubsystem
	}

	return &Collector{
		config:          &c,
		registry:        registry,
		budgetMetrics:   NewBudgetMetrics(&c, registry),
		routingMetrics:  NewRoutingMetrics(&c, registry),
		providerMetrics: NewProviderMetrics(&c, registry),
		taskMetrics:     NewTaskMetrics(&c, registry),
	}
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// RecordUsage records a completed provider call in the ledger totals.
func (c *Collector) RecordUsage(apiType string, cost float64, tokens int) {
	if !c.enabled() {
		return
	}
	c.budgetMetrics.RecordUsage(apiType, cost, tokens)
}

// UpdateSpend publishes current daily and monthly spend and daily
// utilization (0-1).
func (c *Collector) UpdateSpend(daily, monthly, utilization float64) {
	if !c.enabled() {
		return
	}
	c.budgetMetrics.UpdateSpend(daily, monthly, utilization)
}

// RecordAlert records a budget alert at level ("warning", "emergency").
func (c *Collector) RecordAlert(level string) {
	if !c.enabled() {
		return
	}
	c.budgetMetrics.RecordAlert(level)
}

// RecordRouting records the provider chosen for an intent.
func (c *Collector) RecordRouting(apiType, intent string) {
	if !c.enabled() {
		return
	}
	c.routingMetrics.RecordDecision(apiType, intent)
}

// RecordReroute records a premium request diverted to a cheaper provider.
func (c *Collector) RecordReroute(from, to string) {
	if !c.enabled() {
		return
	}
	c.routingMetrics.RecordReroute(from, to)
}

// RecordRejection records a request refused for budget reasons.
func (c *Collector) RecordRejection(reason string) {
	if !c.enabled() {
		return
	}
	c.routingMetrics.RecordRejection(reason)
}

// RecordSoftFailure records a call that degraded to a fallback response.
func (c *Collector) RecordSoftFailure(apiType, cause string) {
	if !c.enabled() {
		return
	}
	c.routingMetrics.RecordSoftFailure(apiType, cause)
}

// RecordProviderCall records latency of a single provider call.
func (c *Collector) RecordProviderCall(provider string, latency time.Duration) {
	if !c.enabled() {
		return
	}
	c.providerMetrics.RecordLatency(provider, latency)
}

// RecordProviderError records a provider error by type ("auth",
// "rate_limit", "timeout", "server_error", "parse", "network").
func (c *Collector) RecordProviderError(provider, errorType string) {
	if !c.enabled() {
		return
	}
	c.providerMetrics.RecordError(provider, errorType)
}

// UpdateProviderHealth sets the provider health gauge.
func (c *Collector) UpdateProviderHealth(provider string, healthy bool) {
	if !c.enabled() {
		return
	}
	c.providerMetrics.UpdateHealth(provider, healthy)
}

// RecordTask records a finished background task.
// Status is "success", "failed" or "skipped".
func (c *Collector) RecordTask(taskType, status string, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.taskMetrics.RecordTask(taskType, status, duration)
}

// UpdateQueueDepth publishes the number of pending tasks.
func (c *Collector) UpdateQueueDepth(depth int) {
	if !c.enabled() {
		return
	}
	c.taskMetrics.UpdateQueueDepth(depth)
}

// RecordInsight records a produced insight of insightType.
func (c *Collector) RecordInsight(insightType string) {
	if !c.enabled() {
		return
	}
	c.taskMetrics.RecordInsight(insightType)
}

// UpdateInsightCount publishes the number of insights held in the pool.
func (c *Collector) UpdateInsightCount(count int) {
	if !c.enabled() {
		return
	}
	c.taskMetrics.UpdateInsightCount(count)
}
