package metrics

import (
	"sentinel-hq/sentinel/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// BudgetMetrics tracks spend against the configured budgets.
//
// Metrics:
//   - sentinel_engine_usage_cost_usd_total: recorded cost by api
//   - sentinel_engine_usage_tokens_total: recorded tokens by api
//   - sentinel_engine_usage_requests_total: recorded calls by api
//   - sentinel_engine_budget_spend_usd: current spend by window
//   - sentinel_engine_budget_utilization_ratio: daily spend / daily budget
//   - sentinel_engine_budget_alerts_total: alerts raised by level
type BudgetMetrics struct {
	costTotal     *prometheus.CounterVec
	tokensTotal   *prometheus.CounterVec
	requestsTotal *prometheus.CounterVec
	spend         *prometheus.GaugeVec
	utilization   prometheus.Gauge
	alerts        *prometheus.CounterVec
}

// NewBudgetMetrics creates and registers budget metrics with the provided registry.
func NewBudgetMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *BudgetMetrics {
	bm := &BudgetMetrics{
		costTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "usage_cost_usd_total",
				Help:      "Total recorded provider cost in USD by api",
			},
			[]string{"api"},
		),
		tokensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "usage_tokens_total",
				Help:      "Total recorded tokens by api",
			},
			[]string{"api"},
		),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "usage_requests_total",
				Help:      "Total recorded provider calls by api",
			},
			[]string{"api"},
		),
		spend: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "budget_spend_usd",
				Help:      "Current spend in USD by budget window",
			},
			[]string{"window"},
		),
		utilization: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "budget_utilization_ratio",
				Help:      "Daily spend divided by the daily budget",
			},
		),
		alerts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "budget_alerts_total",
				Help:      "Total budget alerts raised by level",
			},
			[]string{"level"},
		),
	}

	registry.MustRegister(
		bm.costTotal,
		bm.tokensTotal,
		bm.requestsTotal,
		bm.spend,
		bm.utilization,
		bm.alerts,
	)

	return bm
}

// RecordUsage adds one provider call to the usage counters.
func (bm *BudgetMetrics) RecordUsage(apiType string, cost float64, tokens int) {
	bm.requestsTotal.WithLabelValues(apiType).Inc()
	if cost > 0 {
		bm.costTotal.WithLabelValues(apiType).Add(cost)
	}
	if tokens > 0 {
		bm.tokensTotal.WithLabelValues(apiType).Add(float64(tokens))
	}
}

// UpdateSpend sets the spend and utilization gauges.
func (bm *BudgetMetrics) UpdateSpend(daily, monthly, utilization float64) {
	bm.spend.WithLabelValues("daily").Set(daily)
	bm.spend.WithLabelValues("monthly").Set(monthly)
	bm.utilization.Set(utilization)
}

// RecordAlert increments the alert counter for level.
func (bm *BudgetMetrics) RecordAlert(level string) {
	bm.alerts.WithLabelValues(level).Inc()
}
