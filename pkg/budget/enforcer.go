package budget

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"sentinel-hq/sentinel/pkg/clock"
	"sentinel-hq/sentinel/pkg/ledger"
	"sentinel-hq/sentinel/pkg/telemetry/metrics"
)

// Rejection reasons returned in Decision.Reason.
const (
	ReasonDailyLimit       = "daily budget limit reached"
	ReasonMonthlyLimit     = "monthly budget limit reached"
	ReasonUserDailyLimit   = "user daily limit reached"
	ReasonUserMonthlyLimit = "user monthly limit reached"
)

// Suggestions returned alongside a rejection or reroute.
const (
	SuggestBasicFeatures  = "use basic calculator and manual features until tomorrow"
	SuggestWaitOrPriority = "wait until tomorrow or upgrade for priority access"
	SuggestCheaperAPI     = "route to a cheaper provider"
)

// Decision is the outcome of an admission check.
type Decision struct {
	// Allowed reports whether the call may proceed.
	Allowed bool

	// Reason names the ceiling that refused the call.
	Reason string

	// Suggestion is a user-presentable next step.
	Suggestion string

	// Reroute asks the caller to use a cheaper provider.
	Reroute bool

	// Utilization is daily spend including the estimate over the daily budget.
	Utilization float64

	// Err is a *LimitError when Allowed is false.
	Err error
}

// Status is a snapshot of the current spend counters.
type Status struct {
	Date               string  `json:"date"`
	DailySpend         float64 `json:"dailySpend"`
	DailyBudget        float64 `json:"dailyBudget"`
	DailyUtilization   float64 `json:"dailyUtilization"`
	MonthlySpend       float64 `json:"monthlySpend"`
	MonthlyBudget      float64 `json:"monthlyBudget"`
	MonthlyUtilization float64 `json:"monthlyUtilization"`
}

// Option configures an Enforcer.
type Option func(*Enforcer)

// WithClock sets the clock used for windows and record timestamps.
func WithClock(c clock.Clock) Option {
	return func(e *Enforcer) { e.clock = c }
}

// WithPricing replaces the default rates.
func WithPricing(p Pricing) Option {
	return func(e *Enforcer) { e.pricing = p }
}

// WithMetrics publishes spend and alerts to collector.
func WithMetrics(collector *metrics.Collector) Option {
	return func(e *Enforcer) { e.metrics = collector }
}

// Enforcer admits and records provider calls against the configured
// ceilings. It is safe for concurrent use.
type Enforcer struct {
	config  Config
	pricing Pricing
	ledger  *ledger.Ledger
	clock   clock.Clock
	metrics *metrics.Collector
	logger  *slog.Logger

	mu           sync.Mutex
	day          string
	month        string
	dailySpend   float64
	monthlySpend float64
	userDaily    map[string]float64
	userMonthly  map[string]float64
	alertsSent   map[AlertLevel]bool

	alerts *alertHub
}

// NewEnforcer creates an enforcer over l and seeds its counters with the
// records of the current day and month.
func NewEnforcer(ctx context.Context, cfg Config, l *ledger.Ledger, opts ...Option) (*Enforcer, error) {
	e := &Enforcer{
		config:      cfg,
		pricing:     DefaultPricing(),
		ledger:      l,
		clock:       clock.Real(),
		logger:      slog.Default().With("component", "budget"),
		userDaily:   make(map[string]float64),
		userMonthly: make(map[string]float64),
		alertsSent:  make(map[AlertLevel]bool),
		alerts:      newAlertHub(),
	}
	for _, opt := range opts {
		opt(e)
	}

	records, err := l.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to seed budget counters: %w", err)
	}

	now := e.clock.Now()
	e.day = now.Format(ledger.DateLayout)
	e.month = now.Format(ledger.MonthLayout)
	for _, r := range records {
		if r.Month() != e.month {
			continue
		}
		e.monthlySpend += r.Cost
		e.userMonthly[r.UserID] += r.Cost
		if r.Date == e.day {
			e.dailySpend += r.Cost
			e.userDaily[r.UserID] += r.Cost
		}
	}

	// Levels already passed before a restart are not announced again.
	if u := e.utilizationLocked(e.dailySpend); u > 0 {
		if u >= cfg.AlertThreshold {
			e.alertsSent[AlertWarning] = true
		}
		if u >= cfg.EmergencyThreshold {
			e.alertsSent[AlertEmergency] = true
		}
	}

	e.logger.Info("budget enforcer ready",
		"daily_budget", cfg.DailyBudget,
		"daily_spend", e.dailySpend,
		"monthly_spend", e.monthlySpend,
	)
	e.metrics.UpdateSpend(e.dailySpend, e.monthlySpend, e.utilizationLocked(e.dailySpend))

	return e, nil
}

// Config returns the enforcer's ceilings.
func (e *Enforcer) Config() Config {
	return e.config
}

// Pricing returns the enforcer's rates.
func (e *Enforcer) Pricing() Pricing {
	return e.pricing
}

// CanMakeRequest reports whether any budget remains today.
func (e *Enforcer) CanMakeRequest() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.rolloverLocked()
	if e.config.DailyBudget > 0 && e.dailySpend >= e.config.DailyBudget {
		return false
	}
	if e.config.MonthlyBudget > 0 && e.monthlySpend >= e.config.MonthlyBudget {
		return false
	}
	return true
}

// CanProcessRequest checks whether a call of estimatedCost to apiType on
// behalf of userID fits under every ceiling. The checks run in order:
// global daily, global monthly, user daily, user monthly. A call to the
// most expensive provider that would take daily utilization to the alert
// threshold is allowed with Reroute set.
func (e *Enforcer) CanProcessRequest(userID string, estimatedCost float64, apiType string) Decision {
	if estimatedCost < 0 {
		estimatedCost = 0
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.rolloverLocked()

	projected := e.utilizationLocked(e.dailySpend + estimatedCost)

	reject := func(reason, suggestion string, window Window, user string, limit, current float64) Decision {
		return Decision{
			Reason:      reason,
			Suggestion:  suggestion,
			Utilization: projected,
			Err: &LimitError{
				Window:    window,
				UserID:    user,
				Limit:     limit,
				Current:   current,
				Estimated: estimatedCost,
			},
		}
	}

	if c := e.config.DailyBudget; c > 0 && e.dailySpend+estimatedCost > c {
		return reject(ReasonDailyLimit, SuggestBasicFeatures, WindowDaily, "", c, e.dailySpend)
	}
	if c := e.config.MonthlyBudget; c > 0 && e.monthlySpend+estimatedCost > c {
		return reject(ReasonMonthlyLimit, SuggestBasicFeatures, WindowMonthly, "", c, e.monthlySpend)
	}

	if userID != "" && userID != ledger.AnonymousUser {
		if c := e.config.UserDailyLimit; c > 0 && e.userDaily[userID]+estimatedCost > c {
			return reject(ReasonUserDailyLimit, SuggestWaitOrPriority, WindowUserDaily, userID, c, e.userDaily[userID])
		}
		if c := e.config.UserMonthlyLimit; c > 0 && e.userMonthly[userID]+estimatedCost > c {
			return reject(ReasonUserMonthlyLimit, SuggestWaitOrPriority, WindowUserMonthly, userID, c, e.userMonthly[userID])
		}
	}

	d := Decision{Allowed: true, Utilization: projected}
	if e.config.AlertThreshold > 0 && projected >= e.config.AlertThreshold && apiType == e.pricing.MostExpensive() {
		d.Reroute = true
		d.Suggestion = SuggestCheaperAPI
	}
	return d
}

// RecordUsage appends a usage record, updates the counters and raises any
// alert whose threshold the day's spend has now reached. Subscribers run
// before RecordUsage returns. A persistence failure is returned after the
// counters and alerts have been updated.
func (e *Enforcer) RecordUsage(ctx context.Context, userID, apiType string, cost float64, tokens int, requestType string) error {
	if cost < 0 {
		cost = 0
	}

	now := e.clock.Now()
	rec := ledger.NewRecord(userID, apiType, cost, tokens, requestType, now)
	// The counters are the source of truth for admission, so they move even
	// when the record could not be persisted.
	persistErr := e.ledger.Record(ctx, rec)
	if persistErr != nil {
		e.logger.Warn("usage record not persisted", "api_type", apiType, "cost", cost, "error", persistErr)
	}

	e.mu.Lock()
	e.rolloverLocked()
	e.dailySpend += cost
	e.monthlySpend += cost
	e.userDaily[rec.UserID] += cost
	e.userMonthly[rec.UserID] += cost

	utilization := e.utilizationLocked(e.dailySpend)
	pending := e.pendingAlertsLocked(utilization, now)
	daily, monthly := e.dailySpend, e.monthlySpend
	e.mu.Unlock()

	e.metrics.RecordUsage(apiType, cost, tokens)
	e.metrics.UpdateSpend(daily, monthly, utilization)

	for _, alert := range pending {
		e.logger.Warn("budget alert",
			"level", alert.Level,
			"utilization", alert.Utilization,
			"daily_spend", alert.DailySpend,
			"recommendation", alert.Recommendation,
		)
		e.metrics.RecordAlert(string(alert.Level))
		e.alerts.publish(alert)
	}

	if persistErr != nil {
		return fmt.Errorf("failed to record usage: %w", persistErr)
	}
	return nil
}

// Subscribe registers fn for budget alerts and returns a function that
// removes the registration.
func (e *Enforcer) Subscribe(fn func(Alert)) (unsubscribe func()) {
	return e.alerts.subscribe(fn)
}

// Status returns the current spend counters.
func (e *Enforcer) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.rolloverLocked()

	s := Status{
		Date:             e.day,
		DailySpend:       e.dailySpend,
		DailyBudget:      e.config.DailyBudget,
		DailyUtilization: e.utilizationLocked(e.dailySpend),
		MonthlySpend:     e.monthlySpend,
		MonthlyBudget:    e.config.MonthlyBudget,
	}
	if e.config.MonthlyBudget > 0 {
		s.MonthlyUtilization = e.monthlySpend / e.config.MonthlyBudget
	}
	return s
}

// UserSpend returns the day and month spend of userID.
func (e *Enforcer) UserSpend(userID string) (daily, monthly float64) {
	if userID == "" {
		userID = ledger.AnonymousUser
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.rolloverLocked()
	return e.userDaily[userID], e.userMonthly[userID]
}

// rolloverLocked zeroes the counters of windows that ended since the last
// access.
func (e *Enforcer) rolloverLocked() {
	now := e.clock.Now()
	day := now.Format(ledger.DateLayout)
	month := now.Format(ledger.MonthLayout)

	if day != e.day {
		e.logger.Info("daily budget window reset", "previous", e.day, "current", day, "spend", e.dailySpend)
		e.day = day
		e.dailySpend = 0
		e.userDaily = make(map[string]float64)
		e.alertsSent = make(map[AlertLevel]bool)
	}
	if month != e.month {
		e.month = month
		e.monthlySpend = 0
		e.userMonthly = make(map[string]float64)
	}
}

func (e *Enforcer) utilizationLocked(spend float64) float64 {
	if e.config.DailyBudget <= 0 {
		return 0
	}
	return spend / e.config.DailyBudget
}
