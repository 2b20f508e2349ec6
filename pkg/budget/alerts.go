package budget

import (
	"sort"
	"sync"
	"time"
)

// AlertLevel is the severity of a budget alert.
type AlertLevel string

const (
	AlertWarning   AlertLevel = "warning"
	AlertEmergency AlertLevel = "emergency"
)

// Alert recommendations.
const (
	RecommendCheaperAPI     = "route to cheaper API"
	RecommendDisablePremium = "disable premium features"
)

// Alert is raised when daily utilization reaches a threshold.
type Alert struct {
	Level          AlertLevel `json:"level"`
	Utilization    float64    `json:"utilization"`
	DailySpend     float64    `json:"dailySpend"`
	DailyBudget    float64    `json:"dailyBudget"`
	Recommendation string     `json:"recommendation"`
	Timestamp      time.Time  `json:"timestamp"`
}

// pendingAlertsLocked returns the alerts due at utilization and marks them
// sent for the day.
func (e *Enforcer) pendingAlertsLocked(utilization float64, now time.Time) []Alert {
	var due []Alert

	levels := []struct {
		level          AlertLevel
		threshold      float64
		recommendation string
	}{
		{AlertWarning, e.config.AlertThreshold, RecommendCheaperAPI},
		{AlertEmergency, e.config.EmergencyThreshold, RecommendDisablePremium},
	}

	for _, l := range levels {
		if l.threshold <= 0 || utilization < l.threshold || e.alertsSent[l.level] {
			continue
		}
		e.alertsSent[l.level] = true
		due = append(due, Alert{
			Level:          l.level,
			Utilization:    utilization,
			DailySpend:     e.dailySpend,
			DailyBudget:    e.config.DailyBudget,
			Recommendation: l.recommendation,
			Timestamp:      now,
		})
	}

	return due
}

// alertHub fans alerts out to subscribers in registration order.
type alertHub struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]func(Alert)
}

func newAlertHub() *alertHub {
	return &alertHub{subs: make(map[uint64]func(Alert))}
}

func (h *alertHub) subscribe(fn func(Alert)) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

func (h *alertHub) publish(alert Alert) {
	h.mu.RLock()
	ids := make([]uint64, 0, len(h.subs))
	for id := range h.subs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	fns := make([]func(Alert), len(ids))
	for i, id := range ids {
		fns[i] = h.subs[id]
	}
	h.mu.RUnlock()

	for _, fn := range fns {
		fn(alert)
	}
}
