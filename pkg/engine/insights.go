package engine

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InsightType classifies an insight for presentation.
type InsightType string

const (
	InsightSavings      InsightType = "savings"
	InsightCompliance   InsightType = "compliance"
	InsightOptimization InsightType = "optimization"
	InsightWarning      InsightType = "warning"
	InsightOpportunity  InsightType = "opportunity"
)

// Urgency levels carried in InsightValue.
const (
	UrgencyLow    = "low"
	UrgencyMedium = "medium"
	UrgencyHigh   = "high"
)

const (
	// MaxCurrentInsights caps the insights returned by Current.
	MaxCurrentInsights = 3

	// MinPresentConfidence is the confidence below which insights are
	// never presented.
	MinPresentConfidence = 0.6

	// SignificantConfidence is the bar above which a task result triggers
	// subscriber notification.
	SignificantConfidence = 0.7
)

// InsightValue quantifies an insight.
type InsightValue struct {
	Savings   *float64 `json:"savings,omitempty"`
	RiskLevel string   `json:"riskLevel,omitempty"`
	Urgency   string   `json:"urgency,omitempty"`
}

// InsightAction is a follow-up the UI may offer.
type InsightAction struct {
	Type    string         `json:"type"`
	Trigger string         `json:"trigger"`
	Data    map[string]any `json:"data,omitempty"`
}

// Insight is a recommendation produced by a background task.
type Insight struct {
	ID         string         `json:"id"`
	Type       InsightType    `json:"type"`
	Title      string         `json:"title"`
	Message    string         `json:"message"`
	Confidence float64        `json:"confidence"`
	Value      *InsightValue  `json:"value,omitempty"`
	Action     *InsightAction `json:"action,omitempty"`
	Source     string         `json:"source"`
	CreatedAt  time.Time      `json:"createdAt"`
	ExpiresAt  *time.Time     `json:"expiresAt,omitempty"`
	Presented  bool           `json:"presented"`
}

// Expired reports whether the insight has an expiry at or before now.
func (i *Insight) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && !i.ExpiresAt.After(now)
}

// presentable reports whether the insight may be shown at now.
func (i *Insight) presentable(now time.Time) bool {
	return !i.Presented && i.Confidence >= MinPresentConfidence && !i.Expired(now)
}

// Subscription is a handle returned by InsightPool.Subscribe.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// Unsubscribe stops delivery. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(s.cancel)
}

// InsightPool holds insights produced by completed tasks.
type InsightPool struct {
	mu       sync.RWMutex
	insights []*Insight
	byID     map[string]*Insight

	subMu  sync.RWMutex
	nextID uint64
	subs   map[uint64]func([]Insight)
}

// NewInsightPool returns an empty pool.
func NewInsightPool() *InsightPool {
	return &InsightPool{
		byID: make(map[string]*Insight),
		subs: make(map[uint64]func([]Insight)),
	}
}

// Add appends insights. Missing IDs are generated and confidence is clamped
// to [0,1]. An insight whose ID is already pooled is ignored so a presented
// insight cannot re-surface.
func (p *InsightPool) Add(insights ...Insight) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	added := 0
	for _, in := range insights {
		if in.ID == "" {
			in.ID = uuid.New().String()
		}
		if _, exists := p.byID[in.ID]; exists {
			continue
		}
		in.Confidence = clampConfidence(in.Confidence)

		stored := in
		p.insights = append(p.insights, &stored)
		p.byID[stored.ID] = &stored
		added++
	}
	return added
}

// Current returns up to MaxCurrentInsights unpresented, unexpired insights
// with confidence of at least MinPresentConfidence, highest confidence
// first. Ties keep insertion order.
func (p *InsightPool) Current(now time.Time) []Insight {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]Insight, 0, MaxCurrentInsights)
	for _, in := range p.insights {
		if in.presentable(now) {
			out = append(out, *in)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })

	if len(out) > MaxCurrentInsights {
		out = out[:MaxCurrentInsights]
	}
	return out
}

// All returns a copy of every pooled insight in insertion order.
func (p *InsightPool) All() []Insight {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]Insight, len(p.insights))
	for i, in := range p.insights {
		out[i] = *in
	}
	return out
}

// Len returns the number of pooled insights.
func (p *InsightPool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.insights)
}

// MarkPresented flags the given insights as presented. Unknown IDs and
// already presented insights are ignored. It returns the number newly
// marked.
func (p *InsightPool) MarkPresented(ids ...string) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	marked := 0
	for _, id := range ids {
		if in, ok := p.byID[id]; ok && !in.Presented {
			in.Presented = true
			marked++
		}
	}
	return marked
}

// Dismiss removes the given insights from the pool. Dismissed IDs are not
// remembered.
func (p *InsightPool) Dismiss(ids ...string) int {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	return p.removeWhere(func(in *Insight) bool { return drop[in.ID] })
}

// CleanupExpired removes insights whose expiry is at or before now.
// Insights without an expiry are kept.
func (p *InsightPool) CleanupExpired(now time.Time) int {
	return p.removeWhere(func(in *Insight) bool { return in.Expired(now) })
}

func (p *InsightPool) removeWhere(match func(*Insight) bool) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	kept := p.insights[:0]
	removed := 0
	for _, in := range p.insights {
		if match(in) {
			delete(p.byID, in.ID)
			removed++
			continue
		}
		kept = append(kept, in)
	}
	for i := len(kept); i < len(p.insights); i++ {
		p.insights[i] = nil
	}
	p.insights = kept
	return removed
}

// Subscribe registers fn to receive the current insight list on every
// notification. Subscribers run synchronously in registration order.
func (p *InsightPool) Subscribe(fn func([]Insight)) *Subscription {
	p.subMu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	p.subMu.Unlock()

	return &Subscription{cancel: func() {
		p.subMu.Lock()
		delete(p.subs, id)
		p.subMu.Unlock()
	}}
}

// Notify delivers Current(now) to every subscriber. Nothing is delivered
// when there is nothing to present.
func (p *InsightPool) Notify(now time.Time) int {
	current := p.Current(now)
	if len(current) == 0 {
		return 0
	}

	p.subMu.RLock()
	ids := make([]uint64, 0, len(p.subs))
	for id := range p.subs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	fns := make([]func([]Insight), len(ids))
	for i, id := range ids {
		fns[i] = p.subs[id]
	}
	p.subMu.RUnlock()

	for _, fn := range fns {
		list := make([]Insight, len(current))
		copy(list, current)
		fn(list)
	}
	return len(fns)
}

func clampConfidence(c float64) float64 {
	switch {
	case c < 0 || math.IsNaN(c):
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}
