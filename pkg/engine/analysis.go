package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sentinel-hq/sentinel/pkg/clock"
	"sentinel-hq/sentinel/pkg/providers"
	"sentinel-hq/sentinel/pkg/routing"
)

// Schengen thresholds in days of the 90-day allowance.
const (
	SchengenLimit        = 90
	SchengenWarningDays  = 80
	SchengenWindowDays   = 180
	schengenWarningConf  = 0.9
	schengenExceededConf = 0.95
)

// Insight lifetimes for provider-backed routines.
const (
	DealInsightTTL  = 24 * time.Hour
	PriceInsightTTL = 6 * time.Hour
)

// Analyzer runs the analysis routine for a task.
type Analyzer interface {
	Analyze(ctx context.Context, task *Task) ([]Insight, error)
}

// AnalyzerFunc adapts a function to Analyzer.
type AnalyzerFunc func(ctx context.Context, task *Task) ([]Insight, error)

// Analyze calls f.
func (f AnalyzerFunc) Analyze(ctx context.Context, task *Task) ([]Insight, error) {
	return f(ctx, task)
}

// Querier routes a request to a provider. *routing.Router implements it.
type Querier interface {
	Route(ctx context.Context, req *routing.Request) *routing.Result
}

// Routines is the default Analyzer.
type Routines struct {
	querier Querier
	clock   clock.Clock
}

// NewRoutines returns the analysis routines backed by querier.
func NewRoutines(querier Querier, clk clock.Clock) *Routines {
	if clk == nil {
		clk = clock.Real()
	}
	return &Routines{querier: querier, clock: clk}
}

// Analyze dispatches on task.Type.
func (r *Routines) Analyze(ctx context.Context, task *Task) ([]Insight, error) {
	switch task.Type {
	case TaskComplianceMonitoring:
		return r.complianceMonitoring(task), nil
	case TaskDealHunting:
		return r.dealHunting(ctx, task), nil
	case TaskPriceTracking:
		return r.priceTracking(ctx, task), nil
	case TaskOptimization:
		return r.optimization(ctx, task), nil
	case TaskPredictiveAnalysis:
		return r.predictiveAnalysis(ctx, task), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAnalysisType, task.Type)
	}
}

var schengenCountries = func() map[string]bool {
	names := []string{
		"austria", "at", "belgium", "be", "bulgaria", "bg", "croatia", "hr",
		"czech republic", "czechia", "cz", "denmark", "dk", "estonia", "ee",
		"finland", "fi", "france", "fr", "germany", "de", "greece", "gr",
		"hungary", "hu", "iceland", "is", "italy", "it", "latvia", "lv",
		"liechtenstein", "li", "lithuania", "lt", "luxembourg", "lu",
		"malta", "mt", "netherlands", "nl", "norway", "no", "poland", "pl",
		"portugal", "pt", "romania", "ro", "slovakia", "sk", "slovenia", "si",
		"spain", "es", "sweden", "se", "switzerland", "ch",
	}
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}()

// IsSchengen reports whether country (name or ISO 3166 alpha-2 code) is in
// the Schengen area.
func IsSchengen(country string) bool {
	return schengenCountries[strings.ToLower(strings.TrimSpace(country))]
}

// SchengenDays sums the days of Schengen trips that overlap the 180-day
// window centred on now. Trips without a country or without dates always
// count. This is an approximation of the rolling 90/180 rule.
func SchengenDays(trips []Trip, now time.Time) int {
	windowStart := now.AddDate(0, 0, -SchengenWindowDays)
	windowEnd := now.AddDate(0, 0, SchengenWindowDays)

	total := 0
	for _, t := range trips {
		if strings.TrimSpace(t.Country) != "" && !IsSchengen(t.Country) {
			continue
		}
		if !t.EndDate.IsZero() && t.EndDate.Before(windowStart) {
			continue
		}
		if !t.StartDate.IsZero() && t.StartDate.After(windowEnd) {
			continue
		}
		total += t.Duration()
	}
	return total
}

func (r *Routines) complianceMonitoring(task *Task) []Insight {
	if task.Context == nil {
		return nil
	}
	now := r.clock.Now()
	used := SchengenDays(task.Context.Trips(), now)

	action := &InsightAction{
		Type:    "open_calculator",
		Trigger: string(TaskComplianceMonitoring),
		Data:    map[string]any{"daysUsed": used, "limit": SchengenLimit},
	}

	switch {
	case used > SchengenLimit:
		return []Insight{{
			Type:       InsightCompliance,
			Title:      "Schengen Limit Exceeded",
			Message:    fmt.Sprintf("Your trips add up to %d days in the Schengen area, over the %d-day limit. Adjust your plans to avoid an overstay.", used, SchengenLimit),
			Confidence: schengenExceededConf,
			Value:      &InsightValue{RiskLevel: "critical", Urgency: UrgencyHigh},
			Action:     action,
			Source:     string(TaskComplianceMonitoring),
			CreatedAt:  now,
		}}
	case used >= SchengenWarningDays:
		return []Insight{{
			Type:       InsightWarning,
			Title:      "Approaching Schengen Limit",
			Message:    fmt.Sprintf("You have used %d of %d Schengen days. %d days remain.", used, SchengenLimit, SchengenLimit-used),
			Confidence: schengenWarningConf,
			Value:      &InsightValue{RiskLevel: "high", Urgency: UrgencyHigh},
			Action:     action,
			Source:     string(TaskComplianceMonitoring),
			CreatedAt:  now,
		}}
	}
	return nil
}

func (r *Routines) dealHunting(ctx context.Context, task *Task) []Insight {
	if task.Context == nil || len(task.Context.SessionData.UpcomingTrips) == 0 {
		return nil
	}
	query := "Find flight and hotel deals for upcoming trips to " + destinations(task.Context.SessionData.UpcomingTrips)

	resp, ok := r.ask(ctx, task, routing.IntentDeals, query)
	if !ok {
		return nil
	}
	now := r.clock.Now()
	expires := now.Add(DealInsightTTL)

	if len(resp.Recommendations) == 0 {
		return []Insight{r.answerInsight(resp, InsightOpportunity, "Travel Deals Found", now, &expires)}
	}

	insights := make([]Insight, 0, len(resp.Recommendations))
	for _, rec := range resp.Recommendations {
		in := Insight{
			Type:       InsightOpportunity,
			Title:      rec.Title,
			Message:    rec.Description,
			Confidence: resp.Confidence,
			Source:     resp.Provider,
			CreatedAt:  now,
			ExpiresAt:  &expires,
		}
		if rec.Value != nil && *rec.Value > 0 {
			savings := *rec.Value
			in.Type = InsightSavings
			in.Value = &InsightValue{Savings: &savings, Urgency: UrgencyMedium}
		}
		if rec.Affiliate != "" {
			in.Action = &InsightAction{
				Type:    "view_deal",
				Trigger: string(TaskDealHunting),
				Data:    map[string]any{"affiliate": rec.Affiliate},
			}
		}
		insights = append(insights, in)
	}
	return insights
}

func (r *Routines) priceTracking(ctx context.Context, task *Task) []Insight {
	if task.Context == nil || len(task.Context.SessionData.UpcomingTrips) == 0 {
		return nil
	}
	query := "Current flight prices to " + destinations(task.Context.SessionData.UpcomingTrips)

	resp, ok := r.ask(ctx, task, routing.IntentRealtime, query)
	if !ok {
		return nil
	}
	now := r.clock.Now()
	expires := now.Add(PriceInsightTTL)
	return []Insight{r.answerInsight(resp, InsightOpportunity, "Price Update", now, &expires)}
}

func (r *Routines) optimization(ctx context.Context, task *Task) []Insight {
	if task.Context == nil || task.Context.TripCount() == 0 {
		return nil
	}
	query := "Optimize the itinerary for trips to " + destinations(task.Context.Trips())

	resp, ok := r.ask(ctx, task, routing.IntentPlanning, query)
	if !ok {
		return nil
	}
	return []Insight{r.answerInsight(resp, InsightOptimization, "Trip Optimization", r.clock.Now(), nil)}
}

func (r *Routines) predictiveAnalysis(ctx context.Context, task *Task) []Insight {
	if task.Context == nil {
		return nil
	}
	query := "Predict upcoming travel compliance risks and opportunities"
	if dests := task.Context.BehaviorPatterns.FrequentDestinations; len(dests) > 0 {
		query += " for a traveler who often visits " + strings.Join(dests, ", ")
	}

	resp, ok := r.ask(ctx, task, routing.IntentComplex, query)
	if !ok {
		return nil
	}
	return []Insight{r.answerInsight(resp, InsightOpportunity, "Travel Forecast", r.clock.Now(), nil)}
}

// ask routes a query built from the task context. It reports false when
// the router degraded to a soft response or the answer carries no
// confidence.
func (r *Routines) ask(ctx context.Context, task *Task, intent routing.IntentType, query string) (*providers.Response, bool) {
	if r.querier == nil {
		return nil, false
	}
	c := task.Context
	res := r.querier.Route(ctx, &routing.Request{
		Query:         query,
		IntentType:    intent,
		Context:       requestContext(c),
		FamilyMembers: c.FamilyMembers,
		TripCount:     c.TripCount(),
		UserID:        c.UserID,
	})
	if res == nil || res.Soft() || res.Response == nil || res.Response.Confidence <= 0 {
		return nil, false
	}
	return res.Response, true
}

func (r *Routines) answerInsight(resp *providers.Response, typ InsightType, title string, now time.Time, expires *time.Time) Insight {
	in := Insight{
		Type:       typ,
		Title:      title,
		Message:    resp.Answer,
		Confidence: resp.Confidence,
		Source:     resp.Provider,
		CreatedAt:  now,
		ExpiresAt:  expires,
	}
	if len(resp.Sources) > 0 {
		in.Action = &InsightAction{Type: "view_sources", Trigger: resp.Provider, Data: map[string]any{"sources": resp.Sources}}
	}
	return in
}

func requestContext(c *AIContext) map[string]any {
	out := map[string]any{
		"tier":          string(c.Tier),
		"familyMembers": c.FamilyMembers,
		"tripCount":     c.TripCount(),
	}
	if c.Location != nil {
		out["location"] = c.Location.Country
	}
	if c.BehaviorPatterns.TravelStyle != "" {
		out["travelStyle"] = c.BehaviorPatterns.TravelStyle
	}
	return out
}

func destinations(trips []Trip) string {
	seen := make(map[string]bool, len(trips))
	names := make([]string, 0, len(trips))
	for _, t := range trips {
		name := t.Destination
		if name == "" {
			name = t.Country
		}
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return strings.Join(names, ", ")
}
