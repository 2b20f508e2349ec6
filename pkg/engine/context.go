package engine

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"sentinel-hq/sentinel/pkg/routing"
)

// Tier is the subscription tier of the session user.
type Tier string

const (
	TierFree       Tier = "free"
	TierPremium    Tier = "premium"
	TierEnterprise Tier = "enterprise"
)

// Trip is a planned or ongoing stay in one country.
type Trip struct {
	Destination string    `json:"destination"`
	Country     string    `json:"country"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	Days        int       `json:"days"`
}

// Duration returns Days, or the inclusive day count between StartDate and
// EndDate when Days is unset.
func (t Trip) Duration() int {
	if t.Days > 0 {
		return t.Days
	}
	if t.StartDate.IsZero() || t.EndDate.IsZero() || t.EndDate.Before(t.StartDate) {
		return 0
	}
	return int(t.EndDate.Sub(t.StartDate).Hours()/24) + 1
}

// Calculation is one entry of the user's calculator history.
type Calculation struct {
	Type          string    `json:"type"`
	DaysUsed      int       `json:"daysUsed"`
	DaysRemaining int       `json:"daysRemaining"`
	Timestamp     time.Time `json:"timestamp"`
}

// SessionData is what the current session has shown or entered.
type SessionData struct {
	CurrentTrips       []Trip        `json:"currentTrips"`
	UpcomingTrips      []Trip        `json:"upcomingTrips"`
	CalculationHistory []Calculation `json:"calculationHistory"`
	LastActivity       time.Time     `json:"lastActivity"`
	SessionDuration    time.Duration `json:"sessionDuration"`
}

// BehaviorPatterns are long-lived preferences learned for the user.
type BehaviorPatterns struct {
	FrequentDestinations []string `json:"frequentDestinations"`
	TravelStyle          string   `json:"travelStyle"`
	BookingPatterns      []string `json:"bookingPatterns"`
	ComplianceHistory    []string `json:"complianceHistory"`
}

// Location is the user's approximate location.
type Location struct {
	Country string `json:"country"`
	City    string `json:"city,omitempty"`
}

// AIContext is the session intelligence context consumed by the scheduler
// and the router.
type AIContext struct {
	UserID           string             `json:"userId,omitempty"`
	Tier             Tier               `json:"tier"`
	Location         *Location          `json:"location,omitempty"`
	DeviceType       string             `json:"deviceType"`
	SessionData      SessionData        `json:"sessionData"`
	BehaviorPatterns BehaviorPatterns   `json:"behaviorPatterns"`
	CurrentIntent    routing.IntentType `json:"currentIntent"`
	FamilyMembers    int                `json:"familyMembers"`
}

// TripCount returns the number of current and upcoming trips.
func (c *AIContext) TripCount() int {
	return len(c.SessionData.CurrentTrips) + len(c.SessionData.UpcomingTrips)
}

// Trips returns current trips followed by upcoming trips.
func (c *AIContext) Trips() []Trip {
	trips := make([]Trip, 0, c.TripCount())
	trips = append(trips, c.SessionData.CurrentTrips...)
	return append(trips, c.SessionData.UpcomingTrips...)
}

// Paid reports whether the tier unlocks background analysis.
func (c *AIContext) Paid() bool {
	return c.Tier != "" && c.Tier != TierFree
}

// ContextStore holds the active session context.
type ContextStore struct {
	mu      sync.RWMutex
	current *AIContext
}

// NewContextStore returns an empty store.
func NewContextStore() *ContextStore {
	return &ContextStore{}
}

// Initialize replaces the active context wholesale.
func (s *ContextStore) Initialize(c AIContext) {
	cp, err := cloneContext(&c)
	if err != nil {
		// AIContext always marshals; fall back to a shallow copy.
		cp = &c
	}

	s.mu.Lock()
	s.current = cp
	s.mu.Unlock()
}

// Update shallow-merges partial into the active context. Top-level keys use
// the JSON field names of AIContext; nested values replace their counterpart
// wholesale. Unknown keys are ignored and values are not validated beyond
// what decoding requires. A value that cannot decode into its field leaves
// the context unchanged.
func (s *ContextStore) Update(partial map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	base := s.current
	if base == nil {
		base = &AIContext{}
	}

	raw, err := json.Marshal(base)
	if err != nil {
		return fmt.Errorf("encode context: %w", err)
	}
	fields := make(map[string]any)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return fmt.Errorf("decode context: %w", err)
	}
	for k, v := range partial {
		fields[k] = v
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode update: %w", err)
	}
	var next AIContext
	if err := json.Unmarshal(merged, &next); err != nil {
		return fmt.Errorf("apply update: %w", err)
	}

	s.current = &next
	return nil
}

// Snapshot returns a deep copy of the active context, or nil if none.
func (s *ContextStore) Snapshot() *AIContext {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil
	}
	cp, err := cloneContext(s.current)
	if err != nil {
		return nil
	}
	return cp
}

// Active reports whether a context has been initialized.
func (s *ContextStore) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil
}

// Clear drops the active context at session teardown.
func (s *ContextStore) Clear() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}

func cloneContext(c *AIContext) (*AIContext, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	var cp AIContext
	if err := json.Unmarshal(raw, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}
