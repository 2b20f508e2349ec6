package routing

import (
	"sync"
	"sync/atomic"
	"time"
)

// Stats is a snapshot of routing statistics.
type Stats struct {
	TotalRequests       int64            `json:"totalRequests"`
	RequestsPerProvider map[string]int64 `json:"requestsPerProvider"`
	Reroutes            int64            `json:"reroutes"`
	BudgetRejections    int64            `json:"budgetRejections"`
	ProviderFailures    int64            `json:"providerFailures"`
	LastResetTime       time.Time        `json:"lastResetTime"`
}

// AtomicRoutingStats implements thread-safe routing statistics using atomic operations.
type AtomicRoutingStats struct {
	totalRequests atomic.Int64

	// requestsPerProvider maps provider names to *atomic.Int64
	requestsPerProvider sync.Map

	reroutes   atomic.Int64
	rejections atomic.Int64
	failures   atomic.Int64

	// mu protects lastResetTime
	mu            sync.RWMutex
	lastResetTime time.Time
}

// NewAtomicRoutingStats creates a new atomic routing statistics tracker.
func NewAtomicRoutingStats() *AtomicRoutingStats {
	return &AtomicRoutingStats{lastResetTime: time.Now()}
}

// IncrementTotal increments the total request counter.
func (s *AtomicRoutingStats) IncrementTotal() {
	s.totalRequests.Add(1)
}

// IncrementProvider counts a successful call served by providerName.
func (s *AtomicRoutingStats) IncrementProvider(providerName string) {
	val, _ := s.requestsPerProvider.LoadOrStore(providerName, &atomic.Int64{})
	val.(*atomic.Int64).Add(1)
}

// IncrementReroute increments the reroute counter.
func (s *AtomicRoutingStats) IncrementReroute() {
	s.reroutes.Add(1)
}

// IncrementRejection increments the budget rejection counter.
func (s *AtomicRoutingStats) IncrementRejection() {
	s.rejections.Add(1)
}

// IncrementFailure increments the provider failure counter.
func (s *AtomicRoutingStats) IncrementFailure() {
	s.failures.Add(1)
}

// Snapshot returns a point-in-time copy of the statistics.
func (s *AtomicRoutingStats) Snapshot() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	perProvider := make(map[string]int64)
	s.requestsPerProvider.Range(func(key, value any) bool {
		perProvider[key.(string)] = value.(*atomic.Int64).Load()
		return true
	})

	return Stats{
		TotalRequests:       s.totalRequests.Load(),
		RequestsPerProvider: perProvider,
		Reroutes:            s.reroutes.Load(),
		BudgetRejections:    s.rejections.Load(),
		ProviderFailures:    s.failures.Load(),
		LastResetTime:       s.lastResetTime,
	}
}

// Reset resets all statistics to zero.
func (s *AtomicRoutingStats) Reset() {
	s.totalRequests.Store(0)
	s.reroutes.Store(0)
	s.rejections.Store(0)
	s.failures.Store(0)

	s.requestsPerProvider.Range(func(key, _ any) bool {
		s.requestsPerProvider.Delete(key)
		return true
	})

	s.mu.Lock()
	s.lastResetTime = time.Now()
	s.mu.Unlock()
}
