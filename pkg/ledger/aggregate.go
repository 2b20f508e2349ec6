package ledger

import (
	"time"
)

// Filter selects records for aggregation.
type Filter func(Record) bool

// OnDate selects records from the calendar day of t.
func OnDate(t time.Time) Filter {
	date := t.Format(DateLayout)
	return func(r Record) bool { return r.Date == date }
}

// InMonth selects records from the calendar month of t.
func InMonth(t time.Time) Filter {
	month := t.Format(MonthLayout)
	return func(r Record) bool { return r.Month() == month }
}

// ForUser selects records of one user. An empty userID selects
// AnonymousUser.
func ForUser(userID string) Filter {
	if userID == "" {
		userID = AnonymousUser
	}
	return func(r Record) bool { return r.UserID == userID }
}

// All combines filters with a logical AND.
func All(filters ...Filter) Filter {
	return func(r Record) bool {
		for _, f := range filters {
			if f != nil && !f(r) {
				return false
			}
		}
		return true
	}
}

// APIUsage is the aggregate usage of a single provider API.
type APIUsage struct {
	Requests int     `json:"requests"`
	Cost     float64 `json:"cost"`
	Tokens   int     `json:"tokens"`
}

// Summary is the aggregate of a set of records.
type Summary struct {
	Requests int                 `json:"requests"`
	Cost     float64             `json:"cost"`
	Tokens   int                 `json:"tokens"`
	ByAPI    map[string]APIUsage `json:"byApi"`
}

// AverageCost returns the mean cost per request, or 0 with no requests.
func (s Summary) AverageCost() float64 {
	if s.Requests == 0 {
		return 0
	}
	return s.Cost / float64(s.Requests)
}

// Summarize aggregates the records accepted by filter. A nil filter accepts
// every record.
func Summarize(records []Record, filter Filter) Summary {
	sum := Summary{ByAPI: make(map[string]APIUsage)}
	for _, r := range records {
		if filter != nil && !filter(r) {
			continue
		}
		sum.Requests++
		sum.Cost += r.Cost
		sum.Tokens += r.TokensUsed

		api := sum.ByAPI[r.APIType]
		api.Requests++
		api.Cost += r.Cost
		api.Tokens += r.TokensUsed
		sum.ByAPI[r.APIType] = api
	}
	return sum
}

// Spend returns the total cost of the records accepted by filter.
func Spend(records []Record, filter Filter) float64 {
	var total float64
	for _, r := range records {
		if filter == nil || filter(r) {
			total += r.Cost
		}
	}
	return total
}
