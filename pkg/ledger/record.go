package ledger

import (
	"time"
)

const (
	// DateLayout is the layout of Record.Date.
	DateLayout = "2006-01-02"

	// MonthLayout is the layout used for monthly aggregation.
	MonthLayout = "2006-01"

	// AnonymousUser is recorded when a call has no user identifier.
	AnonymousUser = "anonymous"
)

// Record is a single usage entry. Records are never mutated once appended.
type Record struct {
	// UserID identifies the session user, or AnonymousUser.
	UserID string `json:"userId"`

	// APIType is the provider that served the call (openai, perplexity, openrouter).
	APIType string `json:"apiType"`

	// Cost is the cost of the call in USD.
	Cost float64 `json:"cost"`

	// TokensUsed is the total token count reported by the provider.
	TokensUsed int `json:"tokensUsed"`

	// RequestType is the intent that produced the call.
	RequestType string `json:"requestType"`

	// Timestamp is when the call completed.
	Timestamp time.Time `json:"timestamp"`

	// Date is Timestamp formatted with DateLayout.
	Date string `json:"date"`

	// Hour is the hour of day of Timestamp (0-23).
	Hour int `json:"hour"`
}

// NewRecord builds a Record and derives Date and Hour from ts.
func NewRecord(userID, apiType string, cost float64, tokens int, requestType string, ts time.Time) Record {
	if userID == "" {
		userID = AnonymousUser
	}
	return Record{
		UserID:      userID,
		APIType:     apiType,
		Cost:        cost,
		TokensUsed:  tokens,
		RequestType: requestType,
		Timestamp:   ts,
		Date:        ts.Format(DateLayout),
		Hour:        ts.Hour(),
	}
}

// Month returns the record's month key (MonthLayout).
func (r Record) Month() string {
	if len(r.Date) >= len(MonthLayout) {
		return r.Date[:len(MonthLayout)]
	}
	return r.Timestamp.Format(MonthLayout)
}
