package routing

import (
	"sentinel-hq/sentinel/pkg/budget"
	"sentinel-hq/sentinel/pkg/providers"
)

// IntentType classifies the purpose of a request.
type IntentType string

const (
	IntentCompliance IntentType = "compliance"
	IntentDeals      IntentType = "deals"
	IntentPlanning   IntentType = "planning"
	IntentRealtime   IntentType = "realtime"
	IntentComplex    IntentType = "complex"
)

// Tier is an openrouter model tier.
type Tier string

const (
	TierCheap Tier = "cheap"
	TierMid   Tier = "mid"
)

// Request is a query to route.
type Request struct {
	// Query is the natural-language question.
	Query string

	// IntentType drives provider selection.
	IntentType IntentType

	// Context is forwarded to the provider as-is.
	Context map[string]any

	// FamilyMembers is the number of travellers in the party.
	FamilyMembers int

	// TripCount is the number of current and upcoming trips.
	TripCount int

	// MaxTokens bounds the response (0 = routing default).
	MaxTokens int

	// Temperature overrides the sampling temperature.
	Temperature *float64

	// UserID is checked against the per-user limits. Empty is anonymous.
	UserID string
}

// Selection is the outcome of SelectOptimalAPI.
type Selection struct {
	// APIType is the chosen provider.
	APIType string `json:"apiType"`

	// Tier is the openrouter model tier, empty for other providers.
	Tier Tier `json:"tier,omitempty"`

	// Model is the model sent to the provider, empty for provider default.
	Model string `json:"model,omitempty"`

	// EstimatedCost is the cost used for admission.
	EstimatedCost float64 `json:"estimatedCost"`

	// Temperature is the sampling temperature the rule sets, if any.
	Temperature *float64 `json:"temperature,omitempty"`

	// MaxTokens is the response bound sent to the provider.
	MaxTokens int `json:"maxTokens"`

	// Rule names the policy rule that matched.
	Rule string `json:"rule"`
}

// Result is the outcome of Route.
type Result struct {
	// Response is always non-nil.
	Response *providers.Response

	// Selection is the provider choice after any reroute.
	Selection Selection

	// Decision is the budget admission outcome.
	Decision budget.Decision

	// Rerouted reports that a premium selection was swapped for openrouter.
	Rerouted bool

	// Rejected reports a budget refusal.
	Rejected bool

	// Failed reports a provider failure.
	Failed bool

	// Err is the cause of a rejection or failure.
	Err error
}

// Soft reports whether the response is a synthetic fallback.
func (r *Result) Soft() bool {
	return r.Rejected || r.Failed
}
