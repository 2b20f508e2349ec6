package providers

import (
	"time"

	"sentinel-hq/sentinel/pkg/telemetry/tracing"
)

// Provider names used by the router and the ledger.
const (
	OpenAI     = "openai"
	Perplexity = "perplexity"
	OpenRouter = "openrouter"
)

// Request is the normalized request body sent to a provider route.
type Request struct {
	// Query is the natural-language question.
	Query string `json:"query"`

	// Context carries arbitrary structured context for the provider.
	Context map[string]any `json:"context,omitempty"`

	// MaxTokens bounds the response length (0 = provider default).
	MaxTokens int `json:"maxTokens,omitempty"`

	// Temperature controls sampling (nil = provider default).
	Temperature *float64 `json:"temperature,omitempty"`

	// Model selects a model tier on providers that host several.
	Model string `json:"model,omitempty"`
}

// Recommendation is a single actionable suggestion in a Response.
type Recommendation struct {
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Value       *float64 `json:"value,omitempty"`
	Affiliate   string   `json:"affiliate,omitempty"`
}

// Response is the normalized provider response.
type Response struct {
	// Answer is the provider's answer text.
	Answer string `json:"answer"`

	// Confidence is in [0,1]. A missing value decodes as 0.
	Confidence float64 `json:"confidence,omitempty"`

	// Recommendations are optional structured suggestions.
	Recommendations []Recommendation `json:"recommendations,omitempty"`

	// TokensUsed is the total token count of the call.
	TokensUsed int `json:"tokensUsed,omitempty"`

	// Cost is the cost of the call in USD, if the route reports it.
	Cost float64 `json:"cost,omitempty"`

	// Sources lists grounding URLs for live answers.
	Sources []string `json:"sources,omitempty"`

	// Provider is set by the caller that produced the response; it is not
	// part of the wire format.
	Provider string `json:"-"`
}

// ProviderHealth tracks request outcomes for a provider.
type ProviderHealth struct {
	// IsHealthy indicates whether the provider is currently healthy
	IsHealthy bool

	// LastCheck is the timestamp of the last health update
	LastCheck time.Time

	// LastError is the most recent error encountered (nil if healthy)
	LastError error

	// ConsecutiveFailures counts sequential failed requests
	ConsecutiveFailures int

	// LastSuccessfulRequest is the timestamp of the last successful request
	LastSuccessfulRequest time.Time

	// TotalRequests is the total number of requests sent to this provider
	TotalRequests int64

	// FailedRequests is the total number of failed requests
	FailedRequests int64
}

// ProviderConfig contains configuration for a single provider instance.
type ProviderConfig struct {
	// Name is the provider identifier (openai, perplexity, openrouter)
	Name string

	// BaseURL is the scheme and host of the provider routes
	BaseURL string

	// Route is the path of the normalized endpoint
	Route string

	// APIKey is sent as a bearer token when set
	APIKey string

	// Timeout is the request timeout duration
	Timeout time.Duration

	// MaxRetries is the maximum number of retry attempts for 5xx and
	// network errors (0 = no retry)
	MaxRetries int

	// RetryBackoff is the first wait between attempts; later waits grow
	// exponentially (default 1s)
	RetryBackoff time.Duration

	// Tracer records a provider.query span per call (nil = no spans)
	Tracer *tracing.Tracer
}

// Endpoint returns the full URL of the provider route.
func (c ProviderConfig) Endpoint() string {
	return c.BaseURL + c.Route
}
