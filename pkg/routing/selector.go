package routing

import (
	"strings"

	"sentinel-hq/sentinel/pkg/budget"
	"sentinel-hq/sentinel/pkg/config"
	"sentinel-hq/sentinel/pkg/providers"
)

const (
	// RealtimeEstimatedCost is the admission estimate of a live search.
	RealtimeEstimatedCost = 0.005

	// RealtimeTemperature favours factual answers on live searches.
	RealtimeTemperature = 0.2

	// ComplexTripCount is the trip count above which a compliance query
	// is treated as complex.
	ComplexTripCount = 2
)

// Rule names reported in Selection.Rule.
const (
	RuleRealtime          = "realtime"
	RuleComplexCompliance = "complex_compliance"
	RuleHighValue         = "complex_or_high_value"
	RuleDefault           = "default"
	RuleBudgetReroute     = "budget_reroute"
)

// Policy is the deterministic provider selection policy.
type Policy struct {
	complexKeywords   []string
	highValueKeywords []string
	simpleQueryLength int
	defaultMaxTokens  int
	models            map[Tier]string
	pricing           budget.Pricing
}

// NewPolicy builds a policy from the routing section, the openrouter model
// tiers and the provider rates.
func NewPolicy(cfg config.RoutingConfig, openRouterModels map[string]string, pricing budget.Pricing) *Policy {
	if len(cfg.ComplexKeywords) == 0 {
		cfg.ComplexKeywords = config.DefaultComplexKeywords
	}
	if len(cfg.HighValueKeywords) == 0 {
		cfg.HighValueKeywords = config.DefaultHighValueKeywords
	}
	if cfg.SimpleQueryLength <= 0 {
		cfg.SimpleQueryLength = config.DefaultSimpleQueryLength
	}
	if cfg.DefaultMaxTokens <= 0 {
		cfg.DefaultMaxTokens = config.DefaultMaxTokens
	}
	if pricing == nil {
		pricing = budget.DefaultPricing()
	}

	models := make(map[Tier]string, len(openRouterModels))
	for tier, model := range openRouterModels {
		models[Tier(tier)] = model
	}

	return &Policy{
		complexKeywords:   lowerAll(cfg.ComplexKeywords),
		highValueKeywords: lowerAll(cfg.HighValueKeywords),
		simpleQueryLength: cfg.SimpleQueryLength,
		defaultMaxTokens:  cfg.DefaultMaxTokens,
		models:            models,
		pricing:           pricing,
	}
}

// DefaultPolicy returns the policy built from the default configuration.
func DefaultPolicy() *Policy {
	cfg := config.NewDefaultConfig()
	return NewPolicy(cfg.Routing, cfg.Providers[config.ProviderOpenRouter].Models, budget.DefaultPricing())
}

// SelectOptimalAPI picks the provider for req. It depends only on req and
// the policy, never on budget state.
func (p *Policy) SelectOptimalAPI(req *Request) Selection {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = p.defaultMaxTokens
	}
	query := strings.ToLower(req.Query)

	switch {
	case req.IntentType == IntentRealtime:
		t := RealtimeTemperature
		return Selection{
			APIType:       providers.Perplexity,
			EstimatedCost: RealtimeEstimatedCost,
			Temperature:   &t,
			MaxTokens:     maxTokens,
			Rule:          RuleRealtime,
		}

	case req.IntentType == IntentCompliance &&
		(containsAny(query, p.complexKeywords) || req.FamilyMembers > 1 || req.TripCount > ComplexTripCount):
		return p.premium(req, maxTokens, RuleComplexCompliance)

	case req.IntentType == IntentComplex ||
		(req.IntentType == IntentPlanning && containsAny(query, p.highValueKeywords)):
		return p.premium(req, maxTokens, RuleHighValue)
	}

	tier := TierMid
	if len(req.Query) < p.simpleQueryLength && !containsAny(query, p.complexKeywords) && !containsAny(query, p.highValueKeywords) {
		tier = TierCheap
	}
	return p.openRouter(req, maxTokens, tier, RuleDefault)
}

// Reroute returns the cheaper selection used when the budget enforcer
// asks to avoid the premium provider.
func (p *Policy) Reroute(req *Request, sel Selection) Selection {
	return p.openRouter(req, sel.MaxTokens, TierMid, RuleBudgetReroute)
}

// Estimate prices a call of maxTokens to apiType.
func (p *Policy) Estimate(apiType string, maxTokens int) float64 {
	return p.pricing.Estimate(apiType, maxTokens)
}

func (p *Policy) premium(req *Request, maxTokens int, rule string) Selection {
	return Selection{
		APIType:       providers.OpenAI,
		EstimatedCost: p.pricing.Estimate(providers.OpenAI, maxTokens),
		Temperature:   req.Temperature,
		MaxTokens:     maxTokens,
		Rule:          rule,
	}
}

func (p *Policy) openRouter(req *Request, maxTokens int, tier Tier, rule string) Selection {
	return Selection{
		APIType:       providers.OpenRouter,
		Tier:          tier,
		Model:         p.models[tier],
		EstimatedCost: p.pricing.Estimate(providers.OpenRouter, maxTokens),
		Temperature:   req.Temperature,
		MaxTokens:     maxTokens,
		Rule:          rule,
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
