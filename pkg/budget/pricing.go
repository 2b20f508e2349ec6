package budget

import (
	"sort"

	"sentinel-hq/sentinel/pkg/config"
)

// Rate is the price of a provider.
type Rate struct {
	CostPer1KTokens float64
	CostPerRequest  float64
}

// Pricing maps provider names to rates.
type Pricing map[string]Rate

// DefaultPricing returns the built-in rates of the three providers.
func DefaultPricing() Pricing {
	return Pricing{
		config.ProviderOpenAI:     {CostPer1KTokens: 0.03},
		config.ProviderPerplexity: {CostPer1KTokens: 0.001, CostPerRequest: 0.005},
		config.ProviderOpenRouter: {CostPer1KTokens: 0.002},
	}
}

// PricingFromConfig builds a Pricing from the providers section.
func PricingFromConfig(providers map[string]config.ProviderConfig) Pricing {
	p := make(Pricing, len(providers))
	for name, pc := range providers {
		p[name] = Rate{CostPer1KTokens: pc.CostPer1KTokens, CostPerRequest: pc.CostPerRequest}
	}
	return p
}

// Estimate returns the cost of a call to apiType using tokens. Unknown
// providers are priced at zero.
func (p Pricing) Estimate(apiType string, tokens int) float64 {
	rate, ok := p[apiType]
	if !ok {
		return 0
	}
	if tokens < 0 {
		tokens = 0
	}
	return float64(tokens)/1000*rate.CostPer1KTokens + rate.CostPerRequest
}

// MostExpensive returns the provider with the highest per-token rate.
// Ties break by name so the result is stable.
func (p Pricing) MostExpensive() string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)

	best := ""
	bestRate := -1.0
	for _, name := range names {
		if r := p[name].CostPer1KTokens; r > bestRate {
			best, bestRate = name, r
		}
	}
	return best
}

// PremiumRate returns the per-token rate of the most expensive provider.
func (p Pricing) PremiumRate() float64 {
	if name := p.MostExpensive(); name != "" {
		return p[name].CostPer1KTokens
	}
	return 0
}
