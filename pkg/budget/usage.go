package budget

import (
	"context"
	"sort"

	"sentinel-hq/sentinel/pkg/ledger"
)

// PeriodUsage summarizes one window.
type PeriodUsage struct {
	Requests           int     `json:"requests"`
	Cost               float64 `json:"cost"`
	Tokens             int     `json:"tokens"`
	AverageCostPerCall float64 `json:"averageCostPerRequest"`
}

// APIBreakdown is one provider's share of the month's spend.
type APIBreakdown struct {
	APIType    string  `json:"apiType"`
	Requests   int     `json:"requests"`
	Cost       float64 `json:"cost"`
	Tokens     int     `json:"tokens"`
	Percentage float64 `json:"percentage"`
}

// UsageMetrics is the report returned by GetUsageMetrics.
type UsageMetrics struct {
	Today            PeriodUsage    `json:"today"`
	Month            PeriodUsage    `json:"month"`
	ByAPI            []APIBreakdown `json:"byApi"`
	EstimatedSavings float64        `json:"estimatedSavings"`
	Budget           Status         `json:"budget"`
}

// GetUsageMetrics aggregates the ledger. Savings compare the actual spend
// of every stored record with the same tokens priced at the most expensive
// provider's per-token rate.
func (e *Enforcer) GetUsageMetrics(ctx context.Context) (UsageMetrics, error) {
	records, err := e.ledger.Records(ctx)
	if err != nil {
		return UsageMetrics{}, err
	}

	now := e.clock.Now()
	today := ledger.Summarize(records, ledger.OnDate(now))
	month := ledger.Summarize(records, ledger.InMonth(now))

	m := UsageMetrics{
		Today:  periodUsage(today),
		Month:  periodUsage(month),
		ByAPI:  make([]APIBreakdown, 0, len(month.ByAPI)),
		Budget: e.Status(),
	}

	for api, u := range month.ByAPI {
		b := APIBreakdown{APIType: api, Requests: u.Requests, Cost: u.Cost, Tokens: u.Tokens}
		if month.Cost > 0 {
			b.Percentage = u.Cost / month.Cost * 100
		}
		m.ByAPI = append(m.ByAPI, b)
	}
	sort.Slice(m.ByAPI, func(i, j int) bool {
		if m.ByAPI[i].Cost != m.ByAPI[j].Cost {
			return m.ByAPI[i].Cost > m.ByAPI[j].Cost
		}
		return m.ByAPI[i].APIType < m.ByAPI[j].APIType
	})

	all := ledger.Summarize(records, nil)
	premium := float64(all.Tokens) / 1000 * e.pricing.PremiumRate()
	if savings := premium - all.Cost; savings > 0 {
		m.EstimatedSavings = savings
	}

	return m, nil
}

func periodUsage(s ledger.Summary) PeriodUsage {
	return PeriodUsage{
		Requests:           s.Requests,
		Cost:               s.Cost,
		Tokens:             s.Tokens,
		AverageCostPerCall: s.AverageCost(),
	}
}
