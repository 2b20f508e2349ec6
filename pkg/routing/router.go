package routing

import (
	"context"
	"log/slog"
	"time"

	"sentinel-hq/sentinel/pkg/budget"
	"sentinel-hq/sentinel/pkg/providers"
	"sentinel-hq/sentinel/pkg/telemetry/logging"
	"sentinel-hq/sentinel/pkg/telemetry/metrics"
	"sentinel-hq/sentinel/pkg/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
)

// ProviderSource looks up providers by name. *providers.Registry
// satisfies it.
type ProviderSource interface {
	Get(name string) (providers.Provider, error)
}

// Option configures a Router.
type Option func(*Router)

// WithMetrics publishes routing and provider metrics to collector.
func WithMetrics(collector *metrics.Collector) Option {
	return func(r *Router) { r.metrics = collector }
}

// WithTracer records a routing.route span per request.
func WithTracer(t *tracing.Tracer) Option {
	return func(r *Router) { r.tracer = t }
}

// Router selects a provider for each request, admits it against the
// budget and calls it. Router is safe for concurrent use.
type Router struct {
	policy    *Policy
	enforcer  *budget.Enforcer
	providers ProviderSource
	stats     *AtomicRoutingStats
	metrics   *metrics.Collector
	tracer    *tracing.Tracer
	logger    *slog.Logger
}

// NewRouter creates a router. A nil policy uses DefaultPolicy.
func NewRouter(policy *Policy, enforcer *budget.Enforcer, source ProviderSource, opts ...Option) *Router {
	if policy == nil {
		policy = DefaultPolicy()
	}
	r := &Router{
		policy:    policy,
		enforcer:  enforcer,
		providers: source,
		stats:     NewAtomicRoutingStats(),
		logger:    slog.Default().With("component", "router"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SelectOptimalAPI returns the policy's choice for req without calling
// anything.
func (r *Router) SelectOptimalAPI(req *Request) Selection {
	return r.policy.SelectOptimalAPI(req)
}

// Policy returns the router's selection policy.
func (r *Router) Policy() *Policy {
	return r.policy
}

// Stats returns a snapshot of the routing statistics.
func (r *Router) Stats() Stats {
	return r.stats.Snapshot()
}

// Route selects, admits and calls a provider for req. The returned
// Result always carries a response; failures degrade to a fallback answer.
// Successful calls are recorded with the budget enforcer before Route
// returns.
func (r *Router) Route(ctx context.Context, req *Request) *Result {
	if req == nil {
		req = &Request{}
	}

	ctx, span := r.tracer.Start(ctx, "routing.route",
		attribute.String(tracing.AttrIntent, string(req.IntentType)),
		attribute.String(tracing.AttrUser, req.UserID),
	)
	result := r.route(ctx, req)

	sel := result.Selection
	span.SetAttributes(tracing.SelectionAttributes(sel.APIType, sel.Model, sel.Rule, sel.EstimatedCost)...)
	span.SetAttributes(
		attribute.Bool(tracing.AttrRerouted, result.Rerouted),
		attribute.Bool(tracing.AttrRejected, result.Rejected),
	)
	if !result.Soft() {
		span.SetAttributes(tracing.UsageAttributes(result.Response.Cost, result.Response.TokensUsed)...)
	}
	tracing.End(span, result.Err)

	return result
}

func (r *Router) route(ctx context.Context, req *Request) *Result {
	r.stats.IncrementTotal()

	sel := r.policy.SelectOptimalAPI(req)
	decision := r.enforcer.CanProcessRequest(req.UserID, sel.EstimatedCost, sel.APIType)

	result := &Result{Selection: sel, Decision: decision}

	if decision.Allowed && decision.Reroute {
		alt := r.policy.Reroute(req, sel)
		r.logger.InfoContext(ctx, "rerouting premium request",
			"from", sel.APIType,
			"to", alt.APIType,
			"utilization", decision.Utilization,
		)
		r.stats.IncrementReroute()
		r.metrics.RecordReroute(sel.APIType, alt.APIType)

		sel = alt
		result.Selection = alt
		result.Rerouted = true
		result.Decision = r.enforcer.CanProcessRequest(req.UserID, alt.EstimatedCost, alt.APIType)
	}

	if !result.Decision.Allowed {
		r.logger.WarnContext(ctx, "request refused by budget",
			"api", sel.APIType,
			"estimated_cost", sel.EstimatedCost,
			"reason", result.Decision.Reason,
		)
		r.stats.IncrementRejection()
		r.metrics.RecordRejection(result.Decision.Reason)
		r.metrics.RecordSoftFailure(sel.APIType, "budget")

		result.Rejected = true
		result.Err = result.Decision.Err
		result.Response = softResponse(BudgetExceededAnswer)
		return result
	}

	ctx = logging.WithProvider(ctx, sel.APIType)

	resp, err := r.call(ctx, req, sel)
	if err != nil {
		r.logger.ErrorContext(ctx, "provider call failed", "rule", sel.Rule, "error", err)
		r.stats.IncrementFailure()
		r.metrics.RecordSoftFailure(sel.APIType, errorType(err))

		result.Failed = true
		result.Err = &CallError{APIType: sel.APIType, Err: err}
		result.Response = softResponse(UnavailableAnswer)
		return result
	}

	if resp.Cost == 0 {
		resp.Cost = r.policy.Estimate(sel.APIType, resp.TokensUsed)
	}

	if err := r.enforcer.RecordUsage(ctx, req.UserID, sel.APIType, resp.Cost, resp.TokensUsed, string(req.IntentType)); err != nil {
		r.logger.WarnContext(ctx, "failed to record usage", "cost", resp.Cost, "error", err)
	}

	r.stats.IncrementProvider(sel.APIType)
	r.metrics.RecordRouting(sel.APIType, string(req.IntentType))

	r.logger.DebugContext(ctx, "request routed",
		"rule", sel.Rule,
		"tier", sel.Tier,
		"cost", resp.Cost,
		"tokens", resp.TokensUsed,
		"confidence", resp.Confidence,
	)

	result.Response = resp
	return result
}

func (r *Router) call(ctx context.Context, req *Request, sel Selection) (*providers.Response, error) {
	provider, err := r.providers.Get(sel.APIType)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := provider.Query(ctx, &providers.Request{
		Query:       req.Query,
		Context:     req.Context,
		MaxTokens:   sel.MaxTokens,
		Temperature: sel.Temperature,
		Model:       sel.Model,
	})
	r.metrics.RecordProviderCall(sel.APIType, time.Since(start))
	r.metrics.UpdateProviderHealth(sel.APIType, provider.IsHealthy())

	if err != nil {
		r.metrics.RecordProviderError(sel.APIType, errorType(err))
		return nil, err
	}
	if resp == nil {
		return nil, &providers.ProviderError{Provider: sel.APIType, Message: "empty response"}
	}

	resp.Provider = sel.APIType
	return resp, nil
}
