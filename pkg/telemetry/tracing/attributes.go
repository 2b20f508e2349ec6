package tracing

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys. Custom keys use the "sentinel.*" namespace.
const (
	AttrProvider      = "sentinel.provider"
	AttrModel         = "sentinel.model"
	AttrRule          = "sentinel.routing.rule"
	AttrIntent        = "sentinel.routing.intent"
	AttrRerouted      = "sentinel.routing.rerouted"
	AttrRejected      = "sentinel.routing.rejected"
	AttrEstimatedCost = "sentinel.cost.estimated"
	AttrCost          = "sentinel.cost.total"
	AttrTokens        = "sentinel.tokens.total"
	AttrUser          = "sentinel.user"
	AttrTaskID        = "sentinel.task.id"
	AttrTaskType      = "sentinel.task.type"
	AttrTaskPriority  = "sentinel.task.priority"
	AttrInsights      = "sentinel.task.insights"

	AttrHTTPMethod = "http.method"
	AttrHTTPRoute  = "http.route"
	AttrHTTPStatus = "http.status_code"
)

// TaskAttributes describes a background task.
func TaskAttributes(id, taskType, priority string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrTaskID, id),
		attribute.String(AttrTaskType, taskType),
		attribute.String(AttrTaskPriority, priority),
	}
}

// SelectionAttributes describes a routing decision.
func SelectionAttributes(provider, model, rule string, estimatedCost float64) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrProvider, provider),
		attribute.String(AttrRule, rule),
		attribute.Float64(AttrEstimatedCost, estimatedCost),
	}
	if model != "" {
		attrs = append(attrs, attribute.String(AttrModel, model))
	}
	return attrs
}

// UsageAttributes describes the cost of a completed provider call.
func UsageAttributes(cost float64, tokens int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Float64(AttrCost, cost),
		attribute.Int(AttrTokens, tokens),
	}
}

// HTTPAttributes describes an HTTP request.
func HTTPAttributes(method, route string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrHTTPMethod, method),
		attribute.String(AttrHTTPRoute, route),
	}
}
