package routing

import (
	"context"
	"errors"
	"fmt"
	"net"

	"sentinel-hq/sentinel/pkg/providers"
)

// User-presentable fallback answers.
const (
	BudgetExceededAnswer = "We've reached today's analysis limit. Please try again tomorrow, or use the basic calculator in the meantime."
	UnavailableAnswer    = "This service is temporarily unavailable. Please try again in a moment."
)

// CallError wraps a failed provider call with the selection that made it.
type CallError struct {
	APIType string
	Err     error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("routed call to %s failed: %v", e.APIType, e.Err)
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// Is reports whether target is providers.ErrProviderUnavailable.
func (e *CallError) Is(target error) bool {
	return target == providers.ErrProviderUnavailable
}

// errorType classifies a provider error for metrics.
func errorType(err error) string {
	var (
		authErr    *providers.AuthError
		rateErr    *providers.RateLimitError
		timeoutErr *providers.TimeoutError
		parseErr   *providers.ParseError
		provErr    *providers.ProviderError
		netErr     net.Error
	)

	switch {
	case errors.As(err, &authErr):
		return "auth"
	case errors.As(err, &rateErr):
		return "rate_limit"
	case errors.As(err, &timeoutErr), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &provErr):
		if provErr.StatusCode >= 500 {
			return "server_error"
		}
		if provErr.StatusCode >= 400 {
			return "client_error"
		}
		return "provider_error"
	case errors.As(err, &netErr):
		return "network"
	default:
		return "unknown"
	}
}

func softResponse(answer string) *providers.Response {
	return &providers.Response{Answer: answer, Confidence: 0, Cost: 0}
}
