package providers

import (
	"errors"
	"fmt"
	"time"
)

// ErrProviderUnavailable matches every failure of a provider call. The
// router treats all of them alike: the caller gets a fail-soft response.
var ErrProviderUnavailable = errors.New("provider unavailable")

// unavailable is embedded by every call-failure type so that
// errors.Is(err, ErrProviderUnavailable) holds for each of them.
type unavailable struct{}

func (unavailable) Is(target error) bool { return target == ErrProviderUnavailable }

// ProviderError is a non-2xx answer or a transport failure. StatusCode is
// zero when no response was received.
type ProviderError struct {
	unavailable
	Provider   string
	StatusCode int
	Message    string
	Cause      error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Cause }

// AuthError is a 401 or 403 answer. It is never retried.
type AuthError struct {
	unavailable
	Provider string
	Message  string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: unauthorized: %s", e.Provider, e.Message)
}

// RateLimitError is a 429 answer. RetryAfter is set from the Retry-After
// header when the route sends one.
type RateLimitError struct {
	unavailable
	Provider   string
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	msg := fmt.Sprintf("%s: rate limited", e.Provider)
	if e.RetryAfter > 0 {
		msg += fmt.Sprintf(" (retry after %s)", e.RetryAfter)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// TimeoutError is a call cut short by its deadline or by cancellation.
type TimeoutError struct {
	unavailable
	Provider string
	Timeout  time.Duration
	Cause    error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: no answer within %s", e.Provider, e.Timeout)
}

func (e *TimeoutError) Unwrap() error { return e.Cause }

// ParseError is a 2xx answer whose body is not a valid response.
// RawResponse keeps the body for logging.
type ParseError struct {
	unavailable
	Provider    string
	RawResponse string
	Cause       error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.Provider, e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// ConfigError rejects a provider definition at registry construction.
type ConfigError struct {
	Provider string
	Field    string
	Message  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("provider %q: invalid %s: %s", e.Provider, e.Field, e.Message)
}
