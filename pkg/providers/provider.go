package providers

import "context"

// Provider is the interface every provider adapter implements.
//
// Query must respect context cancellation and return immediately when the
// context is cancelled. Any failure is returned as an error matching
// ErrProviderUnavailable; Query never panics on a malformed response.
type Provider interface {
	// Query sends a normalized request and returns the normalized response.
	Query(ctx context.Context, req *Request) (*Response, error)

	// GetName returns the provider's configured name.
	GetName() string

	// IsHealthy returns the current health status of the provider.
	IsHealthy() bool

	// GetHealth returns detailed health information.
	GetHealth() ProviderHealth

	// Close releases idle connections. The provider should not be used
	// after calling Close.
	Close() error
}
