package providers

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Registry holds the configured providers by name.
type Registry struct {
	providers map[string]Provider
	mu        sync.RWMutex
}

// NewRegistry creates a registry from providers, keyed by GetName.
func NewRegistry(ps ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(ps))}
	for _, p := range ps {
		r.providers[p.GetName()] = p
	}
	return r
}

// NewRegistryFromConfigs builds an HTTPProvider for each config.
func NewRegistryFromConfigs(configs []ProviderConfig) (*Registry, error) {
	r := &Registry{providers: make(map[string]Provider, len(configs))}
	for _, cfg := range configs {
		if cfg.Name == "" {
			return nil, &ConfigError{Field: "name", Message: "provider name cannot be empty"}
		}
		if cfg.BaseURL == "" {
			return nil, &ConfigError{Provider: cfg.Name, Field: "base_url", Message: "base URL cannot be empty"}
		}
		if _, exists := r.providers[cfg.Name]; exists {
			return nil, &ConfigError{Provider: cfg.Name, Field: "name", Message: "duplicate provider"}
		}
		r.providers[cfg.Name] = NewHTTPProvider(cfg)
	}
	return r, nil
}

// Get returns the provider registered under name.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %q not registered: %w", name, ErrProviderUnavailable)
	}
	return p, nil
}

// Names returns the registered provider names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Health returns the health of every registered provider.
func (r *Registry) Health() map[string]ProviderHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]ProviderHealth, len(r.providers))
	for name, p := range r.providers {
		out[name] = p.GetHealth()
	}
	return out
}

// Close closes every provider and joins their errors.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for name, p := range r.providers {
		if err := p.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
