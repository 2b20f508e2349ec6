// Package providers implements the adapter boundary for AI providers.
//
// # Overview
//
// Every provider sits behind the same normalized HTTP contract: a JSON POST
// of a Request to the provider route, answered with a Response. The three
// configured providers (openai, perplexity, openrouter) differ only in
// endpoint, credentials and pricing, so a single HTTPProvider serves all of
// them.
//
// # Basic Usage
//
//	p := providers.NewHTTPProvider(providers.ProviderConfig{
//	    Name:    providers.OpenAI,
//	    BaseURL: "https://app.example.com",
//	    Route:   "/api/ai/openai",
//	    Timeout: 30 * time.Second,
//	})
//	defer p.Close()
//
//	resp, err := p.Query(ctx, &providers.Request{Query: "Can I stay 20 more days in France?"})
//
// # Error Handling
//
// Non-2xx responses and transport failures are returned as typed errors that
// all match ErrProviderUnavailable:
//
//	if errors.Is(err, providers.ErrProviderUnavailable) {
//	    // fall back to a synthetic response
//	}
//
// # Health
//
// HTTPProvider marks itself unhealthy after three consecutive failed
// requests and healthy again after the next success.
package providers
