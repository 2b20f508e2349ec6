package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel/attribute"

	"sentinel-hq/sentinel/pkg/telemetry/tracing"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultRetryBackoff = time.Second

	// maxErrorBody bounds how much of an error answer is kept in messages.
	maxErrorBody = 512
)

// HTTPProvider serves one normalized provider route over a pooled client.
// 5xx answers and transport failures are retried with exponential backoff
// up to MaxRetries times; every other failure returns at once. Health is
// updated once per Query, after retries.
type HTTPProvider struct {
	config ProviderConfig
	client *http.Client
	logger *slog.Logger

	health   ProviderHealth
	healthMu sync.RWMutex
}

var _ Provider = (*HTTPProvider)(nil)

// NewHTTPProvider creates a provider for config.
func NewHTTPProvider(config ProviderConfig) *HTTPProvider {
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}
	if config.RetryBackoff == 0 {
		config.RetryBackoff = defaultRetryBackoff
	}

	now := time.Now()
	return &HTTPProvider{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
				ForceAttemptHTTP2:   true,
			},
		},
		logger: slog.Default().With("component", "provider", "provider", config.Name),
		health: ProviderHealth{IsHealthy: true, LastCheck: now, LastSuccessfulRequest: now},
	}
}

// GetName returns the provider's configured name.
func (p *HTTPProvider) GetName() string {
	return p.config.Name
}

// Query posts req to the provider route and decodes the normalized
// response. Confidence is clamped to [0,1]; negative token counts and
// costs are zeroed.
func (p *HTTPProvider) Query(ctx context.Context, req *Request) (*Response, error) {
	if req == nil || req.Query == "" {
		return nil, &ProviderError{Provider: p.config.Name, Message: "query cannot be empty"}
	}

	ctx, span := p.config.Tracer.Start(ctx, "provider.query",
		attribute.String(tracing.AttrProvider, p.config.Name),
		attribute.String(tracing.AttrModel, req.Model),
	)

	body, err := json.Marshal(req)
	if err != nil {
		err = &ProviderError{Provider: p.config.Name, Message: "failed to encode request", Cause: err}
		tracing.End(span, err)
		return nil, err
	}

	resp, err := p.post(ctx, body)
	p.updateHealth(err == nil, err)
	if err != nil {
		tracing.End(span, err)
		return nil, err
	}

	resp.Provider = p.config.Name
	resp.Confidence = clamp01(resp.Confidence)
	resp.TokensUsed = max(resp.TokensUsed, 0)
	resp.Cost = math.Max(resp.Cost, 0)

	span.SetAttributes(tracing.UsageAttributes(resp.Cost, resp.TokensUsed)...)
	tracing.End(span, nil)
	return resp, nil
}

// post runs the attempts. Errors that must not be retried are marked
// permanent inside attempt and unwrapped here.
func (p *HTTPProvider) post(ctx context.Context, body []byte) (*Response, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.config.RetryBackoff

	resp, err := backoff.Retry(ctx,
		func() (*Response, error) { return p.attempt(ctx, body) },
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(p.config.MaxRetries)+1),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, wait time.Duration) {
			p.logger.Warn("retrying provider call", "error", err, "backoff", wait)
		}),
	)
	if err == nil {
		return resp, nil
	}

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Unwrap()
	}
	var timeout *TimeoutError
	if ctx.Err() != nil && !errors.As(err, &timeout) {
		err = &TimeoutError{Provider: p.config.Name, Timeout: p.config.Timeout, Cause: ctx.Err()}
	}
	return nil, err
}

// attempt sends one request and classifies the answer.
func (p *HTTPProvider) attempt(ctx context.Context, body []byte) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.Endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(&ProviderError{Provider: p.config.Name, Message: "failed to create request", Cause: err})
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if p.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.config.APIKey)
	}
	tracing.Inject(ctx, req.Header)

	httpResp, err := p.client.Do(req)
	if err != nil {
		p.recordRequest(false)
		if ctx.Err() != nil {
			return nil, backoff.Permanent(&TimeoutError{Provider: p.config.Name, Timeout: p.config.Timeout, Cause: ctx.Err()})
		}
		return nil, &ProviderError{Provider: p.config.Name, Message: "request failed", Cause: err}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		p.recordRequest(false)
		return nil, p.statusError(httpResp)
	}
	p.recordRequest(true)

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, backoff.Permanent(&ParseError{Provider: p.config.Name, Cause: fmt.Errorf("failed to read response: %w", err)})
	}
	var resp Response
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &resp); err != nil {
			return nil, backoff.Permanent(&ParseError{Provider: p.config.Name, RawResponse: string(raw), Cause: err})
		}
	}
	return &resp, nil
}

// statusError maps a non-2xx answer to its error type. Only 5xx is left
// retryable.
func (p *HTTPProvider) statusError(resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	switch code := resp.StatusCode; {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return backoff.Permanent(&AuthError{Provider: p.config.Name, Message: string(msg)})
	case code == http.StatusTooManyRequests:
		return backoff.Permanent(&RateLimitError{
			Provider:   p.config.Name,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Message:    string(msg),
		})
	case code >= 500:
		return &ProviderError{Provider: p.config.Name, StatusCode: code, Message: string(msg)}
	default:
		return backoff.Permanent(&ProviderError{Provider: p.config.Name, StatusCode: code, Message: string(msg)})
	}
}

// Close releases idle connections.
func (p *HTTPProvider) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

// parseRetryAfter reads a Retry-After header in delay-seconds or HTTP-date
// form. Anything else is zero.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return 0
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
