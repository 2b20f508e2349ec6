package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sentinel-hq/sentinel/pkg/config"
	"sentinel-hq/sentinel/pkg/telemetry/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestHTTPProvider_PropagatesTraceContext(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tracer, err := tracing.NewWithExporter(&config.TracingConfig{Enabled: true}, exporter, sdktrace.WithSyncer(exporter))
	if err != nil {
		t.Fatalf("NewWithExporter failed: %v", err)
	}
	defer tracer.Shutdown(context.Background())

	var traceparent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceparent = r.Header.Get("traceparent")
		json.NewEncoder(w).Encode(Response{Answer: "ok", Confidence: 0.8, TokensUsed: 120, Cost: 0.001})
	}))
	defer server.Close()

	p := NewHTTPProvider(ProviderConfig{
		Name:    OpenRouter,
		BaseURL: server.URL,
		Route:   "/api/ai/openrouter",
		Timeout: 5 * time.Second,
		Tracer:  tracer,
	})

	if _, err := p.Query(context.Background(), &Request{Query: "cheap flights", Model: "meta-llama/llama-3.1-8b-instruct"}); err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("Expected 1 span, got %d", len(spans))
	}
	if spans[0].Name != "provider.query" {
		t.Errorf("Expected span provider.query, got %s", spans[0].Name)
	}
	if traceparent == "" {
		t.Fatal("Expected traceparent header on the provider request")
	}
	if want := spans[0].SpanContext.TraceID().String(); len(traceparent) < 35 || traceparent[3:35] != want {
		t.Errorf("Expected traceparent for trace %s, got %s", want, traceparent)
	}
}
