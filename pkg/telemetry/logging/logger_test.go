package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"sentinel-hq/sentinel/pkg/config"
)

func newTestLogger(t *testing.T, cfg config.LoggingConfig) (*Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger, err := New(cfg, &buf)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return logger, &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	line := strings.TrimSpace(buf.String())
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("failed to decode log line %q: %v", line, err)
	}
	return entry
}

// ============================================================================
// Construction
// ============================================================================

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  config.LoggingConfig
		wantErr bool
	}{
		{"json", config.LoggingConfig{Level: "info", Format: "json"}, false},
		{"text", config.LoggingConfig{Level: "debug", Format: "text"}, false},
		{"defaults", config.LoggingConfig{}, false},
		{"invalid level", config.LoggingConfig{Level: "trace"}, true},
		{"invalid format", config.LoggingConfig{Format: "xml"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.config, &bytes.Buffer{})
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLogger_JSONOutput(t *testing.T) {
	logger, buf := newTestLogger(t, config.LoggingConfig{Level: "info", Format: "json"})

	logger.Info("task processed", "type", "deal_hunting", "insights", 2)

	entry := decodeLine(t, buf)
	if entry["msg"] != "task processed" {
		t.Errorf("Expected msg 'task processed', got %v", entry["msg"])
	}
	if entry["type"] != "deal_hunting" {
		t.Errorf("Expected type 'deal_hunting', got %v", entry["type"])
	}
	if entry["insights"] != float64(2) {
		t.Errorf("Expected insights 2, got %v", entry["insights"])
	}
}

func TestLogger_TextOutput(t *testing.T) {
	logger, buf := newTestLogger(t, config.LoggingConfig{Format: "text"})

	logger.Info("started", "component", "engine")

	if !strings.Contains(buf.String(), "component=engine") {
		t.Errorf("Expected text output with component=engine, got %q", buf.String())
	}
	if logger.Format() != FormatText {
		t.Errorf("Expected text format, got %s", logger.Format())
	}
}

func TestLogger_SetLevel(t *testing.T) {
	logger, buf := newTestLogger(t, config.LoggingConfig{Level: "warn"})
	child := logger.With("component", "router")

	child.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("Expected info to be filtered at warn level, got %q", buf.String())
	}

	if err := logger.SetLevel("debug"); err != nil {
		t.Fatalf("SetLevel failed: %v", err)
	}
	if logger.Level() != slog.LevelDebug {
		t.Errorf("Expected debug level, got %v", logger.Level())
	}

	child.Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("Expected derived logger to follow level change, got %q", buf.String())
	}

	if err := logger.SetLevel("loud"); err == nil {
		t.Error("Expected error for unknown level")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil {
			t.Errorf("ParseLevel(%q) unexpected error: %v", in, err)
		}
		if got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

// ============================================================================
// Redaction
// ============================================================================

func TestLogger_RedactsConfiguredKeys(t *testing.T) {
	logger, buf := newTestLogger(t, config.LoggingConfig{RedactKeys: []string{"api_key"}})

	logger.Info("provider configured", "API_KEY", "sk-live-123456789", "provider", "openai")

	entry := decodeLine(t, buf)
	if entry["API_KEY"] != Redacted {
		t.Errorf("Expected API_KEY redacted, got %v", entry["API_KEY"])
	}
	if entry["provider"] != "openai" {
		t.Errorf("Expected provider untouched, got %v", entry["provider"])
	}
}

func TestLogger_RedactsSecretsInValues(t *testing.T) {
	logger, buf := newTestLogger(t, config.LoggingConfig{})

	logger.With("header", "Bearer abc.def-ghi").
		Error("provider call failed", "error", errors.New("401 for key sk-abcdef123456"))

	out := buf.String()
	if strings.Contains(out, "abc.def-ghi") {
		t.Errorf("Expected bearer token redacted, got %q", out)
	}
	if strings.Contains(out, "sk-abcdef123456") {
		t.Errorf("Expected api key redacted from error, got %q", out)
	}
	if !strings.Contains(out, "sk-***") {
		t.Errorf("Expected redaction marker, got %q", out)
	}
}

func TestLogger_RedactsGroups(t *testing.T) {
	logger, buf := newTestLogger(t, config.LoggingConfig{RedactKeys: []string{"password"}})

	logger.Info("redis connected", slog.Group("redis", slog.String("addr", "localhost:6379"), slog.String("password", "hunter2")))

	if strings.Contains(buf.String(), "hunter2") {
		t.Errorf("Expected grouped password redacted, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "localhost:6379") {
		t.Errorf("Expected addr kept, got %q", buf.String())
	}
}

func TestRedactString(t *testing.T) {
	if got := RedactString(""); got != "" {
		t.Errorf("Expected empty string, got %q", got)
	}
	if got := RedactString("plain message"); got != "plain message" {
		t.Errorf("Expected message unchanged, got %q", got)
	}
	if got := RedactString("Authorization: Bearer tok123"); got != "Authorization: Bearer ***" {
		t.Errorf("Unexpected redaction %q", got)
	}
}

// ============================================================================
// Context fields
// ============================================================================

func TestLogger_ContextFields(t *testing.T) {
	logger, buf := newTestLogger(t, config.LoggingConfig{})

	ctx := WithUser(context.Background(), "user-1")
	ctx = WithTask(ctx, "task-7")
	ctx = WithProvider(ctx, "perplexity")
	ctx = WithRequestID(ctx, "req-9")

	logger.InfoContext(ctx, "routed")

	entry := decodeLine(t, buf)
	want := map[string]string{
		"user_id":    "user-1",
		"task_id":    "task-7",
		"provider":   "perplexity",
		"request_id": "req-9",
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("Expected %s=%s, got %v", k, v, entry[k])
		}
	}
}

func TestLogger_NoContextFields(t *testing.T) {
	logger, buf := newTestLogger(t, config.LoggingConfig{})

	logger.InfoContext(context.Background(), "idle")

	entry := decodeLine(t, buf)
	if _, ok := entry["user_id"]; ok {
		t.Error("Expected no user_id without context value")
	}
}

func TestContextGetters(t *testing.T) {
	ctx := context.Background()
	if GetUser(ctx) != "" || GetTask(ctx) != "" || GetProvider(ctx) != "" || GetRequestID(ctx) != "" {
		t.Error("Expected empty values on bare context")
	}

	ctx = WithUser(ctx, "u")
	if GetUser(ctx) != "u" {
		t.Errorf("Expected user u, got %q", GetUser(ctx))
	}
}
