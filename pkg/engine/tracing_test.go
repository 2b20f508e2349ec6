package engine

import (
	"context"
	"errors"
	"testing"

	"sentinel-hq/sentinel/pkg/clock"
	"sentinel-hq/sentinel/pkg/config"
	"sentinel-hq/sentinel/pkg/telemetry/tracing"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTracedScheduler(t *testing.T, a Analyzer) (*Scheduler, *tracetest.InMemoryExporter) {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tracer, err := tracing.NewWithExporter(&config.TracingConfig{Enabled: true}, exporter, sdktrace.WithSyncer(exporter))
	if err != nil {
		t.Fatalf("NewWithExporter failed: %v", err)
	}
	t.Cleanup(func() { tracer.Shutdown(context.Background()) })

	s := NewScheduler(a, NewContextStore(), NewInsightPool(),
		WithSchedulerClock(clock.NewFake(schedStart)),
		WithSchedulerTracer(tracer),
	)
	return s, exporter
}

func TestScheduler_TaskSpan(t *testing.T) {
	var traced string
	a := AnalyzerFunc(func(ctx context.Context, task *Task) ([]Insight, error) {
		traced = tracing.TraceID(ctx)
		return []Insight{{ID: "d", Type: InsightOpportunity, Confidence: 0.8}}, nil
	})
	s, exporter := newTracedScheduler(t, a)

	task := s.QueueTask(TaskDealHunting, PriorityMedium)
	s.ProcessQueue(context.Background())

	if traced == "" {
		t.Error("Expected the analyzer to run inside a span")
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("Expected 1 span, got %d", len(spans))
	}
	span := spans[0]
	if span.Name != "engine.task" {
		t.Errorf("Expected span engine.task, got %s", span.Name)
	}
	if span.Status.Code != codes.Ok {
		t.Errorf("Expected ok status, got %v", span.Status.Code)
	}

	want := map[string]string{
		tracing.AttrTaskID:       task.ID,
		tracing.AttrTaskType:     string(TaskDealHunting),
		tracing.AttrTaskPriority: string(PriorityMedium),
		tracing.AttrInsights:     "1",
	}
	for _, kv := range span.Attributes {
		if value, ok := want[string(kv.Key)]; ok {
			if kv.Value.Emit() != value {
				t.Errorf("Expected %s=%s, got %s", kv.Key, value, kv.Value.Emit())
			}
			delete(want, string(kv.Key))
		}
	}
	if len(want) != 0 {
		t.Errorf("Missing span attributes: %v", want)
	}
}

func TestScheduler_FailedTaskSpan(t *testing.T) {
	s, exporter := newTracedScheduler(t, &recordingAnalyzer{err: errors.New("boom")})

	s.QueueTask(TaskOptimization, PriorityLow)
	s.ProcessQueue(context.Background())

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("Expected 1 span, got %d", len(spans))
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("Expected error status, got %v", spans[0].Status.Code)
	}
}
