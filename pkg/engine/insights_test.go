package engine

import (
	"fmt"
	"testing"
	"time"
)

var poolNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func insight(id string, confidence float64) Insight {
	return Insight{ID: id, Type: InsightOpportunity, Title: id, Confidence: confidence, CreatedAt: poolNow}
}

func expiring(id string, confidence float64, at time.Time) Insight {
	in := insight(id, confidence)
	in.ExpiresAt = &at
	return in
}

func ids(insights []Insight) []string {
	out := make([]string, len(insights))
	for i, in := range insights {
		out[i] = in.ID
	}
	return out
}

// ============================================================================
// Current
// ============================================================================

func TestInsightPool_CurrentFiltersAndSorts(t *testing.T) {
	p := NewInsightPool()
	p.Add(
		insight("low", 0.59),
		insight("edge", 0.6),
		insight("best", 0.95),
		expiring("expired", 0.99, poolNow.Add(-time.Minute)),
		expiring("fresh", 0.8, poolNow.Add(time.Hour)),
	)

	got := ids(p.Current(poolNow))
	want := []string{"best", "fresh", "edge"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestInsightPool_CurrentCapsAtThree(t *testing.T) {
	p := NewInsightPool()
	for i := 0; i < 10; i++ {
		p.Add(insight(fmt.Sprintf("i%d", i), 0.6+float64(i)*0.03))
	}

	got := p.Current(poolNow)
	if len(got) != MaxCurrentInsights {
		t.Fatalf("Expected %d insights, got %d", MaxCurrentInsights, len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Confidence > got[i-1].Confidence {
			t.Errorf("Expected descending confidence, got %v", got)
		}
	}
	if got[0].ID != "i9" {
		t.Errorf("Expected highest confidence first, got %s", got[0].ID)
	}
}

func TestInsightPool_FilteringProperty(t *testing.T) {
	p := NewInsightPool()
	for i := 0; i < 40; i++ {
		conf := float64(i%10) / 10
		switch i % 3 {
		case 0:
			p.Add(insight(fmt.Sprintf("n%d", i), conf))
		case 1:
			p.Add(expiring(fmt.Sprintf("e%d", i), conf, poolNow.Add(time.Duration(i-20)*time.Minute)))
		default:
			in := insight(fmt.Sprintf("p%d", i), conf)
			in.Presented = true
			p.Add(in)
		}
	}

	for _, offset := range []time.Duration{-time.Hour, 0, 10 * time.Minute, time.Hour} {
		now := poolNow.Add(offset)
		got := p.Current(now)
		if len(got) > MaxCurrentInsights {
			t.Errorf("At %v: expected at most %d insights, got %d", offset, MaxCurrentInsights, len(got))
		}
		for _, in := range got {
			if in.Confidence < MinPresentConfidence {
				t.Errorf("At %v: insight %s below confidence floor", offset, in.ID)
			}
			if in.ExpiresAt != nil && in.ExpiresAt.Before(now) {
				t.Errorf("At %v: insight %s already expired", offset, in.ID)
			}
			if in.Presented {
				t.Errorf("At %v: insight %s already presented", offset, in.ID)
			}
		}
	}
}

func TestInsightPool_AddClampsAndAssignsIDs(t *testing.T) {
	p := NewInsightPool()
	p.Add(Insight{Title: "over", Confidence: 1.7}, Insight{Title: "under", Confidence: -2})

	all := p.All()
	if len(all) != 2 {
		t.Fatalf("Expected 2 insights, got %d", len(all))
	}
	if all[0].ID == "" || all[1].ID == "" || all[0].ID == all[1].ID {
		t.Errorf("Expected distinct generated IDs, got %q and %q", all[0].ID, all[1].ID)
	}
	if all[0].Confidence != 1 || all[1].Confidence != 0 {
		t.Errorf("Expected clamped confidence, got %v and %v", all[0].Confidence, all[1].Confidence)
	}
}

// ============================================================================
// Presentation and removal
// ============================================================================

func TestInsightPool_DismissalRoundTrip(t *testing.T) {
	p := NewInsightPool()
	p.Add(insight("a", 0.9), insight("b", 0.8))

	if n := p.MarkPresented("a"); n != 1 {
		t.Errorf("Expected 1 newly marked, got %d", n)
	}
	for _, in := range p.Current(poolNow) {
		if in.ID == "a" {
			t.Fatal("Presented insight re-surfaced")
		}
	}

	if n := p.MarkPresented("a", "missing"); n != 0 {
		t.Errorf("Expected idempotent mark, got %d", n)
	}

	// Re-adding the same insight must not bring it back.
	p.Add(insight("a", 0.9))
	if got := ids(p.Current(poolNow)); fmt.Sprint(got) != "[b]" {
		t.Errorf("Expected only b, got %v", got)
	}
}

func TestInsightPool_CleanupExpired(t *testing.T) {
	p := NewInsightPool()
	p.Add(
		expiring("past", 0.9, poolNow.Add(-time.Second)),
		expiring("now", 0.9, poolNow),
		expiring("future", 0.9, poolNow.Add(time.Second)),
		insight("forever", 0.9),
	)

	if removed := p.CleanupExpired(poolNow); removed != 2 {
		t.Errorf("Expected 2 removed, got %d", removed)
	}
	if got := ids(p.All()); fmt.Sprint(got) != "[future forever]" {
		t.Errorf("Expected [future forever], got %v", got)
	}

	if removed := p.CleanupExpired(poolNow.AddDate(10, 0, 0)); removed != 1 {
		t.Errorf("Expected only the expiring insight removed, got %d", removed)
	}
	if p.Len() != 1 {
		t.Errorf("Expected insight without expiry kept, got %d", p.Len())
	}
}

func TestInsightPool_Dismiss(t *testing.T) {
	p := NewInsightPool()
	p.Add(insight("a", 0.9), insight("b", 0.9), insight("c", 0.9))

	if n := p.Dismiss("b", "zzz"); n != 1 {
		t.Errorf("Expected 1 dismissed, got %d", n)
	}
	if got := ids(p.All()); fmt.Sprint(got) != "[a c]" {
		t.Errorf("Expected [a c], got %v", got)
	}
}

// ============================================================================
// Subscriptions
// ============================================================================

func TestInsightPool_NotifyFanOut(t *testing.T) {
	p := NewInsightPool()
	p.Add(insight("a", 0.9), insight("hidden", 0.1))

	var order []string
	var received []Insight
	first := p.Subscribe(func(list []Insight) {
		order = append(order, "first")
		received = list
	})
	p.Subscribe(func([]Insight) { order = append(order, "second") })

	if n := p.Notify(poolNow); n != 2 {
		t.Errorf("Expected 2 deliveries, got %d", n)
	}
	if fmt.Sprint(order) != "[first second]" {
		t.Errorf("Expected registration order, got %v", order)
	}
	if fmt.Sprint(ids(received)) != "[a]" {
		t.Errorf("Expected filtered list, got %v", ids(received))
	}

	first.Unsubscribe()
	first.Unsubscribe()
	order = nil
	p.Notify(poolNow)
	if fmt.Sprint(order) != "[second]" {
		t.Errorf("Expected only second after unsubscribe, got %v", order)
	}
}

func TestInsightPool_NotifySkipsEmpty(t *testing.T) {
	p := NewInsightPool()
	called := false
	p.Subscribe(func([]Insight) { called = true })

	if n := p.Notify(poolNow); n != 0 || called {
		t.Error("Expected no delivery without presentable insights")
	}
}
