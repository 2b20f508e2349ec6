package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

var baseTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestSQLiteStore(t *testing.T) (*SQLiteStore, func()) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "usage.db")
	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create SQLite store: %v", err)
	}
	return store, func() { store.Close() }
}

func newTestRedisStore(t *testing.T) (*RedisStore, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client, RedisStoreConfig{Key: "test:usage"})
	return store, func() {
		store.Close()
		mr.Close()
	}
}

// forEachStore runs fn against every Store implementation.
func forEachStore(t *testing.T, fn func(t *testing.T, store Store)) {
	t.Run("memory", func(t *testing.T) {
		store := NewMemoryStore()
		defer store.Close()
		fn(t, store)
	})
	t.Run("sqlite", func(t *testing.T) {
		store, cleanup := newTestSQLiteStore(t)
		defer cleanup()
		fn(t, store)
	})
	t.Run("redis", func(t *testing.T) {
		store, cleanup := newTestRedisStore(t)
		defer cleanup()
		fn(t, store)
	})
}

// ============================================================================
// Record Tests
// ============================================================================

func TestNewRecord_DerivesDateAndHour(t *testing.T) {
	rec := NewRecord("user-1", "openai", 0.03, 1500, "compliance", baseTime)

	if rec.Date != "2026-03-14" {
		t.Errorf("Expected date 2026-03-14, got %s", rec.Date)
	}
	if rec.Hour != 9 {
		t.Errorf("Expected hour 9, got %d", rec.Hour)
	}
	if rec.Month() != "2026-03" {
		t.Errorf("Expected month 2026-03, got %s", rec.Month())
	}
}

func TestNewRecord_AnonymousUser(t *testing.T) {
	rec := NewRecord("", "openrouter", 0.001, 200, "deals", baseTime)
	if rec.UserID != AnonymousUser {
		t.Errorf("Expected user %q, got %q", AnonymousUser, rec.UserID)
	}
}

// ============================================================================
// Store Tests
// ============================================================================

func TestStore_AppendAndRead(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			rec := NewRecord("user-1", "openai", float64(i+1), 100*(i+1), "planning", baseTime.Add(time.Duration(i)*time.Minute))
			if err := store.Append(ctx, rec); err != nil {
				t.Fatalf("Append failed: %v", err)
			}
		}

		records, err := store.Read(ctx)
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("Expected 3 records, got %d", len(records))
		}
		for i, rec := range records {
			if rec.Cost != float64(i+1) {
				t.Errorf("Expected record %d cost %.0f, got %.2f", i, float64(i+1), rec.Cost)
			}
			if rec.Date != "2026-03-14" {
				t.Errorf("Expected record %d date 2026-03-14, got %s", i, rec.Date)
			}
			if !rec.Timestamp.Equal(baseTime.Add(time.Duration(i) * time.Minute)) {
				t.Errorf("Expected record %d timestamp %v, got %v", i, baseTime.Add(time.Duration(i)*time.Minute), rec.Timestamp)
			}
		}
	})
}

func TestStore_TrimKeepsMostRecent(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()

		for i := 0; i < 10; i++ {
			if err := store.Append(ctx, NewRecord("user-1", "openai", float64(i), 10, "deals", baseTime)); err != nil {
				t.Fatalf("Append failed: %v", err)
			}
		}

		if err := store.Trim(ctx, 4); err != nil {
			t.Fatalf("Trim failed: %v", err)
		}

		records, err := store.Read(ctx)
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		if len(records) != 4 {
			t.Fatalf("Expected 4 records after trim, got %d", len(records))
		}
		if records[0].Cost != 6 || records[3].Cost != 9 {
			t.Errorf("Expected costs 6..9 after trim, got %.0f..%.0f", records[0].Cost, records[3].Cost)
		}
	})
}

func TestStore_TrimInvalidCapacity(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		err := store.Trim(context.Background(), 0)
		if !errors.Is(err, ErrInvalidCapacity) {
			t.Errorf("Expected ErrInvalidCapacity, got %v", err)
		}
	})
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "usage.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	if err := store.Append(ctx, NewRecord("user-1", "perplexity", 0.005, 400, "realtime", baseTime)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer reopened.Close()

	records, err := reopened.Read(ctx)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(records) != 1 || records[0].APIType != "perplexity" {
		t.Errorf("Expected one perplexity record after reopen, got %+v", records)
	}
}

func TestSQLiteStore_CloseIdempotent(t *testing.T) {
	store, _ := newTestSQLiteStore(t)
	if err := store.Close(); err != nil {
		t.Fatalf("First close failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("Second close should be a no-op, got %v", err)
	}
}

func TestNewSQLiteStore_EmptyPath(t *testing.T) {
	if _, err := NewSQLiteStore(""); err == nil {
		t.Error("Expected error for empty db path")
	}
}

func TestMemoryStore_Closed(t *testing.T) {
	store := NewMemoryStore()
	store.Close()

	err := store.Append(context.Background(), NewRecord("u", "openai", 1, 1, "x", baseTime))
	if !errors.Is(err, ErrStoreClosed) {
		t.Errorf("Expected ErrStoreClosed, got %v", err)
	}
}

// ============================================================================
// Ledger Tests
// ============================================================================

func TestLedger_TrimsToCapacity(t *testing.T) {
	store := NewMemoryStore()
	l := New(store, 0)
	ctx := context.Background()

	if l.Capacity() != DefaultCapacity {
		t.Fatalf("Expected default capacity %d, got %d", DefaultCapacity, l.Capacity())
	}

	for i := 0; i < DefaultCapacity+25; i++ {
		if err := l.Record(ctx, NewRecord("user-1", "openrouter", 0.001, 50, "deals", baseTime)); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	if store.Len() != DefaultCapacity {
		t.Errorf("Expected %d records, got %d", DefaultCapacity, store.Len())
	}
}

func TestLedger_ConcurrentRecord(t *testing.T) {
	store := NewMemoryStore()
	l := New(store, 500)
	ctx := context.Background()

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_ = l.Record(ctx, NewRecord(fmt.Sprintf("user-%d", g), "openai", 0.01, 10, "deals", baseTime))
			}
		}(g)
	}
	wg.Wait()

	if store.Len() != 500 {
		t.Errorf("Expected 500 records, got %d", store.Len())
	}
}

// ============================================================================
// Aggregation Tests
// ============================================================================

func TestSummarize(t *testing.T) {
	yesterday := baseTime.AddDate(0, 0, -1)
	lastMonth := baseTime.AddDate(0, -1, 0)

	records := []Record{
		NewRecord("user-1", "openai", 0.30, 3000, "compliance", baseTime),
		NewRecord("user-2", "openrouter", 0.02, 1000, "deals", baseTime),
		NewRecord("user-1", "perplexity", 0.005, 500, "realtime", yesterday),
		NewRecord("user-1", "openai", 1.00, 10000, "complex", lastMonth),
	}

	tests := []struct {
		name         string
		filter       Filter
		wantRequests int
		wantCost     float64
	}{
		{"all", nil, 4, 1.325},
		{"today", OnDate(baseTime), 2, 0.32},
		{"this month", InMonth(baseTime), 3, 0.325},
		{"user today", All(ForUser("user-1"), OnDate(baseTime)), 1, 0.30},
		{"anonymous", ForUser(""), 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sum := Summarize(records, tt.filter)
			if sum.Requests != tt.wantRequests {
				t.Errorf("Expected %d requests, got %d", tt.wantRequests, sum.Requests)
			}
			if math.Abs(sum.Cost-tt.wantCost) > 1e-9 {
				t.Errorf("Expected cost %.4f, got %.4f", tt.wantCost, sum.Cost)
			}
			if math.Abs(Spend(records, tt.filter)-tt.wantCost) > 1e-9 {
				t.Errorf("Expected spend %.4f, got %.4f", tt.wantCost, Spend(records, tt.filter))
			}
		})
	}
}

func TestSummarize_ByAPI(t *testing.T) {
	records := []Record{
		NewRecord("user-1", "openai", 0.30, 3000, "compliance", baseTime),
		NewRecord("user-1", "openai", 0.10, 1000, "complex", baseTime),
		NewRecord("user-1", "openrouter", 0.02, 1000, "deals", baseTime),
	}

	sum := Summarize(records, nil)
	openai := sum.ByAPI["openai"]
	if openai.Requests != 2 || openai.Tokens != 4000 {
		t.Errorf("Expected openai 2 requests/4000 tokens, got %+v", openai)
	}
	if math.Abs(sum.AverageCost()-0.14) > 1e-9 {
		t.Errorf("Expected average cost 0.14, got %.4f", sum.AverageCost())
	}
	if (Summary{}).AverageCost() != 0 {
		t.Error("Expected zero average cost for empty summary")
	}
}
