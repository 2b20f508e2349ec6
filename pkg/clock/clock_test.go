package clock

import (
	"testing"
	"time"
)

var start = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFake_NowAdvances(t *testing.T) {
	f := NewFake(start)
	f.Advance(90 * time.Second)

	if got := f.Now(); !got.Equal(start.Add(90 * time.Second)) {
		t.Errorf("Expected %v, got %v", start.Add(90*time.Second), got)
	}
}

func TestFake_TickerFires(t *testing.T) {
	f := NewFake(start)
	ticker := f.NewTicker(10 * time.Second)
	defer ticker.Stop()

	f.Advance(5 * time.Second)
	select {
	case <-ticker.C():
		t.Fatal("Ticker fired before its interval elapsed")
	default:
	}

	f.Advance(5 * time.Second)
	select {
	case tick := <-ticker.C():
		if !tick.Equal(start.Add(10 * time.Second)) {
			t.Errorf("Expected tick at %v, got %v", start.Add(10*time.Second), tick)
		}
	default:
		t.Fatal("Expected ticker to fire")
	}
}

func TestFake_TickerDropsForSlowReceiver(t *testing.T) {
	f := NewFake(start)
	ticker := f.NewTicker(time.Second)
	defer ticker.Stop()

	f.Advance(5 * time.Second)

	count := 0
	for {
		select {
		case <-ticker.C():
			count++
			continue
		default:
		}
		break
	}
	if count != 1 {
		t.Errorf("Expected 1 buffered tick, got %d", count)
	}
}

func TestFake_StopRemovesTicker(t *testing.T) {
	f := NewFake(start)
	ticker := f.NewTicker(time.Second)
	if f.Tickers() != 1 {
		t.Fatalf("Expected 1 ticker, got %d", f.Tickers())
	}

	ticker.Stop()
	f.Advance(time.Minute)

	if f.Tickers() != 0 {
		t.Errorf("Expected 0 tickers after stop, got %d", f.Tickers())
	}
	select {
	case <-ticker.C():
		t.Error("Stopped ticker should not fire")
	default:
	}
}

func TestFake_OrdersDeadlines(t *testing.T) {
	f := NewFake(start)
	fast := f.NewTicker(10 * time.Second)
	slow := f.NewTicker(60 * time.Second)
	defer fast.Stop()
	defer slow.Stop()

	f.Advance(60 * time.Second)

	select {
	case tick := <-slow.C():
		if !tick.Equal(start.Add(time.Minute)) {
			t.Errorf("Expected slow tick at %v, got %v", start.Add(time.Minute), tick)
		}
	default:
		t.Fatal("Expected slow ticker to fire")
	}
	if !f.Now().Equal(start.Add(time.Minute)) {
		t.Errorf("Expected now %v, got %v", start.Add(time.Minute), f.Now())
	}
}
