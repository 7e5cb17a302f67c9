package market

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
)

func fixedQuote(out uint64) QuoteFn {
	return func(context.Context, uint64) (uint64, error) {
		return out, nil
	}
}

func TestSampleAndLatest(t *testing.T) {
	m := NewPriceMonitor(fixedQuote(1010000), 1000000, nil)

	if _, ok := m.Latest(); ok {
		t.Fatalf("Expected no sample before first Sample")
	}
	p, ok := m.Sample(context.Background())
	if !ok {
		t.Fatalf("sample failed")
	}
	if math.Abs(p.Rate-1.01) > 1e-9 {
		t.Errorf("Expected rate 1.01, got %f", p.Rate)
	}
	if !m.AboveTarget(1.0) {
		t.Errorf("Expected above target 1.0")
	}
	if m.AboveTarget(1.02) {
		t.Errorf("Expected below target 1.02")
	}
}

func TestSampleErrorKeepsWindow(t *testing.T) {
	calls := 0
	q := func(context.Context, uint64) (uint64, error) {
		calls++
		if calls > 1 {
			return 0, errors.New("rpc down")
		}
		return 1000000, nil
	}
	m := NewPriceMonitor(q, 1000000, nil)
	m.Sample(context.Background())
	if _, ok := m.Sample(context.Background()); ok {
		t.Fatalf("Expected failed sample")
	}
	if got := m.Snapshot().Count; got != 1 {
		t.Errorf("Failed sample must not enter window, count %d", got)
	}
}

func TestSnapshotStats(t *testing.T) {
	outs := []uint64{1000000, 1020000, 980000}
	i := 0
	q := func(context.Context, uint64) (uint64, error) {
		out := outs[i%len(outs)]
		i++
		return out, nil
	}
	m := NewPriceMonitor(q, 1000000, nil)
	for range outs {
		m.Sample(context.Background())
	}

	s := m.Snapshot()
	if s.Count != 3 {
		t.Fatalf("Expected 3 samples, got %d", s.Count)
	}
	if math.Abs(s.Min-0.98) > 1e-9 || math.Abs(s.Max-1.02) > 1e-9 {
		t.Errorf("Unexpected min/max: %f/%f", s.Min, s.Max)
	}
	if math.Abs(s.Avg-1.0) > 1e-9 {
		t.Errorf("Expected avg 1.0, got %f", s.Avg)
	}
	if s.Volatility <= 0 {
		t.Errorf("Expected positive volatility, got %f", s.Volatility)
	}
}

func TestWindowBounded(t *testing.T) {
	m := NewPriceMonitor(fixedQuote(1000000), 1000000, nil)
	for i := 0; i < maxHistory+20; i++ {
		m.Sample(context.Background())
	}
	if got := m.Snapshot().Count; got != maxHistory {
		t.Errorf("Expected window capped at %d, got %d", maxHistory, got)
	}
}

func TestRunStopsOnDuration(t *testing.T) {
	m := NewPriceMonitor(fixedQuote(1000000), 1000000, nil)
	done := make(chan struct{})
	go func() {
		m.Run(context.Background(), 50*time.Millisecond, 10*time.Millisecond)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not stop at duration")
	}
	if m.Snapshot().Count == 0 {
		t.Errorf("Expected samples collected")
	}
}

func TestFakeClockStampsSamples(t *testing.T) {
	clk := &FakeClock{Current: time.Unix(1700000000, 0)}
	m := NewPriceMonitor(fixedQuote(1000000), 1000000, nil)
	m.SetClock(clk)

	m.Sample(context.Background())
	clk.Advance(time.Minute)
	m.Sample(context.Background())

	p, _ := m.Latest()
	if !p.At.Equal(time.Unix(1700000000, 0).Add(time.Minute)) {
		t.Errorf("Expected fake clock timestamp, got %v", p.At)
	}
}
