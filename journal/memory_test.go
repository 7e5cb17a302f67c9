package journal

import (
	"context"
	"testing"
	"time"
)

func TestMemoryRecordAndFilter(t *testing.T) {
	j := NewMemory()
	ctx := context.Background()

	events := []Event{
		{Time: time.Now(), OrderID: "a", Type: "admitted", Status: "ACTIVE"},
		{Time: time.Now(), OrderID: "b", Type: "admitted", Status: "ACTIVE"},
		{Time: time.Now(), OrderID: "a", Type: "terminal", Status: "FILLED"},
	}
	for _, ev := range events {
		if err := j.Record(ctx, ev); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	if got := len(j.Events()); got != 3 {
		t.Fatalf("Expected 3 events, got %d", got)
	}
	byA := j.ByOrder("a")
	if len(byA) != 2 {
		t.Fatalf("Expected 2 events for order a, got %d", len(byA))
	}
	if byA[1].Status != "FILLED" {
		t.Errorf("Expected terminal FILLED last, got %s", byA[1].Status)
	}
}

func TestNopJournal(t *testing.T) {
	var j Journaler = Nop{}
	if err := j.Record(context.Background(), Event{OrderID: "x"}); err != nil {
		t.Fatalf("nop record: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("nop close: %v", err)
	}
}
