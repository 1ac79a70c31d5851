package audit

import (
	"context"
	"sync"
	"testing"
)

type captureSink struct {
	mu     sync.Mutex
	events []Event
}

func (c *captureSink) Record(_ context.Context, ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *captureSink) Close(context.Context) error { return nil }

func (c *captureSink) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func TestNewEventStampsIdentity(t *testing.T) {
	ev := NewEvent("request", "s-1", map[string]any{"backend": "fast"})
	if ev.ID == "" {
		t.Fatal("event ID is empty")
	}
	if ev.Time.IsZero() {
		t.Fatal("event time is zero")
	}
	other := NewEvent("request", "s-1", nil)
	if ev.ID == other.ID {
		t.Fatalf("two events share ID %s", ev.ID)
	}
}

func TestAsyncDeliversAndCloses(t *testing.T) {
	inner := &captureSink{}
	a := NewAsync(inner, 16)

	for i := 0; i < 5; i++ {
		a.Record(context.Background(), NewEvent("response_chunk", "s-1", nil))
	}
	if err := a.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := inner.len(); got != 5 {
		t.Fatalf("delivered %d events, want 5", got)
	}
	if a.Dropped() != 0 {
		t.Fatalf("Dropped = %d, want 0", a.Dropped())
	}
}

func TestAsyncDropsOnOverflow(t *testing.T) {
	blocker := make(chan struct{})
	inner := &blockingSink{release: blocker}
	a := NewAsync(inner, 1)

	// First event is taken by the drain goroutine and blocks; the
	// second fills the queue; everything after is dropped.
	for i := 0; i < 10; i++ {
		a.Record(context.Background(), NewEvent("request", "s-1", nil))
	}
	if a.Dropped() == 0 {
		t.Fatal("expected drops on a full queue")
	}
	close(blocker)
	if err := a.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

type blockingSink struct {
	release chan struct{}
}

func (b *blockingSink) Record(context.Context, Event) { <-b.release }

func (b *blockingSink) Close(context.Context) error { return nil }
