package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is one audit record. Fields carry operation-specific detail
// such as the chosen backend or a tool name.
type Event struct {
	ID        string         `json:"id" bson:"id"`
	Type      string         `json:"type" bson:"type"`
	Time      time.Time      `json:"time" bson:"time"`
	SessionID string         `json:"session_id" bson:"session_id"`
	Fields    map[string]any `json:"fields,omitempty" bson:"fields,omitempty"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType, sessionID string, fields map[string]any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Time:      time.Now().UTC(),
		SessionID: sessionID,
		Fields:    fields,
	}
}

// Sink records audit events. Implementations must not block request
// handling for long; wrap slow sinks in Async.
type Sink interface {
	Record(ctx context.Context, ev Event)
	Close(ctx context.Context) error
}

// LogSink writes events through a slog.Logger.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Record(_ context.Context, ev Event) {
	attrs := []any{
		"audit_id", ev.ID,
		"session_id", ev.SessionID,
		"time", ev.Time,
	}
	for k, v := range ev.Fields {
		attrs = append(attrs, k, v)
	}
	s.logger.Info(ev.Type, attrs...)
}

func (s *LogSink) Close(context.Context) error { return nil }

// Async wraps a sink with a bounded queue so callers never block.
// Events beyond the queue capacity are dropped and counted.
type Async struct {
	inner   Sink
	queue   chan Event
	dropped int64
	mu      sync.Mutex
	wg      sync.WaitGroup
	once    sync.Once
}

func NewAsync(inner Sink, depth int) *Async {
	if depth <= 0 {
		depth = 256
	}
	a := &Async{inner: inner, queue: make(chan Event, depth)}
	a.wg.Add(1)
	go a.drain()
	return a
}

func (a *Async) drain() {
	defer a.wg.Done()
	for ev := range a.queue {
		a.inner.Record(context.Background(), ev)
	}
}

func (a *Async) Record(_ context.Context, ev Event) {
	select {
	case a.queue <- ev:
	default:
		a.mu.Lock()
		a.dropped++
		a.mu.Unlock()
	}
}

// Dropped reports how many events were discarded on queue overflow.
func (a *Async) Dropped() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dropped
}

func (a *Async) Close(ctx context.Context) error {
	a.once.Do(func() { close(a.queue) })
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return a.inner.Close(ctx)
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) Record(context.Context, Event) {}

func (NopSink) Close(context.Context) error { return nil }
