package assistant

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/Protocol-Lattice/go-assistant/src/log"
	"github.com/Protocol-Lattice/go-assistant/src/models"
	"github.com/Protocol-Lattice/go-assistant/src/router"
	"github.com/Protocol-Lattice/go-assistant/src/tools"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestCatalog(t *testing.T) *tools.StaticCatalog {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("# readme\nhello\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	ws, err := tools.NewWorkspace(dir)
	if err != nil {
		t.Fatalf("NewWorkspace: %v", err)
	}
	catalog := tools.NewStaticCatalog([]tools.Tool{
		tools.NewReadFileTool(ws),
		tools.NewProposeEditTool(ws),
	})
	return catalog
}

func newTestLoop(t *testing.T, model models.Model) *Loop {
	t.Helper()
	catalog := newTestCatalog(t)
	rt := router.New(model, model, router.Config{TokenThreshold: 256, Encoding: ""})
	return NewLoop(rt, catalog, log.NewNop())
}

func collectEvents(t *testing.T, ch <-chan Event) []Event {
	t.Helper()
	var events []Event
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out after %d events", len(events))
		}
	}
}

func TestLoopStreamsTokensThenDone(t *testing.T) {
	loop := newTestLoop(t, models.NewCannedLLM("hello there friend"))

	ch, err := loop.Run(context.Background(), models.Prompt{User: "hello"}, "hello")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	events := collectEvents(t, ch)

	if len(events) == 0 {
		t.Fatal("no events")
	}
	last := events[len(events)-1]
	if last.Type != EventDone {
		t.Fatalf("last event = %v, want done", last.Type)
	}
	var text strings.Builder
	for _, ev := range events[:len(events)-1] {
		if ev.Type != EventToken {
			t.Fatalf("unexpected %v event before done", ev.Type)
		}
		text.WriteString(ev.Content)
	}
	if text.String() != "hello there friend" {
		t.Fatalf("tokens concatenate to %q", text.String())
	}
}

func TestLoopRecognisesToolCall(t *testing.T) {
	loop := newTestLoop(t, models.NewCannedLLM(`{"tool":"read_file","params":{"file":"README.md"}}`))

	ch, err := loop.Run(context.Background(), models.Prompt{User: "read it"}, "read it")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	events := collectEvents(t, ch)

	var toolEvents []Event
	for _, ev := range events {
		if ev.Type == EventTool {
			toolEvents = append(toolEvents, ev)
		}
	}
	if len(toolEvents) != 1 {
		t.Fatalf("got %d tool events, want 1", len(toolEvents))
	}
	if toolEvents[0].Content != "# readme\nhello\n" {
		t.Fatalf("tool content = %q, want the file text", toolEvents[0].Content)
	}
	if events[len(events)-1].Type != EventDone {
		t.Fatalf("last event = %v, want done", events[len(events)-1].Type)
	}
	if events[len(events)-2].Type != EventTool {
		t.Fatalf("tool event must immediately precede done")
	}
}

func TestLoopToolFailureIsReportedInline(t *testing.T) {
	loop := newTestLoop(t, models.NewCannedLLM(`{"tool":"read_file","params":{"file":"missing.txt"}}`))

	ch, err := loop.Run(context.Background(), models.Prompt{User: "read"}, "read")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	events := collectEvents(t, ch)

	var tool *Event
	for i := range events {
		if events[i].Type == EventTool {
			tool = &events[i]
		}
	}
	if tool == nil {
		t.Fatal("no tool event")
	}
	if !strings.Contains(tool.Content, "missing.txt") || !strings.Contains(tool.Content, "error") {
		t.Fatalf("tool failure payload = %q", tool.Content)
	}
	if events[len(events)-1].Type != EventDone {
		t.Fatal("loop must still reach done after a tool failure")
	}
}

func TestLoopExactlyOneDone(t *testing.T) {
	inputs := []string{
		"plain text answer",
		`{"tool":"read_file","params":{"file":"README.md"}}`,
		`{"tool":"nope","params":{}}`,
		"{broken json",
	}
	for _, text := range inputs {
		loop := newTestLoop(t, models.NewCannedLLM(text))
		ch, err := loop.Run(context.Background(), models.Prompt{User: "x"}, "x")
		if err != nil {
			t.Fatalf("Run(%q): %v", text, err)
		}
		events := collectEvents(t, ch)
		done := 0
		for i, ev := range events {
			if ev.Type == EventDone {
				done++
				if i != len(events)-1 {
					t.Fatalf("input %q: done is not the last event", text)
				}
			}
		}
		if done != 1 {
			t.Fatalf("input %q: %d done events, want exactly 1", text, done)
		}
	}
}

func TestLoopCancellationStopsStream(t *testing.T) {
	// Far more words than the adapter's channel buffer, so plenty of
	// fragments are still pending when cancel fires. TestMain's leak
	// check catches an adapter goroutine left parked on a send.
	loop := newTestLoop(t, models.NewCannedLLM(strings.Repeat("word ", 50)))

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := loop.Run(ctx, models.Prompt{User: "count"}, "count")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	for i := 0; i < 3; i++ {
		ev, ok := <-ch
		if !ok || ev.Type != EventToken {
			t.Fatalf("event %d: %+v (open=%v)", i, ev, ok)
		}
	}
	cancel()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return // closed without done, as required
			}
			if ev.Type == EventDone || ev.Type == EventError {
				t.Fatalf("got %v event after cancellation", ev.Type)
			}
			// A token already in flight when cancel fired may still
			// arrive; anything after must stop promptly.
		case <-deadline:
			t.Fatal("stream did not close after cancellation")
		}
	}
}

func TestLoopBackendErrorTerminatesWithoutDone(t *testing.T) {
	loop := newTestLoop(t, failingModel{})

	ch, err := loop.Run(context.Background(), models.Prompt{User: "x"}, "x")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	events := collectEvents(t, ch)

	if len(events) == 0 {
		t.Fatal("no events")
	}
	last := events[len(events)-1]
	if last.Type != EventError {
		t.Fatalf("last event = %v, want error", last.Type)
	}
	var be *models.BackendError
	if !errors.As(last.Err, &be) {
		t.Fatalf("Err = %v, want a BackendError", last.Err)
	}
	for _, ev := range events {
		if ev.Type == EventDone {
			t.Fatal("done must not follow a backend failure")
		}
	}
}

type failingModel struct{}

func (failingModel) Name() string { return "failing" }

func (failingModel) Stream(ctx context.Context, _ models.Prompt) (<-chan models.StreamChunk, error) {
	ch := make(chan models.StreamChunk, 2)
	ch <- models.StreamChunk{Delta: "par"}
	ch <- models.StreamChunk{Err: &models.BackendError{Backend: "failing", Status: "500", Err: errors.New("boom")}}
	close(ch)
	return ch, nil
}
