package models

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func collect(t *testing.T, ch <-chan StreamChunk) (deltas []string, final StreamChunk) {
	t.Helper()
	for chunk := range ch {
		if chunk.Done {
			final = chunk
			continue
		}
		deltas = append(deltas, chunk.Delta)
	}
	if !final.Done {
		t.Fatalf("stream ended without a terminal chunk")
	}
	return deltas, final
}

func TestDummyLLMStreamsWordChunks(t *testing.T) {
	llm := NewDummyLLM("Prefix:")
	ch, err := llm.Stream(context.Background(), Prompt{User: "first\n\nsecond"})
	if err != nil {
		t.Fatalf("Stream returned error: %v", err)
	}
	deltas, final := collect(t, ch)
	if len(deltas) == 0 {
		t.Fatalf("expected at least one fragment")
	}
	for _, d := range deltas {
		if d == "" {
			t.Fatalf("empty fragment emitted")
		}
	}
	joined := strings.Join(deltas, "")
	if joined != "Prefix: second" {
		t.Fatalf("unexpected concatenation: %q", joined)
	}
	if final.FullText != joined {
		t.Fatalf("FullText %q does not match concatenated fragments %q", final.FullText, joined)
	}
}

func TestCannedLLMStreamsExactText(t *testing.T) {
	llm := NewCannedLLM(`{"tool":"read_file","params":{"file":"README.md"}}`)
	ch, err := llm.Stream(context.Background(), Prompt{User: "anything"})
	if err != nil {
		t.Fatalf("Stream returned error: %v", err)
	}
	deltas, final := collect(t, ch)
	if got := strings.Join(deltas, ""); got != final.FullText {
		t.Fatalf("fragments %q != full text %q", got, final.FullText)
	}
	if !strings.Contains(final.FullText, `"read_file"`) {
		t.Fatalf("canned text lost: %q", final.FullText)
	}
}

func TestDummyLLMHandlesEmptyPrompt(t *testing.T) {
	llm := NewDummyLLM("Prefix")
	ch, err := llm.Stream(context.Background(), Prompt{User: "\n\n\n"})
	if err != nil {
		t.Fatalf("Stream returned error: %v", err)
	}
	deltas, _ := collect(t, ch)
	if got := strings.Join(deltas, ""); got != "Prefix <empty prompt>" {
		t.Fatalf("unexpected response: %q", got)
	}
}

func TestDummyLLMCancelledConsumerDoesNotWedgeProducer(t *testing.T) {
	// More pending fragments than the channel buffer holds, so the
	// producer is mid-stream when the consumer walks away. The terminal
	// chunk must not block on a channel nobody drains; TestMain's leak
	// check fails if the producer goroutine is still parked on a send.
	llm := NewCannedLLM(strings.Repeat("word ", 50))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := llm.Stream(ctx, Prompt{User: "anything"})
	if err != nil {
		t.Fatalf("Stream returned error: %v", err)
	}
	if chunk := <-ch; chunk.Done {
		t.Fatalf("stream finished before any fragment was read")
	}
	cancel()
	// Abandon ch without draining it.
}

func TestNewProviderErrorsOnUnknownProvider(t *testing.T) {
	if _, err := NewProvider(context.Background(), "unknown", "model"); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}

func TestBackendErrorUnwraps(t *testing.T) {
	inner := context.DeadlineExceeded
	err := backendErr("openai", inner)
	if err.Unwrap() != inner {
		t.Fatalf("Unwrap lost inner error")
	}
	if !strings.Contains(err.Error(), "openai") {
		t.Fatalf("error string missing backend name: %v", err)
	}
}
