package models

import (
	"context"
	"fmt"
)

// Prompt is the immutable input to a single completion call.
type Prompt struct {
	System string
	User   string
}

// StreamChunk is one fragment of a streamed completion. Delta is empty only
// on the terminal chunk, which carries Done plus either FullText or Err.
type StreamChunk struct {
	Delta    string
	FullText string
	Done     bool
	Err      error
}

// Model is a streaming completion backend. Stream returns a finite,
// non-restartable sequence of chunks; the channel is closed after the
// terminal chunk. Adapters never retry internally.
type Model interface {
	Name() string
	Stream(ctx context.Context, prompt Prompt) (<-chan StreamChunk, error)
}

// BackendError reports a failed backend call. It terminates the stream;
// the caller decides whether to retry.
type BackendError struct {
	Backend string
	Status  string
	Err     error
}

func (e *BackendError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("%s backend: %s: %v", e.Backend, e.Status, e.Err)
	}
	return fmt.Sprintf("%s backend: %v", e.Backend, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

func backendErr(backend string, err error) *BackendError {
	return &BackendError{Backend: backend, Err: err}
}

// sendFinal delivers the terminal chunk without blocking a producer whose
// consumer has gone away. Once the caller cancels it may stop draining the
// channel entirely; an unconditional send would then wedge the adapter
// goroutine (and keep any deferred stream close from running) as soon as
// the buffer fills.
func sendFinal(ctx context.Context, ch chan<- StreamChunk, chunk StreamChunk) {
	select {
	case ch <- chunk:
	case <-ctx.Done():
	}
}
