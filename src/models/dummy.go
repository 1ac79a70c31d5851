package models

import (
	"context"
	"fmt"
	"strings"
)

// DummyLLM is a lightweight model implementation useful for local testing
// without API calls. When Canned is set it streams that text verbatim;
// otherwise it echoes the last non-empty line of the user prompt.
type DummyLLM struct {
	Prefix string
	Canned string
}

func NewDummyLLM(prefix string) *DummyLLM {
	if strings.TrimSpace(prefix) == "" {
		prefix = "Dummy response:"
	}
	return &DummyLLM{Prefix: prefix}
}

// NewCannedLLM returns a DummyLLM that always streams the given text.
func NewCannedLLM(text string) *DummyLLM {
	return &DummyLLM{Canned: text}
}

func (d *DummyLLM) Name() string { return "dummy" }

func (d *DummyLLM) respond(prompt Prompt) string {
	if d.Canned != "" {
		return d.Canned
	}
	lines := strings.Split(prompt.User, "\n")
	var last string
	for i := len(lines) - 1; i >= 0; i-- {
		if candidate := strings.TrimSpace(lines[i]); candidate != "" {
			last = candidate
			break
		}
	}
	if last == "" {
		last = "<empty prompt>"
	}
	return fmt.Sprintf("%s %s", d.Prefix, last)
}

// Stream simulates streaming by splitting the response into word-level chunks.
func (d *DummyLLM) Stream(ctx context.Context, prompt Prompt) (<-chan StreamChunk, error) {
	text := d.respond(prompt)

	ch := make(chan StreamChunk, 16)
	go func() {
		defer close(ch)
		words := strings.Fields(text)
		var sb strings.Builder
		for i, word := range words {
			if i > 0 {
				word = " " + word
			}
			sb.WriteString(word)
			select {
			case ch <- StreamChunk{Delta: word}:
			case <-ctx.Done():
				sendFinal(ctx, ch, StreamChunk{Done: true, Err: ctx.Err()})
				return
			}
		}
		sendFinal(ctx, ch, StreamChunk{Done: true, FullText: sb.String()})
	}()

	return ch, nil
}

var _ Model = (*DummyLLM)(nil)
