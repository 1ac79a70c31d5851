package models

import (
	"context"
	"os"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicLLM is the heavyweight/deliberate backend adapter, driven by
// Anthropic's Messages API.
type AnthropicLLM struct {
	Client    *anthropic.Client
	Model     string
	MaxTokens int
}

// NewAnthropicLLM constructs a client. It reads ANTHROPIC_API_KEY from the env.
func NewAnthropicLLM(model string) *AnthropicLLM {
	key := os.Getenv("ANTHROPIC_API_KEY")
	cl := anthropic.NewClient(
		anthropicopt.WithAPIKey(key),
	)
	return &AnthropicLLM{
		Client:    &cl,
		Model:     model, // e.g. "claude-3-5-sonnet-latest"
		MaxTokens: 4096,
	}
}

func (a *AnthropicLLM) Name() string { return "anthropic" }

func (a *AnthropicLLM) Stream(ctx context.Context, prompt Prompt) (<-chan StreamChunk, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.Model),
		MaxTokens: int64(a.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt.User)),
		},
	}
	if strings.TrimSpace(prompt.System) != "" {
		params.System = []anthropic.TextBlockParam{{Text: prompt.System}}
	}

	stream := a.Client.Messages.NewStreaming(ctx, params)

	ch := make(chan StreamChunk, 16)
	go func() {
		defer close(ch)
		defer stream.Close()
		var sb strings.Builder
		for stream.Next() {
			event := stream.Current()
			delta, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent)
			if !ok {
				continue
			}
			text, ok := delta.Delta.AsAny().(anthropic.TextDelta)
			if !ok || text.Text == "" {
				continue
			}
			sb.WriteString(text.Text)
			select {
			case ch <- StreamChunk{Delta: text.Text}:
			case <-ctx.Done():
				sendFinal(ctx, ch, StreamChunk{Done: true, Err: ctx.Err()})
				return
			}
		}
		if err := stream.Err(); err != nil {
			sendFinal(ctx, ch, StreamChunk{Done: true, Err: backendErr("anthropic", err)})
			return
		}
		sendFinal(ctx, ch, StreamChunk{Done: true, FullText: sb.String()})
	}()

	return ch, nil
}

var _ Model = (*AnthropicLLM)(nil)
