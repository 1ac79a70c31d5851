package models

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GeminiLLM adapts Google's Gemini models. Added as a third provider behind
// the same Model contract; nothing outside this package branches on it.
type GeminiLLM struct {
	Client *genai.Client
	Model  string
}

func NewGeminiLLM(ctx context.Context, model string) (*GeminiLLM, error) {
	apiKey := os.Getenv("GOOGLE_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("missing GOOGLE_API_KEY or GEMINI_API_KEY")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}
	return &GeminiLLM{Client: client, Model: model}, nil
}

func (g *GeminiLLM) Name() string { return "gemini" }

func (g *GeminiLLM) Stream(ctx context.Context, prompt Prompt) (<-chan StreamChunk, error) {
	model := g.Client.GenerativeModel(g.Model)
	if strings.TrimSpace(prompt.System) != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(prompt.System)},
		}
	}

	iter := model.GenerateContentStream(ctx, genai.Text(prompt.User))

	ch := make(chan StreamChunk, 16)
	go func() {
		defer close(ch)
		var sb strings.Builder
		for {
			resp, err := iter.Next()
			if errors.Is(err, iterator.Done) {
				sendFinal(ctx, ch, StreamChunk{Done: true, FullText: sb.String()})
				return
			}
			if err != nil {
				sendFinal(ctx, ch, StreamChunk{Done: true, Err: backendErr("gemini", err)})
				return
			}
			delta := textFromResponse(resp)
			if delta == "" {
				continue
			}
			sb.WriteString(delta)
			select {
			case ch <- StreamChunk{Delta: delta}:
			case <-ctx.Done():
				sendFinal(ctx, ch, StreamChunk{Done: true, Err: ctx.Err()})
				return
			}
		}
	}()

	return ch, nil
}

func textFromResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}

var _ Model = (*GeminiLLM)(nil)
