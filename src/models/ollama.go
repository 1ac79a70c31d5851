package models

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	ollama "github.com/ollama/ollama/api"
)

// OllamaLLM adapts a locally hosted Ollama backend.
type OllamaLLM struct {
	Client *ollama.Client
	Model  string
}

func NewOllamaLLM(model string) (*OllamaLLM, error) {
	host := os.Getenv("OLLAMA_HOST")
	if host == "" {
		host = "http://localhost:11434"
	}

	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid OLLAMA_HOST %q: %w", host, err)
	}

	httpClient := &http.Client{
		Timeout: 120 * time.Second,
	}

	return &OllamaLLM{
		Client: ollama.NewClient(u, httpClient),
		Model:  model,
	}, nil
}

func (o *OllamaLLM) Name() string { return "ollama" }

// Stream leverages Ollama's native callback-based streaming.
func (o *OllamaLLM) Stream(ctx context.Context, prompt Prompt) (<-chan StreamChunk, error) {
	req := &ollama.GenerateRequest{
		Model:  o.Model,
		Prompt: prompt.User,
		System: prompt.System,
	}

	ch := make(chan StreamChunk, 16)
	go func() {
		defer close(ch)
		var sb strings.Builder
		err := o.Client.Generate(ctx, req, func(gr ollama.GenerateResponse) error {
			if gr.Response == "" {
				return nil
			}
			sb.WriteString(gr.Response)
			select {
			case ch <- StreamChunk{Delta: gr.Response}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil {
			sendFinal(ctx, ch, StreamChunk{Done: true, Err: backendErr("ollama", err)})
			return
		}
		sendFinal(ctx, ch, StreamChunk{Done: true, FullText: sb.String()})
	}()

	return ch, nil
}

var _ Model = (*OllamaLLM)(nil)
