// Package embed provides pluggable text-embedding providers for the
// retrieval stores.
package embed

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
)

// Embedder is a pluggable text-embedding provider.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ErrNotSupported is returned by providers that do not offer embeddings.
var ErrNotSupported = errors.New("embeddings not supported by this provider")

// ---------- Dummy (fallback) ----------

type DummyEmbedder struct{}

func (DummyEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return DummyEmbedding(text), nil
}

// DummyEmbedding folds bytes into a fixed 768-dim vector. Deterministic,
// offline, good enough for tests and cold starts.
func DummyEmbedding(text string) []float32 {
	vec := make([]float32, 768)
	for i, ch := range []byte(text) {
		vec[i%768] += float32(ch) / 255.0
	}
	return vec
}

// AutoEmbedder chooses a provider from env:
// ASSISTANT_EMBED_PROVIDER=openai|ollama|voyage|fastembed
// ASSISTANT_EMBED_MODEL=<model string>
// If not set or the provider fails to initialise, it falls back to dummy.
func AutoEmbedder(logger *slog.Logger) Embedder {
	if logger == nil {
		logger = slog.Default()
	}
	provider := strings.ToLower(strings.TrimSpace(os.Getenv("ASSISTANT_EMBED_PROVIDER")))
	model := strings.TrimSpace(os.Getenv("ASSISTANT_EMBED_MODEL"))

	switch provider {
	case "openai":
		if e, err := NewOpenAIEmbedder(model); err == nil {
			return e
		}
	case "ollama":
		if e, err := NewOllamaEmbedder(model); err == nil {
			return e
		}
	case "voyage", "claude", "anthropic":
		if e, err := NewVoyageEmbedder(model); err == nil {
			return e
		}
	case "fastembed":
		if opts := defaultFastEmbedOptions(); opts != nil {
			if model != "" {
				opts.Model = model
			}
			if e, err := NewFastEmbedder(context.Background(), opts); err == nil {
				return e
			}
		}
	}

	logger.Warn("embedder fallback", "provider", provider, "using", "dummy")
	return DummyEmbedder{}
}
