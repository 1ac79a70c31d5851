package memory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Protocol-Lattice/go-assistant/src/cache"
	"github.com/Protocol-Lattice/go-assistant/src/memory/embed"
	"github.com/Protocol-Lattice/go-assistant/src/memory/store"
)

// Retriever turns a user task into workspace context by embedding the
// query and searching a vector store. Results are memoised per query
// for a short window; Index invalidates the memo.
type Retriever struct {
	store  store.VectorStore
	embed  embed.Embedder
	topK   int
	cache  *cache.Cache
	logger *slog.Logger
}

func NewRetriever(st store.VectorStore, em embed.Embedder, topK int, logger *slog.Logger) *Retriever {
	if topK <= 0 {
		topK = 4
	}
	if em == nil {
		em = embed.DummyEmbedder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		store:  st,
		embed:  em,
		topK:   topK,
		cache:  cache.New(256, 2*time.Minute),
		logger: logger,
	}
}

// Search returns the stored passages most similar to query, newline
// separated, or the empty string when nothing matches.
func (r *Retriever) Search(ctx context.Context, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", nil
	}
	key := cache.Key(query)
	if hit, ok := r.cache.Get(key); ok {
		return hit, nil
	}
	vec, err := r.embed.Embed(ctx, query)
	if err != nil {
		return "", fmt.Errorf("embed query: %w", err)
	}
	records, err := r.store.Search(ctx, vec, r.topK)
	if err != nil {
		return "", fmt.Errorf("search store: %w", err)
	}
	var sb strings.Builder
	for i, rec := range records {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(rec.Content)
	}
	result := sb.String()
	r.cache.Set(key, result)
	r.logger.Debug("retrieval done", "records", len(records))
	return result, nil
}

// Index embeds text and stores it under key.
func (r *Retriever) Index(ctx context.Context, key, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	vec, err := r.embed.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed %s: %w", key, err)
	}
	meta := map[string]string{"key": key}
	if err := r.store.Store(ctx, key, text, meta, vec); err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	r.cache.Clear()
	return nil
}

// Close releases the underlying store.
func (r *Retriever) Close(ctx context.Context) error {
	if r.store == nil {
		return nil
	}
	return r.store.Close(ctx)
}
