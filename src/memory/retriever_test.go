package memory

import (
	"context"
	"strings"
	"testing"

	"github.com/Protocol-Lattice/go-assistant/src/memory/embed"
	"github.com/Protocol-Lattice/go-assistant/src/memory/store"
)

func newTestRetriever(t *testing.T) *Retriever {
	t.Helper()
	return NewRetriever(store.NewInMemoryStore(), embed.DummyEmbedder{}, 2, nil)
}

func TestRetrieverRoundTrip(t *testing.T) {
	ctx := context.Background()
	r := newTestRetriever(t)

	if err := r.Index(ctx, "notes/a.md", "the cache layer uses an LRU map"); err != nil {
		t.Fatalf("Index: %v", err)
	}
	if err := r.Index(ctx, "notes/b.md", "the router picks a backend per task"); err != nil {
		t.Fatalf("Index: %v", err)
	}

	got, err := r.Search(ctx, "the cache layer uses an LRU map")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !strings.Contains(got, "LRU map") {
		t.Fatalf("Search = %q, want it to contain the indexed passage", got)
	}
}

func TestRetrieverEmptyStore(t *testing.T) {
	ctx := context.Background()
	r := newTestRetriever(t)

	got, err := r.Search(ctx, "anything")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got != "" {
		t.Fatalf("Search on empty store = %q, want empty", got)
	}
}

func TestRetrieverBlankInputs(t *testing.T) {
	ctx := context.Background()
	r := newTestRetriever(t)

	if err := r.Index(ctx, "k", "   "); err != nil {
		t.Fatalf("Index blank: %v", err)
	}
	if n, err := r.store.Count(ctx); err != nil || n != 0 {
		t.Fatalf("Count = %d, %v; want 0 records after blank index", n, err)
	}
	if got, err := r.Search(ctx, "  "); err != nil || got != "" {
		t.Fatalf("Search blank = %q, %v; want empty, nil", got, err)
	}
}
