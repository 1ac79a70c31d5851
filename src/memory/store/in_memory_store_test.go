package store

import (
	"context"
	"testing"
)

func TestInMemoryStoreRanksBySimilarity(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	if err := s.Store(ctx, "a", "alpha", nil, []float32{1, 0, 0}); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := s.Store(ctx, "b", "beta", nil, []float32{0, 1, 0}); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := s.Store(ctx, "c", "close", nil, []float32{0.9, 0.1, 0}); err != nil {
		t.Fatalf("Store: %v", err)
	}

	got, err := s.Search(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].Key != "a" || got[1].Key != "c" {
		t.Fatalf("unexpected ranking: %q then %q", got[0].Key, got[1].Key)
	}
	if got[0].Score < got[1].Score {
		t.Fatalf("scores not descending: %f < %f", got[0].Score, got[1].Score)
	}
}

func TestInMemoryStoreCount(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	for i := 0; i < 3; i++ {
		if err := s.Store(ctx, "k", "v", nil, []float32{1}); err != nil {
			t.Fatalf("Store: %v", err)
		}
	}
	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 3 {
		t.Fatalf("Count = %d, want 3", n)
	}
}

func TestInMemoryStoreSearchZeroLimit(t *testing.T) {
	s := NewInMemoryStore()
	got, err := s.Search(context.Background(), []float32{1}, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil result for zero limit, got %v", got)
	}
}
