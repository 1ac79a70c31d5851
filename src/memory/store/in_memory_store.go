package store

import (
	"context"
	"sync"
	"time"

	"github.com/Protocol-Lattice/go-assistant/src/memory/model"
)

// InMemoryStore implements VectorStore for tests and lightweight deployments.
type InMemoryStore struct {
	mu      sync.RWMutex
	nextID  int64
	records map[int64]model.Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[int64]model.Record)}
}

func (s *InMemoryStore) Store(_ context.Context, key, content string, metadata map[string]string, embedding []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.records[s.nextID] = model.Record{
		ID:        s.nextID,
		Key:       key,
		Content:   content,
		Metadata:  cloneMeta(metadata),
		Embedding: append([]float32(nil), embedding...),
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

func (s *InMemoryStore) Search(_ context.Context, queryEmbedding []float32, limit int) ([]model.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		return nil, nil
	}

	scored := make([]model.Record, 0, len(s.records))
	for _, rec := range s.records {
		rec.Score = model.CosineSimilarity(queryEmbedding, rec.Embedding)
		scored = append(scored, rec)
	}
	rankByScore(scored)
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

func (s *InMemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

func (s *InMemoryStore) Close(context.Context) error { return nil }

func cloneMeta(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

var _ VectorStore = (*InMemoryStore)(nil)
