package store

import (
	"context"

	"github.com/Protocol-Lattice/go-assistant/src/memory/model"
)

// VectorStore is the contract for retrieval backends.
type VectorStore interface {
	Store(ctx context.Context, key, content string, metadata map[string]string, embedding []float32) error
	Search(ctx context.Context, queryEmbedding []float32, limit int) ([]model.Record, error)
	Count(ctx context.Context) (int, error)
	Close(ctx context.Context) error
}

// SchemaInitializer is implemented by stores that need schema bootstrap.
type SchemaInitializer interface {
	CreateSchema(ctx context.Context) error
}
