// Package model defines the records shared by the retrieval stores.
package model

import (
	"math"
	"time"
)

// Record is one indexed passage of repository context.
type Record struct {
	ID        int64
	Key       string // source identifier, e.g. "repo/path/to/file.go"
	Content   string
	Metadata  map[string]string
	Embedding []float32
	CreatedAt time.Time
	Score     float64 // similarity to the query, set by Search
}

// CosineSimilarity returns the cosine similarity of two vectors, 0 when
// either is empty or their lengths differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
