//go:build !fastembed

package embed

import (
	"context"
	"fmt"
)

// Options configure the optional fastembed provider.
type Options struct {
	Model     string
	CacheDir  string
	MaxLength int
	BatchSize int
}

func defaultFastEmbedOptions() *Options { return nil }

// NewFastEmbedder is unavailable without the fastembed build tag.
func NewFastEmbedder(_ context.Context, _ *Options) (Embedder, error) {
	return nil, fmt.Errorf("fastembed support not included; rebuild with -tags fastembed")
}
