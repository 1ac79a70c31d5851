//go:build fastembed

package embed

import (
	"context"
	"fmt"

	fastembed "github.com/anush008/fastembed-go"
)

// Options configure the optional fastembed provider.
type Options struct {
	Model     string
	CacheDir  string
	MaxLength int
	BatchSize int
}

func defaultFastEmbedOptions() *Options {
	return &Options{
		Model:     string(fastembed.BGESmallENV15),
		CacheDir:  ".fastembed",
		BatchSize: 64,
	}
}

// FastEmbedder runs a local ONNX embedding model via fastembed.
type FastEmbedder struct {
	m  *fastembed.FlagEmbedding
	bs int
}

func NewFastEmbedder(_ context.Context, opt *Options) (Embedder, error) {
	var init *fastembed.InitOptions
	bs := 64
	if opt != nil {
		init = &fastembed.InitOptions{
			Model:     fastembed.EmbeddingModel(opt.Model),
			CacheDir:  opt.CacheDir,
			MaxLength: opt.MaxLength,
		}
		if opt.BatchSize > 0 {
			bs = opt.BatchSize
		}
	}
	m, err := fastembed.NewFlagEmbedding(init)
	if err != nil {
		return nil, fmt.Errorf("fastembed init: %w", err)
	}
	return &FastEmbedder{m: m, bs: bs}, nil
}

func (e *FastEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vecs, err := e.m.QueryEmbed([]string{text}, e.bs)
	if err != nil {
		return nil, fmt.Errorf("fastembed embed: %w", err)
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("fastembed embed: empty result")
	}
	return vecs[0], nil
}
