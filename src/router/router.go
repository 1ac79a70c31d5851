// Package router selects a model backend for a task using a cheap static
// heuristic: long or explicitly complex tasks go to the deliberate backend,
// everything else to the fast one.
package router

import (
	"strings"
	"unicode/utf8"

	tiktoken "github.com/pkoukk/tiktoken-go"

	"github.com/Protocol-Lattice/go-assistant/src/models"
)

// Config holds the routing heuristic knobs. The threshold is configuration,
// not a constant buried in the selection logic.
type Config struct {
	// TokenThreshold is the task length, in encoder tokens (runes when no
	// encoding is available), above which the deliberate backend is chosen.
	TokenThreshold int
	// Keywords mark a task as complex regardless of length. Matched
	// case-insensitively as substrings.
	Keywords []string
	// Encoding names the tiktoken encoding used to measure task length.
	// Empty disables token counting and falls back to rune count.
	Encoding string
}

// DefaultConfig mirrors the routing policy we run in production.
func DefaultConfig() Config {
	return Config{
		TokenThreshold: 256,
		Keywords: []string{
			"architect", "refactor", "debug", "design",
			"migrate", "optimize", "security", "concurrency",
		},
		Encoding: "cl100k_base",
	}
}

// Router picks between a fast and a deliberate backend. Choose is a pure
// function of the task text; a Router has no mutable state.
type Router struct {
	fast       models.Model
	deliberate models.Model
	cfg        Config
	encoder    *tiktoken.Tiktoken
}

func New(fast, deliberate models.Model, cfg Config) *Router {
	if cfg.TokenThreshold <= 0 {
		cfg.TokenThreshold = DefaultConfig().TokenThreshold
	}
	r := &Router{fast: fast, deliberate: deliberate, cfg: cfg}
	if cfg.Encoding != "" {
		// Encoder load can fail offline; length falls back to rune count.
		if enc, err := tiktoken.GetEncoding(cfg.Encoding); err == nil {
			r.encoder = enc
		}
	}
	return r
}

// Choose returns the adapter for the task. It always returns a usable model.
func (r *Router) Choose(task string) models.Model {
	if r.taskLength(task) > r.cfg.TokenThreshold {
		return r.deliberate
	}
	lowered := strings.ToLower(task)
	for _, kw := range r.cfg.Keywords {
		if strings.Contains(lowered, kw) {
			return r.deliberate
		}
	}
	return r.fast
}

func (r *Router) taskLength(task string) int {
	if r.encoder != nil {
		return len(r.encoder.Encode(task, nil, nil))
	}
	return utf8.RuneCountInString(task)
}
