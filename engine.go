package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/Protocol-Lattice/go-assistant/src/audit"
	"github.com/Protocol-Lattice/go-assistant/src/models"
)

// ContextSearcher resolves workspace context for a query. The memory
// Retriever satisfies it.
type ContextSearcher interface {
	Search(ctx context.Context, query string) (string, error)
}

const defaultSystemPrompt = "You are a coding assistant working inside the user's repository. " +
	"Answer with plain text, or invoke a tool by replying with a single JSON object " +
	`of the form {"tool": "<name>", "params": {...}}.`

// Engine composes retrieval, the agent loop, auditing and usage
// accounting into the full request pipeline.
type Engine struct {
	loop      *Loop
	retriever ContextSearcher
	sink      audit.Sink
	usage     *Counters
	system    string
	logger    *slog.Logger
}

type EngineOption func(*Engine)

func WithSystemPrompt(s string) EngineOption {
	return func(e *Engine) { e.system = s }
}

func WithAudit(sink audit.Sink) EngineOption {
	return func(e *Engine) { e.sink = sink }
}

func WithUsage(c *Counters) EngineOption {
	return func(e *Engine) { e.usage = c }
}

func NewEngine(loop *Loop, retriever ContextSearcher, logger *slog.Logger, opts ...EngineOption) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		loop:      loop,
		retriever: retriever,
		sink:      audit.NopSink{},
		system:    defaultSystemPrompt,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run validates input, resolves retrieval context, and streams the
// loop's events back to the caller, auditing each one.
func (e *Engine) Run(ctx context.Context, in Input) (<-chan Event, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.SessionID == "" {
		in.SessionID = uuid.NewString()
	}
	e.sink.Record(ctx, audit.NewEvent("request", in.SessionID, map[string]any{
		"message_len": len(in.UserMessage),
		"files":       len(in.Files),
	}))
	if e.usage != nil {
		e.usage.Add(in.SessionID, 1)
	}

	prompt := models.Prompt{
		System: e.buildSystem(ctx, in),
		User:   in.UserMessage,
	}
	events, err := e.loop.Run(ctx, prompt, in.UserMessage)
	if err != nil {
		e.sink.Record(ctx, audit.NewEvent("request_failed", in.SessionID, map[string]any{
			"error": err.Error(),
		}))
		return nil, err
	}

	out := make(chan Event)
	go func() {
		defer close(out)
		for ev := range events {
			e.sink.Record(ctx, audit.NewEvent("response_chunk", in.SessionID, map[string]any{
				"event": string(ev.Type),
			}))
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// buildSystem merges the base prompt with retrieval context and any
// files attached to the request. Retrieval failure degrades to an
// empty context rather than failing the request.
func (e *Engine) buildSystem(ctx context.Context, in Input) string {
	var sb strings.Builder
	sb.WriteString(e.system)

	if e.retriever != nil {
		passages, err := e.retriever.Search(ctx, in.UserMessage)
		if err != nil {
			e.logger.Warn("retrieval degraded", "session_id", in.SessionID, "error", err)
		} else if passages != "" {
			sb.WriteString("\n\nRelevant workspace context:\n")
			sb.WriteString(passages)
		}
	}
	for _, f := range in.Files {
		fmt.Fprintf(&sb, "\n\nFile %s:\n%s", f.Path, f.Content)
	}
	return sb.String()
}
