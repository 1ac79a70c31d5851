package assistant

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/Protocol-Lattice/go-assistant/src/models"
	"github.com/Protocol-Lattice/go-assistant/src/tools"
)

// ModelChooser selects a backend for one task. Router satisfies it.
type ModelChooser interface {
	Choose(task string) models.Model
}

// Loop drives one model call: forward fragments as token events while
// buffering them, then inspect the buffer for a tool call, then emit a
// terminal event. Single shot, never restarted.
type Loop struct {
	chooser ModelChooser
	catalog *tools.StaticCatalog
	parser  *tools.Parser
	logger  *slog.Logger
}

func NewLoop(chooser ModelChooser, catalog *tools.StaticCatalog, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		chooser: chooser,
		catalog: catalog,
		parser:  tools.NewParser(catalog),
		logger:  logger,
	}
}

// Run streams events for one prompt. The returned channel is closed
// after the terminal event. On cancellation the loop stops reading from
// the backend and closes the channel without emitting further events.
func (l *Loop) Run(ctx context.Context, prompt models.Prompt, task string) (<-chan Event, error) {
	model := l.chooser.Choose(task)
	stream, err := model.Stream(ctx, prompt)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("model selected", "backend", model.Name())

	out := make(chan Event)
	go func() {
		defer close(out)
		var buffer string
		for {
			select {
			case <-ctx.Done():
				return
			case chunk, ok := <-stream:
				if !ok {
					// Stream closed without a terminal chunk;
					// treat the buffer as final.
					l.finish(ctx, out, buffer)
					return
				}
				if chunk.Err != nil {
					if ctx.Err() != nil {
						return
					}
					l.logger.Warn("backend failed", "backend", model.Name(), "error", chunk.Err)
					l.emit(ctx, out, Event{Type: EventError, Err: chunk.Err})
					return
				}
				if chunk.Done {
					if chunk.FullText != "" {
						buffer = chunk.FullText
					}
					l.finish(ctx, out, buffer)
					return
				}
				buffer += chunk.Delta
				if !l.emit(ctx, out, Event{Type: EventToken, Content: chunk.Delta}) {
					return
				}
			}
		}
	}()
	return out, nil
}

// finish runs tool-call detection over the buffered text and emits the
// trailing tool event (if any) and the single done event.
func (l *Loop) finish(ctx context.Context, out chan<- Event, buffer string) {
	if ctx.Err() != nil {
		return
	}
	if call, ok := l.parser.Parse(buffer); ok {
		content := l.execute(ctx, call)
		if !l.emit(ctx, out, Event{Type: EventTool, Content: content}) {
			return
		}
	}
	l.emit(ctx, out, Event{Type: EventDone})
}

// execute invokes the named tool. Failures are reported as the tool
// result's content rather than aborting the run.
func (l *Loop) execute(ctx context.Context, call tools.ToolCall) string {
	tool, _, ok := l.catalog.Lookup(call.Tool)
	if !ok {
		// Parse already checked the catalog; this covers a racing
		// registry change.
		return toolFailure(call.Tool, "unknown tool")
	}
	resp, err := tool.Invoke(ctx, tools.ToolRequest{Arguments: call.Params})
	if err != nil {
		l.logger.Warn("tool failed", "tool", call.Tool, "error", err)
		return toolFailure(call.Tool, err.Error())
	}
	return resp.Content
}

func toolFailure(tool, msg string) string {
	payload, _ := json.Marshal(map[string]string{"tool": tool, "error": msg})
	return string(payload)
}

// emit sends one event unless the context is done. It reports whether
// the loop may continue.
func (l *Loop) emit(ctx context.Context, out chan<- Event, ev Event) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
