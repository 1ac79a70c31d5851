// Package tools holds the fixed operations a model may invoke by name,
// the registry that resolves those names, and the parser that recognises
// tool calls in model output.
package tools

import "context"

// ToolSpec describes a tool to the model and to schema-aware clients.
type ToolSpec struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// ToolRequest carries the structured parameters of one invocation.
type ToolRequest struct {
	Arguments map[string]any
}

// ToolResponse is the serialized result of one invocation.
type ToolResponse struct {
	Content string
}

// Tool is a named operation invocable with structured parameters.
type Tool interface {
	Spec() ToolSpec
	Invoke(ctx context.Context, req ToolRequest) (ToolResponse, error)
}

func stringArg(req ToolRequest, key string) (string, bool) {
	v, ok := req.Arguments[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
