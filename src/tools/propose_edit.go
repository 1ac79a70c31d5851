package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// ProposeEditTool computes a line-level diff between a workspace file and a
// proposed replacement. It is a dry run: the file is never written.
type ProposeEditTool struct {
	ws *Workspace
}

func NewProposeEditTool(ws *Workspace) *ProposeEditTool {
	return &ProposeEditTool{ws: ws}
}

func (t *ProposeEditTool) Spec() ToolSpec {
	return ToolSpec{
		Name:        "propose_edit",
		Description: "Diff the current content of a workspace file against proposed new content without writing anything.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"file": map[string]any{
					"type":        "string",
					"description": "Path of the file, relative to the workspace root.",
				},
				"new_content": map[string]any{
					"type":        "string",
					"description": "The proposed full content of the file.",
				},
			},
			"required": []string{"file", "new_content"},
		},
	}
}

func (t *ProposeEditTool) Invoke(_ context.Context, req ToolRequest) (ToolResponse, error) {
	rel, ok := stringArg(req, "file")
	if !ok {
		return ToolResponse{}, fmt.Errorf("missing or invalid 'file' argument")
	}
	newContent, ok := stringArg(req, "new_content")
	if !ok {
		// Some models emit the camel-cased key; accept it rather than fail.
		if newContent, ok = stringArg(req, "newContent"); !ok {
			return ToolResponse{}, fmt.Errorf("missing or invalid 'new_content' argument")
		}
	}

	path, err := t.ws.Resolve(rel)
	if err != nil {
		return ToolResponse{}, err
	}
	current, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return ToolResponse{}, fmt.Errorf("%w: %s", ErrNotFound, rel)
	}
	if err != nil {
		return ToolResponse{}, fmt.Errorf("read %s: %w", rel, err)
	}

	spans := LineDiff(string(current), newContent)
	payload, err := json.Marshal(struct {
		File    string `json:"file"`
		Changed bool   `json:"changed"`
		Diff    []Span `json:"diff"`
	}{File: rel, Changed: Changed(spans), Diff: spans})
	if err != nil {
		return ToolResponse{}, fmt.Errorf("encode diff: %w", err)
	}
	return ToolResponse{Content: string(payload)}, nil
}

var _ Tool = (*ProposeEditTool)(nil)
