package tools

import (
	"context"
	"fmt"
	"os"
)

// ReadFileTool returns the raw text of a file inside the workspace.
type ReadFileTool struct {
	ws *Workspace
}

func NewReadFileTool(ws *Workspace) *ReadFileTool {
	return &ReadFileTool{ws: ws}
}

func (t *ReadFileTool) Spec() ToolSpec {
	return ToolSpec{
		Name:        "read_file",
		Description: "Read a file from the workspace and return its raw text.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"file": map[string]any{
					"type":        "string",
					"description": "Path of the file, relative to the workspace root.",
				},
			},
			"required": []string{"file"},
		},
	}
}

func (t *ReadFileTool) Invoke(_ context.Context, req ToolRequest) (ToolResponse, error) {
	rel, ok := stringArg(req, "file")
	if !ok {
		return ToolResponse{}, fmt.Errorf("missing or invalid 'file' argument")
	}
	path, err := t.ws.Resolve(rel)
	if err != nil {
		return ToolResponse{}, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return ToolResponse{}, fmt.Errorf("%w: %s", ErrNotFound, rel)
	}
	if err != nil {
		return ToolResponse{}, fmt.Errorf("read %s: %w", rel, err)
	}
	return ToolResponse{Content: string(data)}, nil
}

var _ Tool = (*ReadFileTool)(nil)
