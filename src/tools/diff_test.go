package tools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLineDiffIdenticalContentIsEmpty(t *testing.T) {
	text := "line one\nline two\n"
	spans := LineDiff(text, text)
	if Changed(spans) {
		t.Fatalf("identical content produced changes: %+v", spans)
	}
}

func TestLineDiffDetectsAddedAndRemoved(t *testing.T) {
	spans := LineDiff("a\nb\nc\n", "a\nB\nc\nd\n")
	var added, removed []string
	for _, s := range spans {
		switch s.Op {
		case SpanAdded:
			added = append(added, s.Lines...)
		case SpanRemoved:
			removed = append(removed, s.Lines...)
		}
	}
	if len(added) == 0 || len(removed) == 0 {
		t.Fatalf("expected both added and removed spans, got %+v", spans)
	}
	if !contains(added, "d") {
		t.Fatalf("added lines %v missing %q", added, "d")
	}
	if !contains(removed, "b") {
		t.Fatalf("removed lines %v missing %q", removed, "b")
	}
}

func TestProposeEditRoundTrip(t *testing.T) {
	ws := newTestWorkspace(t)
	tool := NewProposeEditTool(ws)

	current, err := os.ReadFile(filepath.Join(ws.Root(), "README.md"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}

	resp, err := tool.Invoke(context.Background(), ToolRequest{Arguments: map[string]any{
		"file":        "README.md",
		"new_content": string(current),
	}})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}

	var decoded struct {
		Changed bool   `json:"changed"`
		Diff    []Span `json:"diff"`
	}
	if err := json.Unmarshal([]byte(resp.Content), &decoded); err != nil {
		t.Fatalf("decode diff payload: %v", err)
	}
	if decoded.Changed {
		t.Fatalf("identical content reported as changed: %s", resp.Content)
	}
}

func TestProposeEditDoesNotWrite(t *testing.T) {
	ws := newTestWorkspace(t)
	tool := NewProposeEditTool(ws)

	if _, err := tool.Invoke(context.Background(), ToolRequest{Arguments: map[string]any{
		"file":        "README.md",
		"new_content": "entirely new\n",
	}}); err != nil {
		t.Fatalf("Invoke: %v", err)
	}

	after, err := os.ReadFile(filepath.Join(ws.Root(), "README.md"))
	if err != nil {
		t.Fatalf("read after: %v", err)
	}
	if string(after) != "# readme\nhello\n" {
		t.Fatalf("file was mutated: %q", after)
	}
}

func contains(ss []string, want string) bool {
	for _, s := range ss {
		if s == want {
			return true
		}
	}
	return false
}
