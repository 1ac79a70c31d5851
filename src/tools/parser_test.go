package tools

import "testing"

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	ws := newTestWorkspace(t)
	catalog := NewStaticCatalog([]Tool{NewReadFileTool(ws), NewProposeEditTool(ws)})
	return NewParser(catalog)
}

func TestParseRecognisesToolCall(t *testing.T) {
	p := newTestParser(t)
	call, ok := p.Parse(`{"tool":"read_file","params":{"file":"README.md"}}`)
	if !ok {
		t.Fatalf("expected a recognised tool call")
	}
	if call.Tool != "read_file" {
		t.Fatalf("unexpected tool: %q", call.Tool)
	}
	if call.Params["file"] != "README.md" {
		t.Fatalf("unexpected params: %v", call.Params)
	}
}

func TestParseToleratesCodeFence(t *testing.T) {
	p := newTestParser(t)
	text := "```json\n{\"tool\":\"read_file\",\"params\":{\"file\":\"README.md\"}}\n```"
	if _, ok := p.Parse(text); !ok {
		t.Fatalf("fenced tool call should be recognised")
	}
}

func TestParseIgnoresUnknownTopLevelFields(t *testing.T) {
	p := newTestParser(t)
	text := `{"tool":"read_file","params":{"file":"README.md"},"confidence":0.9}`
	if _, ok := p.Parse(text); !ok {
		t.Fatalf("unknown top-level fields should be ignored")
	}
}

func TestParseNeverRaises(t *testing.T) {
	p := newTestParser(t)
	bad := []string{
		"",
		"hello there",
		"{not json",
		`{"tool":"read_file"}`,
		`{"params":{"file":"x"}}`,
		`{"tool":"rm_rf","params":{"path":"/"}}`,
		`{"tool":"read_file","params":null}`,
		`{"tool":"read_file","params":{"file":"x"}} trailing prose`,
		`I will call {"tool":"read_file","params":{"file":"x"}}`,
		`[{"tool":"read_file","params":{}}]`,
	}
	for _, text := range bad {
		if _, ok := p.Parse(text); ok {
			t.Fatalf("Parse(%q) unexpectedly recognised a call", text)
		}
	}
}
