package tools

import (
	"encoding/json"
	"strings"
)

// ToolCall is a recognised structured invocation found in model output.
type ToolCall struct {
	Tool   string         `json:"tool"`
	Params map[string]any `json:"params"`
}

// Parser decides whether a buffered model response encodes a tool call.
// Malformed or unrecognised input is an expected case, never an error:
// Parse simply reports false. A response is either one tool call or plain
// conversational text; mixed output is not recognised.
type Parser struct {
	catalog *StaticCatalog
}

func NewParser(catalog *StaticCatalog) *Parser {
	return &Parser{catalog: catalog}
}

// Parse interprets text as a single JSON object with mandatory "tool" and
// "params" fields. Unknown top-level fields are ignored; an unknown tool
// name is rejected. Surrounding whitespace and a markdown code fence are
// tolerated, anything else is not.
func (p *Parser) Parse(text string) (ToolCall, bool) {
	body := stripFence(strings.TrimSpace(text))
	if body == "" || body[0] != '{' {
		return ToolCall{}, false
	}

	dec := json.NewDecoder(strings.NewReader(body))
	var raw struct {
		Tool   *string         `json:"tool"`
		Params json.RawMessage `json:"params"`
	}
	if err := dec.Decode(&raw); err != nil {
		return ToolCall{}, false
	}
	// Reject trailing content: the buffer must be exactly one object.
	if dec.More() {
		return ToolCall{}, false
	}
	if rest := body[dec.InputOffset():]; strings.TrimSpace(rest) != "" {
		return ToolCall{}, false
	}

	if raw.Tool == nil || len(raw.Params) == 0 {
		return ToolCall{}, false
	}
	var params map[string]any
	if err := json.Unmarshal(raw.Params, &params); err != nil || params == nil {
		return ToolCall{}, false
	}
	if p.catalog == nil || !p.catalog.Has(*raw.Tool) {
		return ToolCall{}, false
	}
	return ToolCall{Tool: *raw.Tool, Params: params}, true
}

// stripFence removes a single surrounding markdown code fence, with or
// without a language tag.
func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	rest := strings.TrimPrefix(s, "```")
	if idx := strings.IndexByte(rest, '\n'); idx >= 0 {
		rest = rest[idx+1:]
	}
	rest = strings.TrimSpace(rest)
	rest = strings.TrimSuffix(rest, "```")
	return strings.TrimSpace(rest)
}
