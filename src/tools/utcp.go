package tools

import (
	"context"
	"encoding/json"
	"fmt"

	utcp "github.com/universal-tool-calling-protocol/go-utcp"
)

// UTCPTool exposes a tool discovered through a UTCP client as a regular
// catalog entry, so remotely provided operations sit behind the same
// registry contract as the built-in ones.
type UTCPTool struct {
	client utcp.UtcpClientInterface
	spec   ToolSpec
}

func (t *UTCPTool) Spec() ToolSpec { return t.spec }

func (t *UTCPTool) Invoke(ctx context.Context, req ToolRequest) (ToolResponse, error) {
	result, err := t.client.CallTool(ctx, t.spec.Name, req.Arguments)
	if err != nil {
		return ToolResponse{}, fmt.Errorf("utcp call %s: %w", t.spec.Name, err)
	}
	switch v := result.(type) {
	case string:
		return ToolResponse{Content: v}, nil
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return ToolResponse{}, fmt.Errorf("encode utcp result: %w", err)
		}
		return ToolResponse{Content: string(encoded)}, nil
	}
}

// DiscoverUTCPTools searches the client's registered providers and wraps
// each discovered tool. The query may be empty to list everything.
func DiscoverUTCPTools(client utcp.UtcpClientInterface, query string, limit int) ([]Tool, error) {
	if client == nil {
		return nil, fmt.Errorf("utcp client is nil")
	}
	discovered, err := client.SearchTools(query, limit)
	if err != nil {
		return nil, fmt.Errorf("utcp search: %w", err)
	}
	wrapped := make([]Tool, 0, len(discovered))
	for _, d := range discovered {
		wrapped = append(wrapped, &UTCPTool{
			client: client,
			spec: ToolSpec{
				Name:        d.Name,
				Description: d.Description,
			},
		})
	}
	return wrapped, nil
}

var _ Tool = (*UTCPTool)(nil)
