// Package schema holds the contracts shared between the agent runtime, the
// LLM providers and the tools.
package schema

import (
	"context"
	"encoding/json"
)

// Tool is the interface all LLM-callable tools must satisfy.
// Built-in tools and MCP-wrapped tools both implement this interface.
type Tool interface {
	Name() string
	Description() string
	// Parameters returns the JSON Schema (as raw JSON bytes) for this tool's parameters.
	Parameters() json.RawMessage
	Execute(ctx context.Context, params map[string]any) (string, error)
}

// ToolRegistrar accepts tools discovered at runtime (MCP servers).
type ToolRegistrar interface {
	Add(t Tool) Tool
}
