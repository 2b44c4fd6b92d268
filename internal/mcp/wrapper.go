package mcp

import (
	"context"
	"encoding/json"

	"github.com/jarvis-assistant/jarvis/internal/schema"
)

// remoteTool exposes one tool of an MCP server as a schema.Tool.
type remoteTool struct {
	client      *client
	name        string // mcp_<server>_<tool>
	remoteName  string
	description string
	parameters  json.RawMessage
}

var _ schema.Tool = (*remoteTool)(nil)

func newRemoteTool(c *client, def toolDef) *remoteTool {
	params := def.InputSchema
	if len(params) == 0 || string(params) == "null" {
		params = json.RawMessage(`{"type":"object","properties":{}}`)
	}
	desc := def.Description
	if desc == "" {
		desc = def.Name + " (from " + c.name + ")"
	}
	return &remoteTool{
		client:      c,
		name:        ToolName(c.name, def.Name),
		remoteName:  def.Name,
		description: desc,
		parameters:  params,
	}
}

// ToolName is the name under which a server's tool is registered.
func ToolName(server, tool string) string { return "mcp_" + server + "_" + tool }

func (t *remoteTool) Name() string                { return t.name }
func (t *remoteTool) Description() string         { return t.description }
func (t *remoteTool) Parameters() json.RawMessage { return t.parameters }

func (t *remoteTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	return t.client.callTool(ctx, t.remoteName, params)
}
