package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	toolcfg "github.com/jarvis-assistant/jarvis/internal/config/tool"
	"github.com/jarvis-assistant/jarvis/internal/schema"
)

type collector struct {
	mu    sync.Mutex
	tools map[string]schema.Tool
}

func (c *collector) Add(t schema.Tool) schema.Tool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tools == nil {
		c.tools = map[string]schema.Tool{}
	}
	c.tools[t.Name()] = t
	return t
}

// fakeServer is a minimal streamable-HTTP MCP server exposing a spotify
// style "play" tool.
func fakeServer(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var (
		mu      sync.Mutex
		methods []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     *int64          `json:"id"`
			Method string          `json:"method"`
			Params json.RawMessage `json:"params"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		mu.Lock()
		methods = append(methods, req.Method)
		mu.Unlock()

		if req.Method != "initialize" {
			assert.Equal(t, "sess-1", r.Header.Get(sessionHeader))
		}
		assert.Equal(t, "secret", r.Header.Get("X-Token"))

		if req.ID == nil {
			w.WriteHeader(http.StatusAccepted)
			return
		}

		var result any
		switch req.Method {
		case "initialize":
			w.Header().Set(sessionHeader, "sess-1")
			result = map[string]any{"protocolVersion": protocolVersion, "capabilities": map[string]any{}}
		case "tools/list":
			result = map[string]any{"tools": []any{
				map[string]any{
					"name":        "play",
					"description": "Play a track",
					"inputSchema": map[string]any{"type": "object", "properties": map[string]any{"query": map[string]any{"type": "string"}}},
				},
				map[string]any{"name": "pause"},
			}}
		case "tools/call":
			var p struct {
				Name      string         `json:"name"`
				Arguments map[string]any `json:"arguments"`
			}
			assert.NoError(t, json.Unmarshal(req.Params, &p))
			if p.Name == "pause" {
				result = map[string]any{"isError": true, "content": []any{map[string]any{"type": "text", "text": "nothing playing"}}}
				break
			}
			result = map[string]any{"content": []any{
				map[string]any{"type": "text", "text": "Playing " + p.Arguments["query"].(string)},
			}}
		default:
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"jsonrpc": "2.0", "id": *req.ID,
				"error": map[string]any{"code": -32601, "message": "method not found"},
			})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": *req.ID, "result": result})
	}))
	t.Cleanup(srv.Close)
	return srv, &methods
}

func TestConnectOnce_HTTPServer(t *testing.T) {
	srv, methods := fakeServer(t)
	m := NewManager(map[string]toolcfg.MCPServerConfig{
		"spotify": {URL: srv.URL, Headers: map[string]string{"X-Token": "secret"}},
	})
	defer m.Close()

	reg := &collector{}
	m.ConnectOnce(context.Background(), reg)
	m.ConnectOnce(context.Background(), reg)

	require.Len(t, reg.tools, 2)
	play := reg.tools["mcp_spotify_play"]
	require.NotNil(t, play)
	assert.Equal(t, "Play a track", play.Description())
	assert.JSONEq(t, `{"type":"object","properties":{}}`, string(reg.tools["mcp_spotify_pause"].Parameters()))

	out, err := play.Execute(context.Background(), map[string]any{"query": "Bohemian Rhapsody"})
	require.NoError(t, err)
	assert.Equal(t, "Playing Bohemian Rhapsody", out)

	out, err = reg.tools["mcp_spotify_pause"].Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Error: nothing playing", out)

	assert.Equal(t, []string{"initialize", "notifications/initialized", "tools/list", "tools/call", "tools/call"}, *methods)

	status := m.Status()
	require.Len(t, status, 1)
	assert.True(t, status[0].Connected)
	assert.Equal(t, 2, status[0].Tools)
}

func TestConnectOnce_BadServerIsSkipped(t *testing.T) {
	m := NewManager(map[string]toolcfg.MCPServerConfig{
		"broken": {},
	})
	reg := &collector{}
	m.ConnectOnce(context.Background(), reg)

	assert.Empty(t, reg.tools)
	status := m.Status()
	require.Len(t, status, 1)
	assert.False(t, status[0].Connected)
	assert.Contains(t, status[0].Err, "no command or url")
}

func TestCall_RPCError(t *testing.T) {
	srv, _ := fakeServer(t)
	c := newClient("x", toolcfg.MCPServerConfig{URL: srv.URL, Headers: map[string]string{"X-Token": "secret"}})
	require.NoError(t, c.connect(context.Background()))

	_, err := c.call(context.Background(), "resources/list", nil)
	var rpcErr *RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, -32601, rpcErr.Code)
}
