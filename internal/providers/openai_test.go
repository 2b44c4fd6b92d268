package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jarvis-assistant/jarvis/internal/schema"
)

type capturedRequest struct {
	Model    string           `json:"model"`
	Messages []map[string]any `json:"messages"`
	Tools    []map[string]any `json:"tools"`
}

func newChatServer(t *testing.T, reply map[string]any, got *capturedRequest, headers *http.Header) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		if headers != nil {
			*headers = r.Header.Clone()
		}
		if got != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(reply)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestChat_TextReply(t *testing.T) {
	var req capturedRequest
	var hdr http.Header
	srv := newChatServer(t, map[string]any{
		"id": "c1",
		"choices": []any{map[string]any{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": "<think>easy</think>Hello!"},
		}},
		"usage": map[string]any{"prompt_tokens": 7, "completion_tokens": 3, "total_tokens": 10},
	}, &req, &hdr)

	p := NewOpenAIProvider("k", srv.URL, "gemini/gemini-2.5-flash", "gemini", map[string]string{"X-Test": "yes"})

	msgs := schema.NewMessages()
	msgs.AddSystem("be brief")
	msgs.AddUser("hi")
	resp, err := p.Chat(context.Background(), msgs, nil, schema.NewChatOptions(p.DefaultModel(), 256, 0.2))
	require.NoError(t, err)

	assert.Equal(t, "<think>easy</think>Hello!", resp.Content)
	assert.Equal(t, "stop", resp.FinishReason)
	assert.False(t, resp.HasToolCalls())
	assert.Equal(t, 7, resp.Usage["input_tokens"])

	assert.Equal(t, "gemini-2.5-flash", req.Model, "provider prefix must be stripped")
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0]["role"])
	assert.Equal(t, "yes", hdr.Get("X-Test"))
	assert.Equal(t, "Bearer k", hdr.Get("Authorization"))
}

func TestChat_ToolCalls(t *testing.T) {
	var req capturedRequest
	srv := newChatServer(t, map[string]any{
		"choices": []any{map[string]any{
			"finish_reason": "tool_calls",
			"message": map[string]any{
				"role": "assistant",
				"tool_calls": []any{map[string]any{
					"id":   "call_1",
					"type": "function",
					"function": map[string]any{
						"name":      "list_events",
						"arguments": `{"date":"2026-10-19"}}`,
					},
				}},
			},
		}},
	}, &req, nil)

	p := NewOpenAIProvider("k", srv.URL, "openai/gpt-4o-mini", "openai", nil)
	tools := []map[string]any{{
		"type": "function",
		"function": map[string]any{
			"name":        "list_events",
			"description": "List calendar events",
			"parameters":  map[string]any{"type": "object", "properties": map[string]any{}},
		},
	}}

	msgs := schema.NewMessages()
	msgs.AddUser("what's on today?")
	resp, err := p.Chat(context.Background(), msgs, tools, schema.NewChatOptions("", 0, 0))
	require.NoError(t, err)

	require.True(t, resp.HasToolCalls())
	assert.Equal(t, "call_1", resp.ToolCalls[0].ID)
	assert.Equal(t, "list_events", resp.ToolCalls[0].Name)
	assert.Equal(t, "2026-10-19", resp.ToolCalls[0].Arguments["date"])

	require.Len(t, req.Tools, 1)
	fn := req.Tools[0]["function"].(map[string]any)
	assert.Equal(t, "list_events", fn["name"])
	assert.Equal(t, "gpt-4o-mini", req.Model)
}

func TestChat_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider("k", srv.URL, "gpt-4o-mini", "openai", nil)
	msgs := schema.NewMessages()
	msgs.AddUser("hi")
	_, err := p.Chat(context.Background(), msgs, nil, schema.NewChatOptions("", 0, 0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
}

func TestResolveModel_Gateway(t *testing.T) {
	p := NewOpenAIProvider("sk-or-abc", "", "anthropic/claude-sonnet", "", nil)
	assert.Equal(t, "https://openrouter.ai/api/v1", p.APIBase())
	assert.Equal(t, "anthropic/claude-sonnet", p.resolveModel("anthropic/claude-sonnet"))
	assert.Equal(t, "google/gemini-2.5-flash", p.resolveModel("openrouter/google/gemini-2.5-flash"))
}

func TestRepairJSON(t *testing.T) {
	out, err := repairJSON(`{"a":1}`)
	require.NoError(t, err)
	assert.Equal(t, float64(1), out["a"])

	out, err = repairJSON(`{"a":"x"`)
	require.NoError(t, err)
	assert.Equal(t, "x", out["a"])

	out, err = repairJSON("")
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = repairJSON("not json")
	assert.Error(t, err)
}
