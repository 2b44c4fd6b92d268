package tools

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/jarvis-assistant/jarvis/internal/schema"
)

// ToolList holds a named set of tools and exposes them for LLM calls and
// runtime extension (MCP servers register into it while turns are running).
type ToolList struct {
	mu    sync.RWMutex
	tools map[string]schema.Tool
}

var _ schema.ToolRegistrar = (*ToolList)(nil)

func NewToolList(ts ...schema.Tool) *ToolList {
	list := &ToolList{tools: make(map[string]schema.Tool, len(ts))}
	for _, t := range ts {
		list.tools[t.Name()] = t
	}
	return list
}

// Get returns the tool with the given name, or nil if not found.
func (r *ToolList) Get(name string) schema.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// Add registers a new tool, replacing any existing tool with the same name.
func (r *ToolList) Add(t schema.Tool) schema.Tool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name()] = t
	return t
}

// Names returns the registered tool names in sorted order.
func (r *ToolList) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered tools.
func (r *ToolList) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Definitions returns all tool definitions in OpenAI function-calling format,
// sorted by name so requests are stable between turns.
func (r *ToolList) Definitions() []map[string]any {
	names := r.Names()

	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]map[string]any, 0, len(names))
	for _, name := range names {
		t, ok := r.tools[name]
		if !ok {
			continue
		}
		var params any
		if err := json.Unmarshal(t.Parameters(), &params); err != nil {
			params = map[string]any{"type": "object", "properties": map[string]any{}}
		}
		list = append(list, map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        t.Name(),
				"description": t.Description(),
				"parameters":  params,
			},
		})
	}
	return list
}
