// Package mcp connects to Model Context Protocol servers (stdio subprocesses
// or HTTP endpoints) and exposes their tools to the agent.
package mcp

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	toolcfg "github.com/jarvis-assistant/jarvis/internal/config/tool"
	"github.com/jarvis-assistant/jarvis/internal/schema"
)

// ServerStatus describes one configured server after ConnectOnce.
type ServerStatus struct {
	Name      string
	Connected bool
	Tools     int
	Err       string
}

// Manager owns the lifecycle of all MCP server connections.
type Manager struct {
	servers map[string]toolcfg.MCPServerConfig
	once    sync.Once

	mu      sync.Mutex
	clients []*client
	status  map[string]ServerStatus
}

// NewManager returns a Manager configured with the given MCP servers.
func NewManager(servers map[string]toolcfg.MCPServerConfig) *Manager {
	return &Manager{servers: servers, status: make(map[string]ServerStatus)}
}

// ConnectOnce connects to all configured servers in parallel and registers
// their tools into ts. Only the first call does any work. A server that
// fails to start is logged and skipped.
func (m *Manager) ConnectOnce(ctx context.Context, ts schema.ToolRegistrar) {
	m.once.Do(func() {
		var g errgroup.Group
		for name, cfg := range m.servers {
			name, cfg := name, cfg
			g.Go(func() error {
				m.connectOne(ctx, name, cfg, ts)
				return nil
			})
		}
		_ = g.Wait()
	})
}

func (m *Manager) connectOne(ctx context.Context, name string, cfg toolcfg.MCPServerConfig, ts schema.ToolRegistrar) {
	c := newClient(name, cfg)
	if err := c.connect(ctx); err != nil {
		slog.Error("MCP server connect failed", "server", name, "err", err)
		m.setStatus(ServerStatus{Name: name, Err: err.Error()})
		return
	}

	defs, err := c.listTools(ctx)
	if err != nil {
		slog.Error("MCP server list_tools failed", "server", name, "err", err)
		c.close()
		m.setStatus(ServerStatus{Name: name, Err: err.Error()})
		return
	}

	n := 0
	for _, def := range defs {
		if def.Name == "" {
			continue
		}
		t := ts.Add(newRemoteTool(c, def))
		slog.Debug("MCP tool registered", "server", name, "tool", t.Name())
		n++
	}
	slog.Info("MCP server connected", "server", name, "tools", n)

	m.mu.Lock()
	m.clients = append(m.clients, c)
	m.mu.Unlock()
	m.setStatus(ServerStatus{Name: name, Connected: true, Tools: n})
}

func (m *Manager) setStatus(s ServerStatus) {
	m.mu.Lock()
	m.status[s.Name] = s
	m.mu.Unlock()
}

// Status reports every configured server, sorted by name. Servers not yet
// attempted are reported as not connected.
func (m *Manager) Status() []ServerStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]ServerStatus, 0, len(m.servers))
	for name := range m.servers {
		s, ok := m.status[name]
		if !ok {
			s = ServerStatus{Name: name}
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Close stops all subprocess-based servers.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.clients {
		c.close()
	}
	m.clients = nil
}
