// Package config defines the configuration schema for jarvis.
//
// JSON keys use camelCase. The file lives at ~/.jarvis/config.json; every
// section falls back to its defaults when omitted.
package config

import (
	"os"
	"path/filepath"

	"github.com/jarvis-assistant/jarvis/internal/config/agent"
	"github.com/jarvis-assistant/jarvis/internal/config/provider"
	"github.com/jarvis-assistant/jarvis/internal/config/server"
	"github.com/jarvis-assistant/jarvis/internal/config/session"
	"github.com/jarvis-assistant/jarvis/internal/config/tool"
)

// Config is the root configuration object.
type Config struct {
	Agents    agent.AgentsConfig       `json:"agents"`
	Providers provider.ProvidersConfig `json:"providers"`
	Server    server.ServerConfig      `json:"server"`
	Sessions  session.SessionConfig    `json:"sessions"`
	Tools     tool.ToolsConfig         `json:"tools"`
}

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() Config {
	return Config{
		Agents:    agent.DefaultAgentsConfig(),
		Providers: provider.DefaultProvidersConfig(),
		Server:    server.DefaultServerConfig(),
		Sessions:  session.DefaultSessionConfig(),
		Tools:     tool.DefaultToolConfigs(),
	}
}

// WorkspacePath returns the expanded absolute path to the agent workspace.
func (c *Config) WorkspacePath() string {
	ws := c.Agents.Defaults.Workspace
	if ws == "" {
		ws = "~/.jarvis/workspace"
	}
	return expandHome(ws)
}

// ProfilePath returns the agent profile path, resolved against the workspace.
func (c *Config) ProfilePath() string {
	p := c.Agents.Defaults.Profile
	if p == "" {
		p = "AGENT.yaml"
	}
	p = expandHome(p)
	if !filepath.IsAbs(p) {
		p = filepath.Join(c.WorkspacePath(), p)
	}
	return p
}

// CalendarPath returns the calendar store path.
func (c *Config) CalendarPath() string {
	if c.Tools.Calendar.Path != "" {
		return expandHome(c.Tools.Calendar.Path)
	}
	return filepath.Join(DataDir(), "calendar", "events.json")
}

// ProviderByName returns a pointer to the ProviderConfig field matching the
// given registry name (e.g. "gemini", "openrouter"). Returns nil if unknown.
func (c *Config) ProviderByName(name string) *provider.ProviderConfig {
	return c.Providers.ByName(name)
}

func expandHome(p string) string {
	if len(p) >= 2 && p[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return p
}
