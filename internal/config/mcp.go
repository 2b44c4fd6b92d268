package config

import (
	"os"
	"path/filepath"

	"github.com/jarvis-assistant/jarvis/internal/config/tool"
)

// Names of the MCP servers jarvis knows how to launch without extra config.
const (
	MCPFilesystem = "filesystem"
	MCPSpotify    = "spotify"
	MCPBrowser    = "browser"
)

// MCPServers returns every MCP server to connect: the built-in filesystem,
// spotify and browser servers (when enabled) plus tools.mcpServers. A
// user-defined entry with a built-in name replaces the built-in one.
func (c *Config) MCPServers() map[string]tool.MCPServerConfig {
	out := make(map[string]tool.MCPServerConfig, len(c.Tools.MCPServers)+3)

	if c.Tools.Filesystem.Enabled {
		out[MCPFilesystem] = tool.MCPServerConfig{
			Command: "npx",
			Args:    []string{"-y", "@modelcontextprotocol/server-filesystem", c.FilesystemRoot()},
		}
	}
	if p := c.SpotifyPath(); p != "" {
		out[MCPSpotify] = tool.MCPServerConfig{Command: "node", Args: []string{p}}
	}
	if c.Tools.Browser.Enabled {
		out[MCPBrowser] = tool.MCPServerConfig{
			Command: "npx",
			Args:    []string{"-y", "@modelcontextprotocol/server-puppeteer"},
		}
	}

	for name, srv := range c.Tools.MCPServers {
		out[name] = srv
	}
	return out
}

// FilesystemRoot is the directory exposed to the filesystem MCP server:
// tools.filesystem.root, else the current working directory.
func (c *Config) FilesystemRoot() string {
	root := c.Tools.Filesystem.Root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "."
		}
		return wd
	}
	root = expandHome(root)
	if abs, err := filepath.Abs(root); err == nil {
		return abs
	}
	return root
}

// SpotifyPath returns the Spotify MCP entry point, or "" when not configured.
func (c *Config) SpotifyPath() string {
	return expandHome(c.Tools.Spotify.Path)
}
