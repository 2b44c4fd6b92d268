package tool

// MCPServerConfig describes one MCP server connection (stdio or HTTP).
type MCPServerConfig struct {
	Command string            `json:"command,omitempty"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
	URL     string            `json:"url,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

// FilesystemConfig configures the filesystem MCP server.
type FilesystemConfig struct {
	Enabled bool `json:"enabled"`
	// Root is the directory exposed to the server. Empty means the working directory.
	Root string `json:"root"`
}

// SpotifyConfig configures the Spotify MCP server (a local Node build).
type SpotifyConfig struct {
	// Path is the server entry point passed to node; SPOTIFY_MCP_PATH overrides it.
	Path string `json:"path"`
}

// BrowserConfig configures the puppeteer MCP server.
type BrowserConfig struct {
	Enabled bool `json:"enabled"`
}
