package tool

// CalendarConfig configures the local calendar store.
type CalendarConfig struct {
	// Path of the JSON store; empty means <dataDir>/calendar/events.json.
	Path string `json:"path"`
}

// ToolsConfig groups all tool-level settings.
type ToolsConfig struct {
	Web                 WebToolsConfig             `json:"web"`
	Calendar            CalendarConfig             `json:"calendar"`
	Filesystem          FilesystemConfig           `json:"filesystem"`
	Spotify             SpotifyConfig              `json:"spotify"`
	Browser             BrowserConfig              `json:"browser"`
	RestrictToWorkspace bool                       `json:"restrictToWorkspace"`
	MCPServers          map[string]MCPServerConfig `json:"mcpServers"`
}

func DefaultToolConfigs() ToolsConfig {
	return ToolsConfig{
		Web:                 DefaultWebToolsConfig(),
		Filesystem:          FilesystemConfig{Enabled: true},
		RestrictToWorkspace: true,
		MCPServers:          map[string]MCPServerConfig{},
	}
}
