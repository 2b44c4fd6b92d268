package tool

// WebFetchConfig configures the web_fetch tool.
type WebFetchConfig struct {
	MaxChars int `json:"maxChars"`
}

func DefaultWebFetchConfig() WebFetchConfig {
	return WebFetchConfig{MaxChars: 50000}
}

// WebToolsConfig groups web-related tool settings.
type WebToolsConfig struct {
	Fetch WebFetchConfig `json:"fetch"`
}

func DefaultWebToolsConfig() WebToolsConfig {
	return WebToolsConfig{Fetch: DefaultWebFetchConfig()}
}
