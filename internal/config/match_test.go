package config

import (
	"testing"

	"github.com/jarvis-assistant/jarvis/internal/config/tool"
)

func TestMatchProvider_PrefixWins(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Providers.Gemini.APIKey = "g"
	cfg.Providers.OpenAI.APIKey = "o"

	if got := cfg.GetProviderName("openai/gpt-4o-mini"); got != "openai" {
		t.Errorf("provider = %q, want openai", got)
	}
	if got := cfg.GetProviderName("gemini/gemini-2.5-flash"); got != "gemini" {
		t.Errorf("provider = %q, want gemini", got)
	}
}

func TestMatchProvider_KeywordAndFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Providers.OpenRouter.APIKey = "sk-or-xyz"

	// No gemini key: falls back to the first configured provider.
	if got := cfg.GetProviderName("gemini-2.5-flash"); got != "openrouter" {
		t.Errorf("provider = %q, want openrouter", got)
	}
	if got := cfg.GetAPIBase("gemini-2.5-flash"); got != "https://openrouter.ai/api/v1" {
		t.Errorf("api base = %q", got)
	}
}

func TestMatchProvider_NoneConfigured(t *testing.T) {
	cfg := DefaultConfig()
	if m := cfg.MatchProvider(""); m.Provider != nil || m.Name != "" {
		t.Errorf("expected empty match, got %+v", m)
	}
}

func TestMatchProvider_CustomEndpointWithoutKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Providers.Custom.APIBase = "http://localhost:11434/v1"

	params := cfg.ProviderParams()
	if params.ProviderName != "custom" {
		t.Errorf("provider = %q, want custom", params.ProviderName)
	}
	if params.APIBase != "http://localhost:11434/v1" {
		t.Errorf("api base = %q", params.APIBase)
	}
	if params.DefaultModel != cfg.Agents.Defaults.Model {
		t.Errorf("model = %q", params.DefaultModel)
	}
}

func TestMCPServers_BuiltinsAndOverrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tools.Filesystem.Root = t.TempDir()
	cfg.Tools.Spotify.Path = "/srv/spotify/index.js"
	cfg.Tools.MCPServers["browser"] = tool.MCPServerConfig{URL: "http://localhost:3000/mcp"}

	servers := cfg.MCPServers()

	fs, ok := servers[MCPFilesystem]
	if !ok {
		t.Fatal("filesystem server missing")
	}
	if last := fs.Args[len(fs.Args)-1]; last != cfg.Tools.Filesystem.Root {
		t.Errorf("filesystem root arg = %q", last)
	}
	if sp := servers[MCPSpotify]; sp.Command != "node" || sp.Args[0] != "/srv/spotify/index.js" {
		t.Errorf("spotify server = %+v", sp)
	}
	if br := servers[MCPBrowser]; br.URL != "http://localhost:3000/mcp" {
		t.Errorf("browser override not applied: %+v", br)
	}
}

func TestMCPServers_SpotifyDisabledWithoutPath(t *testing.T) {
	cfg := DefaultConfig()
	if _, ok := cfg.MCPServers()[MCPSpotify]; ok {
		t.Error("spotify server should be absent without a path")
	}
}
