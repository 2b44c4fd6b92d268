package config

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/jarvis-assistant/jarvis/internal/config/provider"
)

// LoadDotEnv loads ./.env and ~/.jarvis/.env into the process environment.
// Variables already set win; missing files are ignored.
func LoadDotEnv() {
	for _, p := range []string{".env", filepath.Join(DataDir(), ".env")} {
		if err := godotenv.Load(p); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to load env file", "path", p, "err", err)
		}
	}
}

// ApplyEnv overlays environment variables on cfg:
//
//	JARVIS_MODEL, JARVIS_WORKSPACE, JARVIS_HOST, JARVIS_PORT,
//	JARVIS_SESSION_TTL (minutes), JARVIS_FILESYSTEM_ROOT,
//	GEMINI_API_KEY / GOOGLE_API_KEY, OPENAI_API_KEY, OPENROUTER_API_KEY,
//	SPOTIFY_MCP_PATH.
func ApplyEnv(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix("jarvis")
	v.AutomaticEnv()

	_ = v.BindEnv("gemini_key", "GEMINI_API_KEY", "GOOGLE_API_KEY")
	_ = v.BindEnv("openai_key", "OPENAI_API_KEY")
	_ = v.BindEnv("openrouter_key", "OPENROUTER_API_KEY")
	_ = v.BindEnv("spotify_path", "SPOTIFY_MCP_PATH")

	setString(v, "model", &cfg.Agents.Defaults.Model)
	setString(v, "workspace", &cfg.Agents.Defaults.Workspace)
	setString(v, "host", &cfg.Server.Host)
	setInt(v, "port", &cfg.Server.Port)
	setInt(v, "session_ttl", &cfg.Sessions.TTLMinutes)
	setString(v, "filesystem_root", &cfg.Tools.Filesystem.Root)
	setString(v, "spotify_path", &cfg.Tools.Spotify.Path)

	setString(v, "gemini_key", &cfg.ProviderByName(provider.ProviderGemini).APIKey)
	setString(v, "openai_key", &cfg.ProviderByName(provider.ProviderOpenAI).APIKey)
	setString(v, "openrouter_key", &cfg.ProviderByName(provider.ProviderOpenRouter).APIKey)
}

func setString(v *viper.Viper, key string, dst *string) {
	if s := v.GetString(key); s != "" {
		*dst = s
	}
}

func setInt(v *viper.Viper, key string, dst *int) {
	if v.GetString(key) == "" {
		return
	}
	*dst = v.GetInt(key)
}
