package dependency

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jarvis-assistant/jarvis/internal/config"
	"github.com/jarvis-assistant/jarvis/internal/config/provider"
	"github.com/jarvis-assistant/jarvis/internal/tools"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	cfg := config.DefaultConfig()
	cfg.Agents.Defaults.Workspace = t.TempDir()
	cfg.ProviderByName(provider.ProviderGemini).APIKey = "test-key"
	return &cfg
}

func TestNew_WiresServices(t *testing.T) {
	c, err := New(testConfig(t))
	require.NoError(t, err)
	defer c.Close()

	assert.NotNil(t, c.Server())
	assert.NotNil(t, c.Sweeper())
	assert.NotNil(t, c.Calendar())
	assert.Equal(t, "gemini/gemini-2.5-flash-lite", c.Provider().DefaultModel())

	names := c.Agent().Tools().Names()
	assert.Contains(t, names, string(tools.ToolListEvents))
	assert.Contains(t, names, string(tools.ToolReadFile))
	assert.Equal(t, "jarvis", c.Agent().Profile().Name)

	e, err := c.Registry().GetOrCreate(context.Background(), "session_1")
	require.NoError(t, err)
	assert.Equal(t, "gemini/gemini-2.5-flash-lite", e.Settings.Model)
	assert.Equal(t, 20, e.Settings.MaxIter)
}

func TestNew_NoProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.ProviderByName(provider.ProviderGemini).APIKey = ""

	_, err := New(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no API key configured")
}

func TestNew_BadSweepSchedule(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sessions.SweepSchedule = "every so often"

	_, err := New(cfg)
	assert.Error(t, err)
}
