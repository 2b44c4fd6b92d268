package cmd

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jarvis-assistant/jarvis/internal/agent"
	"github.com/jarvis-assistant/jarvis/internal/config"
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize configuration, workspace and agent profile",
	RunE:  runOnboard,
}

func runOnboard(_ *cobra.Command, _ []string) error {
	cfgPath := resolvedConfigPath()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	_, statErr := os.Stat(cfgPath)
	if err := config.Save(cfg, cfgPath); err != nil {
		return err
	}
	if statErr == nil {
		fmt.Printf("✓ Config refreshed at %s\n", cfgPath)
	} else {
		fmt.Printf("✓ Created config at %s\n", cfgPath)
	}

	workspace := cfg.WorkspacePath()
	if err := os.MkdirAll(workspace, 0o755); err != nil {
		return errors.Wrap(err, "create workspace")
	}
	fmt.Printf("✓ Workspace at %s\n", workspace)

	profilePath := cfg.ProfilePath()
	if _, err := os.Stat(profilePath); os.IsNotExist(err) {
		if err := agent.SaveProfile(agent.DefaultProfile(), profilePath); err != nil {
			return err
		}
		fmt.Printf("  Created %s\n", profilePath)
	}

	fmt.Printf("\n%s jarvis is ready!\n\n", logo)
	fmt.Println("Next steps:")
	fmt.Printf("  1. Set GEMINI_API_KEY (or add a provider key to %s)\n", cfgPath)
	fmt.Println("  2. Optional: set SPOTIFY_MCP_PATH to your Spotify MCP server entry point")
	fmt.Println("  3. Chat: jarvis agent -m \"What's on my calendar today?\"")
	fmt.Println("  4. Web UI: jarvis serve, then open http://localhost:8000")
	return nil
}
