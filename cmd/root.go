// Package cmd implements the jarvis CLI using cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jarvis-assistant/jarvis/internal/config"
	"github.com/jarvis-assistant/jarvis/internal/logging"
)

const version = "0.1.0"
const logo = "🤖"

var (
	configPath string
	logLevel   string
	logFormat  string
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:           "jarvis",
	Short:         logo + " jarvis: calendar, music and files assistant",
	Long:          logo + " jarvis: a personal assistant that manages your calendar, Spotify playback and files through an LLM with tools",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logging.Setup(os.Stderr, logLevel, logFormat)
	},
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.jarvis/config.json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", logging.FormatText, "Log format: text or json")

	rootCmd.AddCommand(onboardCmd)
	rootCmd.AddCommand(agentCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(calendarCmd)
}

// loadConfig resolves .env, the config file and the environment overlay.
func loadConfig() (*config.Config, error) {
	return config.Resolve(configPath)
}

// resolvedConfigPath is the config file the commands read and write.
func resolvedConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.ConfigPath()
}
