package agent

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Profile is the agent persona, read from AGENT.yaml in the workspace:
//
//	name: jarvis
//	description: Agent to help with scheduling and calendar, and Spotify operations.
//	model: gemini/gemini-2.5-flash-lite   # optional, overrides the config
//	instruction: |
//	  You are Jarvis, ...
type Profile struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Model       string `yaml:"model,omitempty"`
	Instruction string `yaml:"instruction"`
}

const defaultInstruction = `You are Jarvis, an AI assistant that manages the user's calendar and controls their Spotify music playback. Use the provided tools to perform actions as needed. You can also work with files and directories through the file system tools, and browse the web when a browser tool is available.
You have a playful and friendly personality. Do what you are told without asking unnecessary questions.`

// DefaultProfile returns the built-in Jarvis persona.
func DefaultProfile() Profile {
	return Profile{
		Name:        "jarvis",
		Description: "Agent to help with scheduling and calendar, and Spotify operations.",
		Instruction: defaultInstruction,
	}
}

// LoadProfile reads the profile at path. A missing file yields the default
// profile; a malformed one logs a warning and yields the default. Empty
// fields fall back to the defaults.
func LoadProfile(path string) Profile {
	def := DefaultProfile()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("failed to read agent profile, using defaults", "path", path, "err", err)
		}
		return def
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		slog.Warn("failed to parse agent profile, using defaults", "path", path, "err", err)
		return def
	}
	if p.Name == "" {
		p.Name = def.Name
	}
	if p.Description == "" {
		p.Description = def.Description
	}
	if p.Instruction == "" {
		p.Instruction = def.Instruction
	}
	return p
}

// SaveProfile writes p to path as YAML, creating parent directories.
func SaveProfile(p Profile, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create profile dir")
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return errors.Wrap(err, "marshal profile")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0o644), "write profile %s", path)
}
