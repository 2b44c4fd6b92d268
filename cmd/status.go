package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jarvis-assistant/jarvis/internal/mcp"
	"github.com/jarvis-assistant/jarvis/internal/providers"
	"github.com/jarvis-assistant/jarvis/internal/tools"
)

var statusProbe bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show jarvis status",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusProbe, "probe", false, "Connect to the MCP servers and list their tools")
}

func mark(err error) string {
	if err == nil {
		return "✓"
	}
	return "✗"
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfgPath := resolvedConfigPath()

	fmt.Printf("%s jarvis Status\n\n", logo)

	_, statErr := os.Stat(cfgPath)
	fmt.Printf("Config:    %s %s\n", cfgPath, mark(statErr))

	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("  (could not load config: %v)\n", err)
		return nil
	}

	ws := cfg.WorkspacePath()
	_, wsErr := os.Stat(ws)
	_, profErr := os.Stat(cfg.ProfilePath())
	_, calErr := os.Stat(cfg.CalendarPath())

	fmt.Printf("Workspace: %s %s\n", ws, mark(wsErr))
	fmt.Printf("Profile:   %s %s\n", cfg.ProfilePath(), mark(profErr))
	fmt.Printf("Calendar:  %s %s\n", cfg.CalendarPath(), mark(calErr))
	fmt.Printf("Model:     %s\n", cfg.Agents.Defaults.Model)
	fmt.Printf("Server:    %s:%d (turn timeout %ds)\n", cfg.Server.Host, cfg.Server.Port, cfg.Server.TurnTimeout)
	fmt.Printf("Sessions:  ttl %dm, max %d, sweep %q\n\n",
		cfg.Sessions.TTLMinutes, cfg.Sessions.MaxEntries, cfg.Sessions.SweepSchedule)

	fmt.Println("Providers:")
	matched := cfg.MatchProvider("").Name
	for _, spec := range providers.PROVIDERS {
		p := cfg.ProviderByName(spec.Name)
		if p == nil {
			continue
		}
		label := spec.Label()
		if spec.Name == matched {
			label += " *"
		}
		switch {
		case spec.IsLocal || spec.IsDirect:
			if p.APIBase != "" {
				fmt.Printf("  %-20s ✓ %s\n", label, p.APIBase)
			} else {
				fmt.Printf("  %-20s (not set)\n", label)
			}
		default:
			if p.APIKey != "" {
				fmt.Printf("  %-20s ✓\n", label)
			} else {
				fmt.Printf("  %-20s (not set)\n", label)
			}
		}
	}

	servers := cfg.MCPServers()
	names := make([]string, 0, len(servers))
	for name := range servers {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nMCP servers:")
	if len(names) == 0 {
		fmt.Println("  (none)")
	}
	for _, name := range names {
		s := servers[name]
		target := s.URL
		if target == "" {
			target = strings.TrimSpace(s.Command + " " + strings.Join(s.Args, " "))
		}
		fmt.Printf("  %-12s %s\n", name, target)
	}

	if statusProbe && len(names) > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
		defer cancel()

		mgr := mcp.NewManager(servers)
		defer mgr.Close()
		tls := tools.NewToolList()
		mgr.ConnectOnce(ctx, tls)

		fmt.Println("\nMCP probe:")
		for _, s := range mgr.Status() {
			if s.Connected {
				fmt.Printf("  %-12s ✓ %d tools\n", s.Name, s.Tools)
			} else {
				fmt.Printf("  %-12s ✗ %s\n", s.Name, s.Err)
			}
		}
		for _, n := range tls.Names() {
			fmt.Printf("    %s\n", n)
		}
	}
	return nil
}
