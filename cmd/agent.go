package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jarvis-assistant/jarvis/internal/agent"
	"github.com/jarvis-assistant/jarvis/internal/dependency"
	"github.com/jarvis-assistant/jarvis/internal/logging"
	"github.com/jarvis-assistant/jarvis/internal/session"
	"github.com/jarvis-assistant/jarvis/internal/shared/cmdutils"
	"github.com/jarvis-assistant/jarvis/internal/turn"
)

var (
	agentMessage string
	agentSession string
	agentLogs    bool
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Chat with jarvis in the terminal",
	RunE:  runAgent,
}

func init() {
	agentCmd.Flags().StringVarP(&agentMessage, "message", "m", "", "Send a single message and exit")
	agentCmd.Flags().StringVarP(&agentSession, "session", "s", "session_cli", "Session ID")
	agentCmd.Flags().BoolVar(&agentLogs, "logs", false, "Show runtime logs")
}

var exitCommands = map[string]bool{
	"exit":  true,
	"quit":  true,
	"/exit": true,
	"/quit": true,
	":q":    true,
}

func runAgent(_ *cobra.Command, _ []string) error {
	if !agentLogs {
		logging.Setup(os.Stderr, "warn", logFormat)
	}

	cfg, err := loadConfig()
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	c, err := dependency.New(cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	entry, err := c.Registry().GetOrCreate(ctx, agentSession)
	if err != nil {
		return err
	}
	timeout := time.Duration(cfg.Server.TurnTimeout) * time.Second

	if agentMessage != "" {
		fmt.Fprintf(os.Stderr, "  ↳ thinking...\n")
		res, err := runTurn(ctx, c.Agent(), entry, agentMessage, timeout)
		if err != nil {
			fmt.Printf("\n%s jarvis\nError: %v\n\n", logo, err)
			return nil
		}
		cmdutils.PrintResult(res)
		return nil
	}

	return runInteractive(ctx, c.Agent(), entry, timeout)
}

// runInteractive reads lines from stdin and runs one turn per line, showing
// thoughts and tool calls as they happen.
func runInteractive(ctx context.Context, a *agent.Agent, entry *session.Entry, timeout time.Duration) error {
	fmt.Printf("%s Interactive mode, session %s (type 'exit' or Ctrl+C to quit, '/new' to start over)\n\n", logo, entry.ID)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		fmt.Print("You: ")

		var line string
		select {
		case <-ctx.Done():
			fmt.Println("\nGoodbye!")
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Println("\nGoodbye!")
				return nil
			}
			line = strings.TrimSpace(l)
		}

		switch {
		case line == "":
			continue
		case exitCommands[strings.ToLower(line)]:
			fmt.Println("Goodbye!")
			return nil
		case line == "/new":
			entry.Session.Clear()
			fmt.Println("  ↳ conversation cleared")
			continue
		}

		res, err := runTurn(ctx, a, entry, line, timeout, cmdutils.PrintProgress)
		if err != nil {
			fmt.Printf("\n%s jarvis\nError: %v\n\n", logo, err)
			continue
		}
		cmdutils.PrintResponse(res.Response)
	}
}

// runTurn streams one turn, passing each event to the observers, and folds
// it into a result.
func runTurn(
	ctx context.Context,
	a *agent.Agent,
	entry *session.Entry,
	message string,
	timeout time.Duration,
	observers ...func(*turn.Event),
) (turn.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	src := a.Stream(ctx, entry, message)
	defer src.Close()

	agg := turn.NewAggregator()
	for {
		select {
		case <-ctx.Done():
			return agg.Result(), ctx.Err()
		case ev, ok := <-src.Events():
			if !ok {
				return agg.Result(), src.Err()
			}
			for _, observe := range observers {
				observe(ev)
			}
			if !agg.Add(ev) {
				return agg.Result(), nil
			}
		}
	}
}
