package cmd

import (
	"context"
	"fmt"
	"net"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jarvis-assistant/jarvis/internal/dependency"
)

var (
	servePort int
	serveHost string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the jarvis HTTP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Listen port (default from config, 8000)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Listen host (default from config)")
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	if servePort > 0 {
		cfg.Server.Port = servePort
	}
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}

	c, err := dependency.New(cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	fmt.Printf("%s Starting jarvis on http://%s (model %s)\n", logo, addr, cfg.Agents.Defaults.Model)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.Server().ListenAndServe(gctx, addr) })
	g.Go(func() error { return c.Sweeper().Start(gctx) })
	g.Go(func() error {
		c.MCP().ConnectOnce(gctx, c.Agent().Tools())
		for _, s := range c.MCP().Status() {
			if s.Connected {
				fmt.Printf("✓ MCP %s: %d tools\n", s.Name, s.Tools)
			} else {
				fmt.Printf("✗ MCP %s: %s\n", s.Name, s.Err)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	fmt.Println("\nShutdown complete.")
	return nil
}
