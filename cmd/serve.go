package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/conneroisu/docblocks/internal/config"
	"github.com/conneroisu/docblocks/internal/server"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Start the docs server with live reload",
	Long: `Start the docs server. Pages are rebuilt on every request and open pages
reload when the manifest or any file it references changes.

Examples:
  docblocks serve                       # Serve docblocks.yml on localhost:6006
  docblocks serve -p 8080               # Serve on another port
  docblocks serve --manifest docs.yml   # Serve another manifest
  docblocks serve --no-watch            # Don't watch for changes`,
	RunE: runServe,
}

var serveFlags *StandardFlags

func init() {
	rootCmd.AddCommand(serveCmd)

	serveFlags = AddStandardFlags(serveCmd, "server")
	bindFlags(serveCmd.Flags(), map[string]string{
		"port": "server.port",
		"host": "server.host",
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if serveFlags.NoWatch {
		cfg.Docs.Watch = false
	}

	logger := newLogger(cfg)
	srv := server.New(cfg, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Serving %s at http://%s\n", cfg.Docs.Manifest, cfg.Addr())

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	logger.Info(context.Background(), "Server stopped")

	return nil
}
