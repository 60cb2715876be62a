package main

import (
	"context"

	"github.com/spf13/cobra"

	"mirror/internal/history"
	"mirror/internal/logging"
	mcpserver "mirror/internal/mcp"
)

var serveFlags struct {
	history string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio",
	Long: `Starts a Model Context Protocol server over stdin/stdout exposing read-only
tools over the test history: get_flaky_tests, get_test_history and list_tests.

The server exits when its parent process goes away.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.history, "history", history.DefaultPath, "Outcome history file")
}

func runServe(cmd *cobra.Command, _ []string) error {
	mcpserver.Version = version
	srv := mcpserver.NewServer(pick(cmd, "history", serveFlags.history, cfg.Paths.History))

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	mcpserver.WatchParent(ctx, cancel)

	logging.New("mcp").Info("starting mirror MCP server over stdio", "history", srv.HistoryPath)
	return srv.Run(ctx)
}
