// ABOUTME: CLI command for starting MCP server.
// ABOUTME: Runs a read-only stdio MCP server over the configured store.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/sweat/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server communicates via stdin/stdout and is read-only: assistants can list
and summarize workouts and run read-only SQL, but imports only happen through
'sweat import'.

CLAUDE DESKTOP CONFIGURATION:

  {
    "mcpServers": {
      "sweat": {
        "command": "sweat",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  list_workouts    List recent workouts with filters
  overview         Totals and averages
  summarize        Averages by day, week, month, or year
  import_history   Recent import runs
  run_query        Read-only SQL

AVAILABLE RESOURCES:

  sweat://workouts/recent   Last 10 workouts
  sweat://summary           Overview, last 8 weeks, latest import`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		store, err := openStore(ctx, false)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		server, err := mcp.NewServer(store, version)
		if err != nil {
			return err
		}

		// Handle shutdown signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		logger.Debug("mcp server starting", "profile", cfg.GetProfile())
		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
