package app

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/devpulse/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP stdio server over the session log",
	Long: `Start a Model Context Protocol stdio server so editors and assistants
can query your coding metrics. The server exposes four tools:

  get_daily_metrics    Per-day aggregates for the last N days (days arg)
  get_streaks          Current and longest streak
  get_today            Today's totals and score
  get_recent_sessions  Last N logged sessions

Example MCP client configuration:
  {"mcpServers":{"devpulse":{"command":"devpulse","args":["mcp"]}}}`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	_, db, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	logger.Info("mcp server starting", "version", appVersion)
	srv := mcp.NewServer(db, appVersion)
	return srv.Run(cmd.Context(), os.Stdin, os.Stdout)
}
