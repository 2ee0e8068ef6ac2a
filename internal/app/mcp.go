package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/mindlens/internal/logging"
	"github.com/blackwell-systems/mindlens/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP stdio server over your journal analytics",
	Long: `Start a Model Context Protocol stdio server that an assistant can
query. Every tool accepts an optional user_id (default: your local user) and
the windowed tools accept days (0 for the full history):

  get_emotion_distribution  Entries per emotion
  get_mood_trend            Average daily mood score
  get_weekly_summary        Entries per week with the volume trend
  get_writing_streak        Consecutive days with an entry
  get_emotion_patterns      Most common emotion by hour and weekday
  get_word_analysis         Entry length overall and per emotion
  get_user_stats            Headline totals
  get_insights              Up to three short insights

Add to your MCP client configuration:
  {"mcpServers":{"mindlens":{"command":"mindlens","args":["mcp"]}}}`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	user, err := e.userID()
	if err != nil {
		return fmt.Errorf("resolving default user: %w", err)
	}

	srv := mcp.NewServer(e.engine, user, appVersion, logging.Component(e.log, "mcp"))
	return srv.Run(cmd.Context(), os.Stdin, os.Stdout)
}
