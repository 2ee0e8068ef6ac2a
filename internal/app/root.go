// Package app contains the Cobra command tree for mindlens.
package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor bool
	flagJSON    bool
	flagVerbose bool
	flagConfig  string
	flagUser    string
)

var rootCmd = &cobra.Command{
	Use:   "mindlens",
	Short: "Emotion analytics for a personal journal",
	Long: `mindlens keeps a private journal, labels each entry with its dominant
emotion and turns the history into mood trends, writing streaks, weekly
volume and short insights.

Run 'mindlens' with no arguments to see the available commands.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("mindlens", appVersion)
		fmt.Println()
		fmt.Println("Use a subcommand:")
		fmt.Println("  write     Record a journal entry")
		fmt.Println("  entries   List or search recent entries")
		fmt.Println("  delete    Delete an entry")
		fmt.Println("  stats     Show the emotion analytics dashboard")
		fmt.Println("  insights  Show personalized insights")
		fmt.Println("  rollup    Rebuild the daily emotion history")
		fmt.Println("  serve     Run the HTTP API and nightly rollup")
		fmt.Println("  mcp       Run an MCP stdio server")
		fmt.Println("  doctor    Check whether the setup is healthy")
		return nil
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/mindlens/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flagUser, "user", "", "Journal owner (default: user_id from config, else a generated local id)")
}
