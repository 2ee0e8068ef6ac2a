package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/mindlens/internal/logging"
	"github.com/blackwell-systems/mindlens/internal/output"
	"github.com/blackwell-systems/mindlens/internal/scheduler"
)

var rollupAll bool

var rollupCmd = &cobra.Command{
	Use:   "rollup",
	Short: "Rebuild the daily emotion history",
	Long: `Recompute the per-day emotion history from the journal entries. The
history is updated on every write but not on delete; 'serve' rebuilds it
nightly. By default only your own history is rebuilt; --all rebuilds every
user in the database.`,
	RunE: runRollup,
}

func init() {
	rollupCmd.Flags().BoolVar(&rollupAll, "all", false, "Rebuild the history of every user")
	rootCmd.AddCommand(rollupCmd)
}

func runRollup(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	var sum scheduler.Summary
	if rollupAll {
		sum, err = scheduler.Rebuild(cmd.Context(), e.store, logging.Component(e.log, "rollup"))
		if err != nil {
			return fmt.Errorf("rebuilding history: %w", err)
		}
	} else {
		user, err := e.userID()
		if err != nil {
			return err
		}
		n, err := e.store.RebuildHistory(cmd.Context(), user)
		if err != nil {
			return fmt.Errorf("rebuilding history: %w", err)
		}
		sum = scheduler.Summary{Users: 1, Rows: n}
	}

	if flagJSON {
		return printJSON(sum)
	}

	msg := fmt.Sprintf("Rebuilt %d history rows for %d user(s)", sum.Rows, sum.Users)
	fmt.Printf(" %s %s\n", output.StyleSuccess.Render("✓"), msg)
	if sum.Failed > 0 {
		fmt.Printf(" %s %d user(s) failed, see log\n", output.StyleWarning.Render("!"), sum.Failed)
	}
	return nil
}
