package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/mindlens/internal/output"
	"github.com/blackwell-systems/mindlens/internal/suggest"
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Show personalized insights",
	Long: `Generate up to three short insights from your emotion distribution,
writing streak, weekly volume and day-of-week patterns. New journals get
an encouragement to keep writing.`,
	RunE: runInsights,
}

func init() {
	rootCmd.AddCommand(insightsCmd)
}

func runInsights(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	user, err := e.userID()
	if err != nil {
		return err
	}

	insights := suggest.NewEngine().Run(suggest.Collect(cmd.Context(), e.engine, user))

	if flagJSON {
		return printJSON(insights)
	}

	renderInsights(suggest.Texts(insights))
	return nil
}

func renderInsights(texts []string) {
	fmt.Println(output.Section("Insights"))
	fmt.Println()

	for i, text := range texts {
		fmt.Printf(" %s %s\n", output.StyleHeader.Render(fmt.Sprintf("#%d", i+1)), text)
	}
	fmt.Println()
}
