package app

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/mindlens/internal/analyzer"
	"github.com/blackwell-systems/mindlens/internal/output"
	"github.com/blackwell-systems/mindlens/internal/suggest"
)

var statsTrendDays int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the emotion analytics dashboard",
	Long: `Compute every analytics metric for your journal and display them as a
dashboard: headline stats, emotion distribution (30 days), daily mood
trend, weekly writing volume (8 weeks), writing streak, time-of-week
patterns (90 days), entry length and insights.`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().IntVar(&statsTrendDays, "trend-days", 14, "Number of most recent mood samples to display")
	rootCmd.AddCommand(statsCmd)
}

// statsOutput is the JSON-serializable output for the stats command.
type statsOutput struct {
	analyzer.Report
	Insights []string `json:"insights"`
}

func runStats(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	user, err := e.userID()
	if err != nil {
		return err
	}

	report := e.engine.Report(cmd.Context(), user)
	insights := suggest.Texts(suggest.NewEngine().Run(suggest.FromReport(report)))

	if flagJSON {
		return printJSON(statsOutput{Report: report, Insights: insights})
	}

	renderOverview(report)
	renderDistribution(report.Distribution)
	renderMoodTrend(report.MoodTrend, statsTrendDays)
	renderWeekly(report.Weekly)
	renderPatterns(report.Patterns)
	renderWords(report.Words)
	renderInsights(insights)

	if len(report.Fallbacks) > 0 {
		fmt.Printf(" %s\n\n", output.StyleWarning.Render(
			"Some metrics could not be computed and show defaults: "+strings.Join(report.Fallbacks, ", ")))
	}
	return nil
}

func renderOverview(r analyzer.Report) {
	fmt.Println(output.Section("Overview"))

	fmt.Printf(" %s %s\n",
		output.StyleLabel.Render("Total entries"),
		output.StyleValue.Render(fmt.Sprintf("%d", r.Stats.TotalEntries)))
	fmt.Printf(" %s %s\n",
		output.StyleLabel.Render("Last 7 days"),
		output.StyleValue.Render(fmt.Sprintf("%d", r.Stats.EntriesThisWeek)))
	fmt.Printf(" %s %s\n",
		output.StyleLabel.Render("Most common emotion"),
		output.Emotion(r.Stats.MostCommonEmotion))
	fmt.Printf(" %s %s\n",
		output.StyleLabel.Render("Writing streak"),
		output.StyleValue.Render(streakLabel(r.Streak)))

	fmt.Println()
}

func streakLabel(days int) string {
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}

func renderDistribution(d analyzer.Distribution) {
	fmt.Println(output.Section("Emotions (30 days)"))

	if len(d) == 0 {
		fmt.Printf(" %s\n\n", output.StyleMuted.Render("No entries in this period."))
		return
	}

	total := d.Total()
	for _, c := range d {
		pct := float64(c.Count) / float64(total) * 100
		fmt.Printf(" %s %s %s\n",
			output.StyleLabel.Render(output.Emotion(c.Emotion)),
			output.CountBar(c.Count, total, 20),
			output.StyleMuted.Render(fmt.Sprintf("%d (%.0f%%)", c.Count, pct)))
	}
	fmt.Println()
}

func renderMoodTrend(samples []analyzer.DailyMoodSample, limit int) {
	fmt.Println(output.Section("Mood Trend"))

	if len(samples) == 0 {
		fmt.Printf(" %s\n\n", output.StyleMuted.Render("No entries in this period."))
		return
	}

	if limit > 0 && len(samples) > limit {
		samples = samples[len(samples)-limit:]
	}
	for _, s := range samples {
		label := s.Date
		if t, err := time.Parse("2006-01-02", s.Date); err == nil {
			label = t.Format("Mon Jan 02")
		}
		fmt.Printf(" %s %s %s\n",
			output.StyleLabel.Render(label),
			output.MoodBar(s.MoodScore, 20),
			output.StyleMuted.Render(fmt.Sprintf("(%d)", s.EntryCount)))
	}
	fmt.Println()
}

func renderWeekly(w analyzer.WeeklySummary) {
	fmt.Println(output.Section("Weekly Volume (8 weeks)"))

	fmt.Printf(" %s %s\n",
		output.StyleLabel.Render("Avg entries/week"),
		output.StyleValue.Render(fmt.Sprintf("%.1f", w.AvgEntriesPerWeek)))
	fmt.Printf(" %s %s\n",
		output.StyleLabel.Render("Trend"),
		output.TrendLabel(w.Trend))

	if len(w.Weeks) > 0 {
		fmt.Println()
		tbl := output.NewTable("Week", "Entries")
		for _, wk := range w.Weeks {
			tbl.AddRow(fmt.Sprintf("%d-W%02d", wk.Year, wk.Week), fmt.Sprintf("%d", wk.Entries))
		}
		fmt.Print(indent(tbl.Render()))
	}
	fmt.Println()
}

func renderPatterns(p analyzer.Patterns) {
	fmt.Println(output.Section("Patterns (90 days)"))

	if len(p.Daily) == 0 && len(p.Hourly) == 0 {
		fmt.Printf(" %s\n\n", output.StyleMuted.Render("Not enough entries yet."))
		return
	}

	if len(p.Daily) > 0 {
		fmt.Printf(" %s\n", output.StyleMuted.Render("By day of week:"))
		for d := time.Sunday; d <= time.Saturday; d++ {
			if emotion, ok := p.Daily[int(d)]; ok {
				fmt.Printf("   %s %s\n", output.StyleLabel.Render(d.String()), output.Emotion(emotion))
			}
		}
	}

	if len(p.Hourly) > 0 {
		fmt.Printf("\n %s\n", output.StyleMuted.Render("By hour of day:"))
		hours := make([]int, 0, len(p.Hourly))
		for h := range p.Hourly {
			hours = append(hours, h)
		}
		sort.Ints(hours)
		for _, h := range hours {
			fmt.Printf("   %s %s\n", output.StyleLabel.Render(fmt.Sprintf("%02d:00", h)), output.Emotion(p.Hourly[h]))
		}
	}
	fmt.Println()
}

func renderWords(w analyzer.WordStats) {
	fmt.Println(output.Section("Entry Length (30 days)"))

	fmt.Printf(" %s %s\n",
		output.StyleLabel.Render("Avg words/entry"),
		output.StyleValue.Render(fmt.Sprintf("%.1f", w.AvgWordsPerEntry)))

	if len(w.AvgWordsByEmotion) > 0 {
		emotions := make([]string, 0, len(w.AvgWordsByEmotion))
		for em := range w.AvgWordsByEmotion {
			emotions = append(emotions, em)
		}
		sort.Slice(emotions, func(i, j int) bool {
			return w.AvgWordsByEmotion[emotions[i]] > w.AvgWordsByEmotion[emotions[j]]
		})
		fmt.Printf("\n %s\n", output.StyleMuted.Render("By emotion:"))
		for _, em := range emotions {
			fmt.Printf("   %s %s\n",
				output.StyleLabel.Render(output.Emotion(em)),
				output.StyleValue.Render(fmt.Sprintf("%.1f", w.AvgWordsByEmotion[em])))
		}
	}
	fmt.Println()
}

// indent prefixes every non-empty line with a space.
func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = " " + l
		}
	}
	return strings.Join(lines, "\n") + "\n"
}
