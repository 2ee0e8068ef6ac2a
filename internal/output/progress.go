package output

import (
	"fmt"
	"strings"
)

// ScoreBar renders a visual progress bar for a score out of max.
// Example: "████████░░ 8.0/10"
func ScoreBar(score, max float64, width int) string {
	if width <= 0 {
		width = 20
	}
	if max <= 0 {
		max = 100
	}
	filled := int((score / max) * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	ratio := score / max
	var style func(string) string
	switch {
	case ratio >= 0.6:
		style = func(s string) string { return StyleSuccess.Render(s) }
	case ratio >= 0.35:
		style = func(s string) string { return StyleWarning.Render(s) }
	default:
		style = func(s string) string { return StyleError.Render(s) }
	}

	return fmt.Sprintf("%s %s", style(bar), StyleMuted.Render(fmt.Sprintf("%.1f/%.0f", score, max)))
}

// MoodBar renders a daily mood score on the 0-9 mood scale.
func MoodBar(score float64, width int) string {
	return ScoreBar(score, 9, width)
}

// CountBar renders a plain proportional bar for a count out of total.
func CountBar(count, total, width int) string {
	if width <= 0 {
		width = 20
	}
	filled := 0
	if total > 0 {
		filled = count * width / total
	}
	return StyleHeader.Render(strings.Repeat("█", filled)) + StyleMuted.Render(strings.Repeat("░", width-filled))
}

// TrendLabel returns a styled weekly trend indicator.
func TrendLabel(trend string) string {
	switch trend {
	case "increasing":
		return StyleSuccess.Render("▲ increasing")
	case "decreasing":
		return StyleError.Render("▼ decreasing")
	default:
		return StyleMuted.Render("─ stable")
	}
}

// Section prints a styled section header with a horizontal rule.
func Section(title string) string {
	header := StyleHeader.Render(title)
	rule := StyleMuted.Render(strings.Repeat("─", 66))
	return fmt.Sprintf("\n %s\n %s", header, rule)
}
