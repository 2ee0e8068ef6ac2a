package output

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/blackwell-systems/mindlens/internal/journal"
)

var emotionColors = map[string]lipgloss.Color{
	journal.Joy:      lipgloss.Color("#FFD700"),
	journal.Love:     lipgloss.Color("#FF69B4"),
	journal.Surprise: lipgloss.Color("#FF8C00"),
	journal.Neutral:  lipgloss.Color("#808080"),
	journal.Fear:     lipgloss.Color("#9370DB"),
	journal.Sadness:  lipgloss.Color("#4169E1"),
	journal.Anger:    lipgloss.Color("#DC143C"),
}

var emotionEmoji = map[string]string{
	journal.Joy:      "😊",
	journal.Love:     "❤️",
	journal.Surprise: "😲",
	journal.Neutral:  "😐",
	journal.Fear:     "😰",
	journal.Sadness:  "😢",
	journal.Anger:    "😠",
}

// EmotionColor returns the display color for an emotion label.
func EmotionColor(emotion string) lipgloss.Color {
	if c, ok := emotionColors[journal.NormalizeEmotion(emotion)]; ok {
		return c
	}
	return lipgloss.Color("#667eea")
}

// EmotionEmoji returns the emoji for an emotion label.
func EmotionEmoji(emotion string) string {
	if e, ok := emotionEmoji[journal.NormalizeEmotion(emotion)]; ok {
		return e
	}
	return "🤔"
}

// Emotion renders a label in its color, prefixed by its emoji.
func Emotion(emotion string) string {
	label := emotion
	if !noColor {
		label = lipgloss.NewStyle().Foreground(EmotionColor(emotion)).Bold(true).Render(emotion)
	}
	return EmotionEmoji(emotion) + " " + label
}

// RelativeTime formats t relative to now: "5 minutes ago", "Yesterday",
// "3 weeks ago", or a date for anything older than a month.
func RelativeTime(t, now time.Time) string {
	d := now.Sub(t)
	if d < 0 {
		d = 0
	}
	days := int(d.Hours() / 24)

	switch {
	case days == 0 && d < time.Hour:
		return plural(int(d.Minutes()), "minute") + " ago"
	case days == 0:
		return plural(int(d.Hours()), "hour") + " ago"
	case days == 1:
		return "Yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	case days < 30:
		return plural(days/7, "week") + " ago"
	default:
		return t.Format("January 02, 2006")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
