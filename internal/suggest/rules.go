package suggest

import (
	"fmt"

	"github.com/blackwell-systems/mindlens/internal/analyzer"
)

// FrequentEmotion reports the most frequent emotion of the month.
func FrequentEmotion(m *Metrics) []Insight {
	if len(m.Distribution) == 0 {
		return nil
	}
	top := m.Distribution[0]
	return []Insight{{
		Category: "emotion",
		Priority: PriorityEmotion,
		Text:     fmt.Sprintf("Your most frequent emotion this month is %s (%d entries)", top.Emotion, top.Count),
	}}
}

// WritingStreak acknowledges an active streak, with phrasing that grows
// with its length.
func WritingStreak(m *Metrics) []Insight {
	var text string
	switch {
	case m.Streak <= 0:
		return nil
	case m.Streak == 1:
		text = "Great job writing today! Keep the momentum going."
	case m.Streak < 7:
		text = fmt.Sprintf("You're on a %d-day writing streak! Consistency is key to emotional awareness.", m.Streak)
	default:
		text = fmt.Sprintf("Amazing! You've maintained a %d-day writing streak. This shows real commitment to your mental wellness.", m.Streak)
	}
	return []Insight{{Category: "streak", Priority: PriorityStreak, Text: text}}
}

// WritingFrequency notes when the user is writing more often than before.
func WritingFrequency(m *Metrics) []Insight {
	if m.Weekly.Trend != analyzer.TrendIncreasing {
		return nil
	}
	return []Insight{{
		Category: "volume",
		Priority: PriorityVolume,
		Text:     "You've been writing more frequently lately - this increased self-reflection is wonderful for personal growth!",
	}}
}

// DayOfWeek prompts reflection on weekday effects once any exist.
func DayOfWeek(m *Metrics) []Insight {
	if len(m.Patterns.Daily) == 0 {
		return nil
	}
	return []Insight{{
		Category: "pattern",
		Priority: PriorityPattern,
		Text:     "Consider how different days of the week affect your emotional state.",
	}}
}
