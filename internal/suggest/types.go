// Package suggest composes short natural-language insights from a user's
// journal metrics.
package suggest

import "github.com/blackwell-systems/mindlens/internal/analyzer"

// MaxInsights is the most insights returned for one request.
const MaxInsights = 3

// FallbackInsight is returned when no rule produces an insight.
const FallbackInsight = "Keep writing to unlock personalized insights about your emotional patterns!"

// Priority levels for insights. Lower runs first.
const (
	PriorityEmotion = 1
	PriorityStreak  = 2
	PriorityVolume  = 3
	PriorityPattern = 4
)

// Insight is one generated observation.
type Insight struct {
	Category string `json:"category"`
	Priority int    `json:"priority"`
	Text     string `json:"text"`
}

// Metrics is the input to the insight rules.
type Metrics struct {
	// Distribution covers the trailing 30 days.
	Distribution analyzer.Distribution `json:"distribution"`

	// Streak is the current consecutive-day writing streak.
	Streak int `json:"streak"`

	// Weekly covers the trailing eight weeks.
	Weekly analyzer.WeeklySummary `json:"weekly"`

	// Patterns covers the trailing 90 days.
	Patterns analyzer.Patterns `json:"patterns"`
}

// Rule examines the metrics and produces zero or more insights.
type Rule func(m *Metrics) []Insight
