package suggest

import (
	"context"

	"github.com/blackwell-systems/mindlens/internal/analyzer"
)

// Engine runs all registered rules against a set of metrics and collects
// the resulting insights.
type Engine struct {
	rules []Rule
}

// NewEngine creates a new insight engine with all built-in rules registered.
func NewEngine() *Engine {
	return &Engine{
		rules: []Rule{
			FrequentEmotion,
			WritingStreak,
			WritingFrequency,
			DayOfWeek,
		},
	}
}

// Run executes all rules and returns at most MaxInsights insights in
// priority order. When no rule fires a single fallback insight is returned.
func (e *Engine) Run(m *Metrics) []Insight {
	var all []Insight
	for _, rule := range e.rules {
		all = append(all, rule(m)...)
	}
	if len(all) == 0 {
		return []Insight{{Category: "fallback", Priority: PriorityPattern + 1, Text: FallbackInsight}}
	}
	return Truncate(RankInsights(all), MaxInsights)
}

// Source is the subset of the analytics engine needed to gather metrics.
type Source interface {
	EmotionDistribution(ctx context.Context, userID string, days int) analyzer.Distribution
	WritingStreak(ctx context.Context, userID string) int
	WeeklySummary(ctx context.Context, userID string) analyzer.WeeklySummary
	EmotionPatterns(ctx context.Context, userID string, days int) analyzer.Patterns
}

// Collect gathers the metrics the rules need for one user.
func Collect(ctx context.Context, src Source, userID string) *Metrics {
	return &Metrics{
		Distribution: src.EmotionDistribution(ctx, userID, analyzer.DefaultDistributionDays),
		Streak:       src.WritingStreak(ctx, userID),
		Weekly:       src.WeeklySummary(ctx, userID),
		Patterns:     src.EmotionPatterns(ctx, userID, analyzer.DefaultPatternDays),
	}
}

// FromReport builds rule input from an already computed report.
func FromReport(r analyzer.Report) *Metrics {
	return &Metrics{
		Distribution: r.Distribution,
		Streak:       r.Streak,
		Weekly:       r.Weekly,
		Patterns:     r.Patterns,
	}
}

// Generate returns up to three insight strings for the user.
func Generate(ctx context.Context, src Source, userID string) []string {
	return Texts(NewEngine().Run(Collect(ctx, src, userID)))
}

// Texts extracts the insight strings.
func Texts(insights []Insight) []string {
	out := make([]string, len(insights))
	for i, in := range insights {
		out[i] = in.Text
	}
	return out
}
