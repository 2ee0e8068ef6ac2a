package suggest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/mindlens/internal/analyzer"
)

func fullMetrics() *Metrics {
	return &Metrics{
		Distribution: analyzer.Distribution{{Emotion: "joy", Count: 3}, {Emotion: "sadness", Count: 1}},
		Streak:       3,
		Weekly:       analyzer.WeeklySummary{Trend: analyzer.TrendIncreasing},
		Patterns:     analyzer.Patterns{Daily: map[int]string{1: "joy"}},
	}
}

func TestEngine_Run_PriorityOrderAndTruncation(t *testing.T) {
	got := Texts(NewEngine().Run(fullMetrics()))
	assert.Equal(t, []string{
		"Your most frequent emotion this month is joy (3 entries)",
		"You're on a 3-day writing streak! Consistency is key to emotional awareness.",
		"You've been writing more frequently lately - this increased self-reflection is wonderful for personal growth!",
	}, got)
}

func TestEngine_Run_Fallback(t *testing.T) {
	got := NewEngine().Run(&Metrics{Weekly: analyzer.WeeklySummary{Trend: analyzer.TrendStable}})
	require.Len(t, got, 1)
	assert.Equal(t, FallbackInsight, got[0].Text)
}

func TestEngine_Run_SkipsMissingRules(t *testing.T) {
	m := &Metrics{
		Streak:   0,
		Weekly:   analyzer.WeeklySummary{Trend: analyzer.TrendDecreasing},
		Patterns: analyzer.Patterns{Daily: map[int]string{0: "fear"}},
	}
	got := Texts(NewEngine().Run(m))
	assert.Equal(t, []string{"Consider how different days of the week affect your emotional state."}, got)
}

func TestEngine_Run_Deterministic(t *testing.T) {
	a := Texts(NewEngine().Run(fullMetrics()))
	b := Texts(NewEngine().Run(fullMetrics()))
	assert.Equal(t, a, b)
}

func TestWritingStreak_Tiers(t *testing.T) {
	tests := []struct {
		streak int
		want   string
	}{
		{0, ""},
		{1, "Great job writing today! Keep the momentum going."},
		{6, "You're on a 6-day writing streak! Consistency is key to emotional awareness."},
		{7, "Amazing! You've maintained a 7-day writing streak. This shows real commitment to your mental wellness."},
		{30, "Amazing! You've maintained a 30-day writing streak. This shows real commitment to your mental wellness."},
	}
	for _, tc := range tests {
		got := WritingStreak(&Metrics{Streak: tc.streak})
		if tc.want == "" {
			assert.Empty(t, got, "streak %d", tc.streak)
			continue
		}
		if assert.Len(t, got, 1, "streak %d", tc.streak) {
			assert.Equal(t, tc.want, got[0].Text)
		}
	}
}

func TestRankInsights_StableWithinPriority(t *testing.T) {
	in := []Insight{
		{Priority: 2, Text: "b1"},
		{Priority: 1, Text: "a"},
		{Priority: 2, Text: "b2"},
	}
	got := RankInsights(in)
	assert.Equal(t, []string{"a", "b1", "b2"}, Texts(got))
	assert.Equal(t, "b1", in[0].Text, "RankInsights must not modify its input")
}

// stubSource returns fixed metrics.
type stubSource struct{ m *Metrics }

func (s stubSource) EmotionDistribution(context.Context, string, int) analyzer.Distribution {
	return s.m.Distribution
}
func (s stubSource) WritingStreak(context.Context, string) int { return s.m.Streak }
func (s stubSource) WeeklySummary(context.Context, string) analyzer.WeeklySummary {
	return s.m.Weekly
}
func (s stubSource) EmotionPatterns(context.Context, string, int) analyzer.Patterns {
	return s.m.Patterns
}

func TestGenerate(t *testing.T) {
	m := fullMetrics()
	m.Distribution = nil
	got := Generate(context.Background(), stubSource{m}, "u1")
	require.Len(t, got, 3)
	assert.Equal(t, "Consider how different days of the week affect your emotional state.", got[2])
}

func TestFromReport(t *testing.T) {
	r := analyzer.Report{Streak: 1}
	got := Texts(NewEngine().Run(FromReport(r)))
	assert.Equal(t, []string{"Great job writing today! Keep the momentum going."}, got)
}
