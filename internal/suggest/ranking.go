package suggest

import "sort"

// RankInsights orders insights by priority, keeping rule order within a
// priority.
func RankInsights(insights []Insight) []Insight {
	sorted := make([]Insight, len(insights))
	copy(sorted, insights)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})
	return sorted
}

// Truncate keeps at most n insights. Later insights are dropped.
func Truncate(insights []Insight, n int) []Insight {
	if len(insights) <= n {
		return insights
	}
	return insights[:n]
}
