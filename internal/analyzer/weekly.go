package analyzer

import (
	"sort"
	"time"

	"github.com/blackwell-systems/mindlens/internal/journal"
)

// weekKey returns the ISO year and week number for a given time, used as a bucket key.
func weekKey(t time.Time) [2]int {
	year, week := t.ISOWeek()
	return [2]int{year, week}
}

// AnalyzeWeekly buckets entries into ISO weeks and classifies the trend in
// writing volume. Only weeks with entries appear.
func AnalyzeWeekly(points []journal.Point, loc *time.Location) WeeklySummary {
	buckets := make(map[[2]int]int)
	for _, p := range points {
		buckets[weekKey(p.Timestamp.In(loc))]++
	}

	keys := make([][2]int, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})

	summary := WeeklySummary{Weeks: make([]WeekCount, 0, len(keys)), Trend: TrendStable}
	if len(keys) == 0 {
		return summary
	}

	counts := make([]int, len(keys))
	total := 0
	for i, k := range keys {
		counts[i] = buckets[k]
		total += counts[i]
		summary.Weeks = append(summary.Weeks, WeekCount{Year: k[0], Week: k[1], Entries: counts[i]})
	}

	summary.AvgEntriesPerWeek = round(float64(total)/float64(len(counts)), 1)
	summary.Trend = computeTrend(counts)
	return summary
}

// computeTrend compares the mean of the last two weekly counts with the mean
// of the earlier ones. With exactly two weeks the first week is the earlier
// side. A recent mean at least 1.2x the earlier one is increasing; at most
// 0.8x is decreasing.
func computeTrend(weeklyCounts []int) string {
	n := len(weeklyCounts)
	if n < 2 {
		return TrendStable
	}

	recentSum := weeklyCounts[n-1] + weeklyCounts[n-2]
	recentLen := 2

	older := weeklyCounts[:n-2]
	if n == 2 {
		older = weeklyCounts[:1]
	}
	olderSum := 0
	for _, c := range older {
		olderSum += c
	}
	olderLen := len(older)

	if olderSum == 0 {
		return TrendStable
	}

	// Cross-multiplied so the 1.2 and 0.8 thresholds compare exactly.
	recentScaled := recentSum * olderLen * 10
	olderScaled := olderSum * recentLen
	switch {
	case recentScaled >= olderScaled*12:
		return TrendIncreasing
	case recentScaled <= olderScaled*8:
		return TrendDecreasing
	default:
		return TrendStable
	}
}
