package analyzer

import (
	"sort"
	"time"

	"github.com/blackwell-systems/mindlens/internal/journal"
)

// AnalyzeDistribution counts entries per emotion label.
func AnalyzeDistribution(points []journal.Point) Distribution {
	counts := make(map[string]int)
	for _, p := range points {
		counts[p.Emotion]++
	}

	dist := make(Distribution, 0, len(counts))
	for e, n := range counts {
		dist = append(dist, EmotionCount{Emotion: e, Count: n})
	}
	sort.Slice(dist, func(i, j int) bool {
		if dist[i].Count != dist[j].Count {
			return dist[i].Count > dist[j].Count
		}
		return dist[i].Emotion < dist[j].Emotion
	})
	return dist
}

// AnalyzePatterns finds the modal emotion for each hour of day and each
// weekday, using local time in loc.
func AnalyzePatterns(points []journal.Point, loc *time.Location) Patterns {
	hourly := make(map[int]map[string]int)
	daily := make(map[int]map[string]int)

	for _, p := range points {
		t := p.Timestamp.In(loc)
		bump(hourly, t.Hour(), p.Emotion)
		bump(daily, int(t.Weekday()), p.Emotion)
	}

	return Patterns{
		Hourly: modes(hourly),
		Daily:  modes(daily),
	}
}

func bump(buckets map[int]map[string]int, key int, emotion string) {
	if buckets[key] == nil {
		buckets[key] = make(map[string]int)
	}
	buckets[key][emotion]++
}

func modes(buckets map[int]map[string]int) map[int]string {
	out := make(map[int]string, len(buckets))
	for k, counts := range buckets {
		out[k] = mode(counts)
	}
	return out
}

// AnalyzeUserStats summarizes the full history. EntriesThisWeek counts
// entries in the trailing seven days.
func AnalyzeUserStats(points []journal.Point, now time.Time, loc *time.Location) UserStats {
	weekStart := windowStart(now, StatsWeekDays, loc)
	counts := make(map[string]int)
	stats := UserStats{TotalEntries: len(points)}

	for _, p := range points {
		counts[p.Emotion]++
		if !p.Timestamp.Before(weekStart) {
			stats.EntriesThisWeek++
		}
	}

	stats.MostCommonEmotion = mode(counts)
	if stats.MostCommonEmotion == "" {
		stats.MostCommonEmotion = journal.Neutral
	}
	return stats
}
