package analyzer

import (
	"sort"
	"time"

	"github.com/blackwell-systems/mindlens/internal/journal"
	"github.com/blackwell-systems/mindlens/internal/mood"
)

// AnalyzeMoodTrend averages the mood value of each calendar day. Days
// without entries are absent, not zero.
func AnalyzeMoodTrend(points []journal.Point, loc *time.Location) []DailyMoodSample {
	sums := make(map[string]float64)
	counts := make(map[string]int)

	for _, p := range points {
		day := p.Timestamp.In(loc).Format("2006-01-02")
		sums[day] += mood.Value(p.Emotion, p.EmotionScore)
		counts[day]++
	}

	samples := make([]DailyMoodSample, 0, len(counts))
	for day, n := range counts {
		samples = append(samples, DailyMoodSample{
			Date:       day,
			MoodScore:  round(sums[day]/float64(n), 2),
			EntryCount: n,
		})
	}
	sort.Slice(samples, func(i, j int) bool {
		return samples[i].Date < samples[j].Date
	})
	return samples
}
