package store

import (
	"sort"
	"time"

	"github.com/blackwell-systems/mindlens/internal/journal"
)

const dateLayout = "2006-01-02"

// aggregateHistory folds entries into per-day, per-emotion rollup rows.
// Score is the mean confidence of the day's entries for that emotion.
func aggregateHistory(userID string, points []journal.Point, loc *time.Location) []journal.DailyEmotion {
	type key struct{ date, emotion string }
	sums := make(map[key]float64)
	counts := make(map[key]int)

	for _, p := range points {
		k := key{date: p.Timestamp.In(loc).Format(dateLayout), emotion: p.Emotion}
		sums[k] += p.EmotionScore
		counts[k]++
	}

	rows := make([]journal.DailyEmotion, 0, len(counts))
	for k, n := range counts {
		rows = append(rows, journal.DailyEmotion{
			UserID:     userID,
			Emotion:    k.emotion,
			Date:       k.date,
			Score:      sums[k] / float64(n),
			EntryCount: n,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date < rows[j].Date
		}
		return rows[i].Emotion < rows[j].Emotion
	})
	return rows
}

func sinceDate(since time.Time, loc *time.Location) string {
	if since.IsZero() {
		return ""
	}
	return since.In(loc).Format(dateLayout)
}
