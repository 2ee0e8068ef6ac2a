package analyzer

import (
	"math"
	"sort"
	"time"
)

// windowStart returns local midnight days days before now. days <= 0
// means the full history and yields the zero time.
func windowStart(now time.Time, days int, loc *time.Location) time.Time {
	if days <= 0 {
		return time.Time{}
	}
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc).AddDate(0, 0, -days)
}

// civilDate returns the calendar day of t in loc, normalized to UTC midnight
// so that day arithmetic is unaffected by DST.
func civilDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// mode returns the label with the highest count. Ties go to the
// lexicographically smallest label. Empty counts yield "".
func mode(counts map[string]int) string {
	labels := make([]string, 0, len(counts))
	for l := range counts {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	best, bestN := "", 0
	for _, l := range labels {
		if counts[l] > bestN {
			best, bestN = l, counts[l]
		}
	}
	return best
}
