package analyzer

import (
	"time"

	"github.com/blackwell-systems/mindlens/internal/journal"
)

// ComputeStreak returns the number of consecutive calendar days with at
// least one entry, counted back from the most recent entry day. The streak
// is 0 unless that day is today or yesterday.
func ComputeStreak(points []journal.Point, now time.Time, loc *time.Location) int {
	if len(points) == 0 {
		return 0
	}

	days := make(map[time.Time]bool)
	var latest time.Time
	for _, p := range points {
		d := civilDate(p.Timestamp, loc)
		days[d] = true
		if d.After(latest) {
			latest = d
		}
	}

	today := civilDate(now, loc)
	yesterday := today.AddDate(0, 0, -1)
	if !latest.Equal(today) && !latest.Equal(yesterday) {
		return 0
	}

	streak := 0
	for d := latest; days[d]; d = d.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}
