// Package analyzer derives emotion distribution, mood trend, weekly volume,
// writing streak, time patterns and word statistics from a user's entries.
package analyzer

import "time"

// Trend directions for weekly writing volume.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// Default trailing windows, in days.
const (
	DefaultDistributionDays = 30
	DefaultMoodTrendDays    = 30
	WeeklyWindowDays        = 56
	DefaultPatternDays      = 90
	DefaultWordDays         = 30
	StatsWeekDays           = 7
)

// EmotionCount is the number of entries carrying one label.
type EmotionCount struct {
	Emotion string `json:"emotion"`
	Count   int    `json:"count"`
}

// Distribution lists label counts, highest count first. Ties are ordered
// by label.
type Distribution []EmotionCount

// Map returns the distribution as label -> count.
func (d Distribution) Map() map[string]int {
	m := make(map[string]int, len(d))
	for _, c := range d {
		m[c.Emotion] = c.Count
	}
	return m
}

// Total returns the number of entries counted.
func (d Distribution) Total() int {
	n := 0
	for _, c := range d {
		n += c.Count
	}
	return n
}

// DailyMoodSample is the mean adjusted mood of one calendar day.
type DailyMoodSample struct {
	// Date is the calendar day, formatted YYYY-MM-DD.
	Date string `json:"date"`

	// MoodScore is the mean mood value of the day's entries, 2 decimals.
	MoodScore float64 `json:"mood_score"`

	// EntryCount is the number of entries written that day.
	EntryCount int `json:"entry_count"`
}

// WeekCount is the number of entries in one ISO week.
type WeekCount struct {
	Year    int `json:"year"`
	Week    int `json:"week"`
	Entries int `json:"entries"`
}

// WeeklySummary describes writing volume over the trailing eight weeks.
type WeeklySummary struct {
	// Weeks holds the non-empty ISO weeks in ascending order.
	Weeks []WeekCount `json:"weeks"`

	// AvgEntriesPerWeek is the mean of Weeks[].Entries, 1 decimal.
	AvgEntriesPerWeek float64 `json:"avg_entries_per_week"`

	// Trend is "increasing", "decreasing" or "stable".
	Trend string `json:"trend"`
}

// Patterns holds the most frequent emotion per hour of day and per weekday.
type Patterns struct {
	// Hourly maps hour (0-23) to its modal emotion.
	Hourly map[int]string `json:"hourly_patterns"`

	// Daily maps weekday (Sunday=0) to its modal emotion.
	Daily map[int]string `json:"daily_patterns"`
}

// DailyByName returns Daily keyed by weekday name.
func (p Patterns) DailyByName() map[string]string {
	out := make(map[string]string, len(p.Daily))
	for d, e := range p.Daily {
		out[time.Weekday(d).String()] = e
	}
	return out
}

// WordStats summarizes entry length.
type WordStats struct {
	// AvgWordsPerEntry is the mean word count of entries that have one, 1 decimal.
	AvgWordsPerEntry float64 `json:"avg_words_per_entry"`

	// AvgWordsByEmotion is the mean word count per label, 1 decimal.
	AvgWordsByEmotion map[string]float64 `json:"avg_words_by_emotion"`

	// TotalEntries counts every entry in the window.
	TotalEntries int `json:"total_entries"`
}

// UserStats is the headline summary shown on the dashboard.
type UserStats struct {
	TotalEntries      int    `json:"total_entries"`
	EntriesThisWeek   int    `json:"entries_this_week"`
	MostCommonEmotion string `json:"most_common_emotion"`
}

// Report bundles every metric for one user.
type Report struct {
	UserID       string            `json:"user_id"`
	GeneratedAt  time.Time         `json:"generated_at"`
	Stats        UserStats         `json:"stats"`
	Distribution Distribution      `json:"distribution"`
	MoodTrend    []DailyMoodSample `json:"mood_trend"`
	Weekly       WeeklySummary     `json:"weekly"`
	Streak       int               `json:"streak"`
	Patterns     Patterns          `json:"patterns"`
	Words        WordStats         `json:"words"`

	// Fallbacks names the metrics that could not be computed and hold
	// their default value.
	Fallbacks []string `json:"fallbacks,omitempty"`
}
