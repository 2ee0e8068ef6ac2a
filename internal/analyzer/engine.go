package analyzer

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/mindlens/internal/journal"
)

// DefaultQueryTimeout bounds each store read made by the engine.
const DefaultQueryTimeout = 5 * time.Second

// EntrySource is the read side of the entry store used by the engine.
type EntrySource interface {
	QueryRange(ctx context.Context, userID string, since time.Time) ([]journal.Point, error)
}

// Engine computes metrics for one user at a time. Reads never fail: a
// store error is logged and the metric's default value is returned.
type Engine struct {
	src     EntrySource
	log     zerolog.Logger
	now     func() time.Time
	loc     *time.Location
	timeout time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the engine's notion of "now".
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLocation sets the location that defines calendar days.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithTimeout sets the per-query timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithLogger sets the logger used to report fallbacks.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// NewEngine creates an engine reading from src.
func NewEngine(src EntrySource, opts ...Option) *Engine {
	e := &Engine{
		src:     src,
		log:     zerolog.Nop(),
		now:     time.Now,
		loc:     time.UTC,
		timeout: DefaultQueryTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Now returns the engine clock's current time.
func (e *Engine) Now() time.Time {
	return e.now()
}

// Location returns the location that defines calendar days.
func (e *Engine) Location() *time.Location {
	return e.loc
}

// Since returns the start of a trailing window of days. Zero or negative
// days yields the zero time.
func (e *Engine) Since(days int) time.Time {
	return windowStart(e.now(), days, e.loc)
}

// fetch loads the user's entries for a trailing window. ok is false when
// the store failed and the caller must fall back.
func (e *Engine) fetch(ctx context.Context, metric, userID string, days int) (points []journal.Point, ok bool) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	since := windowStart(e.now(), days, e.loc)
	points, err := e.src.QueryRange(ctx, userID, since)
	if err != nil {
		e.log.Warn().
			Err(err).
			Str("metric", metric).
			Str("user_id", userID).
			Int("days", days).
			Msg("analytics query failed, returning default")
		return nil, false
	}
	return points, true
}

// EmotionDistribution counts labels over the trailing window.
func (e *Engine) EmotionDistribution(ctx context.Context, userID string, days int) Distribution {
	d, _ := e.emotionDistribution(ctx, userID, days)
	return d
}

func (e *Engine) emotionDistribution(ctx context.Context, userID string, days int) (Distribution, bool) {
	points, ok := e.fetch(ctx, "emotion_distribution", userID, days)
	return AnalyzeDistribution(points), ok
}

// MoodTrend returns one mood sample per calendar day with entries.
func (e *Engine) MoodTrend(ctx context.Context, userID string, days int) []DailyMoodSample {
	t, _ := e.moodTrend(ctx, userID, days)
	return t
}

func (e *Engine) moodTrend(ctx context.Context, userID string, days int) ([]DailyMoodSample, bool) {
	points, ok := e.fetch(ctx, "mood_trend", userID, days)
	return AnalyzeMoodTrend(points, e.loc), ok
}

// WeeklySummary buckets the trailing eight weeks by ISO week.
func (e *Engine) WeeklySummary(ctx context.Context, userID string) WeeklySummary {
	w, _ := e.weeklySummary(ctx, userID)
	return w
}

func (e *Engine) weeklySummary(ctx context.Context, userID string) (WeeklySummary, bool) {
	points, ok := e.fetch(ctx, "weekly_summary", userID, WeeklyWindowDays)
	return AnalyzeWeekly(points, e.loc), ok
}

// WritingStreak returns the current consecutive-day writing streak.
func (e *Engine) WritingStreak(ctx context.Context, userID string) int {
	s, _ := e.writingStreak(ctx, userID)
	return s
}

func (e *Engine) writingStreak(ctx context.Context, userID string) (int, bool) {
	points, ok := e.fetch(ctx, "writing_streak", userID, 0)
	return ComputeStreak(points, e.now(), e.loc), ok
}

// EmotionPatterns finds modal emotions by hour and weekday.
func (e *Engine) EmotionPatterns(ctx context.Context, userID string, days int) Patterns {
	p, _ := e.emotionPatterns(ctx, userID, days)
	return p
}

func (e *Engine) emotionPatterns(ctx context.Context, userID string, days int) (Patterns, bool) {
	points, ok := e.fetch(ctx, "emotion_patterns", userID, days)
	return AnalyzePatterns(points, e.loc), ok
}

// WordAnalysis summarizes entry length over the trailing window.
func (e *Engine) WordAnalysis(ctx context.Context, userID string, days int) WordStats {
	w, _ := e.wordAnalysis(ctx, userID, days)
	return w
}

func (e *Engine) wordAnalysis(ctx context.Context, userID string, days int) (WordStats, bool) {
	points, ok := e.fetch(ctx, "word_analysis", userID, days)
	return AnalyzeWords(points), ok
}

// UserStats returns the all-time headline summary.
func (e *Engine) UserStats(ctx context.Context, userID string) UserStats {
	s, _ := e.userStats(ctx, userID)
	return s
}

func (e *Engine) userStats(ctx context.Context, userID string) (UserStats, bool) {
	points, ok := e.fetch(ctx, "user_stats", userID, 0)
	return AnalyzeUserStats(points, e.now(), e.loc), ok
}

// Report computes every metric with default windows. The reads run
// concurrently; each result lands in its own field.
func (e *Engine) Report(ctx context.Context, userID string) Report {
	r := Report{UserID: userID, GeneratedAt: e.now()}

	var mu sync.Mutex
	track := func(metric string, ok bool) {
		if ok {
			return
		}
		mu.Lock()
		r.Fallbacks = append(r.Fallbacks, metric)
		mu.Unlock()
	}

	var g errgroup.Group
	g.Go(func() error {
		var ok bool
		r.Stats, ok = e.userStats(ctx, userID)
		track("user_stats", ok)
		return nil
	})
	g.Go(func() error {
		var ok bool
		r.Distribution, ok = e.emotionDistribution(ctx, userID, DefaultDistributionDays)
		track("emotion_distribution", ok)
		return nil
	})
	g.Go(func() error {
		var ok bool
		r.MoodTrend, ok = e.moodTrend(ctx, userID, DefaultMoodTrendDays)
		track("mood_trend", ok)
		return nil
	})
	g.Go(func() error {
		var ok bool
		r.Weekly, ok = e.weeklySummary(ctx, userID)
		track("weekly_summary", ok)
		return nil
	})
	g.Go(func() error {
		var ok bool
		r.Streak, ok = e.writingStreak(ctx, userID)
		track("writing_streak", ok)
		return nil
	})
	g.Go(func() error {
		var ok bool
		r.Patterns, ok = e.emotionPatterns(ctx, userID, DefaultPatternDays)
		track("emotion_patterns", ok)
		return nil
	})
	g.Go(func() error {
		var ok bool
		r.Words, ok = e.wordAnalysis(ctx, userID, DefaultWordDays)
		track("word_analysis", ok)
		return nil
	})
	_ = g.Wait()

	sort.Strings(r.Fallbacks)
	return r
}
