package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/blackwell-systems/mindlens/internal/analyzer"
	"github.com/blackwell-systems/mindlens/internal/suggest"
)

// DistributionResult holds label counts for a trailing window.
type DistributionResult struct {
	UserID       string                `json:"user_id"`
	Days         int                   `json:"days"`
	Total        int                   `json:"total"`
	Distribution analyzer.Distribution `json:"distribution"`
}

// MoodTrendResult holds one mood sample per day with entries.
type MoodTrendResult struct {
	UserID string                     `json:"user_id"`
	Days   int                        `json:"days"`
	Trend  []analyzer.DailyMoodSample `json:"mood_trend"`
}

// StreakResult holds the consecutive-day writing streak.
type StreakResult struct {
	UserID string `json:"user_id"`
	Streak int    `json:"streak"`
}

// InsightsResult holds up to three insight strings.
type InsightsResult struct {
	UserID   string   `json:"user_id"`
	Insights []string `json:"insights"`
}

var (
	userSchema       = json.RawMessage(`{"type":"object","properties":{"user_id":{"type":"string","description":"Journal owner (defaults to the configured user)"}},"additionalProperties":false}`)
	userWindowSchema = json.RawMessage(`{"type":"object","properties":{"user_id":{"type":"string","description":"Journal owner (defaults to the configured user)"},"days":{"type":"integer","minimum":0,"description":"Trailing window in days; 0 means full history"}},"additionalProperties":false}`)
)

// toolArgs is the shared argument shape of every tool.
type toolArgs struct {
	UserID string `json:"user_id"`
	Days   *int   `json:"days"`
}

// addTools registers the analytics tool handlers on s.
func addTools(s *Server) {
	s.registerTool(toolDef{
		Name:        "get_emotion_distribution",
		Description: "Count of journal entries per emotion over the last N days (default 30), most frequent first.",
		InputSchema: userWindowSchema,
		Handler:     s.handleGetEmotionDistribution,
	})
	s.registerTool(toolDef{
		Name:        "get_mood_trend",
		Description: "Average daily mood score (0-9) over the last N days (default 30).",
		InputSchema: userWindowSchema,
		Handler:     s.handleGetMoodTrend,
	})
	s.registerTool(toolDef{
		Name:        "get_weekly_summary",
		Description: "Entries per ISO week over the last 8 weeks with the writing volume trend.",
		InputSchema: userSchema,
		Handler:     s.handleGetWeeklySummary,
	})
	s.registerTool(toolDef{
		Name:        "get_writing_streak",
		Description: "Consecutive days with at least one entry, counting back from today.",
		InputSchema: userSchema,
		Handler:     s.handleGetWritingStreak,
	})
	s.registerTool(toolDef{
		Name:        "get_emotion_patterns",
		Description: "Most common emotion per hour of day and per day of week over the last N days (default 90).",
		InputSchema: userWindowSchema,
		Handler:     s.handleGetEmotionPatterns,
	})
	s.registerTool(toolDef{
		Name:        "get_word_analysis",
		Description: "Average entry length overall and per emotion over the last N days (default 30).",
		InputSchema: userWindowSchema,
		Handler:     s.handleGetWordAnalysis,
	})
	s.registerTool(toolDef{
		Name:        "get_user_stats",
		Description: "Total entries, entries in the last 7 days and most common emotion.",
		InputSchema: userSchema,
		Handler:     s.handleGetUserStats,
	})
	s.registerTool(toolDef{
		Name:        "get_insights",
		Description: "Up to three short insights about the user's emotional and writing patterns.",
		InputSchema: userSchema,
		Handler:     s.handleGetInsights,
	})
}

// parseArgs decodes tool arguments and resolves the user and window.
func (s *Server) parseArgs(args json.RawMessage, defaultDays int) (string, int, error) {
	var params toolArgs
	if len(args) > 0 && string(args) != "null" {
		if err := json.Unmarshal(args, &params); err != nil {
			return "", 0, fmt.Errorf("invalid arguments: %w", err)
		}
	}

	user := params.UserID
	if user == "" {
		user = s.defaultUser
	}
	if user == "" {
		return "", 0, errors.New("user_id is required")
	}

	days := defaultDays
	if params.Days != nil {
		if *params.Days < 0 {
			return "", 0, errors.New("days must be non-negative")
		}
		days = *params.Days
	}
	return user, days, nil
}

func (s *Server) handleGetEmotionDistribution(ctx context.Context, args json.RawMessage) (any, error) {
	user, days, err := s.parseArgs(args, analyzer.DefaultDistributionDays)
	if err != nil {
		return nil, err
	}
	d := s.engine.EmotionDistribution(ctx, user, days)
	if d == nil {
		d = analyzer.Distribution{}
	}
	return DistributionResult{UserID: user, Days: days, Total: d.Total(), Distribution: d}, nil
}

func (s *Server) handleGetMoodTrend(ctx context.Context, args json.RawMessage) (any, error) {
	user, days, err := s.parseArgs(args, analyzer.DefaultMoodTrendDays)
	if err != nil {
		return nil, err
	}
	trend := s.engine.MoodTrend(ctx, user, days)
	if trend == nil {
		trend = []analyzer.DailyMoodSample{}
	}
	return MoodTrendResult{UserID: user, Days: days, Trend: trend}, nil
}

func (s *Server) handleGetWeeklySummary(ctx context.Context, args json.RawMessage) (any, error) {
	user, _, err := s.parseArgs(args, 0)
	if err != nil {
		return nil, err
	}
	return s.engine.WeeklySummary(ctx, user), nil
}

func (s *Server) handleGetWritingStreak(ctx context.Context, args json.RawMessage) (any, error) {
	user, _, err := s.parseArgs(args, 0)
	if err != nil {
		return nil, err
	}
	return StreakResult{UserID: user, Streak: s.engine.WritingStreak(ctx, user)}, nil
}

func (s *Server) handleGetEmotionPatterns(ctx context.Context, args json.RawMessage) (any, error) {
	user, days, err := s.parseArgs(args, analyzer.DefaultPatternDays)
	if err != nil {
		return nil, err
	}
	return s.engine.EmotionPatterns(ctx, user, days), nil
}

func (s *Server) handleGetWordAnalysis(ctx context.Context, args json.RawMessage) (any, error) {
	user, days, err := s.parseArgs(args, analyzer.DefaultWordDays)
	if err != nil {
		return nil, err
	}
	return s.engine.WordAnalysis(ctx, user, days), nil
}

func (s *Server) handleGetUserStats(ctx context.Context, args json.RawMessage) (any, error) {
	user, _, err := s.parseArgs(args, 0)
	if err != nil {
		return nil, err
	}
	return s.engine.UserStats(ctx, user), nil
}

func (s *Server) handleGetInsights(ctx context.Context, args json.RawMessage) (any, error) {
	user, _, err := s.parseArgs(args, 0)
	if err != nil {
		return nil, err
	}
	return InsightsResult{UserID: user, Insights: suggest.Generate(ctx, s.engine, user)}, nil
}
