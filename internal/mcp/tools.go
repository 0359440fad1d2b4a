package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/blackwell-systems/devpulse/internal/analyzer"
)

// DailyMetricsResult holds per-day aggregates for a trailing window.
type DailyMetricsResult struct {
	Days    []analyzer.DaySummary `json:"days"`
	Streaks analyzer.StreakResult `json:"streaks"`
}

// StreaksResult holds the current and longest streak.
type StreaksResult struct {
	CurrentStreak int  `json:"current_streak"`
	LongestStreak int  `json:"longest_streak"`
	ActiveToday   bool `json:"active_today"`
}

// TodayResult summarizes today's activity.
type TodayResult struct {
	Date           string   `json:"date"`
	CodingMinutes  float64  `json:"coding_minutes"`
	BreakMinutes   float64  `json:"break_minutes"`
	CodingSessions int      `json:"coding_sessions"`
	Breaks         int      `json:"breaks"`
	Score          *float64 `json:"score"`
	CurrentStreak  int      `json:"current_streak"`
}

// RecentSessionsResult holds the most recent sessions, newest first.
type RecentSessionsResult struct {
	Sessions []RecentSession `json:"sessions"`
}

// RecentSession is one entry of RecentSessionsResult.
type RecentSession struct {
	ID              string    `json:"id"`
	StartTime       time.Time `json:"start_time"`
	DurationMinutes float64   `json:"duration_minutes"`
	Type            string    `json:"type"`
}

const (
	defaultDays   = 7
	defaultRecent = 5
)

var (
	noArgsSchema  = json.RawMessage(`{"type":"object","properties":{},"additionalProperties":false}`)
	daysSchema    = json.RawMessage(`{"type":"object","properties":{"days":{"type":"integer","description":"Trailing days to include, counting today (default 7, 0 for all)"}},"additionalProperties":false}`)
	recentNSchema = json.RawMessage(`{"type":"object","properties":{"n":{"type":"integer","description":"Number of sessions to return (default 5)"}},"additionalProperties":false}`)
)

func addTools(s *Server) {
	s.registerTool(toolDef{
		Name:        "get_daily_metrics",
		Description: "Per-day coding and break minutes, session counts, average session length and daily score.",
		InputSchema: daysSchema,
		Handler:     s.handleGetDailyMetrics,
	})
	s.registerTool(toolDef{
		Name:        "get_streaks",
		Description: "Current and longest streak of days with coding activity.",
		InputSchema: noArgsSchema,
		Handler:     s.handleGetStreaks,
	})
	s.registerTool(toolDef{
		Name:        "get_today",
		Description: "Today's coding and break minutes and streak-aware score.",
		InputSchema: noArgsSchema,
		Handler:     s.handleGetToday,
	})
	s.registerTool(toolDef{
		Name:        "get_recent_sessions",
		Description: "Last N logged sessions, newest first.",
		InputSchema: recentNSchema,
		Handler:     s.handleGetRecentSessions,
	})
}

// summarize loads all sessions and computes the summary at the server clock.
func (s *Server) summarize(ctx context.Context) (analyzer.Summary, []analyzer.Session, time.Time, error) {
	if err := ctx.Err(); err != nil {
		return analyzer.Summary{}, nil, time.Time{}, err
	}
	sessions, err := s.source.AnalyzerSessions()
	if err != nil {
		return analyzer.Summary{}, nil, time.Time{}, fmt.Errorf("loading sessions: %w", err)
	}
	now := s.now()
	summary, err := analyzer.Summarize(sessions, now)
	if err != nil {
		return analyzer.Summary{}, nil, time.Time{}, err
	}
	return summary, sessions, now, nil
}

func (s *Server) handleGetDailyMetrics(ctx context.Context, args json.RawMessage) (any, error) {
	var params struct {
		Days *int `json:"days"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	days := defaultDays
	if params.Days != nil {
		days = *params.Days
	}
	if days < 0 {
		return nil, fmt.Errorf("days must be >= 0, got %d", days)
	}

	summary, _, now, err := s.summarize(ctx)
	if err != nil {
		return nil, err
	}

	series := analyzer.TrailingSeries(summary.Daily, days, now)
	return DailyMetricsResult{Days: series, Streaks: summary.Streaks}, nil
}

func (s *Server) handleGetStreaks(ctx context.Context, _ json.RawMessage) (any, error) {
	summary, _, _, err := s.summarize(ctx)
	if err != nil {
		return nil, err
	}
	return StreaksResult{
		CurrentStreak: summary.Streaks.Current,
		LongestStreak: summary.Streaks.Longest,
		ActiveToday:   summary.Streaks.Current > 0,
	}, nil
}

func (s *Server) handleGetToday(ctx context.Context, _ json.RawMessage) (any, error) {
	summary, _, now, err := s.summarize(ctx)
	if err != nil {
		return nil, err
	}
	key := analyzer.DayKey(now)
	day := summary.Daily[key]
	return TodayResult{
		Date:           key,
		CodingMinutes:  day.Coding,
		BreakMinutes:   day.Break,
		CodingSessions: day.CodingSessionCount,
		Breaks:         day.BreakCount,
		Score:          summary.TodayScore,
		CurrentStreak:  summary.Streaks.Current,
	}, nil
}

func (s *Server) handleGetRecentSessions(ctx context.Context, args json.RawMessage) (any, error) {
	var params struct {
		N *int `json:"n"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	n := defaultRecent
	if params.N != nil && *params.N > 0 {
		n = *params.N
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sessions, err := s.source.AnalyzerSessions()
	if err != nil {
		return nil, fmt.Errorf("loading sessions: %w", err)
	}

	sorted := make([]analyzer.Session, len(sessions))
	copy(sorted, sessions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime.After(sorted[j].StartTime)
	})
	if n > len(sorted) {
		n = len(sorted)
	}

	out := make([]RecentSession, 0, n)
	for _, sess := range sorted[:n] {
		out = append(out, RecentSession{
			ID:              sess.ID,
			StartTime:       sess.StartTime,
			DurationMinutes: sess.DurationMinutes,
			Type:            string(analyzer.ParseSessionType(string(sess.Type))),
		})
	}
	return RecentSessionsResult{Sessions: out}, nil
}
