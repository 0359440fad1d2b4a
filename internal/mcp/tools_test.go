package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/devpulse/internal/analyzer"
)

func day(d string, hour int) time.Time {
	t, err := time.Parse("2006-01-02", d)
	if err != nil {
		panic(err)
	}
	return t.Add(time.Duration(hour) * time.Hour)
}

func fixtureSessions() []analyzer.Session {
	return []analyzer.Session{
		{ID: "c1", StartTime: day("2026-02-20", 9), DurationMinutes: 60, Type: analyzer.TypeCoding},
		{ID: "c2", StartTime: day("2026-03-02", 9), DurationMinutes: 30, Type: analyzer.TypeCoding},
		{ID: "b1", StartTime: day("2026-03-02", 10), DurationMinutes: 10, Type: analyzer.TypeBreak},
		{ID: "c3", StartTime: day("2026-03-03", 9), DurationMinutes: 45, Type: analyzer.TypeCoding},
	}
}

func newTestServer(src SessionSource, now time.Time) *Server {
	s := NewServer(src, "test")
	s.now = func() time.Time { return now }
	return s
}

// callTool invokes a registered handler directly and round-trips the result
// through JSON into out.
func callTool(t *testing.T, s *Server, name, args string, out any) error {
	t.Helper()
	tool := s.lookup(name)
	require.NotNil(t, tool, name)
	result, err := tool.Handler(context.Background(), json.RawMessage(args))
	if err != nil {
		return err
	}
	data, err := json.Marshal(result)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, out))
	return nil
}

func TestGetDailyMetrics_DefaultWindow(t *testing.T) {
	s := newTestServer(staticSource{sessions: fixtureSessions()}, day("2026-03-03", 20))

	var got DailyMetricsResult
	require.NoError(t, callTool(t, s, "get_daily_metrics", `{}`, &got))

	require.Len(t, got.Days, 2, "2026-02-20 is outside the 7-day window")
	assert.Equal(t, "2026-03-02", got.Days[0].Date)
	assert.Equal(t, 40.0, got.Days[0].Total)
	assert.Equal(t, 1, got.Days[0].BreakCount)
	assert.InDelta(t, 30*0.7-2, got.Days[0].DailyScore, 1e-9)
	assert.Equal(t, "2026-03-03", got.Days[1].Date)
	assert.Equal(t, analyzer.StreakResult{Current: 3, Longest: 3}, got.Streaks)
}

func TestGetDailyMetrics_AllDaysAndValidation(t *testing.T) {
	s := newTestServer(staticSource{sessions: fixtureSessions()}, day("2026-03-03", 20))

	var got DailyMetricsResult
	require.NoError(t, callTool(t, s, "get_daily_metrics", `{"days":0}`, &got))
	assert.Len(t, got.Days, 3)

	require.NoError(t, callTool(t, s, "get_daily_metrics", `{"days":1}`, &got))
	require.Len(t, got.Days, 1)
	assert.Equal(t, "2026-03-03", got.Days[0].Date)

	err := callTool(t, s, "get_daily_metrics", `{"days":-1}`, &got)
	assert.ErrorContains(t, err, "days must be >= 0")
}

func TestGetDailyMetrics_EmptyHistory(t *testing.T) {
	s := newTestServer(staticSource{}, day("2026-03-03", 20))

	var raw map[string]json.RawMessage
	require.NoError(t, callTool(t, s, "get_daily_metrics", `{}`, &raw))
	assert.JSONEq(t, `[]`, string(raw["days"]))
}

func TestGetStreaks(t *testing.T) {
	s := newTestServer(staticSource{sessions: fixtureSessions()}, day("2026-03-04", 8))

	var got StreaksResult
	require.NoError(t, callTool(t, s, "get_streaks", `{}`, &got))
	assert.Equal(t, StreaksResult{CurrentStreak: 0, LongestStreak: 3, ActiveToday: false}, got)
}

func TestGetToday(t *testing.T) {
	sessions := append(fixtureSessions(),
		analyzer.Session{ID: "b2", StartTime: day("2026-03-03", 12), DurationMinutes: 5, Type: analyzer.TypeBreak})
	s := newTestServer(staticSource{sessions: sessions}, day("2026-03-03", 20))

	var got TodayResult
	require.NoError(t, callTool(t, s, "get_today", `{}`, &got))
	assert.Equal(t, "2026-03-03", got.Date)
	assert.Equal(t, 45.0, got.CodingMinutes)
	assert.Equal(t, 5.0, got.BreakMinutes)
	assert.Equal(t, 1, got.CodingSessions)
	assert.Equal(t, 1, got.Breaks)
	assert.Equal(t, 3, got.CurrentStreak)
	require.NotNil(t, got.Score)
	assert.InDelta(t, 45*0.7+3*5-1*2, *got.Score, 1e-9)
}

func TestGetToday_NothingLogged(t *testing.T) {
	s := newTestServer(staticSource{sessions: fixtureSessions()}, day("2026-03-10", 9))

	var raw map[string]json.RawMessage
	require.NoError(t, callTool(t, s, "get_today", `{}`, &raw))
	assert.Equal(t, "null", string(raw["score"]))
	assert.Equal(t, "0", string(raw["coding_minutes"]))
}

func TestGetRecentSessions(t *testing.T) {
	s := newTestServer(staticSource{sessions: fixtureSessions()}, day("2026-03-03", 20))

	var got RecentSessionsResult
	require.NoError(t, callTool(t, s, "get_recent_sessions", `{"n":2}`, &got))
	require.Len(t, got.Sessions, 2)
	assert.Equal(t, "c3", got.Sessions[0].ID)
	assert.Equal(t, "b1", got.Sessions[1].ID)
	assert.Equal(t, "break", got.Sessions[1].Type)

	require.NoError(t, callTool(t, s, "get_recent_sessions", `{}`, &got))
	assert.Len(t, got.Sessions, 4)
}

func TestTools_SourceError(t *testing.T) {
	s := newTestServer(staticSource{err: errors.New("db closed")}, day("2026-03-03", 20))

	for _, name := range []string{"get_daily_metrics", "get_streaks", "get_today", "get_recent_sessions"} {
		var out any
		err := callTool(t, s, name, `{}`, &out)
		assert.ErrorContains(t, err, "db closed", name)
	}
}

func TestTools_InvalidSession(t *testing.T) {
	s := newTestServer(staticSource{sessions: []analyzer.Session{{ID: "x"}}}, day("2026-03-03", 20))

	var out any
	err := callTool(t, s, "get_streaks", `{}`, &out)
	assert.ErrorIs(t, err, analyzer.ErrInvalidInput)
}
