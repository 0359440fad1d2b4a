// Package analyzer folds raw coding/break sessions into daily aggregates,
// streaks, and productivity scores.
package analyzer

import "time"

// SessionType classifies a session as coding or break time.
type SessionType string

const (
	// TypeCoding is focused coding time. It is also the default for records
	// with a missing or unrecognized type.
	TypeCoding SessionType = "coding"

	// TypeBreak is time spent away from the editor.
	TypeBreak SessionType = "break"
)

// ParseSessionType maps a raw type string to a SessionType. Only the exact
// string "break" is a break; anything else, including "Break", is coding.
func ParseSessionType(s string) SessionType {
	if s == string(TypeBreak) {
		return TypeBreak
	}
	return TypeCoding
}

// Session is a single logged coding or break interval.
type Session struct {
	// ID is an externally assigned identifier. The analyzer never reads it
	// except to name an offending record in errors.
	ID string `json:"id,omitempty"`

	// StartTime is when the session began. Only its calendar day matters.
	StartTime time.Time `json:"start_time"`

	// DurationMinutes is the session length. Zero and negative values are
	// aggregated as given.
	DurationMinutes float64 `json:"duration_minutes"`

	// Type is coding or break. The zero value counts as coding.
	Type SessionType `json:"type"`
}

// IsBreak reports whether the session is break time.
func (s Session) IsBreak() bool {
	return ParseSessionType(string(s.Type)) == TypeBreak
}

// DailyAggregate holds the totals for one calendar day.
type DailyAggregate struct {
	// Coding is the sum of coding minutes.
	Coding float64 `json:"coding"`

	// Break is the sum of break minutes.
	Break float64 `json:"break"`

	// Total is Coding + Break.
	Total float64 `json:"total"`

	// CodingSessionCount counts coding sessions only. Break sessions are
	// tracked separately in BreakCount.
	CodingSessionCount int `json:"coding_session_count"`

	// BreakCount counts break sessions.
	BreakCount int `json:"break_count"`

	// AverageSessionLength is Coding / CodingSessionCount, or 0 when the day
	// has no coding sessions.
	AverageSessionLength float64 `json:"average_session_length"`

	// DailyScore is the day's score computed with a zero streak. Use
	// TodayScore for a streak-aware value.
	DailyScore float64 `json:"daily_score"`
}

// StreakResult is the outcome of a streak walk.
type StreakResult struct {
	// Current is the run of active logged days ending today, or 0 when today
	// has no coding.
	Current int `json:"current_streak"`

	// Longest is the longest run anywhere in history. It may belong to an
	// older run than Current.
	Longest int `json:"longest_streak"`
}

// DaySummary is one row of the per-day series, in chronological order.
type DaySummary struct {
	Date string `json:"date"`
	DailyAggregate
}

// Summary combines everything the dashboard shows for a session history.
type Summary struct {
	Daily   map[string]DailyAggregate `json:"daily"`
	Streaks StreakResult              `json:"streaks"`

	// TodayScore is nil when today has no logged sessions.
	TodayScore *float64 `json:"today_score"`

	TotalSessions int `json:"total_sessions"`
}
