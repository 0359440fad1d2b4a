// Package suggest provides the habit recommendation engine and rule types.
package suggest

import (
	"time"

	"github.com/blackwell-systems/devpulse/internal/analyzer"
)

// Priority levels for suggestions.
const (
	PriorityCritical = 1
	PriorityHigh     = 2
	PriorityMedium   = 3
	PriorityLow      = 4
)

// Suggestion represents an actionable habit recommendation.
type Suggestion struct {
	Category    string  `json:"category"`
	Priority    int     `json:"priority"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	ImpactScore float64 `json:"impact_score"`
}

// AnalysisContext provides all data needed by suggest rules. Build it with
// NewContext.
type AnalysisContext struct {
	// Now is the reference time the context was built for.
	Now time.Time `json:"now"`

	// TotalSessions is the number of sessions analyzed.
	TotalSessions int `json:"total_sessions"`

	// Streaks is the streak walk as of Now.
	Streaks analyzer.StreakResult `json:"streaks"`

	// PendingStreak is the run that ended yesterday and can still be
	// extended today.
	PendingStreak int `json:"pending_streak"`

	// Today is today's aggregate, zero when nothing was logged.
	Today analyzer.DailyAggregate `json:"today"`

	// Week covers the last seven days including today.
	Week analyzer.VelocityMetrics `json:"week"`

	// Recent is the per-day series for the same seven days.
	Recent []analyzer.DaySummary `json:"recent"`

	// DailyGoalMinutes is the configured coding goal. 0 disables goal rules.
	DailyGoalMinutes float64 `json:"daily_goal_minutes"`

	// MetricTrends maps tracked metric name to "improving" or "regressing",
	// from the last two snapshots.
	MetricTrends map[string]string `json:"metric_trends"`
}

// NewContext aggregates sessions into an AnalysisContext at now.
func NewContext(sessions []analyzer.Session, now time.Time, goalMinutes float64) (*AnalysisContext, error) {
	summary, err := analyzer.Summarize(sessions, now)
	if err != nil {
		return nil, err
	}
	return &AnalysisContext{
		Now:              now,
		TotalSessions:    summary.TotalSessions,
		Streaks:          summary.Streaks,
		PendingStreak:    analyzer.PendingStreak(summary.Daily, now),
		Today:            summary.Daily[analyzer.DayKey(now)],
		Week:             analyzer.AnalyzeVelocity(summary.Daily, 7, now),
		Recent:           analyzer.TrailingSeries(summary.Daily, 7, now),
		DailyGoalMinutes: goalMinutes,
		MetricTrends:     map[string]string{},
	}, nil
}

// Rule is a function that examines the analysis context and produces
// zero or more suggestions.
type Rule func(ctx *AnalysisContext) []Suggestion
