package suggest

import (
	"fmt"
	"sort"

	"github.com/blackwell-systems/devpulse/internal/analyzer"
)

// Thresholds used by the built-in rules.
const (
	marathonMinutes   = 90.0
	minBreakRatio     = 0.10
	minWeekCoding     = 120.0
	heavyBreakCount   = 3
	minWeekActiveDays = 3
)

// StreakAtRisk warns when yesterday's run has not been extended today.
func StreakAtRisk(ctx *AnalysisContext) []Suggestion {
	if ctx.Today.Coding > 0 || ctx.PendingStreak == 0 {
		return nil
	}
	return []Suggestion{{
		Category: "streak",
		Priority: PriorityCritical,
		Title:    fmt.Sprintf("Code today to keep your %d-day streak", ctx.PendingStreak),
		Description: fmt.Sprintf(
			"You coded on each of the last %d logged days but nothing is logged for today yet. "+
				"Any coding session today keeps the streak alive and adds %.0f points to today's score.",
			ctx.PendingStreak, float64(ctx.PendingStreak+1)*analyzer.DefaultWeights.StreakBonus,
		),
		ImpactScore: ComputeImpact(ctx.PendingStreak, 1.0, 10.0, 5.0),
	}}
}

// GetStarted nudges toward the first logged session.
func GetStarted(ctx *AnalysisContext) []Suggestion {
	if ctx.TotalSessions > 0 {
		return nil
	}
	return []Suggestion{{
		Category:    "onboarding",
		Priority:    PriorityHigh,
		Title:       "Log your first session",
		Description: "No sessions are recorded yet. Run 'devpulse log coding 25' after a focused block, or 'devpulse import' to load existing session files.",
		ImpactScore: ComputeImpact(1, 1.0, 30.0, 5.0),
	}}
}

// GoalShortfall compares the week's average coding per active day with the
// configured daily goal.
func GoalShortfall(ctx *AnalysisContext) []Suggestion {
	goal := ctx.DailyGoalMinutes
	avg := ctx.Week.AvgCodingPerActiveDay
	if goal <= 0 || ctx.Week.ActiveDays == 0 || avg >= goal {
		return nil
	}
	shortfall := goal - avg
	return []Suggestion{{
		Category: "goal",
		Priority: PriorityMedium,
		Title:    fmt.Sprintf("Average %.0f min/day against a %.0f min goal", avg, goal),
		Description: fmt.Sprintf(
			"Over the last 7 days you averaged %.0f coding minutes on the %d days you coded. "+
				"One extra %.0f-minute block per day would reach the goal.",
			avg, ctx.Week.ActiveDays, shortfall,
		),
		ImpactScore: ComputeImpact(ctx.Week.ActiveDays, shortfall/goal, shortfall, 30.0),
	}}
}

// LowBreakRatio flags weeks with substantial coding and almost no breaks.
func LowBreakRatio(ctx *AnalysisContext) []Suggestion {
	if ctx.Week.CodingMinutes < minWeekCoding || ctx.Week.BreakRatio >= minBreakRatio {
		return nil
	}
	return []Suggestion{{
		Category: "breaks",
		Priority: PriorityMedium,
		Title:    "Take short breaks between coding blocks",
		Description: fmt.Sprintf(
			"Breaks were %.0f%% of logged time this week (%.0f coding minutes). "+
				"A 5-10 minute break every hour or so helps sustain focus.",
			ctx.Week.BreakRatio*100, ctx.Week.CodingMinutes,
		),
		ImpactScore: ComputeImpact(ctx.Week.ActiveDays, 0.5, 10.0, 5.0),
	}}
}

// MarathonSessions flags days whose average coding session ran long.
func MarathonSessions(ctx *AnalysisContext) []Suggestion {
	var days []string
	for _, d := range ctx.Recent {
		if d.AverageSessionLength > marathonMinutes {
			days = append(days, d.Date)
		}
	}
	if len(days) == 0 {
		return nil
	}
	return []Suggestion{{
		Category: "sessions",
		Priority: PriorityLow,
		Title:    "Split long coding sessions",
		Description: fmt.Sprintf(
			"On %d of the last 7 days your average coding session ran over %.0f minutes (%s). "+
				"Shorter blocks with a break in between are easier to sustain.",
			len(days), marathonMinutes, days[len(days)-1],
		),
		ImpactScore: ComputeImpact(len(days), float64(len(days))/7, 15.0, 10.0),
	}}
}

// BreakHeavyDays flags days with more breaks than coding sessions. Each
// break lowers the daily score.
func BreakHeavyDays(ctx *AnalysisContext) []Suggestion {
	count := 0
	extra := 0
	for _, d := range ctx.Recent {
		if d.BreakCount >= heavyBreakCount && d.BreakCount > d.CodingSessionCount {
			count++
			extra += d.BreakCount - d.CodingSessionCount
		}
	}
	if count == 0 {
		return nil
	}
	return []Suggestion{{
		Category: "breaks",
		Priority: PriorityLow,
		Title:    "Combine frequent short breaks",
		Description: fmt.Sprintf(
			"%d recent days had more breaks than coding sessions. Each break costs %.0f points, "+
				"so merging them into fewer, longer breaks recovers %.0f points.",
			count, analyzer.DefaultWeights.BreakPenalty, float64(extra)*analyzer.DefaultWeights.BreakPenalty,
		),
		ImpactScore: ComputeImpact(count, float64(count)/7, float64(extra)*analyzer.DefaultWeights.BreakPenalty, 5.0),
	}}
}

// InconsistentWeek encourages coding on more days of the week.
func InconsistentWeek(ctx *AnalysisContext) []Suggestion {
	if ctx.TotalSessions == 0 || ctx.Week.ActiveDays >= minWeekActiveDays {
		return nil
	}
	missed := 7 - ctx.Week.ActiveDays
	return []Suggestion{{
		Category: "consistency",
		Priority: PriorityMedium,
		Title:    fmt.Sprintf("Code on more days (%d of the last 7)", ctx.Week.ActiveDays),
		Description: "Streaks and the streak bonus reward consistency. " +
			"Even a short session on an otherwise idle day keeps the run going.",
		ImpactScore: ComputeImpact(missed, float64(missed)/7, 20.0, 10.0),
	}}
}

// MetricRegression reports tracked metrics that regressed between the last
// two snapshots.
func MetricRegression(ctx *AnalysisContext) []Suggestion {
	names := make([]string, 0, len(ctx.MetricTrends))
	for name := range ctx.MetricTrends {
		names = append(names, name)
	}
	sort.Strings(names)

	var suggestions []Suggestion
	for _, name := range names {
		if ctx.MetricTrends[name] != "regressing" {
			continue
		}
		suggestions = append(suggestions, Suggestion{
			Category: "tracking",
			Priority: PriorityMedium,
			Title:    fmt.Sprintf("Regression in tracked metric: %s", name),
			Description: fmt.Sprintf(
				"Metric %q dropped between your last two 'devpulse track' snapshots. "+
					"Run 'devpulse track --history 5' to see the trend.",
				name,
			),
			ImpactScore: ComputeImpact(ctx.Week.ActiveDays+1, 0.5, 3.0, 10.0),
		})
	}
	return suggestions
}
