package watcher

import "fmt"

// Evaluate returns the alerts implied by moving from prev to curr. prev may
// be nil on the first check, in which case only condition alerts fire.
func Evaluate(prev, curr *WatchState, opts Options) []Alert {
	var alerts []Alert

	if a, ok := streakBroken(prev, curr); ok {
		alerts = append(alerts, a)
	}
	if a, ok := streakAtRisk(curr, opts); ok {
		alerts = append(alerts, a)
	}
	if a, ok := newLongest(prev, curr); ok {
		alerts = append(alerts, a)
	}
	if a, ok := goalReached(curr, opts); ok {
		alerts = append(alerts, a)
	}

	return alerts
}

func streakBroken(prev, curr *WatchState) (Alert, bool) {
	if prev == nil || prev.Alive() == 0 || curr.Alive() > 0 {
		return Alert{}, false
	}
	return Alert{
		Key:     fmt.Sprintf("broken:%s", curr.Day),
		Level:   LevelCritical,
		Title:   "Streak broken",
		Message: fmt.Sprintf("Your %s streak ended. Longest is still %d.", days(prev.Alive()), curr.Streaks.Longest),
		Time:    curr.Timestamp,
	}, true
}

func streakAtRisk(curr *WatchState, opts Options) (Alert, bool) {
	if curr.Pending == 0 || curr.TodayCoding > 0 || curr.Timestamp.Hour() < opts.RemindAfterHour {
		return Alert{}, false
	}
	return Alert{
		Key:     fmt.Sprintf("at-risk:%s", curr.Day),
		Level:   LevelWarning,
		Title:   "Streak at risk",
		Message: fmt.Sprintf("No coding logged today. Log a session to keep your %s streak.", days(curr.Pending)),
		Time:    curr.Timestamp,
	}, true
}

func newLongest(prev, curr *WatchState) (Alert, bool) {
	if prev == nil || curr.Streaks.Longest <= prev.Streaks.Longest || curr.Streaks.Longest < 2 {
		return Alert{}, false
	}
	return Alert{
		Key:     fmt.Sprintf("longest:%d", curr.Streaks.Longest),
		Level:   LevelInfo,
		Title:   "New longest streak",
		Message: fmt.Sprintf("%s in a row, up from %d.", days(curr.Streaks.Longest), prev.Streaks.Longest),
		Time:    curr.Timestamp,
	}, true
}

func goalReached(curr *WatchState, opts Options) (Alert, bool) {
	if opts.DailyGoalMinutes <= 0 || curr.TodayCoding < opts.DailyGoalMinutes {
		return Alert{}, false
	}
	return Alert{
		Key:     fmt.Sprintf("goal:%s", curr.Day),
		Level:   LevelInfo,
		Title:   "Daily goal reached",
		Message: fmt.Sprintf("%.0f of %.0f coding minutes today.", curr.TodayCoding, opts.DailyGoalMinutes),
		Time:    curr.Timestamp,
	}, true
}

func days(n int) string {
	if n == 1 {
		return "1-day"
	}
	return fmt.Sprintf("%d-day", n)
}
