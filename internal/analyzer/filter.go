package analyzer

import (
	"fmt"
	"strings"
	"time"
)

// Period selects which sessions a listing shows.
type Period string

const (
	PeriodAll   Period = "all"
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
)

// ParsePeriod accepts "all", "today", "week" and the dashboard's "thisWeek".
func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return PeriodAll, nil
	case "today":
		return PeriodToday, nil
	case "week", "thisweek", "this-week":
		return PeriodWeek, nil
	default:
		return "", fmt.Errorf("unknown period %q (want all, today or week)", s)
	}
}

// FilterSessions returns the sessions that fall in period relative to now,
// preserving input order.
func FilterSessions(sessions []Session, period Period, now time.Time) []Session {
	if period == PeriodAll || period == "" {
		return sessions
	}

	var filtered []Session
	for _, s := range sessions {
		switch period {
		case PeriodToday:
			if IsToday(s.StartTime, now) {
				filtered = append(filtered, s)
			}
		case PeriodWeek:
			if IsThisWeek(s.StartTime, now) {
				filtered = append(filtered, s)
			}
		}
	}
	return filtered
}
