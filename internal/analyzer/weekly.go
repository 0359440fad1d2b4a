package analyzer

import (
	"sort"
	"time"
)

// WeeklyTotal captures one Sunday-start week of aggregated days.
type WeeklyTotal struct {
	// WeekStart is the Sunday of the week, UTC midnight.
	WeekStart time.Time `json:"week_start"`

	// ActiveDays counts days in the week with positive coding time.
	ActiveDays int `json:"active_days"`

	Coding float64 `json:"coding"`
	Break  float64 `json:"break"`

	// CodingSessions is the sum of the days' CodingSessionCount.
	CodingSessions int `json:"coding_sessions"`
}

// AnalyzeWeekly groups daily aggregates into weeks, ordered by week start
// ascending. Keys that do not parse as dates are skipped.
func AnalyzeWeekly(daily map[string]DailyAggregate) []WeeklyTotal {
	buckets := make(map[string]*WeeklyTotal)

	for day, agg := range daily {
		t, err := ParseDayKey(day)
		if err != nil {
			continue
		}
		sunday := weekStartSunday(t)
		key := sunday.Format(dayLayout)
		wt, ok := buckets[key]
		if !ok {
			wt = &WeeklyTotal{WeekStart: sunday}
			buckets[key] = wt
		}
		wt.Coding += agg.Coding
		wt.Break += agg.Break
		wt.CodingSessions += agg.CodingSessionCount
		if agg.Coding > 0 {
			wt.ActiveDays++
		}
	}

	weeks := make([]WeeklyTotal, 0, len(buckets))
	for _, wt := range buckets {
		weeks = append(weeks, *wt)
	}
	sort.Slice(weeks, func(i, j int) bool {
		return weeks[i].WeekStart.Before(weeks[j].WeekStart)
	})
	return weeks
}

// weekStartSunday returns the Sunday 00:00:00 UTC of the week containing t.
func weekStartSunday(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day()-int(t.Weekday()), 0, 0, 0, 0, time.UTC)
}
