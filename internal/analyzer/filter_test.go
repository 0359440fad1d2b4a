package analyzer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSessionType(t *testing.T) {
	assert.Equal(t, TypeBreak, ParseSessionType("break"))
	assert.Equal(t, TypeCoding, ParseSessionType("Break"))
	assert.Equal(t, TypeCoding, ParseSessionType(" break "))
	assert.Equal(t, TypeCoding, ParseSessionType("coding"))
	assert.Equal(t, TypeCoding, ParseSessionType(""))
	assert.Equal(t, TypeCoding, ParseSessionType("meeting"))
}

func TestParsePeriod(t *testing.T) {
	for in, want := range map[string]Period{
		"":         PeriodAll,
		"all":      PeriodAll,
		"today":    PeriodToday,
		"TODAY":    PeriodToday,
		"week":     PeriodWeek,
		"thisWeek": PeriodWeek,
	} {
		got, err := ParsePeriod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParsePeriod("month")
	assert.Error(t, err)
}

func TestFilterSessions(t *testing.T) {
	// Wednesday.
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	sessions := []Session{
		{ID: "today", StartTime: time.Date(2026, 3, 4, 8, 0, 0, 0, time.UTC)},
		{ID: "sunday", StartTime: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
		{ID: "last-week", StartTime: time.Date(2026, 2, 27, 9, 0, 0, 0, time.UTC)},
	}

	ids := func(ss []Session) []string {
		var out []string
		for _, s := range ss {
			out = append(out, s.ID)
		}
		return out
	}

	assert.Equal(t, []string{"today", "sunday", "last-week"}, ids(FilterSessions(sessions, PeriodAll, now)))
	assert.Equal(t, []string{"today"}, ids(FilterSessions(sessions, PeriodToday, now)))
	assert.Equal(t, []string{"today", "sunday"}, ids(FilterSessions(sessions, PeriodWeek, now)))
	assert.Empty(t, FilterSessions(nil, PeriodToday, now))
}

func TestAnalyzeVelocity(t *testing.T) {
	daily := mustAggregate(t,
		coding("2026-02-20", 100),
		coding("2026-03-02", 30),
		breakAt("2026-03-02", 10),
		coding("2026-03-03", 50),
		breakAt("2026-03-04", 20),
	)
	now := at("2026-03-04", 12)

	all := AnalyzeVelocity(daily, 0, now)
	assert.Equal(t, 5, all.TotalSessions)
	assert.Equal(t, 3, all.ActiveDays)
	assert.Equal(t, 180.0, all.CodingMinutes)
	assert.Equal(t, 60.0, all.AvgCodingPerActiveDay)

	week := AnalyzeVelocity(daily, 7, now)
	assert.Equal(t, 7, week.Days)
	assert.Equal(t, 4, week.TotalSessions)
	assert.Equal(t, 2, week.ActiveDays)
	assert.Equal(t, 80.0, week.CodingMinutes)
	assert.Equal(t, 30.0, week.BreakMinutes)
	assert.InDelta(t, 30.0/110.0, week.BreakRatio, 1e-9)

	today := AnalyzeVelocity(daily, 1, now)
	assert.Equal(t, 0, today.ActiveDays)
	assert.Equal(t, 20.0, today.BreakMinutes)
}

func TestAnalyzeVelocity_Empty(t *testing.T) {
	m := AnalyzeVelocity(nil, 7, at("2026-03-04", 12))
	assert.Zero(t, m.TotalSessions)
	assert.Zero(t, m.AvgCodingPerActiveDay)
	assert.Zero(t, m.BreakRatio)
}

func TestAnalyzeWeekly(t *testing.T) {
	daily := mustAggregate(t,
		coding("2026-03-01", 10), // Sunday
		coding("2026-03-07", 20), // Saturday, same week
		breakAt("2026-03-07", 5),
		coding("2026-03-08", 40), // next Sunday
	)

	weeks := AnalyzeWeekly(daily)
	require.Len(t, weeks, 2)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), weeks[0].WeekStart)
	assert.Equal(t, 30.0, weeks[0].Coding)
	assert.Equal(t, 5.0, weeks[0].Break)
	assert.Equal(t, 2, weeks[0].ActiveDays)
	assert.Equal(t, 2, weeks[0].CodingSessions)
	assert.Equal(t, time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), weeks[1].WeekStart)
	assert.Equal(t, 40.0, weeks[1].Coding)
}
