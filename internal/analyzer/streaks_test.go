package analyzer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustAggregate(t *testing.T, sessions ...Session) map[string]DailyAggregate {
	t.Helper()
	daily, err := Aggregate(sessions)
	require.NoError(t, err)
	return daily
}

func TestStreaks_Empty(t *testing.T) {
	got := Streaks(map[string]DailyAggregate{}, at("2026-03-02", 12))
	assert.Equal(t, StreakResult{}, got)

	got = Streaks(nil, at("2026-03-02", 12))
	assert.Equal(t, StreakResult{}, got)
}

func TestStreaks_SingleDayToday(t *testing.T) {
	daily := mustAggregate(t, coding("2026-03-02", 20))
	assert.Equal(t, StreakResult{Current: 1, Longest: 1}, Streaks(daily, at("2026-03-02", 18)))
}

func TestStreaks_SingleDayNotToday(t *testing.T) {
	daily := mustAggregate(t, coding("2026-03-02", 20))
	assert.Equal(t, StreakResult{Current: 0, Longest: 1}, Streaks(daily, at("2026-03-04", 9)))
}

func TestStreaks_TwoDaysEndingToday(t *testing.T) {
	daily := mustAggregate(t,
		coding("2026-03-02", 30),
		breakAt("2026-03-02", 10),
		coding("2026-03-03", 45),
	)

	assert.Equal(t, StreakResult{Current: 2, Longest: 2}, Streaks(daily, at("2026-03-03", 20)))
}

func TestStreaks_TodayMissingAfterActiveDays(t *testing.T) {
	daily := mustAggregate(t,
		coding("2026-03-02", 30),
		breakAt("2026-03-02", 10),
		coding("2026-03-03", 45),
	)

	assert.Equal(t, StreakResult{Current: 0, Longest: 2}, Streaks(daily, at("2026-03-04", 8)))
}

func TestStreaks_TodayBreakOnly(t *testing.T) {
	daily := mustAggregate(t,
		coding("2026-03-01", 30),
		coding("2026-03-02", 30),
		breakAt("2026-03-03", 15),
	)

	got := Streaks(daily, at("2026-03-03", 12))
	assert.Equal(t, 0, got.Current)
	assert.Equal(t, 2, got.Longest)
}

func TestStreaks_OlderRunLongerThanCurrent(t *testing.T) {
	daily := mustAggregate(t,
		coding("2026-02-01", 10),
		coding("2026-02-02", 10),
		coding("2026-02-03", 10),
		coding("2026-02-04", 10),
		breakAt("2026-02-05", 10),
		coding("2026-03-01", 10),
		coding("2026-03-02", 10),
	)

	got := Streaks(daily, at("2026-03-02", 12))
	assert.Equal(t, 2, got.Current)
	assert.Equal(t, 4, got.Longest)
	assert.Greater(t, got.Longest, got.Current)
}

func TestStreaks_GapsOfUnloggedDaysDoNotReset(t *testing.T) {
	// Nothing was logged between these dates, so the walk sees them as
	// neighbours.
	daily := mustAggregate(t,
		coding("2026-01-10", 5),
		coding("2026-02-20", 5),
		coding("2026-03-02", 5),
	)

	assert.Equal(t, StreakResult{Current: 3, Longest: 3}, Streaks(daily, at("2026-03-02", 12)))
}

func TestStreaks_ZeroCodingDayResets(t *testing.T) {
	daily := mustAggregate(t,
		coding("2026-03-01", 5),
		coding("2026-03-02", 0),
		coding("2026-03-03", 5),
	)

	assert.Equal(t, StreakResult{Current: 1, Longest: 1}, Streaks(daily, at("2026-03-03", 12)))
}

func TestStreaks_TodayKeyUsesUTC(t *testing.T) {
	daily := mustAggregate(t, coding("2026-03-02", 5))

	// 2026-03-01 21:00 in UTC-5 is already 2026-03-02 in UTC.
	est := time.FixedZone("EST", -5*3600)
	now := time.Date(2026, 3, 1, 21, 0, 0, 0, est)
	assert.Equal(t, 1, Streaks(daily, now).Current)
}

func TestStreaks_DoesNotMutateInput(t *testing.T) {
	daily := mustAggregate(t, coding("2026-03-01", 5), coding("2026-03-02", 5))
	before := len(daily)
	_ = Streaks(daily, at("2026-03-05", 12))
	assert.Len(t, daily, before)
	assert.NotContains(t, daily, "2026-03-05")
}

func TestPendingStreak(t *testing.T) {
	daily := mustAggregate(t,
		coding("2026-03-01", 5),
		coding("2026-03-02", 5),
		breakAt("2026-03-03", 10),
	)

	// Today's break-only entry does not end the run yet.
	assert.Equal(t, 2, PendingStreak(daily, at("2026-03-03", 18)))
	assert.Zero(t, Streaks(daily, at("2026-03-03", 18)).Current)

	// Yesterday unlogged: nothing to extend.
	assert.Zero(t, PendingStreak(daily, at("2026-03-04", 9)))
	assert.Zero(t, PendingStreak(nil, at("2026-03-04", 9)))
}
