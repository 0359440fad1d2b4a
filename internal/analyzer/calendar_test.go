package analyzer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDayKey(t *testing.T) {
	assert.Equal(t, "2026-03-02", DayKey(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2026-03-02", DayKey(time.Date(2026, 3, 2, 23, 59, 59, 0, time.UTC)))

	tokyo := time.FixedZone("JST", 9*3600)
	assert.Equal(t, "2026-03-01", DayKey(time.Date(2026, 3, 2, 8, 0, 0, 0, tokyo)))
}

func TestIsToday(t *testing.T) {
	now := time.Date(2026, 3, 4, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"start of day", time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), true},
		{"end of day", time.Date(2026, 3, 4, 23, 59, 59, 0, time.UTC), true},
		{"yesterday", time.Date(2026, 3, 3, 23, 59, 59, 0, time.UTC), false},
		{"tomorrow", time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), false},
		{"same day last year", time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC), false},
		{"same day next month", time.Date(2026, 4, 4, 12, 0, 0, 0, time.UTC), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsToday(tt.t, now))
		})
	}
}

func TestIsToday_UsesLocalCalendar(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	now := time.Date(2026, 3, 4, 22, 0, 0, 0, est)

	// 02:30 UTC on the 5th is still the 4th in EST.
	assert.True(t, IsToday(time.Date(2026, 3, 5, 2, 30, 0, 0, time.UTC), now))
	// But the UTC day bucket disagrees.
	assert.Equal(t, "2026-03-05", DayKey(now))
}

func TestIsThisWeek(t *testing.T) {
	// Wednesday 2026-03-04; the week runs Sunday 03-01 through Saturday 03-07.
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"sunday start", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), true},
		{"saturday end", time.Date(2026, 3, 7, 23, 59, 59, 0, time.UTC), true},
		{"now", now, true},
		{"previous saturday", time.Date(2026, 2, 28, 23, 59, 59, 0, time.UTC), false},
		{"next sunday", time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsThisWeek(tt.t, now))
		})
	}
}

func TestIsThisWeek_OnSunday(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, IsThisWeek(time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC), now))
	assert.False(t, IsThisWeek(time.Date(2026, 2, 28, 12, 0, 0, 0, time.UTC), now))
}

func TestWeekBounds_AcrossMonth(t *testing.T) {
	// Tuesday 2026-03-31.
	start, end := WeekBounds(time.Date(2026, 3, 31, 9, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 3, 29, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 4, 4, 23, 59, 59, 999999999, time.UTC), end)
}
