package analyzer

import "time"

// dayLayout is the calendar-date key format used for daily buckets.
const dayLayout = "2006-01-02"

// DayKey returns the UTC calendar date of t as YYYY-MM-DD.
//
// NOTE: day buckets use the UTC calendar while IsToday and IsThisWeek use the
// local calendar of the reference time. Near midnight a session can be "today"
// locally but land in yesterday's or tomorrow's UTC bucket.
func DayKey(t time.Time) string {
	return t.UTC().Format(dayLayout)
}

// ParseDayKey parses a YYYY-MM-DD key back into a UTC midnight time.
func ParseDayKey(key string) (time.Time, error) {
	return time.ParseInLocation(dayLayout, key, time.UTC)
}

// IsToday reports whether t falls on the same calendar day as now, in now's
// location.
func IsToday(t, now time.Time) bool {
	t = t.In(now.Location())
	ty, tm, td := t.Date()
	ny, nm, nd := now.Date()
	return ty == ny && tm == nm && td == nd
}

// IsThisWeek reports whether t falls within the Sunday-to-Saturday week that
// contains now, in now's location. Both ends are inclusive.
func IsThisWeek(t, now time.Time) bool {
	start, end := WeekBounds(now)
	return !t.Before(start) && !t.After(end)
}

// WeekBounds returns Sunday 00:00 and Saturday 23:59:59.999999999 of the week
// containing now, in now's location.
func WeekBounds(now time.Time) (time.Time, time.Time) {
	y, m, d := now.Date()
	loc := now.Location()
	start := time.Date(y, m, d-int(now.Weekday()), 0, 0, 0, 0, loc)
	sy, sm, sd := start.Date()
	end := time.Date(sy, sm, sd+6, 23, 59, 59, int(time.Second-time.Nanosecond), loc)
	return start, end
}
