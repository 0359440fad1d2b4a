package analyzer

import "time"

// Streaks walks the logged days in chronological order and returns the
// current and longest runs of days with coding time.
//
// The walk only looks at days present in daily. It does not check that two
// consecutive keys are calendar neighbours, so days with no entry at all are
// skipped over without breaking a run. Only a logged day whose coding total
// is not positive resets it.
//
// Current is then gated on today: if now's day is missing or has no coding,
// Current is 0 whatever the walk produced.
func Streaks(daily map[string]DailyAggregate, now time.Time) StreakResult {
	var result StreakResult

	run := 0
	for _, day := range SortedDays(daily) {
		if daily[day].Coding > 0 {
			run++
		} else {
			run = 0
		}
		if run > result.Longest {
			result.Longest = run
		}
	}
	result.Current = run

	today, ok := daily[DayKey(now)]
	if !ok || today.Coding <= 0 {
		result.Current = 0
	}

	return result
}

// PendingStreak returns the run that ended yesterday and can still be
// extended today. Days from today onward are ignored, so a break logged
// today does not end the run before the day is over.
func PendingStreak(daily map[string]DailyAggregate, now time.Time) int {
	today := DayKey(now)
	past := make(map[string]DailyAggregate, len(daily))
	for k, v := range daily {
		if k < today {
			past[k] = v
		}
	}
	return Streaks(past, now.AddDate(0, 0, -1)).Current
}
