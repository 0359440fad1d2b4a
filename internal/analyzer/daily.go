package analyzer

import (
	"sort"
	"time"
)

// dayBucket accumulates one day's sessions before finalization.
type dayBucket struct {
	agg                 DailyAggregate
	totalCodingDuration float64
}

// Aggregate folds sessions into per-day totals keyed by UTC calendar date
// (YYYY-MM-DD). Days without sessions are absent from the result. Input order
// does not matter and duplicate records are summed.
//
// A session with a zero StartTime fails the whole call with an error wrapping
// ErrInvalidInput; no partial result is returned.
func Aggregate(sessions []Session) (map[string]DailyAggregate, error) {
	buckets := make(map[string]*dayBucket)

	for i, s := range sessions {
		if s.StartTime.IsZero() {
			return nil, &InvalidSessionError{Index: i, ID: s.ID, Reason: "missing start time"}
		}

		key := DayKey(s.StartTime)
		b, ok := buckets[key]
		if !ok {
			b = &dayBucket{}
			buckets[key] = b
		}

		if s.IsBreak() {
			b.agg.Break += s.DurationMinutes
			b.agg.BreakCount++
		} else {
			b.agg.Coding += s.DurationMinutes
			b.agg.CodingSessionCount++
			b.totalCodingDuration += s.DurationMinutes
		}
	}

	daily := make(map[string]DailyAggregate, len(buckets))
	for key, b := range buckets {
		agg := b.agg
		agg.Total = agg.Coding + agg.Break
		if agg.CodingSessionCount > 0 {
			agg.AverageSessionLength = b.totalCodingDuration / float64(agg.CodingSessionCount)
		}
		// The aggregator has no streak context, so the streak term is zero.
		agg.DailyScore = DefaultWeights.Score(agg.Coding, 0, agg.BreakCount)
		daily[key] = agg
	}

	return daily, nil
}

// SortedDays returns the keys of daily in chronological order.
func SortedDays(daily map[string]DailyAggregate) []string {
	keys := make([]string, 0, len(daily))
	for k := range daily {
		keys = append(keys, k)
	}
	// YYYY-MM-DD sorts lexicographically in date order.
	sort.Strings(keys)
	return keys
}

// DailySeries flattens daily into a chronological slice, one entry per
// logged day.
func DailySeries(daily map[string]DailyAggregate) []DaySummary {
	days := SortedDays(daily)
	series := make([]DaySummary, 0, len(days))
	for _, d := range days {
		series = append(series, DaySummary{Date: d, DailyAggregate: daily[d]})
	}
	return series
}

// TrailingSeries returns the DailySeries entries for the last days calendar
// days ending on now's UTC day. days <= 0 returns the whole series. Entries
// after now are kept.
func TrailingSeries(daily map[string]DailyAggregate, days int, now time.Time) []DaySummary {
	series := DailySeries(daily)
	if days <= 0 {
		return series
	}
	cutoff := DayKey(now.AddDate(0, 0, -(days - 1)))
	i := sort.Search(len(series), func(i int) bool { return series[i].Date >= cutoff })
	return series[i:]
}
