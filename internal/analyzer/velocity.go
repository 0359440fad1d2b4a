package analyzer

import "time"

// VelocityMetrics summarizes coding activity over a trailing window of days.
type VelocityMetrics struct {
	// Days is the window length. 0 means all history.
	Days int `json:"days"`

	// TotalSessions is the number of sessions in the window.
	TotalSessions int `json:"total_sessions"`

	// ActiveDays counts logged days with positive coding time.
	ActiveDays int `json:"active_days"`

	// CodingMinutes and BreakMinutes are window totals.
	CodingMinutes float64 `json:"coding_minutes"`
	BreakMinutes  float64 `json:"break_minutes"`

	// AvgCodingPerActiveDay is CodingMinutes / ActiveDays.
	AvgCodingPerActiveDay float64 `json:"avg_coding_per_active_day"`

	// BreakRatio is BreakMinutes / (CodingMinutes + BreakMinutes).
	BreakRatio float64 `json:"break_ratio"`
}

// AnalyzeVelocity computes window totals from an already aggregated daily
// map, restricted to the last N days before now. If days is 0 or negative,
// every day is included.
func AnalyzeVelocity(daily map[string]DailyAggregate, days int, now time.Time) VelocityMetrics {
	metrics := VelocityMetrics{Days: days}

	cutoff := ""
	if days > 0 {
		cutoff = DayKey(now.AddDate(0, 0, -(days - 1)))
	}

	for day, agg := range daily {
		if cutoff != "" && day < cutoff {
			continue
		}
		metrics.TotalSessions += agg.CodingSessionCount + agg.BreakCount
		metrics.CodingMinutes += agg.Coding
		metrics.BreakMinutes += agg.Break
		if agg.Coding > 0 {
			metrics.ActiveDays++
		}
	}

	if metrics.ActiveDays > 0 {
		metrics.AvgCodingPerActiveDay = metrics.CodingMinutes / float64(metrics.ActiveDays)
	}
	if total := metrics.CodingMinutes + metrics.BreakMinutes; total > 0 {
		metrics.BreakRatio = metrics.BreakMinutes / total
	}

	return metrics
}
