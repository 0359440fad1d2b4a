package analyzer

import "time"

// Weights are the coefficients of the daily productivity score:
//
//	score = coding*CodingWeight + streak*StreakBonus - breaks*BreakPenalty
type Weights struct {
	CodingWeight float64 `json:"coding_weight"`
	StreakBonus  float64 `json:"streak_bonus"`
	BreakPenalty float64 `json:"break_penalty"`
}

// DefaultWeights are the coefficients used for every stored and displayed
// score.
var DefaultWeights = Weights{
	CodingWeight: 0.7,
	StreakBonus:  5,
	BreakPenalty: 2,
}

// Score computes the productivity score for a day with the given coding
// minutes, streak length, and number of breaks.
func (w Weights) Score(coding float64, streak, breaks int) float64 {
	return coding*w.CodingWeight + float64(streak)*w.StreakBonus - float64(breaks)*w.BreakPenalty
}

// TodayScore recomputes today's score with the real current streak. The
// second return value is false when today has no logged sessions.
func TodayScore(daily map[string]DailyAggregate, streak StreakResult, now time.Time) (float64, bool) {
	today, ok := daily[DayKey(now)]
	if !ok {
		return 0, false
	}
	return DefaultWeights.Score(today.Coding, streak.Current, today.BreakCount), true
}

// Summarize aggregates sessions and derives streaks and today's score in one
// pass, as a dashboard render does.
func Summarize(sessions []Session, now time.Time) (Summary, error) {
	daily, err := Aggregate(sessions)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		Daily:         daily,
		Streaks:       Streaks(daily, now),
		TotalSessions: len(sessions),
	}
	if score, ok := TodayScore(daily, summary.Streaks, now); ok {
		summary.TodayScore = &score
	}
	return summary, nil
}
