package suggest

import "sort"

// RankSuggestions sorts suggestions by ImpactScore in descending order,
// breaking ties by priority then title.
func RankSuggestions(suggestions []Suggestion) []Suggestion {
	sorted := make([]Suggestion, len(suggestions))
	copy(sorted, suggestions)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].ImpactScore != sorted[j].ImpactScore {
			return sorted[i].ImpactScore > sorted[j].ImpactScore
		}
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority < sorted[j].Priority
		}
		return sorted[i].Title < sorted[j].Title
	})
	return sorted
}

// ComputeImpact calculates an impact score for a suggestion.
// Formula: (affectedDays * frequency * minutesGained) / effort
//
// Parameters:
//   - affectedDays: number of days the pattern was seen on
//   - frequency: how often the pattern occurs (0.0-1.0)
//   - minutesGained: estimated focused minutes won back per day
//   - effort: estimated minutes of effort to change the habit
//
// Returns 0 if effort is zero to avoid division by zero.
func ComputeImpact(affectedDays int, frequency float64, minutesGained float64, effort float64) float64 {
	if effort <= 0 {
		return 0
	}
	return (float64(affectedDays) * frequency * minutesGained) / effort
}
