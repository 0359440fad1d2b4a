package output

import (
	"fmt"
	"math"
	"strings"
)

// GoalBar renders progress of value toward goal minutes.
// Example: "████████░░ 96/120 min"
func GoalBar(value, goal float64, width int) string {
	if width <= 0 {
		width = 20
	}
	ratio := 0.0
	if goal > 0 {
		ratio = value / goal
	}
	filled := int(ratio * float64(width))
	filled = max(0, min(filled, width))

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	style := StyleError
	switch {
	case ratio >= 1:
		style = StyleSuccess
	case ratio >= 0.5:
		style = StyleWarning
	}

	return fmt.Sprintf("%s %s", style.Render(bar), StyleMuted.Render(fmt.Sprintf("%.0f/%.0f min", value, goal)))
}

// StreakLabel renders a streak length, green while it is alive.
func StreakLabel(days int) string {
	unit := "days"
	if days == 1 {
		unit = "day"
	}
	s := fmt.Sprintf("%d %s", days, unit)
	if days == 0 {
		return StyleMuted.Render(s)
	}
	return StyleSuccess.Render(s)
}

// TrendArrow returns a styled trend indicator for a delta value.
// Positive delta shows an up arrow, negative shows down, zero shows a dash.
// The higherIsBetter parameter selects which direction is colored green.
func TrendArrow(delta float64, higherIsBetter bool) string {
	if delta == 0 {
		return StyleMuted.Render("─")
	}

	isPositive := delta > 0
	isImproved := isPositive == higherIsBetter

	var arrow string
	if isPositive {
		arrow = fmt.Sprintf("▲ +%.1f", delta)
	} else {
		arrow = fmt.Sprintf("▼ %.1f", delta)
	}

	if isImproved {
		return StyleSuccess.Render(arrow)
	}
	return StyleError.Render(arrow)
}

// Section returns a styled section header with a horizontal rule.
func Section(title string) string {
	header := StyleHeader.Render(title)
	rule := StyleMuted.Render(strings.Repeat("─", 66))
	return fmt.Sprintf("\n %s\n %s", header, rule)
}

// FormatMinutes renders minutes as "45m" or "2h 05m". Fractional minutes are
// rounded; negative values keep their sign.
func FormatMinutes(m float64) string {
	sign := ""
	if m < 0 {
		sign = "-"
		m = -m
	}
	total := int(math.Round(m))
	if total < 60 {
		return fmt.Sprintf("%s%dm", sign, total)
	}
	return fmt.Sprintf("%s%dh %02dm", sign, total/60, total%60)
}

// FormatScore renders a score to one decimal place, or "N/A" when absent.
func FormatScore(score *float64) string {
	if score == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", *score)
}
