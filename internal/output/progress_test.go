package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatMinutes(t *testing.T) {
	tests := map[float64]string{
		0:     "0m",
		45:    "45m",
		59.6:  "1h 00m",
		125:   "2h 05m",
		-30:   "-30m",
		-90.2: "-1h 30m",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatMinutes(in), "FormatMinutes(%v)", in)
	}
}

func TestFormatScore(t *testing.T) {
	assert.Equal(t, "N/A", FormatScore(nil))
	v := 41.5
	assert.Equal(t, "41.5", FormatScore(&v))
}

func TestGoalBar(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	assert.Equal(t, "█████░░░░░ 60/120 min", GoalBar(60, 120, 10))
	assert.Equal(t, "██████████ 200/120 min", GoalBar(200, 120, 10))
	assert.Equal(t, "░░░░░░░░░░ 0/0 min", GoalBar(0, 0, 10))
	assert.Equal(t, 20, strings.Count(GoalBar(-5, 120, 0), "░"))
}

func TestTrendArrow(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	assert.Equal(t, "─", TrendArrow(0, true))
	assert.Equal(t, "▲ +2.0", TrendArrow(2, true))
	assert.Equal(t, "▼ -1.5", TrendArrow(-1.5, false))
}

func TestStreakLabel(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	assert.Equal(t, "0 days", StreakLabel(0))
	assert.Equal(t, "1 day", StreakLabel(1))
	assert.Equal(t, "5 days", StreakLabel(5))
}

func TestShouldColor(t *testing.T) {
	assert.False(t, ShouldColor(nil, false, true))
	assert.False(t, ShouldColor(nil, true, true))

	t.Setenv("NO_COLOR", "1")
	assert.False(t, ShouldColor(nil, false, true))
}
