// Package watcher polls the session store and raises alerts when a coding
// streak is at risk, breaks, sets a record, or today's goal is reached.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/blackwell-systems/devpulse/internal/analyzer"
)

// Source supplies the sessions the watcher evaluates.
type Source interface {
	AnalyzerSessions() ([]analyzer.Session, error)
}

// Options tune alert thresholds.
type Options struct {
	// RemindAfterHour is the hour of day, in the clock's location, after
	// which a day without coding raises a streak-at-risk alert.
	RemindAfterHour int

	// DailyGoalMinutes is today's coding target. Zero disables the goal alert.
	DailyGoalMinutes float64
}

// WatchState captures the streak picture at one poll.
type WatchState struct {
	Timestamp     time.Time
	Day           string
	TotalSessions int
	TodayCoding   float64
	Streaks       analyzer.StreakResult

	// Pending is the run that ended yesterday and can still be extended
	// by coding today. It is zero once today has coding.
	Pending int
}

// Alive is the length of the run still open: today's streak, or yesterday's
// if today has no coding yet.
func (s *WatchState) Alive() int {
	return max(s.Streaks.Current, s.Pending)
}

// Alert represents a notable event detected by the watcher.
type Alert struct {
	Key     string
	Level   string // "info", "warning", "critical"
	Title   string
	Message string
	Time    time.Time
}

// Alert levels.
const (
	LevelInfo     = "info"
	LevelWarning  = "warning"
	LevelCritical = "critical"
)

// Watcher polls a Source at a regular interval and emits alerts when notable
// changes are detected.
type Watcher struct {
	source   Source
	interval time.Duration
	opts     Options
	alertFn  func(Alert)
	logger   *slog.Logger

	// Now is the clock. Tests replace it.
	Now func() time.Time

	previous *WatchState
	fired    map[string]bool
	firedDay string
}

// New creates a Watcher over source.
func New(source Source, interval time.Duration, opts Options, alertFn func(Alert), logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Watcher{
		source:   source,
		interval: interval,
		opts:     opts,
		alertFn:  alertFn,
		logger:   logger,
		Now:      time.Now,
		fired:    make(map[string]bool),
	}
}

// Run takes a baseline snapshot, then checks at every interval. Blocks until
// ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	initial, err := w.Snapshot()
	if err != nil {
		return fmt.Errorf("initial snapshot: %w", err)
	}
	w.previous = initial
	w.logger.Info("watch baseline",
		"sessions", initial.TotalSessions,
		"current_streak", initial.Streaks.Current,
		"longest_streak", initial.Streaks.Longest)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for _, a := range w.Check() {
				if w.alertFn != nil {
					w.alertFn(a)
				}
			}
		}
	}
}

// Check takes a new snapshot, compares it against the previous one, and
// returns alerts not yet raised today.
func (w *Watcher) Check() []Alert {
	curr, err := w.Snapshot()
	if err != nil {
		w.logger.Warn("watch snapshot failed", "error", err)
		return w.dedupe(w.Now(), []Alert{{
			Key:     "snapshot-failed",
			Level:   LevelWarning,
			Title:   "Snapshot failed",
			Message: fmt.Sprintf("Could not read sessions: %v", err),
			Time:    w.Now(),
		}})
	}

	raw := Evaluate(w.previous, curr, w.opts)
	w.previous = curr
	return w.dedupe(curr.Timestamp, raw)
}

// dedupe drops alerts whose key already fired on the current local day.
func (w *Watcher) dedupe(now time.Time, raw []Alert) []Alert {
	day := now.Format("2006-01-02")
	if day != w.firedDay {
		w.fired = make(map[string]bool)
		w.firedDay = day
	}

	var alerts []Alert
	for _, a := range raw {
		if w.fired[a.Key] {
			continue
		}
		w.fired[a.Key] = true
		alerts = append(alerts, a)
	}
	return alerts
}

// Snapshot reads all sessions and computes the current streak state.
func (w *Watcher) Snapshot() (*WatchState, error) {
	now := w.Now()
	sessions, err := w.source.AnalyzerSessions()
	if err != nil {
		return nil, fmt.Errorf("reading sessions: %w", err)
	}
	return BuildState(sessions, now)
}

// BuildState computes the watch state for sessions at now.
func BuildState(sessions []analyzer.Session, now time.Time) (*WatchState, error) {
	daily, err := analyzer.Aggregate(sessions)
	if err != nil {
		return nil, err
	}

	state := &WatchState{
		Timestamp:     now,
		Day:           analyzer.DayKey(now),
		TotalSessions: len(sessions),
		TodayCoding:   daily[analyzer.DayKey(now)].Coding,
		Streaks:       analyzer.Streaks(daily, now),
	}
	if state.Streaks.Current == 0 {
		state.Pending = analyzer.PendingStreak(daily, now)
	}
	return state, nil
}
