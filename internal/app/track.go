package app

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/devpulse/internal/analyzer"
	"github.com/blackwell-systems/devpulse/internal/output"
	"github.com/blackwell-systems/devpulse/internal/store"
	"github.com/blackwell-systems/devpulse/internal/telemetry"
)

var (
	trackCompare int
	trackHistory int
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Snapshot and compare headline metrics over time",
	Long: `Compute the headline metrics (streaks, today's score, today's and this
week's coding time), store them as a new snapshot, and compare against an
earlier snapshot to show deltas with trend arrows.

When telemetry is enabled in config, the snapshot is also exported over
OTLP/gRPC.`,
	Args: cobra.NoArgs,
	RunE: runTrack,
}

func init() {
	trackCmd.Flags().IntVar(&trackCompare, "compare", 1, "Compare against Nth previous snapshot (1 = most recent)")
	trackCmd.Flags().IntVar(&trackHistory, "history", 0, "Show metric trends across N most recent snapshots")
	rootCmd.AddCommand(trackCmd)
}

// Headline metric names as stored in aggregate_metrics.
const (
	metricCurrentStreak  = "current_streak"
	metricLongestStreak  = "longest_streak"
	metricTodayScore     = "today_score"
	metricTodayCoding    = "today_coding_minutes"
	metricWeekCoding     = "week_coding_minutes"
	metricWeekActiveDays = "week_active_days"
	metricTotalSessions  = "total_sessions"
)

// metricDisplayOrder defines the order metrics are stored and displayed.
var metricDisplayOrder = []string{
	metricCurrentStreak,
	metricLongestStreak,
	metricTodayScore,
	metricTodayCoding,
	metricWeekCoding,
	metricWeekActiveDays,
	metricTotalSessions,
}

// metricDirection maps metric names to whether higher values are better.
// Every headline metric is better when higher.
var metricDirection = map[string]bool{
	metricCurrentStreak:  true,
	metricLongestStreak:  true,
	metricTodayScore:     true,
	metricTodayCoding:    true,
	metricWeekCoding:     true,
	metricWeekActiveDays: true,
	metricTotalSessions:  true,
}

// metricShortName returns a compact label for display.
func metricShortName(name string) string {
	short := map[string]string{
		metricCurrentStreak:  "Current streak",
		metricLongestStreak:  "Longest streak",
		metricTodayScore:     "Today's score",
		metricTodayCoding:    "Coding today (min)",
		metricWeekCoding:     "Coding 7d (min)",
		metricWeekActiveDays: "Active days 7d",
		metricTotalSessions:  "Sessions",
	}
	if s, ok := short[name]; ok {
		return s
	}
	return name
}

// buildHeadline computes the headline metrics for sessions as of the
// reference time.
func buildHeadline(sessions []analyzer.Session) (telemetry.Headline, int, error) {
	t := now()
	summary, err := analyzer.Summarize(sessions, t)
	if err != nil {
		return telemetry.Headline{}, 0, err
	}
	week := analyzer.AnalyzeVelocity(summary.Daily, 7, t)
	return telemetry.Headline{
		CurrentStreak:  summary.Streaks.Current,
		LongestStreak:  summary.Streaks.Longest,
		TodayScore:     summary.TodayScore,
		TodayCoding:    summary.Daily[analyzer.DayKey(t)].Coding,
		WeekCoding:     week.CodingMinutes,
		WeekActiveDays: week.ActiveDays,
	}, summary.TotalSessions, nil
}

// headlineMetrics flattens a headline into stored metric values, in display
// order. today_score is omitted when nothing was logged today.
func headlineMetrics(h telemetry.Headline, totalSessions int) []store.AggregateMetric {
	values := map[string]float64{
		metricCurrentStreak:  float64(h.CurrentStreak),
		metricLongestStreak:  float64(h.LongestStreak),
		metricTodayCoding:    h.TodayCoding,
		metricWeekCoding:     h.WeekCoding,
		metricWeekActiveDays: float64(h.WeekActiveDays),
		metricTotalSessions:  float64(totalSessions),
	}
	if h.TodayScore != nil {
		values[metricTodayScore] = *h.TodayScore
	}

	var metrics []store.AggregateMetric
	for _, name := range metricDisplayOrder {
		if v, ok := values[name]; ok {
			metrics = append(metrics, store.AggregateMetric{MetricName: name, MetricValue: v})
		}
	}
	return metrics
}

func runTrack(cmd *cobra.Command, _ []string) error {
	if trackCompare < 1 {
		return fmt.Errorf("--compare must be >= 1, got %d", trackCompare)
	}

	cfg, db, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	sessions, err := db.AnalyzerSessions()
	if err != nil {
		return fmt.Errorf("loading sessions: %w", err)
	}
	headline, total, err := buildHeadline(sessions)
	if err != nil {
		return err
	}

	snapshotID, err := db.RecordSnapshot("track", appVersion, headlineMetrics(headline, total))
	if err != nil {
		return fmt.Errorf("recording snapshot: %w", err)
	}

	exporter := telemetry.FromConfig(cmd.Context(), cfg.Telemetry, appVersion, logger)
	if err := exporter.Export(cmd.Context(), headline); err != nil {
		logger.Warn("telemetry export failed", "error", err)
	}
	if err := exporter.Close(cmd.Context()); err != nil {
		logger.Warn("telemetry shutdown failed", "error", err)
	}

	w := cmd.OutOrStdout()

	if trackHistory > 0 {
		if flagJSON {
			return outputHistoryJSON(w, db, trackHistory)
		}
		return renderHistory(w, db, trackHistory)
	}

	// trackCompare=1 means the immediate predecessor, which is offset 2 from
	// the newest snapshot.
	prevSnapshot, err := db.GetSnapshotN(trackCompare + 1)
	if err != nil {
		return fmt.Errorf("loading previous snapshot: %w", err)
	}
	currentSnapshot, err := db.GetSnapshot(snapshotID)
	if err != nil {
		return fmt.Errorf("loading current snapshot: %w", err)
	}

	var diff *store.SnapshotDiff
	if prevSnapshot != nil {
		prevMetrics, err := db.GetAggregateMetrics(prevSnapshot.ID)
		if err != nil {
			return fmt.Errorf("loading previous metrics: %w", err)
		}
		currMetrics, err := db.GetAggregateMetrics(snapshotID)
		if err != nil {
			return fmt.Errorf("loading current metrics: %w", err)
		}
		diff = &store.SnapshotDiff{
			Previous: prevSnapshot,
			Current:  currentSnapshot,
			Deltas:   computeDeltas(prevMetrics, currMetrics),
		}
	}

	if flagJSON {
		result := map[string]any{"snapshot": currentSnapshot}
		if diff != nil {
			result["diff"] = diff
		}
		return writeJSON(w, result)
	}
	renderTrackOutput(w, currentSnapshot, diff)
	return nil
}

// computeDeltas compares two sets of aggregate metrics. Metrics present
// only in prev are reported with a current value of 0.
func computeDeltas(prev, curr []store.AggregateMetric) []store.MetricDelta {
	prevMap := make(map[string]float64)
	for _, m := range prev {
		prevMap[m.MetricName] = m.MetricValue
	}
	seen := make(map[string]bool)

	var deltas []store.MetricDelta
	add := func(name string, prevVal, currVal float64) {
		delta := currVal - prevVal
		direction := "unchanged"
		if delta != 0 {
			higherIsBetter, known := metricDirection[name]
			if !known {
				higherIsBetter = true
			}
			if (delta > 0) == higherIsBetter {
				direction = "improved"
			} else {
				direction = "regressed"
			}
		}
		deltas = append(deltas, store.MetricDelta{
			Name:      name,
			Previous:  prevVal,
			Current:   currVal,
			Delta:     delta,
			Direction: direction,
		})
	}

	for _, m := range curr {
		seen[m.MetricName] = true
		add(m.MetricName, prevMap[m.MetricName], m.MetricValue)
	}
	for _, m := range prev {
		if !seen[m.MetricName] {
			add(m.MetricName, m.MetricValue, 0)
		}
	}
	return deltas
}

func renderTrackOutput(w io.Writer, current *store.Snapshot, diff *store.SnapshotDiff) {
	fmt.Fprintln(w, output.Section("Track: Snapshot Comparison"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, " Snapshot #%d taken at %s\n\n", current.ID, current.TakenAt.Local().Format("2006-01-02 15:04:05"))

	if diff == nil {
		fmt.Fprintln(w, " First snapshot recorded. Run 'devpulse track' again later to see trends.")
		return
	}

	fmt.Fprintf(w, " Comparing against snapshot #%d (%s)\n\n",
		diff.Previous.ID, diff.Previous.TakenAt.Local().Format("2006-01-02 15:04:05"))

	tbl := output.NewTable("Metric", "Previous", "Current", "Delta", "Trend")
	for _, d := range diff.Deltas {
		higherIsBetter, known := metricDirection[d.Name]
		if !known {
			higherIsBetter = true
		}
		tbl.AddRow(
			metricShortName(d.Name),
			fmt.Sprintf("%.1f", d.Previous),
			fmt.Sprintf("%.1f", d.Current),
			fmt.Sprintf("%+.1f", d.Delta),
			output.TrendArrow(d.Delta, higherIsBetter),
		)
	}
	tbl.Fprint(w)
}

// snapshotEntry pairs a snapshot with its stored metrics.
type snapshotEntry struct {
	Snapshot store.Snapshot          `json:"snapshot"`
	Metrics  []store.AggregateMetric `json:"metrics"`
}

// loadHistory returns up to n recent snapshots in chronological order.
func loadHistory(db *store.DB, n int) ([]snapshotEntry, error) {
	snapshots, err := db.GetRecentSnapshots(n)
	if err != nil {
		return nil, fmt.Errorf("loading snapshots: %w", err)
	}
	slices.Reverse(snapshots)

	entries := make([]snapshotEntry, 0, len(snapshots))
	for _, s := range snapshots {
		metrics, err := db.GetAggregateMetrics(s.ID)
		if err != nil {
			return nil, fmt.Errorf("loading metrics for snapshot #%d: %w", s.ID, err)
		}
		entries = append(entries, snapshotEntry{Snapshot: s, Metrics: metrics})
	}
	return entries, nil
}

// renderHistory shows a multi-snapshot timeline table.
func renderHistory(w io.Writer, db *store.DB, n int) error {
	timeline, err := loadHistory(db, n)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, output.Section("Track: Metric History"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, " Showing %d most recent snapshots\n\n", len(timeline))

	headers := []string{"Metric"}
	values := make([]map[string]float64, len(timeline))
	for i, e := range timeline {
		headers = append(headers, fmt.Sprintf("#%d %s", e.Snapshot.ID, e.Snapshot.TakenAt.Local().Format("Jan 02")))
		values[i] = make(map[string]float64, len(e.Metrics))
		for _, m := range e.Metrics {
			values[i][m.MetricName] = m.MetricValue
		}
	}
	headers = append(headers, "Trend")
	tbl := output.NewTable(headers...)

	for _, name := range metricDisplayOrder {
		row := []string{metricShortName(name)}
		var first, last float64
		for i, m := range values {
			v, ok := m[name]
			cell := "-"
			if ok {
				cell = fmt.Sprintf("%.1f", v)
			}
			if i == 0 {
				first = v
			}
			last = v
			row = append(row, cell)
		}

		trend := ""
		if len(values) >= 2 {
			trend = output.TrendArrow(last-first, metricDirection[name])
		}
		tbl.AddRow(append(row, trend)...)
	}

	tbl.Fprint(w)
	return nil
}

// outputHistoryJSON writes the history data as JSON.
func outputHistoryJSON(w io.Writer, db *store.DB, n int) error {
	entries, err := loadHistory(db, n)
	if err != nil {
		return err
	}
	return writeJSON(w, map[string]any{"history": entries})
}
