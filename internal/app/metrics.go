package app

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/devpulse/internal/analyzer"
	"github.com/blackwell-systems/devpulse/internal/output"
)

var metricsDays int

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show daily aggregates, streaks, and scores",
	Long: `Aggregate every logged session into per-day totals and display the
daily table, current and longest streaks, today's score, and weekly totals.

Streaks always consider the full history; --days only limits the table.`,
	Args: cobra.NoArgs,
	RunE: runMetrics,
}

func init() {
	metricsCmd.Flags().IntVar(&metricsDays, "days", 14, "Number of days to show (0 for all)")
	rootCmd.AddCommand(metricsCmd)
}

// metricsOutput is the JSON-serializable output for the metrics command.
type metricsOutput struct {
	Days          int                      `json:"days"`
	TotalSessions int                      `json:"total_sessions"`
	Series        []analyzer.DaySummary    `json:"series"`
	Streaks       analyzer.StreakResult    `json:"streaks"`
	TodayScore    *float64                 `json:"today_score"`
	Velocity      analyzer.VelocityMetrics `json:"velocity"`
	Weekly        []analyzer.WeeklyTotal   `json:"weekly"`
}

// buildMetrics computes the metrics report for sessions as of the reference
// time.
func buildMetrics(sessions []analyzer.Session, days int) (metricsOutput, error) {
	t := now()
	summary, err := analyzer.Summarize(sessions, t)
	if err != nil {
		return metricsOutput{}, err
	}
	return metricsOutput{
		Days:          days,
		TotalSessions: summary.TotalSessions,
		Series:        analyzer.TrailingSeries(summary.Daily, days, t),
		Streaks:       summary.Streaks,
		TodayScore:    summary.TodayScore,
		Velocity:      analyzer.AnalyzeVelocity(summary.Daily, days, t),
		Weekly:        analyzer.AnalyzeWeekly(summary.Daily),
	}, nil
}

func runMetrics(cmd *cobra.Command, _ []string) error {
	if metricsDays < 0 {
		return fmt.Errorf("--days must be >= 0, got %d", metricsDays)
	}

	_, db, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	sessions, err := db.AnalyzerSessions()
	if err != nil {
		return fmt.Errorf("loading sessions: %w", err)
	}

	out, err := buildMetrics(sessions, metricsDays)
	if err != nil {
		return err
	}

	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), out)
	}

	w := cmd.OutOrStdout()
	if out.TotalSessions == 0 {
		fmt.Fprintf(w, " %s\n", output.StyleMuted.Render("No sessions logged yet."))
		return nil
	}
	renderDaily(w, out.Series)
	renderStreaks(w, out.Streaks, out.TodayScore)
	renderVelocity(w, out.Velocity)
	renderWeekly(w, out.Weekly)
	return nil
}

func renderDaily(w io.Writer, series []analyzer.DaySummary) {
	fmt.Fprintln(w, output.Section("Daily"))
	if len(series) == 0 {
		fmt.Fprintf(w, " %s\n\n", output.StyleMuted.Render("No sessions in this window."))
		return
	}

	tbl := output.NewTable("Date", "Coding", "Break", "Sessions", "Breaks", "Avg", "Score")
	for _, d := range series {
		coding := output.FormatMinutes(d.Coding)
		if d.Coding <= 0 {
			coding = output.StyleMuted.Render(coding)
		}
		tbl.AddRow(
			d.Date,
			coding,
			output.FormatMinutes(d.Break),
			fmt.Sprintf("%d", d.CodingSessionCount),
			fmt.Sprintf("%d", d.BreakCount),
			output.FormatMinutes(d.AverageSessionLength),
			fmt.Sprintf("%.1f", d.DailyScore),
		)
	}
	tbl.Fprint(w)
	fmt.Fprintln(w)
}

func renderStreaks(w io.Writer, s analyzer.StreakResult, score *float64) {
	fmt.Fprintln(w, output.Section("Streaks"))

	current := output.StreakLabel(s.Current)
	if s.Current > 0 {
		current = output.StyleSuccess.Render(current)
	} else {
		current = output.StyleWarning.Render(current)
	}
	renderKV(w, "Current streak", current)
	renderKV(w, "Longest streak", output.StyleValue.Render(output.StreakLabel(s.Longest)))
	renderKV(w, "Today's score", output.StyleValue.Render(output.FormatScore(score)))
	fmt.Fprintln(w)
}

func renderVelocity(w io.Writer, v analyzer.VelocityMetrics) {
	title := "Window"
	if v.Days > 0 {
		title = fmt.Sprintf("Last %d days", v.Days)
	}
	fmt.Fprintln(w, output.Section(title))

	renderKV(w, "Sessions", output.StyleValue.Render(fmt.Sprintf("%d", v.TotalSessions)))
	renderKV(w, "Active days", output.StyleValue.Render(fmt.Sprintf("%d", v.ActiveDays)))
	renderKV(w, "Coding", output.StyleValue.Render(output.FormatMinutes(v.CodingMinutes)))
	renderKV(w, "Avg coding/active day", output.StyleValue.Render(output.FormatMinutes(v.AvgCodingPerActiveDay)))
	renderKV(w, "Break ratio", output.StyleValue.Render(fmt.Sprintf("%.0f%%", v.BreakRatio*100)))
	fmt.Fprintln(w)
}

func renderWeekly(w io.Writer, weeks []analyzer.WeeklyTotal) {
	fmt.Fprintln(w, output.Section("Weekly"))

	// Most recent weeks only.
	if len(weeks) > 8 {
		weeks = weeks[len(weeks)-8:]
	}
	tbl := output.NewTable("Week of", "Coding", "Break", "Active days", "Sessions")
	for _, wk := range weeks {
		tbl.AddRow(
			wk.WeekStart.Format("Jan 02"),
			output.FormatMinutes(wk.Coding),
			output.FormatMinutes(wk.Break),
			fmt.Sprintf("%d/7", wk.ActiveDays),
			fmt.Sprintf("%d", wk.CodingSessions),
		)
	}
	tbl.Fprint(w)
	fmt.Fprintln(w)
}
