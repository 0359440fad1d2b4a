package app

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/blackwell-systems/devpulse/internal/analyzer"
	"github.com/blackwell-systems/devpulse/internal/output"
	"github.com/blackwell-systems/devpulse/internal/store"
)

// periodValue is a pflag.Value restricted to the listing periods.
type periodValue analyzer.Period

var _ pflag.Value = (*periodValue)(nil)

func (p *periodValue) String() string {
	if *p == "" {
		return string(analyzer.PeriodAll)
	}
	return string(*p)
}

func (p *periodValue) Set(s string) error {
	period, err := analyzer.ParsePeriod(s)
	if err != nil {
		return err
	}
	*p = periodValue(period)
	return nil
}

func (p *periodValue) Type() string {
	return "period"
}

var (
	sessionsFlagPeriod = periodValue(analyzer.PeriodAll)
	sessionsFlagLimit  int
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List logged sessions",
	Long: `List logged coding and break sessions, newest first.

Examples:
  devpulse sessions                   # every session
  devpulse sessions --period today    # only today's sessions
  devpulse sessions --period week     # this Sunday-to-Saturday week
  devpulse sessions --limit 5 --json`,
	Args: cobra.NoArgs,
	RunE: runSessions,
}

func init() {
	sessionsCmd.Flags().Var(&sessionsFlagPeriod, "period", "Period to show: all, today, week")
	sessionsCmd.Flags().IntVar(&sessionsFlagLimit, "limit", 20, "Maximum sessions to display (0 for no limit)")
	rootCmd.AddCommand(sessionsCmd)
}

// selectSessions applies the period filter and limit to rows, which must be
// newest first.
func selectSessions(rows []store.SessionRow, period analyzer.Period, limit int, ref time.Time) []store.SessionRow {
	var selected []store.SessionRow
	for _, r := range rows {
		ok := true
		switch period {
		case analyzer.PeriodToday:
			ok = analyzer.IsToday(r.StartTime, ref)
		case analyzer.PeriodWeek:
			ok = analyzer.IsThisWeek(r.StartTime, ref)
		}
		if ok {
			selected = append(selected, r)
		}
	}
	if limit > 0 && len(selected) > limit {
		selected = selected[:limit]
	}
	return selected
}

func runSessions(cmd *cobra.Command, _ []string) error {
	_, db, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	all, err := db.ListSessions(time.Time{})
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}

	period := analyzer.Period(sessionsFlagPeriod)
	rows := selectSessions(all, period, sessionsFlagLimit, now())

	if flagJSON {
		if rows == nil {
			rows = []store.SessionRow{}
		}
		return writeJSON(cmd.OutOrStdout(), rows)
	}

	w := cmd.OutOrStdout()
	if len(rows) == 0 {
		fmt.Fprintln(w, " No sessions found for period "+string(period)+".")
		return nil
	}
	renderSessions(w, rows, period)
	return nil
}

func renderSessions(w io.Writer, rows []store.SessionRow, period analyzer.Period) {
	fmt.Fprintln(w, output.Section("Sessions"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, " %s  period %s\n\n",
		output.StyleMuted.Render(fmt.Sprintf("%d sessions", len(rows))),
		output.StyleBold.Render(string(period)))

	tbl := output.NewTable("ID", "Start", "Type", "Duration", "Source", "Note")
	var coding, breaks float64
	for _, r := range rows {
		kind := output.StyleSuccess.Render(r.Type)
		if analyzer.ParseSessionType(r.Type) == analyzer.TypeBreak {
			kind = output.StyleBreak.Render(r.Type)
			breaks += r.DurationMinutes
		} else {
			coding += r.DurationMinutes
		}
		tbl.AddRow(
			shortID(r.ID),
			r.StartTime.Local().Format("Jan 02 15:04"),
			kind,
			output.FormatMinutes(r.DurationMinutes),
			r.Source,
			r.Note,
		)
	}
	tbl.Fprint(w)

	fmt.Fprintln(w)
	fmt.Fprintf(w, " %s\n", output.StyleBold.Render(fmt.Sprintf(
		"Totals: %s coding · %s break",
		output.FormatMinutes(coding), output.FormatMinutes(breaks),
	)))
	fmt.Fprintln(w)
	fmt.Fprintf(w, " %s\n", output.StyleMuted.Render("Use --period today|week to filter, --json for machine output"))
}

// shortID trims UUIDs to their first group for table display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
