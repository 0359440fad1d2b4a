package app

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/devpulse/internal/output"
	"github.com/blackwell-systems/devpulse/internal/store"
	"github.com/blackwell-systems/devpulse/internal/suggest"
)

var (
	suggestLimit    int
	suggestCategory string
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Generate ranked habit recommendations",
	Long: `Analyze your logged sessions, streaks, and recent snapshots to produce
ranked recommendations: keeping a streak alive, reaching the daily goal,
taking (or merging) breaks, and spotting regressions between 'devpulse track'
snapshots.`,
	Args: cobra.NoArgs,
	RunE: runSuggest,
}

func init() {
	suggestCmd.Flags().IntVar(&suggestLimit, "limit", 10, "Maximum number of suggestions to show")
	suggestCmd.Flags().StringVar(&suggestCategory, "category", "", "Filter by category (streak, goal, breaks, sessions, consistency, tracking, onboarding)")
	rootCmd.AddCommand(suggestCmd)
}

// metricTrends maps each metric to "improving" or "regressing" between the
// two most recent snapshots. Unchanged metrics are left out.
func metricTrends(db *store.DB) (map[string]string, error) {
	latest, err := db.GetSnapshotN(1)
	if err != nil || latest == nil {
		return nil, err
	}
	prev, err := db.GetSnapshotN(2)
	if err != nil || prev == nil {
		return nil, err
	}
	currMetrics, err := db.GetAggregateMetrics(latest.ID)
	if err != nil {
		return nil, err
	}
	prevMetrics, err := db.GetAggregateMetrics(prev.ID)
	if err != nil {
		return nil, err
	}

	trends := make(map[string]string)
	for _, d := range computeDeltas(prevMetrics, currMetrics) {
		switch d.Direction {
		case "improved":
			trends[d.Name] = "improving"
		case "regressed":
			trends[d.Name] = "regressing"
		}
	}
	return trends, nil
}

func runSuggest(cmd *cobra.Command, _ []string) error {
	cfg, db, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	sessions, err := db.AnalyzerSessions()
	if err != nil {
		return fmt.Errorf("loading sessions: %w", err)
	}
	ctx, err := suggest.NewContext(sessions, now(), cfg.Watch.DailyGoalMinutes)
	if err != nil {
		return fmt.Errorf("building analysis context: %w", err)
	}
	trends, err := metricTrends(db)
	if err != nil {
		return fmt.Errorf("loading snapshot trends: %w", err)
	}
	for k, v := range trends {
		ctx.MetricTrends[k] = v
	}

	suggestions := suggest.NewEngine().Run(ctx)
	if suggestCategory != "" {
		suggestions = filterByCategory(suggestions, suggestCategory)
	}
	if suggestLimit > 0 && len(suggestions) > suggestLimit {
		suggestions = suggestions[:suggestLimit]
	}

	if flagJSON {
		if suggestions == nil {
			suggestions = []suggest.Suggestion{}
		}
		return writeJSON(cmd.OutOrStdout(), suggestions)
	}
	renderSuggestions(cmd.OutOrStdout(), suggestions)
	return nil
}

func filterByCategory(suggestions []suggest.Suggestion, category string) []suggest.Suggestion {
	var filtered []suggest.Suggestion
	for _, s := range suggestions {
		if s.Category == category {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

func renderSuggestions(w io.Writer, suggestions []suggest.Suggestion) {
	fmt.Fprintln(w, output.Section("Suggestions"))
	fmt.Fprintln(w)

	if len(suggestions) == 0 {
		fmt.Fprintf(w, " %s\n\n", output.StyleSuccess.Render("Nothing to suggest. Keep it up."))
		return
	}

	for i, s := range suggestions {
		fmt.Fprintf(w, " %s %s %s\n",
			output.StyleBold.Render(fmt.Sprintf("%d.", i+1)),
			priorityBadge(s.Priority),
			output.StyleBold.Render(s.Title))
		fmt.Fprintf(w, "    %s\n", output.StyleMuted.Render(s.Description))
		fmt.Fprintf(w, "    %s\n\n", output.StyleMuted.Render(fmt.Sprintf("%s · impact %.1f", s.Category, s.ImpactScore)))
	}
}

func priorityBadge(p int) string {
	switch p {
	case suggest.PriorityCritical:
		return output.StyleError.Render("[critical]")
	case suggest.PriorityHigh:
		return output.StyleWarning.Render("[high]")
	case suggest.PriorityMedium:
		return output.StyleHeader.Render("[medium]")
	default:
		return output.StyleMuted.Render("[low]")
	}
}
