// Package app contains the Cobra command tree for devpulse.
package app

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/devpulse/internal/analyzer"
	"github.com/blackwell-systems/devpulse/internal/config"
	"github.com/blackwell-systems/devpulse/internal/output"
	"github.com/blackwell-systems/devpulse/internal/store"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor bool
	flagJSON    bool
	flagVerbose bool
	flagConfig  string
)

// now is the clock every command reads. Tests replace it.
var now = time.Now

// logger is configured by the root command before any subcommand runs.
var logger = slog.New(slog.DiscardHandler)

var rootCmd = &cobra.Command{
	Use:   "devpulse",
	Short: "Track coding sessions, streaks, and daily scores",
	Long: `devpulse records coding and break sessions, aggregates them per day,
and reports streaks and a daily productivity score.

Run 'devpulse' with no arguments to see today's summary.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE:              runDashboard,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/devpulse/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose output")
}

// newLogger returns a text logger on w at Info when verbose, Warn otherwise.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// appConfig is loaded by setup before any subcommand runs.
var appConfig *config.Config

// setup configures logging, config, and color for every command.
func setup(cmd *cobra.Command, _ []string) error {
	logger = newLogger(cmd.ErrOrStderr(), flagVerbose)

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	appConfig = cfg

	stdout, _ := cmd.OutOrStdout().(*os.File)
	output.SetNoColor(!output.ShouldColor(stdout, flagNoColor, cfg.Output.Color))
	return nil
}

// openStore opens the session database named by the loaded config.
func openStore() (*config.Config, *store.DB, error) {
	db, err := store.Open(appConfig.DBPath())
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	logger.Info("opened database", "path", appConfig.DBPath())
	return appConfig, db, nil
}

// writeJSON encodes v as indented JSON on w.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// dashboardOutput is the JSON shape of the bare `devpulse` command.
type dashboardOutput struct {
	Date          string                  `json:"date"`
	Today         analyzer.DailyAggregate `json:"today"`
	TodayScore    *float64                `json:"today_score"`
	Streaks       analyzer.StreakResult   `json:"streaks"`
	TotalSessions int                     `json:"total_sessions"`
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	cfg, db, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	sessions, err := db.AnalyzerSessions()
	if err != nil {
		return fmt.Errorf("loading sessions: %w", err)
	}
	t := now()
	summary, err := analyzer.Summarize(sessions, t)
	if err != nil {
		return err
	}

	key := analyzer.DayKey(t)
	out := dashboardOutput{
		Date:          key,
		Today:         summary.Daily[key],
		TodayScore:    summary.TodayScore,
		Streaks:       summary.Streaks,
		TotalSessions: summary.TotalSessions,
	}
	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), out)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "devpulse %s\n", appVersion)
	fmt.Fprintln(w, output.Section("Today "+key))
	renderKV(w, "Coding", output.GoalBar(out.Today.Coding, cfg.Watch.DailyGoalMinutes, 20))
	renderKV(w, "Breaks", fmt.Sprintf("%d (%s)", out.Today.BreakCount, output.FormatMinutes(out.Today.Break)))
	renderKV(w, "Score", output.FormatScore(out.TodayScore))
	renderKV(w, "Current streak", output.StreakLabel(out.Streaks.Current))
	renderKV(w, "Longest streak", output.StreakLabel(out.Streaks.Longest))
	fmt.Fprintln(w)

	if out.TotalSessions == 0 {
		fmt.Fprintf(w, " %s\n", output.StyleMuted.Render("No sessions yet. Try 'devpulse log coding 25' or 'devpulse import'."))
	}
	return nil
}

// renderKV prints one aligned label/value line.
func renderKV(w io.Writer, label, value string) {
	fmt.Fprintf(w, " %s %s\n", output.StyleLabel.Render(label), value)
}
