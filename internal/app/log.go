package app

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/devpulse/internal/analyzer"
	"github.com/blackwell-systems/devpulse/internal/output"
	"github.com/blackwell-systems/devpulse/internal/sessionfile"
	"github.com/blackwell-systems/devpulse/internal/store"
)

var (
	logAt   string
	logID   string
	logNote string
)

var logCmd = &cobra.Command{
	Use:   "log <coding|break> <minutes>",
	Short: "Record a coding or break session",
	Long: `Record a finished session in the devpulse database. The session starts
now unless --at gives another start time.

Examples:
  devpulse log coding 45
  devpulse log break 10
  devpulse log coding 90 --at 2026-03-02T09:00:00Z
  devpulse log coding 25 --note "code review"`,
	Args: cobra.ExactArgs(2),
	RunE: runLog,
}

func init() {
	logCmd.Flags().StringVar(&logAt, "at", "", "Session start time (RFC3339, or YYYY-MM-DD[THH:MM:SS] in UTC)")
	logCmd.Flags().StringVar(&logID, "id", "", "Session ID (default: a new UUID)")
	logCmd.Flags().StringVar(&logNote, "note", "", "Optional note")
	rootCmd.AddCommand(logCmd)
}

// parseLogArgs validates the session type and duration arguments.
func parseLogArgs(kind, minutes string) (analyzer.SessionType, float64, error) {
	var t analyzer.SessionType
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case string(analyzer.TypeCoding):
		t = analyzer.TypeCoding
	case string(analyzer.TypeBreak):
		t = analyzer.TypeBreak
	default:
		return "", 0, fmt.Errorf("session type must be coding or break, got %q", kind)
	}

	d, err := strconv.ParseFloat(minutes, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid minutes %q: %w", minutes, err)
	}
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return "", 0, fmt.Errorf("minutes must be a finite number, got %s", minutes)
	}
	if d <= 0 {
		return "", 0, fmt.Errorf("minutes must be positive, got %s", minutes)
	}
	return t, d, nil
}

func runLog(cmd *cobra.Command, args []string) error {
	kind, minutes, err := parseLogArgs(args[0], args[1])
	if err != nil {
		return err
	}

	start := now()
	if logAt != "" {
		start = sessionfile.ParseTimestamp(logAt)
		if start.IsZero() {
			return fmt.Errorf("invalid --at %q: expected RFC3339 or YYYY-MM-DD", logAt)
		}
	}

	_, db, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	row, err := db.InsertSession(store.SessionRow{
		ID:              logID,
		StartTime:       start,
		DurationMinutes: minutes,
		Type:            string(kind),
		Source:          "cli",
		Note:            logNote,
	})
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	logger.Info("session logged", "id", row.ID, "type", row.Type, "minutes", row.DurationMinutes)

	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), row)
	}

	style := output.StyleSuccess
	if kind == analyzer.TypeBreak {
		style = output.StyleBreak
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged %s %s on %s %s\n",
		output.FormatMinutes(minutes),
		style.Render(string(kind)),
		start.Local().Format(time.DateOnly),
		output.StyleMuted.Render("("+row.ID+")"))
	return nil
}
