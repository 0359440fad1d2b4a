package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/devpulse/internal/analyzer"
	"github.com/blackwell-systems/devpulse/internal/config"
	"github.com/blackwell-systems/devpulse/internal/output"
	"github.com/blackwell-systems/devpulse/internal/sessionfile"
	"github.com/blackwell-systems/devpulse/internal/store"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check whether the devpulse setup is healthy",
	Long: `Run a series of health checks against your devpulse configuration,
database, and import directory. Prints a pass/fail line for each check
and a summary of how many checks passed.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// doctorCheck holds the result of a single health check.
type doctorCheck struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// doctorOutput is the JSON-serializable result of the doctor command.
type doctorOutput struct {
	Checks      []doctorCheck `json:"checks"`
	PassedCount int           `json:"passed"`
	TotalCount  int           `json:"total"`
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	cfg := appConfig

	checks := []doctorCheck{
		checkConfigFile(flagConfig),
		checkDatabase(cfg.DBPath()),
		checkSessionData(cfg.DBPath()),
		checkImportDir(cfg.ImportDir),
		checkWatchDaemon(),
		checkTelemetry(cfg.Telemetry),
	}

	passed := 0
	for _, c := range checks {
		if c.Passed {
			passed++
		}
	}

	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), doctorOutput{
			Checks:      checks,
			PassedCount: passed,
			TotalCount:  len(checks),
		})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, output.Section("Doctor"))
	fmt.Fprintln(w)
	for _, c := range checks {
		renderDoctorCheck(w, c)
	}
	fmt.Fprintln(w)

	summary := fmt.Sprintf("%d/%d checks passed", passed, len(checks))
	if passed == len(checks) {
		fmt.Fprintf(w, " %s\n\n", output.StyleSuccess.Render(summary))
	} else {
		fmt.Fprintf(w, " %s\n\n", output.StyleWarning.Render(summary))
	}
	return nil
}

// renderDoctorCheck prints a single check result line.
func renderDoctorCheck(w io.Writer, c doctorCheck) {
	indicator := output.StyleSuccess.Render(checkMark)
	if !c.Passed {
		indicator = output.StyleWarning.Render("✗")
	}
	fmt.Fprintf(w, "  %s  %-24s %s\n", indicator, c.Name, output.StyleMuted.Render(c.Message))
}

// checkConfigFile reports which config file is in effect. Running on
// defaults is not a failure.
func checkConfigFile(explicit string) doctorCheck {
	path := explicit
	if path == "" {
		path = filepath.Join(config.ConfigDir(), config.DefaultConfigFile)
	}
	if _, err := os.Stat(path); err != nil {
		if explicit != "" {
			return doctorCheck{Name: "Config file", Message: fmt.Sprintf("not found: %s", path)}
		}
		return doctorCheck{Name: "Config file", Passed: true, Message: "using defaults (" + path + " not present)"}
	}
	return doctorCheck{Name: "Config file", Passed: true, Message: path}
}

// checkDatabase opens the database and reports its schema version.
func checkDatabase(dbPath string) doctorCheck {
	if _, err := os.Stat(dbPath); err != nil {
		return doctorCheck{
			Name:    "SQLite database",
			Message: fmt.Sprintf("not found at %s (run 'devpulse log' to create)", dbPath),
		}
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return doctorCheck{Name: "SQLite database", Message: fmt.Sprintf("open failed: %v", err)}
	}
	defer func() { _ = db.Close() }()

	v, err := db.SchemaVersion()
	if err != nil {
		return doctorCheck{Name: "SQLite database", Message: fmt.Sprintf("reading schema version: %v", err)}
	}
	return doctorCheck{Name: "SQLite database", Passed: true, Message: fmt.Sprintf("%s (schema v%d)", dbPath, v)}
}

// checkSessionData verifies that stored sessions exist and aggregate
// cleanly.
func checkSessionData(dbPath string) doctorCheck {
	if _, err := os.Stat(dbPath); err != nil {
		return doctorCheck{Name: "Session data", Message: "no database yet"}
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return doctorCheck{Name: "Session data", Message: fmt.Sprintf("open failed: %v", err)}
	}
	defer func() { _ = db.Close() }()

	count, err := db.CountSessions()
	if err != nil {
		return doctorCheck{Name: "Session data", Message: fmt.Sprintf("error counting sessions: %v", err)}
	}
	if count == 0 {
		return doctorCheck{Name: "Session data", Message: "no sessions logged"}
	}
	sessions, err := db.AnalyzerSessions()
	if err != nil {
		return doctorCheck{Name: "Session data", Message: fmt.Sprintf("error reading sessions: %v", err)}
	}
	daily, err := analyzer.Aggregate(sessions)
	if err != nil {
		return doctorCheck{Name: "Session data", Message: err.Error()}
	}
	return doctorCheck{
		Name:    "Session data",
		Passed:  true,
		Message: fmt.Sprintf("%d sessions across %d days", count, len(daily)),
	}
}

// checkImportDir counts importable files in the configured import dir.
func checkImportDir(dir string) doctorCheck {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return doctorCheck{Name: "Import directory", Message: fmt.Sprintf("not readable: %s", dir)}
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() && sessionfile.Supported(e.Name()) {
			n++
		}
	}
	return doctorCheck{Name: "Import directory", Passed: true, Message: fmt.Sprintf("%s (%d session files)", dir, n)}
}

// checkWatchDaemon checks whether the watch daemon is running.
func checkWatchDaemon() doctorCheck {
	pid, err := readPID()
	if err != nil {
		return doctorCheck{Name: "Watch daemon", Message: "not running (no PID file)"}
	}
	if !processExists(pid) {
		return doctorCheck{Name: "Watch daemon", Message: fmt.Sprintf("PID %d is not running (stale PID file)", pid)}
	}
	return doctorCheck{Name: "Watch daemon", Passed: true, Message: fmt.Sprintf("running (PID %d)", pid)}
}

// checkTelemetry validates the exporter settings without dialing.
func checkTelemetry(cfg config.Telemetry) doctorCheck {
	if !cfg.Enabled {
		return doctorCheck{Name: "Telemetry", Passed: true, Message: "disabled"}
	}
	if cfg.Endpoint == "" {
		return doctorCheck{Name: "Telemetry", Message: "enabled but telemetry.endpoint is empty"}
	}
	mode := "TLS"
	if cfg.Insecure {
		mode = "insecure"
	}
	return doctorCheck{Name: "Telemetry", Passed: true, Message: fmt.Sprintf("OTLP/gRPC %s (%s)", cfg.Endpoint, mode)}
}
