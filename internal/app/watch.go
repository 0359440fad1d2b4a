package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/devpulse/internal/config"
	"github.com/blackwell-systems/devpulse/internal/output"
	"github.com/blackwell-systems/devpulse/internal/store"
	"github.com/blackwell-systems/devpulse/internal/watcher"
)

const minWatchInterval = 30 * time.Second

var (
	watchDaemon   bool
	watchInterval time.Duration
	watchStop     bool
	watchQuiet    bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Monitor the session log and alert on streak changes",
	Long: `Run a monitor that periodically re-reads the session database and
raises alerts when your streak is at risk (nothing coded today after the
reminder hour), when it breaks, when you set a new longest streak, and when
you reach the daily coding goal. Each alert fires at most once per day.

Examples:
  devpulse watch                    # run in foreground (ctrl-c to stop)
  devpulse watch --daemon           # run in background, write PID file
  devpulse watch --interval 10m     # check every 10 minutes
  devpulse watch --stop             # stop the background daemon`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "Run in background mode (write PID file, log to file)")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "Check interval (default: watch.interval from config)")
	watchCmd.Flags().BoolVar(&watchStop, "stop", false, "Stop a running background daemon")
	watchCmd.Flags().BoolVar(&watchQuiet, "quiet", false, "Suppress terminal output, only send notifications")
	rootCmd.AddCommand(watchCmd)
}

// pidFilePath returns the path to the daemon PID file.
func pidFilePath() string {
	return filepath.Join(config.ConfigDir(), "watch.pid")
}

// logFilePath returns the path to the daemon log file.
func logFilePath() string {
	return filepath.Join(config.ConfigDir(), "watch.log")
}

// resolveInterval picks the flag value when set, the configured interval
// otherwise.
func resolveInterval(flag, configured time.Duration) (time.Duration, error) {
	interval := configured
	if flag != 0 {
		interval = flag
	}
	if interval < minWatchInterval {
		return 0, fmt.Errorf("interval must be at least %s, got %s", minWatchInterval, interval)
	}
	return interval, nil
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if watchStop {
		return stopDaemon(cmd.OutOrStdout())
	}

	interval, err := resolveInterval(watchInterval, appConfig.Watch.Interval)
	if err != nil {
		return err
	}

	cfg, db, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), shutdownSignals...)
	defer stop()

	if watchDaemon {
		return runDaemon(ctx, cfg, db, interval)
	}
	return runForeground(ctx, cmd.OutOrStdout(), cfg, db, interval)
}

func watchOptions(cfg *config.Config) watcher.Options {
	return watcher.Options{
		RemindAfterHour:  cfg.Watch.RemindAfterHour,
		DailyGoalMinutes: cfg.Watch.DailyGoalMinutes,
	}
}

// runForeground runs the watcher with live terminal output.
func runForeground(ctx context.Context, out io.Writer, cfg *config.Config, db *store.DB, interval time.Duration) error {
	if !watchQuiet {
		fmt.Fprintf(out, "devpulse watching... (checking every %s)\n", interval)
	}

	alertFn := func(a watcher.Alert) {
		if cfg.Watch.Notify {
			_ = watcher.Notify(a)
		}
		if !watchQuiet {
			printAlert(out, a)
		}
	}

	w := watcher.New(db, interval, watchOptions(cfg), alertFn, logger)

	initial, err := w.Snapshot()
	if err != nil {
		return fmt.Errorf("initial snapshot failed: %w", err)
	}
	if !watchQuiet {
		fmt.Fprintf(out, "[%s] %s %d sessions, current streak %s, longest %s\n",
			now().Format("15:04:05"),
			output.StyleSuccess.Render(checkMark),
			initial.TotalSessions,
			output.StreakLabel(initial.Streaks.Current),
			output.StreakLabel(initial.Streaks.Longest))
	}

	err = w.Run(ctx)
	if errors.Is(err, context.Canceled) {
		if !watchQuiet {
			fmt.Fprintln(out, "\nStopped.")
		}
		return nil
	}
	return err
}

// runDaemon sets up PID and log files, then runs the watcher. The actual
// backgrounding should be done by the caller (nohup, &, etc.) since Go
// cannot reliably fork.
func runDaemon(ctx context.Context, cfg *config.Config, db *store.DB, interval time.Duration) error {
	if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	if pid, err := readPID(); err == nil {
		if processExists(pid) {
			return fmt.Errorf("daemon already running (PID %d). Use --stop to stop it", pid)
		}
		// Stale PID file.
		_ = os.Remove(pidFilePath())
	}

	pid := os.Getpid()
	if err := os.WriteFile(pidFilePath(), []byte(strconv.Itoa(pid)), 0o644); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer func() { _ = os.Remove(pidFilePath()) }()

	logFile, err := os.OpenFile(logFilePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()

	fileLog := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: slog.LevelInfo}))
	fileLog.Info("devpulse daemon started", "pid", pid, "interval", interval)

	alertFn := func(a watcher.Alert) {
		if cfg.Watch.Notify {
			_ = watcher.Notify(a)
		}
		fileLog.Info("alert", "key", a.Key, "level", a.Level, "title", a.Title, "message", a.Message)
	}

	w := watcher.New(db, interval, watchOptions(cfg), alertFn, fileLog)
	err = w.Run(ctx)
	if errors.Is(err, context.Canceled) {
		fileLog.Info("daemon stopped")
		return nil
	}
	return err
}

// readPID reads the daemon PID from the PID file.
func readPID() (int, error) {
	data, err := os.ReadFile(pidFilePath())
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

// printAlert formats and prints an alert to the terminal.
func printAlert(w io.Writer, a watcher.Alert) {
	fmt.Fprintf(w, "[%s] %s %s\n", a.Time.Format("15:04:05"), alertIcon(a.Level), a.Title)
	if a.Message != "" {
		fmt.Fprintf(w, "         %s\n", a.Message)
	}
}

const checkMark = "✓"

// alertIcon returns the terminal indicator for an alert level.
func alertIcon(level string) string {
	switch level {
	case watcher.LevelCritical:
		return output.StyleError.Render("●")
	case watcher.LevelWarning:
		return output.StyleWarning.Render("⚠")
	case watcher.LevelInfo:
		return output.StyleSuccess.Render(checkMark)
	default:
		return " "
	}
}
