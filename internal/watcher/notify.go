package watcher

import (
	"fmt"
	"io"
	"os"

	"github.com/gen2brain/beeep"
)

func init() {
	beeep.AppName = "devpulse"
}

// desktop sends a desktop notification. Urgent notifications use an alert
// sound where the platform supports it.
var desktop = func(title, message string, urgent bool) error {
	if urgent {
		return beeep.Alert(title, message, "")
	}
	return beeep.Notify(title, message, "")
}

// fallbackOut receives alerts that could not be shown on the desktop.
var fallbackOut io.Writer = os.Stderr

// Notify shows alert as a desktop notification. Warning and critical alerts
// are urgent. When no notification service is reachable the alert is written
// to stderr instead.
func Notify(alert Alert) error {
	urgent := alert.Level == LevelWarning || alert.Level == LevelCritical
	if err := desktop("devpulse: "+alert.Title, alert.Message, urgent); err != nil {
		return notifyFallback(alert)
	}
	return nil
}

func notifyFallback(alert Alert) error {
	_, err := fmt.Fprintf(fallbackOut, "[%s] %s: %s\n", alert.Level, alert.Title, alert.Message)
	return err
}
