// Package config provides configuration loading and defaults for devpulse.
package config

import "time"

// DefaultConfigDir is the default location for devpulse configuration.
const DefaultConfigDir = "~/.config/devpulse"

// DefaultDataDir is where the session database lives unless overridden.
const DefaultDataDir = DefaultConfigDir

// DefaultDBName is the filename for the SQLite database.
const DefaultDBName = "devpulse.db"

// DefaultConfigFile is the filename for the YAML config.
const DefaultConfigFile = "config.yaml"

// DefaultImportDir is scanned by `devpulse import` when no paths are given.
const DefaultImportDir = "~/.local/share/devpulse/sessions"

// EnvPrefix is prepended to upper-cased config keys for environment overrides,
// e.g. DEVPULSE_WATCH_INTERVAL.
const EnvPrefix = "DEVPULSE"

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color: true,
	Width: 80,
}

// DefaultWatch holds the default watcher settings.
var DefaultWatch = Watch{
	Interval:         5 * time.Minute,
	RemindAfterHour:  18,
	DailyGoalMinutes: 120,
	Notify:           true,
}

// DefaultTelemetry leaves export off and points at a local collector.
var DefaultTelemetry = Telemetry{
	Enabled:  false,
	Endpoint: "localhost:4317",
	Insecure: true,
}
