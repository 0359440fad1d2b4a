package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level devpulse configuration.
type Config struct {
	DataDir   string    `mapstructure:"data_dir"`
	DBName    string    `mapstructure:"db_name"`
	ImportDir string    `mapstructure:"import_dir"`
	Output    Output    `mapstructure:"output"`
	Watch     Watch     `mapstructure:"watch"`
	Telemetry Telemetry `mapstructure:"telemetry"`
}

// Output defines output preferences.
type Output struct {
	Color bool `mapstructure:"color"`
	Width int  `mapstructure:"width"`
}

// Watch configures the streak watcher.
type Watch struct {
	Interval time.Duration `mapstructure:"interval"`
	// RemindAfterHour is the local hour (0-23) after which a day with no
	// coding raises a streak-at-risk alert.
	RemindAfterHour  int     `mapstructure:"remind_after_hour"`
	DailyGoalMinutes float64 `mapstructure:"daily_goal_minutes"`
	Notify           bool    `mapstructure:"notify"`
}

// Telemetry configures OTLP metric export.
type Telemetry struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Insecure bool   `mapstructure:"insecure"`
}

// DBPath returns the full path to the SQLite database.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, c.DBName)
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}
	return path
}

// Load reads configuration from the given path (or the default location)
// and returns a Config with all defaults applied. Environment variables
// prefixed with DEVPULSE_ override file values.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("data_dir", DefaultDataDir)
	v.SetDefault("db_name", DefaultDBName)
	v.SetDefault("import_dir", DefaultImportDir)
	v.SetDefault("output.color", DefaultOutput.Color)
	v.SetDefault("output.width", DefaultOutput.Width)
	v.SetDefault("watch.interval", DefaultWatch.Interval)
	v.SetDefault("watch.remind_after_hour", DefaultWatch.RemindAfterHour)
	v.SetDefault("watch.daily_goal_minutes", DefaultWatch.DailyGoalMinutes)
	v.SetDefault("watch.notify", DefaultWatch.Notify)
	v.SetDefault("telemetry.enabled", DefaultTelemetry.Enabled)
	v.SetDefault("telemetry.endpoint", DefaultTelemetry.Endpoint)
	v.SetDefault("telemetry.insecure", DefaultTelemetry.Insecure)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		v.AddConfigPath(expandPath(DefaultConfigDir))
		v.SetConfigName(strings.TrimSuffix(DefaultConfigFile, filepath.Ext(DefaultConfigFile)))
		v.SetConfigType("yaml")
	}

	// Missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.DataDir = expandPath(cfg.DataDir)
	cfg.ImportDir = expandPath(cfg.ImportDir)

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Watch.RemindAfterHour < 0 || c.Watch.RemindAfterHour > 23 {
		return fmt.Errorf("watch.remind_after_hour must be 0-23, got %d", c.Watch.RemindAfterHour)
	}
	if c.Watch.Interval <= 0 {
		return fmt.Errorf("watch.interval must be positive, got %s", c.Watch.Interval)
	}
	if c.DBName == "" {
		return errors.New("db_name must not be empty")
	}
	return nil
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}
