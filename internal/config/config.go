package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// AppName names the per-user config directory and default files
const AppName = "bigpicturetv"

// Config holds all application configuration
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// Tracker configuration
	Tracker TrackerConfig

	// Daemon configuration
	Daemon DaemonConfig

	// Settings file configuration
	Settings SettingsConfig

	// Logging configuration
	Logging LoggingConfig

	// Report configuration
	Report ReportConfig

	// Web server configuration
	Web WebConfig

	// External tool configuration
	Integrations IntegrationsConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Path          string // Path to SQLite database file
	RetentionDays int    // Transitions older than this are pruned at startup; 0 keeps everything
}

// TrackerConfig holds polling behavior configuration.
// The poll interval itself comes from the settings file (checkrate).
type TrackerConfig struct {
	PollTimeout    time.Duration // Upper bound for the window and streaming queries of a poll
	CommandTimeout time.Duration // Upper bound for a single external command
	SettleDelay    time.Duration // Quiet period after a custom title edit
}

// DaemonConfig holds daemon process configuration
type DaemonConfig struct {
	PIDFile string // Path to PID file for daemon management
	LogFile string // Where the detached daemon writes its log
}

// SettingsConfig locates the user settings file
type SettingsConfig struct {
	Path string // Path to settings.json
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Level  string // trace, debug, info, warn, error
	Format string // console or json
}

// ReportConfig holds report generation configuration
type ReportConfig struct {
	TimeZone string
}

// WebConfig holds web server configuration
type WebConfig struct {
	Host string // Host to bind web server to
	Port int    // Port for web server
}

// IntegrationsConfig points at optional external tools
type IntegrationsConfig struct {
	DisplaySwitchPath string // EnhancedDisplaySwitch.exe location (Windows)
	DiscordLauncher   string // Command used to restart Discord
	SteamLanguage     string // Overrides the detected Steam language
}

// Default returns a Config with sensible default values
func Default() *Config {
	dir := DataDir()
	return &Config{
		Database: DatabaseConfig{
			Path:          filepath.Join(dir, AppName+".db"),
			RetentionDays: 90,
		},
		Tracker: TrackerConfig{
			PollTimeout:    30 * time.Second,
			CommandTimeout: 10 * time.Second,
			SettleDelay:    2 * time.Second,
		},
		Daemon: DaemonConfig{
			PIDFile: filepath.Join(os.TempDir(), AppName+".pid"),
			LogFile: filepath.Join(dir, AppName+".log"),
		},
		Settings: SettingsConfig{
			Path: filepath.Join(dir, "settings.json"),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Report: ReportConfig{
			TimeZone: "Local",
		},
		Web: WebConfig{
			Host: "localhost",
			Port: 8787,
		},
	}
}

// DataDir returns the per-user directory holding settings, database and logs
func DataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, AppName)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Tracker.PollTimeout <= 0 {
		return fmt.Errorf("poll timeout must be positive, got %v", c.Tracker.PollTimeout)
	}

	if c.Tracker.CommandTimeout <= 0 {
		return fmt.Errorf("command timeout must be positive, got %v", c.Tracker.CommandTimeout)
	}

	if c.Tracker.CommandTimeout > c.Tracker.PollTimeout {
		return fmt.Errorf("command timeout (%v) cannot be greater than poll timeout (%v)",
			c.Tracker.CommandTimeout, c.Tracker.PollTimeout)
	}

	if c.Tracker.SettleDelay < 0 {
		return fmt.Errorf("settle delay cannot be negative")
	}

	// Validate web config
	if c.Web.Port < 1 || c.Web.Port > 65535 {
		return fmt.Errorf("web port must be between 1 and 65535, got %d", c.Web.Port)
	}

	if c.Web.Host == "" {
		return fmt.Errorf("web host cannot be empty")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database path cannot be empty")
	}

	if c.Database.RetentionDays < 0 {
		return fmt.Errorf("retention days cannot be negative, got %d", c.Database.RetentionDays)
	}

	if c.Settings.Path == "" {
		return fmt.Errorf("settings path cannot be empty")
	}

	// Validate daemon config
	if c.Daemon.PIDFile == "" {
		return fmt.Errorf("PID file path cannot be empty")
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log format must be console or json, got %q", c.Logging.Format)
	}

	return nil
}

// SetPollTimeout sets the poll timeout with validation
func (c *Config) SetPollTimeout(timeout time.Duration) error {
	if timeout < c.Tracker.CommandTimeout {
		return fmt.Errorf("poll timeout cannot be less than the command timeout %v", c.Tracker.CommandTimeout)
	}
	c.Tracker.PollTimeout = timeout
	return nil
}

// SetWebPort sets the web server port with validation
func (c *Config) SetWebPort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	c.Web.Port = port
	return nil
}

// SetLogLevel sets the log level with validation
func (c *Config) SetLogLevel(level string) error {
	level = strings.ToLower(strings.TrimSpace(level))
	switch level {
	case "trace", "debug", "info", "warn", "error":
		c.Logging.Level = level
		return nil
	default:
		return fmt.Errorf("unknown log level %q", level)
	}
}

// Location returns the report time zone, falling back to local time
func (c *Config) Location() *time.Location {
	if c.Report.TimeZone == "" || c.Report.TimeZone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Report.TimeZone)
	if err != nil {
		return time.Local
	}
	return loc
}

// RetentionCutoff returns the time before which stored transitions are pruned.
// The second result is false when retention is disabled.
func (c *Config) RetentionCutoff(now time.Time) (time.Time, bool) {
	if c.Database.RetentionDays <= 0 {
		return time.Time{}, false
	}
	return now.AddDate(0, 0, -c.Database.RetentionDays), true
}

// WebAddr returns the host:port the status API listens on
func (c *Config) WebAddr() string {
	return fmt.Sprintf("%s:%d", c.Web.Host, c.Web.Port)
}

// EnsureDirs creates the parent directories of every file path in the config
func (c *Config) EnsureDirs() error {
	for _, path := range []string{c.Database.Path, c.Settings.Path, c.Daemon.LogFile, c.Daemon.PIDFile} {
		if path == "" {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", path, err)
		}
	}
	return nil
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf(`Configuration:
  Database:
    Path: %s
    Retention: %d days
  Tracker:
    Poll Timeout: %v
    Command Timeout: %v
    Settle Delay: %v
  Daemon:
    PID File: %s
    Log File: %s
  Settings:
    Path: %s
  Logging:
    Level: %s
    Format: %s
  Report:
    Time Zone: %s
  Web:
    Host: %s
    Port: %d`,
		c.Database.Path,
		c.Database.RetentionDays,
		c.Tracker.PollTimeout,
		c.Tracker.CommandTimeout,
		c.Tracker.SettleDelay,
		c.Daemon.PIDFile,
		c.Daemon.LogFile,
		c.Settings.Path,
		c.Logging.Level,
		c.Logging.Format,
		c.Report.TimeZone,
		c.Web.Host,
		c.Web.Port,
	)
}
