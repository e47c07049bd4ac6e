package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// EnvPrefix prefixes every environment variable read by LoadFromEnv
const EnvPrefix = "BIGPICTURETV_"

// LoadFromEnv loads configuration from environment variables.
// Environment variables override default values. Invalid values leave the
// current value in place and are reported together in the returned error,
// which is never fatal: cfg is usable either way.
func LoadFromEnv(cfg *Config) error {
	var errs []error
	invalid := func(name, value string, reason string) {
		errs = append(errs, fmt.Errorf("%s%s=%q ignored: %s", EnvPrefix, name, value, reason))
	}

	// Database configuration
	if dbPath := getenv("DB_PATH"); dbPath != "" {
		cfg.Database.Path = dbPath
	}

	if days := getenv("RETENTION_DAYS"); days != "" {
		if v, err := strconv.Atoi(days); err == nil && v >= 0 {
			cfg.Database.RetentionDays = v
		} else {
			invalid("RETENTION_DAYS", days, "expected a non-negative number of days")
		}
	}

	// Tracker configuration
	if v := getenv("POLL_TIMEOUT"); v != "" {
		if d, ok := parseSeconds(v); ok && d >= cfg.Tracker.CommandTimeout {
			cfg.Tracker.PollTimeout = d
		} else {
			invalid("POLL_TIMEOUT", v, fmt.Sprintf("expected seconds, at least the command timeout %v", cfg.Tracker.CommandTimeout))
		}
	}

	if v := getenv("COMMAND_TIMEOUT"); v != "" {
		if d, ok := parseSeconds(v); ok && d <= cfg.Tracker.PollTimeout {
			cfg.Tracker.CommandTimeout = d
		} else {
			invalid("COMMAND_TIMEOUT", v, fmt.Sprintf("expected seconds, at most the poll timeout %v", cfg.Tracker.PollTimeout))
		}
	}

	if ms := getenv("SETTLE_DELAY_MS"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v >= 0 {
			cfg.Tracker.SettleDelay = time.Duration(v) * time.Millisecond
		} else {
			invalid("SETTLE_DELAY_MS", ms, "expected a non-negative number of milliseconds")
		}
	}

	// Daemon configuration
	if pidFile := getenv("PID_FILE"); pidFile != "" {
		cfg.Daemon.PIDFile = pidFile
	}

	if logFile := getenv("LOG_FILE"); logFile != "" {
		cfg.Daemon.LogFile = logFile
	}

	if settings := getenv("SETTINGS"); settings != "" {
		cfg.Settings.Path = settings
	}

	// Logging configuration
	if level := getenv("LOG_LEVEL"); level != "" {
		if err := cfg.SetLogLevel(level); err != nil {
			invalid("LOG_LEVEL", level, err.Error())
		}
	}

	if format := getenv("LOG_FORMAT"); format != "" {
		if format == "console" || format == "json" {
			cfg.Logging.Format = format
		} else {
			invalid("LOG_FORMAT", format, "expected console or json")
		}
	}

	if timeZone := getenv("TIMEZONE"); timeZone != "" {
		cfg.Report.TimeZone = timeZone
	}

	// Web configuration
	if webHost := getenv("WEB_HOST"); webHost != "" {
		cfg.Web.Host = webHost
	}

	if webPort := getenv("WEB_PORT"); webPort != "" {
		port, err := strconv.Atoi(webPort)
		if err == nil {
			err = cfg.SetWebPort(port)
		}
		if err != nil {
			invalid("WEB_PORT", webPort, "expected a port between 1 and 65535")
		}
	}

	// Integrations
	if path := getenv("DISPLAY_SWITCH"); path != "" {
		cfg.Integrations.DisplaySwitchPath = path
	}

	if launcher := getenv("DISCORD_LAUNCHER"); launcher != "" {
		cfg.Integrations.DiscordLauncher = launcher
	}

	if lang := getenv("STEAM_LANGUAGE"); lang != "" {
		cfg.Integrations.SteamLanguage = lang
	}

	return errors.Join(errs...)
}

func getenv(name string) string {
	return os.Getenv(EnvPrefix + name)
}

func parseSeconds(v string) (time.Duration, bool) {
	seconds, err := strconv.Atoi(v)
	if err != nil || seconds <= 0 {
		return 0, false
	}
	return time.Duration(seconds) * time.Second, true
}

// New creates a new Config with default values and loads from environment.
// The returned config is always usable; a non-nil error lists the
// environment overrides that were ignored.
func New() (*Config, error) {
	cfg := Default()
	err := LoadFromEnv(cfg)
	return cfg, err
}
