// Package cli provides the cobra command tree for bigpicturetv.
package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bigpicturetv/bigpicturetv/internal/config"
	"github.com/bigpicturetv/bigpicturetv/internal/logging"
)

// BuildInfo is set by main from linker flags
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

type globalFlags struct {
	dbPath       string
	settingsPath string
	logLevel     string
	port         int
}

// app carries the state shared by subcommands
type app struct {
	build  BuildInfo
	flags  globalFlags
	config *config.Config
	logger zerolog.Logger
}

// loadConfig reads the environment, applies flag overrides and validates
func (a *app) loadConfig() error {
	cfg, envErr := config.New()

	if a.flags.dbPath != "" {
		cfg.Database.Path = a.flags.dbPath
	}
	if a.flags.settingsPath != "" {
		cfg.Settings.Path = a.flags.settingsPath
	}
	if a.flags.logLevel != "" {
		if err := cfg.SetLogLevel(a.flags.logLevel); err != nil {
			return err
		}
	}
	if a.flags.port != 0 {
		if err := cfg.SetWebPort(a.flags.port); err != nil {
			return err
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	a.config = cfg
	a.logger = logging.New(logging.Config{
		Level:      logging.ParseLevel(cfg.Logging.Level),
		Format:     cfg.Logging.Format,
		TimeFormat: logging.DefaultConfig().TimeFormat,
	})
	if envErr != nil {
		a.logger.Warn().Err(envErr).Msg("ignoring invalid environment overrides")
	}
	return nil
}

// NewRootCommand builds the full command tree
func NewRootCommand(build BuildInfo) *cobra.Command {
	a := &app{build: build}

	root := &cobra.Command{
		Use:   config.AppName,
		Short: "Switch the PC into TV mode while Steam Big Picture is open",
		Long: `BigPictureTV watches for the Steam Big Picture window (or a custom window)
and switches the machine into gamemode while it is open: default audio
device, display topology, Discord, night light, power plan and media
playback. Everything is restored once the window closes.

Settings are read from settings.json and reloaded on change.

Environment Variables:
  BIGPICTURETV_DB_PATH       Database file path
  BIGPICTURETV_SETTINGS      settings.json path
  BIGPICTURETV_LOG_LEVEL     trace, debug, info, warn, error
  BIGPICTURETV_WEB_PORT      Status API port
  BIGPICTURETV_PID_FILE      PID file path`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch cmd.Name() {
			case "help", "completion", "version":
				return nil
			}
			return a.loadConfig()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.dbPath, "db", "", "database file path")
	pf.StringVar(&a.flags.settingsPath, "settings", "", "settings.json path")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	pf.IntVar(&a.flags.port, "port", 0, "status API port")

	root.AddCommand(
		newStartCommand(a),
		newServeCommand(a),
		newStopCommand(a),
		newStatusCommand(a),
		newReportCommand(a),
		newClearCommand(a),
		newProbeCommand(a),
		newVersionCommand(a),
	)

	return root
}

// Execute runs the root command and exits non-zero on error
func Execute(build BuildInfo) {
	if err := NewRootCommand(build).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: ")+err.Error())
		os.Exit(1)
	}
}
