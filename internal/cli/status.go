package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/bigpicturetv/bigpicturetv/internal/config"
	"github.com/bigpicturetv/bigpicturetv/internal/daemon"
	"github.com/bigpicturetv/bigpicturetv/internal/gamemode"
	"github.com/bigpicturetv/bigpicturetv/internal/models"
	"github.com/bigpicturetv/bigpicturetv/pkg/effects"
	"github.com/bigpicturetv/bigpicturetv/pkg/platform"
	"github.com/bigpicturetv/bigpicturetv/pkg/utils"
)

func newStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon state, settings and whether the target window is open",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.config

			running, pid, err := daemon.New(cfg.Daemon.PIDFile).IsRunning()
			if err != nil {
				return fmt.Errorf("failed to check daemon status: %w", err)
			}

			last, lastErr := latestTransition(cfg)
			if lastErr != nil {
				a.logger.Warn().Err(lastErr).Msg("failed to read transition history")
			}

			store, err := openSettings(cfg, a.logger)
			if err != nil {
				return err
			}
			settings := store.Current()

			host := section{title: "Host"}
			host.add("Target", settings.TargetWindow.String())
			caps := a.checkHost(cmd.Context(), settings, &host)

			fmt.Fprintln(cmd.OutOrStdout(), renderSections(
				daemonSection(running, pid, last, lastErr, store.Path(), cfg.Database.Path, time.Now()),
				settingsSection(settings.Restrict(caps)),
				host,
			))
			return nil
		},
	}
}

// checkHost adds target presence and tool availability to s
func (a *app) checkHost(ctx context.Context, settings gamemode.Settings, s *section) effects.Capabilities {
	plat, err := platform.New(platformOptions(a.config, a.logger))
	if err != nil {
		s.add("Open", errValue("", err))
		return effects.AllCapabilities()
	}
	defer plat.Close()

	ctx, cancel := context.WithTimeout(ctx, a.config.Tracker.CommandTimeout)
	defer cancel()

	present, err := plat.Port.IsTargetWindowPresent(ctx, settings.TargetWindow)
	s.add("Open", errValue(yesNo(present), err))

	caps := effects.DetectCapabilities(ctx, plat.Port)
	addCapabilities(s, caps)
	return caps
}

func addCapabilities(s *section, caps effects.Capabilities) {
	s.add("Audio switching", installed(caps.AudioSwitch))
	s.add("Discord", installed(caps.Discord))
}

func latestTransition(cfg *config.Config) (*models.Transition, error) {
	db, repo, err := openRepository(cfg)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return repo.GetLatestTransition()
}

func daemonSection(running bool, pid int, last *models.Transition, lastErr error, settingsPath, dbPath string, now time.Time) section {
	s := section{title: "Daemon"}
	if running {
		s.add("State", successStyle.Render("running"))
		s.add("PID", strconv.Itoa(pid))
	} else {
		s.add("State", warningStyle.Render("stopped"))
	}

	switch {
	case lastErr != nil:
		s.add("Last transition", errValue("", lastErr))
	case last != nil:
		s.add("Last transition", fmt.Sprintf("%s (%s)", last.Direction, utils.Ago(last.Timestamp, now)))
	default:
		s.add("Last transition", "none")
	}

	s.add("Settings", settingsPath)
	s.add("Database", dbPath)
	return s
}

func settingsSection(settings gamemode.Settings) section {
	s := section{title: "Settings"}
	s.add("Check rate", settings.PollInterval().String())

	s.add("Audio switch", fmt.Sprintf("%s (desktop: %q, gamemode: %q)",
		enabled(settings.AudioSwitchDisabled),
		settings.DesktopAudioDevice,
		settings.GamemodeAudioDevice))

	s.add("Monitor switch", fmt.Sprintf("%s (desktop: %s, gamemode: %s)",
		enabled(settings.MonitorSwitchDisabled),
		monitorModeName(true, settings.DesktopMonitorMode),
		monitorModeName(false, settings.GamemodeMonitorMode)))

	s.add("Close Discord", yesNo(settings.CloseDiscord))
	s.add("Night light off", yesNo(settings.EnablePerformancePowerPlan))
	s.add("Performance plan", yesNo(settings.DisableNightLight))
	s.add("Pause media", yesNo(settings.PauseMedia))
	return s
}

func monitorModeName(isDesktopMode bool, index int) string {
	mode, ok := gamemode.MonitorMode(isDesktopMode, index)
	if !ok {
		return fmt.Sprintf("invalid (%d)", index)
	}
	return mode.String()
}
