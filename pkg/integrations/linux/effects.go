//go:build linux

package linux

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bigpicturetv/bigpicturetv/pkg/effects"
	"github.com/bigpicturetv/bigpicturetv/pkg/integrations/process"
	"github.com/bigpicturetv/bigpicturetv/pkg/runner"
	"github.com/bigpicturetv/bigpicturetv/pkg/steam"
	"github.com/bigpicturetv/bigpicturetv/pkg/window"
)

const (
	nightLightSchema = "org.gnome.settings-daemon.plugins.color"
	nightLightKey    = "night-light-enabled"
)

// DiscordNames are the process names of the Discord client on Linux
var DiscordNames = []string{"Discord", "discord", "DiscordCanary"}

// Options configures the Linux adapter
type Options struct {
	Runner    *runner.Runner
	Windows   window.Lister
	Processes *process.Detector
	// DiscordLauncher is the command line used to restart Discord
	DiscordLauncher string
	// SteamLanguage overrides the detected Steam client language
	SteamLanguage string
	Logger        zerolog.Logger
}

// Effects implements effects.Port for Linux desktops
type Effects struct {
	run       *runner.Runner
	windows   window.Lister
	processes *process.Detector
	launcher  []string
	language  string
	logger    zerolog.Logger
}

// New creates the Linux adapter
func New(opts Options) *Effects {
	launcher := strings.Fields(opts.DiscordLauncher)
	if len(launcher) == 0 {
		launcher = []string{"discord"}
	}
	language := opts.SteamLanguage
	if language == "" {
		language = steam.LanguageOrDefault()
	}

	return &Effects{
		run:       opts.Runner,
		windows:   opts.Windows,
		processes: opts.Processes,
		launcher:  launcher,
		language:  language,
		logger:    opts.Logger.With().Str("component", "linux").Logger(),
	}
}

// Capabilities checks that pactl and the Discord launcher are on PATH
func (e *Effects) Capabilities(ctx context.Context) effects.Capabilities {
	return effects.Capabilities{
		AudioSwitch: runner.Exists("pactl"),
		Discord:     runner.Exists(e.launcher[0]),
	}
}

func (e *Effects) IsTargetWindowPresent(ctx context.Context, target effects.Target) (bool, error) {
	return window.IsPresent(ctx, e.windows, steam.TargetTitles(target, e.language)...)
}

func (e *Effects) IsStreamingActive(ctx context.Context) (bool, error) {
	return e.processes.IsStreaming(ctx)
}

func (e *Effects) SetAudioDevice(ctx context.Context, name string) error {
	out, err := e.run.Output(ctx, "pactl", "list", "sinks")
	if err != nil {
		return err
	}

	sink, ok := findSink(parseSinks(string(out)), name)
	if !ok {
		return fmt.Errorf("%w: %q", effects.ErrAudioDevice, name)
	}

	e.logger.Debug().Str("sink", sink.Name).Str("device", name).Msg("setting default sink")
	return e.run.Run(ctx, "pactl", "set-default-sink", sink.Name)
}

func (e *Effects) SwitchDisplayMode(ctx context.Context, mode effects.DisplayMode) error {
	out, err := e.run.Output(ctx, "xrandr", "--query")
	if err != nil {
		return err
	}

	args, err := xrandrArgs(parseOutputs(string(out)), mode)
	if err != nil {
		return fmt.Errorf("cannot switch to %s: %w", mode, err)
	}
	return e.run.Run(ctx, "xrandr", args...)
}

func (e *Effects) IsDiscordRunning(ctx context.Context) (bool, error) {
	return e.processes.IsRunning(ctx, DiscordNames...)
}

func (e *Effects) StartDiscord(ctx context.Context) error {
	return e.run.Start(e.launcher[0], e.launcher[1:]...)
}

func (e *Effects) CloseDiscord(ctx context.Context) error {
	killed, err := e.processes.Kill(ctx, DiscordNames...)
	e.logger.Debug().Int("killed", killed).Msg("closed discord")
	return err
}

func (e *Effects) IsNightLightEnabled(ctx context.Context) (bool, error) {
	out, err := e.run.Output(ctx, "gsettings", "get", nightLightSchema, nightLightKey)
	if err != nil {
		return false, err
	}
	return parseGsettingsBool(string(out))
}

func (e *Effects) EnableNightLight(ctx context.Context) error {
	return e.run.Run(ctx, "gsettings", "set", nightLightSchema, nightLightKey, "true")
}

func (e *Effects) DisableNightLight(ctx context.Context) error {
	return e.run.Run(ctx, "gsettings", "set", nightLightSchema, nightLightKey, "false")
}

func (e *Effects) ActivePowerPlan(ctx context.Context) (string, error) {
	out, err := e.run.Output(ctx, "powerprofilesctl", "get")
	if err != nil {
		return "", err
	}
	return guidForProfile(string(out))
}

func (e *Effects) SetPowerPlan(ctx context.Context, guid string) error {
	profile, err := profileForGUID(guid)
	if err != nil {
		return err
	}
	return e.run.Run(ctx, "powerprofilesctl", "set", profile)
}

func (e *Effects) SendMediaStopKey(ctx context.Context) error {
	err := e.run.Run(ctx, "playerctl", "--all-players", "stop")
	if err != nil && strings.Contains(err.Error(), "No players found") {
		return nil
	}
	return err
}

var (
	_ effects.Port               = (*Effects)(nil)
	_ effects.CapabilityReporter = (*Effects)(nil)
)
