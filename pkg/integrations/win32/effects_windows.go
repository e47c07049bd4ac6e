//go:build windows

package win32

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/rs/zerolog"
	"golang.org/x/sys/windows"

	"github.com/bigpicturetv/bigpicturetv/pkg/effects"
	"github.com/bigpicturetv/bigpicturetv/pkg/integrations/process"
	"github.com/bigpicturetv/bigpicturetv/pkg/runner"
	"github.com/bigpicturetv/bigpicturetv/pkg/steam"
	"github.com/bigpicturetv/bigpicturetv/pkg/window"
)

const (
	vkMediaStop    = 0xB2
	keyeventfKeyUp = 0x0002

	discordExe = "Discord.exe"
)

var procKeybdEvent = windows.NewLazySystemDLL("user32.dll").NewProc("keybd_event")

// Options configures the Windows adapter
type Options struct {
	Runner    *runner.Runner
	Windows   window.Lister
	Processes *process.Detector
	// DisplaySwitchPath locates EnhancedDisplaySwitch.exe
	DisplaySwitchPath string
	// DiscordLauncher overrides the Discord Update.exe path
	DiscordLauncher string
	// SteamLanguage overrides the language read from the registry
	SteamLanguage string
	Logger        zerolog.Logger
}

// Effects implements effects.Port on Windows
type Effects struct {
	run           *runner.Runner
	windows       window.Lister
	processes     *process.Detector
	displaySwitch string
	launcher      string
	language      string
	logger        zerolog.Logger
}

// New creates the Windows adapter
func New(opts Options) *Effects {
	language := opts.SteamLanguage
	if language == "" {
		language = steam.LanguageOrDefault()
	}

	return &Effects{
		run:           opts.Runner,
		windows:       opts.Windows,
		processes:     opts.Processes,
		displaySwitch: resolveDisplaySwitch(opts.DisplaySwitchPath),
		launcher:      resolveDiscordLauncher(opts.DiscordLauncher),
		language:      language,
		logger:        opts.Logger.With().Str("component", "win32").Logger(),
	}
}

func resolveDisplaySwitch(path string) string {
	if path != "" {
		return path
	}
	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), "dependencies", "EnhancedDisplaySwitch.exe")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return "EnhancedDisplaySwitch.exe"
}

func resolveDiscordLauncher(path string) string {
	if path != "" {
		return path
	}
	return filepath.Join(os.Getenv("LOCALAPPDATA"), "Discord", "Update.exe")
}

// Capabilities checks for the AudioDeviceCmdlets module and the Discord launcher
func (e *Effects) Capabilities(ctx context.Context) effects.Capabilities {
	caps := effects.Capabilities{Discord: fileExists(e.launcher)}

	out, err := e.run.Output(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", audioModuleScript)
	if err != nil {
		e.logger.Warn().Err(err).Msg("failed to look up the audio module")
	} else {
		caps.AudioSwitch = audioModuleListed(string(out))
	}
	return caps
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (e *Effects) IsTargetWindowPresent(ctx context.Context, target effects.Target) (bool, error) {
	return window.IsPresent(ctx, e.windows, steam.TargetTitles(target, e.language)...)
}

func (e *Effects) IsStreamingActive(ctx context.Context) (bool, error) {
	return e.processes.IsStreaming(ctx)
}

func (e *Effects) SetAudioDevice(ctx context.Context, name string) error {
	err := e.run.Run(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", audioScript(name))
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == audioMissingExit {
		return fmt.Errorf("%w: %q", effects.ErrAudioDevice, name)
	}
	return err
}

func (e *Effects) SwitchDisplayMode(ctx context.Context, mode effects.DisplayMode) error {
	arg, err := displaySwitchArg(mode)
	if err != nil {
		return err
	}
	return e.run.Run(ctx, e.displaySwitch, arg)
}

func (e *Effects) IsDiscordRunning(ctx context.Context) (bool, error) {
	return e.processes.IsRunning(ctx, discordExe)
}

func (e *Effects) StartDiscord(ctx context.Context) error {
	return e.run.Start(e.launcher, "--processStart", discordExe)
}

func (e *Effects) CloseDiscord(ctx context.Context) error {
	err := e.run.Run(ctx, "taskkill", "/F", "/IM", discordExe)
	if err == nil {
		return nil
	}
	// taskkill fails when Discord is already gone
	running, qerr := e.processes.IsRunning(ctx, discordExe)
	if qerr == nil && !running {
		return nil
	}
	return err
}

func (e *Effects) IsNightLightEnabled(ctx context.Context) (bool, error) {
	data, err := readNightLightBlob()
	if err != nil {
		return false, err
	}
	return nightLightEnabled(data)
}

func (e *Effects) EnableNightLight(ctx context.Context) error {
	return updateNightLight(enableNightLightBlob)
}

func (e *Effects) DisableNightLight(ctx context.Context) error {
	return updateNightLight(disableNightLightBlob)
}

func (e *Effects) ActivePowerPlan(ctx context.Context) (string, error) {
	out, err := e.run.Output(ctx, "powercfg", "/getactivescheme")
	if err != nil {
		return "", err
	}
	return parseActiveScheme(string(out))
}

func (e *Effects) SetPowerPlan(ctx context.Context, guid string) error {
	return e.run.Run(ctx, "powercfg", "/setactive", guid)
}

func (e *Effects) SendMediaStopKey(ctx context.Context) error {
	if err := procKeybdEvent.Find(); err != nil {
		return err
	}
	procKeybdEvent.Call(vkMediaStop, 0, 0, 0)
	procKeybdEvent.Call(vkMediaStop, 0, keyeventfKeyUp, 0)
	return nil
}

var (
	_ effects.Port               = (*Effects)(nil)
	_ effects.CapabilityReporter = (*Effects)(nil)
)
