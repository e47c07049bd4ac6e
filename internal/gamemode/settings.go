package gamemode

import (
	"time"

	"github.com/bigpicturetv/bigpicturetv/pkg/effects"
)

// Monitor combobox indexes as stored in the settings file
const (
	DesktopMonitorInternal = 0
	DesktopMonitorExtend   = 1

	GamemodeMonitorExternal = 0
	GamemodeMonitorClone    = 1
)

// DefaultPollInterval matches the default "checkrate" of the settings file
const DefaultPollInterval = 1000 * time.Millisecond

// Settings is an immutable snapshot of the user settings read by a single poll
type Settings struct {
	DesktopAudioDevice  string
	GamemodeAudioDevice string

	AudioSwitchDisabled   bool
	MonitorSwitchDisabled bool

	DesktopMonitorMode  int // DesktopMonitorInternal or DesktopMonitorExtend
	GamemodeMonitorMode int // GamemodeMonitorExternal or GamemodeMonitorClone

	CloseDiscord bool

	// EnablePerformancePowerPlan gates the night light action and
	// DisableNightLight gates the power plan action. The mapping is kept
	// exactly as the settings file has always been interpreted.
	EnablePerformancePowerPlan bool
	DisableNightLight          bool

	PauseMedia bool

	TargetWindow effects.Target

	// CustomTitleEditing is set while the custom title is still being edited
	CustomTitleEditing bool

	PollIntervalMs int
}

// DefaultSettings returns the settings written on first run
func DefaultSettings() Settings {
	return Settings{
		DesktopAudioDevice:  "Headset",
		GamemodeAudioDevice: "TV",
		DesktopMonitorMode:  DesktopMonitorInternal,
		GamemodeMonitorMode: GamemodeMonitorExternal,
		TargetWindow:        effects.BigPicture(),
		PollIntervalMs:      int(DefaultPollInterval / time.Millisecond),
	}
}

// PollInterval returns the poll interval, falling back to the default for non-positive values
func (s Settings) PollInterval() time.Duration {
	if s.PollIntervalMs <= 0 {
		return DefaultPollInterval
	}
	return time.Duration(s.PollIntervalMs) * time.Millisecond
}

// Restrict turns off the actions the host cannot perform
func (s Settings) Restrict(caps effects.Capabilities) Settings {
	if !caps.AudioSwitch {
		s.AudioSwitchDisabled = true
	}
	if !caps.Discord {
		s.CloseDiscord = false
	}
	return s
}

// MonitorMode maps a combobox index to a display mode.
// The second return value is false for indexes outside {0, 1}.
func MonitorMode(isDesktopMode bool, index int) (effects.DisplayMode, bool) {
	switch {
	case index == 0 && isDesktopMode:
		return effects.DisplayInternal, true
	case index == 0:
		return effects.DisplayExternal, true
	case index == 1 && isDesktopMode:
		return effects.DisplayExtend, true
	case index == 1:
		return effects.DisplayClone, true
	}
	return 0, false
}
