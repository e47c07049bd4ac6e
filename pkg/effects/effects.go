package effects

import (
	"context"
	"errors"
)

// Well-known Windows power scheme GUIDs.
const (
	PerformancePlanGUID = "8c5e7fda-e8bf-4a96-9a85-a6e23a8c635c"
	BalancedPlanGUID    = "381b4222-f694-41f0-9685-ff5bb260df2e"
	PowerSaverPlanGUID  = "a1841308-3541-4fab-bc81-f71556f20b4a"
)

var (
	// ErrAudioDevice is returned when the requested audio device is absent or misconfigured
	ErrAudioDevice = errors.New("audio device not found")

	// ErrUnsupported is returned when the host cannot perform an action
	ErrUnsupported = errors.New("not supported on this platform")
)

// DisplayMode is a monitor topology understood by the display switcher
type DisplayMode int

const (
	DisplayInternal DisplayMode = iota
	DisplayExtend
	DisplayExternal
	DisplayClone
)

func (m DisplayMode) String() string {
	switch m {
	case DisplayInternal:
		return "internal"
	case DisplayExtend:
		return "extend"
	case DisplayExternal:
		return "external"
	case DisplayClone:
		return "clone"
	default:
		return "unknown"
	}
}

// TargetKind selects which window is monitored
type TargetKind int

const (
	TargetBigPicture TargetKind = iota
	TargetCustom
)

// Target describes the monitored window
type Target struct {
	Kind  TargetKind
	Title string // Only used with TargetCustom
}

// BigPicture returns the default Steam Big Picture target
func BigPicture() Target {
	return Target{Kind: TargetBigPicture}
}

// Custom returns a target matching an exact window title
func Custom(title string) Target {
	return Target{Kind: TargetCustom, Title: title}
}

func (t Target) String() string {
	if t.Kind == TargetCustom {
		return "custom:" + t.Title
	}
	return "bigpicture"
}

// Port is the set of operating-system effects the gamemode controller drives.
// Implementations live under pkg/integrations and are selected by pkg/platform.
type Port interface {
	// IsTargetWindowPresent reports whether the target window currently exists
	IsTargetWindowPresent(ctx context.Context, target Target) (bool, error)

	// IsStreamingActive reports whether a remote streaming session is running
	IsStreamingActive(ctx context.Context) (bool, error)

	// SetAudioDevice makes the named playback device the default one.
	// A missing device is reported with ErrAudioDevice.
	SetAudioDevice(ctx context.Context, name string) error

	SwitchDisplayMode(ctx context.Context, mode DisplayMode) error

	IsDiscordRunning(ctx context.Context) (bool, error)
	StartDiscord(ctx context.Context) error
	CloseDiscord(ctx context.Context) error

	IsNightLightEnabled(ctx context.Context) (bool, error)
	EnableNightLight(ctx context.Context) error
	DisableNightLight(ctx context.Context) error

	// ActivePowerPlan returns the GUID of the active power scheme
	ActivePowerPlan(ctx context.Context) (string, error)
	SetPowerPlan(ctx context.Context, guid string) error

	SendMediaStopKey(ctx context.Context) error
}

// Capabilities lists optional host tooling some effects depend on
type Capabilities struct {
	// AudioSwitch is false when no tool to change the default playback device is installed
	AudioSwitch bool
	// Discord is false when the Discord client does not appear to be installed
	Discord bool
}

// AllCapabilities assumes everything is installed
func AllCapabilities() Capabilities {
	return Capabilities{AudioSwitch: true, Discord: true}
}

// CapabilityReporter is implemented by ports that can detect missing tooling
type CapabilityReporter interface {
	Capabilities(ctx context.Context) Capabilities
}

// DetectCapabilities asks port for its capabilities. Ports that cannot tell
// are assumed to support everything.
func DetectCapabilities(ctx context.Context, port Port) Capabilities {
	if reporter, ok := port.(CapabilityReporter); ok {
		return reporter.Capabilities(ctx)
	}
	return AllCapabilities()
}
