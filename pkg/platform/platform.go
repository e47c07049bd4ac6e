// Package platform selects the effect adapter for the running operating system.
package platform

import (
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/bigpicturetv/bigpicturetv/pkg/effects"
	"github.com/bigpicturetv/bigpicturetv/pkg/window"
)

// Options configures the platform adapter
type Options struct {
	CommandTimeout    time.Duration
	DisplaySwitchPath string
	DiscordLauncher   string
	SteamLanguage     string
	Logger            zerolog.Logger
}

// Platform bundles the effect port with the window lister behind it
type Platform struct {
	Name    string
	Port    effects.Port
	Windows window.Lister
}

// Close releases the window lister
func (p *Platform) Close() error {
	if p == nil || p.Windows == nil {
		return nil
	}
	return p.Windows.Close()
}

// DetectDisplayServer reports the Linux session type ("wayland", "x11" or "unknown")
func DetectDisplayServer() string {
	sessionType := os.Getenv("XDG_SESSION_TYPE")
	waylandDisplay := os.Getenv("WAYLAND_DISPLAY")
	x11Display := os.Getenv("DISPLAY")

	if sessionType == "wayland" || waylandDisplay != "" {
		return "wayland"
	}

	if sessionType == "x11" || x11Display != "" {
		return "x11"
	}

	return "unknown"
}
