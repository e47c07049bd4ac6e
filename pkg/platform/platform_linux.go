//go:build linux

package platform

import (
	"fmt"
	"os"

	"github.com/bigpicturetv/bigpicturetv/pkg/effects"
	"github.com/bigpicturetv/bigpicturetv/pkg/integrations/linux"
	"github.com/bigpicturetv/bigpicturetv/pkg/integrations/process"
	"github.com/bigpicturetv/bigpicturetv/pkg/integrations/x11"
	"github.com/bigpicturetv/bigpicturetv/pkg/runner"
)

// New creates the Linux platform. Wayland sessions are served through XWayland.
func New(opts Options) (*Platform, error) {
	if os.Getenv("DISPLAY") == "" {
		return nil, fmt.Errorf("no X display available (session: %s): %w", DetectDisplayServer(), effects.ErrUnsupported)
	}
	if DetectDisplayServer() == "wayland" {
		opts.Logger.Warn().Msg("wayland session: only XWayland windows are visible")
	}

	r := runner.New(opts.CommandTimeout)
	lister := x11.NewLister(r)

	port := linux.New(linux.Options{
		Runner:          r,
		Windows:         lister,
		Processes:       process.NewDetector(),
		DiscordLauncher: opts.DiscordLauncher,
		SteamLanguage:   opts.SteamLanguage,
		Logger:          opts.Logger,
	})

	return &Platform{Name: "linux", Port: port, Windows: lister}, nil
}
