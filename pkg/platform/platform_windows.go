//go:build windows

package platform

import (
	"github.com/bigpicturetv/bigpicturetv/pkg/integrations/process"
	"github.com/bigpicturetv/bigpicturetv/pkg/integrations/win32"
	"github.com/bigpicturetv/bigpicturetv/pkg/runner"
)

// New creates the Windows platform
func New(opts Options) (*Platform, error) {
	lister := win32.NewLister()

	port := win32.New(win32.Options{
		Runner:            runner.New(opts.CommandTimeout),
		Windows:           lister,
		Processes:         process.NewDetector(),
		DisplaySwitchPath: opts.DisplaySwitchPath,
		DiscordLauncher:   opts.DiscordLauncher,
		SteamLanguage:     opts.SteamLanguage,
		Logger:            opts.Logger,
	})

	return &Platform{Name: "windows", Port: port, Windows: lister}, nil
}
