package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/bigpicturetv/bigpicturetv/pkg/effects"
	"github.com/bigpicturetv/bigpicturetv/pkg/platform"
)

// maxProbeTitles bounds the window list printed by probe
const maxProbeTitles = 40

var errWindowsUnavailable = errors.New("no window lister available on this session")

func newProbeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Print visible windows and current effect states once",
		Long: `Probe queries the platform adapter once without changing anything.
It is useful to find the exact title to use as a custom target window.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			plat, err := platform.New(platformOptions(a.config, a.logger))
			if err != nil {
				return err
			}
			defer plat.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), a.config.Tracker.PollTimeout)
			defer cancel()

			out := cmd.OutOrStdout()

			var titles []string
			if plat.Windows.IsAvailable() {
				titles, err = plat.Windows.Titles(ctx)
			} else {
				err = errWindowsUnavailable
			}
			fmt.Fprintln(out, renderSections(
				windowsSection(plat.Name, titles, err),
				effectsSection(ctx, plat),
			))
			return nil
		},
	}
}

func windowsSection(name string, titles []string, err error) section {
	s := section{title: fmt.Sprintf("Windows (%s)", name)}
	if err != nil {
		s.add("Error", errValue("", err))
		return s
	}

	s.add("Count", fmt.Sprintf("%d", len(titles)))
	shown := titles
	if len(shown) > maxProbeTitles {
		shown = shown[:maxProbeTitles]
	}
	for _, title := range shown {
		if strings.TrimSpace(title) == "" {
			continue
		}
		s.add("", title)
	}
	if len(titles) > len(shown) {
		s.add("", fmt.Sprintf("... %d more", len(titles)-len(shown)))
	}
	return s
}

func effectsSection(ctx context.Context, plat *platform.Platform) section {
	s := section{title: "Effects"}
	port := plat.Port

	streaming, err := port.IsStreamingActive(ctx)
	s.add("Streaming", errValue(yesNo(streaming), err))

	discord, err := port.IsDiscordRunning(ctx)
	s.add("Discord running", errValue(yesNo(discord), err))

	nightLight, err := port.IsNightLightEnabled(ctx)
	s.add("Night light", errValue(yesNo(nightLight), err))

	plan, err := port.ActivePowerPlan(ctx)
	s.add("Power plan", errValue(plan, err))

	addCapabilities(&s, effects.DetectCapabilities(ctx, port))
	return s
}
