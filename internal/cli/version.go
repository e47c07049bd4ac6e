package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bigpicturetv/bigpicturetv/internal/config"
)

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s version %s\n", config.AppName, a.build.Version)
			fmt.Fprintf(out, "  commit: %s\n", a.build.Commit)
			fmt.Fprintf(out, "  built:  %s\n", a.build.Date)
		},
	}
}
