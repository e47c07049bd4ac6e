package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bigpicturetv/bigpicturetv/internal/reporter"
)

func newReportCommand(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "report [period]",
		Short: "Show time spent in gamemode",
		Long: `Show gamemode sessions and effect failures for a period.

Periods: day (default), week, month.

Examples:
  bigpicturetv report
  bigpicturetv report week --json`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"day", "week", "month"},
		RunE: func(cmd *cobra.Command, args []string) error {
			periodType := "day"
			if len(args) > 0 {
				periodType = args[0]
			}

			db, repo, err := openRepository(a.config)
			if err != nil {
				return err
			}
			defer db.Close()

			rep := reporter.New(repo, a.config.Location())
			report, err := rep.GenerateReport(periodType)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				jsonStr, err := rep.FormatReportJSON(report)
				if err != nil {
					return fmt.Errorf("failed to format JSON: %w", err)
				}
				fmt.Fprintln(out, jsonStr)
				return nil
			}

			fmt.Fprintln(out, rep.FormatReportText(report))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}
