package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newClearCommand(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded transitions and failures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			if !yes {
				fmt.Fprint(out, "This will delete all recorded transitions. Are you sure? (yes/no): ")
				scanner := bufio.NewScanner(cmd.InOrStdin())
				scanner.Scan()
				response := strings.ToLower(strings.TrimSpace(scanner.Text()))
				if response != "yes" && response != "y" {
					fmt.Fprintln(out, "Operation cancelled")
					return nil
				}
			}

			db, repo, err := openRepository(a.config)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := repo.Clear(); err != nil {
				return fmt.Errorf("failed to clear database: %w", err)
			}

			fmt.Fprintln(out, successStyle.Render("Database cleared"))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
