package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bigpicturetv/bigpicturetv/internal/daemon"
)

func newStartCommand(a *app) *cobra.Command {
	var foreground bool

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the gamemode watcher in the background",
		Long: `Start the gamemode watcher.

By default the watcher is detached and logs to the configured log file.
Use --foreground to keep it attached to the terminal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if foreground || daemon.IsChild() {
				return a.runDaemon(cmd.Context(), false)
			}
			return a.spawnDaemon(cmd.OutOrStdout(), childArgs(cmd, "start"), false)
		},
	}
	cmd.Flags().BoolVarP(&foreground, "foreground", "f", false, "run attached to the terminal")
	return cmd
}

func newServeCommand(a *app) *cobra.Command {
	var foreground bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the watcher together with the status API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if foreground || daemon.IsChild() {
				return a.runDaemon(cmd.Context(), true)
			}
			return a.spawnDaemon(cmd.OutOrStdout(), childArgs(cmd, "serve"), true)
		},
	}
	cmd.Flags().BoolVarP(&foreground, "foreground", "f", false, "run attached to the terminal")
	return cmd
}

// childArgs rebuilds the command line for the detached child, keeping
// the persistent flags the user set.
func childArgs(cmd *cobra.Command, name string) []string {
	args := []string{name}
	for _, flag := range []string{"db", "settings", "log-level", "port"} {
		f := cmd.Flags().Lookup(flag)
		if f != nil && f.Changed {
			args = append(args, "--"+flag, f.Value.String())
		}
	}
	return args
}

func newStopCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the background watcher",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dm := daemon.New(a.config.Daemon.PIDFile)
			out := cmd.OutOrStdout()

			running, pid, err := dm.IsRunning()
			if err != nil {
				return fmt.Errorf("failed to check daemon status: %w", err)
			}
			if !running {
				fmt.Fprintln(out, "Daemon is not running")
				return nil
			}

			fmt.Fprintf(out, "Stopping daemon (PID: %d)...\n", pid)
			if err := dm.Stop(); err != nil {
				return fmt.Errorf("failed to stop daemon: %w", err)
			}

			fmt.Fprintln(out, successStyle.Render("Daemon stopped"))
			return nil
		},
	}
}
