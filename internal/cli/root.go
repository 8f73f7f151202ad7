// Package cli wires configuration, storage, sync and the front ends into the
// weekly command tree.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sadopc/weekly/internal/config"
)

// newRootCmd builds the full command tree. Flags bind to the returned
// options, so every call yields an independent tree.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "weekly",
		Short: "weekly - a local-first weekly schedule planner",
		Long: `weekly keeps named weekly schedules of recurring tasks on this machine.

Run without a subcommand to open the terminal UI. When remote.url is set in
the config file, schedules are synced to that service after sign-in.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.DefaultPath(), "config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log.level")

	root.AddCommand(
		newServeCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
		newSchedulesCmd(opts),
		newSyncCmd(opts),
		newBackupCmd(opts),
		newVersionCmd(),
	)
	return root
}

type rootOptions struct {
	configPath string
	logLevel   string
}

var version = "dev"

// Execute runs the command line until completion or SIGINT/SIGTERM.
func Execute(v string) error {
	if v != "" {
		version = v
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	root.Version = version
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "weekly", version)
		},
	}
}
