package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sadopc/weekly/internal/backup"
	"github.com/sadopc/weekly/internal/export"
)

func newBackupCmd(opts *rootOptions) *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a backup of every schedule now",
		Long: `Writes all schedules to a timestamped JSON file in backup.dir and prunes
old files down to backup.keep. Periodic backups run from the UI when
backup.cron is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts, false)
			if err != nil {
				return err
			}
			defer e.close()

			bc := e.cfg.Backup
			svc := backup.New(e.store, bc.Dir, bc.Keep, e.log)
			if list {
				names, err := svc.List()
				if err != nil {
					return err
				}
				if len(names) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No backups in", bc.Dir)
				}
				for _, n := range names {
					fmt.Fprintln(cmd.OutOrStdout(), n)
				}
				return nil
			}

			path, err := svc.RunOnce()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Backup written to", path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&list, "list", "l", false, "list backups, newest first")
	cmd.AddCommand(newRestoreCmd(opts))
	return cmd
}

func newRestoreCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <file>",
		Short: "Import every schedule from a backup file",
		Long: `Adds each schedule in the backup as a new local schedule. Existing
schedules are left alone.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts, false)
			if err != nil {
				return err
			}
			defer e.close()

			path := args[0]
			if !fileExists(path) && filepath.Base(path) == path {
				// A bare file name may refer to the backup directory.
				if candidate := filepath.Join(e.cfg.Backup.Dir, path); fileExists(candidate) {
					path = candidate
				}
			}
			f, err := backup.Load(path)
			if err != nil {
				return err
			}
			for i, doc := range f.Schedules {
				if _, err := export.Import(e.store, doc); err != nil {
					return fmt.Errorf("restore schedule %d (%q): %w", i+1, doc.Name, err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %d schedules from %s (%s)\n", len(f.Schedules), path, f.CreatedAt)
			return nil
		},
	}
}

func fileExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}
