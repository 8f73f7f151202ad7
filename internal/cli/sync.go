package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newSyncCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Sign in, sync every schedule once and exit",
		Long: `Pulls the schedules owned by remote.token, uploads local schedules that
were never synced and waits for the uploads to finish.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts, false)
			if err != nil {
				return err
			}
			defer e.close()

			if !e.remoteConfigured() {
				return errors.New("remote.url is not set in " + opts.configPath)
			}
			eng := e.syncer()
			err = eng.SignIn(cmd.Context(), e.backend())
			// Uploads queued by the initial sync finish before sign-out.
			eng.Wait()
			eng.SignOut()
			if err != nil {
				return err
			}

			snap := e.store.Snapshot()
			synced := 0
			for _, sc := range snap.Schedules {
				if sc.Synced() {
					synced++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d schedules synced\n", synced, len(snap.Schedules))
			return nil
		},
	}
}
