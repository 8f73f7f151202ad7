package cli

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/weekly/internal/logx"
	"github.com/sadopc/weekly/internal/tui"
)

func runTUI(cmd *cobra.Command, opts *rootOptions) error {
	e, err := openEnv(opts, true)
	if err != nil {
		return err
	}
	defer e.close()

	stopBackups, err := e.startBackups()
	if err != nil {
		return err
	}
	defer stopBackups()

	var appOpts []tui.Option
	if e.remoteConfigured() {
		engine := e.syncer()
		appOpts = append(appOpts, tui.WithSyncer(engine))

		ctx, cancel := context.WithCancel(cmd.Context())
		go func() {
			if err := engine.SignIn(ctx, e.backend()); err != nil && !errors.Is(err, context.Canceled) {
				e.log.Error("initial sync failed", logx.Err(err))
			}
		}()
		// Pending pushes finish before the database closes.
		defer func() {
			cancel()
			engine.SignOut()
			engine.Wait()
		}()
	}

	app := tui.NewApp(e.store, e.prefs, appOpts...)
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
