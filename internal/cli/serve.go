package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/sadopc/weekly/internal/logx"
	"github.com/sadopc/weekly/internal/remote/repository"
	"github.com/sadopc/weekly/internal/remote/server"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var listen, dbPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the remote schedule API",
		Long: `Serves the schedule API that "weekly sync" and the terminal UI talk to.

Owners are identified by bearer tokens listed under server.tokens in the
config file. Schedules are stored in server.db_path.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(opts, false)
			if err != nil {
				return err
			}
			defer e.close()

			sc := e.cfg.Server
			if listen != "" {
				sc.Listen = listen
			}
			if dbPath != "" {
				sc.DBPath = dbPath
			}
			if len(sc.Tokens) == 0 {
				return errors.New("server.tokens is empty; no one could sign in")
			}

			db, err := repository.NewDB(sc.DBPath, e.log)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			srv := server.New(repository.NewScheduleRepository(db), sc.Tokens, e.log)
			e.log.Info("serving schedules",
				logx.String("db", sc.DBPath),
				logx.Int("owners", len(sc.Tokens)),
			)
			return srv.ListenAndServe(cmd.Context(), sc.Listen)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "override server.listen")
	cmd.Flags().StringVar(&dbPath, "db", "", "override server.db_path")
	return cmd
}
