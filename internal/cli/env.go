package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/sadopc/weekly/internal/backup"
	"github.com/sadopc/weekly/internal/config"
	"github.com/sadopc/weekly/internal/logx"
	"github.com/sadopc/weekly/internal/remote"
	"github.com/sadopc/weekly/internal/store"
	"github.com/sadopc/weekly/internal/syncer"
)

// env is the opened local state shared by every command.
type env struct {
	cfg   *config.Config
	log   logx.Logger
	db    *store.DB
	store *store.Store
	prefs *store.Preferences

	closers []func() error
}

// openEnv loads the config, opens the database and restores the store. Every
// mutation is persisted until close. When toFile is set and no log file is
// configured, logs go to weekly.log next to the database, since the terminal
// belongs to the UI.
func openEnv(opts *rootOptions, toFile bool) (*env, error) {
	e, err := loadEnv(opts, toFile)
	if err != nil {
		return nil, err
	}
	cfg, log := e.cfg, e.log

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		e.close()
		return nil, fmt.Errorf("open database: %w", err)
	}
	e.db = db
	e.closers = append(e.closers, db.Close)

	snap, err := db.LoadState()
	if err != nil {
		e.close()
		return nil, fmt.Errorf("load schedules: %w", err)
	}
	prefs, err := store.LoadPreferences(db)
	if err != nil {
		e.close()
		return nil, fmt.Errorf("load preferences: %w", err)
	}
	e.prefs = prefs
	e.store = store.New(snap)

	unpersist := e.store.Subscribe(store.Persist(db, log))
	e.closers = append(e.closers, func() error { unpersist(); return nil })

	log.Debug("state restored",
		logx.String("db", cfg.DBPath),
		logx.Int("schedules", len(snap.Schedules)),
	)
	return e, nil
}

// loadEnv reads the config and sets up logging without touching the database.
func loadEnv(opts *rootOptions, toFile bool) (*env, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	logCfg := cfg.Log
	if toFile && logCfg.File == "" {
		logCfg.File = filepath.Join(filepath.Dir(cfg.DBPath), "weekly.log")
	}
	log, logCloser, err := logx.New(logCfg)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log, closers: []func() error{logCloser.Close}}, nil
}

// close releases resources in reverse order of acquisition.
func (e *env) close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	return errors.Join(errs...)
}

// remoteConfigured reports whether a remote service is set up.
func (e *env) remoteConfigured() bool {
	return e.cfg.Remote.URL != ""
}

// backend builds the HTTP client for the configured remote.
func (e *env) backend() remote.Backend {
	rc := e.cfg.Remote
	return remote.NewClient(rc.URL, rc.Token, rc.Timeout, remote.WithRateLimit(rc.RatePerSec))
}

func (e *env) syncer() *syncer.Engine {
	rc := e.cfg.Remote
	return syncer.New(e.store, e.log, syncer.Options{
		SerializeWrites: rc.SerializeWrites,
		CallTimeout:     rc.Timeout,
	})
}

// startBackups schedules periodic backups when backup.cron is set. The
// returned stop function is always safe to call.
func (e *env) startBackups() (stop func(), err error) {
	bc := e.cfg.Backup
	if bc.Cron == "" {
		return func() {}, nil
	}
	svc := backup.New(e.store, bc.Dir, bc.Keep, e.log)
	if _, err := svc.Schedule(bc.Cron); err != nil {
		return func() {}, fmt.Errorf("schedule backups: %w", err)
	}
	svc.Start()
	e.log.Info("backups scheduled", logx.String("cron", bc.Cron), logx.String("dir", bc.Dir))
	return svc.Stop, nil
}
