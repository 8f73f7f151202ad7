// Package backup periodically writes every schedule to a JSON file and
// prunes old backups.
package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sadopc/weekly/internal/export"
	"github.com/sadopc/weekly/internal/logx"
	"github.com/sadopc/weekly/internal/store"
)

const (
	filePrefix = "weekly-"
	fileSuffix = ".json"
	fileStamp  = "20060102-150405.000"
)

// File is the on-disk backup format.
type File struct {
	CreatedAt        string            `json:"createdAt"`
	ActiveScheduleID string            `json:"activeScheduleId,omitempty"`
	Schedules        []export.Document `json:"schedules"`
}

// Service wraps the cron job that takes backups.
type Service struct {
	cron  *cron.Cron
	store *store.Store
	dir   string
	keep  int
	log   logx.Logger
	now   func() time.Time
}

func New(st *store.Store, dir string, keep int, log logx.Logger) *Service {
	if keep <= 0 {
		keep = 1
	}
	return &Service{
		cron:  cron.New(),
		store: st,
		dir:   dir,
		keep:  keep,
		log:   log.With(logx.String("component", "backup")),
		now:   time.Now,
	}
}

// Schedule registers a backup job on a standard 5-field cron spec.
func (s *Service) Schedule(spec string) (cron.EntryID, error) {
	return s.cron.AddFunc(spec, func() {
		path, err := s.RunOnce()
		if err != nil {
			s.log.Error("backup failed", logx.Err(err))
			return
		}
		s.log.Info("backup written", logx.String("path", path))
	})
}

func (s *Service) Start() {
	s.cron.Start()
}

func (s *Service) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// RunOnce writes a backup now and prunes to the configured count.
func (s *Service) RunOnce() (string, error) {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	now := s.now()
	snap := s.store.Snapshot()
	out := File{
		CreatedAt:        now.UTC().Format(time.RFC3339),
		ActiveScheduleID: snap.ActiveID,
		Schedules:        make([]export.Document, 0, len(snap.Schedules)),
	}
	for _, sc := range snap.Schedules {
		doc, err := export.NewDocument(sc, now)
		if err != nil {
			return "", err
		}
		out.Schedules = append(out.Schedules, doc)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal backup: %w", err)
	}
	path := filepath.Join(s.dir, filePrefix+now.UTC().Format(fileStamp)+fileSuffix)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}

	if err := s.prune(); err != nil {
		s.log.Warn("prune backups", logx.Err(err))
	}
	return path, nil
}

// List returns backup files, newest first.
func (s *Service) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() && strings.HasPrefix(name, filePrefix) && strings.HasSuffix(name, fileSuffix) {
			names = append(names, filepath.Join(s.dir, name))
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

func (s *Service) prune() error {
	names, err := s.List()
	if err != nil {
		return err
	}
	for i := s.keep; i < len(names); i++ {
		if err := os.Remove(names[i]); err != nil {
			return err
		}
	}
	return nil
}

// Load reads a backup file.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("decode backup: %w", err)
	}
	return f, nil
}
