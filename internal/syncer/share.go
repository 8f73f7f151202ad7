package syncer

import (
	"context"
	"fmt"

	"github.com/sadopc/weekly/internal/logx"
	"github.com/sadopc/weekly/internal/remote"
	"github.com/sadopc/weekly/internal/store"
)

func (e *Engine) steadyBackend() (remote.Backend, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Steady || e.backend == nil {
		return nil, ErrNotSignedIn
	}
	return e.backend, nil
}

// ToggleShare flips public sharing of a synced schedule and records the
// resulting token locally. It returns the new token, or "" when sharing was
// turned off.
func (e *Engine) ToggleShare(ctx context.Context, localID string) (string, error) {
	b, err := e.steadyBackend()
	if err != nil {
		return "", err
	}
	sc, ok := e.store.Get(localID)
	if !ok {
		return "", store.ErrScheduleNotFound
	}
	if !sc.Synced() {
		return "", ErrNotSynced
	}

	token, err := b.TogglePublic(ctx, sc.RemoteID)
	if err != nil {
		e.log.Error("toggle sharing failed",
			logx.Err(err),
			logx.String("local_id", localID),
			logx.String("remote_id", sc.RemoteID),
		)
		return "", fmt.Errorf("toggle sharing: %w", err)
	}

	if err := e.store.SetShareID(localID, token); err != nil {
		return "", err
	}
	return token, nil
}

// ImportShared copies a publicly shared schedule into the local store as a
// new unsynced schedule. Write-through then uploads it as the caller's own.
func (e *Engine) ImportShared(ctx context.Context, token string) (string, error) {
	b, err := e.steadyBackend()
	if err != nil {
		return "", err
	}
	rec, err := b.GetPublic(ctx, token)
	if err != nil {
		return "", fmt.Errorf("fetch shared schedule: %w", err)
	}
	id, err := e.store.ImportSchedule(rec.Name, rec.Tasks, rec.Settings)
	if err != nil {
		return "", fmt.Errorf("import shared schedule: %w", err)
	}
	e.log.Info("imported shared schedule", logx.String("local_id", id))
	return id, nil
}
