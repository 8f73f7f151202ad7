// Package syncer mirrors the local schedule store to a remote backend for a
// signed-in session: a one-time initial merge followed by write-through of
// every local change.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sadopc/weekly/internal/logx"
	"github.com/sadopc/weekly/internal/remote"
	"github.com/sadopc/weekly/internal/schedule"
	"github.com/sadopc/weekly/internal/store"
)

var (
	ErrNotSignedIn     = errors.New("not signed in")
	ErrAlreadySignedIn = errors.New("already signed in")
	ErrSyncInProgress  = errors.New("initial sync already running")
	ErrNotSynced       = errors.New("schedule is not synced yet")
)

// State is the session state.
type State int

const (
	Unauthenticated State = iota
	InitialSyncPending
	Steady
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case InitialSyncPending:
		return "initial-sync-pending"
	case Steady:
		return "steady"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type Options struct {
	// SerializeWrites runs at most one remote write per schedule at a time,
	// in the order the local changes happened. Off, remote writes race and
	// the last one to land wins.
	SerializeWrites bool
	// CallTimeout bounds each background remote call. Zero means no bound
	// beyond the backend's own.
	CallTimeout time.Duration
}

// Engine drives one user session at a time.
type Engine struct {
	store *store.Store
	log   logx.Logger
	opts  Options

	mu          sync.Mutex
	state       State
	backend     remote.Backend
	syncing     bool
	unsubscribe func()

	qmu   sync.Mutex
	tails map[string]chan struct{}

	wg sync.WaitGroup
}

func New(st *store.Store, log logx.Logger, opts Options) *Engine {
	return &Engine{
		store: st,
		log:   log.With(logx.String("component", "syncer")),
		opts:  opts,
		tails: make(map[string]chan struct{}),
	}
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// SignIn starts a session against b and runs the initial sync. If the
// initial sync fails the session stays pending; call InitialSync to retry.
func (e *Engine) SignIn(ctx context.Context, b remote.Backend) error {
	e.mu.Lock()
	if e.state != Unauthenticated {
		e.mu.Unlock()
		return ErrAlreadySignedIn
	}
	e.state = InitialSyncPending
	e.backend = b
	e.mu.Unlock()

	e.log.Info("signed in")
	return e.InitialSync(ctx)
}

// SignOut stops write-through. Local data is kept; in-flight remote calls
// run to completion.
func (e *Engine) SignOut() {
	e.mu.Lock()
	unsub := e.unsubscribe
	e.unsubscribe = nil
	e.state = Unauthenticated
	e.backend = nil
	e.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	e.log.Info("signed out")
}

// Wait blocks until every background remote call has finished.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// InitialSync pulls the owner's remote schedules, merges them with local
// unsynced schedules and starts write-through. It runs once per session; in
// the Steady state it is a no-op.
func (e *Engine) InitialSync(ctx context.Context) error {
	e.mu.Lock()
	switch {
	case e.state == Unauthenticated:
		e.mu.Unlock()
		return ErrNotSignedIn
	case e.state == Steady:
		e.mu.Unlock()
		return nil
	case e.syncing:
		e.mu.Unlock()
		return ErrSyncInProgress
	}
	e.syncing = true
	b := e.backend
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.syncing = false
		e.mu.Unlock()
	}()

	records, err := e.pull(ctx, b)
	if err != nil {
		e.log.Error("initial sync failed", logx.Err(err))
		return fmt.Errorf("initial sync: %w", err)
	}

	if !e.current(b) {
		// Signed out (or into another session) while pulling.
		return ErrNotSignedIn
	}
	// Store listeners run during AdoptRemote, so e.mu must not be held.
	guests, unsub := e.store.AdoptRemote(records, e.writeThrough(b))
	e.mu.Lock()
	if e.backend != b {
		e.mu.Unlock()
		unsub()
		return ErrNotSignedIn
	}
	e.unsubscribe = unsub
	e.state = Steady
	e.mu.Unlock()

	e.log.Info("initial sync complete",
		logx.Int("remote", len(records)),
		logx.Int("guests", len(guests)),
	)
	for _, g := range guests {
		e.push(b, g.LocalID)
	}
	return nil
}

// current reports whether b is still the backend of a signed-in session.
func (e *Engine) current(b remote.Backend) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state != Unauthenticated && e.backend == b
}

// pull fetches every owned schedule in full. A schedule deleted between list
// and get is skipped.
func (e *Engine) pull(ctx context.Context, b remote.Backend) ([]schedule.Schedule, error) {
	metas, err := b.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]schedule.Schedule, 0, len(metas))
	for _, m := range metas {
		rec, err := b.Get(ctx, m.ID)
		if errors.Is(err, remote.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get %s: %w", m.ID, err)
		}
		out = append(out, rec.Schedule())
	}
	return out, nil
}

// writeThrough diffs consecutive snapshots by local id and mirrors the
// difference to b.
func (e *Engine) writeThrough(b remote.Backend) store.Listener {
	return func(prev, cur store.Snapshot) {
		before := make(map[string]schedule.Schedule, len(prev.Schedules))
		for _, sc := range prev.Schedules {
			before[sc.LocalID] = sc
		}
		seen := make(map[string]struct{}, len(cur.Schedules))

		for _, sc := range cur.Schedules {
			seen[sc.LocalID] = struct{}{}
			old, existed := before[sc.LocalID]
			switch {
			case !existed && !sc.Synced():
				e.push(b, sc.LocalID)
			case existed && sc.Synced() && sc.UpdatedAt != old.UpdatedAt:
				e.update(b, sc)
			}
		}
		for _, sc := range prev.Schedules {
			if _, ok := seen[sc.LocalID]; !ok && sc.Synced() {
				e.delete(b, sc.LocalID, sc.RemoteID)
			}
		}
	}
}

// push creates the schedule remotely, records the remote id and uploads the
// current tasks and settings.
func (e *Engine) push(b remote.Backend, localID string) {
	sc, ok := e.store.Get(localID)
	if !ok {
		return
	}
	name := sc.Name
	e.run(localID, func(ctx context.Context) {
		log := e.log.With(logx.String("local_id", localID))

		remoteID, err := b.Create(ctx, name)
		if err != nil {
			log.Error("remote create failed", logx.Err(err))
			return
		}
		log = log.With(logx.String("remote_id", remoteID))

		err = e.store.MarkSynced(localID, remoteID)
		switch {
		case errors.Is(err, store.ErrScheduleNotFound):
			// Deleted locally while the create was in flight.
			log.Warn("removing orphaned remote schedule")
			if err := b.Delete(ctx, remoteID); err != nil {
				log.Error("remote orphan delete failed", logx.Err(err))
			}
			return
		case err != nil:
			log.Error("mark synced failed", logx.Err(err))
			return
		}

		latest, ok := e.store.Get(localID)
		if !ok {
			return
		}
		if err := b.Update(ctx, remoteID, remote.FullPatch(latest)); err != nil {
			log.Error("remote update after create failed", logx.Err(err))
			return
		}
		log.Debug("pushed schedule", logx.Int("tasks", len(latest.Tasks)))
	})
}

func (e *Engine) update(b remote.Backend, sc schedule.Schedule) {
	patch := remote.FullPatch(sc)
	e.run(sc.LocalID, func(ctx context.Context) {
		if err := b.Update(ctx, sc.RemoteID, patch); err != nil {
			e.log.Error("remote update failed",
				logx.Err(err),
				logx.String("local_id", sc.LocalID),
				logx.String("remote_id", sc.RemoteID),
			)
		}
	})
}

func (e *Engine) delete(b remote.Backend, localID, remoteID string) {
	e.run(localID, func(ctx context.Context) {
		if err := b.Delete(ctx, remoteID); err != nil {
			e.log.Error("remote delete failed",
				logx.Err(err),
				logx.String("local_id", localID),
				logx.String("remote_id", remoteID),
			)
		}
	})
}

// run starts job in the background. With SerializeWrites, jobs sharing a
// key run one at a time in submission order.
func (e *Engine) run(key string, job func(ctx context.Context)) {
	e.wg.Add(1)

	var prev chan struct{}
	var done chan struct{}
	if e.opts.SerializeWrites {
		done = make(chan struct{})
		e.qmu.Lock()
		prev = e.tails[key]
		e.tails[key] = done
		e.qmu.Unlock()
	}

	go func() {
		defer e.wg.Done()
		if prev != nil {
			<-prev
		}

		ctx := context.Background()
		if e.opts.CallTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, e.opts.CallTimeout)
			defer cancel()
		}
		job(ctx)

		if done != nil {
			close(done)
			e.qmu.Lock()
			if e.tails[key] == done {
				delete(e.tails, key)
			}
			e.qmu.Unlock()
		}
	}()
}
