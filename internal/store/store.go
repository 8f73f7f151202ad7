// Package store holds the in-process source of truth for schedules and
// persists it to a local SQLite key-value table.
package store

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/weekly/internal/schedule"
)

var (
	ErrScheduleNotFound = errors.New("schedule not found")
	ErrTaskNotFound     = errors.New("task not found")
	ErrNoActiveSchedule = errors.New("no active schedule")
	ErrAlreadySynced    = errors.New("schedule already has a different remote id")

	// errUnchanged aborts a mutation that would be a no-op; callers see nil.
	errUnchanged = errors.New("unchanged")
)

// Snapshot is an immutable view of the store. Listeners and callers must not
// modify the schedules it holds; use Clone for a private copy.
type Snapshot struct {
	Schedules []schedule.Schedule
	ActiveID  string
}

// Find looks a schedule up by local id.
func (s Snapshot) Find(localID string) (schedule.Schedule, bool) {
	i := s.index(localID)
	if i < 0 {
		return schedule.Schedule{}, false
	}
	return s.Schedules[i], true
}

// Active returns the active schedule, if any.
func (s Snapshot) Active() (schedule.Schedule, bool) {
	if s.ActiveID == "" {
		return schedule.Schedule{}, false
	}
	return s.Find(s.ActiveID)
}

func (s Snapshot) Clone() Snapshot {
	out := Snapshot{ActiveID: s.ActiveID}
	if s.Schedules != nil {
		out.Schedules = make([]schedule.Schedule, len(s.Schedules))
		for i, sc := range s.Schedules {
			out.Schedules[i] = sc.Clone()
		}
	}
	return out
}

func (s Snapshot) index(localID string) int {
	return slices.IndexFunc(s.Schedules, func(sc schedule.Schedule) bool { return sc.LocalID == localID })
}

// withValidActive keeps ActiveID pointing at an existing schedule, falling back
// to the first survivor or none.
func (s Snapshot) withValidActive() Snapshot {
	if s.ActiveID != "" && s.index(s.ActiveID) >= 0 {
		return s
	}
	s.ActiveID = ""
	if len(s.Schedules) > 0 {
		s.ActiveID = s.Schedules[0].LocalID
	}
	return s
}

// Listener receives the snapshots before and after a mutation.
type Listener func(prev, cur Snapshot)

type subscription struct {
	id   int
	from uint64 // only changes with a later seq are delivered
	fn   Listener
}

type change struct {
	seq       uint64
	prev, cur Snapshot
}

// Store owns every schedule. Mutations are atomic with respect to each other;
// listeners are notified in mutation order, outside the lock, so a listener
// may call back into the store. A mutation made while another goroutine is
// notifying is delivered by that goroutine.
type Store struct {
	mu          sync.Mutex
	state       Snapshot
	subs        []subscription
	nextSubID   int
	seq         uint64
	pending     []change
	dispatching bool

	now   func() time.Time
	newID func() string
}

type Option func(*Store)

// WithClock overrides the wall clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDs overrides local id and task id allocation.
func WithIDs(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// New creates a store seeded with initial, typically the state loaded from disk.
func New(initial Snapshot, opts ...Option) *Store {
	s := &Store{
		state: initial.Clone().withValidActive(),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Snapshot returns a private copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Active returns a copy of the active schedule.
func (s *Store) Active() (schedule.Schedule, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.state.Active()
	return sc.Clone(), ok
}

// Get returns a copy of the schedule with the given local id.
func (s *Store) Get(localID string) (schedule.Schedule, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.state.Find(localID)
	return sc.Clone(), ok
}

// Subscribe registers l for every mutation committed after it returns.
// Changes still waiting to be delivered are not replayed to l.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	unsub := s.subscribeLocked(l, s.seq)
	s.mu.Unlock()
	return unsub
}

// subscribeLocked registers l for changes with a seq after from. Callers hold s.mu.
func (s *Store) subscribeLocked(l Listener, from uint64) (unsubscribe func()) {
	s.nextSubID++
	id := s.nextSubID
	s.subs = append(s.subs, subscription{id: id, from: from, fn: l})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.subs = slices.DeleteFunc(s.subs, func(sub subscription) bool { return sub.id == id })
			s.mu.Unlock()
		})
	}
}

// mutate applies fn to the current state under the lock. fn must not modify
// the snapshot it is given; it returns the new one. A non-nil error aborts
// without notifying.
func (s *Store) mutate(fn func(cur Snapshot) (Snapshot, error)) error {
	s.mu.Lock()
	prev := s.state
	next, err := fn(prev)
	if err != nil {
		s.mu.Unlock()
		if errors.Is(err, errUnchanged) {
			return nil
		}
		return err
	}
	next = next.withValidActive()
	s.state = next
	s.seq++
	s.pending = append(s.pending, change{seq: s.seq, prev: prev, cur: next})
	if s.dispatching {
		s.mu.Unlock()
		return nil
	}

	s.dispatching = true
	for len(s.pending) > 0 {
		c := s.pending[0]
		s.pending = s.pending[1:]
		subs := slices.Clone(s.subs)
		s.mu.Unlock()
		for _, sub := range subs {
			if c.seq > sub.from {
				sub.fn(c.prev, c.cur)
			}
		}
		s.mu.Lock()
	}
	s.dispatching = false
	s.mu.Unlock()
	return nil
}

// stamp returns the next updatedAt for a schedule last touched at prev. It
// never goes backwards and always moves forward, so observers can rely on
// updatedAt changing with every mutation.
func (s *Store) stamp(prev int64) int64 {
	now := s.now().UnixMilli()
	if now <= prev {
		return prev + 1
	}
	return now
}

// replaceAt returns a copy of schedules with index i swapped for sc.
func replaceAt(schedules []schedule.Schedule, i int, sc schedule.Schedule) []schedule.Schedule {
	out := slices.Clone(schedules)
	out[i] = sc
	return out
}

// editSchedule clones the schedule with localID, lets edit change it and
// bumps its updatedAt.
func (s *Store) editSchedule(localID string, edit func(sc *schedule.Schedule) error) error {
	return s.mutate(func(cur Snapshot) (Snapshot, error) {
		i := cur.index(localID)
		if i < 0 {
			return cur, ErrScheduleNotFound
		}
		sc := cur.Schedules[i].Clone()
		if err := edit(&sc); err != nil {
			return cur, err
		}
		sc.UpdatedAt = s.stamp(sc.UpdatedAt)
		cur.Schedules = replaceAt(cur.Schedules, i, sc)
		return cur, nil
	})
}

// editActive is editSchedule scoped to the active schedule.
func (s *Store) editActive(edit func(sc *schedule.Schedule) error) error {
	return s.mutate(func(cur Snapshot) (Snapshot, error) {
		i := cur.index(cur.ActiveID)
		if cur.ActiveID == "" || i < 0 {
			return cur, ErrNoActiveSchedule
		}
		sc := cur.Schedules[i].Clone()
		if err := edit(&sc); err != nil {
			return cur, err
		}
		sc.UpdatedAt = s.stamp(sc.UpdatedAt)
		cur.Schedules = replaceAt(cur.Schedules, i, sc)
		return cur, nil
	})
}
