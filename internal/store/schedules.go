package store

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sadopc/weekly/internal/schedule"
)

// CreateSchedule adds an empty, private schedule with default settings and
// makes it active.
func (s *Store) CreateSchedule(name string) (string, error) {
	if err := schedule.ValidateName(name); err != nil {
		return "", err
	}
	id := s.newID()
	err := s.mutate(func(cur Snapshot) (Snapshot, error) {
		now := s.now().UnixMilli()
		sc := schedule.Schedule{
			LocalID:   id,
			Name:      strings.TrimSpace(name),
			Tasks:     []schedule.Task{},
			Settings:  schedule.DefaultSettings(),
			CreatedAt: now,
			UpdatedAt: now,
		}
		cur.Schedules = append(slices.Clone(cur.Schedules), sc)
		cur.ActiveID = id
		return cur, nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// DeleteSchedule removes the schedule and its tasks. Deleting the active
// schedule activates a survivor. Unknown ids are ignored.
func (s *Store) DeleteSchedule(localID string) {
	_ = s.mutate(func(cur Snapshot) (Snapshot, error) {
		i := cur.index(localID)
		if i < 0 {
			return cur, ErrScheduleNotFound
		}
		cur.Schedules = slices.Delete(slices.Clone(cur.Schedules), i, i+1)
		return cur, nil
	})
}

func (s *Store) RenameSchedule(localID, name string) error {
	if err := schedule.ValidateName(name); err != nil {
		return err
	}
	return s.editSchedule(localID, func(sc *schedule.Schedule) error {
		sc.Name = strings.TrimSpace(name)
		return nil
	})
}

func (s *Store) SetActive(localID string) error {
	return s.mutate(func(cur Snapshot) (Snapshot, error) {
		if cur.index(localID) < 0 {
			return cur, ErrScheduleNotFound
		}
		cur.ActiveID = localID
		return cur, nil
	})
}

// DuplicateSchedule copies a schedule under "<name> (copy)" with fresh task
// ids. The copy is always unsynced and private, and becomes active.
func (s *Store) DuplicateSchedule(localID string) (string, error) {
	id := s.newID()
	err := s.mutate(func(cur Snapshot) (Snapshot, error) {
		src, ok := cur.Find(localID)
		if !ok {
			return cur, ErrScheduleNotFound
		}
		now := s.now().UnixMilli()
		dup := src.Clone()
		dup.LocalID = id
		dup.RemoteID = ""
		dup.Name = src.Name + " (copy)"
		dup.IsPublic = false
		dup.ShareToken = ""
		dup.CreatedAt = now
		dup.UpdatedAt = now
		for i := range dup.Tasks {
			dup.Tasks[i].ID = s.newID()
		}
		cur.Schedules = append(slices.Clone(cur.Schedules), dup)
		cur.ActiveID = id
		return cur, nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// SetShareID records the share token in one change: a token makes the
// schedule public, an empty token makes it private.
func (s *Store) SetShareID(localID, token string) error {
	return s.editSchedule(localID, func(sc *schedule.Schedule) error {
		sc.ShareToken = token
		sc.IsPublic = token != ""
		return nil
	})
}

func (s *Store) SetPublic(localID string, public bool) error {
	return s.editSchedule(localID, func(sc *schedule.Schedule) error {
		sc.IsPublic = public
		if !public {
			sc.ShareToken = ""
		}
		return nil
	})
}

// ReplaceAll swaps the whole schedule list. It is the bulk primitive for
// callers outside a sync session, such as restores; the sync engine goes
// through AdoptRemote, which is built on the same replacement. Timestamps are
// kept as given.
func (s *Store) ReplaceAll(schedules []schedule.Schedule) {
	_ = s.mutate(func(cur Snapshot) (Snapshot, error) {
		return cur.replaced(schedules), nil
	})
}

// replaced returns a snapshot holding copies of schedules. The active
// schedule is kept when its local id survives, or followed through its
// remote id when a record with that identity took its place. Otherwise
// mutate activates a survivor.
func (s Snapshot) replaced(schedules []schedule.Schedule) Snapshot {
	next := Snapshot{ActiveID: s.ActiveID}
	next.Schedules = make([]schedule.Schedule, len(schedules))
	for i, sc := range schedules {
		next.Schedules[i] = sc.Clone()
	}
	if next.index(next.ActiveID) >= 0 {
		return next
	}
	if active, ok := s.Active(); ok && active.Synced() {
		for _, sc := range next.Schedules {
			if sc.RemoteID == active.RemoteID {
				next.ActiveID = sc.LocalID
				break
			}
		}
	}
	return next
}

// MarkSynced assigns the remote identity of a schedule. It is set at most
// once: re-marking with the same id is a no-op, a different id is rejected.
// updatedAt is not bumped since nothing the user sees has changed.
func (s *Store) MarkSynced(localID, remoteID string) error {
	return s.mutate(func(cur Snapshot) (Snapshot, error) {
		i := cur.index(localID)
		if i < 0 {
			return cur, ErrScheduleNotFound
		}
		sc := cur.Schedules[i]
		switch sc.RemoteID {
		case remoteID:
			return cur, errUnchanged
		case "":
		default:
			return cur, ErrAlreadySynced
		}
		sc = sc.Clone()
		sc.RemoteID = remoteID
		cur.Schedules = replaceAt(cur.Schedules, i, sc)
		return cur, nil
	})
}

// AdoptRemote replaces every synced schedule with records and keeps the
// unsynced ones after them, in one mutation. It returns the kept unsynced
// schedules. When l is non-nil it is subscribed atomically with the
// replacement: it sees every later mutation but not this one. An active
// schedule that was synced stays active through its remote id.
func (s *Store) AdoptRemote(records []schedule.Schedule, l Listener) (guests []schedule.Schedule, unsubscribe func()) {
	_ = s.mutate(func(cur Snapshot) (Snapshot, error) {
		merged := slices.Clone(records)
		for _, sc := range cur.Schedules {
			if !sc.Synced() {
				guests = append(guests, sc.Clone())
				merged = append(merged, sc)
			}
		}
		next := cur.replaced(merged)
		if l != nil {
			// mutate assigns this change the next seq; start after it.
			unsubscribe = s.subscribeLocked(l, s.seq+1)
		}
		return next, nil
	})
	return guests, unsubscribe
}

// ImportSchedule adds a complete schedule in one step: a fresh local id,
// fresh task ids, unsynced and private. It becomes active.
func (s *Store) ImportSchedule(name string, tasks []schedule.Task, settings schedule.Settings) (string, error) {
	if err := schedule.ValidateName(name); err != nil {
		return "", err
	}
	if err := schedule.ValidateSettings(settings); err != nil {
		return "", err
	}
	imported := make([]schedule.Task, len(tasks))
	for i, t := range tasks {
		t = t.Clone()
		t.ID = s.newID()
		if t.Color == "" {
			t.Color = schedule.DefaultTaskColor
		}
		if err := schedule.ValidateTask(t); err != nil {
			return "", fmt.Errorf("task %d: %w", i+1, err)
		}
		imported[i] = t
	}
	if settings.ClockFormat == "" {
		settings.ClockFormat = schedule.Clock12h
	}

	id := s.newID()
	err := s.mutate(func(cur Snapshot) (Snapshot, error) {
		now := s.now().UnixMilli()
		cur.Schedules = append(slices.Clone(cur.Schedules), schedule.Schedule{
			LocalID:   id,
			Name:      strings.TrimSpace(name),
			Tasks:     imported,
			Settings:  settings,
			CreatedAt: now,
			UpdatedAt: now,
		})
		cur.ActiveID = id
		return cur, nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}
