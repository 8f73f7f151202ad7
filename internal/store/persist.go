package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sadopc/weekly/internal/logx"
	"github.com/sadopc/weekly/internal/schedule"
)

// Keys of the two independent durable records.
const (
	schedulesKey   = "schedules"
	preferencesKey = "preferences"
)

type persistedState struct {
	Schedules []schedule.Schedule `json:"schedules"`
	ActiveID  string              `json:"activeScheduleId,omitempty"`
}

// LoadState reads the schedule list and active id. A database that was never
// written yields an empty snapshot.
func (d *DB) LoadState() (Snapshot, error) {
	raw, err := d.Get(schedulesKey)
	if errors.Is(err, ErrNoRecord) {
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, err
	}
	var st persistedState
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return Snapshot{}, fmt.Errorf("decode schedules: %w", err)
	}
	return Snapshot{Schedules: st.Schedules, ActiveID: st.ActiveID}, nil
}

// SaveState writes snap verbatim.
func (d *DB) SaveState(snap Snapshot) error {
	data, err := json.Marshal(persistedState{Schedules: snap.Schedules, ActiveID: snap.ActiveID})
	if err != nil {
		return fmt.Errorf("encode schedules: %w", err)
	}
	return d.Set(schedulesKey, string(data))
}

func (d *DB) LoadPreferences() (schedule.Preferences, error) {
	prefs := schedule.DefaultPreferences()
	raw, err := d.Get(preferencesKey)
	if errors.Is(err, ErrNoRecord) {
		return prefs, nil
	}
	if err != nil {
		return prefs, err
	}
	if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
		return schedule.DefaultPreferences(), fmt.Errorf("decode preferences: %w", err)
	}
	return prefs, nil
}

func (d *DB) SavePreferences(p schedule.Preferences) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	return d.Set(preferencesKey, string(data))
}

// Persist returns a listener that writes every new snapshot to d. Write
// failures are logged; the in-memory store stays authoritative.
func Persist(d *DB, log logx.Logger) Listener {
	return func(_, cur Snapshot) {
		if err := d.SaveState(cur); err != nil {
			log.Error("persist schedules", logx.Err(err), logx.Int("schedules", len(cur.Schedules)))
		}
	}
}
