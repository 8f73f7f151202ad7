package store

import (
	"path/filepath"
	"testing"

	"github.com/sadopc/weekly/internal/logx"
	"github.com/sadopc/weekly/internal/schedule"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

// ============================================================
// Records
// ============================================================

func TestGetMissingRecord(t *testing.T) {
	d := newTestDB(t)
	if _, err := d.Get("nope"); err != ErrNoRecord {
		t.Fatalf("expected ErrNoRecord, got %v", err)
	}
}

func TestSetOverwrites(t *testing.T) {
	d := newTestDB(t)
	if err := d.Set("k", "one"); err != nil {
		t.Fatal(err)
	}
	if err := d.Set("k", "two"); err != nil {
		t.Fatal(err)
	}
	v, err := d.Get("k")
	if err != nil || v != "two" {
		t.Fatalf("got %q, %v", v, err)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "weekly.db")
	d, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	d.Set("k", "v")
	d.Close()

	d, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer d.Close()
	if v, _ := d.Get("k"); v != "v" {
		t.Fatal("data lost across reopen")
	}
}

// ============================================================
// State
// ============================================================

func TestLoadStateEmpty(t *testing.T) {
	d := newTestDB(t)
	snap, err := d.LoadState()
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Schedules) != 0 || snap.ActiveID != "" {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
}

func TestPersistRoundTrip(t *testing.T) {
	d := newTestDB(t)
	s := newTestStore(t)
	s.Subscribe(Persist(d, logx.Nop()))

	id, _ := s.CreateSchedule("Fall")
	taskID, _ := s.AddTask(mathTask())
	s.MarkSynced(id, "remote-1")
	s.CreateSchedule("Spring")
	s.SetActive(id)

	loaded, err := d.LoadState()
	if err != nil {
		t.Fatal(err)
	}
	restored := New(loaded)
	snap := restored.Snapshot()
	if len(snap.Schedules) != 2 || snap.ActiveID != id {
		t.Fatalf("unexpected restored state %+v", snap)
	}
	sc, _ := restored.Get(id)
	if sc.RemoteID != "remote-1" || sc.Name != "Fall" {
		t.Fatalf("schedule fields lost: %+v", sc)
	}
	task, ok := sc.Task(taskID)
	if !ok || task.StartTime != "09:00" || len(task.Days) != 2 {
		t.Fatalf("task lost: %+v", sc.Tasks)
	}
	orig, _ := s.Get(id)
	if sc.UpdatedAt != orig.UpdatedAt || sc.CreatedAt != orig.CreatedAt {
		t.Fatal("timestamps not preserved")
	}
}

// ============================================================
// Preferences
// ============================================================

func TestPreferencesDefaults(t *testing.T) {
	d := newTestDB(t)
	p, err := LoadPreferences(d)
	if err != nil {
		t.Fatal(err)
	}
	got := p.Get()
	if got.DarkMode || got.PaletteMode != schedule.PalettePastel {
		t.Fatalf("unexpected defaults %+v", got)
	}
}

func TestPreferencesPersistIndependently(t *testing.T) {
	d := newTestDB(t)
	p, _ := LoadPreferences(d)
	on, err := p.ToggleDarkMode()
	if err != nil || !on {
		t.Fatalf("toggle: %v %v", on, err)
	}
	if err := p.SetPaletteMode(schedule.PaletteBold); err != nil {
		t.Fatal(err)
	}
	if err := p.SetPaletteMode("neon"); err == nil {
		t.Fatal("unknown palette mode accepted")
	}

	// Writing schedules must not clobber preferences.
	d.SaveState(Snapshot{})

	again, _ := LoadPreferences(d)
	got := again.Get()
	if !got.DarkMode || got.PaletteMode != schedule.PaletteBold {
		t.Fatalf("preferences not persisted: %+v", got)
	}
}
