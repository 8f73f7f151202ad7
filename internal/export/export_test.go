package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/weekly/internal/schedule"
	"github.com/sadopc/weekly/internal/store"
)

func sampleSchedule() schedule.Schedule {
	settings := schedule.DefaultSettings()
	settings.ShowWeekends = true
	settings.StartOfWeek = schedule.WeekStartsMonday
	return schedule.Schedule{
		LocalID:  "local-1",
		RemoteID: "remote-1",
		Name:     "Fall",
		Settings: settings,
		Tasks: []schedule.Task{
			{
				ID:        "math",
				Name:      "Math",
				Color:     "#dbeafe",
				Days:      []schedule.Day{schedule.Monday, schedule.Wednesday},
				StartTime: "09:00",
				EndTime:   "10:30",
			},
			{
				ID:          "lab",
				Name:        `Lab "B", room 2`,
				Description: "bring goggles",
				Color:       "#dcfce7",
				Days:        []schedule.Day{schedule.Friday},
				StartTime:   "13:00",
				EndTime:     "16:00",
			},
		},
	}
}

// ============================================================
// JSON
// ============================================================

func TestWriteJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)
	if err := WriteJSON(&buf, sampleSchedule(), now); err != nil {
		t.Fatal(err)
	}

	var raw map[string]any
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatal(err)
	}
	if raw["name"] != "Fall" || raw["version"] != float64(1) || raw["exportedAt"] != "2026-01-05T12:00:00Z" {
		t.Fatalf("unexpected document %v", raw)
	}
	for _, k := range []string{"remoteId", "id", "isPublic"} {
		if _, ok := raw[k]; ok {
			t.Fatalf("document must not carry %q", k)
		}
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Fatal("JSON should be pretty-printed")
	}
}

func TestJSONRoundTripThroughStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fall.json")
	src := sampleSchedule()
	if err := ToJSON(src, path); err != nil {
		t.Fatal(err)
	}

	st := store.New(store.Snapshot{})
	id, err := FromJSON(st, path)
	if err != nil {
		t.Fatal(err)
	}
	got, _ := st.Active()
	if got.LocalID != id || got.Name != "Fall" || got.Synced() {
		t.Fatalf("unexpected import %+v", got)
	}
	if got.Settings != src.Settings {
		t.Fatalf("settings = %+v, want %+v", got.Settings, src.Settings)
	}
	if len(got.Tasks) != 2 || got.Tasks[1].Description != "bring goggles" || got.Tasks[0].ID == "math" {
		t.Fatalf("unexpected tasks %+v", got.Tasks)
	}
}

func TestReadJSONValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `hello`},
		{"missing name", `{"tasks": []}`},
		{"empty name", `{"name": " ", "tasks": []}`},
		{"tasks not array", `{"name": "x", "tasks": {}}`},
		{"missing tasks", `{"name": "x"}`},
		{"future version", `{"name": "x", "tasks": [], "version": 2}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadJSON(strings.NewReader(tt.body)); !errors.Is(err, ErrInvalidFormat) {
				t.Fatalf("expected ErrInvalidFormat, got %v", err)
			}
		})
	}
}

func TestImportWithoutSettingsUsesDefaults(t *testing.T) {
	doc, err := ReadJSON(strings.NewReader(`{"name": "Bare", "tasks": []}`))
	if err != nil {
		t.Fatal(err)
	}
	st := store.New(store.Snapshot{})
	if _, err := Import(st, doc); err != nil {
		t.Fatal(err)
	}
	sc, _ := st.Active()
	if sc.Settings != schedule.DefaultSettings() {
		t.Fatalf("expected defaults, got %+v", sc.Settings)
	}
}

func TestImportPartialSettingsMerge(t *testing.T) {
	doc, _ := ReadJSON(strings.NewReader(`{"name": "P", "tasks": [], "settings": {"startHour": 6}}`))
	st := store.New(store.Snapshot{})
	Import(st, doc)
	sc, _ := st.Active()
	if sc.Settings.StartHour != 6 || sc.Settings.EndHour != 22 {
		t.Fatalf("unexpected merge %+v", sc.Settings)
	}
}

func TestImportRejectsInvalidTask(t *testing.T) {
	doc, _ := ReadJSON(strings.NewReader(`{"name": "X", "tasks": [{"name": "t", "days": [], "startTime": "09:00", "endTime": "10:00"}]}`))
	st := store.New(store.Snapshot{})
	if _, err := Import(st, doc); !errors.Is(err, schedule.ErrNoDays) {
		t.Fatalf("expected ErrNoDays, got %v", err)
	}
	if len(st.Snapshot().Schedules) != 0 {
		t.Fatal("invalid import must not touch the store")
	}
}

func TestToJSONBadPath(t *testing.T) {
	if err := ToJSON(sampleSchedule(), "/nonexistent/dir/file.json"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Fall", "fall"},
		{"Fall 2026: Week A!", "fall-2026-week-a"},
		{"  spaced  out  ", "spaced-out"},
		{"Día libre", "día-libre"},
		{"???", "schedule"},
		{"", "schedule"},
	}
	for _, tt := range tests {
		if got := Slug(tt.name); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fall.csv")
	if err := ToCSV(path, sampleSchedule()); err != nil {
		t.Fatalf("ToCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	if len(records) != 3 {
		t.Fatalf("expected 3 rows (1 header + 2 data), got %d", len(records))
	}
	for i, h := range csvHeader {
		if records[0][i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, records[0][i], h)
		}
	}
	row := records[1]
	if row[0] != "Fall" || row[1] != "Math" || row[3] != "Mon Wed" || row[6] != "90" || row[7] != "01:30" {
		t.Fatalf("unexpected row %v", row)
	}
	if records[2][1] != `Lab "B", room 2` {
		t.Fatalf("special characters not preserved: %q", records[2][1])
	}
}

func TestToCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf); err != nil {
		t.Fatal(err)
	}
	records, _ := csv.NewReader(&buf).ReadAll()
	if len(records) != 1 {
		t.Fatalf("expected header only, got %d rows", len(records))
	}
}

func TestToCSVBadPath(t *testing.T) {
	if err := ToCSV("/nonexistent/dir/file.csv"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		mins int
		want string
	}{
		{0, "00:00"},
		{1, "00:01"},
		{60, "01:00"},
		{90, "01:30"},
		{1439, "23:59"},
		{-5, "00:00"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.mins); got != tt.want {
			t.Errorf("formatDuration(%d) = %q, want %q", tt.mins, got, tt.want)
		}
	}
}

// ============================================================
// ICS
// ============================================================

func TestWriteICS(t *testing.T) {
	var buf bytes.Buffer
	// Thursday; Math's first occurrence is the following Monday.
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := WriteICS(&buf, sampleSchedule(), from); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"UID:math@weekly",
		"SUMMARY:Math",
		"DTSTART:20260105T090000",
		"DTEND:20260105T103000",
		"FREQ=WEEKLY",
		"BYDAY=MO,WE",
		"UID:lab@weekly",
		"DTSTART:20260102T130000",
		"BYDAY=FR",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("ICS output missing %q", want)
		}
	}
	if n := strings.Count(out, "BEGIN:VEVENT"); n != 2 {
		t.Fatalf("expected 2 events, got %d", n)
	}
}

func TestWeeklyRuleFirstOccurrenceSameDay(t *testing.T) {
	task := sampleSchedule().Tasks[0]
	monday := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	_, first, err := weeklyRule(task, monday)
	if err != nil {
		t.Fatal(err)
	}
	if !first.Equal(time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected first occurrence %v", first)
	}
}
