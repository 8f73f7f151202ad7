package timegrid

import (
	"testing"

	"github.com/sadopc/weekly/internal/schedule"
)

func TestFormat12h(t *testing.T) {
	tests := map[string]string{
		"00:00": "12:00 AM",
		"09:05": "9:05 AM",
		"12:00": "12:00 PM",
		"13:30": "1:30 PM",
		"23:59": "11:59 PM",
	}
	for in, want := range tests {
		if got := Format12h(in); got != want {
			t.Errorf("Format12h(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDisplay(t *testing.T) {
	if got := Display("9:05", schedule.Clock24h); got != "09:05" {
		t.Fatalf("24h display = %q", got)
	}
	if got := Display("21:00", schedule.Clock12h); got != "9:00 PM" {
		t.Fatalf("12h display = %q", got)
	}
	if got := Display("21:00", ""); got != "9:00 PM" {
		t.Fatalf("empty format should default to 12h, got %q", got)
	}
}

func TestDuration(t *testing.T) {
	tests := []struct{ start, end, want string }{
		{"09:00", "10:30", "1h 30m"},
		{"09:00", "09:45", "45m"},
		{"09:00", "11:00", "2h"},
		{"10:00", "10:00", "0m"},
		{"11:00", "10:00", "0m"},
	}
	for _, tt := range tests {
		if got := Duration(tt.start, tt.end); got != tt.want {
			t.Errorf("Duration(%s, %s) = %q, want %q", tt.start, tt.end, got, tt.want)
		}
	}
}

func TestPosition(t *testing.T) {
	s := schedule.Settings{StartHour: 8, EndHour: 18, TimeIncrement: 60}

	p := Position(task("a", "09:00", "10:00"), s)
	if p.TopPercent != 10 || p.HeightPercent != 10 {
		t.Fatalf("unexpected placement %+v", p)
	}

	// Starts before the grid: top clamps to zero, height keeps the raw length.
	p = Position(task("b", "07:00", "09:00"), s)
	if p.TopPercent != 0 || p.HeightPercent != 20 {
		t.Fatalf("unexpected clamped placement %+v", p)
	}

	// Runs past the end: height clamps to the remaining space.
	p = Position(task("c", "17:00", "20:00"), s)
	if p.TopPercent != 90 || p.HeightPercent != 10 {
		t.Fatalf("unexpected tail placement %+v", p)
	}
}

func TestPositionEmptyGrid(t *testing.T) {
	p := Position(task("a", "09:00", "10:00"), schedule.Settings{StartHour: 9, EndHour: 9})
	if p != (Placement{}) {
		t.Fatalf("expected zero placement, got %+v", p)
	}
}

func TestDayMinutes(t *testing.T) {
	tasks := []schedule.Task{
		task("a", "09:00", "10:30", schedule.Monday),
		task("b", "13:00", "14:00", schedule.Monday, schedule.Tuesday),
		task("c", "15:00", "14:00", schedule.Monday),
	}
	if got := DayMinutes(tasks, schedule.Monday); got != 150 {
		t.Fatalf("monday minutes = %d, want 150", got)
	}
	if got := DayMinutes(tasks, schedule.Sunday); got != 0 {
		t.Fatalf("sunday minutes = %d, want 0", got)
	}
}

func TestClampSlot(t *testing.T) {
	s := schedule.Settings{StartHour: 8, EndHour: 10, TimeIncrement: 30}
	tests := map[int]int{
		7*60 + 59: -1,
		8 * 60:    0,
		8*60 + 29: 0,
		9*60 + 45: 3,
		10 * 60:   -1,
	}
	for in, want := range tests {
		if got := ClampSlot(in, s); got != want {
			t.Errorf("ClampSlot(%d) = %d, want %d", in, got, want)
		}
	}
}
