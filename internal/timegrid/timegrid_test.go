package timegrid

import (
	"slices"
	"testing"

	"github.com/sadopc/weekly/internal/schedule"
)

func task(id string, start, end string, days ...schedule.Day) schedule.Task {
	return schedule.Task{ID: id, Name: id, Days: days, StartTime: start, EndTime: end}
}

func settings(start schedule.StartOfWeek, weekends bool) schedule.Settings {
	s := schedule.DefaultSettings()
	s.StartOfWeek = start
	s.ShowWeekends = weekends
	return s
}

// ============================================================
// Minutes
// ============================================================

func TestToMinutes(t *testing.T) {
	tests := map[string]int{
		"00:00": 0,
		"09:30": 570,
		"9:05":  545,
		"23:59": 1439,
		"24:00": 1440,
	}
	for in, want := range tests {
		if got := ToMinutes(in); got != want {
			t.Errorf("ToMinutes(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestToMinutesMalformed(t *testing.T) {
	if got := ToMinutes("garbage"); got != 0 {
		t.Fatalf("expected 0 for garbage, got %d", got)
	}
	if got := ToMinutes("10"); got != 600 {
		t.Fatalf("expected hour-only input to parse as 600, got %d", got)
	}
}

func TestFromMinutes(t *testing.T) {
	tests := map[int]string{
		0:    "00:00",
		570:  "09:30",
		1439: "23:59",
		1440: "00:00",
		1530: "01:30",
		-30:  "23:30",
	}
	for in, want := range tests {
		if got := FromMinutes(in); got != want {
			t.Errorf("FromMinutes(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestMinutesRoundTrip(t *testing.T) {
	for m := 0; m < 24*60; m += 7 {
		if got := ToMinutes(FromMinutes(m)); got != m {
			t.Fatalf("round trip %d -> %q -> %d", m, FromMinutes(m), got)
		}
	}
}

func TestValidTime(t *testing.T) {
	for _, ok := range []string{"00:00", "9:15", "23:59"} {
		if !ValidTime(ok) {
			t.Errorf("%q should be valid", ok)
		}
	}
	for _, bad := range []string{"24:00", "12:60", "1230", "ab:cd", "", "12:5"} {
		if ValidTime(bad) {
			t.Errorf("%q should be invalid", bad)
		}
	}
}

// ============================================================
// Slots
// ============================================================

func TestSlotsHalfHour(t *testing.T) {
	s := schedule.Settings{StartHour: 8, EndHour: 10, TimeIncrement: schedule.Increment30}
	want := []string{"08:00", "08:30", "09:00", "09:30"}
	if got := Slots(s); !slices.Equal(got, want) {
		t.Fatalf("Slots = %v, want %v", got, want)
	}
}

func TestSlotsDefaultSettings(t *testing.T) {
	got := Slots(schedule.DefaultSettings())
	if len(got) != 14 {
		t.Fatalf("expected 14 hourly slots for 08-22, got %d", len(got))
	}
	if got[0] != "08:00" || got[len(got)-1] != "21:00" {
		t.Fatalf("unexpected bounds: %s..%s", got[0], got[len(got)-1])
	}
}

func TestSlotsPartialFinalPeriodIncluded(t *testing.T) {
	// 120 minutes in 45-minute steps: the last slot starts at 09:30 and is 30 minutes wide.
	s := schedule.Settings{StartHour: 8, EndHour: 10, TimeIncrement: 45}
	want := []string{"08:00", "08:45", "09:30"}
	if got := Slots(s); !slices.Equal(got, want) {
		t.Fatalf("Slots = %v, want %v", got, want)
	}
}

func TestSlotsFullDay(t *testing.T) {
	s := schedule.Settings{StartHour: 0, EndHour: 24, TimeIncrement: schedule.Increment15}
	got := Slots(s)
	if len(got) != 96 {
		t.Fatalf("expected 96 slots, got %d", len(got))
	}
	if got[95] != "23:45" {
		t.Fatalf("last slot = %s", got[95])
	}
}

func TestSlotsDegenerate(t *testing.T) {
	if got := Slots(schedule.Settings{StartHour: 8, EndHour: 10}); got != nil {
		t.Fatalf("zero increment should produce no slots, got %v", got)
	}
	if got := Slots(schedule.Settings{StartHour: 10, EndHour: 8, TimeIncrement: 60}); got != nil {
		t.Fatalf("inverted hours should produce no slots, got %v", got)
	}
}

func TestSuggestions(t *testing.T) {
	got := Suggestions(schedule.Increment60, 0, 24)
	if len(got) != 24 || got[0] != "00:00" || got[23] != "23:00" {
		t.Fatalf("unexpected suggestions: %v", got)
	}
}

// ============================================================
// Week order
// ============================================================

func TestWeekOrder(t *testing.T) {
	tests := []struct {
		start schedule.StartOfWeek
		want  []schedule.Day
	}{
		{schedule.WeekStartsSunday, []schedule.Day{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}},
		{schedule.WeekStartsMonday, []schedule.Day{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}},
		{schedule.WeekStartsSaturday, []schedule.Day{"sat", "sun", "mon", "tue", "wed", "thu", "fri"}},
	}
	for _, tt := range tests {
		if got := WeekOrder(tt.start); !slices.Equal(got, tt.want) {
			t.Errorf("WeekOrder(%s) = %v, want %v", tt.start, got, tt.want)
		}
	}
}

func TestWeekOrderUnknownAnchorFallsBackToSunday(t *testing.T) {
	got := WeekOrder("tuesday")
	if got[0] != schedule.Sunday {
		t.Fatalf("expected sunday first, got %v", got)
	}
}

func TestVisibleDaysHidesPositionalWeekend(t *testing.T) {
	tests := []struct {
		start  schedule.StartOfWeek
		hidden []schedule.Day
	}{
		{schedule.WeekStartsMonday, []schedule.Day{"sat", "sun"}},
		{schedule.WeekStartsSunday, []schedule.Day{"fri", "sat"}},
		{schedule.WeekStartsSaturday, []schedule.Day{"thu", "fri"}},
	}
	for _, tt := range tests {
		visible := VisibleDays(settings(tt.start, false))
		if len(visible) != 5 {
			t.Fatalf("%s: expected 5 visible days, got %v", tt.start, visible)
		}
		for _, d := range tt.hidden {
			if slices.Contains(visible, d) {
				t.Errorf("%s: %s should be hidden, got %v", tt.start, d, visible)
			}
		}
		weekend := WeekendDays(tt.start)
		if !slices.Equal(weekend[:], tt.hidden) {
			t.Errorf("%s: WeekendDays = %v, want %v", tt.start, weekend, tt.hidden)
		}
	}
}

func TestVisibleDaysWithWeekends(t *testing.T) {
	s := settings(schedule.WeekStartsMonday, true)
	if got := VisibleDays(s); !slices.Equal(got, WeekOrder(schedule.WeekStartsMonday)) {
		t.Fatalf("expected full rotation, got %v", got)
	}
}

// ============================================================
// Overlaps
// ============================================================

func TestOverlapScenario(t *testing.T) {
	math := task("math", "09:00", "10:00", schedule.Monday, schedule.Wednesday)
	lab := task("lab", "09:30", "10:30", schedule.Monday)
	tasks := []schedule.Task{math, lab}

	mon := Overlaps(tasks, schedule.Monday)
	if len(mon) != 2 {
		t.Fatalf("expected both tasks overlapping on monday, got %v", mon)
	}
	for _, id := range []string{"math", "lab"} {
		if _, ok := mon[id]; !ok {
			t.Errorf("missing %s", id)
		}
	}
	if wed := Overlaps(tasks, schedule.Wednesday); len(wed) != 0 {
		t.Fatalf("expected no overlaps on wednesday, got %v", wed)
	}
}

func TestOverlapTouchingEndpoints(t *testing.T) {
	a := task("a", "09:00", "10:00", schedule.Monday)
	b := task("b", "10:00", "11:00", schedule.Monday)
	if Overlap(a, b, schedule.Monday) || Overlap(b, a, schedule.Monday) {
		t.Fatal("tasks that only touch must not overlap")
	}
	if got := Overlaps([]schedule.Task{a, b}, schedule.Monday); len(got) != 0 {
		t.Fatalf("expected no overlaps, got %v", got)
	}
}

func TestOverlapSymmetric(t *testing.T) {
	times := []string{"08:00", "08:30", "09:00", "09:15", "10:00", "11:45"}
	var tasks []schedule.Task
	for i, s := range times {
		for _, e := range times[i+1:] {
			tasks = append(tasks, task(s+"-"+e, s, e, schedule.Tuesday))
		}
	}
	for _, a := range tasks {
		for _, b := range tasks {
			if Overlap(a, b, schedule.Tuesday) != Overlap(b, a, schedule.Tuesday) {
				t.Fatalf("asymmetric overlap for %s / %s", a.ID, b.ID)
			}
		}
	}
}

func TestOverlapContained(t *testing.T) {
	outer := task("outer", "08:00", "12:00", schedule.Friday)
	inner := task("inner", "09:00", "09:30", schedule.Friday)
	if !Overlap(outer, inner, schedule.Friday) {
		t.Fatal("contained task should overlap")
	}
}

func TestOverlapRequiresSharedDay(t *testing.T) {
	a := task("a", "09:00", "10:00", schedule.Monday)
	b := task("b", "09:00", "10:00", schedule.Tuesday)
	if Overlap(a, b, schedule.Monday) {
		t.Fatal("b is not on monday")
	}
}

func TestOverlapsOnlyParticipants(t *testing.T) {
	tasks := []schedule.Task{
		task("a", "09:00", "10:00", schedule.Monday),
		task("b", "09:30", "10:30", schedule.Monday),
		task("c", "13:00", "14:00", schedule.Monday),
	}
	got := Overlaps(tasks, schedule.Monday)
	if _, ok := got["c"]; ok || len(got) != 2 {
		t.Fatalf("expected only a and b, got %v", got)
	}
}
