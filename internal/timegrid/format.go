package timegrid

import (
	"fmt"
	"math"

	"github.com/sadopc/weekly/internal/schedule"
)

// Format12h renders "HH:MM" as "9:00 AM".
func Format12h(hhmm string) string {
	mins := ToMinutes(hhmm)
	h24 := (mins / 60) % 24
	m := mins % 60
	period := "AM"
	if h24 >= 12 {
		period = "PM"
	}
	h12 := h24
	switch {
	case h24 == 0:
		h12 = 12
	case h24 > 12:
		h12 = h24 - 12
	}
	return fmt.Sprintf("%d:%02d %s", h12, m, period)
}

// Display renders a time in the given clock format.
func Display(hhmm string, f schedule.ClockFormat) string {
	if f == schedule.Clock24h {
		return FromMinutes(ToMinutes(hhmm))
	}
	return Format12h(hhmm)
}

// Duration renders end-start as "1h 30m", "45m" or "2h"; non-positive spans are "0m".
func Duration(start, end string) string {
	diff := ToMinutes(end) - ToMinutes(start)
	if diff <= 0 {
		return "0m"
	}
	h, m := diff/60, diff%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

// Placement is a task block's vertical position on the grid, in percent of the grid height.
type Placement struct {
	TopPercent    float64
	HeightPercent float64
}

// Position places t on the grid described by s, clamping blocks that start
// before the grid or run past its end.
func Position(t schedule.Task, s schedule.Settings) Placement {
	gridStart := s.StartHour * 60
	total := float64(s.EndHour*60 - gridStart)
	if total <= 0 {
		return Placement{}
	}
	start, end := ToMinutes(t.StartTime), ToMinutes(t.EndTime)
	top := float64(start-gridStart) / total * 100
	height := float64(end-start) / total * 100

	top = math.Max(0, top)
	return Placement{
		TopPercent:    top,
		HeightPercent: math.Min(100-top, math.Max(0, height)),
	}
}

// DayMinutes sums the scheduled minutes per day. Overlapping tasks are counted
// once each, so a day can exceed its wall-clock span.
func DayMinutes(tasks []schedule.Task, day schedule.Day) int {
	total := 0
	for _, t := range tasks {
		if !t.HasDay(day) {
			continue
		}
		if d := ToMinutes(t.EndTime) - ToMinutes(t.StartTime); d > 0 {
			total += d
		}
	}
	return total
}

// ClampSlot maps minutes to the index of the slot that contains it, or -1 when
// outside the grid.
func ClampSlot(minutes int, s schedule.Settings) int {
	step := int(s.TimeIncrement)
	start, end := s.StartHour*60, s.EndHour*60
	if step <= 0 || minutes < start || minutes >= end {
		return -1
	}
	return (minutes - start) / step
}
