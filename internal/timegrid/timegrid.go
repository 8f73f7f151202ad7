// Package timegrid converts between clock strings and minute offsets, lays out
// the visible week and its time slots, and finds overlapping tasks.
//
// Every function is pure. Malformed input never panics; it produces a
// well-defined but possibly meaningless result.
package timegrid

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sadopc/weekly/internal/schedule"
)

// ToMinutes parses "HH:MM" into minutes since midnight. Unparseable parts count as zero.
func ToMinutes(hhmm string) int {
	hh, mm, _ := strings.Cut(hhmm, ":")
	h, _ := strconv.Atoi(strings.TrimSpace(hh))
	m, _ := strconv.Atoi(strings.TrimSpace(mm))
	return h*60 + m
}

// FromMinutes formats minutes since midnight as zero-padded "HH:MM".
// Hours wrap at 24, so 1440 becomes "00:00".
func FromMinutes(minutes int) string {
	h := (minutes / 60) % 24
	m := minutes % 60
	if m < 0 {
		m += 60
		h--
	}
	if h < 0 {
		h += 24
	}
	return fmt.Sprintf("%02d:%02d", h, m)
}

// ValidTime reports whether s is a 24-hour "H:MM" or "HH:MM" time.
func ValidTime(s string) bool {
	_, err := schedule.ParseClock(s)
	return err == nil
}

// Slots enumerates [startHour*60, endHour*60) in steps of the time increment.
// When the span is not a multiple of the increment, the last slot starts at the
// last step before endHour and covers the remaining partial period.
func Slots(s schedule.Settings) []string {
	step := int(s.TimeIncrement)
	if step <= 0 {
		return nil
	}
	start, end := s.StartHour*60, s.EndHour*60
	var slots []string
	for m := start; m < end; m += step {
		slots = append(slots, FromMinutes(m))
	}
	return slots
}

// Suggestions lists every increment-aligned time in [startHour, endHour), for
// time pickers.
func Suggestions(increment schedule.TimeIncrement, startHour, endHour int) []string {
	return Slots(schedule.Settings{TimeIncrement: increment, StartHour: startHour, EndHour: endHour})
}

// WeekOrder rotates Sun..Sat so that the anchor day comes first.
func WeekOrder(start schedule.StartOfWeek) []schedule.Day {
	first := start.Day().Index()
	order := make([]schedule.Day, len(schedule.AllDays))
	for i := range order {
		order[i] = schedule.AllDays[(first+i)%len(schedule.AllDays)]
	}
	return order
}

// WeekendDays returns the last two positions of the rotated week. The weekend
// is positional: a Saturday-anchored week hides Thursday and Friday.
func WeekendDays(start schedule.StartOfWeek) [2]schedule.Day {
	order := WeekOrder(start)
	return [2]schedule.Day{order[5], order[6]}
}

// VisibleDays is the rotated week, minus the weekend unless ShowWeekends is set.
func VisibleDays(s schedule.Settings) []schedule.Day {
	order := WeekOrder(s.StartOfWeek)
	if s.ShowWeekends {
		return order
	}
	return order[:5]
}

// Overlap reports whether a and b both occur on day and their half-open
// intervals [start, end) intersect. Touching endpoints do not overlap.
func Overlap(a, b schedule.Task, day schedule.Day) bool {
	if !a.HasDay(day) || !b.HasDay(day) {
		return false
	}
	aStart, aEnd := ToMinutes(a.StartTime), ToMinutes(a.EndTime)
	bStart, bEnd := ToMinutes(b.StartTime), ToMinutes(b.EndTime)
	return aStart < bEnd && bStart < aEnd
}

// Overlaps returns the ids of every task on day that overlaps at least one other
// task on that day. Pairs are compared exhaustively.
func Overlaps(tasks []schedule.Task, day schedule.Day) map[string]struct{} {
	var onDay []schedule.Task
	for _, t := range tasks {
		if t.HasDay(day) {
			onDay = append(onDay, t)
		}
	}
	ids := make(map[string]struct{})
	for i := 0; i < len(onDay); i++ {
		for j := i + 1; j < len(onDay); j++ {
			if Overlap(onDay[i], onDay[j], day) {
				ids[onDay[i].ID] = struct{}{}
				ids[onDay[j].ID] = struct{}{}
			}
		}
	}
	return ids
}
