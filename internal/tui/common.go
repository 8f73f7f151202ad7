package tui

import (
	"slices"
	"time"

	"github.com/sadopc/weekly/internal/schedule"
	"github.com/sadopc/weekly/internal/timegrid"
)

// viewState represents the currently active view.
type viewState int

const (
	viewWeek viewState = iota
	viewSchedules
	viewStats
	viewSettings
)

var viewNames = []string{"Week", "Schedules", "Stats", "Settings"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

// storeChangedMsg is sent after any store mutation, local or from sync.
type storeChangedMsg struct{}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

func errStatus(prefix string, err error) statusMsg {
	return statusMsg{text: prefix + ": " + err.Error(), isError: true}
}

// --- Helpers ---

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return max(lo, min(v, hi))
}

// tasksIn returns the tasks on day whose interval intersects [start, end),
// ordered by start time.
func tasksIn(tasks []schedule.Task, day schedule.Day, start, end int) []schedule.Task {
	var out []schedule.Task
	for _, t := range tasks {
		if !t.HasDay(day) {
			continue
		}
		ts, te := timegrid.ToMinutes(t.StartTime), timegrid.ToMinutes(t.EndTime)
		if ts < end && te > start {
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, func(a, b schedule.Task) int {
		return timegrid.ToMinutes(a.StartTime) - timegrid.ToMinutes(b.StartTime)
	})
	return out
}

// weekday maps a time.Time onto the schedule's day names.
func weekday(t time.Time) schedule.Day {
	return schedule.AllDays[int(t.Weekday())]
}
