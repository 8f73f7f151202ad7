package schedule

import (
	"fmt"
	"strings"
)

// Day is a weekday key as stored on tasks ("sun".."sat").
type Day string

const (
	Sunday    Day = "sun"
	Monday    Day = "mon"
	Tuesday   Day = "tue"
	Wednesday Day = "wed"
	Thursday  Day = "thu"
	Friday    Day = "fri"
	Saturday  Day = "sat"
)

// AllDays is the canonical Sun..Sat order.
var AllDays = []Day{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

var dayLabels = map[Day]string{
	Sunday:    "Sunday",
	Monday:    "Monday",
	Tuesday:   "Tuesday",
	Wednesday: "Wednesday",
	Thursday:  "Thursday",
	Friday:    "Friday",
	Saturday:  "Saturday",
}

func (d Day) Valid() bool {
	_, ok := dayLabels[d]
	return ok
}

// Label returns the full weekday name, e.g. "Monday".
func (d Day) Label() string {
	if l, ok := dayLabels[d]; ok {
		return l
	}
	return string(d)
}

// Short returns the three-letter display label, e.g. "Mon".
func (d Day) Short() string {
	l := d.Label()
	if len(l) < 3 {
		return l
	}
	return l[:3]
}

// Index is the position of d in AllDays, or -1.
func (d Day) Index() int {
	for i, x := range AllDays {
		if x == d {
			return i
		}
	}
	return -1
}

// ParseDay accepts "mon", "Mon", "monday" and similar spellings.
func ParseDay(s string) (Day, error) {
	for _, d := range AllDays {
		if strings.EqualFold(s, string(d)) || strings.EqualFold(s, d.Label()) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown day %q", s)
}

// StartOfWeek anchors the first column of the week grid.
type StartOfWeek string

const (
	WeekStartsSunday   StartOfWeek = "sunday"
	WeekStartsMonday   StartOfWeek = "monday"
	WeekStartsSaturday StartOfWeek = "saturday"
)

func (s StartOfWeek) Valid() bool {
	switch s {
	case WeekStartsSunday, WeekStartsMonday, WeekStartsSaturday:
		return true
	}
	return false
}

// Day returns the weekday the anchor names. Unknown anchors fall back to Sunday.
func (s StartOfWeek) Day() Day {
	switch s {
	case WeekStartsMonday:
		return Monday
	case WeekStartsSaturday:
		return Saturday
	}
	return Sunday
}
