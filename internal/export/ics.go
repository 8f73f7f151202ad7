package export

import (
	"fmt"
	"io"
	"os"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"github.com/sadopc/weekly/internal/schedule"
	"github.com/sadopc/weekly/internal/timegrid"
)

// icsFloating is a local date-time without zone, so recurring events keep
// their wall-clock time across DST changes.
const icsFloating = "20060102T150405"

var rruleDays = map[schedule.Day]rrule.Weekday{
	schedule.Sunday:    rrule.SU,
	schedule.Monday:    rrule.MO,
	schedule.Tuesday:   rrule.TU,
	schedule.Wednesday: rrule.WE,
	schedule.Thursday:  rrule.TH,
	schedule.Friday:    rrule.FR,
	schedule.Saturday:  rrule.SA,
}

// WriteICS writes each task of sc as a weekly recurring event. Recurrence
// starts at the first matching day on or after from.
func WriteICS(w io.Writer, sc schedule.Schedule, from time.Time) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//weekly//schedule export//EN")
	cal.SetXWRCalName(sc.Name)

	stamp := time.Now().UTC()
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)

	for _, t := range sc.Tasks {
		opt, first, err := weeklyRule(t, day)
		if err != nil {
			return fmt.Errorf("task %q: %w", t.Name, err)
		}
		length := time.Duration(timegrid.ToMinutes(t.EndTime)-timegrid.ToMinutes(t.StartTime)) * time.Minute

		ev := cal.AddEvent(t.ID + "@weekly")
		ev.SetDtStampTime(stamp)
		ev.SetSummary(t.Name)
		if t.Description != "" {
			ev.SetDescription(t.Description)
		}
		ev.SetProperty(ical.ComponentPropertyDtStart, first.Format(icsFloating))
		ev.SetProperty(ical.ComponentPropertyDtEnd, first.Add(length).Format(icsFloating))
		ev.AddRrule(opt.RRuleString())
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("write ics: %w", err)
	}
	return nil
}

func ToICS(sc schedule.Schedule, path string, from time.Time) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create ics file: %w", err)
	}
	defer f.Close()
	if err := WriteICS(f, sc, from); err != nil {
		return err
	}
	return f.Close()
}

// weeklyRule builds the task's recurrence and its first occurrence on or
// after day.
func weeklyRule(t schedule.Task, day time.Time) (rrule.ROption, time.Time, error) {
	var days []rrule.Weekday
	for _, d := range t.Days {
		wd, ok := rruleDays[d]
		if !ok {
			return rrule.ROption{}, time.Time{}, fmt.Errorf("%w: %q", schedule.ErrUnknownDay, d)
		}
		days = append(days, wd)
	}
	if len(days) == 0 {
		return rrule.ROption{}, time.Time{}, schedule.ErrNoDays
	}

	start := day.Add(time.Duration(timegrid.ToMinutes(t.StartTime)) * time.Minute)
	opt := rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: days,
		Dtstart:   start,
	}
	r, err := rrule.NewRRule(opt)
	if err != nil {
		return opt, time.Time{}, err
	}
	first := r.After(start, true)
	if first.IsZero() {
		return opt, time.Time{}, fmt.Errorf("no occurrence after %s", start.Format(time.DateOnly))
	}
	return opt, first, nil
}
