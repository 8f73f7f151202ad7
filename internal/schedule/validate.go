package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrEmptyName      = errors.New("name must not be empty")
	ErrNoDays         = errors.New("at least one day is required")
	ErrUnknownDay     = errors.New("unknown day")
	ErrInvalidTime    = errors.New("time must be HH:MM between 00:00 and 23:59")
	ErrTimeOrder      = errors.New("start time must be before end time")
	ErrInvalidSetting = errors.New("invalid setting")
)

// ValidationError rejects a mutation before it reaches the store.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// ParseClock parses a strict "H:MM" or "HH:MM" 24-hour time into minutes since midnight.
func ParseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok || len(hh) < 1 || len(hh) > 2 || len(mm) != 2 {
		return 0, ErrInvalidTime
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, ErrInvalidTime
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, ErrInvalidTime
	}
	return h*60 + m, nil
}

// ValidateName checks a schedule or task name.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return invalid("name", ErrEmptyName)
	}
	return nil
}

// ValidateTask checks the task invariants: a name, at least one known day and start < end.
func ValidateTask(t Task) error {
	if err := ValidateName(t.Name); err != nil {
		return err
	}
	if len(t.Days) == 0 {
		return invalid("days", ErrNoDays)
	}
	for _, d := range t.Days {
		if !d.Valid() {
			return invalid("days", fmt.Errorf("%w: %q", ErrUnknownDay, d))
		}
	}
	start, err := ParseClock(t.StartTime)
	if err != nil {
		return invalid("startTime", err)
	}
	end, err := ParseClock(t.EndTime)
	if err != nil {
		return invalid("endTime", err)
	}
	if start >= end {
		return invalid("endTime", ErrTimeOrder)
	}
	return nil
}

// ValidateSettings checks enum membership and 0 <= startHour < endHour <= 24.
func ValidateSettings(s Settings) error {
	if !s.StartOfWeek.Valid() {
		return invalid("startOfWeek", fmt.Errorf("%w: %q", ErrInvalidSetting, s.StartOfWeek))
	}
	if !s.TimeIncrement.Valid() {
		return invalid("timeIncrement", fmt.Errorf("%w: %d", ErrInvalidSetting, s.TimeIncrement))
	}
	if s.StartHour < 0 || s.EndHour > 24 || s.StartHour >= s.EndHour {
		return invalid("hours", fmt.Errorf("%w: %d-%d", ErrInvalidSetting, s.StartHour, s.EndHour))
	}
	switch s.ClockFormat {
	case "", Clock12h, Clock24h:
	default:
		return invalid("clockFormat", fmt.Errorf("%w: %q", ErrInvalidSetting, s.ClockFormat))
	}
	return nil
}
