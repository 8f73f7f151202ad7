package schedule

import "slices"

// TimeIncrement is the grid granularity in minutes.
type TimeIncrement int

const (
	Increment15 TimeIncrement = 15
	Increment30 TimeIncrement = 30
	Increment60 TimeIncrement = 60
)

var Increments = []TimeIncrement{Increment15, Increment30, Increment60}

func (t TimeIncrement) Valid() bool {
	return slices.Contains(Increments, t)
}

// ClockFormat only affects how times are displayed.
type ClockFormat string

const (
	Clock12h ClockFormat = "12h"
	Clock24h ClockFormat = "24h"
)

type Task struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color"`
	Days        []Day  `json:"days"`
	StartTime   string `json:"startTime"` // "HH:MM", 24h
	EndTime     string `json:"endTime"`   // "HH:MM", 24h
}

// HasDay reports whether the task recurs on d.
func (t Task) HasDay(d Day) bool {
	return slices.Contains(t.Days, d)
}

func (t Task) Clone() Task {
	t.Days = slices.Clone(t.Days)
	return t
}

type Settings struct {
	ShowWeekends  bool          `json:"showWeekends"`
	StartOfWeek   StartOfWeek   `json:"startOfWeek"`
	TimeIncrement TimeIncrement `json:"timeIncrement"`
	StartHour     int           `json:"startHour"`
	EndHour       int           `json:"endHour"`
	ClockFormat   ClockFormat   `json:"clockFormat,omitempty"`
}

// DefaultSettings returns the settings every new schedule starts with.
func DefaultSettings() Settings {
	return Settings{
		ShowWeekends:  false,
		StartOfWeek:   WeekStartsSunday,
		TimeIncrement: Increment60,
		StartHour:     8,
		EndHour:       22,
		ClockFormat:   Clock12h,
	}
}

// SettingsPatch is a partial settings update. Nil fields are left untouched.
type SettingsPatch struct {
	ShowWeekends  *bool          `json:"showWeekends,omitempty"`
	StartOfWeek   *StartOfWeek   `json:"startOfWeek,omitempty"`
	TimeIncrement *TimeIncrement `json:"timeIncrement,omitempty"`
	StartHour     *int           `json:"startHour,omitempty"`
	EndHour       *int           `json:"endHour,omitempty"`
	ClockFormat   *ClockFormat   `json:"clockFormat,omitempty"`
}

// Apply shallow-merges p into s and returns the result.
func (p SettingsPatch) Apply(s Settings) Settings {
	if p.ShowWeekends != nil {
		s.ShowWeekends = *p.ShowWeekends
	}
	if p.StartOfWeek != nil {
		s.StartOfWeek = *p.StartOfWeek
	}
	if p.TimeIncrement != nil {
		s.TimeIncrement = *p.TimeIncrement
	}
	if p.StartHour != nil {
		s.StartHour = *p.StartHour
	}
	if p.EndHour != nil {
		s.EndHour = *p.EndHour
	}
	if p.ClockFormat != nil {
		s.ClockFormat = *p.ClockFormat
	}
	return s
}

// PatchFrom builds a patch that sets every field of s.
func PatchFrom(s Settings) SettingsPatch {
	return SettingsPatch{
		ShowWeekends:  &s.ShowWeekends,
		StartOfWeek:   &s.StartOfWeek,
		TimeIncrement: &s.TimeIncrement,
		StartHour:     &s.StartHour,
		EndHour:       &s.EndHour,
		ClockFormat:   &s.ClockFormat,
	}
}

// Schedule is a named weekly calendar.
//
// RemoteID and ShareToken use the empty string as their absent value.
// CreatedAt and UpdatedAt are unix milliseconds.
type Schedule struct {
	LocalID    string   `json:"id"`
	RemoteID   string   `json:"remoteId,omitempty"`
	Name       string   `json:"name"`
	Tasks      []Task   `json:"tasks"`
	Settings   Settings `json:"settings"`
	IsPublic   bool     `json:"isPublic"`
	ShareToken string   `json:"shareId,omitempty"`
	CreatedAt  int64    `json:"createdAt"`
	UpdatedAt  int64    `json:"updatedAt"`
}

// Synced reports whether the schedule has a remote identity.
func (s Schedule) Synced() bool { return s.RemoteID != "" }

// Task returns the task with the given id.
func (s Schedule) Task(id string) (Task, bool) {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// Clone returns a deep copy; the result shares no slices with s.
func (s Schedule) Clone() Schedule {
	if s.Tasks != nil {
		tasks := make([]Task, len(s.Tasks))
		for i, t := range s.Tasks {
			tasks[i] = t.Clone()
		}
		s.Tasks = tasks
	}
	return s
}

// PaletteMode selects between the pastel and bold color variants.
type PaletteMode string

const (
	PalettePastel PaletteMode = "pastel"
	PaletteBold   PaletteMode = "bold"
)

// Preferences are global display preferences, independent of any schedule.
type Preferences struct {
	DarkMode    bool        `json:"darkMode"`
	PaletteMode PaletteMode `json:"paletteMode"`
}

func DefaultPreferences() Preferences {
	return Preferences{PaletteMode: PalettePastel}
}
