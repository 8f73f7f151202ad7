package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/weekly/internal/schedule"
	"github.com/sadopc/weekly/internal/store"
	"github.com/sadopc/weekly/internal/timegrid"
)

// settingsFields backs the settings form.
type settingsFields struct {
	increment   schedule.TimeIncrement
	startHour   int
	endHour     int
	weekends    bool
	startOfWeek schedule.StartOfWeek
	clock       schedule.ClockFormat
	dark        bool
	palette     schedule.PaletteMode

	hasSchedule bool
}

type settingsModel struct {
	store  *store.Store
	prefs  *store.Preferences
	width  int
	height int

	formActive bool
	form       *huh.Form
	fields     *settingsFields
}

func newSettingsModel(s *store.Store, p *store.Preferences) settingsModel {
	return settingsModel{
		store:  s,
		prefs:  p,
		fields: &settingsFields{},
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return s.showForm()
		}
	}
	return s, nil
}

func hourOptions(from, to int, clock schedule.ClockFormat) []huh.Option[int] {
	opts := make([]huh.Option[int], 0, to-from+1)
	for h := from; h <= to; h++ {
		label := timegrid.Display(timegrid.FromMinutes(h*60), clock)
		if h == 24 {
			label = "midnight"
		}
		opts = append(opts, huh.NewOption(label, h))
	}
	return opts
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	f := s.fields
	prefs := s.prefs.Get()
	sc, ok := s.store.Active()
	settings := schedule.DefaultSettings()
	if ok {
		settings = sc.Settings
	}
	clock := settings.ClockFormat
	if clock == "" {
		clock = schedule.Clock12h
	}
	*f = settingsFields{
		increment:   settings.TimeIncrement,
		startHour:   settings.StartHour,
		endHour:     settings.EndHour,
		weekends:    settings.ShowWeekends,
		startOfWeek: settings.StartOfWeek,
		clock:       clock,
		dark:        prefs.DarkMode,
		palette:     prefs.PaletteMode,
		hasSchedule: ok,
	}

	display := huh.NewGroup(
		huh.NewConfirm().Title("Dark mode").Value(&f.dark),
		huh.NewSelect[schedule.PaletteMode]().Title("Palette").
			Options(
				huh.NewOption("Pastel", schedule.PalettePastel),
				huh.NewOption("Bold", schedule.PaletteBold),
			).Value(&f.palette),
	).Title("Display")

	groups := []*huh.Group{display}
	if ok {
		grid := huh.NewGroup(
			huh.NewSelect[schedule.TimeIncrement]().Title("Time increment").
				Options(
					huh.NewOption("15 minutes", schedule.Increment15),
					huh.NewOption("30 minutes", schedule.Increment30),
					huh.NewOption("1 hour", schedule.Increment60),
				).Value(&f.increment),
			huh.NewSelect[int]().Title("Day starts at").Options(hourOptions(0, 23, clock)...).Value(&f.startHour),
			huh.NewSelect[int]().Title("Day ends at").Options(hourOptions(1, 24, clock)...).Value(&f.endHour).
				Validate(func(h int) error {
					if h <= f.startHour {
						return errors.New("end must be after start")
					}
					return nil
				}),
		).Title(sc.Name + ": grid")
		week := huh.NewGroup(
			huh.NewSelect[schedule.StartOfWeek]().Title("Week starts on").
				Options(
					huh.NewOption("Sunday", schedule.WeekStartsSunday),
					huh.NewOption("Monday", schedule.WeekStartsMonday),
					huh.NewOption("Saturday", schedule.WeekStartsSaturday),
				).Value(&f.startOfWeek),
			huh.NewConfirm().Title("Show weekends").Value(&f.weekends),
			huh.NewSelect[schedule.ClockFormat]().Title("Clock").
				Options(
					huh.NewOption("12-hour", schedule.Clock12h),
					huh.NewOption("24-hour", schedule.Clock24h),
				).Value(&f.clock),
		).Title(sc.Name + ": week")
		groups = []*huh.Group{grid, week, display}
	}

	s.form = huh.NewForm(groups...).WithShowHelp(true).WithShowErrors(true)
	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		s.formActive = false
		s.form = nil
		return s, nil
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	switch s.form.State {
	case huh.StateAborted:
		s.formActive = false
		s.form = nil
	case huh.StateCompleted:
		s.formActive = false
		s.form = nil
		return s, statusCmd(s.save())
	}
	return s, cmd
}

func (s settingsModel) save() statusMsg {
	f := s.fields
	if f.hasSchedule {
		patch := schedule.PatchFrom(schedule.Settings{
			ShowWeekends:  f.weekends,
			StartOfWeek:   f.startOfWeek,
			TimeIncrement: f.increment,
			StartHour:     f.startHour,
			EndHour:       f.endHour,
			ClockFormat:   f.clock,
		})
		if err := s.store.UpdateSettings(patch); err != nil {
			return errStatus("Settings", err)
		}
	}
	if f.dark != s.prefs.Get().DarkMode {
		if _, err := s.prefs.ToggleDarkMode(); err != nil {
			return errStatus("Dark mode", err)
		}
	}
	if err := s.prefs.SetPaletteMode(f.palette); err != nil {
		return errStatus("Palette", err)
	}
	return statusMsg{text: "Settings saved"}
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		return activePanelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Settings"), "", s.form.View()),
		)
	}

	prefs := s.prefs.Get()
	var rows []string
	rows = append(rows, titleStyle.Render("Settings"), "")

	row := func(k, v string) {
		label := lipgloss.NewStyle().Width(20).Render(k)
		rows = append(rows, fmt.Sprintf("  %s %s", label, highlightStyle.Render(v)))
	}

	if sc, ok := s.store.Active(); ok {
		st := sc.Settings
		rows = append(rows, subtitleStyle.Render("  "+sc.Name))
		row("Time increment", formatMinutes(int(st.TimeIncrement)))
		row("Visible hours", fmt.Sprintf("%s - %s",
			timegrid.Display(timegrid.FromMinutes(st.StartHour*60), st.ClockFormat),
			timegrid.Display(timegrid.FromMinutes(st.EndHour*60), st.ClockFormat)))
		row("Week starts on", st.StartOfWeek.Day().Label())
		row("Show weekends", onOff(st.ShowWeekends))
		clock := st.ClockFormat
		if clock == "" {
			clock = schedule.Clock12h
		}
		row("Clock", string(clock))
		rows = append(rows, "")
	} else {
		rows = append(rows, mutedStyle.Render("  No active schedule; only display settings apply"), "")
	}

	rows = append(rows, subtitleStyle.Render("  Display"))
	row("Dark mode", onOff(prefs.DarkMode))
	row("Palette", string(prefs.PaletteMode))

	var preview []string
	for _, c := range schedule.Palette {
		preview = append(preview, taskStyle(c.Pastel, prefs).Render(" "+c.Name+" "))
	}
	rows = append(rows, "", "  "+lipgloss.JoinHorizontal(lipgloss.Top, preview...))
	rows = append(rows, "", mutedStyle.Render("Press enter to edit settings"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
