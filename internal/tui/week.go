package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/weekly/internal/schedule"
	"github.com/sadopc/weekly/internal/store"
	"github.com/sadopc/weekly/internal/timegrid"
)

const slotLabelWidth = 9

// taskFields backs the task form. Held by pointer so huh keeps writing into
// the same values across model copies.
type taskFields struct {
	name        string
	description string
	color       string
	days        []schedule.Day
	start       string
	end         string
}

type weekModel struct {
	store  *store.Store
	prefs  *store.Preferences
	width  int
	height int
	now    time.Time

	dayCursor  int
	slotCursor int

	formActive bool
	form       *huh.Form
	fields     *taskFields
	editingID  string // empty when adding
}

func newWeekModel(s *store.Store, p *store.Preferences) weekModel {
	return weekModel{
		store:  s,
		prefs:  p,
		fields: &taskFields{},
	}
}

func (w *weekModel) setSize(width, height int) {
	w.width = width
	w.height = height
}

// cursor resolves the cursor to a day and a slot interval on sc's grid.
func (w weekModel) cursor(sc schedule.Schedule) (day schedule.Day, start, end int, ok bool) {
	days := timegrid.VisibleDays(sc.Settings)
	slots := timegrid.Slots(sc.Settings)
	if len(days) == 0 || len(slots) == 0 {
		return "", 0, 0, false
	}
	d := clamp(w.dayCursor, 0, len(days)-1)
	s := clamp(w.slotCursor, 0, len(slots)-1)
	start = timegrid.ToMinutes(slots[s])
	end = min(start+int(sc.Settings.TimeIncrement), sc.Settings.EndHour*60)
	return days[d], start, end, true
}

// selectedTask is the earliest-starting task under the cursor.
func (w weekModel) selectedTask(sc schedule.Schedule) (schedule.Task, bool) {
	day, start, end, ok := w.cursor(sc)
	if !ok {
		return schedule.Task{}, false
	}
	ts := tasksIn(sc.Tasks, day, start, end)
	if len(ts) == 0 {
		return schedule.Task{}, false
	}
	return ts[0], true
}

func (w weekModel) update(msg tea.Msg) (weekModel, tea.Cmd) {
	if w.formActive && w.form != nil {
		return w.updateForm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return w, nil
	}
	sc, ok := w.store.Active()
	if !ok {
		return w, nil
	}
	days := timegrid.VisibleDays(sc.Settings)
	slots := timegrid.Slots(sc.Settings)
	w.dayCursor = clamp(w.dayCursor, 0, len(days)-1)
	w.slotCursor = clamp(w.slotCursor, 0, len(slots)-1)

	switch {
	case key.Matches(keyMsg, keys.Up):
		w.slotCursor = max(0, w.slotCursor-1)
	case key.Matches(keyMsg, keys.Down):
		w.slotCursor = min(len(slots)-1, w.slotCursor+1)
	case key.Matches(keyMsg, keys.Left):
		w.dayCursor = max(0, w.dayCursor-1)
	case key.Matches(keyMsg, keys.Right):
		w.dayCursor = min(len(days)-1, w.dayCursor+1)
	case key.Matches(keyMsg, keys.New):
		return w.showTaskForm(sc, schedule.Task{})
	case key.Matches(keyMsg, keys.Enter):
		if t, ok := w.selectedTask(sc); ok {
			return w.showTaskForm(sc, t)
		}
		return w.showTaskForm(sc, schedule.Task{})
	case key.Matches(keyMsg, keys.Delete):
		t, ok := w.selectedTask(sc)
		if !ok {
			return w, nil
		}
		if err := w.store.RemoveTask(t.ID); err != nil {
			return w, statusCmd(errStatus("Delete task", err))
		}
		return w, statusCmd(statusMsg{text: fmt.Sprintf("Deleted %q", t.Name)})
	}
	return w, nil
}

// showTaskForm opens the task form. A zero task means "add", prefilled from
// the cursor position.
func (w weekModel) showTaskForm(sc schedule.Schedule, t schedule.Task) (weekModel, tea.Cmd) {
	f := w.fields
	w.editingID = t.ID
	if t.ID == "" {
		day, start, end, _ := w.cursor(sc)
		if end >= 24*60 {
			end = 24*60 - 1
		}
		*f = taskFields{
			color: schedule.DefaultTaskColor,
			days:  []schedule.Day{day},
			start: timegrid.FromMinutes(start),
			end:   timegrid.FromMinutes(end),
		}
	} else {
		*f = taskFields{
			name:        t.Name,
			description: t.Description,
			color:       t.Color,
			days:        append([]schedule.Day(nil), t.Days...),
			start:       t.StartTime,
			end:         t.EndTime,
		}
	}

	prefs := w.prefs.Get()
	colorOptions := make([]huh.Option[string], 0, len(schedule.Palette)+1)
	known := false
	for _, c := range schedule.Palette {
		known = known || strings.EqualFold(c.Pastel, f.color)
		colorOptions = append(colorOptions, huh.NewOption(swatch(c.Pastel, prefs)+" "+c.Name, c.Pastel))
	}
	if !known {
		colorOptions = append(colorOptions, huh.NewOption(swatch(f.color, prefs)+" "+f.color, f.color))
	}

	dayOptions := make([]huh.Option[schedule.Day], 0, len(schedule.AllDays))
	for _, d := range timegrid.WeekOrder(sc.Settings.StartOfWeek) {
		dayOptions = append(dayOptions, huh.NewOption(d.Label(), d).Selected(containsDay(f.days, d)))
	}

	suggestions := timegrid.Suggestions(sc.Settings.TimeIncrement, 0, 24)
	w.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Task Name").Value(&f.name).Validate(schedule.ValidateName),
			huh.NewText().Title("Description").Lines(2).Value(&f.description),
			huh.NewSelect[string]().Title("Color").Options(colorOptions...).Value(&f.color),
		),
		huh.NewGroup(
			huh.NewMultiSelect[schedule.Day]().Title("Days").Options(dayOptions...).Value(&f.days).
				Validate(func(days []schedule.Day) error {
					if len(days) == 0 {
						return schedule.ErrNoDays
					}
					return nil
				}),
			huh.NewInput().Title("Start (HH:MM)").Suggestions(suggestions).Value(&f.start).
				Validate(validClock),
			huh.NewInput().Title("End (HH:MM)").Suggestions(suggestions).Value(&f.end).
				Validate(func(s string) error {
					if err := validClock(s); err != nil {
						return err
					}
					if timegrid.ToMinutes(s) <= timegrid.ToMinutes(f.start) {
						return schedule.ErrTimeOrder
					}
					return nil
				}),
		),
	).WithShowHelp(true).WithShowErrors(true)

	w.formActive = true
	return w, w.form.Init()
}

func validClock(s string) error {
	if !timegrid.ValidTime(s) {
		return schedule.ErrInvalidTime
	}
	return nil
}

func containsDay(days []schedule.Day, d schedule.Day) bool {
	for _, x := range days {
		if x == d {
			return true
		}
	}
	return false
}

func (w weekModel) updateForm(msg tea.Msg) (weekModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		w.formActive = false
		w.form = nil
		return w, nil
	}

	form, cmd := w.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		w.form = f
	}

	switch w.form.State {
	case huh.StateAborted:
		w.formActive = false
		w.form = nil
	case huh.StateCompleted:
		w.formActive = false
		w.form = nil
		return w, statusCmd(w.saveTask())
	}
	return w, cmd
}

func (w weekModel) saveTask() statusMsg {
	f := w.fields
	t := schedule.Task{
		ID:          w.editingID,
		Name:        strings.TrimSpace(f.name),
		Description: strings.TrimSpace(f.description),
		Color:       f.color,
		Days:        f.days,
		StartTime:   timegrid.FromMinutes(timegrid.ToMinutes(f.start)),
		EndTime:     timegrid.FromMinutes(timegrid.ToMinutes(f.end)),
	}
	if w.editingID == "" {
		if _, err := w.store.AddTask(t); err != nil {
			return errStatus("Add task", err)
		}
		return statusMsg{text: fmt.Sprintf("Added %q", t.Name)}
	}
	if err := w.store.UpdateTask(t); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return statusMsg{text: "Task was removed while editing", isError: true}
		}
		return errStatus("Update task", err)
	}
	return statusMsg{text: fmt.Sprintf("Updated %q", t.Name)}
}

func (w weekModel) view() string {
	width := w.width - 4

	if w.formActive && w.form != nil {
		title := titleStyle.Render("New Task")
		if w.editingID != "" {
			title = titleStyle.Render("Edit Task")
		}
		return activePanelStyle.Width(width).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", w.form.View()),
		)
	}

	sc, ok := w.store.Active()
	if !ok {
		return panelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Week"),
			"",
			mutedStyle.Render("No schedule yet. Press 2 and n to create one."),
		))
	}

	title := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render(sc.Name), "  ",
		subtitleStyle.Render(fmt.Sprintf("%d tasks", len(sc.Tasks))),
	)
	return panelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		w.renderGrid(sc, width-4),
		"",
		w.renderDetails(sc),
		"",
		mutedStyle.Render("  n: new  enter: edit  d: delete  ←↑↓→: move"),
	))
}

func (w weekModel) renderGrid(sc schedule.Schedule, inner int) string {
	settings := sc.Settings
	days := timegrid.VisibleDays(settings)
	slots := timegrid.Slots(settings)
	if len(days) == 0 || len(slots) == 0 {
		return mutedStyle.Render("Empty grid")
	}
	prefs := w.prefs.Get()
	dayCursor := clamp(w.dayCursor, 0, len(days)-1)
	slotCursor := clamp(w.slotCursor, 0, len(slots)-1)

	colW := max(4, (inner-slotLabelWidth-1)/len(days)-1)

	overlaps := make(map[schedule.Day]map[string]struct{}, len(days))
	for _, d := range days {
		overlaps[d] = timegrid.Overlaps(sc.Tasks, d)
	}

	today := ""
	nowMin := -1
	if !w.now.IsZero() {
		today = string(weekday(w.now))
		nowMin = w.now.Hour()*60 + w.now.Minute()
	}

	var rows []string
	header := []string{strings.Repeat(" ", slotLabelWidth+1)}
	for _, d := range days {
		label := d.Label()
		if colW < len(label) {
			label = d.Short()
		}
		style := dayHeaderStyle
		if string(d) == today {
			style = todayHeaderStyle
		}
		header = append(header, style.Width(colW).Render(truncate(label, colW)), " ")
	}
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, header...))

	visible := max(3, w.height-12)
	first := clamp(slotCursor-visible/2, 0, len(slots)-visible)
	last := min(len(slots), first+visible)

	for i := first; i < last; i++ {
		start := timegrid.ToMinutes(slots[i])
		end := min(start+int(settings.TimeIncrement), settings.EndHour*60)

		labelStyle := slotLabelStyle
		if nowMin >= start && nowMin < end {
			labelStyle = labelStyle.Foreground(colorAccent)
		}
		cells := []string{labelStyle.Width(slotLabelWidth).Render(timegrid.Display(slots[i], settings.ClockFormat)), " "}

		for di, d := range days {
			cells = append(cells, w.renderCell(sc, d, start, end, i == first, overlaps[d], prefs, colW,
				di == dayCursor && i == slotCursor), " ")
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	if first > 0 || last < len(slots) {
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("%*s rows %d-%d of %d", slotLabelWidth, "", first+1, last, len(slots))))
	}
	return strings.Join(rows, "\n")
}

// renderCell draws one slot of one day. The task name is printed in the slot
// where the task starts, or in the first visible row when it started earlier.
// A "+N" suffix counts the other tasks sharing the slot.
func (w weekModel) renderCell(sc schedule.Schedule, day schedule.Day, start, end int, firstRow bool,
	overlapping map[string]struct{}, prefs schedule.Preferences, width int, selected bool) string {
	ts := tasksIn(sc.Tasks, day, start, end)
	if len(ts) == 0 {
		style := emptyCellStyle.Width(width)
		if selected {
			style = style.Reverse(true)
		}
		return style.Render("·")
	}

	// A task starting in this slot wins over one running into it.
	t := ts[0]
	for _, x := range ts {
		if timegrid.ToMinutes(x.StartTime) >= start {
			t = x
			break
		}
	}
	text := ""
	if timegrid.ToMinutes(t.StartTime) >= start || firstRow {
		text = t.Name
		if _, ok := overlapping[t.ID]; ok {
			text = "! " + text
		}
		if len(ts) > 1 {
			text += fmt.Sprintf(" +%d", len(ts)-1)
		}
	}
	style := taskStyle(t.Color, prefs).Width(width)
	if selected {
		style = style.Reverse(true)
	}
	return style.Render(truncate(text, width))
}

func (w weekModel) renderDetails(sc schedule.Schedule) string {
	t, ok := w.selectedTask(sc)
	if !ok {
		day, start, _, ok := w.cursor(sc)
		if !ok {
			return ""
		}
		return mutedStyle.Render(fmt.Sprintf("  %s %s: free", day.Label(),
			timegrid.Display(timegrid.FromMinutes(start), sc.Settings.ClockFormat)))
	}

	var days []string
	for _, d := range timegrid.WeekOrder(sc.Settings.StartOfWeek) {
		if t.HasDay(d) {
			days = append(days, d.Short())
		}
	}
	clock := sc.Settings.ClockFormat
	line := fmt.Sprintf("  %s %s  %s  %s-%s (%s)",
		swatch(t.Color, w.prefs.Get()),
		highlightStyle.Render(t.Name),
		strings.Join(days, ", "),
		timegrid.Display(t.StartTime, clock),
		timegrid.Display(t.EndTime, clock),
		timegrid.Duration(t.StartTime, t.EndTime),
	)
	lines := []string{line}
	if t.Description != "" {
		lines = append(lines, mutedStyle.Render("  "+t.Description))
	}
	if conflicts := w.conflicts(sc, t); len(conflicts) > 0 {
		lines = append(lines, warningStyle.Render("  overlaps "+strings.Join(conflicts, ", ")))
	}
	return strings.Join(lines, "\n")
}

// conflicts names the tasks t overlaps with, on any of its days.
func (w weekModel) conflicts(sc schedule.Schedule, t schedule.Task) []string {
	var names []string
	seen := make(map[string]bool)
	for _, d := range t.Days {
		for _, other := range sc.Tasks {
			if other.ID == t.ID || seen[other.ID] {
				continue
			}
			if timegrid.Overlap(t, other, d) {
				seen[other.ID] = true
				names = append(names, other.Name)
			}
		}
	}
	return names
}

func statusCmd(msg statusMsg) tea.Cmd {
	return func() tea.Msg { return msg }
}
