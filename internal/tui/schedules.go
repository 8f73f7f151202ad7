package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/sadopc/weekly/internal/schedule"
	"github.com/sadopc/weekly/internal/store"
	"github.com/sadopc/weekly/internal/syncer"
)

const remoteCallTimeout = 15 * time.Second

var errEmptyToken = errors.New("token must not be empty")

type scheduleForm int

const (
	formCreate scheduleForm = iota
	formRename
	formDelete
	formImport
)

// switchViewMsg asks the app to change tabs.
type switchViewMsg struct {
	view viewState
}

type schedulesModel struct {
	store  *store.Store
	sync   *syncer.Engine
	width  int
	height int
	now    func() time.Time

	cursor int

	formActive bool
	form       *huh.Form
	formType   scheduleForm
	targetID   string

	// Form values as pointers (survive value copies)
	input   *string
	confirm *bool
}

func newSchedulesModel(s *store.Store, e *syncer.Engine) schedulesModel {
	input, confirm := "", false
	return schedulesModel{
		store:   s,
		sync:    e,
		now:     time.Now,
		input:   &input,
		confirm: &confirm,
	}
}

func (m *schedulesModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m schedulesModel) selected() (schedule.Schedule, bool) {
	snap := m.store.Snapshot()
	if len(snap.Schedules) == 0 {
		return schedule.Schedule{}, false
	}
	return snap.Schedules[clamp(m.cursor, 0, len(snap.Schedules)-1)], true
}

func (m schedulesModel) update(msg tea.Msg) (schedulesModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	n := len(m.store.Snapshot().Schedules)
	m.cursor = clamp(m.cursor, 0, n-1)

	switch {
	case key.Matches(keyMsg, keys.Up):
		m.cursor = max(0, m.cursor-1)
	case key.Matches(keyMsg, keys.Down):
		m.cursor = clamp(m.cursor+1, 0, n-1)
	case key.Matches(keyMsg, keys.New):
		return m.showInputForm(formCreate, "", "New Schedule", "")
	case key.Matches(keyMsg, keys.Import):
		if m.sync == nil {
			return m, statusCmd(statusMsg{text: "Importing shared schedules needs a remote; set remote.url", isError: true})
		}
		return m.showInputForm(formImport, "", "Share token", "")
	}

	sc, ok := m.selected()
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, keys.Enter):
		if err := m.store.SetActive(sc.LocalID); err != nil {
			return m, statusCmd(errStatus("Select schedule", err))
		}
		return m, tea.Batch(
			statusCmd(statusMsg{text: fmt.Sprintf("Switched to %q", sc.Name)}),
			func() tea.Msg { return switchViewMsg{view: viewWeek} },
		)
	case key.Matches(keyMsg, keys.Rename):
		return m.showInputForm(formRename, sc.LocalID, "Rename Schedule", sc.Name)
	case key.Matches(keyMsg, keys.Duplicate):
		if _, err := m.store.DuplicateSchedule(sc.LocalID); err != nil {
			return m, statusCmd(errStatus("Duplicate", err))
		}
		return m, statusCmd(statusMsg{text: fmt.Sprintf("Duplicated %q", sc.Name)})
	case key.Matches(keyMsg, keys.Delete):
		return m.showDeleteForm(sc)
	case key.Matches(keyMsg, keys.Share):
		return m, m.toggleShare(sc)
	}
	return m, nil
}

func (m schedulesModel) showInputForm(kind scheduleForm, targetID, title, value string) (schedulesModel, tea.Cmd) {
	*m.input = value
	m.formType = kind
	m.targetID = targetID

	input := huh.NewInput().Title(title).Value(m.input)
	if kind == formImport {
		input = input.Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errEmptyToken
			}
			return nil
		})
	} else {
		input = input.Validate(schedule.ValidateName)
	}
	m.form = huh.NewForm(huh.NewGroup(input)).WithShowHelp(true).WithShowErrors(true)
	m.formActive = true
	return m, m.form.Init()
}

func (m schedulesModel) showDeleteForm(sc schedule.Schedule) (schedulesModel, tea.Cmd) {
	*m.confirm = false
	m.formType = formDelete
	m.targetID = sc.LocalID

	desc := fmt.Sprintf("%d tasks will be lost.", len(sc.Tasks))
	if sc.Synced() {
		desc += " The synced copy is deleted too."
	}
	m.form = huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("Delete %q?", sc.Name)).
			Description(desc).
			Affirmative("Delete").
			Negative("Keep").
			Value(m.confirm),
	)).WithShowHelp(true)
	m.formActive = true
	return m, m.form.Init()
}

func (m schedulesModel) updateForm(msg tea.Msg) (schedulesModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		m.formActive = false
		m.form = nil
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateAborted:
		m.formActive = false
		m.form = nil
	case huh.StateCompleted:
		m.formActive = false
		m.form = nil
		return m, m.submit()
	}
	return m, cmd
}

func (m schedulesModel) submit() tea.Cmd {
	value := strings.TrimSpace(*m.input)
	switch m.formType {
	case formCreate:
		if _, err := m.store.CreateSchedule(value); err != nil {
			return statusCmd(errStatus("Create schedule", err))
		}
		return statusCmd(statusMsg{text: fmt.Sprintf("Created %q", value)})
	case formRename:
		if err := m.store.RenameSchedule(m.targetID, value); err != nil {
			return statusCmd(errStatus("Rename", err))
		}
		return statusCmd(statusMsg{text: "Renamed to " + value})
	case formDelete:
		if !*m.confirm {
			return nil
		}
		m.store.DeleteSchedule(m.targetID)
		return statusCmd(statusMsg{text: "Schedule deleted"})
	case formImport:
		return m.importShared(value)
	}
	return nil
}

func (m schedulesModel) toggleShare(sc schedule.Schedule) tea.Cmd {
	if m.sync == nil {
		return statusCmd(statusMsg{text: "Sharing needs a remote; set remote.url", isError: true})
	}
	e := m.sync
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), remoteCallTimeout)
		defer cancel()
		token, err := e.ToggleShare(ctx, sc.LocalID)
		if err != nil {
			return errStatus("Share", err)
		}
		if token == "" {
			return statusMsg{text: fmt.Sprintf("%q is private", sc.Name)}
		}
		return statusMsg{text: fmt.Sprintf("%q shared, token %s", sc.Name, token)}
	}
}

func (m schedulesModel) importShared(token string) tea.Cmd {
	e := m.sync
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), remoteCallTimeout)
		defer cancel()
		if _, err := e.ImportShared(ctx, token); err != nil {
			return errStatus("Import", err)
		}
		return statusMsg{text: "Imported shared schedule"}
	}
}

func (m schedulesModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		titles := map[scheduleForm]string{
			formCreate: "New Schedule",
			formRename: "Rename Schedule",
			formDelete: "Delete Schedule",
			formImport: "Import Shared Schedule",
		}
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(titles[m.formType]), "", m.form.View())
		return activePanelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render("Schedules")
	if m.sync != nil {
		title = lipgloss.JoinHorizontal(lipgloss.Bottom, title, "  ", subtitleStyle.Render("sync: "+m.sync.State().String()))
	}

	snap := m.store.Snapshot()
	if len(snap.Schedules) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No schedules yet. Press n to create one."),
		))
	}

	var rows []string
	rows = append(rows, title, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-2s %-28s %6s  %-18s %s", "", "Name", "Tasks", "Updated", "")))

	now := m.now()
	cursor := clamp(m.cursor, 0, len(snap.Schedules)-1)
	for i, sc := range snap.Schedules {
		prefix := "  "
		style := normalItemStyle
		if i == cursor {
			prefix = "> "
			style = selectedItemStyle
		}
		active := " "
		if sc.LocalID == snap.ActiveID {
			active = successStyle.Render("●")
		}
		updated := humanize.RelTime(time.UnixMilli(sc.UpdatedAt), now, "ago", "from now")
		row := style.Render(prefix) + active + " " +
			style.Render(fmt.Sprintf("%-28s %6d  %-18s", truncate(sc.Name, 28), len(sc.Tasks), updated)) +
			" " + scheduleFlags(sc)
		rows = append(rows, row)
	}

	rows = append(rows, "")
	hint := "  enter: open  n: new  r: rename  c: duplicate  d: delete"
	if m.sync != nil {
		hint += "  s: share  i: import"
	}
	rows = append(rows, mutedStyle.Render(hint))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func scheduleFlags(sc schedule.Schedule) string {
	var flags []string
	if sc.Synced() {
		flags = append(flags, highlightStyle.Render("synced"))
	} else {
		flags = append(flags, mutedStyle.Render("local"))
	}
	if sc.IsPublic {
		flags = append(flags, accentStyle.Render("shared"))
	}
	return strings.Join(flags, " ")
}
