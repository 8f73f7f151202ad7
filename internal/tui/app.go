// Package tui is the terminal front end: a week grid, the schedule list,
// weekly stats and settings, all driven through the store.
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/weekly/internal/export"
	"github.com/sadopc/weekly/internal/store"
	"github.com/sadopc/weekly/internal/syncer"
)

var exportFormats = []string{"JSON", "CSV", "ICS"}

// App is the root Bubble Tea model.
type App struct {
	store *store.Store
	prefs *store.Preferences
	sync  *syncer.Engine
	now   func() time.Time

	changes     chan struct{}
	unsubscribe func()

	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int
	exportDir     string

	week      weekModel
	schedules schedulesModel
	stats     statsModel
	settings  settingsModel

	help   help.Model
	status string
	isErr  bool
}

type Option func(*App)

// WithSyncer enables sharing and shows the sync state.
func WithSyncer(e *syncer.Engine) Option {
	return func(a *App) { a.sync = e }
}

// WithExportDir sets where exports are written. Defaults to the home directory.
func WithExportDir(dir string) Option {
	return func(a *App) { a.exportDir = dir }
}

func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// NewApp subscribes to st so that changes from any source redraw the UI.
// Call Close when the program exits.
func NewApp(st *store.Store, prefs *store.Preferences, opts ...Option) App {
	h := help.New()
	h.ShowAll = false

	a := App{
		store:      st,
		prefs:      prefs,
		now:        time.Now,
		changes:    make(chan struct{}, 1),
		activeView: viewWeek,
		help:       h,
	}
	for _, o := range opts {
		o(&a)
	}
	if a.exportDir == "" {
		a.exportDir, _ = os.UserHomeDir()
	}

	a.week = newWeekModel(st, prefs)
	a.week.now = a.now()
	a.schedules = newSchedulesModel(st, a.sync)
	a.schedules.now = a.now
	a.stats = newStatsModel(st, prefs)
	a.settings = newSettingsModel(st, prefs)

	ch := a.changes
	a.unsubscribe = st.Subscribe(func(prev, cur store.Snapshot) {
		select {
		case ch <- struct{}{}:
		default:
		}
	})
	return a
}

// Close detaches the app from the store.
func (a App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	close(a.changes)
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.waitForChange(),
		tickCmd(),
	)
}

func (a App) waitForChange() tea.Cmd {
	ch := a.changes
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return storeChangedMsg{}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Minute, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.week.setSize(a.width, contentHeight)
		a.schedules.setSize(a.width, contentHeight)
		a.stats.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		a.stats.refresh()
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Theme):
			return a, a.toggleDarkMode()
		case key.Matches(msg, keys.Tab1):
			return a.switchTo(viewWeek), nil
		case key.Matches(msg, keys.Tab2):
			return a.switchTo(viewSchedules), nil
		case key.Matches(msg, keys.Tab3):
			return a.switchTo(viewStats), nil
		case key.Matches(msg, keys.Tab4):
			return a.switchTo(viewSettings), nil
		case key.Matches(msg, keys.Tab):
			return a.switchTo((a.activeView + 1) % viewState(len(viewNames))), nil
		}

	case storeChangedMsg:
		a.stats.refresh()
		return a, a.waitForChange()

	case tickMsg:
		a.week.now = time.Time(msg)
		return a, tickCmd()

	case switchViewMsg:
		return a.switchTo(msg.view), nil

	case statusMsg:
		a.status = msg.text
		a.isErr = msg.isError
		// Preferences live outside the store; redraw anything colored.
		a.stats.refresh()
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.isErr = false
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) switchTo(v viewState) App {
	a.activeView = v
	if v == viewStats {
		a.stats.refresh()
	}
	return a
}

func (a App) toggleDarkMode() tea.Cmd {
	dark, err := a.prefs.ToggleDarkMode()
	if err != nil {
		return statusCmd(errStatus("Dark mode", err))
	}
	return statusCmd(statusMsg{text: "Dark mode " + onOff(dark)})
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewWeek:
		a.week, cmd = a.week.update(msg)
	case viewSchedules:
		a.schedules, cmd = a.schedules.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewWeek:
		return a.week.formActive
	case viewSchedules:
		return a.schedules.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewWeek:
		content = a.week.view()
	case viewSchedules:
		content = a.schedules.view()
	case viewStats:
		content = a.stats.view()
	case viewSettings:
		content = a.settings.view()
	}

	contentHeight := max(1, a.height-lipgloss.Height(header)-lipgloss.Height(footer))

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("weekly")
	if sc, ok := a.store.Active(); ok {
		title += mutedStyle.Render(" / " + truncate(sc.Name, 24))
	}
	gap := max(1, a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.isErr {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	syncInfo := ""
	if a.sync != nil {
		state := a.sync.State()
		style := warningStyle
		if state == syncer.Steady {
			style = successStyle
		}
		syncInfo = style.Render(" ● " + state.String())
	}

	left := footerStyle.Render(helpView)
	right := syncInfo + status

	gap := max(1, a.width-lipgloss.Width(left)-lipgloss.Width(right)-2)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  CSV includes every schedule; JSON and ICS the active one"))
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	snap := a.store.Snapshot()
	dir := a.exportDir
	now := a.now()
	return func() tea.Msg {
		dateStr := now.Format("2006-01-02")
		ext := strings.ToLower(exportFormats[format])

		if ext == "csv" {
			if len(snap.Schedules) == 0 {
				return statusMsg{text: "Nothing to export", isError: true}
			}
			path := filepath.Join(dir, fmt.Sprintf("weekly-%s.csv", dateStr))
			if err := export.ToCSV(path, snap.Schedules...); err != nil {
				return errStatus("CSV error", err)
			}
			return exportDoneMsg{path: path}
		}

		sc, ok := snap.Active()
		if !ok {
			return statusMsg{text: "No active schedule to export", isError: true}
		}
		path := filepath.Join(dir, fmt.Sprintf("weekly-%s-%s.%s", export.Slug(sc.Name), dateStr, ext))
		var err error
		if ext == "json" {
			err = export.ToJSON(sc, path)
		} else {
			err = export.ToICS(sc, path, now)
		}
		if err != nil {
			return errStatus(exportFormats[format]+" error", err)
		}
		return exportDoneMsg{path: path}
	}
}
