package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/weekly/internal/schedule"
)

var (
	colorPrimary   = lipgloss.Color("#6366F1")
	colorAccent    = lipgloss.Color("#F43F5E")
	colorMuted     = lipgloss.Color("#6B7280")
	colorSuccess   = lipgloss.Color("#22C55E")
	colorWarning   = lipgloss.Color("#F59E0B")
	colorError     = lipgloss.Color("#E11D48")
	colorFg        = lipgloss.Color("#E5E7EB")
	colorSubtle    = lipgloss.Color("#374151")
	colorHighlight = lipgloss.Color("#93C5FD")
)

var (
	// Tabs
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorPrimary).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Padding(0, 2)

	// Panels
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Padding(1, 2)

	// Grid
	slotLabelStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Align(lipgloss.Right)

	dayHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorFg)

	todayHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorAccent)

	emptyCellStyle = lipgloss.NewStyle().
			Foreground(colorSubtle)

	// Text
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorFg)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	accentStyle = lipgloss.NewStyle().
			Foreground(colorAccent)

	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	highlightStyle = lipgloss.NewStyle().
			Foreground(colorHighlight)

	// Header/footer
	headerStyle = lipgloss.NewStyle().
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	// List items
	selectedItemStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	normalItemStyle = lipgloss.NewStyle().
			Foreground(colorFg)
)

// taskStyle paints a task block in its palette colors for the current
// display preferences.
func taskStyle(color string, prefs schedule.Preferences) lipgloss.Style {
	c := schedule.ResolveColors(color, prefs.PaletteMode, prefs.DarkMode)
	return lipgloss.NewStyle().
		Background(lipgloss.Color(c.Background)).
		Foreground(lipgloss.Color(c.Text))
}

// swatch is a colored dot for lists and legends.
func swatch(color string, prefs schedule.Preferences) string {
	c := schedule.ResolveColors(color, prefs.PaletteMode, prefs.DarkMode)
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c.Border)).Render("●")
}
