package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/weekly/internal/schedule"
	"github.com/sadopc/weekly/internal/store"
	"github.com/sadopc/weekly/internal/timegrid"
)

type statsModel struct {
	store  *store.Store
	prefs  *store.Preferences
	width  int
	height int

	chart barchart.Model
}

func newStatsModel(s *store.Store, p *store.Preferences) statsModel {
	return statsModel{
		store: s,
		prefs: p,
		chart: barchart.New(60, 12),
	}
}

func (m *statsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

// dayTotal is the scheduled time of one visible day.
type dayTotal struct {
	day      schedule.Day
	minutes  int
	tasks    int
	overlaps int
}

func weekTotals(sc schedule.Schedule) []dayTotal {
	days := timegrid.VisibleDays(sc.Settings)
	out := make([]dayTotal, 0, len(days))
	for _, d := range days {
		n := 0
		for _, t := range sc.Tasks {
			if t.HasDay(d) {
				n++
			}
		}
		out = append(out, dayTotal{
			day:      d,
			minutes:  timegrid.DayMinutes(sc.Tasks, d),
			tasks:    n,
			overlaps: len(timegrid.Overlaps(sc.Tasks, d)),
		})
	}
	return out
}

// refresh rebuilds the chart from the active schedule: one stacked bar per
// visible day, one segment per task in its palette color.
func (m *statsModel) refresh() {
	chartWidth := max(20, m.width-8)
	chartHeight := 12
	if m.height > 30 {
		chartHeight = 16
	}
	m.chart = barchart.New(chartWidth, chartHeight)

	sc, ok := m.store.Active()
	if !ok {
		return
	}
	prefs := m.prefs.Get()

	var bars []barchart.BarData
	for _, d := range timegrid.VisibleDays(sc.Settings) {
		var values []barchart.BarValue
		for _, t := range sc.Tasks {
			if !t.HasDay(d) {
				continue
			}
			mins := timegrid.ToMinutes(t.EndTime) - timegrid.ToMinutes(t.StartTime)
			if mins <= 0 {
				continue
			}
			c := schedule.ResolveColors(t.Color, prefs.PaletteMode, prefs.DarkMode)
			values = append(values, barchart.BarValue{
				Name:  t.Name,
				Value: float64(mins) / 60,
				Style: lipgloss.NewStyle().Foreground(lipgloss.Color(c.Border)),
			})
		}
		if len(values) == 0 {
			values = []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}}
		}
		bars = append(bars, barchart.BarData{Label: d.Short(), Values: values})
	}

	m.chart.PushAll(bars)
	m.chart.Draw()
}

func (m statsModel) view() string {
	w := m.width - 4

	sc, ok := m.store.Active()
	if !ok {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Stats"),
			"",
			mutedStyle.Render("No active schedule"),
		))
	}

	totals := weekTotals(sc)
	week := 0
	busiest := dayTotal{}
	for _, t := range totals {
		week += t.minutes
		if t.minutes > busiest.minutes {
			busiest = t
		}
	}

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Stats"), "  ",
		subtitleStyle.Render(sc.Name), "  ",
		highlightStyle.Render(formatMinutes(week)+" per week"),
	)
	if busiest.minutes > 0 {
		header = lipgloss.JoinHorizontal(lipgloss.Bottom, header, "  ",
			mutedStyle.Render("busiest: "+busiest.day.Label()))
	}

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		header, "", m.chart.View(), "", m.renderLegend(sc), "", renderTotalsTable(totals, w),
	))
}

func (m statsModel) renderLegend(sc schedule.Schedule) string {
	prefs := m.prefs.Get()
	var items []string
	for _, t := range sc.Tasks {
		items = append(items, swatch(t.Color, prefs)+" "+t.Name)
	}
	if len(items) == 0 {
		return mutedStyle.Render("  No tasks scheduled")
	}
	return "  " + strings.Join(items, "  ")
}

func renderTotalsTable(totals []dayTotal, w int) string {
	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %8s %6s %9s", "Day", "Time", "Tasks", "Overlaps")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(max(w-6, 0), 38))))
	for _, t := range totals {
		overlaps := fmt.Sprintf("%9d", t.overlaps)
		if t.overlaps > 0 {
			overlaps = warningStyle.Render(overlaps)
		}
		rows = append(rows, fmt.Sprintf("  %-12s %8s %6d %s", t.day.Label(), formatMinutes(t.minutes), t.tasks, overlaps))
	}
	return strings.Join(rows, "\n")
}

// formatMinutes renders a total as "52h 30m"; zero is "0m".
func formatMinutes(mins int) string {
	h, m := mins/60, mins%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}
