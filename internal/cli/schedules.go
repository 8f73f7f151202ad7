package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sadopc/weekly/internal/store"
	"github.com/sadopc/weekly/internal/timegrid"
)

var (
	headerCell = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell       = lipgloss.NewStyle().Padding(0, 1)
)

func newSchedulesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "schedules",
		Aliases: []string{"ls"},
		Short:   "List local schedules",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts, false)
			if err != nil {
				return err
			}
			defer e.close()

			snap := e.store.Snapshot()
			if len(snap.Schedules) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No schedules yet.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), scheduleTable(snap, time.Now()))
			return nil
		},
	}
	cmd.AddCommand(newUseCmd(opts))
	return cmd
}

func newUseCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "use <id|name>",
		Short: "Make a schedule active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts, false)
			if err != nil {
				return err
			}
			defer e.close()

			sc, err := pickSchedule(e.store.Snapshot(), args[0])
			if err != nil {
				return err
			}
			if err := e.store.SetActive(sc.LocalID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Active schedule: %s\n", sc.Name)
			return nil
		},
	}
}

// scheduleTable renders one row per schedule; the active one is starred.
func scheduleTable(snap store.Snapshot, now time.Time) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("", "ID", "NAME", "TASKS", "HOURS", "UPDATED", "SYNC").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCell
			}
			return cell
		})

	for _, sc := range snap.Schedules {
		mark := ""
		if sc.LocalID == snap.ActiveID {
			mark = "*"
		}
		mins := 0
		for _, d := range timegrid.VisibleDays(sc.Settings) {
			mins += timegrid.DayMinutes(sc.Tasks, d)
		}
		sync := "local"
		switch {
		case sc.IsPublic:
			sync = "shared"
		case sc.Synced():
			sync = "synced"
		}
		t.Row(
			mark,
			sc.LocalID,
			sc.Name,
			strconv.Itoa(len(sc.Tasks)),
			strconv.FormatFloat(float64(mins)/60, 'f', 1, 64),
			humanize.RelTime(time.UnixMilli(sc.UpdatedAt), now, "ago", "from now"),
			sync,
		)
	}
	return t.Render()
}
