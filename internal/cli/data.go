package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/weekly/internal/export"
	"github.com/sadopc/weekly/internal/schedule"
	"github.com/sadopc/weekly/internal/store"
)

var errNoSchedules = errors.New("no schedules yet; create one in the UI or import a file")

// pickSchedule resolves ref as a local id or a case-insensitive name. An
// empty ref means the active schedule.
func pickSchedule(snap store.Snapshot, ref string) (schedule.Schedule, error) {
	if len(snap.Schedules) == 0 {
		return schedule.Schedule{}, errNoSchedules
	}
	if ref == "" {
		if sc, ok := snap.Active(); ok {
			return sc, nil
		}
		return schedule.Schedule{}, errors.New("no active schedule")
	}
	if sc, ok := snap.Find(ref); ok {
		return sc, nil
	}
	var found []schedule.Schedule
	for _, sc := range snap.Schedules {
		if strings.EqualFold(sc.Name, ref) {
			found = append(found, sc)
		}
	}
	switch len(found) {
	case 0:
		return schedule.Schedule{}, fmt.Errorf("no schedule named %q", ref)
	case 1:
		return found[0], nil
	}
	return schedule.Schedule{}, fmt.Errorf("%d schedules are named %q; use the id", len(found), ref)
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var format, ref, out string
	var all bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a schedule as JSON, CSV or iCalendar",
		Example: `  weekly export --format ics --out fall.ics
  weekly export --format csv --all
  weekly export --schedule "Fall 2026" > fall.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			switch format {
			case "json", "csv", "ics":
			default:
				return fmt.Errorf("unknown format %q (want json, csv or ics)", format)
			}
			if all && format != "csv" {
				return errors.New("--all only applies to csv")
			}

			e, err := openEnv(opts, false)
			if err != nil {
				return err
			}
			defer e.close()

			snap := e.store.Snapshot()
			var selected []schedule.Schedule
			if all {
				if len(snap.Schedules) == 0 {
					return errNoSchedules
				}
				selected = snap.Schedules
			} else {
				sc, err := pickSchedule(snap, ref)
				if err != nil {
					return err
				}
				selected = []schedule.Schedule{sc}
			}

			w := cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}
			if err := writeExport(w, format, selected, time.Now()); err != nil {
				return err
			}
			if out != "" && out != "-" {
				fmt.Fprintln(cmd.ErrOrStderr(), "Exported to", out)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "json, csv or ics")
	cmd.Flags().StringVarP(&ref, "schedule", "s", "", "schedule id or name (default: active)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&all, "all", false, "export every schedule (csv only)")
	return cmd
}

func writeExport(w io.Writer, format string, schedules []schedule.Schedule, now time.Time) error {
	switch format {
	case "csv":
		return export.WriteCSV(w, schedules...)
	case "ics":
		return export.WriteICS(w, schedules[0], now)
	}
	return export.WriteJSON(w, schedules[0], now)
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import a schedule exported as JSON",
		Long: `Adds the schedule in the file as a new local schedule and makes it active.
The imported copy is never linked to the schedule it came from.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts, false)
			if err != nil {
				return err
			}
			defer e.close()

			id, err := export.FromJSON(e.store, args[0])
			if err != nil {
				return err
			}
			sc, _ := e.store.Get(id)
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %q (%d tasks) as %s\n", sc.Name, len(sc.Tasks), id)
			return nil
		},
	}
}
