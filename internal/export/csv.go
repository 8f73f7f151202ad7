package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sadopc/weekly/internal/schedule"
	"github.com/sadopc/weekly/internal/timegrid"
)

var csvHeader = []string{"Schedule", "Task", "Description", "Days", "Start", "End", "Duration (min)", "Duration", "Color"}

// WriteCSV writes one row per task of each schedule.
func WriteCSV(w io.Writer, schedules ...schedule.Schedule) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, sc := range schedules {
		for _, t := range sc.Tasks {
			days := make([]string, len(t.Days))
			for i, d := range t.Days {
				days[i] = d.Short()
			}
			mins := timegrid.ToMinutes(t.EndTime) - timegrid.ToMinutes(t.StartTime)
			row := []string{
				sc.Name,
				t.Name,
				t.Description,
				strings.Join(days, " "),
				t.StartTime,
				t.EndTime,
				strconv.Itoa(mins),
				formatDuration(mins),
				t.Color,
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func ToCSV(path string, schedules ...schedule.Schedule) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()
	if err := WriteCSV(f, schedules...); err != nil {
		return err
	}
	return f.Close()
}

// formatDuration renders minutes as HH:MM.
func formatDuration(mins int) string {
	if mins < 0 {
		mins = 0
	}
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}
