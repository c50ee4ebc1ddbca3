package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bruno.lopes/dutyplanner/internal/config"
	"github.com/bruno.lopes/dutyplanner/internal/domain"
	"github.com/bruno.lopes/dutyplanner/internal/ics"
	"github.com/bruno.lopes/dutyplanner/internal/scheduler"
)

var (
	exportICSSchedulePath string
	exportICSOut          string
)

var exportICSCmd = &cobra.Command{
	Use:   "export-ics",
	Short: "Export a solved schedule document as an RFC 5545 calendar",
	Long: `export-ics loads a schedule document written by "solve" and renders it as
a VCALENDAR with one VEVENT per assignment, written to --out (or stdout).`,
	Example: `  schedulerctl export-ics --schedule schedule.json --out schedule.ics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var doc config.ScheduleDocument
		if err := config.LoadJSON(exportICSSchedulePath, &doc); err != nil {
			return fmt.Errorf("loading %s: %w", exportICSSchedulePath, err)
		}

		byPhysician, err := toAssignments(doc)
		if err != nil {
			return err
		}

		out := os.Stdout
		if exportICSOut != "" {
			f, err := os.Create(exportICSOut)
			if err != nil {
				return fmt.Errorf("creating %s: %w", exportICSOut, err)
			}
			defer f.Close()
			out = f
		}
		return ics.Export(out, byPhysician)
	},
}

// toAssignments converts a persisted ScheduleDocument back into the
// scheduler.Assignment shape ics.Export expects.
func toAssignments(doc config.ScheduleDocument) (map[string][]scheduler.Assignment, error) {
	byPhysician := make(map[string][]scheduler.Assignment, len(doc))
	for physician, entries := range doc {
		for _, e := range entries {
			start, err := time.Parse("2006-01-02", e.StartDate)
			if err != nil {
				return nil, fmt.Errorf("parsing start_date %q: %w", e.StartDate, err)
			}
			end, err := time.Parse("2006-01-02", e.EndDate)
			if err != nil {
				return nil, fmt.Errorf("parsing end_date %q: %w", e.EndDate, err)
			}
			days := make([]time.Time, len(e.Days))
			for i, d := range e.Days {
				parsed, err := time.Parse("2006-01-02", d)
				if err != nil {
					return nil, fmt.Errorf("parsing day %q: %w", d, err)
				}
				if i > 0 && !parsed.Equal(days[i-1].AddDate(0, 0, 1)) {
					return nil, fmt.Errorf("%w: task %s days are not contiguous at %s",
						domain.ErrInconsistentLoadedSchedule, e.Task, d)
				}
				days[i] = parsed
			}
			byPhysician[physician] = append(byPhysician[physician], scheduler.Assignment{
				Physician: physician,
				TaskName:  e.Task,
				Days:      days,
				StartDate: start,
				EndDate:   end,
				Score:     e.Score,
			})
		}
	}
	return byPhysician, nil
}

func init() {
	exportICSCmd.Flags().StringVar(&exportICSSchedulePath, "schedule", "", "schedule document path (required)")
	exportICSCmd.Flags().StringVar(&exportICSOut, "out", "", "output .ics path (default: stdout)")

	exportICSCmd.MarkFlagRequired("schedule")
}
