// Command schedulerctl drives the scheduling engine from the shell: segment
// a calendar, solve a schedule against a task/physician configuration, and
// export a solved schedule as an ICS calendar.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bruno.lopes/dutyplanner/internal/holidays"
)

var rootCmd = &cobra.Command{
	Use:   "schedulerctl",
	Short: "Physician duty scheduler command-line tools",
	Long:  `schedulerctl segments a calendar, solves a schedule, and exports a solved schedule as ICS.`,
}

func main() {
	rootCmd.AddCommand(segmentCmd)
	rootCmd.AddCommand(solveCmd)
	rootCmd.AddCommand(exportICSCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// fixedLookup adapts holidays.GetHolidays (a pure function, no database) to
// calendarx.HolidayLookup, so the CLI can build a Calendar without wiring a
// *sql.DB.
type fixedLookup struct{}

func (fixedLookup) Holidays(region string, year int) ([]time.Time, error) {
	hs, err := holidays.GetHolidays(region, year)
	if err != nil {
		return nil, err
	}
	out := make([]time.Time, len(hs))
	for i, h := range hs {
		out[i] = h.Date
	}
	return out, nil
}
