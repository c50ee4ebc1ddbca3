package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bruno.lopes/dutyplanner/internal/calendarx"
)

var (
	segmentStart  string
	segmentEnd    string
	segmentRegion string
)

var segmentCmd = &cobra.Command{
	Use:   "segment",
	Short: "Segment a calendar horizon into MAIN/CALL periods",
	Long: `segment builds a calendar over --start/--end in --region and prints the
weekly MAIN/CALL PeriodInterval breakdown as JSON, one entry per ISO week.`,
	Example: `  schedulerctl segment --start 2023-01-02 --end 2023-01-30 --region Canada/QC`,
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := time.Parse("2006-01-02", segmentStart)
		if err != nil {
			return fmt.Errorf("invalid --start: %w", err)
		}
		end, err := time.Parse("2006-01-02", segmentEnd)
		if err != nil {
			return fmt.Errorf("invalid --end: %w", err)
		}

		cal, err := calendarx.New(start, end, segmentRegion, nil, fixedLookup{})
		if err != nil {
			return fmt.Errorf("building calendar: %w", err)
		}

		periods := calendarx.Segment(cal)
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(periods)
	},
}

func init() {
	segmentCmd.Flags().StringVar(&segmentStart, "start", "", "horizon start date, YYYY-MM-DD (required)")
	segmentCmd.Flags().StringVar(&segmentEnd, "end", "", "horizon end date, YYYY-MM-DD (required)")
	segmentCmd.Flags().StringVar(&segmentRegion, "region", "Canada/QC", "holiday region")

	segmentCmd.MarkFlagRequired("start")
	segmentCmd.MarkFlagRequired("end")
}
