package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bruno.lopes/dutyplanner/internal/calendarx"
	"github.com/bruno.lopes/dutyplanner/internal/config"
	"github.com/bruno.lopes/dutyplanner/internal/scheduler"
)

var (
	solveTasksPath      string
	solvePhysiciansPath string
	solveStart          string
	solveEnd            string
	solveRegion         string
	solveTimeLimit      time.Duration
	solvePriorPath      string
	solveOut            string
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Solve a schedule from task/physician configuration documents",
	Long: `solve loads a task configuration document and a physician configuration
document, builds a calendar over --start/--end in --region, and runs the
CP-SAT solver over it, writing the solved schedule document to --out (or
stdout).`,
	Example: `  schedulerctl solve --tasks tasks.json --physicians physicians.json \
    --start 2023-01-02 --end 2023-12-31 --time-limit 30s --out schedule.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var taskDoc config.TaskConfigDocument
		if err := config.LoadJSON(solveTasksPath, &taskDoc); err != nil {
			return fmt.Errorf("loading %s: %w", solveTasksPath, err)
		}
		tasks, err := taskDoc.ToTaskRegistry()
		if err != nil {
			return fmt.Errorf("building task registry: %w", err)
		}

		var physicianDoc config.PhysicianConfigDocument
		if err := config.LoadJSON(solvePhysiciansPath, &physicianDoc); err != nil {
			return fmt.Errorf("loading %s: %w", solvePhysiciansPath, err)
		}
		physicians, err := physicianDoc.ToPhysicianRegistry(tasks)
		if err != nil {
			return fmt.Errorf("building physician registry: %w", err)
		}

		start, err := time.Parse("2006-01-02", solveStart)
		if err != nil {
			return fmt.Errorf("invalid --start: %w", err)
		}
		end, err := time.Parse("2006-01-02", solveEnd)
		if err != nil {
			return fmt.Errorf("invalid --end: %w", err)
		}
		cal, err := calendarx.New(start, end, solveRegion, nil, fixedLookup{})
		if err != nil {
			return fmt.Errorf("building calendar: %w", err)
		}

		sched := scheduler.New(tasks, physicians, cal)
		sched.SetSchedulingPeriod(start, end)

		var prior map[string][]scheduler.Assignment
		if solvePriorPath != "" {
			var priorDoc config.ScheduleDocument
			if err := config.LoadJSON(solvePriorPath, &priorDoc); err != nil {
				return fmt.Errorf("loading %s: %w", solvePriorPath, err)
			}
			prior, err = toAssignments(priorDoc)
			if err != nil {
				return err
			}
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), solveTimeLimit+10*time.Second)
		defer cancel()

		result, err := sched.GenerateSchedule(ctx, scheduler.Options{TimeLimit: solveTimeLimit, PriorSchedule: prior})
		if err != nil {
			if result != nil {
				return fmt.Errorf("solving schedule (status %s): %w", result.Status, err)
			}
			return fmt.Errorf("solving schedule: %w", err)
		}
		fmt.Fprintf(os.Stderr, "solve status: %s\n", result.Status)

		doc := config.FromSchedule(result.ByPhysician)
		if solveOut == "" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(doc)
		}
		return config.SaveJSON(solveOut, doc)
	},
}

func init() {
	solveCmd.Flags().StringVar(&solveTasksPath, "tasks", "", "task configuration document path (required)")
	solveCmd.Flags().StringVar(&solvePhysiciansPath, "physicians", "", "physician configuration document path (required)")
	solveCmd.Flags().StringVar(&solveStart, "start", "", "scheduling horizon start, YYYY-MM-DD (required)")
	solveCmd.Flags().StringVar(&solveEnd, "end", "", "scheduling horizon end, YYYY-MM-DD (required)")
	solveCmd.Flags().StringVar(&solveRegion, "region", "Canada/QC", "holiday region")
	solveCmd.Flags().DurationVar(&solveTimeLimit, "time-limit", 30*time.Second, "CP-SAT solver time limit")
	solveCmd.Flags().StringVar(&solvePriorPath, "prior", "", "previously solved schedule document used as assignment history for scoring")
	solveCmd.Flags().StringVar(&solveOut, "out", "", "output schedule document path (default: stdout)")

	solveCmd.MarkFlagRequired("tasks")
	solveCmd.MarkFlagRequired("physicians")
	solveCmd.MarkFlagRequired("start")
	solveCmd.MarkFlagRequired("end")
}
