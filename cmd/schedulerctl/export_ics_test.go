package main

import (
	"errors"
	"testing"
	"time"

	"github.com/bruno.lopes/dutyplanner/internal/config"
	"github.com/bruno.lopes/dutyplanner/internal/domain"
)

func TestToAssignmentsParsesDates(t *testing.T) {
	doc := config.ScheduleDocument{
		"Alice Smith": {
			{
				Task:      "CTU_A",
				Days:      []string{"2023-01-02", "2023-01-03"},
				StartDate: "2023-01-02",
				EndDate:   "2023-01-13",
				Score:     42,
			},
		},
	}

	got, err := toAssignments(doc)
	if err != nil {
		t.Fatal(err)
	}
	assignments := got["Alice Smith"]
	if len(assignments) != 1 {
		t.Fatalf("got %d assignments, want 1", len(assignments))
	}
	a := assignments[0]
	if !a.StartDate.Equal(time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("StartDate = %v, want 2023-01-02", a.StartDate)
	}
	if !a.EndDate.Equal(time.Date(2023, 1, 13, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("EndDate = %v, want 2023-01-13", a.EndDate)
	}
	if len(a.Days) != 2 {
		t.Fatalf("got %d days, want 2", len(a.Days))
	}
	if a.Score != 42 || a.TaskName != "CTU_A" {
		t.Errorf("Score/TaskName = %d/%s, want 42/CTU_A", a.Score, a.TaskName)
	}
}

func TestToAssignmentsRejectsMalformedDate(t *testing.T) {
	doc := config.ScheduleDocument{
		"Bob Jones": {
			{Task: "ER_1", StartDate: "not-a-date", EndDate: "2023-01-13"},
		},
	}
	if _, err := toAssignments(doc); err == nil {
		t.Fatalf("expected an error for a malformed start_date")
	}
}

func TestToAssignmentsRejectsNonContiguousDays(t *testing.T) {
	doc := config.ScheduleDocument{
		"Bob Jones": {
			{
				Task:      "ER_1",
				Days:      []string{"2023-01-02", "2023-01-05"},
				StartDate: "2023-01-02",
				EndDate:   "2023-01-05",
			},
		},
	}
	_, err := toAssignments(doc)
	if !errors.Is(err, domain.ErrInconsistentLoadedSchedule) {
		t.Fatalf("expected ErrInconsistentLoadedSchedule for a gap in days, got %v", err)
	}
}
