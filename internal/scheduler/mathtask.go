// Package scheduler turns a segmented calendar plus a domain registry into a
// CP-SAT model, solves it, and extracts a schedule.
package scheduler

import (
	"time"

	"github.com/bruno.lopes/dutyplanner/internal/domain"
)

// MathTask is one concrete scheduling decision unit: one task occurrence over
// one period interval, carrying the physicians available for every day in it.
type MathTask struct {
	TaskName            string
	TaskType            domain.TaskType
	WeekStart           string // ISO week-start key
	Index               int    // position among this week's periods of the task's kind
	Days                []time.Time
	StartDate           time.Time
	EndDate             time.Time
	NumberOfWeeks       int
	CandidatePhysicians []string
	Heaviness           int
	Mandatory           bool
}

// IsCandidate reports whether physician is in the candidate set for this task.
func (m *MathTask) IsCandidate(physician string) bool {
	for _, p := range m.CandidatePhysicians {
		if p == physician {
			return true
		}
	}
	return false
}

// VarKey indexes the decision-variable table by
// (task name, start date, end date, physician).
type VarKey struct {
	TaskName  string
	Start     time.Time
	End       time.Time
	Physician string
}
