package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	cmpb "github.com/google/or-tools/ortools/sat/proto/cpmodel"
	sppb "github.com/google/or-tools/ortools/sat/proto/satparameters"

	"github.com/bruno.lopes/dutyplanner/internal/domain"
)

// Assignment is one extracted (physician, task, interval) record.
type Assignment struct {
	Physician string
	TaskName  string
	Days      []time.Time
	StartDate time.Time
	EndDate   time.Time
	Score     int64
}

// Status mirrors the CP-SAT solver's terminal states relevant to the caller.
type Status string

const (
	StatusOptimal    Status = "OPTIMAL"
	StatusFeasible   Status = "FEASIBLE"
	StatusInfeasible Status = "INFEASIBLE"
	StatusInvalid    Status = "MODEL_INVALID"
)

// Hint seeds the solver with variable values from a previously loaded
// schedule. Each entry is a (taskName, start, end, physician) key whose
// variable should be hinted to 1.
type Hint = VarKey

// Solve runs the CP-SAT engine once over an already-constrained Model. On
// OPTIMAL/FEASIBLE it extracts every true variable into an Assignment slice;
// on any other status it returns domain.ErrInfeasible and no assignments, so
// the caller's prior schedule stays untouched. timeLimit <= 0 means no
// deadline.
func (m *Model) Solve(ctx context.Context, timeLimit time.Duration, hints []Hint) ([]Assignment, Status, error) {
	for _, h := range hints {
		v, ok := m.vars[h]
		if !ok {
			return nil, "", fmt.Errorf("%w: hinted variable %+v does not exist in this model", domain.ErrInconsistentLoadedSchedule, h)
		}
		m.builder.AddHint(v, 1)
	}

	built, err := m.builder.Model()
	if err != nil {
		return nil, StatusInvalid, fmt.Errorf("failed to instantiate the CP model: %w", err)
	}

	var response *cmpb.CpSolverResponse
	if timeLimit > 0 {
		params := &sppb.SatParameters{MaxTimeInSeconds: float64(timeLimit) / float64(time.Second)}
		response, err = cpmodel.SolveCpModelWithSatParameters(built, params)
	} else {
		response, err = cpmodel.SolveCpModel(built)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to solve the model: %w", err)
	}
	if ctx.Err() != nil {
		return nil, "", ctx.Err()
	}

	status := statusOf(response)
	if status != StatusOptimal && status != StatusFeasible {
		return nil, status, domain.ErrInfeasible
	}

	return m.extract(response), status, nil
}

func statusOf(response *cmpb.CpSolverResponse) Status {
	switch response.GetStatus() {
	case cmpb.CpSolverStatus_OPTIMAL:
		return StatusOptimal
	case cmpb.CpSolverStatus_FEASIBLE:
		return StatusFeasible
	case cmpb.CpSolverStatus_MODEL_INVALID:
		return StatusInvalid
	default:
		return StatusInfeasible
	}
}

// extract walks every MathTask and physician and records the pairs whose
// variable solved true.
func (m *Model) extract(response *cmpb.CpSolverResponse) []Assignment {
	ctx := m.scoring
	if ctx == nil {
		ctx = newScoringContext(m, nil)
	}
	var out []Assignment

	for _, taskName := range m.AllTaskNames() {
		for _, mt := range m.MathTasksFor(taskName) {
			for _, physician := range m.physicians.Physicians() {
				v := m.Var(taskName, mt.StartDate, mt.EndDate, physician.Name())
				if cpmodel.SolutionBooleanValue(response, v) {
					out = append(out, Assignment{
						Physician: physician.Name(),
						TaskName:  taskName,
						Days:      mt.Days,
						StartDate: mt.StartDate,
						EndDate:   mt.EndDate,
						Score:     ctx.score(mt, physician),
					})
				}
			}
		}
	}
	return out
}
