package scheduler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/bruno.lopes/dutyplanner/internal/calendarx"
	"github.com/bruno.lopes/dutyplanner/internal/domain"
)

// Scheduler owns one solve's inputs: the domain registries and the calendar
// to segment. The registries and calendar are read-only for the duration of
// a GenerateSchedule call.
type Scheduler struct {
	Tasks      *domain.TaskRegistry
	Physicians *domain.PhysicianRegistry
	Calendar   *calendarx.Calendar

	periodStart time.Time
	periodEnd   time.Time
	periodSet   bool
}

// New builds a Scheduler bound to the given registries and calendar.
func New(tasks *domain.TaskRegistry, physicians *domain.PhysicianRegistry, cal *calendarx.Calendar) *Scheduler {
	return &Scheduler{Tasks: tasks, Physicians: physicians, Calendar: cal}
}

// SetSchedulingPeriod records the scheduling period GenerateSchedule requires.
// Only its end bounds the solved weeks (see extendedEndDate); calendar weeks
// before start are not dropped.
func (s *Scheduler) SetSchedulingPeriod(start, end time.Time) {
	s.periodStart, s.periodEnd = start, end
	s.periodSet = true
}

// Options configures one GenerateSchedule call. PriorSchedule is a
// previously solved schedule whose per-physician assignment history feeds
// the fairness, call-spread, heavy-spacing, working-weeks, revenue, and
// category-repeat objective terms; nil means every physician starts with an
// empty history.
type Options struct {
	TimeLimit     time.Duration
	Hints         []Hint
	PriorSchedule map[string][]Assignment
}

// Result is the solver's output, grouped by physician for persistence/display.
type Result struct {
	Status      Status
	Assignments []Assignment
	ByPhysician map[string][]Assignment
}

// GenerateSchedule segments the calendar, materializes variables, builds
// constraints and the objective, solves, and extracts the assignment. On
// domain.ErrInfeasible the caller's prior schedule (not tracked here) must be
// left untouched — this layer returns the error and no assignments.
func (s *Scheduler) GenerateSchedule(ctx context.Context, opts Options) (*Result, error) {
	if !s.periodSet {
		return nil, domain.ErrSchedulingPeriodUnset
	}

	extendedEnd := s.extendedEndDate()
	periods := s.relevantPeriods(extendedEnd)

	model := NewModel(s.Tasks, s.Physicians)
	if err := model.BuildVariables(periods); err != nil {
		return nil, err
	}
	model.BuildConstraints()
	model.BuildObjective(opts.PriorSchedule)

	assignments, status, err := model.Solve(ctx, opts.TimeLimit, opts.Hints)
	if err != nil {
		return &Result{Status: status}, err
	}

	byPhysician := make(map[string][]Assignment)
	for _, a := range assignments {
		byPhysician[a.Physician] = append(byPhysician[a.Physician], a)
	}
	for _, list := range byPhysician {
		sort.Slice(list, func(i, j int) bool { return list[i].StartDate.Before(list[j].StartDate) })
	}

	return &Result{Status: status, Assignments: assignments, ByPhysician: byPhysician}, nil
}

// extendedEndDate pushes the nominal period end out by the longest task's
// number of weeks, so multi-week bundles straddling the horizon's tail still
// have room to complete.
func (s *Scheduler) extendedEndDate() time.Time {
	maxWeeks := 1
	for _, task := range s.Tasks.Tasks() {
		cat, ok := s.Tasks.CategoryOf(task)
		if !ok {
			continue
		}
		if n := task.NumberOfWeeks(cat); n > maxWeeks {
			maxWeeks = n
		}
	}
	return s.periodEnd.AddDate(0, 0, maxWeeks*7)
}

// relevantPeriods segments the whole calendar, then drops weeks starting
// after extendedEnd.
func (s *Scheduler) relevantPeriods(extendedEnd time.Time) map[string][]calendarx.PeriodInterval {
	all := calendarx.Segment(s.Calendar)
	out := make(map[string][]calendarx.PeriodInterval, len(all))
	for weekKey, periods := range all {
		weekStart, err := time.Parse("2006-01-02", weekKey)
		if err != nil {
			continue
		}
		if !weekStart.After(extendedEnd) {
			out[weekKey] = periods
		}
	}
	return out
}

// String renders an Assignment for logging.
func (a Assignment) String() string {
	return fmt.Sprintf("%s [%s, %s] -> %s (score %d)",
		a.TaskName, a.StartDate.Format("2006-01-02"), a.EndDate.Format("2006-01-02"), a.Physician, a.Score)
}
