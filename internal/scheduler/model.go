package scheduler

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"

	"github.com/bruno.lopes/dutyplanner/internal/calendarx"
	"github.com/bruno.lopes/dutyplanner/internal/domain"
)

// Model owns the CP-SAT builder, the decision-variable table, and the
// MathTask index for a single solve. A Model lives for exactly one solve and
// becomes a read-only artifact afterwards, so it carries no mutex.
type Model struct {
	builder *cpmodel.Builder

	tasks      *domain.TaskRegistry
	physicians *domain.PhysicianRegistry

	vars     map[VarKey]cpmodel.BoolVar
	mathTask map[string]map[string][]*MathTask // [taskName][weekKey] -> ordered MathTasks
	weekKeys []string                          // sorted week keys covered by the last BuildVariables call

	scoring *scoringContext // set by BuildObjective, reused by extract
}

// NewModel constructs an empty model bound to the given registries.
func NewModel(tasks *domain.TaskRegistry, physicians *domain.PhysicianRegistry) *Model {
	return &Model{
		builder:    cpmodel.NewCpModelBuilder(),
		tasks:      tasks,
		physicians: physicians,
		vars:       make(map[VarKey]cpmodel.BoolVar),
		mathTask:   make(map[string]map[string][]*MathTask),
	}
}

// Builder exposes the underlying CP-SAT builder for constraint/objective code.
func (m *Model) Builder() *cpmodel.Builder { return m.builder }

// Var looks up the decision variable for (taskName, start, end, physician).
// All variables are created up front by BuildVariables, so a miss here is a
// programming error in the caller, not a legitimate "no variable" case.
func (m *Model) Var(taskName string, start, end time.Time, physician string) cpmodel.BoolVar {
	return m.vars[VarKey{TaskName: taskName, Start: start, End: end, Physician: physician}]
}

// MathTasksFor returns the week-key-ordered MathTask slice for one task.
func (m *Model) MathTasksFor(taskName string) []*MathTask {
	weeks := m.mathTask[taskName]
	keys := make([]string, 0, len(weeks))
	for k := range weeks {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out []*MathTask
	for _, k := range keys {
		out = append(out, weeks[k]...)
	}
	return out
}

// WeekKeys returns the sorted week keys covered by the last BuildVariables call.
func (m *Model) WeekKeys() []string { return m.weekKeys }

// AllTaskNames returns every task name in registry insertion order.
func (m *Model) AllTaskNames() []string {
	tasks := m.tasks.Tasks()
	names := make([]string, len(tasks))
	for i, t := range tasks {
		names[i] = t.Name
	}
	return names
}

// BuildVariables materializes a MathTask (and one BoolVar per physician) for
// every (task, period-interval) pair in periods, in week-key then task
// insertion order. Variables are created for every physician in the universe,
// not just candidates; availability is enforced later as explicit zero
// constraints so variable indexing stays uniform.
func (m *Model) BuildVariables(periods map[string][]calendarx.PeriodInterval) error {
	weekKeys := calendarx.SortedWeekKeys(periods)
	m.weekKeys = weekKeys
	allPhysicians := m.allPhysicianNames()

	for _, task := range m.tasks.Tasks() {
		m.mathTask[task.Name] = make(map[string][]*MathTask)
	}

	for _, weekKey := range weekKeys {
		weekPeriods := periods[weekKey]
		mainDays, callDays := splitPeriodDays(weekPeriods)

		for _, task := range m.tasks.Tasks() {
			cat, ok := m.tasks.CategoryOf(task)
			if !ok {
				return fmt.Errorf("%w: task %q has no registered category", domain.ErrInvalidConfig, task.Name)
			}
			if err := validateDaysParameter(cat); err != nil {
				return err
			}

			var intervals [][]time.Time
			switch task.Type {
			case domain.TaskMain:
				intervals = mainDays
			case domain.TaskCall:
				intervals = callDays
			default:
				return fmt.Errorf("%w: unrecognized task type %q", domain.ErrInvalidConfig, task.Type)
			}

			for idx, days := range intervals {
				mt := &MathTask{
					TaskName:            task.Name,
					TaskType:            task.Type,
					WeekStart:           weekKey,
					Index:               idx,
					Days:                days,
					StartDate:           days[0],
					EndDate:             days[len(days)-1],
					NumberOfWeeks:       task.NumberOfWeeks(cat),
					CandidatePhysicians: m.availablePhysicians(days),
					Heaviness:           task.Heaviness,
					Mandatory:           task.Mandatory,
				}
				m.mathTask[task.Name][weekKey] = append(m.mathTask[task.Name][weekKey], mt)

				for _, physician := range allPhysicians {
					key := VarKey{TaskName: task.Name, Start: mt.StartDate, End: mt.EndDate, Physician: physician}
					m.vars[key] = m.builder.NewBoolVar()
				}
			}
		}
	}
	return nil
}

func validateDaysParameter(cat domain.TaskCategory) error {
	switch cat.DaysParameter {
	case domain.Discontinuous:
		return fmt.Errorf("%w: category %q", domain.ErrUnsupportedCategory, cat.Name)
	case domain.Continuous, domain.MultiWeek:
		return nil
	default:
		return fmt.Errorf("%w: category %q days_parameter %q", domain.ErrUnknownCategory, cat.Name, cat.DaysParameter)
	}
}

// splitPeriodDays separates a week's PeriodIntervals into MAIN and CALL day
// lists, preserving interval order.
func splitPeriodDays(periods []calendarx.PeriodInterval) (main, call [][]time.Time) {
	for _, p := range periods {
		switch p.Type {
		case calendarx.Main:
			main = append(main, p.Days)
		case calendarx.Call:
			call = append(call, p.Days)
		}
	}
	return main, call
}

func (m *Model) allPhysicianNames() []string {
	physicians := m.physicians.Physicians()
	names := make([]string, len(physicians))
	for i, p := range physicians {
		names[i] = p.Name()
	}
	return names
}

// availablePhysicians returns every physician available on all of days.
func (m *Model) availablePhysicians(days []time.Time) []string {
	var out []string
	for _, p := range m.physicians.Physicians() {
		available := true
		for _, d := range days {
			if m.physicians.IsUnavailable(p.Name(), d) {
				available = false
				break
			}
		}
		if available {
			out = append(out, p.Name())
		}
	}
	return out
}
