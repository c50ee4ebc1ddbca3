package scheduler

import (
	"github.com/google/or-tools/ortools/sat/go/cpmodel"

	"github.com/bruno.lopes/dutyplanner/internal/domain"
)

// BuildConstraints emits the four constraint families over an already
// variable-populated Model: availability, coverage (at most one physician per
// MathTask, at least one for mandatory tasks), linkage bundling, then mutual
// exclusion. Emission order does not affect the
// declarative model; it is fixed for reproducibility.
func (m *Model) BuildConstraints() {
	m.addAvailabilityConstraints()
	m.addMandatoryCoverageConstraints()
	m.addLinkageConstraints()
	m.addMutualExclusionConstraints()
}

// addAvailabilityConstraints forbids a physician's variable for any MathTask
// they are not a candidate for.
func (m *Model) addAvailabilityConstraints() {
	allPhysicians := m.allPhysicianNames()
	for _, taskName := range m.AllTaskNames() {
		for _, mt := range m.MathTasksFor(taskName) {
			for _, physician := range allPhysicians {
				if !mt.IsCandidate(physician) {
					v := m.Var(taskName, mt.StartDate, mt.EndDate, physician)
					m.builder.AddBoolOr(v.Not())
				}
			}
		}
	}
}

// addMandatoryCoverageConstraints allows at most one physician on every
// MathTask and requires at least one candidate physician on every MathTask of
// a mandatory task. Non-mandatory tasks may stay unassigned.
func (m *Model) addMandatoryCoverageConstraints() {
	for _, task := range m.tasks.Tasks() {
		for _, mt := range m.MathTasksFor(task.Name) {
			expr := cpmodel.NewLinearExpr()
			for _, physician := range mt.CandidatePhysicians {
				expr.AddTerm(m.Var(task.Name, mt.StartDate, mt.EndDate, physician), 1)
			}
			m.builder.AddLessOrEqual(expr, cpmodel.NewConstant(1))
			if task.Mandatory {
				m.builder.AddGreaterOrEqual(expr, cpmodel.NewConstant(1))
			}
		}
	}
}

// addLinkageConstraints bundles a MAIN task's MathTasks into groups of
// NumberOfWeeks and, for tasks with a linked CALL task, binds the linked
// call quota/veto/implication constraints over each bundle's span. A
// trailing partial bundle at the horizon tail is flushed too, so its
// constraints still bind near the horizon end.
func (m *Model) addLinkageConstraints() {
	allPhysicians := m.allPhysicianNames()
	weekKeys := m.weekKeys

	for _, task := range m.tasks.Tasks() {
		if task.Type != domain.TaskMain {
			continue
		}
		cat, ok := m.tasks.CategoryOf(task)
		if !ok {
			continue
		}
		k := task.NumberOfWeeks(cat)
		linkedCall, hasLink := m.tasks.Linkage.GetLinkedCall(task.Name)

		var bundledMain, bundledCall []*MathTask
		weeksLeft := k
		flush := func() {
			if len(bundledMain) == 0 {
				return
			}
			m.addBundleAtomicity(bundledMain, allPhysicians)
			if hasLink {
				m.addCallQuota(bundledCall, allPhysicians)
				m.addLinkBinding(bundledMain, bundledCall, allPhysicians)
			}
			bundledMain, bundledCall = nil, nil
		}

		for _, weekKey := range weekKeys {
			bundledMain = append(bundledMain, m.mathTask[task.Name][weekKey]...)
			if hasLink {
				bundledCall = append(bundledCall, m.mathTask[linkedCall][weekKey]...)
			}
			weeksLeft--
			if weeksLeft == 0 {
				flush()
				weeksLeft = k
			}
		}
		flush() // trailing partial bundle
	}
}

func (m *Model) addBundleAtomicity(bundle []*MathTask, physicians []string) {
	for _, physician := range physicians {
		for i := 0; i+1 < len(bundle); i++ {
			a := m.Var(bundle[i].TaskName, bundle[i].StartDate, bundle[i].EndDate, physician)
			b := m.Var(bundle[i+1].TaskName, bundle[i+1].StartDate, bundle[i+1].EndDate, physician)
			m.builder.AddImplication(a, b)
			m.builder.AddImplication(b, a)
		}
	}
}

func (m *Model) addCallQuota(calls []*MathTask, physicians []string) {
	for _, physician := range physicians {
		expr := cpmodel.NewLinearExpr()
		for _, c := range calls {
			expr.AddTerm(m.Var(c.TaskName, c.StartDate, c.EndDate, physician), 1)
		}
		m.builder.AddLessOrEqual(expr, cpmodel.NewConstant(1))
	}
}

func (m *Model) addLinkBinding(main, calls []*MathTask, physicians []string) {
	if len(main) == 0 {
		return
	}
	firstPossibleCallDate := main[0].EndDate

	// Early-call veto: forbid any call whose start is not strictly after the
	// first main interval's end. Calls are ordered by start date.
	for _, c := range calls {
		if !c.StartDate.After(firstPossibleCallDate) {
			for _, physician := range physicians {
				v := m.Var(c.TaskName, c.StartDate, c.EndDate, physician)
				m.builder.AddBoolOr(v.Not())
			}
		} else {
			break
		}
	}

	if len(calls) == 0 {
		return
	}
	for _, physician := range physicians {
		callSum := cpmodel.NewLinearExpr()
		for _, c := range calls {
			callSum.AddTerm(m.Var(c.TaskName, c.StartDate, c.EndDate, physician), 1)
		}
		for _, mt := range main {
			v := m.Var(mt.TaskName, mt.StartDate, mt.EndDate, physician)
			single := cpmodel.NewLinearExpr().AddTerm(v, 1)
			m.builder.AddLessOrEqual(single, callSum)
		}

		mainSum := cpmodel.NewLinearExpr()
		for _, mt := range main {
			mainSum.AddTerm(m.Var(mt.TaskName, mt.StartDate, mt.EndDate, physician), 1)
		}
		for _, c := range calls {
			v := m.Var(c.TaskName, c.StartDate, c.EndDate, physician)
			single := cpmodel.NewLinearExpr().AddTerm(v, 1)
			m.builder.AddLessOrEqual(single, mainSum)
		}
	}
}

// addMutualExclusionConstraints forbids a physician from holding two
// MathTasks from different tasks whose date ranges overlap, via a
// two-pointer sweep over every pair of tasks' time-ordered MathTask
// sequences, linear in the combined sequence length.
func (m *Model) addMutualExclusionConstraints() {
	allPhysicians := m.allPhysicianNames()
	names := m.AllTaskNames()
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			m.sweepMutualExclusion(m.MathTasksFor(names[i]), m.MathTasksFor(names[j]), allPhysicians)
		}
	}
}

func (m *Model) sweepMutualExclusion(a, b []*MathTask, physicians []string) {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		lo := a[i].StartDate
		if b[j].StartDate.After(lo) {
			lo = b[j].StartDate
		}
		hi := a[i].EndDate
		if b[j].EndDate.Before(hi) {
			hi = b[j].EndDate
		}
		if !lo.After(hi) {
			for _, physician := range physicians {
				va := m.Var(a[i].TaskName, a[i].StartDate, a[i].EndDate, physician)
				vb := m.Var(b[j].TaskName, b[j].StartDate, b[j].EndDate, physician)
				expr := cpmodel.NewLinearExpr().AddTerm(va, 1)
				expr.AddTerm(vb, 1)
				m.builder.AddLessOrEqual(expr, cpmodel.NewConstant(1))
			}
		}
		if a[i].EndDate.Before(b[j].EndDate) {
			i++
		} else {
			j++
		}
	}
}
