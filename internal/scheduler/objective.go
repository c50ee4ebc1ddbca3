package scheduler

import (
	"math"
	"time"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"

	"github.com/bruno.lopes/dutyplanner/internal/domain"
)

// objectiveScale rescales the rational scoring weights below (5/(n+1), etc.)
// to integers before handing them to the solver's int64 linear objective.
const objectiveScale = 100

// scoringContext precomputes the static, solution-independent facts the
// objective terms below need. CP-SAT requires a fixed integer coefficient per
// variable chosen before solving, so the history-shaped terms (per-physician
// task counts, calls per month, last heavy task, scheduled days, accumulated
// revenue, last category) are derived from a previously solved schedule
// rather than from the to-be-solved assignment. With no prior schedule every
// physician starts from an empty history and those terms contribute their
// zero-history value uniformly.
type scoringContext struct {
	tasksByName map[string]domain.Task
	categories  map[string]domain.TaskCategory

	taskCounts    map[string]map[string]int // physician -> task name -> prior assignment count
	callCounts    map[string]map[string]int // physician -> "YYYY-MM" -> prior CALL count
	lastHeavyEnd  map[string]time.Time      // physician -> last day of their latest prior heavy assignment
	lastCategory  map[string]string         // physician -> category of their latest prior assignment
	scheduledDays map[string]int            // physician -> total prior scheduled days
	revenue       map[string]float64        // physician -> accumulated prior revenue
	meanRevenue   float64
}

func newScoringContext(m *Model, prior map[string][]Assignment) *scoringContext {
	ctx := &scoringContext{
		tasksByName:   make(map[string]domain.Task),
		categories:    make(map[string]domain.TaskCategory),
		taskCounts:    make(map[string]map[string]int),
		callCounts:    make(map[string]map[string]int),
		lastHeavyEnd:  make(map[string]time.Time),
		lastCategory:  make(map[string]string),
		scheduledDays: make(map[string]int),
		revenue:       make(map[string]float64),
	}

	for _, task := range m.tasks.Tasks() {
		ctx.tasksByName[task.Name] = task
		if cat, ok := m.tasks.CategoryOf(task); ok {
			ctx.categories[task.Name] = cat
		}
	}

	for physician, assignments := range prior {
		var latestStart time.Time
		for _, a := range assignments {
			task, ok := ctx.tasksByName[a.TaskName]
			if !ok {
				continue
			}
			cat := ctx.categories[a.TaskName]

			if ctx.taskCounts[physician] == nil {
				ctx.taskCounts[physician] = make(map[string]int)
			}
			ctx.taskCounts[physician][a.TaskName]++

			if task.Type == domain.TaskCall {
				if ctx.callCounts[physician] == nil {
					ctx.callCounts[physician] = make(map[string]int)
				}
				ctx.callCounts[physician][monthOf(a.StartDate)]++
			}

			if task.IsHeavy() && a.EndDate.After(ctx.lastHeavyEnd[physician]) {
				ctx.lastHeavyEnd[physician] = a.EndDate
			}

			if a.StartDate.After(latestStart) || latestStart.IsZero() {
				latestStart = a.StartDate
				ctx.lastCategory[physician] = cat.Name
			}

			ctx.scheduledDays[physician] += assignmentDays(a)
			ctx.revenue[physician] += task.Revenue(cat)
		}
	}

	if len(ctx.revenue) > 0 {
		var total float64
		for _, r := range ctx.revenue {
			total += r
		}
		ctx.meanRevenue = total / float64(len(ctx.revenue))
	}

	return ctx
}

func assignmentDays(a Assignment) int {
	if len(a.Days) > 0 {
		return len(a.Days)
	}
	return int(a.EndDate.Sub(a.StartDate)/(24*time.Hour)) + 1
}

func monthOf(t time.Time) string { return t.Format("2006-01") }

// score computes the weighted preference sum for one (MathTask, physician)
// pair, already multiplied by objectiveScale.
func (ctx *scoringContext) score(mt *MathTask, physician domain.Physician) int64 {
	task := ctx.tasksByName[mt.TaskName]
	cat := ctx.categories[mt.TaskName]
	name := physician.Name()
	var score float64

	if physician.Prefers(mt.TaskName) {
		score += 10
	}

	score += 5 / float64(ctx.taskCounts[name][mt.TaskName]+1)

	if mt.TaskType == domain.TaskCall {
		score += 5 / float64(ctx.callCounts[name][monthOf(mt.StartDate)]+1)
	}

	if mt.Heaviness >= 3 {
		last, ok := ctx.lastHeavyEnd[name]
		if !ok || mt.StartDate.Sub(last) > 7*24*time.Hour {
			score += 5
		}
	}

	if task.IsDiscontinuous(cat) {
		if physician.DiscontinuityPreference {
			score += 10
		} else {
			score -= 5
		}
	}

	if float64(ctx.scheduledDays[name])/7 < physician.DesiredWorkingWeeks*52 {
		score += 5
	}

	if len(ctx.revenue) > 0 && ctx.revenue[name] < ctx.meanRevenue {
		score += 5
	}

	if cat.Name != "" && ctx.lastCategory[name] == cat.Name && mt.NumberOfWeeks <= 1 {
		score -= 10
	}

	return int64(math.Round(score * objectiveScale))
}

// BuildObjective attaches the weighted maximization objective over every
// decision variable, scoring each (MathTask, physician) pair against the
// physician's history in prior (a previously solved schedule, may be nil).
func (m *Model) BuildObjective(prior map[string][]Assignment) {
	m.scoring = newScoringContext(m, prior)
	expr := cpmodel.NewLinearExpr()

	for _, taskName := range m.AllTaskNames() {
		for _, mt := range m.MathTasksFor(taskName) {
			for _, physician := range m.physicians.Physicians() {
				v := m.Var(taskName, mt.StartDate, mt.EndDate, physician.Name())
				coeff := m.scoring.score(mt, physician)
				if coeff != 0 {
					expr.AddTerm(v, coeff)
				}
			}
		}
	}

	m.builder.Maximize(expr)
}
