package scheduler

import (
	"testing"
	"time"

	"github.com/bruno.lopes/dutyplanner/internal/domain"
)

// objectiveModel builds a Model whose task registry is populated by setup.
// Physicians are constructed ad hoc in each test, since score only reads the
// physician value, not the registry.
func objectiveModel(t *testing.T, setup func(tasks *domain.TaskRegistry) error) *Model {
	t.Helper()
	tasks := domain.NewTaskRegistry()
	if err := setup(tasks); err != nil {
		t.Fatal(err)
	}
	return NewModel(tasks, domain.NewPhysicianRegistry(tasks))
}

func TestScorePrefersPreferredTask(t *testing.T) {
	m := objectiveModel(t, func(tasks *domain.TaskRegistry) error {
		if err := tasks.AddCategory(domain.TaskCategory{
			Name: "ER", DaysParameter: domain.Continuous, NumberOfWeeks: 1, WeekdayRevenue: 100, CallRevenue: 50,
		}); err != nil {
			return err
		}
		// The preference bonus matches on task name, and preferred-task
		// entries are validated as category names, so it only fires for tasks
		// named after their category.
		return tasks.AddTask(domain.Task{CategoryName: "ER", Type: domain.TaskMain, Name: "ER", Mandatory: true})
	})

	mt := &MathTask{
		TaskName: "ER", TaskType: domain.TaskMain,
		StartDate:     time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2023, 1, 6, 0, 0, 0, 0, time.UTC),
		NumberOfWeeks: 1,
	}
	ctx := newScoringContext(m, nil)

	preferring := domain.NewPhysician("Alice", "Smith", []string{"ER"}, true, 1, nil, nil)
	nonPreferring := domain.NewPhysician("Bob", "Jones", nil, true, 1, nil, nil)

	preferred := ctx.score(mt, preferring)
	notPreferred := ctx.score(mt, nonPreferring)

	if preferred-notPreferred != 10*objectiveScale {
		t.Fatalf("preference bonus delta = %d, want %d", preferred-notPreferred, 10*objectiveScale)
	}
}

func TestScoreDiscontinuityFit(t *testing.T) {
	m := objectiveModel(t, func(tasks *domain.TaskRegistry) error {
		if err := tasks.AddCategory(domain.TaskCategory{
			Name: "GEN_CLINIC", DaysParameter: domain.Discontinuous, NumberOfWeeks: 1, WeekdayRevenue: 10,
		}); err != nil {
			return err
		}
		return tasks.AddTask(domain.Task{CategoryName: "GEN_CLINIC", Type: domain.TaskMain, Name: "CLINIC"})
	})

	mt := &MathTask{
		TaskName: "CLINIC", TaskType: domain.TaskMain,
		StartDate:     time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC),
		NumberOfWeeks: 1,
	}
	ctx := newScoringContext(m, nil)

	likesDiscontinuous := domain.NewPhysician("Alice", "Smith", nil, true, 1, nil, nil)
	dislikesDiscontinuous := domain.NewPhysician("Bob", "Jones", nil, false, 1, nil, nil)

	likeScore := ctx.score(mt, likesDiscontinuous)
	dislikeScore := ctx.score(mt, dislikesDiscontinuous)

	if likeScore-dislikeScore != 15*objectiveScale {
		t.Fatalf("discontinuity delta = %d, want %d (+10 vs -5)", likeScore-dislikeScore, 15*objectiveScale)
	}
}

// TestScoreFairnessFavorsFreshPhysician: 5/(count+1) is per physician, so a
// physician who already did the task scores lower than one who has not.
// Two-week bundles sidestep the category-repeat penalty; both physicians
// carry equal prior revenue and days so only the fairness term differs.
func TestScoreFairnessFavorsFreshPhysician(t *testing.T) {
	m := objectiveModel(t, func(tasks *domain.TaskRegistry) error {
		if err := tasks.AddCategory(domain.TaskCategory{
			Name: "CTU", DaysParameter: domain.MultiWeek, NumberOfWeeks: 2, WeekdayRevenue: 100,
		}); err != nil {
			return err
		}
		if err := tasks.AddTask(domain.Task{CategoryName: "CTU", Type: domain.TaskMain, Name: "CTU_A"}); err != nil {
			return err
		}
		return tasks.AddTask(domain.Task{CategoryName: "CTU", Type: domain.TaskMain, Name: "CTU_B"})
	})

	prior := map[string][]Assignment{
		"Bob Jones": {{
			Physician: "Bob Jones", TaskName: "CTU_A",
			StartDate: time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2023, 1, 13, 0, 0, 0, 0, time.UTC),
		}},
		"Carol Doe": {{
			Physician: "Carol Doe", TaskName: "CTU_B",
			StartDate: time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2023, 1, 13, 0, 0, 0, 0, time.UTC),
		}},
	}
	ctx := newScoringContext(m, prior)

	mt := &MathTask{
		TaskName: "CTU_A", TaskType: domain.TaskMain,
		StartDate:     time.Date(2023, 2, 6, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2023, 2, 17, 0, 0, 0, 0, time.UTC),
		NumberOfWeeks: 2,
	}

	repeat := ctx.score(mt, domain.NewPhysician("Bob", "Jones", nil, true, 1, nil, nil))
	fresh := ctx.score(mt, domain.NewPhysician("Carol", "Doe", nil, true, 1, nil, nil))

	// 5/1 for Carol vs 5/2 for Bob, everything else equal.
	if fresh-repeat != 250 {
		t.Fatalf("fairness delta = %d, want 250 (5/1 vs 5/2, scaled)", fresh-repeat)
	}
}

// TestScoreCallSpreadIsPerPhysicianMonth: the call-spread divisor counts the
// physician's own prior calls in the MathTask's month, not anyone else's.
func TestScoreCallSpreadIsPerPhysicianMonth(t *testing.T) {
	m := objectiveModel(t, func(tasks *domain.TaskRegistry) error {
		if err := tasks.AddCategory(domain.TaskCategory{
			Name: "ER", DaysParameter: domain.Continuous, NumberOfWeeks: 1, WeekdayRevenue: 80, CallRevenue: 50,
		}); err != nil {
			return err
		}
		return tasks.AddTask(domain.Task{CategoryName: "ER", Type: domain.TaskCall, Name: "ER_CALL"})
	})

	prior := map[string][]Assignment{
		"Bob Jones": {{
			Physician: "Bob Jones", TaskName: "ER_CALL",
			StartDate: time.Date(2023, 2, 4, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2023, 2, 5, 0, 0, 0, 0, time.UTC),
		}},
		"Carol Doe": {{
			Physician: "Carol Doe", TaskName: "ER_CALL",
			StartDate: time.Date(2023, 1, 7, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2023, 1, 8, 0, 0, 0, 0, time.UTC),
		}},
	}
	ctx := newScoringContext(m, prior)

	mt := &MathTask{
		TaskName: "ER_CALL", TaskType: domain.TaskCall,
		StartDate:     time.Date(2023, 2, 11, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2023, 2, 12, 0, 0, 0, 0, time.UTC),
		NumberOfWeeks: 1,
	}

	busyInFebruary := ctx.score(mt, domain.NewPhysician("Bob", "Jones", nil, true, 1, nil, nil))
	busyInJanuary := ctx.score(mt, domain.NewPhysician("Carol", "Doe", nil, true, 1, nil, nil))

	// Both did one prior ER_CALL, but only Bob's was in February.
	if busyInJanuary-busyInFebruary != 250 {
		t.Fatalf("call-spread delta = %d, want 250 (5/1 vs 5/2, scaled)", busyInJanuary-busyInFebruary)
	}
}

// TestScoreHeavySpacingIsPerPhysician: the 7-day heavy gap is measured from
// each physician's own last heavy assignment.
func TestScoreHeavySpacingIsPerPhysician(t *testing.T) {
	m := objectiveModel(t, func(tasks *domain.TaskRegistry) error {
		if err := tasks.AddCategory(domain.TaskCategory{
			Name: "CTU", DaysParameter: domain.MultiWeek, NumberOfWeeks: 2, WeekdayRevenue: 100,
		}); err != nil {
			return err
		}
		return tasks.AddTask(domain.Task{CategoryName: "CTU", Type: domain.TaskMain, Name: "CTU_A", Heaviness: 4})
	})

	prior := map[string][]Assignment{
		"Bob Jones": {{
			Physician: "Bob Jones", TaskName: "CTU_A",
			StartDate: time.Date(2023, 1, 30, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2023, 2, 3, 0, 0, 0, 0, time.UTC),
		}},
		"Carol Doe": {{
			Physician: "Carol Doe", TaskName: "CTU_A",
			StartDate: time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2023, 1, 6, 0, 0, 0, 0, time.UTC),
		}},
	}
	ctx := newScoringContext(m, prior)

	mt := &MathTask{
		TaskName: "CTU_A", TaskType: domain.TaskMain,
		StartDate:     time.Date(2023, 2, 6, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2023, 2, 17, 0, 0, 0, 0, time.UTC),
		NumberOfWeeks: 2,
		Heaviness:     4,
	}

	recentHeavy := ctx.score(mt, domain.NewPhysician("Bob", "Jones", nil, true, 1, nil, nil))
	restedHeavy := ctx.score(mt, domain.NewPhysician("Carol", "Doe", nil, true, 1, nil, nil))

	// Bob's last heavy task ended 3 days before this one starts, Carol's a month.
	if restedHeavy-recentHeavy != 5*objectiveScale {
		t.Fatalf("heavy-spacing delta = %d, want %d", restedHeavy-recentHeavy, 5*objectiveScale)
	}
}

// TestScoreRevenueBalanceFavorsLowEarner: the +5 goes to physicians whose
// accumulated prior revenue sits below the mean.
func TestScoreRevenueBalanceFavorsLowEarner(t *testing.T) {
	m := objectiveModel(t, func(tasks *domain.TaskRegistry) error {
		for _, cat := range []domain.TaskCategory{
			{Name: "CTU", DaysParameter: domain.Continuous, NumberOfWeeks: 1, WeekdayRevenue: 100},
			{Name: "CLINIC", DaysParameter: domain.Continuous, NumberOfWeeks: 1, WeekdayRevenue: 10},
			{Name: "ER", DaysParameter: domain.Continuous, NumberOfWeeks: 1, WeekdayRevenue: 80},
		} {
			if err := tasks.AddCategory(cat); err != nil {
				return err
			}
		}
		for _, task := range []domain.Task{
			{CategoryName: "CTU", Type: domain.TaskMain, Name: "CTU_1"},
			{CategoryName: "CLINIC", Type: domain.TaskMain, Name: "CLINIC_1"},
			{CategoryName: "ER", Type: domain.TaskMain, Name: "ER_1"},
		} {
			if err := tasks.AddTask(task); err != nil {
				return err
			}
		}
		return nil
	})

	prior := map[string][]Assignment{
		"Bob Jones": {{
			Physician: "Bob Jones", TaskName: "CTU_1",
			StartDate: time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2023, 1, 6, 0, 0, 0, 0, time.UTC),
		}},
		"Carol Doe": {{
			Physician: "Carol Doe", TaskName: "CLINIC_1",
			StartDate: time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2023, 1, 6, 0, 0, 0, 0, time.UTC),
		}},
	}
	ctx := newScoringContext(m, prior)

	mt := &MathTask{
		TaskName: "ER_1", TaskType: domain.TaskMain,
		StartDate:     time.Date(2023, 2, 6, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2023, 2, 10, 0, 0, 0, 0, time.UTC),
		NumberOfWeeks: 1,
	}

	highEarner := ctx.score(mt, domain.NewPhysician("Bob", "Jones", nil, true, 1, nil, nil))
	lowEarner := ctx.score(mt, domain.NewPhysician("Carol", "Doe", nil, true, 1, nil, nil))

	// Bob earned 100 against a 55 mean, Carol 10.
	if lowEarner-highEarner != 5*objectiveScale {
		t.Fatalf("revenue-balance delta = %d, want %d", lowEarner-highEarner, 5*objectiveScale)
	}
}

// TestScoreSameCategoryRepeatPenalty: the -10 fires only for the physician
// whose own latest prior assignment shares the task's category.
func TestScoreSameCategoryRepeatPenalty(t *testing.T) {
	m := objectiveModel(t, func(tasks *domain.TaskRegistry) error {
		if err := tasks.AddCategory(domain.TaskCategory{
			Name: "ER", DaysParameter: domain.Continuous, NumberOfWeeks: 1, WeekdayRevenue: 80, CallRevenue: 50,
		}); err != nil {
			return err
		}
		if err := tasks.AddCategory(domain.TaskCategory{
			Name: "CTU", DaysParameter: domain.Continuous, NumberOfWeeks: 1, WeekdayRevenue: 50,
		}); err != nil {
			return err
		}
		for _, task := range []domain.Task{
			{CategoryName: "ER", Type: domain.TaskMain, Name: "ER_1"},
			{CategoryName: "ER", Type: domain.TaskCall, Name: "ER_CALL"},
			{CategoryName: "CTU", Type: domain.TaskMain, Name: "CTU_1"},
		} {
			if err := tasks.AddTask(task); err != nil {
				return err
			}
		}
		return nil
	})

	prior := map[string][]Assignment{
		"Bob Jones": {{
			Physician: "Bob Jones", TaskName: "ER_CALL",
			StartDate: time.Date(2023, 1, 7, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2023, 1, 8, 0, 0, 0, 0, time.UTC),
		}},
		"Carol Doe": {{
			Physician: "Carol Doe", TaskName: "CTU_1",
			StartDate: time.Date(2023, 1, 7, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2023, 1, 8, 0, 0, 0, 0, time.UTC),
		}},
	}
	ctx := newScoringContext(m, prior)

	mt := &MathTask{
		TaskName: "ER_1", TaskType: domain.TaskMain,
		StartDate:     time.Date(2023, 2, 6, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2023, 2, 10, 0, 0, 0, 0, time.UTC),
		NumberOfWeeks: 1,
	}

	sameCategory := ctx.score(mt, domain.NewPhysician("Bob", "Jones", nil, true, 1, nil, nil))
	otherCategory := ctx.score(mt, domain.NewPhysician("Carol", "Doe", nil, true, 1, nil, nil))

	// Bob's latest prior assignment (ER_CALL) shares ER_1's category.
	if otherCategory-sameCategory != 10*objectiveScale {
		t.Fatalf("category-repeat delta = %d, want %d", otherCategory-sameCategory, 10*objectiveScale)
	}
}

// TestScoreWorkingWeeksDeficit: with no history the deficit condition
// scheduled/7 < 52*desired holds for any desired fraction above zero.
func TestScoreWorkingWeeksDeficit(t *testing.T) {
	m := objectiveModel(t, func(tasks *domain.TaskRegistry) error {
		if err := tasks.AddCategory(domain.TaskCategory{
			Name: "ER", DaysParameter: domain.Continuous, NumberOfWeeks: 1, WeekdayRevenue: 80,
		}); err != nil {
			return err
		}
		return tasks.AddTask(domain.Task{CategoryName: "ER", Type: domain.TaskMain, Name: "ER_1"})
	})
	ctx := newScoringContext(m, nil)

	mt := &MathTask{
		TaskName: "ER_1", TaskType: domain.TaskMain,
		StartDate:     time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2023, 1, 6, 0, 0, 0, 0, time.UTC),
		NumberOfWeeks: 1,
	}

	wantsWork := ctx.score(mt, domain.NewPhysician("Alice", "Smith", nil, true, 0.5, nil, nil))
	wantsNone := ctx.score(mt, domain.NewPhysician("Dana", "Reed", nil, true, 0, nil, nil))

	if wantsWork-wantsNone != 5*objectiveScale {
		t.Fatalf("working-weeks delta = %d, want %d", wantsWork-wantsNone, 5*objectiveScale)
	}
}
