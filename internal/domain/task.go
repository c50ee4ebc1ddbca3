// Package domain holds the physician-scheduling domain model: physicians, task
// categories, tasks and the main/call linkage between them. Types here are
// immutable during a solve; only the registries in registry.go mutate them.
package domain

import "fmt"

// TaskType distinguishes a working-day duty from an on-call duty.
type TaskType string

const (
	TaskMain TaskType = "Main"
	TaskCall TaskType = "Call"
)

// DaysParameter controls how a task category's working days are segmented.
type DaysParameter string

const (
	Discontinuous DaysParameter = "Discontinuous"
	Continuous    DaysParameter = "Continuous"
	MultiWeek     DaysParameter = "Multi-week"
)

// TaskCategory groups tasks that share revenue and scheduling-shape properties.
type TaskCategory struct {
	Name           string
	DaysParameter  DaysParameter
	NumberOfWeeks  int
	WeekdayRevenue float64
	CallRevenue    float64
	Restricted     bool
}

// Validate enforces number_of_weeks == 1 unless DaysParameter == MultiWeek.
func (c TaskCategory) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: category name must not be empty", ErrInvalidConfig)
	}
	if c.NumberOfWeeks < 1 {
		return fmt.Errorf("%w: category %q number_of_weeks must be >= 1", ErrInvalidConfig, c.Name)
	}
	if c.DaysParameter != MultiWeek && c.NumberOfWeeks != 1 {
		return fmt.Errorf("%w: category %q has number_of_weeks=%d but days_parameter=%s",
			ErrInvalidConfig, c.Name, c.NumberOfWeeks, c.DaysParameter)
	}
	return nil
}

// Task is one schedulable duty, occurring on a cadence derived from its category.
type Task struct {
	CategoryName string
	Type         TaskType
	Name         string
	WeekOffset   int
	Heaviness    int
	Mandatory    bool
}

// NumberOfWeeks returns 1 for CALL tasks, otherwise the category's value.
func (t Task) NumberOfWeeks(cat TaskCategory) int {
	if t.Type == TaskCall {
		return 1
	}
	return cat.NumberOfWeeks
}

// IsHeavy reports whether the task triggers heavy-task spacing in the objective.
func (t Task) IsHeavy() bool { return t.Heaviness >= 3 }

// IsDiscontinuous reports whether the owning category uses discontinuous days.
func (t Task) IsDiscontinuous(cat TaskCategory) bool { return cat.DaysParameter == Discontinuous }

// Revenue returns the category's weekday or call revenue depending on task type.
func (t Task) Revenue(cat TaskCategory) float64 {
	if t.Type == TaskCall {
		return cat.CallRevenue
	}
	return cat.WeekdayRevenue
}

// LinkageManager maps MAIN task names to their linked CALL task name. Several
// MAIN tasks may share one CALL task, but each MAIN task links to at most one.
type LinkageManager struct {
	links map[string]string
}

// NewLinkageManager returns an empty linkage manager.
func NewLinkageManager() *LinkageManager {
	return &LinkageManager{links: make(map[string]string)}
}

// LinkTasks records mainTask -> callTask. Both tasks must already carry the
// correct Type; mismatched types are rejected structurally so MAIN->MAIN and
// CALL->* edges can never be inserted.
func (m *LinkageManager) LinkTasks(mainTask, callTask Task) error {
	if mainTask.Type != TaskMain || callTask.Type != TaskCall {
		return fmt.Errorf("%w: linkage must go from a Main task to a Call task, got %s -> %s",
			ErrInvalidConfig, mainTask.Type, callTask.Type)
	}
	m.links[mainTask.Name] = callTask.Name
	return nil
}

// UnlinkTask removes the linkage for the given MAIN task name, if any.
func (m *LinkageManager) UnlinkTask(mainTaskName string) {
	delete(m.links, mainTaskName)
}

// GetLinkedCall returns the CALL task name linked to mainTaskName, if any.
func (m *LinkageManager) GetLinkedCall(mainTaskName string) (string, bool) {
	call, ok := m.links[mainTaskName]
	return call, ok
}

// RemoveTask drops taskName from the manager both as a MAIN key and as a
// linked CALL value.
func (m *LinkageManager) RemoveTask(taskName string) {
	delete(m.links, taskName)
	for main, call := range m.links {
		if call == taskName {
			delete(m.links, main)
		}
	}
}

// Links returns a copy of the underlying main->call mapping.
func (m *LinkageManager) Links() map[string]string {
	out := make(map[string]string, len(m.links))
	for k, v := range m.links {
		out[k] = v
	}
	return out
}

// LoadLinks replaces the linkage table wholesale. Unlike LinkTasks it does not
// check the task types of either endpoint.
func (m *LinkageManager) LoadLinks(links map[string]string) {
	m.links = make(map[string]string, len(links))
	for k, v := range links {
		m.links[k] = v
	}
}
