package domain

import (
	"fmt"
	"time"
)

// TaskRegistry is the arena owning every TaskCategory and Task by name.
// Tasks carry their category's name rather than a pointer, so the registry
// stays cycle-free and trivially serializable.
type TaskRegistry struct {
	categories map[string]TaskCategory
	tasks      []Task // insertion order, preserved for deterministic iteration
	taskIndex  map[string]int
	Linkage    *LinkageManager
}

// NewTaskRegistry returns an empty registry.
func NewTaskRegistry() *TaskRegistry {
	return &TaskRegistry{
		categories: make(map[string]TaskCategory),
		taskIndex:  make(map[string]int),
		Linkage:    NewLinkageManager(),
	}
}

// AddCategory validates and registers a task category.
func (r *TaskRegistry) AddCategory(cat TaskCategory) error {
	if err := cat.Validate(); err != nil {
		return err
	}
	r.categories[cat.Name] = cat
	return nil
}

// Category looks up a category by name.
func (r *TaskRegistry) Category(name string) (TaskCategory, bool) {
	c, ok := r.categories[name]
	return c, ok
}

// Categories returns every registered category, unordered.
func (r *TaskRegistry) Categories() map[string]TaskCategory {
	out := make(map[string]TaskCategory, len(r.categories))
	for k, v := range r.categories {
		out[k] = v
	}
	return out
}

// AddTask validates that the task's category exists and registers the task in
// insertion order.
func (r *TaskRegistry) AddTask(t Task) error {
	if _, ok := r.categories[t.CategoryName]; !ok {
		return fmt.Errorf("%w: task %q references unknown category %q", ErrInvalidConfig, t.Name, t.CategoryName)
	}
	if _, exists := r.taskIndex[t.Name]; exists {
		return fmt.Errorf("%w: duplicate task name %q", ErrInvalidConfig, t.Name)
	}
	r.taskIndex[t.Name] = len(r.tasks)
	r.tasks = append(r.tasks, t)
	return nil
}

// Tasks returns all registered tasks in insertion order.
func (r *TaskRegistry) Tasks() []Task {
	out := make([]Task, len(r.tasks))
	copy(out, r.tasks)
	return out
}

// GetTask looks up a task by name.
func (r *TaskRegistry) GetTask(name string) (Task, bool) {
	idx, ok := r.taskIndex[name]
	if !ok {
		return Task{}, false
	}
	return r.tasks[idx], true
}

// CategoryOf returns the TaskCategory owning the named task.
func (r *TaskRegistry) CategoryOf(t Task) (TaskCategory, bool) {
	return r.Category(t.CategoryName)
}

// LinkTasks links mainTaskName -> callTaskName, validating both names exist
// and carry the expected TaskType.
func (r *TaskRegistry) LinkTasks(mainTaskName, callTaskName string) error {
	mainTask, ok := r.GetTask(mainTaskName)
	if !ok {
		return fmt.Errorf("%w: unknown main task %q", ErrInvalidConfig, mainTaskName)
	}
	callTask, ok := r.GetTask(callTaskName)
	if !ok {
		return fmt.Errorf("%w: unknown call task %q", ErrInvalidConfig, callTaskName)
	}
	return r.Linkage.LinkTasks(mainTask, callTask)
}

// UnavailabilityEntry is a single date (Start == End) or an inclusive range.
type UnavailabilityEntry struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether d falls within the entry.
func (e UnavailabilityEntry) Contains(d time.Time) bool {
	d = dateOnly(d)
	return !d.Before(dateOnly(e.Start)) && !d.After(dateOnly(e.End))
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// PhysicianRegistry owns the physician set and their unavailability entries.
// It validates every physician's preferred/restricted/excluded task names
// against a TaskRegistry at insertion time.
type PhysicianRegistry struct {
	tasks          *TaskRegistry
	physicians     []Physician // insertion order
	byName         map[string]int
	unavailability map[string][]UnavailabilityEntry
}

// NewPhysicianRegistry returns an empty registry bound to the given task registry.
func NewPhysicianRegistry(tasks *TaskRegistry) *PhysicianRegistry {
	return &PhysicianRegistry{
		tasks:          tasks,
		byName:         make(map[string]int),
		unavailability: make(map[string][]UnavailabilityEntry),
	}
}

// AddPhysician validates and registers a physician, assigning initials.
func (r *PhysicianRegistry) AddPhysician(p Physician) error {
	if err := r.validate(p); err != nil {
		return err
	}
	p.Initials = r.assignInitials(p)
	r.byName[p.Name()] = len(r.physicians)
	r.physicians = append(r.physicians, p)
	r.unavailability[p.Name()] = nil
	return nil
}

func (r *PhysicianRegistry) validate(p Physician) error {
	check := func(names []string, field string) error {
		for _, n := range names {
			if _, ok := r.tasks.Category(n); !ok {
				return fmt.Errorf("%w: physician %q references unknown %s task category %q",
					ErrInvalidConfig, p.Name(), field, n)
			}
		}
		return nil
	}
	if err := check(p.PreferredTasks, "preferred"); err != nil {
		return err
	}
	if err := check(p.RestrictedTasks, "restricted"); err != nil {
		return err
	}
	if err := check(p.ExclusionTasks, "excluded"); err != nil {
		return err
	}
	if !AllowedWorkingWeeks[p.DesiredWorkingWeeks] {
		return fmt.Errorf("%w: physician %q desired_working_weeks=%v not in allowed set",
			ErrInvalidConfig, p.Name(), p.DesiredWorkingWeeks)
	}
	return nil
}

// assignInitials computes first-letter-of-given+family, falling back to the
// first two letters of the given name plus the family initial on a clash.
func (r *PhysicianRegistry) assignInitials(p Physician) string {
	initials := string(p.FirstName[0]) + string(p.LastName[0])
	for _, existing := range r.physicians {
		if existing.Initials == initials {
			if len(p.FirstName) >= 2 {
				initials = p.FirstName[:2] + string(p.LastName[0])
			}
			break
		}
	}
	return initials
}

// Physicians returns all registered physicians in insertion order.
func (r *PhysicianRegistry) Physicians() []Physician {
	out := make([]Physician, len(r.physicians))
	copy(out, r.physicians)
	return out
}

// GetPhysician looks up a physician by "First Last" name.
func (r *PhysicianRegistry) GetPhysician(name string) (Physician, bool) {
	idx, ok := r.byName[name]
	if !ok {
		return Physician{}, false
	}
	return r.physicians[idx], true
}

// SetUnavailability replaces the unavailability table wholesale. Every name
// must already be a registered physician.
func (r *PhysicianRegistry) SetUnavailability(entries map[string][]UnavailabilityEntry) error {
	for name := range entries {
		if _, ok := r.byName[name]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownPhysician, name)
		}
	}
	r.unavailability = make(map[string][]UnavailabilityEntry, len(entries))
	for name, es := range entries {
		r.unavailability[name] = append([]UnavailabilityEntry(nil), es...)
	}
	return nil
}

// AddUnavailability appends one entry for a registered physician.
func (r *PhysicianRegistry) AddUnavailability(name string, entry UnavailabilityEntry) error {
	if _, ok := r.byName[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPhysician, name)
	}
	r.unavailability[name] = append(r.unavailability[name], entry)
	return nil
}

// IsUnavailable answers the Availability Oracle's core question: is physician
// name unavailable on day d?
func (r *PhysicianRegistry) IsUnavailable(name string, d time.Time) bool {
	for _, e := range r.unavailability[name] {
		if e.Contains(d) {
			return true
		}
	}
	return false
}

// UnavailabilityOf returns the raw entries for a physician.
func (r *PhysicianRegistry) UnavailabilityOf(name string) []UnavailabilityEntry {
	return append([]UnavailabilityEntry(nil), r.unavailability[name]...)
}

// Tasks exposes the bound TaskRegistry (used by serializers/handlers that need
// both registries together).
func (r *PhysicianRegistry) Tasks() *TaskRegistry { return r.tasks }
