// Package config defines the JSON document shapes for task, physician,
// calendar, unavailability, and schedule persistence, and converts between
// them and the domain/calendarx/scheduler types.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/bruno.lopes/dutyplanner/internal/calendarx"
	"github.com/bruno.lopes/dutyplanner/internal/domain"
	"github.com/bruno.lopes/dutyplanner/internal/scheduler"
)

const isoDate = "2006-01-02"

// CategoryDoc is one task category as persisted in a task config document.
type CategoryDoc struct {
	Name           string  `json:"name"`
	DaysParameter  string  `json:"days_parameter"`
	NumberOfWeeks  int     `json:"number_of_weeks"`
	WeekdayRevenue float64 `json:"weekday_revenue"`
	CallRevenue    float64 `json:"call_revenue"`
	Restricted     bool    `json:"restricted"`
}

// TaskDoc is one task as persisted in a task config document.
type TaskDoc struct {
	Category   string `json:"category"`
	Type       string `json:"type"`
	Name       string `json:"name"`
	WeekOffset int    `json:"week_offset"`
	Heaviness  int    `json:"heaviness"`
	Mandatory  bool   `json:"mandatory"`
}

// TaskConfigDocument is the persisted task configuration document.
type TaskConfigDocument struct {
	Categories     []CategoryDoc     `json:"categories"`
	Tasks          []TaskDoc         `json:"tasks"`
	LinkageManager map[string]string `json:"linkage_manager"`
}

// PhysicianDoc is one physician as persisted in a physician config document.
type PhysicianDoc struct {
	FirstName               string   `json:"first_name"`
	LastName                string   `json:"last_name"`
	Initials                string   `json:"initials"`
	PreferredTasks          []string `json:"preferred_tasks"`
	DiscontinuityPreference bool     `json:"discontinuity_preference"`
	DesiredWorkingWeeks     float64  `json:"desired_working_weeks"`
	RestrictedTasks         []string `json:"restricted_tasks"`
	ExclusionTasks          []string `json:"exclusion_tasks"`
}

// PhysicianConfigDocument is the physician configuration document shape.
type PhysicianConfigDocument struct {
	Physicians []PhysicianDoc `json:"physicians"`
}

// CalendarDocument is the persisted calendar document, dates as ISO strings.
type CalendarDocument struct {
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	Region      string   `json:"region"`
	Holidays    []string `json:"holidays"`
	WorkingDays []string `json:"working_days"`
	WeekendDays []string `json:"weekend_days"`
	CallDays    []string `json:"call_days"`
}

// UnavailabilityEntryDoc is either a single ISO date or a [start, end] range,
// matching the `"First Last": [ISO-date | [ISO-start, ISO-end], ...]` shape.
type UnavailabilityEntryDoc struct {
	Start string
	End   string
}

// MarshalJSON renders a single date as a bare string, a range as a 2-element array.
func (e UnavailabilityEntryDoc) MarshalJSON() ([]byte, error) {
	if e.Start == e.End {
		return json.Marshal(e.Start)
	}
	return json.Marshal([2]string{e.Start, e.End})
}

// UnmarshalJSON accepts either a bare ISO date string or a 2-element array.
func (e *UnavailabilityEntryDoc) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		e.Start, e.End = single, single
		return nil
	}
	var pair [2]string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("%w: malformed unavailability entry %s", domain.ErrInvalidPeriod, data)
	}
	e.Start, e.End = pair[0], pair[1]
	return nil
}

// UnavailabilityDocument is the `{"First Last": [...]}` document shape.
type UnavailabilityDocument map[string][]UnavailabilityEntryDoc

// AssignmentDoc is one persisted schedule line.
type AssignmentDoc struct {
	Task      string   `json:"task"`
	Days      []string `json:"days"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	Score     int64    `json:"score"`
}

// ScheduleDocument maps physician names to their persisted assignments.
type ScheduleDocument map[string][]AssignmentDoc

// SaveJSON writes v to filename as indented JSON.
func SaveJSON(filename string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0o644)
}

// LoadJSON reads filename into v.
func LoadJSON(filename string, v interface{}) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// ToTaskRegistry builds a domain.TaskRegistry from a TaskConfigDocument.
func (doc TaskConfigDocument) ToTaskRegistry() (*domain.TaskRegistry, error) {
	reg := domain.NewTaskRegistry()
	for _, c := range doc.Categories {
		cat := domain.TaskCategory{
			Name:           c.Name,
			DaysParameter:  domain.DaysParameter(c.DaysParameter),
			NumberOfWeeks:  c.NumberOfWeeks,
			WeekdayRevenue: c.WeekdayRevenue,
			CallRevenue:    c.CallRevenue,
			Restricted:     c.Restricted,
		}
		if err := reg.AddCategory(cat); err != nil {
			return nil, err
		}
	}
	for _, t := range doc.Tasks {
		task := domain.Task{
			CategoryName: t.Category,
			Type:         domain.TaskType(t.Type),
			Name:         t.Name,
			WeekOffset:   t.WeekOffset,
			Heaviness:    t.Heaviness,
			Mandatory:    t.Mandatory,
		}
		if err := reg.AddTask(task); err != nil {
			return nil, err
		}
	}
	for main, call := range doc.LinkageManager {
		if err := reg.LinkTasks(main, call); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// FromTaskRegistry serializes a domain.TaskRegistry into a TaskConfigDocument.
func FromTaskRegistry(reg *domain.TaskRegistry) TaskConfigDocument {
	doc := TaskConfigDocument{LinkageManager: reg.Linkage.Links()}
	for _, cat := range reg.Categories() {
		doc.Categories = append(doc.Categories, CategoryDoc{
			Name:           cat.Name,
			DaysParameter:  string(cat.DaysParameter),
			NumberOfWeeks:  cat.NumberOfWeeks,
			WeekdayRevenue: cat.WeekdayRevenue,
			CallRevenue:    cat.CallRevenue,
			Restricted:     cat.Restricted,
		})
	}
	for _, t := range reg.Tasks() {
		doc.Tasks = append(doc.Tasks, TaskDoc{
			Category:   t.CategoryName,
			Type:       string(t.Type),
			Name:       t.Name,
			WeekOffset: t.WeekOffset,
			Heaviness:  t.Heaviness,
			Mandatory:  t.Mandatory,
		})
	}
	return doc
}

// ToPhysicianRegistry builds a domain.PhysicianRegistry bound to tasks.
func (doc PhysicianConfigDocument) ToPhysicianRegistry(tasks *domain.TaskRegistry) (*domain.PhysicianRegistry, error) {
	reg := domain.NewPhysicianRegistry(tasks)
	for _, p := range doc.Physicians {
		physician := domain.NewPhysician(p.FirstName, p.LastName, p.PreferredTasks,
			p.DiscontinuityPreference, p.DesiredWorkingWeeks, p.RestrictedTasks, p.ExclusionTasks)
		if err := reg.AddPhysician(physician); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// FromPhysicianRegistry serializes a domain.PhysicianRegistry.
func FromPhysicianRegistry(reg *domain.PhysicianRegistry) PhysicianConfigDocument {
	var doc PhysicianConfigDocument
	for _, p := range reg.Physicians() {
		doc.Physicians = append(doc.Physicians, PhysicianDoc{
			FirstName:               p.FirstName,
			LastName:                p.LastName,
			Initials:                p.Initials,
			PreferredTasks:          p.PreferredTasks,
			DiscontinuityPreference: p.DiscontinuityPreference,
			DesiredWorkingWeeks:     p.DesiredWorkingWeeks,
			RestrictedTasks:         p.RestrictedTasks,
			ExclusionTasks:          p.ExclusionTasks,
		})
	}
	return doc
}

// ToUnavailability applies doc onto reg's unavailability table.
func (doc UnavailabilityDocument) ToUnavailability(reg *domain.PhysicianRegistry) error {
	entries := make(map[string][]domain.UnavailabilityEntry, len(doc))
	for name, docEntries := range doc {
		for _, e := range docEntries {
			start, err := time.Parse(isoDate, e.Start)
			if err != nil {
				return fmt.Errorf("%w: %v", domain.ErrInvalidPeriod, err)
			}
			end, err := time.Parse(isoDate, e.End)
			if err != nil {
				return fmt.Errorf("%w: %v", domain.ErrInvalidPeriod, err)
			}
			entries[name] = append(entries[name], domain.UnavailabilityEntry{Start: start, End: end})
		}
	}
	return reg.SetUnavailability(entries)
}

// FromUnavailability serializes reg's unavailability table.
func FromUnavailability(reg *domain.PhysicianRegistry) UnavailabilityDocument {
	doc := make(UnavailabilityDocument)
	for _, p := range reg.Physicians() {
		for _, e := range reg.UnavailabilityOf(p.Name()) {
			doc[p.Name()] = append(doc[p.Name()], UnavailabilityEntryDoc{
				Start: e.Start.Format(isoDate),
				End:   e.End.Format(isoDate),
			})
		}
	}
	return doc
}

// FromCalendar serializes a calendarx.Calendar into its document shape.
func FromCalendar(c *calendarx.Calendar) CalendarDocument {
	return CalendarDocument{
		StartDate:   c.Start.Format(isoDate),
		EndDate:     c.End.Format(isoDate),
		Region:      c.Region,
		Holidays:    datesToStrings(c.Holidays),
		WorkingDays: datesToStrings(c.WorkingDays),
		WeekendDays: datesToStrings(c.WeekendDays),
		CallDays:    datesToStrings(c.CallDays),
	}
}

func datesToStrings(days []time.Time) []string {
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = d.Format(isoDate)
	}
	return out
}

// FromSchedule serializes a scheduler.Result's per-physician assignments.
func FromSchedule(byPhysician map[string][]scheduler.Assignment) ScheduleDocument {
	doc := make(ScheduleDocument, len(byPhysician))
	for physician, assignments := range byPhysician {
		for _, a := range assignments {
			doc[physician] = append(doc[physician], AssignmentDoc{
				Task:      a.TaskName,
				Days:      datesToStrings(a.Days),
				StartDate: a.StartDate.Format(isoDate),
				EndDate:   a.EndDate.Format(isoDate),
				Score:     a.Score,
			})
		}
	}
	return doc
}
