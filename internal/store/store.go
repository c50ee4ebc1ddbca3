// Package store persists the domain registries, calendars, and solved
// schedules to SQLite, and loads them back.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bruno.lopes/dutyplanner/internal/calendarx"
	"github.com/bruno.lopes/dutyplanner/internal/domain"
	"github.com/bruno.lopes/dutyplanner/internal/scheduler"
)

const isoDate = "2006-01-02"

// SaveTaskRegistry replaces the persisted category/task/linkage tables with
// the contents of reg.
func SaveTaskRegistry(db *sql.DB, reg *domain.TaskRegistry) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range []string{"DELETE FROM linkages", "DELETE FROM tasks", "DELETE FROM task_categories"} {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	for _, cat := range reg.Categories() {
		if _, err := tx.Exec(`INSERT INTO task_categories
			(name, days_parameter, number_of_weeks, weekday_revenue, call_revenue, restricted)
			VALUES (?, ?, ?, ?, ?, ?)`,
			cat.Name, string(cat.DaysParameter), cat.NumberOfWeeks, cat.WeekdayRevenue, cat.CallRevenue, cat.Restricted); err != nil {
			return err
		}
	}
	for _, t := range reg.Tasks() {
		if _, err := tx.Exec(`INSERT INTO tasks (name, category, type, week_offset, heaviness, mandatory)
			VALUES (?, ?, ?, ?, ?, ?)`,
			t.Name, t.CategoryName, string(t.Type), t.WeekOffset, t.Heaviness, t.Mandatory); err != nil {
			return err
		}
	}
	for main, call := range reg.Linkage.Links() {
		if _, err := tx.Exec(`INSERT INTO linkages (main_task, call_task) VALUES (?, ?)`, main, call); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadTaskRegistry rebuilds a TaskRegistry from the persisted tables.
func LoadTaskRegistry(db *sql.DB) (*domain.TaskRegistry, error) {
	reg := domain.NewTaskRegistry()

	catRows, err := db.Query(`SELECT name, days_parameter, number_of_weeks, weekday_revenue, call_revenue, restricted FROM task_categories`)
	if err != nil {
		return nil, err
	}
	defer catRows.Close()
	for catRows.Next() {
		var cat domain.TaskCategory
		var daysParam string
		if err := catRows.Scan(&cat.Name, &daysParam, &cat.NumberOfWeeks, &cat.WeekdayRevenue, &cat.CallRevenue, &cat.Restricted); err != nil {
			return nil, err
		}
		cat.DaysParameter = domain.DaysParameter(daysParam)
		if err := reg.AddCategory(cat); err != nil {
			return nil, err
		}
	}
	if err := catRows.Err(); err != nil {
		return nil, err
	}

	taskRows, err := db.Query(`SELECT name, category, type, week_offset, heaviness, mandatory FROM tasks`)
	if err != nil {
		return nil, err
	}
	defer taskRows.Close()
	for taskRows.Next() {
		var t domain.Task
		var taskType string
		if err := taskRows.Scan(&t.Name, &t.CategoryName, &taskType, &t.WeekOffset, &t.Heaviness, &t.Mandatory); err != nil {
			return nil, err
		}
		t.Type = domain.TaskType(taskType)
		if err := reg.AddTask(t); err != nil {
			return nil, err
		}
	}
	if err := taskRows.Err(); err != nil {
		return nil, err
	}

	linkRows, err := db.Query(`SELECT main_task, call_task FROM linkages`)
	if err != nil {
		return nil, err
	}
	defer linkRows.Close()
	for linkRows.Next() {
		var main, call string
		if err := linkRows.Scan(&main, &call); err != nil {
			return nil, err
		}
		if err := reg.LinkTasks(main, call); err != nil {
			return nil, err
		}
	}
	return reg, linkRows.Err()
}

// SavePhysicianRegistry replaces the persisted physician/unavailability
// tables with the contents of reg.
func SavePhysicianRegistry(db *sql.DB, reg *domain.PhysicianRegistry) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range []string{"DELETE FROM unavailability", "DELETE FROM physicians"} {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	for _, p := range reg.Physicians() {
		preferred, _ := json.Marshal(p.PreferredTasks)
		restricted, _ := json.Marshal(p.RestrictedTasks)
		excluded, _ := json.Marshal(p.ExclusionTasks)
		if _, err := tx.Exec(`INSERT INTO physicians
			(name, first_name, last_name, initials, preferred_tasks, restricted_tasks, exclusion_tasks,
			 discontinuity_preference, desired_working_weeks)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.Name(), p.FirstName, p.LastName, p.Initials, string(preferred), string(restricted), string(excluded),
			p.DiscontinuityPreference, p.DesiredWorkingWeeks); err != nil {
			return err
		}
		for _, e := range reg.UnavailabilityOf(p.Name()) {
			if _, err := tx.Exec(`INSERT INTO unavailability (physician, start_date, end_date) VALUES (?, ?, ?)`,
				p.Name(), e.Start.Format(isoDate), e.End.Format(isoDate)); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// LoadPhysicianRegistry rebuilds a PhysicianRegistry bound to tasks.
func LoadPhysicianRegistry(db *sql.DB, tasks *domain.TaskRegistry) (*domain.PhysicianRegistry, error) {
	reg := domain.NewPhysicianRegistry(tasks)

	rows, err := db.Query(`SELECT first_name, last_name, preferred_tasks, restricted_tasks, exclusion_tasks,
		discontinuity_preference, desired_working_weeks FROM physicians`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var firstName, lastName, preferredJSON, restrictedJSON, excludedJSON string
		var discontinuity bool
		var desiredWeeks float64
		if err := rows.Scan(&firstName, &lastName, &preferredJSON, &restrictedJSON, &excludedJSON, &discontinuity, &desiredWeeks); err != nil {
			return nil, err
		}
		var preferred, restricted, excluded []string
		json.Unmarshal([]byte(preferredJSON), &preferred)
		json.Unmarshal([]byte(restrictedJSON), &restricted)
		json.Unmarshal([]byte(excludedJSON), &excluded)
		p := domain.NewPhysician(firstName, lastName, preferred, discontinuity, desiredWeeks, restricted, excluded)
		if err := reg.AddPhysician(p); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	unavailRows, err := db.Query(`SELECT physician, start_date, end_date FROM unavailability`)
	if err != nil {
		return nil, err
	}
	defer unavailRows.Close()

	entries := make(map[string][]domain.UnavailabilityEntry)
	for unavailRows.Next() {
		var name, startStr, endStr string
		if err := unavailRows.Scan(&name, &startStr, &endStr); err != nil {
			return nil, err
		}
		start, err := time.Parse(isoDate, startStr)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPeriod, err)
		}
		end, err := time.Parse(isoDate, endStr)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPeriod, err)
		}
		entries[name] = append(entries[name], domain.UnavailabilityEntry{Start: start, End: end})
	}
	if err := unavailRows.Err(); err != nil {
		return nil, err
	}
	if len(entries) > 0 {
		if err := reg.SetUnavailability(entries); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// CalendarMeta is the persisted summary row for one calendar.
type CalendarMeta struct {
	ID        string
	StartDate time.Time
	EndDate   time.Time
	Region    string
}

// SaveCalendar upserts one calendar's horizon/region row.
func SaveCalendar(db *sql.DB, id string, cal *calendarx.Calendar) error {
	_, err := db.Exec(`INSERT OR REPLACE INTO calendars (id, start_date, end_date, region) VALUES (?, ?, ?, ?)`,
		id, cal.Start.Format(isoDate), cal.End.Format(isoDate), cal.Region)
	return err
}

// LoadCalendarMeta fetches one calendar's horizon/region row.
func LoadCalendarMeta(db *sql.DB, id string) (CalendarMeta, error) {
	var meta CalendarMeta
	var startStr, endStr string
	meta.ID = id
	err := db.QueryRow(`SELECT start_date, end_date, region FROM calendars WHERE id = ?`, id).
		Scan(&startStr, &endStr, &meta.Region)
	if err != nil {
		return meta, err
	}
	meta.StartDate, err = time.Parse(isoDate, startStr)
	if err != nil {
		return meta, err
	}
	meta.EndDate, err = time.Parse(isoDate, endStr)
	return meta, err
}

// ListCalendars returns every persisted calendar, most recent first.
func ListCalendars(db *sql.DB) ([]CalendarMeta, error) {
	rows, err := db.Query(`SELECT id, start_date, end_date, region FROM calendars ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CalendarMeta
	for rows.Next() {
		var meta CalendarMeta
		var startStr, endStr string
		if err := rows.Scan(&meta.ID, &startStr, &endStr, &meta.Region); err != nil {
			return nil, err
		}
		meta.StartDate, _ = time.Parse(isoDate, startStr)
		meta.EndDate, _ = time.Parse(isoDate, endStr)
		out = append(out, meta)
	}
	return out, rows.Err()
}

// SaveSchedule persists one solve's status and per-physician assignments
// under scheduleID, replacing any prior rows for that ID.
func SaveSchedule(db *sql.DB, scheduleID, calendarID string, status scheduler.Status, byPhysician map[string][]scheduler.Assignment) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO schedules (id, calendar_id, status) VALUES (?, ?, ?)`,
		scheduleID, calendarID, string(status)); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM schedule_assignments WHERE schedule_id = ?`, scheduleID); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO schedule_assignments
		(schedule_id, physician, task_name, start_date, end_date, score) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for physician, assignments := range byPhysician {
		for _, a := range assignments {
			if _, err := stmt.Exec(scheduleID, physician, a.TaskName,
				a.StartDate.Format(isoDate), a.EndDate.Format(isoDate), a.Score); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// LoadSchedule returns a schedule's status and per-physician assignments.
func LoadSchedule(db *sql.DB, scheduleID string) (scheduler.Status, map[string][]scheduler.Assignment, error) {
	var status string
	var calendarID string
	if err := db.QueryRow(`SELECT status, calendar_id FROM schedules WHERE id = ?`, scheduleID).
		Scan(&status, &calendarID); err != nil {
		return "", nil, err
	}

	rows, err := db.Query(`SELECT physician, task_name, start_date, end_date, score
		FROM schedule_assignments WHERE schedule_id = ?`, scheduleID)
	if err != nil {
		return "", nil, err
	}
	defer rows.Close()

	byPhysician := make(map[string][]scheduler.Assignment)
	for rows.Next() {
		var physician, taskName, startStr, endStr string
		var score int64
		if err := rows.Scan(&physician, &taskName, &startStr, &endStr, &score); err != nil {
			return "", nil, err
		}
		start, _ := time.Parse(isoDate, startStr)
		end, _ := time.Parse(isoDate, endStr)
		byPhysician[physician] = append(byPhysician[physician], scheduler.Assignment{
			Physician: physician,
			TaskName:  taskName,
			StartDate: start,
			EndDate:   end,
			Score:     score,
		})
	}
	return scheduler.Status(status), byPhysician, rows.Err()
}

// ListSchedules returns every persisted schedule ID, most recent first.
func ListSchedules(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`SELECT id FROM schedules ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetSetting reads one key/value setting.
func GetSetting(db *sql.DB, key string) (string, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	return value, err
}

// SetSetting upserts one key/value setting.
func SetSetting(db *sql.DB, key, value string) error {
	_, err := db.Exec(`INSERT OR REPLACE INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)`, key, value)
	return err
}
