package database

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Initialize creates a SQLite database connection
func Initialize(dbPath string) (*sql.DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if err := createTables(db); err != nil {
		return nil, err
	}

	return db, nil
}

// createTables owns every table except holidays, which the holidays package
// creates itself the first time its Service wraps this same *sql.DB.
func createTables(db *sql.DB) error {
	schema := `
	-- Global key/value settings (AI provider, model, default time limit, ...)
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Task categories: revenue, cadence and day-segmentation rules
	CREATE TABLE IF NOT EXISTS task_categories (
		name             TEXT PRIMARY KEY,
		days_parameter   TEXT NOT NULL,
		number_of_weeks  INTEGER NOT NULL DEFAULT 1,
		weekday_revenue  REAL NOT NULL DEFAULT 0,
		call_revenue     REAL NOT NULL DEFAULT 0,
		restricted       BOOLEAN NOT NULL DEFAULT FALSE
	);

	-- Schedulable duties, one row per named task
	CREATE TABLE IF NOT EXISTS tasks (
		name         TEXT PRIMARY KEY,
		category     TEXT NOT NULL REFERENCES task_categories(name),
		type         TEXT NOT NULL,
		week_offset  INTEGER NOT NULL DEFAULT 0,
		heaviness    INTEGER NOT NULL DEFAULT 0,
		mandatory    BOOLEAN NOT NULL DEFAULT FALSE
	);

	-- Main -> Call task linkage
	CREATE TABLE IF NOT EXISTS linkages (
		main_task TEXT PRIMARY KEY REFERENCES tasks(name),
		call_task TEXT NOT NULL REFERENCES tasks(name)
	);

	-- Registered physicians
	CREATE TABLE IF NOT EXISTS physicians (
		name                      TEXT PRIMARY KEY,
		first_name                TEXT NOT NULL,
		last_name                 TEXT NOT NULL,
		initials                  TEXT NOT NULL,
		preferred_tasks           TEXT NOT NULL DEFAULT '[]',
		restricted_tasks          TEXT NOT NULL DEFAULT '[]',
		exclusion_tasks           TEXT NOT NULL DEFAULT '[]',
		discontinuity_preference  BOOLEAN NOT NULL DEFAULT FALSE,
		desired_working_weeks     REAL NOT NULL DEFAULT 1
	);

	-- Physician unavailability ranges (Start == End for a single day)
	CREATE TABLE IF NOT EXISTS unavailability (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		physician  TEXT NOT NULL REFERENCES physicians(name),
		start_date TEXT NOT NULL,
		end_date   TEXT NOT NULL
	);

	-- Calendars: a scheduling horizon plus its region
	CREATE TABLE IF NOT EXISTS calendars (
		id         TEXT PRIMARY KEY,
		start_date TEXT NOT NULL,
		end_date   TEXT NOT NULL,
		region     TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Solved schedules, one row per solve
	CREATE TABLE IF NOT EXISTS schedules (
		id          TEXT PRIMARY KEY,
		calendar_id TEXT NOT NULL REFERENCES calendars(id),
		status      TEXT NOT NULL,
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- One row per (task, physician, interval) assignment within a schedule
	CREATE TABLE IF NOT EXISTS schedule_assignments (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		schedule_id TEXT NOT NULL REFERENCES schedules(id),
		physician   TEXT NOT NULL,
		task_name   TEXT NOT NULL,
		start_date  TEXT NOT NULL,
		end_date    TEXT NOT NULL,
		score       INTEGER NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('openai_api_key', ''),
		('ai_model', 'gpt-4o-mini'),
		('default_time_limit_seconds', '30'),
		('default_region', 'Canada/QC');
	`

	_, err := db.Exec(schema)
	return err
}
