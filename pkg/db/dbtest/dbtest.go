// Package dbtest provides an in-memory sqlite database carrying the same
// tables as the postgres migrations.
package dbtest

import (
	"testing"

	"github.com/smallbiznis/hsekpi/pkg/db"
	"gorm.io/gorm"
)

// Open returns a fresh database with the full schema applied.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	conn, err := db.NewTest()
	if err != nil {
		t.Fatalf("new test db: %v", err)
	}
	for _, stmt := range schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("apply schema: %v\n%s", err, stmt)
		}
	}
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}

// Insert writes a single row and fails the test on error.
func Insert(t testing.TB, conn *gorm.DB, table string, row map[string]any) {
	t.Helper()
	if err := conn.Table(table).Create(row).Error; err != nil {
		t.Fatalf("insert into %s: %v", table, err)
	}
}

var schema = []string{
	`CREATE TABLE projects (
		id INTEGER PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		pole TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'active',
		start_date DATE,
		zones TEXT NOT NULL DEFAULT '[]',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		deleted_at DATETIME
	)`,
	`CREATE TABLE users (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'user',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE project_users (
		project_id INTEGER NOT NULL,
		user_id INTEGER NOT NULL,
		PRIMARY KEY (project_id, user_id)
	)`,
	`CREATE TABLE workers (
		id INTEGER PRIMARY KEY,
		project_id INTEGER,
		full_name TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE worker_medical_aptitudes (
		id INTEGER PRIMARY KEY,
		worker_id INTEGER NOT NULL,
		aptitude TEXT NOT NULL,
		exam_date DATE NOT NULL,
		expiry_date DATE
	)`,
	`CREATE TABLE weekly_kpi_reports (
		id INTEGER PRIMARY KEY,
		project_id INTEGER NOT NULL,
		submitted_by INTEGER NOT NULL,
		week_number INTEGER NOT NULL CHECK (week_number BETWEEN 1 AND 52),
		report_year INTEGER NOT NULL,
		start_date DATE NOT NULL,
		end_date DATE NOT NULL,
		status TEXT NOT NULL DEFAULT 'draft',
		rejection_reason TEXT,
		approved_by INTEGER,
		approved_at DATETIME,
		submitted_at DATETIME,
		accidents INTEGER NOT NULL DEFAULT 0,
		accidents_fatal INTEGER NOT NULL DEFAULT 0,
		accidents_serious INTEGER NOT NULL DEFAULT 0,
		accidents_minor INTEGER NOT NULL DEFAULT 0,
		near_misses INTEGER NOT NULL DEFAULT 0,
		first_aid_cases INTEGER NOT NULL DEFAULT 0,
		lost_workdays INTEGER NOT NULL DEFAULT 0,
		hours_worked REAL NOT NULL DEFAULT 0,
		effectif INTEGER NOT NULL DEFAULT 0,
		trainings_conducted INTEGER NOT NULL DEFAULT 0,
		trainings_planned INTEGER NOT NULL DEFAULT 0,
		employees_trained INTEGER NOT NULL DEFAULT 0,
		training_hours REAL NOT NULL DEFAULT 0,
		toolbox_talks INTEGER NOT NULL DEFAULT 0,
		inspections INTEGER NOT NULL DEFAULT 0,
		inductions INTEGER NOT NULL DEFAULT 0,
		deviations INTEGER NOT NULL DEFAULT 0,
		disciplinary_actions INTEGER NOT NULL DEFAULT 0,
		unsafe_acts INTEGER NOT NULL DEFAULT 0,
		unsafe_conditions INTEGER NOT NULL DEFAULT 0,
		emergency_drills INTEGER NOT NULL DEFAULT 0,
		work_permits INTEGER NOT NULL DEFAULT 0,
		water_consumption REAL NOT NULL DEFAULT 0,
		electricity_consumption REAL NOT NULL DEFAULT 0,
		hse_compliance_rate REAL NOT NULL DEFAULT 0,
		medical_compliance_rate REAL NOT NULL DEFAULT 0,
		tf_value REAL NOT NULL DEFAULT 0,
		tg_value REAL NOT NULL DEFAULT 0,
		notes TEXT,
		warnings TEXT NOT NULL DEFAULT '[]',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE UNIQUE INDEX ux_weekly_kpi_reports_project_week ON weekly_kpi_reports (project_id, week_number, report_year)`,
	`CREATE TABLE daily_kpi_snapshots (
		id INTEGER PRIMARY KEY,
		project_id INTEGER NOT NULL,
		entry_date DATE NOT NULL,
		week_number INTEGER NOT NULL,
		week_year INTEGER NOT NULL,
		day_name TEXT NOT NULL,
		accidents INTEGER,
		accidents_fatal INTEGER,
		accidents_serious INTEGER,
		accidents_minor INTEGER,
		near_misses INTEGER,
		first_aid_cases INTEGER,
		lost_workdays INTEGER,
		hours_worked REAL,
		effectif INTEGER,
		trainings_conducted INTEGER,
		training_hours REAL,
		toolbox_talks INTEGER,
		inspections INTEGER,
		inductions INTEGER,
		deviations INTEGER,
		disciplinary_actions INTEGER,
		unsafe_acts INTEGER,
		unsafe_conditions INTEGER,
		emergency_drills INTEGER,
		work_permits INTEGER,
		water_consumption REAL,
		electricity_consumption REAL,
		hse_compliance_rate REAL,
		medical_compliance_rate REAL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE UNIQUE INDEX ux_daily_kpi_snapshots_project_date ON daily_kpi_snapshots (project_id, entry_date)`,
	`CREATE TABLE daily_effectif_entries (
		id INTEGER PRIMARY KEY,
		project_id INTEGER NOT NULL,
		entry_date DATE NOT NULL,
		effectif INTEGER NOT NULL
	)`,
	`CREATE TABLE trainings (
		id INTEGER PRIMARY KEY,
		project_id INTEGER NOT NULL,
		training_date DATE NOT NULL,
		week_number INTEGER NOT NULL,
		week_year INTEGER NOT NULL,
		theme TEXT NOT NULL DEFAULT '',
		participants INTEGER NOT NULL DEFAULT 0,
		duration_hours REAL NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE awareness_sessions (
		id INTEGER PRIMARY KEY,
		project_id INTEGER NOT NULL,
		session_date DATE NOT NULL,
		week_number INTEGER NOT NULL,
		week_year INTEGER NOT NULL,
		theme TEXT NOT NULL DEFAULT '',
		participants INTEGER NOT NULL DEFAULT 0,
		session_hours REAL NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE inspections (
		id INTEGER PRIMARY KEY,
		project_id INTEGER NOT NULL,
		inspection_date DATE NOT NULL,
		week_number INTEGER NOT NULL,
		week_year INTEGER NOT NULL,
		nature TEXT NOT NULL DEFAULT '',
		type TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'open'
	)`,
	`CREATE TABLE sor_reports (
		id INTEGER PRIMARY KEY,
		project_id INTEGER NOT NULL,
		observation_date DATE NOT NULL,
		observation_time TEXT,
		corrective_action_date DATE,
		corrective_action_time TEXT,
		status TEXT NOT NULL DEFAULT 'open',
		category TEXT NOT NULL DEFAULT '',
		company TEXT NOT NULL DEFAULT '',
		deleted_at DATETIME
	)`,
	`CREATE TABLE work_permits (
		id INTEGER PRIMARY KEY,
		project_id INTEGER NOT NULL,
		permit_number TEXT NOT NULL,
		week_number INTEGER NOT NULL,
		year INTEGER NOT NULL,
		commence_date DATE NOT NULL,
		status TEXT NOT NULL DEFAULT 'active'
	)`,
	`CREATE TABLE regulatory_watch_submissions (
		id INTEGER PRIMARY KEY,
		project_id INTEGER NOT NULL,
		week_number INTEGER NOT NULL,
		week_year INTEGER NOT NULL,
		category TEXT NOT NULL DEFAULT 'sst',
		overall_score REAL,
		submitted_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE subcontractor_openings (
		id INTEGER PRIMARY KEY,
		project_id INTEGER NOT NULL,
		contractor_name TEXT NOT NULL,
		contract_start_date DATE,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		deleted_at DATETIME
	)`,
	`CREATE TABLE subcontractor_opening_documents (
		id INTEGER PRIMARY KEY,
		opening_id INTEGER NOT NULL,
		doc_key TEXT NOT NULL,
		file_path TEXT,
		expires_at DATE
	)`,
	`CREATE UNIQUE INDEX ux_subcontractor_opening_documents_key ON subcontractor_opening_documents (opening_id, doc_key)`,
}
