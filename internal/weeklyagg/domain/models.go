package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var ErrInvalidProject = errors.New("invalid_project")

// Warnings raised when a source cannot be read. The aggregate is still
// returned, built from the sources that answered.
const (
	WarningSnapshotsUnavailable     = "daily_snapshots_unavailable"
	WarningEffectifUnavailable      = "effectif_entries_unavailable"
	WarningActiveWorkersUnavailable = "active_workers_unavailable"
)

// WeeklyAggregate is the fold of a week of daily snapshots. Every field is
// zero when nothing contributed to it.
type WeeklyAggregate struct {
	Accidents           int64 `json:"accidents"`
	AccidentsFatal      int64 `json:"accidents_fatal"`
	AccidentsSerious    int64 `json:"accidents_serious"`
	AccidentsMinor      int64 `json:"accidents_minor"`
	NearMisses          int64 `json:"near_misses"`
	FirstAidCases       int64 `json:"first_aid_cases"`
	LostWorkdays        int64 `json:"lost_workdays"`
	TrainingsConducted  int64 `json:"trainings_conducted"`
	ToolboxTalks        int64 `json:"toolbox_talks"`
	WorkPermits         int64 `json:"work_permits"`
	Inspections         int64 `json:"inspections"`
	Inductions          int64 `json:"inductions"`
	Deviations          int64 `json:"deviations"`
	DisciplinaryActions int64 `json:"disciplinary_actions"`
	UnsafeActs          int64 `json:"unsafe_acts"`
	UnsafeConditions    int64 `json:"unsafe_conditions"`
	EmergencyDrills     int64 `json:"emergency_drills"`

	HoursWorked            float64 `json:"hours_worked"`
	TrainingHours          float64 `json:"training_hours"`
	WaterConsumption       float64 `json:"water_consumption"`
	ElectricityConsumption float64 `json:"electricity_consumption"`

	// Compliance rates average the days that reported a value. With no
	// reporting day the rate is 0 and the sample count tells it apart from a
	// real 0%.
	HseComplianceRate        float64 `json:"hse_compliance_rate"`
	HseComplianceSamples     int     `json:"hse_compliance_samples"`
	MedicalComplianceRate    float64 `json:"medical_compliance_rate"`
	MedicalComplianceSamples int     `json:"medical_compliance_samples"`

	Effectif int64 `json:"effectif"`
	// EffectifSource is the last fallback level used: snapshot, entry,
	// active_workers or none.
	EffectifSource string `json:"effectif_source"`

	SnapshotDays int `json:"snapshot_days"`
}

type Result struct {
	ProjectID snowflake.ID    `json:"project_id"`
	Week      int             `json:"week"`
	Year      int             `json:"year"`
	StartDate time.Time       `json:"start_date"`
	EndDate   time.Time       `json:"end_date"`
	Aggregate WeeklyAggregate `json:"aggregate"`
	Warnings  []string        `json:"warnings"`
}

type Service interface {
	AggregateForWeek(ctx context.Context, projectID snowflake.ID, week, year int) (*Result, error)
}
