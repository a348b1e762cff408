package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	scopedomain "github.com/smallbiznis/hsekpi/internal/scope/domain"
)

// Query is the immutable input of every fetch.
type Query struct {
	Scope  scopedomain.ProjectScope
	Window Window
}

type Project struct {
	ID        snowflake.ID `gorm:"column:id" json:"id"`
	Code      string       `gorm:"column:code" json:"code"`
	Name      string       `gorm:"column:name" json:"name"`
	Pole      string       `gorm:"column:pole" json:"pole"`
	Status    string       `gorm:"column:status" json:"status"`
	StartDate *time.Time   `gorm:"column:start_date" json:"start_date,omitempty"`
}

type WeeklyReport struct {
	ID                    snowflake.ID `gorm:"column:id"`
	ProjectID             snowflake.ID `gorm:"column:project_id"`
	WeekNumber            int          `gorm:"column:week_number"`
	ReportYear            int          `gorm:"column:report_year"`
	Status                string       `gorm:"column:status"`
	Accidents             int64        `gorm:"column:accidents"`
	LostWorkdays          int64        `gorm:"column:lost_workdays"`
	HoursWorked           float64      `gorm:"column:hours_worked"`
	NearMisses            int64        `gorm:"column:near_misses"`
	TrainingsConducted    int64        `gorm:"column:trainings_conducted"`
	Inspections           int64        `gorm:"column:inspections"`
	HseComplianceRate     float64      `gorm:"column:hse_compliance_rate"`
	MedicalComplianceRate float64      `gorm:"column:medical_compliance_rate"`
	TfValue               float64      `gorm:"column:tf_value"`
	TgValue               float64      `gorm:"column:tg_value"`
}

// DailySnapshot keeps nullable metrics: a nil field was not reported that day.
type DailySnapshot struct {
	ID                     snowflake.ID `gorm:"column:id"`
	ProjectID              snowflake.ID `gorm:"column:project_id"`
	EntryDate              time.Time    `gorm:"column:entry_date"`
	WeekNumber             int          `gorm:"column:week_number"`
	WeekYear               int          `gorm:"column:week_year"`
	Accidents              *int64       `gorm:"column:accidents"`
	AccidentsFatal         *int64       `gorm:"column:accidents_fatal"`
	AccidentsSerious       *int64       `gorm:"column:accidents_serious"`
	AccidentsMinor         *int64       `gorm:"column:accidents_minor"`
	NearMisses             *int64       `gorm:"column:near_misses"`
	FirstAidCases          *int64       `gorm:"column:first_aid_cases"`
	LostWorkdays           *int64       `gorm:"column:lost_workdays"`
	HoursWorked            *float64     `gorm:"column:hours_worked"`
	Effectif               *int64       `gorm:"column:effectif"`
	TrainingsConducted     *int64       `gorm:"column:trainings_conducted"`
	TrainingHours          *float64     `gorm:"column:training_hours"`
	ToolboxTalks           *int64       `gorm:"column:toolbox_talks"`
	Inspections            *int64       `gorm:"column:inspections"`
	Inductions             *int64       `gorm:"column:inductions"`
	Deviations             *int64       `gorm:"column:deviations"`
	DisciplinaryActions    *int64       `gorm:"column:disciplinary_actions"`
	UnsafeActs             *int64       `gorm:"column:unsafe_acts"`
	UnsafeConditions       *int64       `gorm:"column:unsafe_conditions"`
	EmergencyDrills        *int64       `gorm:"column:emergency_drills"`
	WorkPermits            *int64       `gorm:"column:work_permits"`
	WaterConsumption       *float64     `gorm:"column:water_consumption"`
	ElectricityConsumption *float64     `gorm:"column:electricity_consumption"`
	HseComplianceRate      *float64     `gorm:"column:hse_compliance_rate"`
	MedicalComplianceRate  *float64     `gorm:"column:medical_compliance_rate"`
}

type EffectifEntry struct {
	ProjectID snowflake.ID `gorm:"column:project_id"`
	EntryDate time.Time    `gorm:"column:entry_date"`
	Effectif  int64        `gorm:"column:effectif"`
}

type Training struct {
	ProjectID     snowflake.ID `gorm:"column:project_id"`
	TrainingDate  time.Time    `gorm:"column:training_date"`
	WeekNumber    int          `gorm:"column:week_number"`
	WeekYear      int          `gorm:"column:week_year"`
	Participants  int64        `gorm:"column:participants"`
	DurationHours float64      `gorm:"column:duration_hours"`
}

type AwarenessSession struct {
	ProjectID    snowflake.ID `gorm:"column:project_id"`
	SessionDate  time.Time    `gorm:"column:session_date"`
	WeekNumber   int          `gorm:"column:week_number"`
	WeekYear     int          `gorm:"column:week_year"`
	Participants int64        `gorm:"column:participants"`
	SessionHours float64      `gorm:"column:session_hours"`
}

type Inspection struct {
	ProjectID      snowflake.ID `gorm:"column:project_id"`
	InspectionDate time.Time    `gorm:"column:inspection_date"`
	WeekNumber     int          `gorm:"column:week_number"`
	WeekYear       int          `gorm:"column:week_year"`
	Nature         string       `gorm:"column:nature"`
	Type           string       `gorm:"column:type"`
	Status         string       `gorm:"column:status"`
}

type SorReport struct {
	ProjectID            snowflake.ID `gorm:"column:project_id"`
	ObservationDate      time.Time    `gorm:"column:observation_date"`
	ObservationTime      *string      `gorm:"column:observation_time"`
	CorrectiveActionDate *time.Time   `gorm:"column:corrective_action_date"`
	CorrectiveActionTime *string      `gorm:"column:corrective_action_time"`
	Status               string       `gorm:"column:status"`
	Category             string       `gorm:"column:category"`
	Company              string       `gorm:"column:company"`
}

type WorkPermit struct {
	ProjectID    snowflake.ID `gorm:"column:project_id"`
	WeekNumber   int          `gorm:"column:week_number"`
	Year         int          `gorm:"column:year"`
	CommenceDate time.Time    `gorm:"column:commence_date"`
	Status       string       `gorm:"column:status"`
}

type RegulatoryWatch struct {
	ProjectID    snowflake.ID `gorm:"column:project_id"`
	WeekNumber   int          `gorm:"column:week_number"`
	WeekYear     int          `gorm:"column:week_year"`
	Category     string       `gorm:"column:category"`
	OverallScore *float64     `gorm:"column:overall_score"`
}

type SubcontractorOpening struct {
	ID                snowflake.ID `gorm:"column:id"`
	ProjectID         snowflake.ID `gorm:"column:project_id"`
	ContractorName    string       `gorm:"column:contractor_name"`
	ContractStartDate *time.Time   `gorm:"column:contract_start_date"`
}

type OpeningDocument struct {
	OpeningID snowflake.ID `gorm:"column:opening_id"`
	DocKey    string       `gorm:"column:doc_key"`
	FilePath  *string      `gorm:"column:file_path"`
	ExpiresAt *time.Time   `gorm:"column:expires_at"`
}

type MedicalAptitude struct {
	WorkerID   snowflake.ID `gorm:"column:worker_id"`
	ProjectID  snowflake.ID `gorm:"column:project_id"`
	Aptitude   string       `gorm:"column:aptitude"`
	ExamDate   time.Time    `gorm:"column:exam_date"`
	ExpiryDate *time.Time   `gorm:"column:expiry_date"`
}

// ActiveWorker is a worker counted in headcount and medical conformity.
type ActiveWorker struct {
	ID        snowflake.ID `gorm:"column:id"`
	ProjectID snowflake.ID `gorm:"column:project_id"`
}
