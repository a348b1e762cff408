package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
)

func ParseStatus(raw string) (Status, error) {
	switch status := Status(strings.ToLower(strings.TrimSpace(raw))); status {
	case StatusDraft, StatusSubmitted, StatusApproved:
		return status, nil
	default:
		return "", ErrInvalidStatus
	}
}

// Figures are the reported values of a week. HoursWorked is stored in tens
// of hours.
type Figures struct {
	Accidents              int64   `gorm:"column:accidents" json:"accidents"`
	AccidentsFatal         int64   `gorm:"column:accidents_fatal" json:"accidents_fatal"`
	AccidentsSerious       int64   `gorm:"column:accidents_serious" json:"accidents_serious"`
	AccidentsMinor         int64   `gorm:"column:accidents_minor" json:"accidents_minor"`
	NearMisses             int64   `gorm:"column:near_misses" json:"near_misses"`
	FirstAidCases          int64   `gorm:"column:first_aid_cases" json:"first_aid_cases"`
	LostWorkdays           int64   `gorm:"column:lost_workdays" json:"lost_workdays"`
	HoursWorked            float64 `gorm:"column:hours_worked" json:"hours_worked"`
	Effectif               int64   `gorm:"column:effectif" json:"effectif"`
	TrainingsConducted     int64   `gorm:"column:trainings_conducted" json:"trainings_conducted"`
	TrainingsPlanned       int64   `gorm:"column:trainings_planned" json:"trainings_planned"`
	EmployeesTrained       int64   `gorm:"column:employees_trained" json:"employees_trained"`
	TrainingHours          float64 `gorm:"column:training_hours" json:"training_hours"`
	ToolboxTalks           int64   `gorm:"column:toolbox_talks" json:"toolbox_talks"`
	Inspections            int64   `gorm:"column:inspections" json:"inspections"`
	Inductions             int64   `gorm:"column:inductions" json:"inductions"`
	Deviations             int64   `gorm:"column:deviations" json:"deviations"`
	DisciplinaryActions    int64   `gorm:"column:disciplinary_actions" json:"disciplinary_actions"`
	UnsafeActs             int64   `gorm:"column:unsafe_acts" json:"unsafe_acts"`
	UnsafeConditions       int64   `gorm:"column:unsafe_conditions" json:"unsafe_conditions"`
	EmergencyDrills        int64   `gorm:"column:emergency_drills" json:"emergency_drills"`
	WorkPermits            int64   `gorm:"column:work_permits" json:"work_permits"`
	WaterConsumption       float64 `gorm:"column:water_consumption" json:"water_consumption"`
	ElectricityConsumption float64 `gorm:"column:electricity_consumption" json:"electricity_consumption"`
	HseComplianceRate      float64 `gorm:"column:hse_compliance_rate" json:"hse_compliance_rate"`
	MedicalComplianceRate  float64 `gorm:"column:medical_compliance_rate" json:"medical_compliance_rate"`
}

type Report struct {
	ID              snowflake.ID   `gorm:"primaryKey" json:"id"`
	ProjectID       snowflake.ID   `gorm:"column:project_id;not null" json:"project_id"`
	SubmittedBy     snowflake.ID   `gorm:"column:submitted_by;not null" json:"submitted_by"`
	WeekNumber      int            `gorm:"column:week_number;not null" json:"week_number"`
	ReportYear      int            `gorm:"column:report_year;not null" json:"report_year"`
	StartDate       time.Time      `gorm:"column:start_date;type:date" json:"start_date"`
	EndDate         time.Time      `gorm:"column:end_date;type:date" json:"end_date"`
	Status          Status         `gorm:"column:status;not null" json:"status"`
	RejectionReason *string        `gorm:"column:rejection_reason" json:"rejection_reason,omitempty"`
	ApprovedBy      *snowflake.ID  `gorm:"column:approved_by" json:"approved_by,omitempty"`
	ApprovedAt      *time.Time     `gorm:"column:approved_at" json:"approved_at,omitempty"`
	SubmittedAt     *time.Time     `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	Figures         Figures        `gorm:"embedded" json:"figures"`
	TfValue         float64        `gorm:"column:tf_value" json:"tf_value"`
	TgValue         float64        `gorm:"column:tg_value" json:"tg_value"`
	Notes           *string        `gorm:"column:notes" json:"notes,omitempty"`
	Warnings        datatypes.JSON `gorm:"column:warnings;type:jsonb;not null;default:'[]'" json:"warnings"`
	CreatedAt       time.Time      `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"column:updated_at" json:"updated_at"`
}

func (Report) TableName() string { return "weekly_kpi_reports" }

type UpsertRequest struct {
	ProjectID snowflake.ID `json:"project_id"`
	Week      int          `json:"week"`
	Year      int          `json:"year"`
	Figures   Figures      `json:"figures"`
	Notes     string       `json:"notes"`
	// AutoFill fills zero figures from the weekly aggregate of daily data.
	AutoFill bool `json:"auto_fill"`
}

type RejectRequest struct {
	ReportID snowflake.ID
	Reason   string
}

// Averages is the simple mean of per-report rates. It is a display value and
// must not be used as a weighted rate.
type Averages struct {
	ProjectID snowflake.ID `json:"project_id"`
	Year      int          `json:"year"`
	Reports   int64        `json:"reports"`
	TF        float64      `json:"avg_tf"`
	TG        float64      `json:"avg_tg"`
}
