package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/hsekpi/internal/safetyrate"
	"github.com/smallbiznis/hsekpi/internal/submission"
	"github.com/smallbiznis/hsekpi/internal/weekcalendar"
)

type Filters struct {
	Pole      string
	ProjectID *snowflake.ID
	// Year defaults to the current week-year.
	Year int
	// Week narrows stats, kpi_summary and project_performance to one week.
	Week *int
}

type Summary struct {
	Year               int                                              `json:"year"`
	Week               *int                                             `json:"week,omitempty"`
	Stats              Stats                                            `json:"stats"`
	KPISummary         KPISummary                                       `json:"kpi_summary"`
	WeeklyTrends       []WeeklyTrend                                    `json:"weekly_trends"`
	ProjectPerformance []ProjectPerformance                             `json:"project_performance"`
	WeeklyStatus       [weekcalendar.WeeksPerYear]submission.WeekStatus `json:"weekly_status"`
	GeneratedAt        time.Time                                        `json:"generated_at"`
}

type Stats struct {
	TotalProjects    int     `json:"total_projects"`
	ActiveProjects   int     `json:"active_projects"`
	TotalReports     int64   `json:"total_reports"`
	DraftReports     int64   `json:"draft_reports"`
	SubmittedReports int64   `json:"submitted_reports"`
	ApprovedReports  int64   `json:"approved_reports"`
	Trainings        int64   `json:"trainings"`
	TrainingHours    float64 `json:"training_hours"`
	Inspections      int64   `json:"inspections"`
	SorTotal         int64   `json:"sor_total"`
	SorOpen          int64   `json:"sor_open"`
	SorClosed        int64   `json:"sor_closed"`
}

type KPISummary struct {
	Accidents             int64   `json:"accidents"`
	LostWorkdays          int64   `json:"lost_workdays"`
	NearMisses            int64   `json:"near_misses"`
	HoursWorked           float64 `json:"hours_worked"`
	TotalHours            float64 `json:"total_hours"`
	TF                    float64 `json:"tf"`
	TG                    float64 `json:"tg"`
	HseComplianceRate     float64 `json:"hse_compliance_rate"`
	MedicalComplianceRate float64 `json:"medical_compliance_rate"`
}

type WeeklyTrend struct {
	Week         int     `json:"week"`
	Label        string  `json:"label"`
	Reports      int64   `json:"reports"`
	Accidents    int64   `json:"accidents"`
	LostWorkdays int64   `json:"lost_workdays"`
	NearMisses   int64   `json:"near_misses"`
	HoursWorked  float64 `json:"hours_worked"`
	TF           float64 `json:"tf"`
	TG           float64 `json:"tg"`
}

type ProjectPerformance struct {
	ProjectID    snowflake.ID `json:"project_id"`
	Code         string       `json:"code"`
	Name         string       `json:"name"`
	Pole         string       `json:"pole"`
	Reports      int64        `json:"reports"`
	Accidents    int64        `json:"accidents"`
	LostWorkdays int64        `json:"lost_workdays"`
	HoursWorked  float64      `json:"hours_worked"`
	TF           float64      `json:"tf"`
	TG           float64      `json:"tg"`

	// ApprovedTF and ApprovedTG are simple means of approved reports.
	ApprovedReports int64   `json:"approved_reports"`
	ApprovedTF      float64 `json:"approved_avg_tf"`
	ApprovedTG      float64 `json:"approved_avg_tg"`
}

// ReportTotals are SQL sums over weekly reports. Rows of GROUP BY queries
// carry the grouping key in ProjectID or Week.
type ReportTotals struct {
	ProjectID         snowflake.ID `gorm:"column:project_id"`
	Week              int          `gorm:"column:week_number"`
	Reports           int64        `gorm:"column:reports"`
	Draft             int64        `gorm:"column:draft"`
	Submitted         int64        `gorm:"column:submitted"`
	Approved          int64        `gorm:"column:approved"`
	Accidents         int64        `gorm:"column:accidents"`
	LostWorkdays      int64        `gorm:"column:lost_workdays"`
	NearMisses        int64        `gorm:"column:near_misses"`
	HoursWorked       float64      `gorm:"column:hours_worked"`
	HseCompliance     float64      `gorm:"column:hse_compliance"`
	MedicalCompliance float64      `gorm:"column:medical_compliance"`
	ApprovedTF        float64      `gorm:"column:approved_tf"`
	ApprovedTG        float64      `gorm:"column:approved_tg"`
}

func (t ReportTotals) Sums() safetyrate.Sums {
	return safetyrate.Sums{
		Accidents:    t.Accidents,
		LostWorkdays: t.LostWorkdays,
		HoursWorked:  t.HoursWorked,
	}
}

type ActivityTotals struct {
	Trainings     int64   `gorm:"column:trainings"`
	TrainingHours float64 `gorm:"column:training_hours"`
	Inspections   int64   `gorm:"column:inspections"`
	SorTotal      int64   `gorm:"column:sor_total"`
	SorOpen       int64   `gorm:"column:sor_open"`
	SorClosed     int64   `gorm:"column:sor_closed"`
}
