package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/hsekpi/internal/kpireport/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// upsertColumns are overwritten when the (project, week, year) row exists.
// Status, approval fields and creation time belong to the state machine.
var upsertColumns = []string{
	"submitted_by", "start_date", "end_date",
	"accidents", "accidents_fatal", "accidents_serious", "accidents_minor",
	"near_misses", "first_aid_cases", "lost_workdays", "hours_worked", "effectif",
	"trainings_conducted", "trainings_planned", "employees_trained", "training_hours",
	"toolbox_talks", "inspections", "inductions", "deviations", "disciplinary_actions",
	"unsafe_acts", "unsafe_conditions", "emergency_drills", "work_permits",
	"water_consumption", "electricity_consumption",
	"hse_compliance_rate", "medical_compliance_rate",
	"tf_value", "tg_value", "notes", "warnings", "updated_at",
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, report *domain.Report, keepApproved bool) (*domain.Report, error) {
	onConflict := clause.OnConflict{
		Columns: []clause.Column{
			{Name: "project_id"},
			{Name: "week_number"},
			{Name: "report_year"},
		},
		DoUpdates: clause.AssignmentColumns(upsertColumns),
	}
	if keepApproved {
		// evaluated against the row as it is at write time, so an approval
		// landing after the caller's read still wins
		onConflict.Where = clause.Where{Exprs: []clause.Expression{
			clause.Neq{Column: clause.Column{Table: "weekly_kpi_reports", Name: "status"}, Value: string(domain.StatusApproved)},
		}}
	}

	res := db.WithContext(ctx).Clauses(onConflict).Create(report)
	if res.Error != nil {
		return nil, res.Error
	}
	if keepApproved && res.RowsAffected == 0 {
		return nil, domain.ErrReportLocked
	}
	return r.FindByKey(ctx, db, report.ProjectID, report.WeekNumber, report.ReportYear)
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Report, error) {
	var rows []domain.Report
	if err := db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *repo) FindByKey(ctx context.Context, db *gorm.DB, projectID snowflake.ID, week, year int) (*domain.Report, error) {
	var rows []domain.Report
	err := db.WithContext(ctx).
		Where("project_id = ? AND week_number = ? AND report_year = ?", projectID, week, year).
		Order("id DESC").
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *repo) Transition(
	ctx context.Context,
	db *gorm.DB,
	id snowflake.ID,
	from []domain.Status,
	next domain.Status,
	fields map[string]any,
	now time.Time,
) (bool, error) {
	updates := map[string]any{
		"status":     next,
		"updated_at": now,
	}
	for key, value := range fields {
		updates[key] = value
	}

	result := db.WithContext(ctx).
		Model(&domain.Report{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) ApprovedAverages(ctx context.Context, db *gorm.DB, projectID snowflake.ID, year int) (*domain.Averages, error) {
	var row struct {
		Reports int64   `gorm:"column:reports"`
		TF      float64 `gorm:"column:tf"`
		TG      float64 `gorm:"column:tg"`
	}
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) AS reports,
			COALESCE(AVG(tf_value), 0) AS tf,
			COALESCE(AVG(tg_value), 0) AS tg
		 FROM weekly_kpi_reports
		 WHERE project_id = ? AND report_year = ? AND status = ?`,
		projectID,
		year,
		domain.StatusApproved,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &domain.Averages{
		ProjectID: projectID,
		Year:      year,
		Reports:   row.Reports,
		TF:        row.TF,
		TG:        row.TG,
	}, nil
}
