package repository

import (
	"context"
	"time"

	"github.com/smallbiznis/hsekpi/internal/dashboard/domain"
	scopedomain "github.com/smallbiznis/hsekpi/internal/scope/domain"
	"github.com/smallbiznis/hsekpi/internal/weekcalendar"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const reportTotalsColumns = `COUNT(*) AS reports,
	COALESCE(SUM(CASE WHEN status = 'draft' THEN 1 ELSE 0 END), 0) AS draft,
	COALESCE(SUM(CASE WHEN status = 'submitted' THEN 1 ELSE 0 END), 0) AS submitted,
	COALESCE(SUM(CASE WHEN status = 'approved' THEN 1 ELSE 0 END), 0) AS approved,
	COALESCE(SUM(accidents), 0) AS accidents,
	COALESCE(SUM(lost_workdays), 0) AS lost_workdays,
	COALESCE(SUM(near_misses), 0) AS near_misses,
	COALESCE(SUM(hours_worked), 0) AS hours_worked,
	COALESCE(AVG(hse_compliance_rate), 0) AS hse_compliance,
	COALESCE(AVG(medical_compliance_rate), 0) AS medical_compliance,
	COALESCE(AVG(CASE WHEN status = 'approved' THEN tf_value END), 0) AS approved_tf,
	COALESCE(AVG(CASE WHEN status = 'approved' THEN tg_value END), 0) AS approved_tg`

func (r *repo) ReportTotals(ctx context.Context, db *gorm.DB, scope scopedomain.ProjectScope, period domain.Period) (*domain.ReportTotals, error) {
	if scope.IsEmpty() {
		return &domain.ReportTotals{}, nil
	}
	var row domain.ReportTotals
	err := reports(ctx, db, scope, period).
		Select(reportTotalsColumns).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repo) ReportTotalsByWeek(ctx context.Context, db *gorm.DB, scope scopedomain.ProjectScope, year int) ([]domain.ReportTotals, error) {
	if scope.IsEmpty() {
		return nil, nil
	}
	var rows []domain.ReportTotals
	err := reports(ctx, db, scope, domain.Period{Year: year}).
		Select("week_number, " + reportTotalsColumns).
		Group("week_number").
		Order("week_number ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) ReportTotalsByProject(ctx context.Context, db *gorm.DB, scope scopedomain.ProjectScope, period domain.Period) ([]domain.ReportTotals, error) {
	if scope.IsEmpty() {
		return nil, nil
	}
	var rows []domain.ReportTotals
	err := reports(ctx, db, scope, period).
		Select("project_id, " + reportTotalsColumns).
		Group("project_id").
		Order("project_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) ActivityTotals(ctx context.Context, db *gorm.DB, scope scopedomain.ProjectScope, period domain.Period) (*domain.ActivityTotals, error) {
	out := &domain.ActivityTotals{}
	if scope.IsEmpty() {
		return out, nil
	}

	var trainings struct {
		Count int64   `gorm:"column:trainings"`
		Hours float64 `gorm:"column:training_hours"`
	}
	err := weekly(ctx, db, "trainings", scope, period).
		Select("COUNT(*) AS trainings, COALESCE(SUM(duration_hours), 0) AS training_hours").
		Scan(&trainings).Error
	if err != nil {
		return nil, err
	}
	out.Trainings = trainings.Count
	out.TrainingHours = trainings.Hours

	if err := weekly(ctx, db, "inspections", scope, period).Count(&out.Inspections).Error; err != nil {
		return nil, err
	}

	from, until := periodBounds(period)
	var sor struct {
		Total  int64 `gorm:"column:sor_total"`
		Open   int64 `gorm:"column:sor_open"`
		Closed int64 `gorm:"column:sor_closed"`
	}
	err = withScope(db.WithContext(ctx).Table("sor_reports"), scope).
		Where("deleted_at IS NULL").
		Where("observation_date >= ? AND observation_date < ?", from, until).
		Select(`COUNT(*) AS sor_total,
			COALESCE(SUM(CASE WHEN LOWER(status) IN ('open', 'in_progress') THEN 1 ELSE 0 END), 0) AS sor_open,
			COALESCE(SUM(CASE WHEN LOWER(status) = 'closed' THEN 1 ELSE 0 END), 0) AS sor_closed`).
		Scan(&sor).Error
	if err != nil {
		return nil, err
	}
	out.SorTotal = sor.Total
	out.SorOpen = sor.Open
	out.SorClosed = sor.Closed
	return out, nil
}

func reports(ctx context.Context, db *gorm.DB, scope scopedomain.ProjectScope, period domain.Period) *gorm.DB {
	stmt := db.WithContext(ctx).Table("weekly_kpi_reports").Where("report_year = ?", period.Year)
	if period.Week != nil {
		stmt = stmt.Where("week_number = ?", *period.Week)
	}
	return withScope(stmt, scope)
}

func weekly(ctx context.Context, db *gorm.DB, table string, scope scopedomain.ProjectScope, period domain.Period) *gorm.DB {
	stmt := db.WithContext(ctx).Table(table).Where("week_year = ?", period.Year)
	if period.Week != nil {
		stmt = stmt.Where("week_number = ?", *period.Week)
	}
	return withScope(stmt, scope)
}

func withScope(stmt *gorm.DB, scope scopedomain.ProjectScope) *gorm.DB {
	if scope.IsUnrestricted() {
		return stmt
	}
	return stmt.Where("project_id IN ?", scope.IDs())
}

// periodBounds returns the half-open day range of a period.
func periodBounds(period domain.Period) (time.Time, time.Time) {
	if period.Week != nil {
		start, end := weekcalendar.WeekSpan(*period.Week, period.Year)
		return start, end.AddDate(0, 0, 1)
	}
	return weekcalendar.WeekStart(period.Year), weekcalendar.YearEnd(period.Year).AddDate(0, 0, 1)
}
