package collector

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/hsekpi/internal/kpisource/domain"
	scopedomain "github.com/smallbiznis/hsekpi/internal/scope/domain"
	"github.com/smallbiznis/hsekpi/internal/weekcalendar"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type Collector struct {
	db  *gorm.DB
	log *zap.Logger
}

func New(p Params) domain.Collector {
	return &Collector{
		db:  p.DB,
		log: p.Log.Named("kpisource.collector"),
	}
}

func (c *Collector) Projects(ctx context.Context, scope scopedomain.ProjectScope) ([]domain.Project, error) {
	if scope.IsEmpty() {
		return nil, nil
	}
	stmt := c.db.WithContext(ctx).
		Table("projects").
		Select("id, code, name, pole, status, start_date").
		Where("deleted_at IS NULL")
	stmt = withScope(stmt, "id", scope)

	var rows []domain.Project
	if err := stmt.Order("id ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Collector) WeeklyReports(ctx context.Context, q domain.Query) ([]domain.WeeklyReport, error) {
	var rows []domain.WeeklyReport
	err := c.fetch(ctx, q, fetchSpec{
		table: "weekly_kpi_reports",
		columns: `id, project_id, week_number, report_year, status, accidents, lost_workdays, hours_worked,
			near_misses, trainings_conducted, inspections, hse_compliance_rate, medical_compliance_rate,
			tf_value, tg_value`,
		weekColumn: "week_number",
		yearColumn: "report_year",
		order:      "project_id ASC, report_year ASC, week_number ASC, id ASC",
	}, &rows)
	return rows, err
}

func (c *Collector) DailySnapshots(ctx context.Context, q domain.Query) ([]domain.DailySnapshot, error) {
	var rows []domain.DailySnapshot
	err := c.fetch(ctx, q, fetchSpec{
		table:      "daily_kpi_snapshots",
		columns:    "*",
		weekColumn: "week_number",
		yearColumn: "week_year",
		order:      "project_id ASC, entry_date ASC",
	}, &rows)
	return rows, err
}

func (c *Collector) EffectifEntries(ctx context.Context, q domain.Query) ([]domain.EffectifEntry, error) {
	var rows []domain.EffectifEntry
	err := c.fetch(ctx, q, fetchSpec{
		table:      "daily_effectif_entries",
		columns:    "project_id, entry_date, effectif",
		dateColumn: "entry_date",
		order:      "project_id ASC, entry_date ASC",
	}, &rows)
	return rows, err
}

func (c *Collector) Trainings(ctx context.Context, q domain.Query) ([]domain.Training, error) {
	var rows []domain.Training
	err := c.fetch(ctx, q, fetchSpec{
		table:      "trainings",
		columns:    "project_id, training_date, week_number, week_year, participants, duration_hours",
		weekColumn: "week_number",
		yearColumn: "week_year",
		order:      "project_id ASC, training_date ASC",
	}, &rows)
	return rows, err
}

func (c *Collector) AwarenessSessions(ctx context.Context, q domain.Query) ([]domain.AwarenessSession, error) {
	var rows []domain.AwarenessSession
	err := c.fetch(ctx, q, fetchSpec{
		table:      "awareness_sessions",
		columns:    "project_id, session_date, week_number, week_year, participants, session_hours",
		weekColumn: "week_number",
		yearColumn: "week_year",
		order:      "project_id ASC, session_date ASC",
	}, &rows)
	return rows, err
}

func (c *Collector) Inspections(ctx context.Context, q domain.Query) ([]domain.Inspection, error) {
	var rows []domain.Inspection
	err := c.fetch(ctx, q, fetchSpec{
		table:      "inspections",
		columns:    "project_id, inspection_date, week_number, week_year, nature, type, status",
		weekColumn: "week_number",
		yearColumn: "week_year",
		order:      "project_id ASC, inspection_date ASC",
	}, &rows)
	return rows, err
}

func (c *Collector) SorReports(ctx context.Context, q domain.Query) ([]domain.SorReport, error) {
	var rows []domain.SorReport
	err := c.fetch(ctx, q, fetchSpec{
		table: "sor_reports",
		columns: `project_id, observation_date, observation_time, corrective_action_date,
			corrective_action_time, status, category, company`,
		dateColumn: "observation_date",
		softDelete: true,
		order:      "project_id ASC, observation_date ASC, id ASC",
	}, &rows)
	return rows, err
}

func (c *Collector) WorkPermits(ctx context.Context, q domain.Query) ([]domain.WorkPermit, error) {
	var rows []domain.WorkPermit
	err := c.fetch(ctx, q, fetchSpec{
		table:      "work_permits",
		columns:    "project_id, week_number, year, commence_date, status",
		weekColumn: "week_number",
		yearColumn: "year",
		order:      "project_id ASC, commence_date ASC",
	}, &rows)
	return rows, err
}

func (c *Collector) RegulatoryWatch(ctx context.Context, q domain.Query) ([]domain.RegulatoryWatch, error) {
	var rows []domain.RegulatoryWatch
	err := c.fetch(ctx, q, fetchSpec{
		table:      "regulatory_watch_submissions",
		columns:    "project_id, week_number, week_year, category, overall_score",
		weekColumn: "week_number",
		yearColumn: "week_year",
		order:      "project_id ASC, week_year ASC, week_number ASC",
	}, &rows)
	return rows, err
}

func (c *Collector) SubcontractorOpenings(ctx context.Context, q domain.Query) ([]domain.SubcontractorOpening, []domain.OpeningDocument, error) {
	if q.Scope.IsEmpty() {
		return nil, nil, nil
	}
	if err := q.Window.Validate(); err != nil {
		return nil, nil, err
	}
	_, until := q.Window.Bounds()

	stmt := c.db.WithContext(ctx).
		Table("subcontractor_openings").
		Select("id, project_id, contractor_name, contract_start_date").
		Where("deleted_at IS NULL").
		Where("created_at < ?", until)
	stmt = withScope(stmt, "project_id", q.Scope)

	var openings []domain.SubcontractorOpening
	if err := stmt.Order("project_id ASC, id ASC").Scan(&openings).Error; err != nil {
		return nil, nil, err
	}
	if len(openings) == 0 {
		return nil, nil, nil
	}

	ids := make([]snowflake.ID, 0, len(openings))
	for _, o := range openings {
		ids = append(ids, o.ID)
	}
	var docs []domain.OpeningDocument
	err := c.db.WithContext(ctx).
		Table("subcontractor_opening_documents").
		Select("opening_id, doc_key, file_path, expires_at").
		Where("opening_id IN ?", ids).
		Order("opening_id ASC, doc_key ASC").
		Scan(&docs).Error
	if err != nil {
		return nil, nil, err
	}
	return openings, docs, nil
}

func (c *Collector) ActiveWorkers(ctx context.Context, scope scopedomain.ProjectScope) ([]domain.ActiveWorker, error) {
	if scope.IsEmpty() {
		return nil, nil
	}
	stmt := c.db.WithContext(ctx).
		Table("workers").
		Select("id, project_id").
		Where("is_active = ?", true).
		Where("project_id IS NOT NULL")
	stmt = withScope(stmt, "project_id", scope)

	var rows []domain.ActiveWorker
	if err := stmt.Order("project_id ASC, id ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Collector) MedicalAptitudes(ctx context.Context, workerIDs []snowflake.ID) ([]domain.MedicalAptitude, error) {
	if len(workerIDs) == 0 {
		return nil, nil
	}
	var rows []domain.MedicalAptitude
	err := c.db.WithContext(ctx).Raw(
		`SELECT a.worker_id, w.project_id, a.aptitude, a.exam_date, a.expiry_date
		 FROM worker_medical_aptitudes a
		 JOIN workers w ON w.id = a.worker_id
		 WHERE a.worker_id IN ?
		 ORDER BY a.worker_id ASC, a.exam_date ASC`,
		workerIDs,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// fetchSpec describes how one table is windowed. Exactly one of dateColumn
// or weekColumn is set.
type fetchSpec struct {
	table      string
	columns    string
	dateColumn string
	weekColumn string
	yearColumn string
	softDelete bool
	order      string
}

func (c *Collector) fetch(ctx context.Context, q domain.Query, spec fetchSpec, dest any) error {
	if q.Scope.IsEmpty() {
		return nil
	}
	if err := q.Window.Validate(); err != nil {
		return err
	}

	stmt := c.db.WithContext(ctx).Table(spec.table).Select(spec.columns)
	if spec.softDelete {
		stmt = stmt.Where("deleted_at IS NULL")
	}
	stmt = withScope(stmt, "project_id", q.Scope)

	if spec.dateColumn != "" {
		from, until := q.Window.Bounds()
		stmt = stmt.Where(spec.dateColumn+" >= ? AND "+spec.dateColumn+" < ?", from, until)
	} else {
		clause, args := weekClause(spec.weekColumn, spec.yearColumn, q.Window.WeekKeys())
		if clause == "" {
			return nil
		}
		stmt = stmt.Where(clause, args...)
	}

	if err := stmt.Order(spec.order).Scan(dest).Error; err != nil {
		c.log.Warn("fetch failed", zap.String("table", spec.table), zap.Error(err))
		return fmt.Errorf("%s: %w", spec.table, err)
	}
	return nil
}

func withScope(stmt *gorm.DB, column string, scope scopedomain.ProjectScope) *gorm.DB {
	if scope.IsUnrestricted() {
		return stmt
	}
	return stmt.Where(column+" IN ?", scope.IDs())
}

// weekClause matches stored week columns against keys, grouped per week-year.
func weekClause(weekColumn, yearColumn string, keys []weekcalendar.Key) (string, []any) {
	if len(keys) == 0 {
		return "", nil
	}
	byYear := make(map[int][]int)
	for _, key := range keys {
		byYear[key.Year] = append(byYear[key.Year], key.Week)
	}
	years := make([]int, 0, len(byYear))
	for year := range byYear {
		years = append(years, year)
	}
	sort.Ints(years)

	parts := make([]string, 0, len(years))
	args := make([]any, 0, len(years)*2)
	for _, year := range years {
		parts = append(parts, fmt.Sprintf("(%s = ? AND %s IN ?)", yearColumn, weekColumn))
		args = append(args, year, byYear[year])
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}
