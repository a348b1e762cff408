package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/samber/lo"
	"github.com/smallbiznis/hsekpi/internal/authorization"
	"github.com/smallbiznis/hsekpi/internal/clock"
	"github.com/smallbiznis/hsekpi/internal/dashboard/domain"
	kpidomain "github.com/smallbiznis/hsekpi/internal/kpisource/domain"
	"github.com/smallbiznis/hsekpi/internal/observability/logger"
	"github.com/smallbiznis/hsekpi/internal/observability/tracing"
	"github.com/smallbiznis/hsekpi/internal/safetyrate"
	scopedomain "github.com/smallbiznis/hsekpi/internal/scope/domain"
	"github.com/smallbiznis/hsekpi/internal/submission"
	"github.com/smallbiznis/hsekpi/internal/weekcalendar"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Clock      clock.Clock
	Repo       domain.Repository
	Scope      scopedomain.Service
	Authz      authorization.Service
	Collector  kpidomain.Collector
	Submission submission.Builder
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	clock      clock.Clock
	repo       domain.Repository
	scope      scopedomain.Service
	authz      authorization.Service
	collector  kpidomain.Collector
	submission submission.Builder
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("dashboard.service"),
		clock:      p.Clock,
		repo:       p.Repo,
		scope:      p.Scope,
		authz:      p.Authz,
		collector:  p.Collector,
		submission: p.Submission,
	}
}

func (s *Service) GetDashboardSummary(ctx context.Context, principal scopedomain.Principal, filters domain.Filters) (*domain.Summary, error) {
	now := s.clock.Now()
	year := filters.Year
	if year == 0 {
		_, year = weekcalendar.WeekFromDate(now)
	}
	if !weekcalendar.ValidYear(year) {
		return nil, domain.ErrInvalidYear
	}
	if filters.Week != nil && !weekcalendar.ValidWeek(*filters.Week) {
		return nil, weekcalendar.ErrInvalidWeek
	}
	if err := s.authz.Authorize(ctx, principal, authorization.ObjectDashboard, authorization.ActionView); err != nil {
		return nil, err
	}

	ctx, span := tracing.StartSpan(ctx, "dashboard.GetDashboardSummary", attribute.Int("year", year))
	defer span.End()

	scope, err := s.scope.VisibleProjectIDs(ctx, principal, scopedomain.Filters{
		Pole:      strings.TrimSpace(filters.Pole),
		ProjectID: filters.ProjectID,
	})
	if err != nil {
		return nil, err
	}

	projects, err := s.collector.Projects(ctx, scope)
	if err != nil {
		return nil, err
	}
	period := domain.Period{Year: year, Week: filters.Week}

	totals, err := s.repo.ReportTotals(ctx, s.db, scope, period)
	if err != nil {
		return nil, err
	}
	activity, err := s.repo.ActivityTotals(ctx, s.db, scope, period)
	if err != nil {
		return nil, err
	}
	byWeek, err := s.repo.ReportTotalsByWeek(ctx, s.db, scope, year)
	if err != nil {
		return nil, err
	}
	byProject, err := s.repo.ReportTotalsByProject(ctx, s.db, scope, period)
	if err != nil {
		return nil, err
	}
	weeklyStatus, err := s.submission.BuildStatus(ctx, projects, year)
	if err != nil {
		return nil, err
	}

	summary := &domain.Summary{
		Year:               year,
		Week:               filters.Week,
		Stats:              buildStats(projects, totals, activity),
		KPISummary:         buildKPISummary(totals),
		WeeklyTrends:       buildTrends(year, byWeek),
		ProjectPerformance: buildPerformance(projects, byProject),
		WeeklyStatus:       weeklyStatus,
		GeneratedAt:        now,
	}

	logger.WithContext(ctx, s.log).Debug("dashboard summary built",
		zap.Int("year", year),
		zap.String("scope", scope.Fingerprint()),
		zap.Int("projects", len(projects)),
	)
	return summary, nil
}

func buildStats(projects []kpidomain.Project, totals *domain.ReportTotals, activity *domain.ActivityTotals) domain.Stats {
	active := lo.CountBy(projects, func(p kpidomain.Project) bool {
		return strings.EqualFold(strings.TrimSpace(p.Status), "active")
	})
	return domain.Stats{
		TotalProjects:    len(projects),
		ActiveProjects:   active,
		TotalReports:     totals.Reports,
		DraftReports:     totals.Draft,
		SubmittedReports: totals.Submitted,
		ApprovedReports:  totals.Approved,
		Trainings:        activity.Trainings,
		TrainingHours:    safetyrate.Round(activity.TrainingHours, safetyrate.PercentPlaces),
		Inspections:      activity.Inspections,
		SorTotal:         activity.SorTotal,
		SorOpen:          activity.SorOpen,
		SorClosed:        activity.SorClosed,
	}
}

func buildKPISummary(totals *domain.ReportTotals) domain.KPISummary {
	rates := safetyrate.ComputeRates(totals.Sums())
	return domain.KPISummary{
		Accidents:             totals.Accidents,
		LostWorkdays:          totals.LostWorkdays,
		NearMisses:            totals.NearMisses,
		HoursWorked:           totals.HoursWorked,
		TotalHours:            safetyrate.TotalHours(totals.HoursWorked),
		TF:                    rates.TF,
		TG:                    rates.TG,
		HseComplianceRate:     safetyrate.Round(totals.HseCompliance, safetyrate.PercentPlaces),
		MedicalComplianceRate: safetyrate.Round(totals.MedicalCompliance, safetyrate.PercentPlaces),
	}
}

// buildTrends always returns the 52 weeks of year, zero-filled.
func buildTrends(year int, byWeek []domain.ReportTotals) []domain.WeeklyTrend {
	indexed := lo.KeyBy(byWeek, func(t domain.ReportTotals) int { return t.Week })

	trends := make([]domain.WeeklyTrend, 0, weekcalendar.WeeksPerYear)
	for _, week := range weekcalendar.AllWeeksForYear(year) {
		t := indexed[week.Number]
		rates := safetyrate.ComputeRates(t.Sums())
		trends = append(trends, domain.WeeklyTrend{
			Week:         week.Number,
			Label:        week.Label,
			Reports:      t.Reports,
			Accidents:    t.Accidents,
			LostWorkdays: t.LostWorkdays,
			NearMisses:   t.NearMisses,
			HoursWorked:  t.HoursWorked,
			TF:           rates.TF,
			TG:           rates.TG,
		})
	}
	return trends
}

// buildPerformance lists every visible project, including projects without
// reports.
func buildPerformance(projects []kpidomain.Project, byProject []domain.ReportTotals) []domain.ProjectPerformance {
	indexed := lo.KeyBy(byProject, func(t domain.ReportTotals) snowflake.ID { return t.ProjectID })

	out := make([]domain.ProjectPerformance, 0, len(projects))
	for _, p := range projects {
		t := indexed[p.ID]
		rates := safetyrate.ComputeRates(t.Sums())
		out = append(out, domain.ProjectPerformance{
			ProjectID:       p.ID,
			Code:            p.Code,
			Name:            p.Name,
			Pole:            p.Pole,
			Reports:         t.Reports,
			Accidents:       t.Accidents,
			LostWorkdays:    t.LostWorkdays,
			HoursWorked:     t.HoursWorked,
			TF:              rates.TF,
			TG:              rates.TG,
			ApprovedReports: t.Approved,
			ApprovedTF:      safetyrate.Round(t.ApprovedTF, safetyrate.RatePlaces),
			ApprovedTG:      safetyrate.Round(t.ApprovedTG, safetyrate.RatePlaces),
		})
	}
	return out
}
