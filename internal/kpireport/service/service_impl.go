package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/hsekpi/internal/authorization"
	"github.com/smallbiznis/hsekpi/internal/clock"
	"github.com/smallbiznis/hsekpi/internal/kpireport/domain"
	"github.com/smallbiznis/hsekpi/internal/observability/logger"
	"github.com/smallbiznis/hsekpi/internal/observability/metrics"
	"github.com/smallbiznis/hsekpi/internal/safetyrate"
	scopedomain "github.com/smallbiznis/hsekpi/internal/scope/domain"
	"github.com/smallbiznis/hsekpi/internal/weekcalendar"
	weeklyaggdomain "github.com/smallbiznis/hsekpi/internal/weeklyagg/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const WarningAggregateUnavailable = "weekly_aggregate_unavailable"

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       domain.Repository
	Scope      scopedomain.Service
	Authz      authorization.Service
	Aggregates weeklyaggdomain.Service
	Metrics    *metrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	scope      scopedomain.Service
	authz      authorization.Service
	aggregates weeklyaggdomain.Service
	metrics    *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("kpireport.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		scope:      p.Scope,
		authz:      p.Authz,
		aggregates: p.Aggregates,
		metrics:    p.Metrics,
	}
}

func (s *Service) Upsert(ctx context.Context, principal scopedomain.Principal, req domain.UpsertRequest) (*domain.Report, error) {
	if req.ProjectID == 0 {
		return nil, domain.ErrInvalidProject
	}
	if !weekcalendar.ValidWeek(req.Week) {
		return nil, weekcalendar.ErrInvalidWeek
	}
	if !weekcalendar.ValidYear(req.Year) {
		return nil, weekcalendar.ErrInvalidYear
	}
	if err := req.Figures.Validate(); err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, principal, authorization.ObjectKPIReport, authorization.ActionSubmit); err != nil {
		return nil, err
	}
	if err := s.ensureVisible(ctx, principal, req.ProjectID); err != nil {
		return nil, err
	}

	log := logger.WithWeek(logger.WithProject(logger.WithContext(ctx, s.log), req.ProjectID.Int64()), req.Week, req.Year)

	keepApproved := false
	if err := s.authz.Authorize(ctx, principal, authorization.ObjectKPIReport, authorization.ActionEditApproved); err != nil {
		if !errors.Is(err, authorization.ErrForbidden) {
			return nil, err
		}
		keepApproved = true
	}

	existing, err := s.repo.FindByKey(ctx, s.db, req.ProjectID, req.Week, req.Year)
	if err != nil {
		return nil, err
	}
	if keepApproved && existing != nil && existing.Status == domain.StatusApproved {
		return nil, domain.ErrReportLocked
	}

	figures := req.Figures
	warnings := []string{}
	if req.AutoFill {
		agg, err := s.aggregates.AggregateForWeek(ctx, req.ProjectID, req.Week, req.Year)
		if err != nil {
			log.Warn("auto-fill skipped", zap.Error(err))
			warnings = append(warnings, WarningAggregateUnavailable)
		} else {
			figures = figures.FillFrom(agg.Aggregate)
			warnings = append(warnings, agg.Warnings...)
		}
	}

	rawWarnings, err := json.Marshal(warnings)
	if err != nil {
		return nil, err
	}

	rates := safetyrate.ComputeRates(safetyrate.Sums{
		Accidents:    figures.Accidents,
		LostWorkdays: figures.LostWorkdays,
		HoursWorked:  figures.HoursWorked,
	})
	start, end := weekcalendar.WeekDates(req.Week, req.Year)
	now := s.clock.Now()

	report := &domain.Report{
		ID:          s.genID.Generate(),
		ProjectID:   req.ProjectID,
		SubmittedBy: principal.UserID,
		WeekNumber:  req.Week,
		ReportYear:  req.Year,
		StartDate:   start,
		EndDate:     end,
		Status:      domain.StatusDraft,
		Figures:     figures,
		TfValue:     rates.TF,
		TgValue:     rates.TG,
		Notes:       optionalString(req.Notes),
		Warnings:    datatypes.JSON(rawWarnings),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// the read above only fails fast; the write re-checks the status
	stored, err := s.repo.Upsert(ctx, s.db, report, keepApproved)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, domain.ErrNotFound
	}

	log.Info("weekly report saved",
		zap.String("report_id", stored.ID.String()),
		zap.String("status", string(stored.Status)),
		zap.Bool("auto_fill", req.AutoFill),
		zap.Int("warnings", len(warnings)),
	)
	s.metrics.RecordReportTransition(ctx, "saved")
	return stored, nil
}

func (s *Service) Get(ctx context.Context, principal scopedomain.Principal, id snowflake.ID) (*domain.Report, error) {
	if err := s.authz.Authorize(ctx, principal, authorization.ObjectKPIReport, authorization.ActionView); err != nil {
		return nil, err
	}
	return s.load(ctx, principal, id)
}

func (s *Service) Submit(ctx context.Context, principal scopedomain.Principal, id snowflake.ID) (*domain.Report, error) {
	now := s.clock.Now()
	return s.transition(ctx, principal, id, authorization.ActionSubmit,
		[]domain.Status{domain.StatusDraft}, domain.StatusSubmitted,
		map[string]any{"submitted_at": now, "submitted_by": principal.UserID},
	)
}

func (s *Service) Approve(ctx context.Context, principal scopedomain.Principal, id snowflake.ID) (*domain.Report, error) {
	now := s.clock.Now()
	return s.transition(ctx, principal, id, authorization.ActionApprove,
		[]domain.Status{domain.StatusSubmitted}, domain.StatusApproved,
		map[string]any{"approved_at": now, "approved_by": principal.UserID, "rejection_reason": nil},
	)
}

func (s *Service) Reject(ctx context.Context, principal scopedomain.Principal, req domain.RejectRequest) (*domain.Report, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, domain.ErrRejectReasonNeeded
	}
	return s.transition(ctx, principal, req.ReportID, authorization.ActionReject,
		[]domain.Status{domain.StatusSubmitted}, domain.StatusDraft,
		map[string]any{"rejection_reason": reason},
	)
}

func (s *Service) ApprovedAverages(ctx context.Context, principal scopedomain.Principal, projectID snowflake.ID, year int) (*domain.Averages, error) {
	if projectID == 0 {
		return nil, domain.ErrInvalidProject
	}
	if err := s.authz.Authorize(ctx, principal, authorization.ObjectKPIReport, authorization.ActionView); err != nil {
		return nil, err
	}
	if err := s.ensureVisible(ctx, principal, projectID); err != nil {
		return nil, err
	}

	avg, err := s.repo.ApprovedAverages(ctx, s.db, projectID, year)
	if err != nil {
		return nil, err
	}
	avg.TF = safetyrate.Round(avg.TF, safetyrate.RatePlaces)
	avg.TG = safetyrate.Round(avg.TG, safetyrate.RatePlaces)
	return avg, nil
}

func (s *Service) transition(
	ctx context.Context,
	principal scopedomain.Principal,
	id snowflake.ID,
	action string,
	from []domain.Status,
	next domain.Status,
	fields map[string]any,
) (*domain.Report, error) {
	if err := s.authz.Authorize(ctx, principal, authorization.ObjectKPIReport, action); err != nil {
		return nil, err
	}
	report, err := s.load(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	changed, err := s.repo.Transition(ctx, s.db, report.ID, from, next, fields, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, domain.ErrInvalidTransition
	}

	logger.WithContext(ctx, s.log).Info("weekly report transitioned",
		zap.String("report_id", report.ID.String()),
		zap.String("from", string(report.Status)),
		zap.String("to", string(next)),
	)
	s.metrics.RecordReportTransition(ctx, string(next))

	return s.load(ctx, principal, id)
}

func (s *Service) load(ctx context.Context, principal scopedomain.Principal, id snowflake.ID) (*domain.Report, error) {
	if id == 0 {
		return nil, domain.ErrInvalidID
	}
	report, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, domain.ErrNotFound
	}
	if err := s.ensureVisible(ctx, principal, report.ProjectID); err != nil {
		// hide reports of projects the caller cannot see
		if errors.Is(err, domain.ErrProjectOutOfScope) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return report, nil
}

func (s *Service) ensureVisible(ctx context.Context, principal scopedomain.Principal, projectID snowflake.ID) error {
	scope, err := s.scope.VisibleProjectIDs(ctx, principal, scopedomain.Filters{ProjectID: &projectID})
	if err != nil {
		return err
	}
	if !scope.Contains(projectID) {
		return domain.ErrProjectOutOfScope
	}
	return nil
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
