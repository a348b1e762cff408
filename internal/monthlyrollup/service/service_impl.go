package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/hsekpi/internal/authorization"
	"github.com/smallbiznis/hsekpi/internal/cache"
	"github.com/smallbiznis/hsekpi/internal/clock"
	"github.com/smallbiznis/hsekpi/internal/config"
	kpidomain "github.com/smallbiznis/hsekpi/internal/kpisource/domain"
	"github.com/smallbiznis/hsekpi/internal/monthlyrollup/domain"
	"github.com/smallbiznis/hsekpi/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/hsekpi/internal/observability/metrics"
	"github.com/smallbiznis/hsekpi/internal/observability/tracing"
	scopedomain "github.com/smallbiznis/hsekpi/internal/scope/domain"
	"github.com/smallbiznis/hsekpi/internal/weekcalendar"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	rollupPartial = "partial"
)

// errPartial keeps summaries with failed sections out of the cache.
var errPartial = errors.New("partial_summary")

type Params struct {
	fx.In

	Log           *zap.Logger
	Clock         clock.Clock
	Config        config.Config
	Rules         *config.RollupConfigHolder
	Scope         scopedomain.Service
	Authz         authorization.Service
	Collector     kpidomain.Collector
	Cache         *cache.SummaryCache
	Metrics       *obsmetrics.Metrics       `optional:"true"`
	RollupMetrics *obsmetrics.RollupMetrics `optional:"true"`
}

type Service struct {
	log            *zap.Logger
	clock          clock.Clock
	sectionTimeout time.Duration
	rules          *config.RollupConfigHolder
	scope          scopedomain.Service
	authz          authorization.Service
	collector      kpidomain.Collector
	cache          *cache.SummaryCache
	metrics        *obsmetrics.Metrics
	rollupMetrics  *obsmetrics.RollupMetrics
}

func New(p Params) domain.Service {
	return &Service{
		log:            p.Log.Named("monthlyrollup.service"),
		clock:          p.Clock,
		sectionTimeout: p.Config.Rollup.SectionTimeout,
		rules:          p.Rules,
		scope:          p.Scope,
		authz:          p.Authz,
		collector:      p.Collector,
		cache:          p.Cache,
		metrics:        p.Metrics,
		rollupMetrics:  p.RollupMetrics,
	}
}

func (s *Service) Summary(ctx context.Context, principal scopedomain.Principal, req domain.Request) (*domain.Summary, error) {
	if err := validateMonth(req.Month); err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, principal, authorization.ObjectMonthlyReport, authorization.ActionView); err != nil {
		return nil, err
	}

	scope, err := s.scope.VisibleProjectIDs(ctx, principal, scopedomain.Filters{ProjectID: req.ProjectID})
	if err != nil {
		return nil, err
	}

	rules := s.rules.Get()
	key := SummaryKey(req.Month, req.ProjectID, scope)

	var partial *domain.Summary
	summary, outcome, err := cache.GetOrComputeOutcome(ctx, s.cache, key, rules.CacheTTL, func(ctx context.Context) (*domain.Summary, error) {
		out, err := s.compute(ctx, req, scope, rules)
		if err != nil {
			return nil, err
		}
		if len(out.Warnings) > 0 {
			partial = out
			return nil, errPartial
		}
		return out, nil
	})

	switch {
	case errors.Is(err, errPartial):
		s.metrics.RecordRollupRequest(ctx, rollupPartial)
		if partial != nil {
			return partial, nil
		}
		// another caller ran the shared computation
		return s.compute(ctx, req, scope, rules)
	case err != nil:
		return nil, err
	}
	s.metrics.RecordRollupRequest(ctx, outcome)
	return summary, nil
}

func (s *Service) Warm(ctx context.Context, month weekcalendar.MonthKey) error {
	if err := validateMonth(month); err != nil {
		return err
	}
	rules := s.rules.Get()
	scope := scopedomain.Unrestricted()
	req := domain.Request{Month: month}

	summary, err := s.compute(ctx, req, scope, rules)
	if err != nil {
		return err
	}
	if len(summary.Warnings) > 0 {
		return errPartial
	}
	return cache.Put(ctx, s.cache, SummaryKey(month, nil, scope), rules.CacheTTL, summary)
}

// SummaryKey distinguishes every month, project filter and scope.
func SummaryKey(month weekcalendar.MonthKey, projectID *snowflake.ID, scope scopedomain.ProjectScope) string {
	project := "all"
	if projectID != nil {
		project = strconv.FormatInt(projectID.Int64(), 10)
	}
	return cache.Key("monthly", month.String(), project, scope.Fingerprint())
}

func (s *Service) compute(ctx context.Context, req domain.Request, scope scopedomain.ProjectScope, rules config.RollupConfig) (*domain.Summary, error) {
	ctx, span := tracing.StartSpan(ctx, "monthlyrollup.compute",
		attribute.String("month", req.Month.String()),
		attribute.String("scope", scope.Fingerprint()),
	)
	defer span.End()
	log := logger.WithContext(ctx, s.log).With(zap.String("month", req.Month.String()))

	projects, err := s.collector.Projects(ctx, scope)
	if err != nil {
		return nil, err
	}
	idx := domain.NewPoleIndex(projects)
	window := kpidomain.Month(req.Month)
	q := kpidomain.Query{Scope: scope, Window: window}
	asOf := req.Month.End()
	companies := domain.CompanyRules{
		InternalTokens: rules.InternalCompanyTokens,
		UnknownValues:  rules.UnknownCompanyValues,
	}

	sectionCtx := ctx
	if s.sectionTimeout > 0 {
		var cancel context.CancelFunc
		sectionCtx, cancel = context.WithTimeout(ctx, s.sectionTimeout)
		defer cancel()
	}

	var (
		sections domain.Sections
		mu       sync.Mutex
		warnings []string
	)
	g, gctx := errgroup.WithContext(sectionCtx)
	run := func(name string, fn func(context.Context) error) {
		g.Go(func() error {
			start := time.Now()
			err := fn(gctx)
			s.rollupMetrics.ObserveSection(name, time.Since(start), err)
			if err != nil {
				log.Warn("rollup section failed", zap.String("section", name), zap.Error(err))
				mu.Lock()
				warnings = append(warnings, name+"_unavailable")
				mu.Unlock()
			}
			return nil
		})
	}

	run(domain.SectionRegulatoryWatch, func(ctx context.Context) error {
		rows, err := s.collector.RegulatoryWatch(ctx, q)
		sections.RegulatoryWatch = domain.BuildRegulatoryWatch(idx, rows, rules.RegulatoryCategory)
		return err
	})
	run(domain.SectionDeviations, func(ctx context.Context) error {
		rows, err := s.collector.SorReports(ctx, q)
		sections.Deviations = domain.BuildDeviations(idx, rows, companies, false)
		sections.SubcontractorDeviations = domain.BuildDeviations(idx, rows, companies, true)
		return err
	})
	run(domain.SectionTrainings, func(ctx context.Context) error {
		rows, err := s.collector.Trainings(ctx, q)
		sections.Trainings = domain.BuildActivity(idx, domain.TrainingRecords(rows))
		return err
	})
	run(domain.SectionAwareness, func(ctx context.Context) error {
		rows, err := s.collector.AwarenessSessions(ctx, q)
		sections.AwarenessSessions = domain.BuildActivity(idx, domain.AwarenessRecords(rows))
		return err
	})
	run(domain.SectionSubcontractorDocuments, func(ctx context.Context) error {
		openings, docs, err := s.collector.SubcontractorOpenings(ctx, q)
		sections.SubcontractorDocuments = domain.BuildDocumentCompletion(idx, openings, docs, rules.RequiredDocumentKeys, asOf)
		return err
	})
	run(domain.SectionMedicalConformity, func(ctx context.Context) error {
		workers, err := s.collector.ActiveWorkers(ctx, scope)
		if err != nil {
			sections.MedicalConformity = domain.BuildMedicalConformity(idx, nil, nil, rules.MedicalAptitudeValue, asOf)
			return err
		}
		ids := make([]snowflake.ID, 0, len(workers))
		for _, w := range workers {
			ids = append(ids, w.ID)
		}
		aptitudes, err := s.collector.MedicalAptitudes(ctx, ids)
		sections.MedicalConformity = domain.BuildMedicalConformity(idx, workers, aptitudes, rules.MedicalAptitudeValue, asOf)
		return err
	})
	_ = g.Wait()

	summary := &domain.Summary{
		Month:       req.Month.String(),
		ProjectID:   req.ProjectID,
		StartDate:   req.Month.Start(),
		EndDate:     asOf,
		Weeks:       window.WeekKeys(),
		Poles:       idx.Poles(),
		Sections:    sections,
		Warnings:    domain.SortWarnings(warnings),
		GeneratedAt: s.clock.Now(),
	}
	log.Debug("monthly summary computed",
		zap.Int("poles", len(summary.Poles)),
		zap.Int("projects", len(projects)),
		zap.Strings("warnings", summary.Warnings),
	)
	return summary, nil
}

func validateMonth(month weekcalendar.MonthKey) error {
	if month.Month < time.January || month.Month > time.December {
		return weekcalendar.ErrInvalidMonthKey
	}
	if !weekcalendar.ValidYear(month.Year) {
		return weekcalendar.ErrInvalidMonthKey
	}
	return nil
}
