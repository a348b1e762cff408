package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	kpidomain "github.com/smallbiznis/hsekpi/internal/kpisource/domain"
	"github.com/smallbiznis/hsekpi/internal/observability/logger"
	"github.com/smallbiznis/hsekpi/internal/observability/metrics"
	"github.com/smallbiznis/hsekpi/internal/observability/tracing"
	scopedomain "github.com/smallbiznis/hsekpi/internal/scope/domain"
	"github.com/smallbiznis/hsekpi/internal/weekcalendar"
	"github.com/smallbiznis/hsekpi/internal/weeklyagg/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log       *zap.Logger
	Collector kpidomain.Collector
	Metrics   *metrics.Metrics `optional:"true"`
}

type Service struct {
	log       *zap.Logger
	collector kpidomain.Collector
	metrics   *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		log:       p.Log.Named("weeklyagg.service"),
		collector: p.Collector,
		metrics:   p.Metrics,
	}
}

func (s *Service) AggregateForWeek(ctx context.Context, projectID snowflake.ID, week, year int) (*domain.Result, error) {
	if projectID == 0 {
		return nil, domain.ErrInvalidProject
	}
	if !weekcalendar.ValidWeek(week) {
		return nil, weekcalendar.ErrInvalidWeek
	}
	if !weekcalendar.ValidYear(year) {
		return nil, weekcalendar.ErrInvalidYear
	}

	ctx, span := tracing.StartSpan(ctx, "weeklyagg.AggregateForWeek",
		attribute.Int64("project_id", projectID.Int64()),
		attribute.Int("week", week),
		attribute.Int("year", year),
	)
	defer span.End()

	log := logger.WithWeek(logger.WithProject(logger.WithContext(ctx, s.log), projectID.Int64()), week, year)

	scope := scopedomain.Restricted(projectID)
	q := kpidomain.Query{Scope: scope, Window: kpidomain.Week(week, year)}
	warnings := []string{}

	snapshots, err := s.collector.DailySnapshots(ctx, q)
	if err != nil {
		log.Warn("daily snapshots unavailable", zap.Error(err))
		warnings = append(warnings, domain.WarningSnapshotsUnavailable)
		snapshots = nil
	}

	entries, err := s.collector.EffectifEntries(ctx, q)
	if err != nil {
		log.Warn("effectif entries unavailable", zap.Error(err))
		warnings = append(warnings, domain.WarningEffectifUnavailable)
		entries = nil
	}

	input := domain.FoldInput{Snapshots: snapshots, EffectifEntries: entries}
	if domain.NeedsActiveWorkers(snapshots, entries) {
		workers, err := s.collector.ActiveWorkers(ctx, scope)
		if err != nil {
			log.Warn("active workers unavailable", zap.Error(err))
			warnings = append(warnings, domain.WarningActiveWorkersUnavailable)
		} else {
			count := int64(len(workers))
			input.ActiveWorkers = &count
		}
	}

	start, end := weekcalendar.WeekDates(week, year)
	result := &domain.Result{
		ProjectID: projectID,
		Week:      week,
		Year:      year,
		StartDate: start,
		EndDate:   end,
		Aggregate: domain.Fold(input),
		Warnings:  warnings,
	}

	s.metrics.RecordAggregateWarnings(ctx, len(warnings))
	log.Debug("weekly aggregate computed",
		zap.Int("snapshot_days", result.Aggregate.SnapshotDays),
		zap.Strings("warnings", warnings),
	)
	return result, nil
}
