package metrics

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

const (
	JobReasonDeadlineExceeded     = "deadline_exceeded"
	JobReasonDBLockTimeout        = "db_lock_timeout"
	JobReasonSerializationFailure = "serialization_failure"
	JobReasonUniqueViolation      = "unique_violation"
	JobReasonDB                   = "db"
	JobReasonUnknown              = "unknown"
)

const (
	CacheHit    = "hit"
	CacheMiss   = "miss"
	CacheShared = "shared"
	CacheError  = "error"
)

// RollupMetrics captures monthly rollup and warmer health for Prometheus.
type RollupMetrics struct {
	jobRuns         *prometheus.CounterVec
	jobDuration     *prometheus.HistogramVec
	jobErrors       *prometheus.CounterVec
	jobSkipped      *prometheus.CounterVec
	sectionDuration *prometheus.HistogramVec
	sectionErrors   *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	monthsWarmed    prometheus.Counter
}

var (
	rollupMetricsOnce sync.Once
	rollupMetrics     *RollupMetrics
)

// Rollup returns the process-wide rollup metrics registered on the default registry.
func Rollup() *RollupMetrics {
	return RollupWithConfig(Config{})
}

func RollupWithConfig(cfg Config) *RollupMetrics {
	rollupMetricsOnce.Do(func() {
		rollupMetrics = newRollupMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return rollupMetrics
}

func newRollupMetrics(registerer prometheus.Registerer, cfg Config) *RollupMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "hsekpi"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	m := &RollupMetrics{
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "hsekpi_job_runs_total",
			Help:        "Background job runs by name.",
			ConstLabels: constLabels,
		}, []string{"job"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "hsekpi_job_duration_seconds",
			Help:        "Background job latency.",
			Buckets:     []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			ConstLabels: constLabels,
		}, []string{"job"}),
		jobErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "hsekpi_job_errors_total",
			Help:        "Background job errors by low-cardinality reason.",
			ConstLabels: constLabels,
		}, []string{"job", "reason"}),
		jobSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "hsekpi_job_skipped_total",
			Help:        "Background job runs skipped because another instance held the lock.",
			ConstLabels: constLabels,
		}, []string{"job"}),
		sectionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "hsekpi_rollup_section_duration_seconds",
			Help:        "Monthly rollup section computation latency.",
			Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
			ConstLabels: constLabels,
		}, []string{"section"}),
		sectionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "hsekpi_rollup_section_errors_total",
			Help:        "Monthly rollup section failures.",
			ConstLabels: constLabels,
		}, []string{"section", "reason"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "hsekpi_rollup_cache_lookups_total",
			Help:        "Monthly summary cache lookups by outcome.",
			ConstLabels: constLabels,
		}, []string{"outcome"}),
		monthsWarmed: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "hsekpi_rollup_months_warmed_total",
			Help:        "Monthly summaries precomputed by the warmer.",
			ConstLabels: constLabels,
		}),
	}

	registerer.MustRegister(
		m.jobRuns,
		m.jobDuration,
		m.jobErrors,
		m.jobSkipped,
		m.sectionDuration,
		m.sectionErrors,
		m.cacheLookups,
		m.monthsWarmed,
	)
	return m
}

func (m *RollupMetrics) IncJobRun(job string) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(job).Inc()
}

func (m *RollupMetrics) ObserveJobDuration(job string, duration time.Duration) {
	if m == nil {
		return
	}
	m.jobDuration.WithLabelValues(job).Observe(duration.Seconds())
}

func (m *RollupMetrics) IncJobError(job string, err error) {
	if m == nil || err == nil {
		return
	}
	m.jobErrors.WithLabelValues(job, ClassifyJobReason(err)).Inc()
}

func (m *RollupMetrics) IncJobSkipped(job string) {
	if m == nil {
		return
	}
	m.jobSkipped.WithLabelValues(job).Inc()
}

// ObserveSection records one rollup section; err may be nil.
func (m *RollupMetrics) ObserveSection(section string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.sectionDuration.WithLabelValues(section).Observe(duration.Seconds())
	if err != nil {
		m.sectionErrors.WithLabelValues(section, ClassifyJobReason(err)).Inc()
	}
}

func (m *RollupMetrics) IncCacheLookup(outcome string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(outcome).Inc()
}

func (m *RollupMetrics) AddMonthsWarmed(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.monthsWarmed.Add(float64(count))
}

// ClassifyJobReason maps errors to low-cardinality reasons.
func ClassifyJobReason(err error) string {
	if err == nil {
		return JobReasonUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return JobReasonDeadlineExceeded
	}
	if hasPGCode(err, "55P03") {
		return JobReasonDBLockTimeout
	}
	if hasPGCode(err, "40001") {
		return JobReasonSerializationFailure
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || hasPGCode(err, "23505") {
		return JobReasonUniqueViolation
	}
	if isDBError(err) {
		return JobReasonDB
	}
	return JobReasonUnknown
}

// IsRetryable reports whether a failed job should be retried on the next tick
// rather than surfaced as a hard failure.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	return isDBError(err)
}

func hasPGCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return false
}

func isDBError(err error) bool {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false
	}
	if errors.Is(err, gorm.ErrInvalidDB) ||
		errors.Is(err, gorm.ErrInvalidTransaction) ||
		errors.Is(err, gorm.ErrInvalidField) ||
		errors.Is(err, gorm.ErrInvalidData) ||
		errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr)
}
