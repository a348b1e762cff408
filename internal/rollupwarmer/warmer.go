package rollupwarmer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/smallbiznis/hsekpi/internal/clock"
	"github.com/smallbiznis/hsekpi/internal/config"
	rollupdomain "github.com/smallbiznis/hsekpi/internal/monthlyrollup/domain"
	obscontext "github.com/smallbiznis/hsekpi/internal/observability/context"
	"github.com/smallbiznis/hsekpi/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/hsekpi/internal/observability/metrics"
	"github.com/smallbiznis/hsekpi/internal/ratelimit"
	"github.com/smallbiznis/hsekpi/internal/weekcalendar"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	jobName = "rollup_warm"
	lockKey = "hsekpi:lock:rollup_warm"

	defaultInterval = 10 * time.Minute
	defaultLockTTL  = 2 * time.Minute
	runTimeout      = 5 * time.Minute
)

type Params struct {
	fx.In

	Log     *zap.Logger
	Clock   clock.Clock
	Config  config.Config
	Rollup  rollupdomain.Service
	Locker  *ratelimit.Locker         `optional:"true"`
	Metrics *obsmetrics.RollupMetrics `optional:"true"`
}

// Warmer refreshes the unrestricted monthly summaries of the current and
// previous month so dashboards read them from the cache.
type Warmer struct {
	log      *zap.Logger
	clock    clock.Clock
	rollup   rollupdomain.Service
	locker   *ratelimit.Locker
	metrics  *obsmetrics.RollupMetrics
	interval time.Duration
	lockTTL  time.Duration
}

func New(p Params) *Warmer {
	interval := p.Config.Rollup.WarmerInterval
	if interval <= 0 {
		interval = defaultInterval
	}
	lockTTL := p.Config.Rollup.WarmerLockTTL
	if lockTTL <= 0 {
		lockTTL = defaultLockTTL
	}
	return &Warmer{
		log:      p.Log.Named("rollupwarmer").With(zap.String("component", "rollupwarmer")),
		clock:    p.Clock,
		rollup:   p.Rollup,
		locker:   p.Locker,
		metrics:  p.Metrics,
		interval: interval,
		lockTTL:  lockTTL,
	}
}

// Months returns the months one run refreshes, newest first.
func (w *Warmer) Months() []weekcalendar.MonthKey {
	current := weekcalendar.MonthOf(w.clock.Now())
	return []weekcalendar.MonthKey{current, current.Previous()}
}

func (w *Warmer) RunOnce(parent context.Context) error {
	ctx, cancel := context.WithTimeout(parent, runTimeout)
	defer cancel()

	ctx = obscontext.WithRunID(ctx, ulid.Make().String())
	log := logger.WithContext(ctx, w.log).With(zap.String("job", jobName))
	start := time.Now()
	w.metrics.IncJobRun(jobName)

	if w.locker.Enabled() {
		token, ok, err := w.locker.TryLock(ctx, lockKey, w.lockTTL)
		if err != nil {
			w.metrics.IncJobError(jobName, err)
			return fmt.Errorf("%s: acquire lock: %w", jobName, err)
		}
		if !ok {
			w.metrics.IncJobSkipped(jobName)
			log.Debug("warm run skipped, lock held elsewhere")
			return nil
		}
		defer func() {
			if err := w.locker.Release(context.Background(), lockKey, token); err != nil {
				log.Warn("release warm lock failed", zap.Error(err))
			}
		}()
	}

	var (
		runErr error
		warmed int
	)
	for _, month := range w.Months() {
		if err := w.rollup.Warm(ctx, month); err != nil {
			runErr = errors.Join(runErr, fmt.Errorf("%s: %w", month, err))
			log.Warn("month warm failed", zap.String("month", month.String()), zap.Error(err))
			continue
		}
		warmed++
	}

	w.metrics.AddMonthsWarmed(warmed)
	w.metrics.ObserveJobDuration(jobName, time.Since(start))
	if runErr != nil {
		w.metrics.IncJobError(jobName, runErr)
		return fmt.Errorf("%s: %w", jobName, runErr)
	}
	log.Info("monthly summaries warmed", zap.Int("months", warmed), zap.Duration("elapsed", time.Since(start)))
	return nil
}

func (w *Warmer) RunForever(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if err := w.RunOnce(ctx); err != nil {
			w.log.Warn("warm run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
