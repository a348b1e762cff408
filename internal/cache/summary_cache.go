package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/smallbiznis/hsekpi/internal/config"
	obsmetrics "github.com/smallbiznis/hsekpi/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// defaultComputeTimeout bounds a shared computation when no rollup section
// timeout is configured.
const defaultComputeTimeout = 2 * time.Minute

type SummaryCacheParams struct {
	fx.In

	Log     *zap.Logger
	Store   Store
	Config  config.Config             `optional:"true"`
	Metrics *obsmetrics.RollupMetrics `optional:"true"`
}

// SummaryCache is a get-or-compute cache for derived read models. Concurrent
// misses on one key share a single computation.
type SummaryCache struct {
	log            *zap.Logger
	store          Store
	metrics        *obsmetrics.RollupMetrics
	group          singleflight.Group
	computeTimeout time.Duration
}

func NewSummaryCache(p SummaryCacheParams) *SummaryCache {
	timeout := defaultComputeTimeout
	if section := p.Config.Rollup.SectionTimeout; section > 0 {
		// sections run concurrently, so one section timeout plus headroom
		timeout = 2 * section
	}
	return &SummaryCache{
		log:            p.Log.Named("cache.summary"),
		store:          p.Store,
		metrics:        p.Metrics,
		computeTimeout: timeout,
	}
}

// Fetch returns the cached bytes for key or stores the result of compute.
// A failing backend is logged and bypassed.
func (c *SummaryCache) Fetch(ctx context.Context, key string, ttl time.Duration, compute func(context.Context) ([]byte, error)) ([]byte, error) {
	raw, _, err := c.FetchOutcome(ctx, key, ttl, compute)
	return raw, err
}

// FetchOutcome is Fetch that also reports how the value was obtained: one of
// CacheHit, CacheMiss or CacheShared.
//
// The computation is shared by every caller waiting on key, so it runs on a
// context detached from any single caller and bounded by the compute timeout.
// A caller whose own context ends stops waiting without failing the others.
func (c *SummaryCache) FetchOutcome(ctx context.Context, key string, ttl time.Duration, compute func(context.Context) ([]byte, error)) ([]byte, string, error) {
	cached, ok, err := c.store.Get(ctx, key)
	switch {
	case err != nil:
		c.metrics.IncCacheLookup(obsmetrics.CacheError)
		c.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	case ok:
		c.metrics.IncCacheLookup(obsmetrics.CacheHit)
		return cached, obsmetrics.CacheHit, nil
	}

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		computeCtx, cancel := context.WithTimeout(detached, c.computeTimeout)
		defer cancel()

		raw, err := compute(computeCtx)
		if err != nil {
			return nil, err
		}
		if err := c.store.Set(computeCtx, key, raw, ttl); err != nil {
			c.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
		return raw, nil
	})

	select {
	case <-ctx.Done():
		return nil, "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, "", res.Err
		}
		outcome := obsmetrics.CacheMiss
		if res.Shared {
			outcome = obsmetrics.CacheShared
		}
		c.metrics.IncCacheLookup(outcome)
		return res.Val.([]byte), outcome, nil
	}
}

// Refresh recomputes key unconditionally and overwrites the cached entry.
func (c *SummaryCache) Refresh(ctx context.Context, key string, ttl time.Duration, compute func(context.Context) ([]byte, error)) error {
	raw, err := compute(ctx)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, key, raw, ttl)
}

func (c *SummaryCache) Invalidate(ctx context.Context, key string) error {
	return c.store.Delete(ctx, key)
}

// GetOrCompute is the typed form of Fetch; values travel as JSON.
func GetOrCompute[T any](ctx context.Context, c *SummaryCache, key string, ttl time.Duration, compute func(context.Context) (T, error)) (T, error) {
	out, _, err := GetOrComputeOutcome(ctx, c, key, ttl, compute)
	return out, err
}

// GetOrComputeOutcome is the typed form of FetchOutcome.
func GetOrComputeOutcome[T any](ctx context.Context, c *SummaryCache, key string, ttl time.Duration, compute func(context.Context) (T, error)) (T, string, error) {
	var out T
	raw, outcome, err := c.FetchOutcome(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		value, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(value)
	})
	if err != nil {
		return out, "", err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, "", err
	}
	return out, outcome, nil
}

// Put stores value as JSON under key.
func Put[T any](ctx context.Context, c *SummaryCache, key string, ttl time.Duration, value T) error {
	return c.Refresh(ctx, key, ttl, func(context.Context) ([]byte, error) {
		return json.Marshal(value)
	})
}
