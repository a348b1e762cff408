package ratelimit

import (
	"context"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/hsekpi/internal/config"
	"go.uber.org/zap"
)

const keyRollupUser = "hsekpi:ratelimit:rollup:user:%s"

// RollupLimiter throttles monthly rollup computations per user. It is a
// no-op without redis or when disabled.
type RollupLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewRollupLimiter(cfg config.Config, client *redis.Client, log *zap.Logger) *RollupLimiter {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil
	}
	if client == nil {
		log.Named("ratelimit").Warn("rollup rate limit enabled without REDIS_ADDR, disabled")
		return nil
	}
	if limitCfg.RollupRate <= 0 || limitCfg.RollupBurst <= 0 {
		log.Named("ratelimit").Warn("rollup rate limit needs positive rate and burst, disabled",
			zap.Float64("rate", limitCfg.RollupRate),
			zap.Int("burst", limitCfg.RollupBurst),
		)
		return nil
	}
	return &RollupLimiter{
		bucket: NewTokenBucket(client),
		rate:   limitCfg.RollupRate,
		burst:  limitCfg.RollupBurst,
	}
}

func (l *RollupLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

func (l *RollupLimiter) AllowUser(ctx context.Context, userID string) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyRollupUser, strings.TrimSpace(userID)), l.rate, l.burst)
}
