package cache

import (
	"context"
	"fmt"

	badger "github.com/dgraph-io/badger/v3"
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/hsekpi/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const redisKeyPrefix = "hsekpi:summary:"

var Module = fx.Module("cache",
	fx.Provide(NewRedisClient),
	fx.Provide(NewStore),
	fx.Provide(NewSummaryCache),
)

// NewRedisClient returns nil when no redis address is configured.
func NewRedisClient(lc fx.Lifecycle, cfg config.Config) *redis.Client {
	if cfg.Redis.Addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return client
}

func NewStore(lc fx.Lifecycle, cfg config.Config, client *redis.Client, log *zap.Logger) (Store, error) {
	log = log.Named("cache")
	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		if client == nil {
			log.Warn("redis cache backend requested without REDIS_ADDR, using memory")
			return NewMemoryStore(), nil
		}
		log.Info("summary cache backend", zap.String("backend", "redis"))
		return NewRedisStore(client, redisKeyPrefix), nil
	case config.CacheBackendBadger:
		db, err := badger.Open(badger.DefaultOptions(cfg.Cache.BadgerDir).WithLogger(nil))
		if err != nil {
			return nil, fmt.Errorf("open badger cache: %w", err)
		}
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return db.Close()
			},
		})
		log.Info("summary cache backend", zap.String("backend", "badger"), zap.String("dir", cfg.Cache.BadgerDir))
		return NewBadgerStore(db), nil
	default:
		return NewMemoryStore(), nil
	}
}
