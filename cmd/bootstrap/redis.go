package bootstrap

import (
	"context"

	"slotbook/internal/infra/cache"
	"slotbook/internal/pkg/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var RedisModule = fx.Module("redis",
	fx.Provide(
		NewRedis,
	),
)

// NewRedis may return a nil client: caching is optional and the availability
// query runs uncached without one.
func NewRedis(lc fx.Lifecycle, cfg config.Config) (*redis.Client, error) {
	client, err := cache.NewRedisClient(context.Background(), cfg.Redis)
	if err != nil {
		return nil, err
	}
	if client != nil {
		lc.Append(fx.Hook{
			OnStop: func(_ context.Context) error {
				return client.Close()
			},
		})
	}
	return client, nil
}
