package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"slotbook/internal/pkg/config"
	"slotbook/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient returns nil when no address is configured; the availability
// query treats a nil cache as cache-disabled.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}

// AvailabilityCache is a short-TTL read-through cache for candidate lists.
// Staleness is bounded by the TTL and is harmless to correctness: every
// claim re-validates against the ledger, and conflict responses requery with
// the cache bypassed. Cache failures degrade to direct reads.
type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAvailabilityCache(client *redis.Client, ttl time.Duration) *AvailabilityCache {
	return &AvailabilityCache{client: client, ttl: ttl}
}

func (c *AvailabilityCache) Get(ctx context.Context, serviceID uuid.UUID, date time.Time) ([]queries.CandidateView, bool) {
	raw, err := c.client.Get(ctx, cacheKey(serviceID, date)).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("availability cache read failed", "error", err.Error())
		}
		return nil, false
	}
	var views []queries.CandidateView
	if err := json.Unmarshal(raw, &views); err != nil {
		slog.Warn("availability cache entry corrupt, ignoring", "error", err.Error())
		return nil, false
	}
	return views, true
}

func (c *AvailabilityCache) Set(ctx context.Context, serviceID uuid.UUID, date time.Time, candidates []queries.CandidateView) {
	raw, err := json.Marshal(candidates)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(serviceID, date), raw, c.ttl).Err(); err != nil {
		slog.Warn("availability cache write failed", "error", err.Error())
	}
}

// Invalidate drops the cached candidate list for the service/date touched by
// a committed mutation. Failures only extend staleness up to the TTL.
func (c *AvailabilityCache) Invalidate(ctx context.Context, serviceID uuid.UUID, date time.Time) {
	if err := c.client.Del(ctx, cacheKey(serviceID, date)).Err(); err != nil {
		slog.Warn("availability cache invalidation failed", "error", err.Error())
	}
}

// cacheKey names the entry by the date's own calendar day. Converting to UTC
// first would shift a non-UTC midnight onto the previous day and split the
// read and invalidation paths across two keys.
func cacheKey(serviceID uuid.UUID, date time.Time) string {
	return fmt.Sprintf("availability:%s:%s", serviceID, date.Format("2006-01-02"))
}
