package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"coach_backend/internal/model"

	"github.com/go-redis/redis/v8"
)

// AnalyticsCache stores computed analytics snapshots per user.
type AnalyticsCache interface {
	Get(ctx context.Context, userID uint) (*model.Analytics, bool, error)
	Set(ctx context.Context, userID uint, a *model.Analytics) error
	Invalidate(ctx context.Context, userID uint) error
}

type RedisAnalyticsCache struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewAnalyticsCache(rdb *redis.Client, ttl time.Duration) AnalyticsCache {
	if rdb == nil || ttl <= 0 {
		return NoopAnalyticsCache{}
	}
	return &RedisAnalyticsCache{Redis: rdb, TTL: ttl}
}

func analyticsKey(userID uint) string {
	return fmt.Sprintf("coach:analytics:%d", userID)
}

func (c *RedisAnalyticsCache) Get(ctx context.Context, userID uint) (*model.Analytics, bool, error) {
	raw, err := c.Redis.Get(ctx, analyticsKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var a model.Analytics
	if err := json.Unmarshal(raw, &a); err != nil {
		// a corrupt entry is treated as a miss and dropped
		c.Redis.Del(ctx, analyticsKey(userID))
		return nil, false, nil
	}
	return &a, true, nil
}

func (c *RedisAnalyticsCache) Set(ctx context.Context, userID uint, a *model.Analytics) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return c.Redis.Set(ctx, analyticsKey(userID), raw, c.TTL).Err()
}

func (c *RedisAnalyticsCache) Invalidate(ctx context.Context, userID uint) error {
	return c.Redis.Del(ctx, analyticsKey(userID)).Err()
}

type NoopAnalyticsCache struct{}

func (NoopAnalyticsCache) Get(context.Context, uint) (*model.Analytics, bool, error) {
	return nil, false, nil
}

func (NoopAnalyticsCache) Set(context.Context, uint, *model.Analytics) error { return nil }

func (NoopAnalyticsCache) Invalidate(context.Context, uint) error { return nil }
