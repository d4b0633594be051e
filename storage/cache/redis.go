// Package cache keeps computed values in Redis.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/dashboard"
)

const (
	keyPrefix       = "shule:"
	dashboardStats  = keyPrefix + "dashboard:stats"
	defaultStatsTTL = 30 * time.Second
)

// redisClient is the subset of *redis.Client used here.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// NewClient connects to the Redis server described by `conf`.
func NewClient(ctx context.Context, conf core.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Address,
		Password: conf.Password,
		DB:       conf.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "connecting to redis")
	}
	return client, nil
}

// StatsCache stores dashboard statistics as JSON, for `ttl`.
type StatsCache struct {
	client redisClient
	ttl    time.Duration
}

var _ dashboard.StatsCache = (*StatsCache)(nil) // interface compliance check

func NewStatsCache(client redisClient, ttl time.Duration) *StatsCache {
	if ttl <= 0 {
		ttl = defaultStatsTTL
	}
	return &StatsCache{client: client, ttl: ttl}
}

func (c *StatsCache) GetStats(ctx context.Context) (dashboard.Stats, bool, error) {
	data, err := c.client.Get(ctx, dashboardStats).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return dashboard.Stats{}, false, nil
		}
		return dashboard.Stats{}, false, errors.Wrap(err, "getting cached stats")
	}

	var stats dashboard.Stats
	if err = json.Unmarshal(data, &stats); err != nil {
		return dashboard.Stats{}, false, errors.Wrap(err, "decoding cached stats")
	}
	return stats, true, nil
}

func (c *StatsCache) SetStats(ctx context.Context, stats dashboard.Stats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return errors.Wrap(err, "encoding stats")
	}
	return errors.Wrap(c.client.Set(ctx, dashboardStats, data, c.ttl).Err(), "caching stats")
}
