package cache

import (
	"context"
	"errors"
	"fmt"
	"osrm-route-service/internal/platform/obs"
	"osrm-route-service/internal/ports"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "osrm:distance:"

// RedisDistanceCache stores one string per origin->destination pair,
// "meters:seconds", expiring after TTL. Zero TTL keeps entries forever.
type RedisDistanceCache struct {
	Client redis.UniversalClient
	TTL    time.Duration
}

var _ ports.DistanceCache = (*RedisDistanceCache)(nil)

func NewRedisDistanceCache(client redis.UniversalClient, ttl time.Duration) *RedisDistanceCache {
	return &RedisDistanceCache{Client: client, TTL: ttl}
}

func redisKey(origin, destination string) string {
	return redisKeyPrefix + origin + "|" + destination
}

func (c *RedisDistanceCache) GetMany(
	ctx context.Context,
	origin string,
	destinations []string,
) (_ map[string]ports.DistanceResult, err error) {
	defer obs.Time(ctx, "distance.cache.GetMany")(&err)

	if c.Client == nil {
		return nil, errors.New("distance cache: redis client is nil")
	}
	if origin == "" {
		return nil, errors.New("get distance cache: origin must not be empty")
	}

	uniq := uniqueKeys(destinations)
	if len(uniq) == 0 {
		return map[string]ports.DistanceResult{}, nil
	}

	keys := make([]string, 0, len(uniq))
	for _, d := range uniq {
		keys = append(keys, redisKey(origin, d))
	}

	vals, err := c.Client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get distance cache: mget: %w", err)
	}

	out := make(map[string]ports.DistanceResult, len(uniq))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		r, err := decodeRedisValue(s)
		if err != nil {
			return nil, fmt.Errorf("get distance cache: key %q: %w", keys[i], err)
		}
		out[uniq[i]] = r
	}

	recordLookup("redis", len(out), len(uniq))
	return out, nil
}

func (c *RedisDistanceCache) PutMany(
	ctx context.Context,
	origin string,
	results map[string]ports.DistanceResult,
) (err error) {
	defer obs.Time(ctx, "distance.cache.PutMany")(&err)

	if c.Client == nil {
		return errors.New("distance cache: redis client is nil")
	}
	if origin == "" {
		return errors.New("insert distance cache: origin must not be empty")
	}
	if len(results) == 0 {
		return nil
	}

	pipe := c.Client.Pipeline()
	for dest, r := range results {
		if strings.TrimSpace(dest) == "" {
			return errors.New("insert distance cache: empty destination key")
		}
		pipe.Set(ctx, redisKey(origin, dest), encodeRedisValue(r), c.TTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert distance cache: pipeline: %w", err)
	}
	return nil
}

func encodeRedisValue(r ports.DistanceResult) string {
	return strconv.Itoa(r.DistanceMeters) + ":" + strconv.Itoa(r.DurationSeconds)
}

func decodeRedisValue(s string) (ports.DistanceResult, error) {
	m, sec, ok := strings.Cut(s, ":")
	if !ok {
		return ports.DistanceResult{}, fmt.Errorf("malformed value %q", s)
	}
	meters, err := strconv.Atoi(m)
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("malformed meters %q: %w", m, err)
	}
	seconds, err := strconv.Atoi(sec)
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("malformed seconds %q: %w", sec, err)
	}
	return ports.DistanceResult{DistanceMeters: meters, DurationSeconds: seconds}, nil
}
