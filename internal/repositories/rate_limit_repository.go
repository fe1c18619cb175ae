package repository

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/redis/go-redis/v9"
)

// RateLimitRepository counts attempts per key over a sliding window.
// Every call is recorded, including rejected ones.
type RateLimitRepository interface {
	Allow(ctx context.Context, key string) (allowed bool, remaining int, retryAfter time.Duration, err error)
}

type redisRateLimitRepo struct {
	client *redis.Client
	limit  config.RateConfig
	prefix string
	now    func() time.Time
	seq    atomic.Uint64
}

func NewRedisRateLimitRepository(client *redis.Client, limit config.RateConfig, prefix string) RateLimitRepository {
	return &redisRateLimitRepo{client: client, limit: limit, prefix: prefix, now: time.Now}
}

func (r *redisRateLimitRepo) Allow(ctx context.Context, key string) (bool, int, time.Duration, error) {

	redisKey := fmt.Sprintf("%s:%s", r.prefix, key)

	now := r.now().UnixMicro()
	windowStart := now - r.limit.WindowSize.Microseconds()

	// members must be unique or concurrent attempts in the same microsecond collapse
	member := fmt.Sprintf("%d-%d", now, r.seq.Add(1))

	pipe := r.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(windowStart, 10))
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now), Member: member})
	count := pipe.ZCard(ctx, redisKey)
	pipe.Expire(ctx, redisKey, r.limit.WindowSize)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, 0, fmt.Errorf("rate limit pipeline: %w", err)
	}

	attempts := count.Val()
	if attempts <= r.limit.MaxAttempts {
		return true, int(r.limit.MaxAttempts - attempts), 0, nil
	}

	oldest, err := r.client.ZRangeWithScores(ctx, redisKey, 0, 0).Result()
	if err != nil {
		return false, 0, 0, fmt.Errorf("rate limit oldest attempt: %w", err)
	}

	if len(oldest) == 0 {
		return false, 0, r.limit.WindowSize, nil
	}

	return false, 0, retryAfter(r.limit.WindowSize, now-int64(oldest[0].Score)), nil
}

type memoryRateLimitRepo struct {
	mu        sync.Mutex
	attempts  map[string][]time.Time
	limit     config.RateConfig
	lastSweep time.Time
	now       func() time.Time
}

func NewMemoryRateLimitRepository(limit config.RateConfig) RateLimitRepository {
	return &memoryRateLimitRepo{
		attempts: make(map[string][]time.Time),
		limit:    limit,
		now:      time.Now,
	}
}

func (m *memoryRateLimitRepo) Allow(_ context.Context, key string) (bool, int, time.Duration, error) {

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	windowStart := now.Add(-m.limit.WindowSize)

	if now.Sub(m.lastSweep) >= m.limit.WindowSize {
		for k, times := range m.attempts {
			if len(times) == 0 || !times[len(times)-1].After(windowStart) {
				delete(m.attempts, k)
			}
		}
		m.lastSweep = now
	}

	times := m.attempts[key]
	kept := times[:0]
	for _, t := range times {
		if t.After(windowStart) {
			kept = append(kept, t)
		}
	}
	kept = append(kept, now)
	m.attempts[key] = kept

	attempts := int64(len(kept))
	if attempts <= m.limit.MaxAttempts {
		return true, int(m.limit.MaxAttempts - attempts), 0, nil
	}

	return false, 0, retryAfter(m.limit.WindowSize, now.Sub(kept[0]).Microseconds()), nil
}

func retryAfter(window time.Duration, elapsedMicros int64) time.Duration {
	wait := window - time.Duration(elapsedMicros)*time.Microsecond
	if wait < time.Second {
		return time.Second
	}

	return wait
}
