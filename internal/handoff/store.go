package handoff

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Status 一次投递请求在 Redis 中的状态
type Status int

const (
	StatusUnknown   Status = 0 // Redis 不存在
	StatusPending   Status = 1 // 已占位，正在投递
	StatusPublished Status = 2 // 已确认写入 Kafka
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusPublished:
		return "published"
	default:
		return "unknown"
	}
}

const (
	keyPrefix  = "ixtool:handoff"
	defaultTTL = 24 * time.Hour
)

// Store 投递幂等标记
type Store interface {
	// TryMarkPending 占位；已存在任何标记时返回 false
	TryMarkPending(ctx context.Context, requestID string) (bool, error)
	MarkPublished(ctx context.Context, requestID string) error
	Clear(ctx context.Context, requestID string) error
	Status(ctx context.Context, requestID string) (Status, error)
}

// RedisStore 基于 Redis 的幂等标记，所有 key 带统一 TTL
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (r *RedisStore) key(requestID string) string {
	return fmt.Sprintf("%s:%s", keyPrefix, requestID)
}

func (r *RedisStore) TryMarkPending(ctx context.Context, requestID string) (bool, error) {
	ok, err := r.rdb.SetNX(ctx, r.key(requestID), int(StatusPending), r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx error: %w", err)
	}
	return ok, nil
}

func (r *RedisStore) MarkPublished(ctx context.Context, requestID string) error {
	return r.rdb.Set(ctx, r.key(requestID), int(StatusPublished), r.ttl).Err()
}

func (r *RedisStore) Clear(ctx context.Context, requestID string) error {
	return r.rdb.Del(ctx, r.key(requestID)).Err()
}

func (r *RedisStore) Status(ctx context.Context, requestID string) (Status, error) {
	val, err := r.rdb.Get(ctx, r.key(requestID)).Int()
	switch {
	case err == redis.Nil:
		return StatusUnknown, nil
	case err != nil:
		return StatusUnknown, fmt.Errorf("redis get error: %w", err)
	case val == int(StatusPending):
		return StatusPending, nil
	case val == int(StatusPublished):
		return StatusPublished, nil
	default:
		return StatusUnknown, nil
	}
}
