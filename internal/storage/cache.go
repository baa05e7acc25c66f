package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/LJTian/BlogHub/internal/logging"
	"github.com/redis/go-redis/v9"
)

// ListCacheTTL 列表缓存有效期；key 带 Store 版本号，写入后旧 key 自然失效
const ListCacheTTL = 5 * time.Minute

// ListCache 用 Redis 缓存计算代价较高的列表响应（带元数据的 LLM 列表等）。
// 零值或 nil 表示未启用，所有方法都安全返回
type ListCache struct {
	Redis *redis.Client
	TTL   time.Duration
}

// NewListCache addr 为空时返回 nil（不启用缓存）；ping 失败只告警，不阻塞启动
func NewListCache(addr string, logger logging.Logger) *ListCache {
	if addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.WithError(err).WithField("addr", addr).Warn("redis ping failed")
	}
	return &ListCache{Redis: rdb, TTL: ListCacheTTL}
}

// Get 命中时把缓存反序列化到 dst 并返回 true
func (c *ListCache) Get(ctx context.Context, key string, dst any) bool {
	if c == nil || c.Redis == nil {
		return false
	}
	bs, err := c.Redis.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(bs, dst) == nil
}

// Set 回写缓存，失败时静默忽略（缓存只是加速）
func (c *ListCache) Set(ctx context.Context, key string, v any) {
	if c == nil || c.Redis == nil {
		return
	}
	bs, err := json.Marshal(v)
	if err != nil {
		return
	}
	ttl := c.TTL
	if ttl <= 0 {
		ttl = ListCacheTTL
	}
	_ = c.Redis.Set(ctx, key, bs, ttl).Err()
}
