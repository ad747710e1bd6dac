package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/Ghilba812/ORSPost/internal/config"
	"github.com/Ghilba812/ORSPost/internal/logger"
	"github.com/Ghilba812/ORSPost/internal/metrics"
	"github.com/Ghilba812/ORSPost/internal/model"
)

// RedisCache 位于持久缓存之前的读穿/写穿层。
// 键不设过期时间，与底层持久缓存语义一致；Redis 故障只记录日志，请求回落到底层缓存。
type RedisCache struct {
	rdb   redis.Cmdable
	inner CacheStore
}

// NewRedisCache 创建 Redis 缓存层
func NewRedisCache(rdb redis.Cmdable, inner CacheStore) *RedisCache {
	return &RedisCache{rdb: rdb, inner: inner}
}

// OpenRedis 按配置打开 Redis 客户端；未配置地址时返回 nil
func OpenRedis(cfg config.RedisConfig) *redis.Client {
	if !cfg.Enabled() {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
}

// Lookup 先查 Redis，未命中再查底层缓存并回填
func (c *RedisCache) Lookup(ctx context.Context, key model.CacheKey) (*model.Geometry, error) {
	k := key.String()
	b, err := c.rdb.Get(ctx, k).Bytes()
	switch {
	case err == nil:
		var g model.Geometry
		if err := json.Unmarshal(b, &g); err == nil && !g.IsEmpty() {
			return &g, nil
		}
		logger.L().Warn("redis_cache_corrupt", "key", k)
	case errors.Is(err, redis.Nil):
	default:
		metrics.RedisErrorsTotal.Inc()
		logger.L().Warn("redis_get_error", "key", k, "err", err)
	}

	g, err := c.inner.Lookup(ctx, key)
	if err != nil || g == nil {
		return g, err
	}
	c.set(ctx, k, *g)
	return g, nil
}

// Upsert 先写底层缓存，成功后覆盖 Redis
func (c *RedisCache) Upsert(ctx context.Context, key model.CacheKey, geom model.Geometry) (*model.Geometry, error) {
	g, err := c.inner.Upsert(ctx, key, geom)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key.String(), *g)
	return g, nil
}

func (c *RedisCache) set(ctx context.Context, k string, g model.Geometry) {
	b, err := json.Marshal(g)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, k, b, 0).Err(); err != nil {
		metrics.RedisErrorsTotal.Inc()
		logger.L().Warn("redis_set_error", "key", k, "err", err)
	}
}
