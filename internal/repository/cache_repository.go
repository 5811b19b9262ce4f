// Package repository 提供了数据访问层的实现。
package repository

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"learning-compass-go/pkg/log"
)

// CacheRepository 定义了响应缓存的操作接口。
// 概念解释和公式生成对相同输入是幂等的，命中缓存可以完全跳过上游调用。
// 缓存不可用或未命中都只是回源，绝不让请求失败。
type CacheRepository interface {
	// GetJSON 查找 key 并反序列化到 v。命中返回 true。
	GetJSON(ctx context.Context, key string, v any) bool
	// SetJSON 序列化 v 并以配置的 TTL 写入。失败只记录，不传播。
	SetJSON(ctx context.Context, key string, v any)
}

type redisCacheRepository struct {
	redisClient *redis.Client
	ttl         time.Duration
}

// NewCacheRepository 创建一个基于 Redis 的 CacheRepository。
func NewCacheRepository(redisClient *redis.Client, ttl time.Duration) CacheRepository {
	return &redisCacheRepository{redisClient: redisClient, ttl: ttl}
}

// GetJSON 从 Redis 获取缓存条目。
func (r *redisCacheRepository) GetJSON(ctx context.Context, key string, v any) bool {
	data, err := r.redisClient.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	if json.Unmarshal([]byte(data), v) != nil {
		return false
	}
	log.Debugf("缓存命中: %s", key)
	return true
}

// SetJSON 将缓存条目写入 Redis。
func (r *redisCacheRepository) SetJSON(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = r.redisClient.Set(ctx, key, data, r.ttl).Err()
}

// CacheKey 由命名空间和输入内容派生出稳定的缓存键。
func CacheKey(namespace string, parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%s:%x", namespace, h.Sum(nil))
}

// NopCache 是缓存被禁用时使用的空实现。
type NopCache struct{}

// GetJSON 永远未命中。
func (NopCache) GetJSON(ctx context.Context, key string, v any) bool { return false }

// SetJSON 丢弃写入。
func (NopCache) SetJSON(ctx context.Context, key string, v any) {}
