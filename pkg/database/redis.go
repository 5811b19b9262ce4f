// Package database 负责初始化外部存储的客户端连接。
package database

import (
	"context"

	"github.com/go-redis/redis/v8"

	"learning-compass-go/internal/config"
	"learning-compass-go/pkg/log"
)

var RDB *redis.Client

// InitRedis 按配置初始化响应缓存使用的 Redis 客户端连接。
// 连接不可达视为部署错误，直接终止进程。
func InitRedis(cfg config.RedisConfig) {
	RDB = redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := RDB.Ping(context.Background()).Err(); err != nil {
		log.Fatal("failed to connect to redis", err)
	}

	log.Info("Redis client connected successfully")
}
