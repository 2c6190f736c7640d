package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bookvine/internal/config"

	"github.com/redis/go-redis/v9"
)

// store 进程级 Redis 接入点。未启用时各入口安全降级，
// 纯数据库部署无需改动调用方。
var store struct {
	client *redis.Client
	prefix string
}

// InitRedis 初始化 Redis 连接；cfg 未启用时置空并返回 nil。
func InitRedis(cfg *config.RedisConfig) error {
	if cfg == nil || !cfg.Enabled {
		store.client = nil
		return nil
	}

	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	store.prefix = strings.TrimSpace(cfg.Prefix)
	if store.prefix == "" {
		store.prefix = "bv"
	}

	store.client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return nil
}

// Client 暴露原生客户端，供限流脚本直接执行
func Client() *redis.Client {
	return store.client
}

// Prefix 业务 key 前缀
func Prefix() string {
	return store.prefix
}

// GetJSON 读出并反序列化缓存，miss 返回 (false, nil)
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if store.client == nil {
		return false, nil
	}
	raw, err := store.client.Get(ctx, fullKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON 序列化并写入缓存
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if store.client == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return store.client.Set(ctx, fullKey(key), payload, ttl).Err()
}

func fullKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return store.prefix
	}
	return store.prefix + ":" + key
}
