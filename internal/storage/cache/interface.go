package cache

import (
	"context"
	"time"
)

// Cache 响应缓存接口，按 prompt 哈希缓存 LLM 输出
type Cache interface {
	// Get 获取缓存值，未命中返回 ErrCacheMiss
	Get(ctx context.Context, key string) (string, error)
	// Set 写入缓存，ttl 为 0 时永不过期
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	// Delete 删除缓存
	Delete(ctx context.Context, key string) error
	// Close 关闭连接
	Close() error
}

// Config 缓存配置
type Config struct {
	Type     string        `yaml:"type"` // memory | redis
	Addr     string        `yaml:"addr"`
	DB       int           `yaml:"db"`
	Password string        `yaml:"password"`
	TTL      time.Duration `yaml:"ttl"`
}

// New 按配置创建缓存
func New(config Config) (Cache, error) {
	switch config.Type {
	case "redis":
		return NewRedisCache(config)
	default:
		return NewMemoryCache(), nil
	}
}
