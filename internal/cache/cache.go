package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/litemall-next/internal/config"

	"github.com/redis/go-redis/v9"
)

const defaultOpTimeout = 500 * time.Millisecond

// Store 缓存后端能力接口
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Cache 显式持有的缓存客户端句柄，由 provider 构建并注入各服务
type Cache struct {
	store     Store
	prefix    string
	opTimeout time.Duration
}

// New 基于 Redis 创建缓存客户端；未启用时返回 nil，读写全部走数据库
func New(cfg *config.RedisConfig) *Cache {
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	addr := strings.TrimSpace(cfg.Host)
	if addr == "" {
		addr = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	client := redis.NewClient(&redis.Options{
		Addr:            fmt.Sprintf("%s:%d", addr, port),
		Password:        cfg.Password,
		DB:              cfg.DB,
		DialTimeout:     millisOr(cfg.DialTimeoutMS, 2*time.Second),
		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: millisOr(cfg.MinRetryBackMS, 50*time.Millisecond),
	})
	prefix := strings.TrimSpace(cfg.Prefix)
	if prefix == "" {
		prefix = "lm"
	}
	return &Cache{
		store:     &redisStore{client: client},
		prefix:    prefix,
		opTimeout: millisOr(cfg.OpTimeoutMS, defaultOpTimeout),
	}
}

// NewWithStore 基于自定义后端创建缓存客户端
func NewWithStore(store Store, prefix string) *Cache {
	if store == nil {
		return nil
	}
	if strings.TrimSpace(prefix) == "" {
		prefix = "lm"
	}
	return &Cache{store: store, prefix: prefix, opTimeout: defaultOpTimeout}
}

// Enabled 判断缓存是否可用
func (c *Cache) Enabled() bool {
	return c != nil && c.store != nil
}

// GetJSON 获取 JSON 缓存，返回是否命中
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	val, ok, err := c.store.Get(ctx, c.buildKey(key))
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON 写入 JSON 缓存
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.Enabled() {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.store.Set(ctx, c.buildKey(key), string(payload), ttl)
}

// Del 删除缓存。删除失败意味着可能残留脏缓存，错误必须上抛给调用方。
func (c *Cache) Del(ctx context.Context, key string) error {
	if !c.Enabled() {
		return nil
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.store.Del(ctx, c.buildKey(key))
}

func (c *Cache) buildKey(key string) string {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return c.prefix
	}
	return fmt.Sprintf("%s:%s", c.prefix, trimmed)
}

func (c *Cache) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := c.opTimeout
	if timeout <= 0 {
		timeout = defaultOpTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

func millisOr(ms int, fallback time.Duration) time.Duration {
	if ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}

// redisStore Redis 后端实现
type redisStore struct {
	client *redis.Client
}

func (s *redisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *redisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *redisStore) Del(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
