package cache

import (
	"context"
	"time"

	"github.com/litemall-next/internal/logger"
)

// Fetch 缓存旁路读取：命中直接返回；未命中或缓存不可用（降级放行，仅记日志）
// 走 load 回源。非空结果按 ttl 回填缓存，空结果只返回不缓存，避免把"暂无数据"
// 固化到过期为止。load 的第二个返回值标记结果是否非空。
func Fetch[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, load func(ctx context.Context) (T, bool, error)) (T, error) {
	var zero T
	if c.Enabled() {
		var cached T
		hit, err := c.GetJSON(ctx, key, &cached)
		if err != nil {
			logger.Warnw("cache_get_failed_fall_through", "key", key, "error", err)
		} else if hit {
			return cached, nil
		}
	}

	value, nonEmpty, err := load(ctx)
	if err != nil {
		return zero, err
	}
	if nonEmpty && c.Enabled() {
		if err := c.SetJSON(ctx, key, value, ttl); err != nil {
			logger.Warnw("cache_set_failed", "key", key, "error", err)
		}
	}
	return value, nil
}
