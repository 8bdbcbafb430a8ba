package service

import (
	"context"
	"errors"

	"github.com/litemall-next/internal/logger"
	"github.com/litemall-next/internal/models"
	"github.com/litemall-next/internal/queue"
)

// 业务预期内的结果以哨兵错误表达，handler 用 errors.Is 映射响应码
var (
	ErrUserIDRequired      = errors.New("user id required")
	ErrInvalidQuantity     = errors.New("quantity must be positive")
	ErrProductNotFound     = errors.New("product not found")
	ErrProductNotAvailable = errors.New("product not available")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrCartItemNotFound    = errors.New("cart item not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderEmpty          = errors.New("order has no items")
	ErrOrderStatusInvalid  = errors.New("invalid order status transition")
	ErrInvalidProduct      = errors.New("invalid product fields")
)

// 次级告警类型
const (
	WarnKindCacheInvalidate = "cache_invalidate"
	WarnKindEventPublish    = "event_publish"
)

// Warning 主写入成功后的次级降级告警。缓存失效失败或事件发布失败都不回滚
// 已提交的数据库写入，只作为告警随主结果一并返回。
type Warning struct {
	Kind    string `json:"kind"`    // cache_invalidate / event_publish
	Subject string `json:"subject"` // 缓存键或事件通道
	Err     error  `json:"-"`
}

// Message 告警描述
func (w Warning) Message() string {
	if w.Err == nil {
		return w.Kind + ": " + w.Subject
	}
	return w.Kind + ": " + w.Subject + ": " + w.Err.Error()
}

// EventPublisher 事件发布端口，由 queue.Client 实现
type EventPublisher interface {
	PublishCartUpdated(ctx context.Context, payload queue.CartUpdatedPayload) error
	PublishOrderCreated(ctx context.Context, order models.Order) error
	PublishOrderStatusUpdated(ctx context.Context, orderID uint, status string) error
	PublishProductCreated(ctx context.Context, product models.Product) error
	PublishProductUpdated(ctx context.Context, product models.Product) error
	PublishProductDeleted(ctx context.Context, productID uint) error
	PublishStockUpdated(ctx context.Context, payload queue.StockUpdatedPayload) error
}

func cacheWarn(key string, err error) Warning {
	logger.Errorw("cache_invalidate_failed_stale_risk", "key", key, "error", err)
	return Warning{Kind: WarnKindCacheInvalidate, Subject: key, Err: err}
}

func publishWarn(channel string, err error) Warning {
	logger.Warnw("event_publish_failed", "channel", channel, "error", err)
	return Warning{Kind: WarnKindEventPublish, Subject: channel, Err: err}
}
