package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/litemall-next/internal/config"
	"github.com/litemall-next/internal/constants"
	"github.com/litemall-next/internal/logger"
	"github.com/litemall-next/internal/models"

	"github.com/hibiken/asynq"
)

const (
	defaultPublishTimeout = 2 * time.Second
	defaultMaxRetry       = 25
)

// Client 事件发布客户端。事件落在持久化的 events 队列上，投递语义为
// 至少一次：发布方不等待消费确认，消费失败由队列按退避策略重投。
type Client struct {
	client         *asynq.Client
	enabled        bool
	queue          string
	publishTimeout time.Duration
	maxRetry       int
}

// NewClient 创建事件发布客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{enabled: false, queue: constants.QueueEvents}, nil
	}
	opt := buildRedisOpt(cfg)
	maxRetry := defaultMaxRetry
	if cfg.MaxRetry > 0 {
		maxRetry = cfg.MaxRetry
	}
	return &Client{
		client:         asynq.NewClient(opt),
		enabled:        true,
		queue:          constants.QueueEvents,
		publishTimeout: millisOr(cfg.PublishTimeoutMS, defaultPublishTimeout),
		maxRetry:       maxRetry,
	}, nil
}

// Enabled 判断是否启用
func (c *Client) Enabled() bool {
	return c != nil && c.enabled && c.client != nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// PublishCartUpdated 发布购物车变更事件
func (c *Client) PublishCartUpdated(ctx context.Context, payload CartUpdatedPayload) error {
	return c.publish(ctx, ChannelCartUpdated, payload)
}

// PublishOrderCreated 发布订单创建事件
func (c *Client) PublishOrderCreated(ctx context.Context, order models.Order) error {
	return c.publish(ctx, ChannelOrderCreated, OrderCreatedPayload{Order: order})
}

// PublishOrderStatusUpdated 发布订单状态变更事件
func (c *Client) PublishOrderStatusUpdated(ctx context.Context, orderID uint, status string) error {
	return c.publish(ctx, ChannelOrderStatusUpdated, OrderStatusUpdatedPayload{OrderID: orderID, Status: status})
}

// PublishProductCreated 发布商品创建事件
func (c *Client) PublishProductCreated(ctx context.Context, product models.Product) error {
	return c.publish(ctx, ChannelProductCreated, ProductPayload{Product: product})
}

// PublishProductUpdated 发布商品更新事件
func (c *Client) PublishProductUpdated(ctx context.Context, product models.Product) error {
	return c.publish(ctx, ChannelProductUpdated, ProductPayload{Product: product})
}

// PublishProductDeleted 发布商品删除事件
func (c *Client) PublishProductDeleted(ctx context.Context, productID uint) error {
	return c.publish(ctx, ChannelProductDeleted, ProductDeletedPayload{ProductID: productID})
}

// PublishStockUpdated 发布库存变更事件
func (c *Client) PublishStockUpdated(ctx context.Context, payload StockUpdatedPayload) error {
	return c.publish(ctx, ChannelStockUpdated, payload)
}

// publish 序列化载荷并入队。队列不可达时错误直接上抛，由调用方决定降级方式；
// 触发事件的数据库写入已经提交，不因发布失败回滚。
func (c *Client) publish(ctx context.Context, channel string, payload interface{}) error {
	if !c.Enabled() {
		logger.Debugw("event_publish_skipped_queue_disabled", "channel", channel)
		return nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", channel, err)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := c.publishTimeout
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	task := asynq.NewTask(channel, body)
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue), asynq.MaxRetry(c.maxRetry))
	if err != nil {
		return fmt.Errorf("publish %s: %w", channel, err)
	}
	return nil
}

// BuildServerConfig 生成事件消费端配置
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	opt := buildRedisOpt(cfg)
	concurrency := 10
	if cfg != nil && cfg.Concurrency > 0 {
		concurrency = cfg.Concurrency
	}
	queues := map[string]int{constants.QueueEvents: 10}
	if cfg != nil && len(cfg.Queues) > 0 {
		queues = cfg.Queues
	}
	return opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      queues,
	}
}

func buildRedisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	host := "127.0.0.1"
	port := 6379
	password := ""
	db := 0
	if cfg != nil {
		if strings.TrimSpace(cfg.Host) != "" {
			host = strings.TrimSpace(cfg.Host)
		}
		if cfg.Port > 0 {
			port = cfg.Port
		}
		password = cfg.Password
		db = cfg.DB
	}
	return asynq.RedisClientOpt{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	}
}

func millisOr(ms int, fallback time.Duration) time.Duration {
	if ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}
