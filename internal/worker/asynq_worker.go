package worker

import (
	"context"
	"encoding/json"

	"github.com/litemall-next/internal/constants"
	"github.com/litemall-next/internal/logger"
	"github.com/litemall-next/internal/provider"
	"github.com/litemall-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 事件消费者。所有处理函数幂等：同一事件重复投递时
// 重复执行不改变最终状态，返回 error 触发重投。
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册全部事件通道
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.ChannelCartUpdated, c.handleCartUpdated)
	mux.HandleFunc(queue.ChannelOrderCreated, c.handleOrderCreated)
	mux.HandleFunc(queue.ChannelOrderStatusUpdated, c.handleOrderStatusUpdated)
	mux.HandleFunc(queue.ChannelProductCreated, c.handleProductCreated)
	mux.HandleFunc(queue.ChannelProductUpdated, c.handleProductUpdated)
	mux.HandleFunc(queue.ChannelProductDeleted, c.handleProductDeleted)
	mux.HandleFunc(queue.ChannelStockUpdated, c.handleStockUpdated)
}

func (c *Consumer) handleCartUpdated(_ context.Context, task *asynq.Task) error {
	var payload queue.CartUpdatedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_cart_updated_unmarshal_failed", "error", err)
		return err
	}
	logger.Infow("worker_cart_updated", "user_id", payload.UserID, "has_item", payload.Item != nil)
	return nil
}

// handleOrderCreated 下单成功后清空用户购物车并失效其缓存
func (c *Consumer) handleOrderCreated(ctx context.Context, task *asynq.Task) error {
	var payload queue.OrderCreatedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_created_unmarshal_failed", "error", err)
		return err
	}
	userID := payload.Order.UserID
	if userID == "" {
		logger.Debugw("worker_order_created_skip_empty_user", "order_id", payload.Order.ID)
		return nil
	}
	rows, err := c.CartRepo.ClearByUser(userID)
	if err != nil {
		logger.Warnw("worker_order_created_clear_cart_failed", "user_id", userID, "error", err)
		return err
	}
	if err := c.Cache.Del(ctx, constants.CartCacheKey(userID)); err != nil {
		logger.Warnw("worker_order_created_invalidate_cart_failed", "user_id", userID, "error", err)
		return err
	}
	logger.Infow("worker_order_created_cart_cleared",
		"order_id", payload.Order.ID,
		"order_no", payload.Order.OrderNo,
		"user_id", userID,
		"rows", rows,
	)
	return nil
}

func (c *Consumer) handleOrderStatusUpdated(_ context.Context, task *asynq.Task) error {
	var payload queue.OrderStatusUpdatedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_status_updated_unmarshal_failed", "error", err)
		return err
	}
	logger.Infow("worker_order_status_updated", "order_id", payload.OrderID, "status", payload.Status)
	return nil
}

func (c *Consumer) handleProductCreated(_ context.Context, task *asynq.Task) error {
	var payload queue.ProductPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_product_created_unmarshal_failed", "error", err)
		return err
	}
	logger.Infow("worker_product_created", "product_id", payload.Product.ID, "name", payload.Product.Name)
	return nil
}

// handleProductUpdated 商品变更后失效商品缓存，兜底发布侧失效失败造成的脏缓存
func (c *Consumer) handleProductUpdated(ctx context.Context, task *asynq.Task) error {
	var payload queue.ProductPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_product_updated_unmarshal_failed", "error", err)
		return err
	}
	if payload.Product.ID == 0 {
		logger.Debugw("worker_product_updated_skip_invalid_payload")
		return nil
	}
	return c.invalidateProductCache(ctx, payload.Product.ID)
}

// handleProductDeleted 商品删除后移除引用它的购物车项并失效相关用户的购物车缓存
func (c *Consumer) handleProductDeleted(ctx context.Context, task *asynq.Task) error {
	var payload queue.ProductDeletedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_product_deleted_unmarshal_failed", "error", err)
		return err
	}
	if payload.ProductID == 0 {
		logger.Debugw("worker_product_deleted_skip_invalid_payload")
		return nil
	}
	userIDs, err := c.CartRepo.ListUserIDsByProduct(payload.ProductID)
	if err != nil {
		logger.Warnw("worker_product_deleted_list_users_failed", "product_id", payload.ProductID, "error", err)
		return err
	}
	rows, err := c.CartRepo.DeleteByProduct(payload.ProductID)
	if err != nil {
		logger.Warnw("worker_product_deleted_remove_cart_items_failed", "product_id", payload.ProductID, "error", err)
		return err
	}
	for _, userID := range userIDs {
		if err := c.Cache.Del(ctx, constants.CartCacheKey(userID)); err != nil {
			logger.Warnw("worker_product_deleted_invalidate_cart_failed",
				"product_id", payload.ProductID,
				"user_id", userID,
				"error", err,
			)
			return err
		}
	}
	if err := c.invalidateProductCache(ctx, payload.ProductID); err != nil {
		return err
	}
	logger.Infow("worker_product_deleted_carts_cleaned",
		"product_id", payload.ProductID,
		"cart_rows", rows,
		"users", len(userIDs),
	)
	return nil
}

func (c *Consumer) handleStockUpdated(ctx context.Context, task *asynq.Task) error {
	var payload queue.StockUpdatedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_stock_updated_unmarshal_failed", "error", err)
		return err
	}
	if payload.ProductID == 0 {
		logger.Debugw("worker_stock_updated_skip_invalid_payload")
		return nil
	}
	logger.Infow("worker_stock_updated",
		"product_id", payload.ProductID,
		"quantity", payload.Quantity,
		"stock_quantity", payload.StockQuantity,
	)
	return c.invalidateProductCache(ctx, payload.ProductID)
}

func (c *Consumer) invalidateProductCache(ctx context.Context, productID uint) error {
	if err := c.Cache.Del(ctx, constants.ProductCacheKey(productID)); err != nil {
		logger.Warnw("worker_invalidate_product_failed", "product_id", productID, "error", err)
		return err
	}
	if err := c.Cache.Del(ctx, constants.ProductListCacheKey); err != nil {
		logger.Warnw("worker_invalidate_product_list_failed", "product_id", productID, "error", err)
		return err
	}
	return nil
}
