package queue

import (
	"github.com/litemall-next/internal/constants"
	"github.com/litemall-next/internal/models"
)

// 通道名即任务类型，发布与订阅两侧共用
const (
	ChannelCartUpdated        = constants.ChannelCartUpdated
	ChannelOrderCreated       = constants.ChannelOrderCreated
	ChannelOrderStatusUpdated = constants.ChannelOrderStatusUpdated
	ChannelProductCreated     = constants.ChannelProductCreated
	ChannelProductUpdated     = constants.ChannelProductUpdated
	ChannelProductDeleted     = constants.ChannelProductDeleted
	ChannelStockUpdated       = constants.ChannelStockUpdated
)

// CartUpdatedPayload 购物车变更事件载荷
type CartUpdatedPayload struct {
	UserID string           `json:"user_id"`
	Item   *models.CartItem `json:"item,omitempty"` // 变更后的购物车项，清空购物车时为空
}

// OrderCreatedPayload 订单创建事件载荷
type OrderCreatedPayload struct {
	Order models.Order `json:"order"`
}

// OrderStatusUpdatedPayload 订单状态变更事件载荷
type OrderStatusUpdatedPayload struct {
	OrderID uint   `json:"order_id"`
	Status  string `json:"status"`
}

// ProductPayload 商品创建/更新事件载荷
type ProductPayload struct {
	Product models.Product `json:"product"`
}

// ProductDeletedPayload 商品删除事件载荷
type ProductDeletedPayload struct {
	ProductID uint `json:"product_id"`
}

// StockUpdatedPayload 库存变更事件载荷
type StockUpdatedPayload struct {
	ProductID     uint `json:"product_id"`
	Quantity      int  `json:"quantity"`       // 本次变更量（扣减为负）
	StockQuantity int  `json:"stock_quantity"` // 变更后的库存
}
