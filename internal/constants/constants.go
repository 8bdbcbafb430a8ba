package constants

// 订单状态
const (
	OrderStatusPending   = "pending"   // 待支付
	OrderStatusPaid      = "paid"      // 已支付
	OrderStatusShipped   = "shipped"   // 已发货
	OrderStatusCompleted = "completed" // 已完成
	OrderStatusCanceled  = "canceled"  // 已取消
)

// 事件通道（持久化、至少一次投递）
const (
	ChannelCartUpdated        = "cart-updated"
	ChannelOrderCreated       = "order-created"
	ChannelOrderStatusUpdated = "order-status-updated"
	ChannelProductCreated     = "product-created"
	ChannelProductUpdated     = "product-updated"
	ChannelProductDeleted     = "product-deleted"
	ChannelStockUpdated       = "stock-updated"
)

// QueueEvents 事件专用队列名称
const QueueEvents = "events"
