package handlers

import (
	"strconv"

	"github.com/litemall-next/internal/http/response"
	"github.com/litemall-next/internal/repository"
	"github.com/litemall-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateOrderRequest 创建订单请求
type CreateOrderRequest struct {
	UserID string                   `json:"user_id" binding:"required"`
	Items  []CreateOrderItemRequest `json:"items" binding:"required"`
}

// CreateOrderItemRequest 订单行请求
type CreateOrderItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// UpdateOrderStatusRequest 更新订单状态请求
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CreateOrder 创建订单
func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	items := make([]service.CreateOrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.CreateOrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	order, warnings, err := h.OrderService.Create(c.Request.Context(), service.CreateOrderInput{
		UserID: req.UserID,
		Items:  items,
	})
	if err != nil {
		respondServiceError(c, err, "failed to create order")
		return
	}
	response.SuccessWithWarnings(c, order, toResponseWarnings(warnings))
}

// ListUserOrders 获取用户订单列表
func (h *Handler) ListUserOrders(c *gin.Context) {
	userID := c.Param("user_id")
	orders, err := h.OrderService.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "failed to fetch orders")
		return
	}
	response.Success(c, gin.H{"items": orders})
}

// ListOrders 按条件查询订单
func (h *Handler) ListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	filter := repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   c.Query("user_id"),
		Status:   c.Query("status"),
	}
	orders, total, err := h.OrderService.List(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err, "failed to fetch orders")
		return
	}
	totalPage := int64(0)
	if filter.PageSize > 0 {
		totalPage = (total + int64(filter.PageSize) - 1) / int64(filter.PageSize)
	}
	response.SuccessWithPage(c, orders, response.Pagination{
		Page:      filter.Page,
		PageSize:  filter.PageSize,
		Total:     total,
		TotalPage: totalPage,
	})
}

// GetOrder 获取订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "failed to fetch order")
		return
	}
	response.Success(c, order)
}

// UpdateOrderStatus 更新订单状态
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	order, warnings, err := h.OrderService.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondServiceError(c, err, "failed to update order status")
		return
	}
	response.SuccessWithWarnings(c, order, toResponseWarnings(warnings))
}
