package handlers

import (
	"github.com/litemall-next/internal/http/response"
	"github.com/litemall-next/internal/service"

	"github.com/gin-gonic/gin"
)

// AddCartItemRequest 添加购物车项请求
type AddCartItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// UpdateCartItemRequest 更新购物车项请求
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// GetCart 获取用户购物车
func (h *Handler) GetCart(c *gin.Context) {
	userID := c.Param("user_id")
	items, err := h.CartService.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "failed to fetch cart")
		return
	}
	response.Success(c, gin.H{"items": items})
}

// AddCartItem 添加购物车项；同商品重复添加时累加数量
func (h *Handler) AddCartItem(c *gin.Context) {
	userID := c.Param("user_id")
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	item, warnings, err := h.CartService.AddItem(c.Request.Context(), service.AddCartItemInput{
		UserID:    userID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		respondServiceError(c, err, "failed to add cart item")
		return
	}
	response.SuccessWithWarnings(c, item, toResponseWarnings(warnings))
}

// UpdateCartItem 更新购物车项数量
func (h *Handler) UpdateCartItem(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	item, warnings, err := h.CartService.UpdateItem(c.Request.Context(), id, req.Quantity)
	if err != nil {
		respondServiceError(c, err, "failed to update cart item")
		return
	}
	response.SuccessWithWarnings(c, item, toResponseWarnings(warnings))
}

// RemoveCartItem 删除购物车项
func (h *Handler) RemoveCartItem(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	warnings, err := h.CartService.RemoveItem(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "failed to remove cart item")
		return
	}
	response.SuccessWithWarnings(c, gin.H{"deleted": true}, toResponseWarnings(warnings))
}

// ClearCart 清空用户购物车
func (h *Handler) ClearCart(c *gin.Context) {
	userID := c.Param("user_id")
	warnings, err := h.CartService.Clear(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "failed to clear cart")
		return
	}
	response.SuccessWithWarnings(c, gin.H{"cleared": true}, toResponseWarnings(warnings))
}
