package handlers

import (
	"strconv"

	"github.com/litemall-next/internal/http/response"
	"github.com/litemall-next/internal/models"
	"github.com/litemall-next/internal/repository"
	"github.com/litemall-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ProductRequest 商品创建/更新请求
type ProductRequest struct {
	Name          string       `json:"name" binding:"required"`
	Description   string       `json:"description"`
	Price         models.Money `json:"price"`
	StockQuantity int          `json:"stock_quantity"`
	IsActive      *bool        `json:"is_active"`
}

// StockRequest 库存预占/补充请求
type StockRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// ListProducts 获取在售商品列表
func (h *Handler) ListProducts(c *gin.Context) {
	if c.Query("search") != "" || c.Query("page") != "" {
		h.searchProducts(c)
		return
	}
	products, err := h.ProductService.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "failed to fetch products")
		return
	}
	response.Success(c, gin.H{"items": products})
}

func (h *Handler) searchProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	filter := repository.ProductListFilter{
		Page:       page,
		PageSize:   pageSize,
		Search:     c.Query("search"),
		OnlyActive: c.DefaultQuery("only_active", "true") != "false",
	}
	products, total, err := h.ProductService.Search(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err, "failed to fetch products")
		return
	}
	totalPage := int64(0)
	if filter.PageSize > 0 {
		totalPage = (total + int64(filter.PageSize) - 1) / int64(filter.PageSize)
	}
	response.SuccessWithPage(c, products, response.Pagination{
		Page:      filter.Page,
		PageSize:  filter.PageSize,
		Total:     total,
		TotalPage: totalPage,
	})
}

// GetProduct 获取商品详情
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	product, err := h.ProductService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "failed to fetch product")
		return
	}
	response.Success(c, product)
}

// CreateProduct 创建商品
func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	product, warnings, err := h.ProductService.Create(c.Request.Context(), service.ProductInput{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		IsActive:      req.IsActive,
	})
	if err != nil {
		respondServiceError(c, err, "failed to create product")
		return
	}
	response.SuccessWithWarnings(c, product, toResponseWarnings(warnings))
}

// UpdateProduct 更新商品
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	product, warnings, err := h.ProductService.Update(c.Request.Context(), id, service.ProductInput{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		IsActive:      req.IsActive,
	})
	if err != nil {
		respondServiceError(c, err, "failed to update product")
		return
	}
	response.SuccessWithWarnings(c, product, toResponseWarnings(warnings))
}

// DeleteProduct 删除商品
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	warnings, err := h.ProductService.Delete(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "failed to delete product")
		return
	}
	response.SuccessWithWarnings(c, gin.H{"deleted": true}, toResponseWarnings(warnings))
}

// ReserveStock 预占库存（条件扣减，不足则拒绝）
func (h *Handler) ReserveStock(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req StockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	product, warnings, err := h.ProductService.ReserveStock(c.Request.Context(), id, req.Quantity)
	if err != nil {
		respondServiceError(c, err, "failed to reserve stock")
		return
	}
	response.SuccessWithWarnings(c, product, toResponseWarnings(warnings))
}

// Restock 补充库存
func (h *Handler) Restock(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req StockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	product, warnings, err := h.ProductService.Restock(c.Request.Context(), id, req.Quantity)
	if err != nil {
		respondServiceError(c, err, "failed to restock")
		return
	}
	response.SuccessWithWarnings(c, product, toResponseWarnings(warnings))
}
