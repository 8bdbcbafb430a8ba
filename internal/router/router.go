package router

import (
	"github.com/litemall-next/internal/config"
	"github.com/litemall-next/internal/http/handlers"
	"github.com/litemall-next/internal/http/response"
	"github.com/litemall-next/internal/logger"
	"github.com/litemall-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	handler := handlers.New(c)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))

	r.GET("/healthz", func(c *gin.Context) {
		response.Success(c, gin.H{"status": "ok"})
	})

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		products := apiV1.Group("/products")
		{
			products.GET("", handler.ListProducts)
			products.GET("/:id", handler.GetProduct)
			products.POST("", handler.CreateProduct)
			products.PUT("/:id", handler.UpdateProduct)
			products.DELETE("/:id", handler.DeleteProduct)
			products.POST("/:id/reserve", handler.ReserveStock)
			products.POST("/:id/restock", handler.Restock)
		}

		carts := apiV1.Group("/carts")
		{
			carts.GET("/:user_id", handler.GetCart)
			carts.POST("/:user_id/items", handler.AddCartItem)
			carts.DELETE("/:user_id", handler.ClearCart)
		}
		cartItems := apiV1.Group("/cart-items")
		{
			cartItems.PUT("/:id", handler.UpdateCartItem)
			cartItems.DELETE("/:id", handler.RemoveCartItem)
		}

		orders := apiV1.Group("/orders")
		{
			orders.POST("", handler.CreateOrder)
			orders.GET("", handler.ListOrders)
			orders.GET("/:id", handler.GetOrder)
			orders.PUT("/:id/status", handler.UpdateOrderStatus)
		}
		apiV1.GET("/users/:user_id/orders", handler.ListUserOrders)
	}

	return r
}
