package provider

import (
	"github.com/litemall-next/internal/cache"
	"github.com/litemall-next/internal/config"
	"github.com/litemall-next/internal/logger"
	"github.com/litemall-next/internal/queue"
	"github.com/litemall-next/internal/repository"
	"github.com/litemall-next/internal/service"

	"gorm.io/gorm"
)

// Container 服务容器，持有全部仓储与服务实例
type Container struct {
	Config *config.Config
	DB     *gorm.DB

	Cache       *cache.Cache
	QueueClient *queue.Client

	CartRepo    repository.CartRepository
	ProductRepo repository.ProductRepository
	OrderRepo   repository.OrderRepository

	CartService    *service.CartService
	ProductService *service.ProductService
	OrderService   *service.OrderService
}

// NewContainer 创建并装配服务容器
func NewContainer(cfg *config.Config, db *gorm.DB) *Container {
	c := &Container{Config: cfg, DB: db}

	c.Cache = cache.New(&cfg.Redis)

	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
	} else {
		c.QueueClient = queueClient
	}

	c.CartRepo = repository.NewCartRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)

	ttl := cfg.Cache.TTL()
	c.CartService = service.NewCartService(c.CartRepo, c.ProductRepo, c.Cache, c.QueueClient, ttl)
	c.ProductService = service.NewProductService(c.ProductRepo, c.Cache, c.QueueClient, ttl)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.ProductRepo, c.Cache, c.QueueClient)

	return c
}

// Close 释放容器持有的外部连接
func (c *Container) Close() error {
	if c.QueueClient != nil {
		return c.QueueClient.Close()
	}
	return nil
}
