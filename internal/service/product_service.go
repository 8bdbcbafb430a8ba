package service

import (
	"context"
	"strings"
	"time"

	"github.com/litemall-next/internal/cache"
	"github.com/litemall-next/internal/constants"
	"github.com/litemall-next/internal/models"
	"github.com/litemall-next/internal/queue"
	"github.com/litemall-next/internal/repository"
)

// ProductInput 商品创建/更新输入
type ProductInput struct {
	Name          string
	Description   string
	Price         models.Money
	StockQuantity int
	IsActive      *bool
}

// ProductService 商品服务，含库存台账（预占/补充）
type ProductService struct {
	productRepo repository.ProductRepository
	cache       *cache.Cache
	events      EventPublisher
	cacheTTL    time.Duration
}

// NewProductService 创建商品服务
func NewProductService(productRepo repository.ProductRepository, c *cache.Cache, events EventPublisher, cacheTTL time.Duration) *ProductService {
	if cacheTTL <= 0 {
		cacheTTL = constants.DefaultCacheTTL
	}
	return &ProductService{
		productRepo: productRepo,
		cache:       c,
		events:      events,
		cacheTTL:    cacheTTL,
	}
}

// List 获取上架商品列表（缓存旁路）
func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	return cache.Fetch(ctx, s.cache, constants.ProductListCacheKey, s.cacheTTL,
		func(ctx context.Context) ([]models.Product, bool, error) {
			products, _, err := s.productRepo.List(repository.ProductListFilter{OnlyActive: true})
			if err != nil {
				return nil, false, err
			}
			return products, len(products) > 0, nil
		})
}

// Search 按条件查询商品（直连数据库，不走缓存）
func (s *ProductService) Search(ctx context.Context, filter repository.ProductListFilter) ([]models.Product, int64, error) {
	return s.productRepo.List(filter)
}

// GetByID 获取商品详情（缓存旁路）
func (s *ProductService) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	product, err := cache.Fetch(ctx, s.cache, constants.ProductCacheKey(id), s.cacheTTL,
		func(ctx context.Context) (*models.Product, bool, error) {
			p, err := s.productRepo.GetByID(id)
			if err != nil {
				return nil, false, err
			}
			return p, p != nil, nil
		})
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// Create 创建商品
func (s *ProductService) Create(ctx context.Context, input ProductInput) (*models.Product, []Warning, error) {
	if strings.TrimSpace(input.Name) == "" || input.Price.IsNegative() || input.StockQuantity < 0 {
		return nil, nil, ErrInvalidProduct
	}
	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	product := &models.Product{
		Name:          strings.TrimSpace(input.Name),
		Description:   input.Description,
		Price:         input.Price,
		StockQuantity: input.StockQuantity,
		IsActive:      active,
	}
	if err := s.productRepo.Create(product); err != nil {
		return nil, nil, err
	}

	warnings := s.invalidateProduct(ctx, product.ID)
	if s.events != nil {
		if err := s.events.PublishProductCreated(ctx, *product); err != nil {
			warnings = append(warnings, publishWarn(queue.ChannelProductCreated, err))
		}
	}
	return product, warnings, nil
}

// Update 更新商品
func (s *ProductService) Update(ctx context.Context, id uint, input ProductInput) (*models.Product, []Warning, error) {
	if strings.TrimSpace(input.Name) == "" || input.Price.IsNegative() || input.StockQuantity < 0 {
		return nil, nil, ErrInvalidProduct
	}
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, nil, err
	}
	if product == nil {
		return nil, nil, ErrProductNotFound
	}
	product.Name = strings.TrimSpace(input.Name)
	product.Description = input.Description
	product.Price = input.Price
	product.StockQuantity = input.StockQuantity
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if err := s.productRepo.Update(product); err != nil {
		return nil, nil, err
	}

	warnings := s.invalidateProduct(ctx, id)
	if s.events != nil {
		if err := s.events.PublishProductUpdated(ctx, *product); err != nil {
			warnings = append(warnings, publishWarn(queue.ChannelProductUpdated, err))
		}
	}
	return product, warnings, nil
}

// Delete 删除商品
func (s *ProductService) Delete(ctx context.Context, id uint) ([]Warning, error) {
	rows, err := s.productRepo.Delete(id)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrProductNotFound
	}

	warnings := s.invalidateProduct(ctx, id)
	if s.events != nil {
		if err := s.events.PublishProductDeleted(ctx, id); err != nil {
			warnings = append(warnings, publishWarn(queue.ChannelProductDeleted, err))
		}
	}
	return warnings, nil
}

// ReserveStock 预占库存。单条条件 UPDATE 保证并发扣减绝不把库存打成负数：
// 未命中任何行时回读区分"商品不存在"与"库存不足"，两种失败都不产生任何变更。
func (s *ProductService) ReserveStock(ctx context.Context, productID uint, quantity int) (*models.Product, []Warning, error) {
	if quantity <= 0 {
		return nil, nil, ErrInvalidQuantity
	}
	rows, err := s.productRepo.DecrementStock(productID, quantity)
	if err != nil {
		return nil, nil, err
	}
	if rows == 0 {
		product, err := s.productRepo.GetByID(productID)
		if err != nil {
			return nil, nil, err
		}
		if product == nil {
			return nil, nil, ErrProductNotFound
		}
		return nil, nil, ErrInsufficientStock
	}

	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, nil, err
	}
	warnings := s.afterStockChange(ctx, productID, -quantity, product)
	return product, warnings, nil
}

// Restock 补充库存
func (s *ProductService) Restock(ctx context.Context, productID uint, quantity int) (*models.Product, []Warning, error) {
	if quantity <= 0 {
		return nil, nil, ErrInvalidQuantity
	}
	rows, err := s.productRepo.IncrementStock(productID, quantity)
	if err != nil {
		return nil, nil, err
	}
	if rows == 0 {
		return nil, nil, ErrProductNotFound
	}
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, nil, err
	}
	warnings := s.afterStockChange(ctx, productID, quantity, product)
	return product, warnings, nil
}

// afterStockChange 库存变更已提交后的收尾：失效缓存、发布 stock-updated。
func (s *ProductService) afterStockChange(ctx context.Context, productID uint, delta int, product *models.Product) []Warning {
	warnings := s.invalidateProduct(ctx, productID)
	if s.events == nil {
		return warnings
	}
	stockAfter := 0
	if product != nil {
		stockAfter = product.StockQuantity
	}
	payload := queue.StockUpdatedPayload{
		ProductID:     productID,
		Quantity:      delta,
		StockQuantity: stockAfter,
	}
	if err := s.events.PublishStockUpdated(ctx, payload); err != nil {
		warnings = append(warnings, publishWarn(queue.ChannelStockUpdated, err))
	}
	return warnings
}

func (s *ProductService) invalidateProduct(ctx context.Context, productID uint) []Warning {
	var warnings []Warning
	for _, key := range []string{constants.ProductCacheKey(productID), constants.ProductListCacheKey} {
		if err := s.cache.Del(ctx, key); err != nil {
			warnings = append(warnings, cacheWarn(key, err))
		}
	}
	return warnings
}
