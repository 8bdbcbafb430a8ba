package service

import (
	"context"
	"time"

	"github.com/litemall-next/internal/cache"
	"github.com/litemall-next/internal/constants"
	"github.com/litemall-next/internal/models"
	"github.com/litemall-next/internal/queue"
	"github.com/litemall-next/internal/repository"
)

// AddCartItemInput 添加购物车项输入
type AddCartItemInput struct {
	UserID    string
	ProductID uint
	Quantity  int
}

// CartService 购物车服务
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	cache       *cache.Cache
	events      EventPublisher
	cacheTTL    time.Duration
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, c *cache.Cache, events EventPublisher, cacheTTL time.Duration) *CartService {
	if cacheTTL <= 0 {
		cacheTTL = constants.DefaultCacheTTL
	}
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		cache:       c,
		events:      events,
		cacheTTL:    cacheTTL,
	}
}

// ListByUser 获取用户购物车（缓存旁路，空购物车不缓存）
func (s *CartService) ListByUser(ctx context.Context, userID string) ([]models.CartItem, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	return cache.Fetch(ctx, s.cache, constants.CartCacheKey(userID), s.cacheTTL,
		func(ctx context.Context) ([]models.CartItem, bool, error) {
			items, err := s.cartRepo.ListByUser(userID)
			if err != nil {
				return nil, false, err
			}
			return items, len(items) > 0, nil
		})
}

// GetByID 根据 ID 获取购物车项
func (s *CartService) GetByID(ctx context.Context, id uint) (*models.CartItem, error) {
	item, err := s.cartRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrCartItemNotFound
	}
	return item, nil
}

// AddItem 添加购物车项。同一 (user, product) 已存在时累加数量，
// 单价取商品当前价格快照。
func (s *CartService) AddItem(ctx context.Context, input AddCartItemInput) (*models.CartItem, []Warning, error) {
	if input.UserID == "" {
		return nil, nil, ErrUserIDRequired
	}
	if input.Quantity <= 0 {
		return nil, nil, ErrInvalidQuantity
	}
	product, err := s.productRepo.GetByID(input.ProductID)
	if err != nil {
		return nil, nil, err
	}
	if product == nil {
		return nil, nil, ErrProductNotFound
	}
	if !product.IsActive {
		return nil, nil, ErrProductNotAvailable
	}

	now := time.Now()
	item := &models.CartItem{
		UserID:    input.UserID,
		ProductID: input.ProductID,
		Quantity:  input.Quantity,
		UnitPrice: product.Price,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.cartRepo.AddQuantity(item); err != nil {
		return nil, nil, err
	}

	warnings := s.afterCartMutation(ctx, input.UserID, item)
	return item, warnings, nil
}

// UpdateItem 更新购物车项数量
func (s *CartService) UpdateItem(ctx context.Context, id uint, quantity int) (*models.CartItem, []Warning, error) {
	if quantity <= 0 {
		return nil, nil, ErrInvalidQuantity
	}
	item, err := s.cartRepo.GetByID(id)
	if err != nil {
		return nil, nil, err
	}
	if item == nil {
		return nil, nil, ErrCartItemNotFound
	}
	item.Quantity = quantity
	item.UpdatedAt = time.Now()
	if err := s.cartRepo.Update(item); err != nil {
		return nil, nil, err
	}

	warnings := s.afterCartMutation(ctx, item.UserID, item)
	return item, warnings, nil
}

// RemoveItem 删除购物车项
func (s *CartService) RemoveItem(ctx context.Context, id uint) ([]Warning, error) {
	item, err := s.cartRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrCartItemNotFound
	}
	if err := s.cartRepo.Delete(id); err != nil {
		return nil, err
	}
	return s.afterCartMutation(ctx, item.UserID, nil), nil
}

// Clear 清空用户购物车
func (s *CartService) Clear(ctx context.Context, userID string) ([]Warning, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	if _, err := s.cartRepo.ClearByUser(userID); err != nil {
		return nil, err
	}
	return s.afterCartMutation(ctx, userID, nil), nil
}

// afterCartMutation 写库成功后的固定顺序收尾：先失效缓存，再发布事件。
func (s *CartService) afterCartMutation(ctx context.Context, userID string, item *models.CartItem) []Warning {
	var warnings []Warning
	key := constants.CartCacheKey(userID)
	if err := s.cache.Del(ctx, key); err != nil {
		warnings = append(warnings, cacheWarn(key, err))
	}
	if s.events != nil {
		payload := queue.CartUpdatedPayload{UserID: userID, Item: item}
		if err := s.events.PublishCartUpdated(ctx, payload); err != nil {
			warnings = append(warnings, publishWarn(queue.ChannelCartUpdated, err))
		}
	}
	return warnings
}
