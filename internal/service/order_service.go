package service

import (
	"context"
	"strings"
	"time"

	"github.com/litemall-next/internal/cache"
	"github.com/litemall-next/internal/constants"
	"github.com/litemall-next/internal/logger"
	"github.com/litemall-next/internal/models"
	"github.com/litemall-next/internal/queue"
	"github.com/litemall-next/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreateOrderInput 创建订单输入
type CreateOrderInput struct {
	UserID string
	Items  []CreateOrderItem
}

// CreateOrderItem 订单行输入
type CreateOrderItem struct {
	ProductID uint
	Quantity  int
}

// 允许的订单状态迁移
var allowedTransitions = map[string]map[string]bool{
	constants.OrderStatusPending: {
		constants.OrderStatusPaid:     true,
		constants.OrderStatusCanceled: true,
	},
	constants.OrderStatusPaid: {
		constants.OrderStatusShipped:  true,
		constants.OrderStatusCanceled: true,
	},
	constants.OrderStatusShipped: {
		constants.OrderStatusCompleted: true,
	},
}

// OrderService 订单服务
type OrderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	cache       *cache.Cache
	events      EventPublisher
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository, c *cache.Cache, events EventPublisher) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		cache:       c,
		events:      events,
	}
}

// ListByUser 获取用户订单（按下单时间倒序）
func (s *OrderService) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	return s.orderRepo.ListByUser(userID)
}

// List 按条件查询订单
func (s *OrderService) List(ctx context.Context, filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.List(filter)
}

// GetByID 获取订单详情
func (s *OrderService) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// Create 创建订单。订单写入与逐行库存预占在同一事务内完成，任何一行
// 库存不足则整单回滚；总额在创建时一次性计算，此后不可变。
func (s *OrderService) Create(ctx context.Context, input CreateOrderInput) (*models.Order, []Warning, error) {
	if input.UserID == "" {
		return nil, nil, ErrUserIDRequired
	}
	if len(input.Items) == 0 {
		return nil, nil, ErrOrderEmpty
	}
	for _, item := range input.Items {
		if item.ProductID == 0 || item.Quantity <= 0 {
			return nil, nil, ErrInvalidQuantity
		}
	}

	now := time.Now()
	order := &models.Order{
		OrderNo:   uuid.NewString(),
		UserID:    input.UserID,
		Status:    constants.OrderStatusPending,
		OrderedAt: now,
	}

	err := s.orderRepo.Transaction(func(tx *gorm.DB) error {
		productRepo := s.productRepo.WithTx(tx)
		orderRepo := s.orderRepo.WithTx(tx)

		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(input.Items))
		for _, line := range input.Items {
			product, err := productRepo.GetByID(line.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return ErrProductNotFound
			}
			rows, err := productRepo.DecrementStock(line.ProductID, line.Quantity)
			if err != nil {
				return err
			}
			if rows == 0 {
				return ErrInsufficientStock
			}
			lineTotal := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			total = total.Add(lineTotal)
			items = append(items, models.OrderItem{
				ProductID:  line.ProductID,
				Quantity:   line.Quantity,
				UnitPrice:  product.Price,
				TotalPrice: models.NewMoneyFromDecimal(lineTotal),
			})
		}
		order.TotalAmount = models.NewMoneyFromDecimal(total)
		order.Items = items
		return orderRepo.Create(order)
	})
	if err != nil {
		return nil, nil, err
	}

	warnings := s.afterOrderCreated(ctx, order)
	return order, warnings, nil
}

// UpdateStatus 更新订单状态（仅允许既定迁移）
func (s *OrderService) UpdateStatus(ctx context.Context, id uint, status string) (*models.Order, []Warning, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, nil, err
	}
	if order == nil {
		return nil, nil, ErrOrderNotFound
	}
	if !allowedTransitions[order.Status][status] {
		return nil, nil, ErrOrderStatusInvalid
	}
	if _, err := s.orderRepo.UpdateStatus(id, status, time.Now()); err != nil {
		return nil, nil, err
	}
	order.Status = status

	var warnings []Warning
	if s.events != nil {
		if err := s.events.PublishOrderStatusUpdated(ctx, id, status); err != nil {
			warnings = append(warnings, publishWarn(queue.ChannelOrderStatusUpdated, err))
		}
	}
	return order, warnings, nil
}

// afterOrderCreated 订单已提交后的收尾：失效受影响商品缓存，
// 逐行发布 stock-updated，最后发布 order-created。
func (s *OrderService) afterOrderCreated(ctx context.Context, order *models.Order) []Warning {
	var warnings []Warning

	ids := make([]uint, 0, len(order.Items))
	for _, item := range order.Items {
		ids = append(ids, item.ProductID)
	}
	stockByID := make(map[uint]int, len(ids))
	products, err := s.productRepo.ListByIDs(ids)
	if err != nil {
		logger.Warnw("order_stock_reload_failed", "order_id", order.ID, "error", err)
	} else {
		for _, p := range products {
			stockByID[p.ID] = p.StockQuantity
		}
	}

	for _, key := range productCacheKeys(ids) {
		if err := s.cache.Del(ctx, key); err != nil {
			warnings = append(warnings, cacheWarn(key, err))
		}
	}

	if s.events == nil {
		return warnings
	}
	for _, item := range order.Items {
		payload := queue.StockUpdatedPayload{
			ProductID:     item.ProductID,
			Quantity:      -item.Quantity,
			StockQuantity: stockByID[item.ProductID],
		}
		if err := s.events.PublishStockUpdated(ctx, payload); err != nil {
			warnings = append(warnings, publishWarn(queue.ChannelStockUpdated, err))
		}
	}
	if err := s.events.PublishOrderCreated(ctx, *order); err != nil {
		warnings = append(warnings, publishWarn(queue.ChannelOrderCreated, err))
	}
	return warnings
}

func productCacheKeys(ids []uint) []string {
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, constants.ProductCacheKey(id))
	}
	keys = append(keys, constants.ProductListCacheKey)
	return keys
}
