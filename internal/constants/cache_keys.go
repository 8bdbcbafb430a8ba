package constants

import (
	"fmt"
	"time"
)

// DefaultCacheTTL 缓存默认过期时间
const DefaultCacheTTL = 60 * time.Minute

// CartCacheKey 用户购物车缓存键
func CartCacheKey(userID string) string {
	return fmt.Sprintf("cart:%s", userID)
}

// ProductCacheKey 商品详情缓存键
func ProductCacheKey(productID uint) string {
	return fmt.Sprintf("product:%d", productID)
}

// ProductListCacheKey 商品列表缓存键
const ProductListCacheKey = "products:all"
