package models

import "time"

// CartItem 购物车项
type CartItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                                     // 主键
	UserID    string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_cart_user_product" json:"user_id"` // 用户ID
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"product_id"`             // 商品ID
	Quantity  int       `gorm:"not null" json:"quantity"`                                                 // 数量
	UnitPrice Money     `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`                  // 加入时单价快照
	CreatedAt time.Time `gorm:"index" json:"created_at"`                                                  // 创建时间
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`                                                  // 更新时间
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "cart_items"
}
