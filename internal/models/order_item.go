package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderItem 订单项表
type OrderItem struct {
	ID             uint           `gorm:"primarykey" json:"id"`                       // 主键
	OrderID        uint           `gorm:"index;not null" json:"order_id"`             // 订单ID
	BookID         uint           `gorm:"index;not null" json:"book_id"`              // 图书ID
	Title          string         `gorm:"not null" json:"title"`                      // 书名快照
	UnitPriceCents int64          `gorm:"not null;default:0" json:"unit_price_cents"` // 下单单价（分）
	Quantity       int            `gorm:"not null" json:"quantity"`                   // 数量
	TotalCents     int64          `gorm:"not null;default:0" json:"total_cents"`      // 小计（分）
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                    // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                    // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                             // 软删除时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
