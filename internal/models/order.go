package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表
// 订单不持久化状态字段：展示状态由其履约记录集合实时派生。
type Order struct {
	ID            uint           `gorm:"primarykey" json:"id"`                     // 主键
	OrderNo       string         `gorm:"uniqueIndex;not null" json:"order_no"`     // 订单编号
	UserID        uint           `gorm:"index;not null" json:"user_id"`            // 用户ID
	SubtotalCents int64          `gorm:"not null;default:0" json:"subtotal_cents"` // 小计（分）
	DiscountCents int64          `gorm:"not null;default:0" json:"discount_cents"` // 折扣金额（分）
	TaxCents      int64          `gorm:"not null;default:0" json:"tax_cents"`      // 税额（分）
	TotalCents    int64          `gorm:"not null;default:0" json:"total_cents"`    // 实付金额（分）
	DiscountID    *uint          `gorm:"index" json:"discount_id,omitempty"`       // 折扣码ID
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                  // 创建时间
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                  // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                           // 软删除时间

	Items        []OrderItem   `gorm:"foreignKey:OrderID" json:"items,omitempty"`        // 订单项
	Fulfillments []Fulfillment `gorm:"foreignKey:OrderID" json:"fulfillments,omitempty"` // 履约记录
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
