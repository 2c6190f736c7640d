package models

import (
	"time"

	"gorm.io/gorm"
)

// Fulfillment 履约记录表（每个订单项一条）
// (order_id, book_id) 唯一索引保证批量创建可安全重试。
type Fulfillment struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                            // 主键
	OrderID        uint           `gorm:"not null;uniqueIndex:idx_fulfillment_order_book" json:"order_id"` // 订单ID
	BookID         uint           `gorm:"not null;uniqueIndex:idx_fulfillment_order_book" json:"book_id"`  // 图书ID
	Status         string         `gorm:"index;not null" json:"status"`                                    // 履约状态（pending/processing/shipped/delivered/cancelled）
	ShippedQty     int            `gorm:"not null;default:0" json:"shipped_qty"`                           // 已发货数量
	TrackingNumber string         `json:"tracking_number,omitempty"`                                       // 物流单号
	FulfilledBy    *uint          `gorm:"index" json:"fulfilled_by,omitempty"`                             // 处理管理员ID
	FulfilledAt    *time.Time     `json:"fulfilled_at,omitempty"`                                          // 开始处理时间
	ShippedAt      *time.Time     `json:"shipped_at,omitempty"`                                            // 发货时间
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                         // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                                         // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                                  // 软删除时间
}

// TableName 指定表名
func (Fulfillment) TableName() string {
	return "fulfillments"
}
