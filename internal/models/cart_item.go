package models

import (
	"time"

	"gorm.io/gorm"
)

// CartItem 购物车项
type CartItem struct {
	ID        uint           `gorm:"primarykey" json:"id"`                                   // 主键
	UserID    uint           `gorm:"not null;uniqueIndex:idx_cart_user_book" json:"user_id"` // 用户ID
	BookID    uint           `gorm:"not null;uniqueIndex:idx_cart_user_book" json:"book_id"` // 图书ID
	Quantity  int            `gorm:"not null" json:"quantity"`                               // 数量
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                                // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`                                // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                         // 软删除时间

	Book *Book `gorm:"foreignKey:BookID" json:"book,omitempty"` // 关联图书
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "cart_items"
}
