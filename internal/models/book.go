package models

import (
	"time"

	"gorm.io/gorm"
)

// Book 图书表
type Book struct {
	ID             uint           `gorm:"primarykey" json:"id"`                         // 主键
	Slug           string         `gorm:"uniqueIndex;not null" json:"slug"`             // 唯一标识
	Title          string         `gorm:"not null" json:"title"`                        // 书名
	Author         string         `gorm:"index;not null" json:"author"`                 // 作者
	Description    string         `gorm:"type:text" json:"description"`                 // 简介
	Tags           StringArray    `gorm:"type:json" json:"tags"`                        // 标签
	PriceCents     int64          `gorm:"not null;default:0" json:"price_cents"`        // 定价（分）
	SalePriceCents *int64         `json:"sale_price_cents,omitempty"`                   // 促销价（分）
	OnSale         bool           `gorm:"not null;default:false" json:"on_sale"`        // 是否促销
	Stock          int            `gorm:"not null;default:0" json:"stock"`              // 库存
	IsActive       bool           `gorm:"index;not null;default:true" json:"is_active"` // 是否上架
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                      // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                      // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                               // 软删除时间
}

// TableName 指定表名
func (Book) TableName() string {
	return "books"
}

// EffectiveUnitPriceCents 当前生效单价：促销中且设置了促销价取促销价，否则取定价。
func (b *Book) EffectiveUnitPriceCents() int64 {
	if b.OnSale && b.SalePriceCents != nil && *b.SalePriceCents > 0 {
		return *b.SalePriceCents
	}
	return b.PriceCents
}
