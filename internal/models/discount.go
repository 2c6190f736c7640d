package models

import (
	"time"

	"gorm.io/gorm"
)

// Discount 折扣码表
type Discount struct {
	ID           uint           `gorm:"primarykey" json:"id"`                         // 主键
	Code         string         `gorm:"uniqueIndex;not null" json:"code"`             // 折扣码
	Type         string         `gorm:"not null;default:'percent'" json:"type"`       // 类型（percent）
	PctOff       int            `gorm:"not null;default:0" json:"pct_off"`            // 折扣百分比（1-100）
	IsActive     bool           `gorm:"index;not null;default:true" json:"is_active"` // 是否启用
	StartsAt     *time.Time     `gorm:"index" json:"starts_at,omitempty"`             // 生效时间
	EndsAt       *time.Time     `gorm:"index" json:"ends_at,omitempty"`               // 失效时间
	UsageLimit   int            `gorm:"not null;default:0" json:"usage_limit"`        // 总使用上限（0 不限）
	UsedCount    int            `gorm:"not null;default:0" json:"used_count"`         // 已使用次数
	PerUserLimit int            `gorm:"not null;default:0" json:"per_user_limit"`     // 单用户上限（0 不限）
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                      // 创建时间
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`                      // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                               // 软删除时间
}

// TableName 指定表名
func (Discount) TableName() string {
	return "discounts"
}
