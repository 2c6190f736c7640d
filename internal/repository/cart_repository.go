package repository

import (
	"github.com/bookvine/internal/models"

	"gorm.io/gorm"
)

// CartRepository 购物车数据访问接口
type CartRepository interface {
	GetItem(userID, bookID uint) (*models.CartItem, error)
	ListByUser(userID uint) ([]models.CartItem, error)
	Upsert(item *models.CartItem) error
	UpdateQuantity(userID, bookID uint, quantity int) error
	Remove(userID, bookID uint) error
	Clear(userID uint) error
	WithTx(tx *gorm.DB) *GormCartRepository
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCartRepository) WithTx(tx *gorm.DB) *GormCartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

// GetItem 获取购物车项
func (r *GormCartRepository) GetItem(userID, bookID uint) (*models.CartItem, error) {
	return firstOrNil[models.CartItem](r.db.Where("user_id = ? AND book_id = ?", userID, bookID))
}

// ListByUser 获取用户购物车（含图书信息）
func (r *GormCartRepository) ListByUser(userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.
		Preload("Book").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Upsert 创建或更新购物车项
func (r *GormCartRepository) Upsert(item *models.CartItem) error {
	existing, err := r.GetItem(item.UserID, item.BookID)
	if err != nil {
		return err
	}
	if existing == nil {
		return r.db.Create(item).Error
	}
	return r.db.Model(&models.CartItem{}).
		Where("id = ?", existing.ID).
		Update("quantity", gorm.Expr("quantity + ?", item.Quantity)).Error
}

// UpdateQuantity 设置购物车项数量
func (r *GormCartRepository) UpdateQuantity(userID, bookID uint, quantity int) error {
	return r.db.Model(&models.CartItem{}).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Update("quantity", quantity).Error
}

// Remove 删除购物车项
func (r *GormCartRepository) Remove(userID, bookID uint) error {
	return r.db.Where("user_id = ? AND book_id = ?", userID, bookID).
		Delete(&models.CartItem{}).Error
}

// Clear 清空用户购物车
func (r *GormCartRepository) Clear(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}
