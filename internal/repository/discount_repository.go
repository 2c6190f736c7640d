package repository

import (
	"strings"

	"github.com/bookvine/internal/models"

	"gorm.io/gorm"
)

// DiscountRepository 折扣码数据访问接口
type DiscountRepository interface {
	Create(discount *models.Discount) error
	GetByID(id uint) (*models.Discount, error)
	GetByCode(code string) (*models.Discount, error)
	List(filter DiscountListFilter) ([]models.Discount, int64, error)
	Update(id uint, updates map[string]interface{}) error
	Delete(id uint) error
	IncrementUsed(id uint) (int64, error)
	CountUsageByUser(discountID, userID uint) (int64, error)
	CreateUsage(usage *models.DiscountUsage) error
	WithTx(tx *gorm.DB) *GormDiscountRepository
}

// GormDiscountRepository GORM 实现
type GormDiscountRepository struct {
	db *gorm.DB
}

// NewDiscountRepository 创建折扣码仓库
func NewDiscountRepository(db *gorm.DB) *GormDiscountRepository {
	return &GormDiscountRepository{db: db}
}

// WithTx 绑定事务
func (r *GormDiscountRepository) WithTx(tx *gorm.DB) *GormDiscountRepository {
	if tx == nil {
		return r
	}
	return &GormDiscountRepository{db: tx}
}

// Create 创建折扣码
func (r *GormDiscountRepository) Create(discount *models.Discount) error {
	return r.db.Create(discount).Error
}

// GetByID 根据 ID 获取折扣码
func (r *GormDiscountRepository) GetByID(id uint) (*models.Discount, error) {
	return firstOrNil[models.Discount](r.db, id)
}

// GetByCode 根据折扣码获取记录（大小写不敏感）
func (r *GormDiscountRepository) GetByCode(code string) (*models.Discount, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	return firstOrNil[models.Discount](r.db.Where("UPPER(code) = ?", normalized))
}

// List 分页查询折扣码列表
func (r *GormDiscountRepository) List(filter DiscountListFilter) ([]models.Discount, int64, error) {
	query := r.db.Model(&models.Discount{})
	if code := strings.TrimSpace(filter.Code); code != "" {
		query = query.Where("code LIKE ?", "%"+code+"%")
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	return countThenList[models.Discount](query, query.Order("id DESC"), filter.Page, filter.PageSize)
}

// Update 按字段更新折扣码
func (r *GormDiscountRepository) Update(id uint, updates map[string]interface{}) error {
	return r.db.Model(&models.Discount{}).Where("id = ?", id).Updates(updates).Error
}

// Delete 软删除折扣码
func (r *GormDiscountRepository) Delete(id uint) error {
	return r.db.Delete(&models.Discount{}, id).Error
}

// IncrementUsed 条件递增使用次数：有总量上限时不允许超限，返回影响行数。
func (r *GormDiscountRepository) IncrementUsed(id uint) (int64, error) {
	result := r.db.Model(&models.Discount{}).
		Where("id = ? AND (usage_limit = 0 OR used_count < usage_limit)", id).
		Update("used_count", gorm.Expr("used_count + 1"))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// CountUsageByUser 统计用户对某折扣码的使用次数
func (r *GormDiscountRepository) CountUsageByUser(discountID, userID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.DiscountUsage{}).
		Where("discount_id = ? AND user_id = ?", discountID, userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CreateUsage 创建使用记录
func (r *GormDiscountRepository) CreateUsage(usage *models.DiscountUsage) error {
	return r.db.Create(usage).Error
}
