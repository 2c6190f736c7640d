package repository

import (
	"github.com/bookvine/internal/constants"
	"github.com/bookvine/internal/models"

	"gorm.io/gorm"
)

// FulfillmentRepository 履约记录数据访问接口
type FulfillmentRepository interface {
	Create(fulfillment *models.Fulfillment) error
	GetByID(id uint) (*models.Fulfillment, error)
	ListByOrder(orderID uint) ([]models.Fulfillment, error)
	ListAdmin(filter FulfillmentListFilter) ([]models.Fulfillment, int64, error)
	Update(id uint, updates map[string]interface{}) error
	CancelOrderPending(orderID uint) (int64, error)
	CountByOrder(orderID uint) (int64, error)
	CountByStatus() (map[string]int64, error)
	WithTx(tx *gorm.DB) *GormFulfillmentRepository
}

// GormFulfillmentRepository GORM 实现
type GormFulfillmentRepository struct {
	db *gorm.DB
}

// NewFulfillmentRepository 创建履约仓库
func NewFulfillmentRepository(db *gorm.DB) *GormFulfillmentRepository {
	return &GormFulfillmentRepository{db: db}
}

// WithTx 绑定事务
func (r *GormFulfillmentRepository) WithTx(tx *gorm.DB) *GormFulfillmentRepository {
	if tx == nil {
		return r
	}
	return &GormFulfillmentRepository{db: tx}
}

// Create 创建履约记录
func (r *GormFulfillmentRepository) Create(fulfillment *models.Fulfillment) error {
	return r.db.Create(fulfillment).Error
}

// GetByID 根据 ID 获取履约记录
func (r *GormFulfillmentRepository) GetByID(id uint) (*models.Fulfillment, error) {
	return firstOrNil[models.Fulfillment](r.db, id)
}

// ListByOrder 获取订单的全部履约记录，按创建顺序返回
func (r *GormFulfillmentRepository) ListByOrder(orderID uint) ([]models.Fulfillment, error) {
	var fulfillments []models.Fulfillment
	if err := r.db.
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&fulfillments).Error; err != nil {
		return nil, err
	}
	return fulfillments, nil
}

// ListAdmin 管理端分页查询履约记录
func (r *GormFulfillmentRepository) ListAdmin(filter FulfillmentListFilter) ([]models.Fulfillment, int64, error) {
	query := r.db.Model(&models.Fulfillment{})
	if filter.OrderID > 0 {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.BookID > 0 {
		query = query.Where("book_id = ?", filter.BookID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	return countThenList[models.Fulfillment](query, query.Order("id DESC"), filter.Page, filter.PageSize)
}

// Update 按字段更新履约记录
func (r *GormFulfillmentRepository) Update(id uint, updates map[string]interface{}) error {
	return r.db.Model(&models.Fulfillment{}).Where("id = ?", id).Updates(updates).Error
}

// CancelOrderPending 条件批量取消：仅命中 pending 且未发货的记录，返回影响行数。
// 由调用方在事务内比对影响行数与记录总数，不满足则回滚。
func (r *GormFulfillmentRepository) CancelOrderPending(orderID uint) (int64, error) {
	result := r.db.Model(&models.Fulfillment{}).
		Where("order_id = ? AND status = ? AND shipped_qty = 0",
			orderID, constants.FulfillmentStatusPending).
		Update("status", constants.FulfillmentStatusCancelled)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// CountByOrder 统计订单的履约记录数
func (r *GormFulfillmentRepository) CountByOrder(orderID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Fulfillment{}).
		Where("order_id = ?", orderID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus 按状态统计履约记录数
func (r *GormFulfillmentRepository) CountByStatus() (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := r.db.Model(&models.Fulfillment{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(constants.FulfillmentStatuses))
	for _, status := range constants.FulfillmentStatuses {
		counts[status] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
