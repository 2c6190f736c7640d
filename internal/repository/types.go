package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// BookListFilter 查询图书列表的过滤条件
type BookListFilter struct {
	Page       int
	PageSize   int
	Search     string
	Author     string
	Tag        string
	OnSale     *bool
	OnlyActive bool
	Sort       string
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	OrderNo     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// FulfillmentListFilter 查询履约记录列表的过滤条件
type FulfillmentListFilter struct {
	Page     int
	PageSize int
	OrderID  uint
	BookID   uint
	Status   string
}

// DiscountListFilter 查询折扣码列表的过滤条件
type DiscountListFilter struct {
	Page     int
	PageSize int
	Code     string
	IsActive *bool
}

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page        int
	PageSize    int
	Keyword     string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// paginate 统一分页：page 从 1 起算，pageSize <= 0 表示不分页。
func paginate(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil || pageSize <= 0 {
		return query
	}
	if page < 1 {
		page = 1
	}
	return query.Offset((page - 1) * pageSize).Limit(pageSize)
}

// firstOrNil 查询单条记录，未命中返回 nil 记录而非错误
func firstOrNil[T any](query *gorm.DB, conds ...interface{}) (*T, error) {
	var record T
	if err := query.First(&record, conds...).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// countThenList 先统计过滤后的总数，再取当前页
func countThenList[T any](countQuery, findQuery *gorm.DB, page, pageSize int) ([]T, int64, error) {
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []T
	if err := paginate(findQuery, page, pageSize).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
