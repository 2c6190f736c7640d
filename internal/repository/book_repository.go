package repository

import (
	"strings"

	"github.com/bookvine/internal/constants"
	"github.com/bookvine/internal/models"

	"gorm.io/gorm"
)

// BookRepository 图书数据访问接口
type BookRepository interface {
	Create(book *models.Book) error
	GetByID(id uint) (*models.Book, error)
	GetBySlug(slug string) (*models.Book, error)
	GetActiveByIDs(ids []uint) ([]models.Book, error)
	List(filter BookListFilter) ([]models.Book, int64, error)
	Update(id uint, updates map[string]interface{}) error
	Delete(id uint) error
	DecrementStock(id uint, quantity int) (int64, error)
	WithTx(tx *gorm.DB) *GormBookRepository
}

// GormBookRepository GORM 实现
type GormBookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓库
func NewBookRepository(db *gorm.DB) *GormBookRepository {
	return &GormBookRepository{db: db}
}

// WithTx 绑定事务
func (r *GormBookRepository) WithTx(tx *gorm.DB) *GormBookRepository {
	if tx == nil {
		return r
	}
	return &GormBookRepository{db: tx}
}

// Create 创建图书
func (r *GormBookRepository) Create(book *models.Book) error {
	return r.db.Create(book).Error
}

// GetByID 根据 ID 获取图书
func (r *GormBookRepository) GetByID(id uint) (*models.Book, error) {
	return firstOrNil[models.Book](r.db, id)
}

// GetBySlug 根据 slug 获取图书
func (r *GormBookRepository) GetBySlug(slug string) (*models.Book, error) {
	return firstOrNil[models.Book](r.db.Where("slug = ?", slug))
}

// GetActiveByIDs 批量获取上架图书
func (r *GormBookRepository) GetActiveByIDs(ids []uint) ([]models.Book, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var books []models.Book
	if err := r.db.Where("id IN ? AND is_active = ?", ids, true).Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

// List 分页查询图书列表
func (r *GormBookRepository) List(filter BookListFilter) ([]models.Book, int64, error) {
	query := r.db.Model(&models.Book{})
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("title LIKE ? OR author LIKE ?", like, like)
	}
	if author := strings.TrimSpace(filter.Author); author != "" {
		query = query.Where("author = ?", author)
	}
	if tag := strings.TrimSpace(filter.Tag); tag != "" {
		// tags 以 JSON 数组存储，LIKE 足以覆盖带引号的精确标签
		query = query.Where("tags LIKE ?", "%\""+tag+"\"%")
	}
	if filter.OnSale != nil {
		query = query.Where("on_sale = ?", *filter.OnSale)
	}

	var sorted *gorm.DB
	switch filter.Sort {
	case constants.BookSortPriceAsc:
		sorted = query.Order("price_cents ASC")
	case constants.BookSortPriceDesc:
		sorted = query.Order("price_cents DESC")
	default:
		sorted = query.Order("created_at DESC")
	}
	return countThenList[models.Book](query, sorted, filter.Page, filter.PageSize)
}

// Update 按字段更新图书
func (r *GormBookRepository) Update(id uint, updates map[string]interface{}) error {
	return r.db.Model(&models.Book{}).Where("id = ?", id).Updates(updates).Error
}

// Delete 软删除图书
func (r *GormBookRepository) Delete(id uint) error {
	return r.db.Delete(&models.Book{}, id).Error
}

// DecrementStock 条件扣减库存，返回影响行数；库存不足时命中 0 行。
func (r *GormBookRepository) DecrementStock(id uint, quantity int) (int64, error) {
	result := r.db.Model(&models.Book{}).
		Where("id = ? AND stock >= ?", id, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
