package service

import (
	"strings"

	"github.com/bookvine/internal/models"
	"github.com/bookvine/internal/repository"
)

// CatalogService 图书目录服务
type CatalogService struct {
	bookRepo repository.BookRepository
}

// NewCatalogService 创建目录服务
func NewCatalogService(bookRepo repository.BookRepository) *CatalogService {
	return &CatalogService{bookRepo: bookRepo}
}

// ListBooks 公开图书列表，仅含上架图书
func (s *CatalogService) ListBooks(filter repository.BookListFilter) ([]models.Book, int64, error) {
	filter.OnlyActive = true
	return s.bookRepo.List(filter)
}

// ListBooksAdmin 管理端图书列表
func (s *CatalogService) ListBooksAdmin(filter repository.BookListFilter) ([]models.Book, int64, error) {
	return s.bookRepo.List(filter)
}

// GetBookBySlug 公开图书详情
func (s *CatalogService) GetBookBySlug(slug string) (*models.Book, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrBookNotFound
	}
	book, err := s.bookRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if book == nil || !book.IsActive {
		return nil, ErrBookNotFound
	}
	return book, nil
}

// GetBookByID 获取图书
func (s *CatalogService) GetBookByID(id uint) (*models.Book, error) {
	book, err := s.bookRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, ErrBookNotFound
	}
	return book, nil
}

// CreateBookInput 创建图书输入
type CreateBookInput struct {
	Slug           string
	Title          string
	Author         string
	Description    string
	Tags           []string
	PriceCents     int64
	SalePriceCents *int64
	OnSale         bool
	Stock          int
	IsActive       bool
}

// CreateBook 创建图书
func (s *CatalogService) CreateBook(input CreateBookInput) (*models.Book, error) {
	slug := strings.TrimSpace(input.Slug)
	title := strings.TrimSpace(input.Title)
	if slug == "" || title == "" || input.PriceCents < 0 {
		return nil, ErrCartItemInvalid
	}
	existing, err := s.bookRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrBookSlugExists
	}

	book := &models.Book{
		Slug:           slug,
		Title:          title,
		Author:         strings.TrimSpace(input.Author),
		Description:    input.Description,
		Tags:           models.StringArray(input.Tags),
		PriceCents:     input.PriceCents,
		SalePriceCents: input.SalePriceCents,
		OnSale:         input.OnSale,
		Stock:          input.Stock,
		IsActive:       input.IsActive,
	}
	if err := s.bookRepo.Create(book); err != nil {
		return nil, err
	}
	return book, nil
}

// UpdateBook 更新图书
func (s *CatalogService) UpdateBook(id uint, updates map[string]interface{}) (*models.Book, error) {
	book, err := s.bookRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, ErrBookNotFound
	}
	if len(updates) == 0 {
		return book, nil
	}
	if err := s.bookRepo.Update(id, updates); err != nil {
		return nil, err
	}
	return s.bookRepo.GetByID(id)
}

// DeleteBook 下架并软删除图书
func (s *CatalogService) DeleteBook(id uint) error {
	book, err := s.bookRepo.GetByID(id)
	if err != nil {
		return err
	}
	if book == nil {
		return ErrBookNotFound
	}
	return s.bookRepo.Delete(id)
}
