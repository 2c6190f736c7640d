package service

import (
	"github.com/bookvine/internal/logger"
	"github.com/bookvine/internal/models"
	"github.com/bookvine/internal/repository"
)

// CartService 购物车服务
type CartService struct {
	cartRepo repository.CartRepository
	bookRepo repository.BookRepository
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, bookRepo repository.BookRepository) *CartService {
	return &CartService{
		cartRepo: cartRepo,
		bookRepo: bookRepo,
	}
}

// AddItem 添加购物车项，同一图书累加数量
func (s *CartService) AddItem(userID, bookID uint, quantity int) error {
	if userID == 0 || bookID == 0 || quantity <= 0 {
		return ErrCartItemInvalid
	}
	book, err := s.bookRepo.GetByID(bookID)
	if err != nil {
		return err
	}
	if book == nil || !book.IsActive {
		return ErrBookUnavailable
	}
	return s.cartRepo.Upsert(&models.CartItem{
		UserID:   userID,
		BookID:   bookID,
		Quantity: quantity,
	})
}

// List 获取购物车，下架图书在读取时剔除
func (s *CartService) List(userID uint) ([]models.CartItem, error) {
	items, err := s.cartRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	valid := make([]models.CartItem, 0, len(items))
	for _, item := range items {
		if item.Book == nil || !item.Book.IsActive {
			if err := s.cartRepo.Remove(userID, item.BookID); err != nil {
				logger.Warnw("cart_prune_inactive_failed",
					"user_id", userID,
					"book_id", item.BookID,
					"error", err,
				)
			}
			continue
		}
		valid = append(valid, item)
	}
	return valid, nil
}

// UpdateQuantity 修改购物车项数量，0 表示删除
func (s *CartService) UpdateQuantity(userID, bookID uint, quantity int) error {
	if quantity < 0 {
		return ErrCartItemInvalid
	}
	if quantity == 0 {
		return s.cartRepo.Remove(userID, bookID)
	}
	item, err := s.cartRepo.GetItem(userID, bookID)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrCartItemInvalid
	}
	return s.cartRepo.UpdateQuantity(userID, bookID, quantity)
}

// RemoveItem 删除购物车项
func (s *CartService) RemoveItem(userID, bookID uint) error {
	return s.cartRepo.Remove(userID, bookID)
}

// Clear 清空购物车
func (s *CartService) Clear(userID uint) error {
	return s.cartRepo.Clear(userID)
}
