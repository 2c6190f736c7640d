package service

import (
	"strings"
	"time"

	"github.com/bookvine/internal/constants"
	"github.com/bookvine/internal/models"
	"github.com/bookvine/internal/repository"
)

// DiscountService 折扣码服务
type DiscountService struct {
	discountRepo repository.DiscountRepository
}

// NewDiscountService 创建折扣码服务
func NewDiscountService(discountRepo repository.DiscountRepository) *DiscountService {
	return &DiscountService{discountRepo: discountRepo}
}

// Validate 校验折扣码对某用户是否可用，通过则返回记录。
// 校验顺序：存在 -> 启用 -> 时间窗 -> 总量 -> 单用户限额。
func (s *DiscountService) Validate(code string, userID uint, now time.Time) (*models.Discount, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrDiscountNotFound
	}
	discount, err := s.discountRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if discount == nil {
		return nil, ErrDiscountNotFound
	}
	if !discount.IsActive {
		return nil, ErrDiscountInactive
	}
	if discount.StartsAt != nil && now.Before(*discount.StartsAt) {
		return nil, ErrDiscountNotStarted
	}
	if discount.EndsAt != nil && now.After(*discount.EndsAt) {
		return nil, ErrDiscountExpired
	}
	if discount.UsageLimit > 0 && discount.UsedCount >= discount.UsageLimit {
		return nil, ErrDiscountExhausted
	}
	if discount.PerUserLimit > 0 && userID > 0 {
		used, err := s.discountRepo.CountUsageByUser(discount.ID, userID)
		if err != nil {
			return nil, err
		}
		if used >= int64(discount.PerUserLimit) {
			return nil, ErrDiscountUserLimit
		}
	}
	return discount, nil
}

// CreateDiscountInput 创建折扣码输入
type CreateDiscountInput struct {
	Code         string
	PctOff       int
	IsActive     bool
	StartsAt     *time.Time
	EndsAt       *time.Time
	UsageLimit   int
	PerUserLimit int
}

// Create 创建折扣码
func (s *DiscountService) Create(input CreateDiscountInput) (*models.Discount, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" || input.PctOff < 1 || input.PctOff > 100 {
		return nil, ErrDiscountInvalid
	}
	existing, err := s.discountRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDiscountCodeExists
	}

	discount := &models.Discount{
		Code:         code,
		Type:         constants.DiscountTypePercent,
		PctOff:       input.PctOff,
		IsActive:     input.IsActive,
		StartsAt:     input.StartsAt,
		EndsAt:       input.EndsAt,
		UsageLimit:   input.UsageLimit,
		PerUserLimit: input.PerUserLimit,
	}
	if err := s.discountRepo.Create(discount); err != nil {
		return nil, err
	}
	return discount, nil
}

// List 管理端折扣码列表
func (s *DiscountService) List(filter repository.DiscountListFilter) ([]models.Discount, int64, error) {
	return s.discountRepo.List(filter)
}

// Update 更新折扣码
func (s *DiscountService) Update(id uint, updates map[string]interface{}) (*models.Discount, error) {
	discount, err := s.discountRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if discount == nil {
		return nil, ErrDiscountNotFound
	}
	if pctOff, ok := updates["pct_off"].(int); ok && (pctOff < 1 || pctOff > 100) {
		return nil, ErrDiscountInvalid
	}
	if len(updates) == 0 {
		return discount, nil
	}
	if err := s.discountRepo.Update(id, updates); err != nil {
		return nil, err
	}
	return s.discountRepo.GetByID(id)
}

// Delete 删除折扣码
func (s *DiscountService) Delete(id uint) error {
	discount, err := s.discountRepo.GetByID(id)
	if err != nil {
		return err
	}
	if discount == nil {
		return ErrDiscountNotFound
	}
	return s.discountRepo.Delete(id)
}
