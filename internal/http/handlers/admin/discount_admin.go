package admin

import (
	"errors"
	"strconv"
	"time"

	handlershared "github.com/bookvine/internal/http/handlers/shared"
	"github.com/bookvine/internal/http/response"
	"github.com/bookvine/internal/repository"
	"github.com/bookvine/internal/service"

	"github.com/gin-gonic/gin"
)

// ListDiscounts 折扣码列表
func (h *Handler) ListDiscounts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	filter := repository.DiscountListFilter{
		Page:     page,
		PageSize: pageSize,
		Code:     c.Query("code"),
	}
	if raw := c.Query("is_active"); raw != "" {
		active := raw == "true" || raw == "1"
		filter.IsActive = &active
	}

	discounts, total, err := h.DiscountService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "查询折扣码失败", err)
		return
	}
	response.SuccessWithPage(c, discounts, handlershared.BuildPagination(page, pageSize, total))
}

// CreateDiscountRequest 创建折扣码请求
type CreateDiscountRequest struct {
	Code         string     `json:"code" binding:"required"`
	PctOff       int        `json:"pct_off" binding:"required"`
	IsActive     bool       `json:"is_active"`
	StartsAt     *time.Time `json:"starts_at"`
	EndsAt       *time.Time `json:"ends_at"`
	UsageLimit   int        `json:"usage_limit"`
	PerUserLimit int        `json:"per_user_limit"`
}

// CreateDiscount 创建折扣码
func (h *Handler) CreateDiscount(c *gin.Context) {
	var req CreateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	discount, err := h.DiscountService.Create(service.CreateDiscountInput{
		Code:         req.Code,
		PctOff:       req.PctOff,
		IsActive:     req.IsActive,
		StartsAt:     req.StartsAt,
		EndsAt:       req.EndsAt,
		UsageLimit:   req.UsageLimit,
		PerUserLimit: req.PerUserLimit,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDiscountCodeExists):
			respondError(c, response.CodeConflict, "折扣码已存在", nil)
		case errors.Is(err, service.ErrDiscountInvalid):
			respondError(c, response.CodeBadRequest, "折扣码参数不合法", nil)
		default:
			respondError(c, response.CodeInternal, "创建折扣码失败", err)
		}
		return
	}
	response.Success(c, discount)
}

// UpdateDiscountRequest 更新折扣码请求
type UpdateDiscountRequest struct {
	PctOff       *int       `json:"pct_off"`
	IsActive     *bool      `json:"is_active"`
	StartsAt     *time.Time `json:"starts_at"`
	EndsAt       *time.Time `json:"ends_at"`
	UsageLimit   *int       `json:"usage_limit"`
	PerUserLimit *int       `json:"per_user_limit"`
}

// UpdateDiscount 更新折扣码
func (h *Handler) UpdateDiscount(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	updates := map[string]interface{}{}
	if req.PctOff != nil {
		updates["pct_off"] = *req.PctOff
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.StartsAt != nil {
		updates["starts_at"] = *req.StartsAt
	}
	if req.EndsAt != nil {
		updates["ends_at"] = *req.EndsAt
	}
	if req.UsageLimit != nil {
		updates["usage_limit"] = *req.UsageLimit
	}
	if req.PerUserLimit != nil {
		updates["per_user_limit"] = *req.PerUserLimit
	}

	discount, err := h.DiscountService.Update(id, updates)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDiscountNotFound):
			respondError(c, response.CodeNotFound, "折扣码不存在", nil)
		case errors.Is(err, service.ErrDiscountInvalid):
			respondError(c, response.CodeBadRequest, "折扣码参数不合法", nil)
		default:
			respondError(c, response.CodeInternal, "更新折扣码失败", err)
		}
		return
	}
	response.Success(c, discount)
}

// DeleteDiscount 删除折扣码
func (h *Handler) DeleteDiscount(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.DiscountService.Delete(id); err != nil {
		if errors.Is(err, service.ErrDiscountNotFound) {
			respondError(c, response.CodeNotFound, "折扣码不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "删除折扣码失败", err)
		return
	}
	response.SuccessWithMsg(c, "已删除", nil)
}
