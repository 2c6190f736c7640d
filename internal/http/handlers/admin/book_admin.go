package admin

import (
	"errors"
	"strconv"
	"strings"

	handlershared "github.com/bookvine/internal/http/handlers/shared"
	"github.com/bookvine/internal/http/response"
	"github.com/bookvine/internal/models"
	"github.com/bookvine/internal/repository"
	"github.com/bookvine/internal/service"

	"github.com/gin-gonic/gin"
)

// ListBooks 管理端图书列表
func (h *Handler) ListBooks(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	books, total, err := h.CatalogService.ListBooksAdmin(repository.BookListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
		Author:   c.Query("author"),
		Sort:     c.Query("sort"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "查询图书失败", err)
		return
	}
	response.SuccessWithPage(c, books, handlershared.BuildPagination(page, pageSize, total))
}

// CreateBookRequest 创建图书请求
type CreateBookRequest struct {
	Slug           string   `json:"slug" binding:"required"`
	Title          string   `json:"title" binding:"required"`
	Author         string   `json:"author"`
	Description    string   `json:"description"`
	Tags           []string `json:"tags"`
	PriceCents     int64    `json:"price_cents" binding:"required"`
	SalePriceCents *int64   `json:"sale_price_cents"`
	OnSale         bool     `json:"on_sale"`
	Stock          int      `json:"stock"`
	IsActive       bool     `json:"is_active"`
}

// CreateBook 创建图书
func (h *Handler) CreateBook(c *gin.Context) {
	var req CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	book, err := h.CatalogService.CreateBook(service.CreateBookInput{
		Slug:           req.Slug,
		Title:          req.Title,
		Author:         req.Author,
		Description:    req.Description,
		Tags:           req.Tags,
		PriceCents:     req.PriceCents,
		SalePriceCents: req.SalePriceCents,
		OnSale:         req.OnSale,
		Stock:          req.Stock,
		IsActive:       req.IsActive,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBookSlugExists):
			respondError(c, response.CodeConflict, "slug 已存在", nil)
		case errors.Is(err, service.ErrCartItemInvalid):
			respondError(c, response.CodeBadRequest, "图书信息不完整", nil)
		default:
			respondError(c, response.CodeInternal, "创建图书失败", err)
		}
		return
	}
	response.Success(c, book)
}

// UpdateBookRequest 更新图书请求
type UpdateBookRequest struct {
	Title          *string   `json:"title"`
	Author         *string   `json:"author"`
	Description    *string   `json:"description"`
	Tags           *[]string `json:"tags"`
	PriceCents     *int64    `json:"price_cents"`
	SalePriceCents *int64    `json:"sale_price_cents"`
	OnSale         *bool     `json:"on_sale"`
	Stock          *int      `json:"stock"`
	IsActive       *bool     `json:"is_active"`
}

// UpdateBook 更新图书
func (h *Handler) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			respondError(c, response.CodeBadRequest, "书名不能为空", nil)
			return
		}
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Author != nil {
		updates["author"] = strings.TrimSpace(*req.Author)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Tags != nil {
		updates["tags"] = models.StringArray(*req.Tags)
	}
	if req.PriceCents != nil {
		if *req.PriceCents < 0 {
			respondError(c, response.CodeBadRequest, "价格不合法", nil)
			return
		}
		updates["price_cents"] = *req.PriceCents
	}
	if req.SalePriceCents != nil {
		updates["sale_price_cents"] = *req.SalePriceCents
	}
	if req.OnSale != nil {
		updates["on_sale"] = *req.OnSale
	}
	if req.Stock != nil {
		updates["stock"] = *req.Stock
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	book, err := h.CatalogService.UpdateBook(id, updates)
	if err != nil {
		if errors.Is(err, service.ErrBookNotFound) {
			respondError(c, response.CodeNotFound, "图书不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "更新图书失败", err)
		return
	}
	response.Success(c, book)
}

// DeleteBook 删除图书
func (h *Handler) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.CatalogService.DeleteBook(id); err != nil {
		if errors.Is(err, service.ErrBookNotFound) {
			respondError(c, response.CodeNotFound, "图书不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "删除图书失败", err)
		return
	}
	response.SuccessWithMsg(c, "已删除", nil)
}
