package public

import (
	"errors"
	"strconv"

	handlershared "github.com/bookvine/internal/http/handlers/shared"
	"github.com/bookvine/internal/http/response"
	"github.com/bookvine/internal/repository"
	"github.com/bookvine/internal/service"

	"github.com/gin-gonic/gin"
)

// ListBooks 公开图书列表
func (h *Handler) ListBooks(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	filter := repository.BookListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
		Author:   c.Query("author"),
		Tag:      c.Query("tag"),
		Sort:     c.Query("sort"),
	}
	if raw := c.Query("on_sale"); raw != "" {
		onSale := raw == "true" || raw == "1"
		filter.OnSale = &onSale
	}

	books, total, err := h.CatalogService.ListBooks(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "查询图书失败", err)
		return
	}
	response.SuccessWithPage(c, books, handlershared.BuildPagination(page, pageSize, total))
}

// GetBook 公开图书详情（按 slug）
func (h *Handler) GetBook(c *gin.Context) {
	book, err := h.CatalogService.GetBookBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrBookNotFound) {
			respondError(c, response.CodeNotFound, "图书不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "查询图书失败", err)
		return
	}
	response.Success(c, book)
}
