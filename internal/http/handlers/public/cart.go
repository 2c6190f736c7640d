package public

import (
	"errors"

	"github.com/bookvine/internal/http/response"
	"github.com/bookvine/internal/service"

	"github.com/gin-gonic/gin"
)

// AddCartItemRequest 添加购物车请求
type AddCartItemRequest struct {
	BookID   uint `json:"book_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required"`
}

// AddCartItem 添加购物车项
func (h *Handler) AddCartItem(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	if err := h.CartService.AddItem(userID, req.BookID, req.Quantity); err != nil {
		switch {
		case errors.Is(err, service.ErrBookUnavailable):
			respondError(c, response.CodeBadRequest, "图书已下架", nil)
		case errors.Is(err, service.ErrCartItemInvalid):
			respondError(c, response.CodeBadRequest, "购物车参数不合法", nil)
		default:
			respondError(c, response.CodeInternal, "加入购物车失败", err)
		}
		return
	}
	response.SuccessWithMsg(c, "已加入购物车", nil)
}

// ListCart 获取购物车
func (h *Handler) ListCart(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	items, err := h.CartService.List(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "查询购物车失败", err)
		return
	}
	response.Success(c, items)
}

// UpdateCartItemRequest 修改购物车请求
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateCartItem 修改购物车项数量
func (h *Handler) UpdateCartItem(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	bookID, ok := parseIDParam(c, "book_id")
	if !ok {
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	if err := h.CartService.UpdateQuantity(userID, bookID, req.Quantity); err != nil {
		if errors.Is(err, service.ErrCartItemInvalid) {
			respondError(c, response.CodeBadRequest, "购物车参数不合法", nil)
			return
		}
		respondError(c, response.CodeInternal, "修改购物车失败", err)
		return
	}
	response.SuccessWithMsg(c, "已更新", nil)
}

// RemoveCartItem 删除购物车项
func (h *Handler) RemoveCartItem(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	bookID, ok := parseIDParam(c, "book_id")
	if !ok {
		return
	}
	if err := h.CartService.RemoveItem(userID, bookID); err != nil {
		respondError(c, response.CodeInternal, "删除购物车项失败", err)
		return
	}
	response.SuccessWithMsg(c, "已删除", nil)
}
