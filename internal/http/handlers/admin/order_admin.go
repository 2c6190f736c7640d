package admin

import (
	"errors"
	"strconv"

	handlershared "github.com/bookvine/internal/http/handlers/shared"
	"github.com/bookvine/internal/http/response"
	"github.com/bookvine/internal/repository"
	"github.com/bookvine/internal/service"

	"github.com/gin-gonic/gin"
)

// ListOrders 管理端订单列表；status 过滤作用于派生状态。
func (h *Handler) ListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)
	userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 32)

	views, total, err := h.OrderService.ListOrdersAdmin(repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   uint(userID),
		OrderNo:  c.Query("order_no"),
	}, c.Query("status"))
	if err != nil {
		respondError(c, response.CodeInternal, "查询订单失败", err)
		return
	}
	response.SuccessWithPage(c, views, handlershared.BuildPagination(page, pageSize, total))
}

// GetOrder 管理端订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	view, err := h.OrderService.GetOrder(id)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "订单不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "查询订单失败", err)
		return
	}
	response.Success(c, view)
}
