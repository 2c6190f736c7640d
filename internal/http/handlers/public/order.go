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

// CheckoutItemRequest 下单行请求
type CheckoutItemRequest struct {
	BookID   uint `json:"book_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required"`
}

// CheckoutRequest 下单请求
type CheckoutRequest struct {
	Items        []CheckoutItemRequest `json:"items"`
	DiscountCode string                `json:"discount_code"`
	FromCart     bool                  `json:"from_cart"`
}

// Checkout 下单
func (h *Handler) Checkout(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	var view *service.OrderView
	var err error
	if req.FromCart {
		view, err = h.OrderService.CheckoutFromCart(userID, req.DiscountCode)
	} else {
		items := make([]service.CheckoutItem, 0, len(req.Items))
		for _, item := range req.Items {
			items = append(items, service.CheckoutItem{BookID: item.BookID, Quantity: item.Quantity})
		}
		view, err = h.OrderService.Checkout(userID, service.CheckoutInput{
			Items:        items,
			DiscountCode: req.DiscountCode,
		})
	}
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCartEmpty):
			respondError(c, response.CodeBadRequest, "购物车为空", nil)
		case errors.Is(err, service.ErrCartItemInvalid):
			respondError(c, response.CodeBadRequest, "下单参数不合法", nil)
		case errors.Is(err, service.ErrBookUnavailable):
			respondError(c, response.CodeBadRequest, "存在已下架图书", nil)
		case errors.Is(err, service.ErrStockInsufficient):
			respondError(c, response.CodeBadRequest, "库存不足", nil)
		case errors.Is(err, service.ErrDiscountNotFound),
			errors.Is(err, service.ErrDiscountInactive),
			errors.Is(err, service.ErrDiscountNotStarted),
			errors.Is(err, service.ErrDiscountExpired),
			errors.Is(err, service.ErrDiscountExhausted),
			errors.Is(err, service.ErrDiscountUserLimit):
			respondError(c, response.CodeBadRequest, "折扣码不可用", err)
		default:
			respondError(c, response.CodeInternal, "下单失败", err)
		}
		return
	}
	response.Success(c, view)
}

// ListOrders 用户订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	views, total, err := h.OrderService.ListUserOrders(repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   userID,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "查询订单失败", err)
		return
	}
	response.SuccessWithPage(c, views, handlershared.BuildPagination(page, pageSize, total))
}

// GetOrder 用户订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	view, err := h.OrderService.GetUserOrder(id, userID)
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

// CancelOrder 用户整单取消
func (h *Handler) CancelOrder(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.OrderService.CancelUserOrder(id, userID); err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "订单不存在", nil)
		case errors.Is(err, service.ErrOrderNotCancellable):
			respondError(c, response.CodeBadRequest, "订单当前不可取消", nil)
		default:
			respondError(c, response.CodeInternal, "取消订单失败", err)
		}
		return
	}
	response.SuccessWithMsg(c, "订单已取消", nil)
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "参数无效", err)
		return 0, false
	}
	return uint(id), true
}
