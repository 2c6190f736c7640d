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

// ListFulfillments 履约记录分页列表
func (h *Handler) ListFulfillments(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)
	orderID, _ := strconv.ParseUint(c.Query("order_id"), 10, 32)
	bookID, _ := strconv.ParseUint(c.Query("book_id"), 10, 32)

	fulfillments, total, err := h.FulfillmentService.ListAdmin(repository.FulfillmentListFilter{
		Page:     page,
		PageSize: pageSize,
		OrderID:  uint(orderID),
		BookID:   uint(bookID),
		Status:   c.Query("status"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "查询履约记录失败", err)
		return
	}
	response.SuccessWithPage(c, fulfillments, handlershared.BuildPagination(page, pageSize, total))
}

// GetFulfillment 履约记录详情
func (h *Handler) GetFulfillment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	fulfillment, err := h.FulfillmentService.GetByID(id)
	if err != nil {
		if errors.Is(err, service.ErrFulfillmentNotFound) {
			respondError(c, response.CodeNotFound, "履约记录不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "查询履约记录失败", err)
		return
	}
	response.Success(c, fulfillment)
}

// UpdateFulfillmentRequest 履约更新请求
type UpdateFulfillmentRequest struct {
	Status         *string    `json:"status"`
	ShippedQty     *int       `json:"shipped_qty"`
	TrackingNumber *string    `json:"tracking_number"`
	FulfilledAt    *time.Time `json:"fulfilled_at"`
	ShippedAt      *time.Time `json:"shipped_at"`
}

// UpdateFulfillment 更新履约记录
func (h *Handler) UpdateFulfillment(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateFulfillmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	fulfillment, err := h.FulfillmentService.Update(id, service.UpdateFulfillmentInput{
		Status:         req.Status,
		ShippedQty:     req.ShippedQty,
		TrackingNumber: req.TrackingNumber,
		FulfilledBy:    &adminID,
		FulfilledAt:    req.FulfilledAt,
		ShippedAt:      req.ShippedAt,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFulfillmentNotFound):
			respondError(c, response.CodeNotFound, "履约记录不存在", nil)
		case errors.Is(err, service.ErrStatusInvalid):
			respondError(c, response.CodeBadRequest, "状态不合法", nil)
		case errors.Is(err, service.ErrShippedQtyInvalid):
			respondError(c, response.CodeBadRequest, "发货数量不合法", nil)
		default:
			respondError(c, response.CodeInternal, "更新履约记录失败", err)
		}
		return
	}
	response.Success(c, fulfillment)
}

// ShipFulfillmentRequest 发货请求
type ShipFulfillmentRequest struct {
	TrackingNumber string `json:"tracking_number" binding:"required"`
	ShippedQty     int    `json:"shipped_qty"`
}

// ShipFulfillment 标记发货
func (h *Handler) ShipFulfillment(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ShipFulfillmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	fulfillment, err := h.FulfillmentService.MarkAsShipped(id, req.TrackingNumber, req.ShippedQty, adminID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFulfillmentNotFound):
			respondError(c, response.CodeNotFound, "履约记录不存在", nil)
		case errors.Is(err, service.ErrTrackingRequired):
			respondError(c, response.CodeBadRequest, "物流单号必填", nil)
		default:
			respondError(c, response.CodeInternal, "发货失败", err)
		}
		return
	}
	response.Success(c, fulfillment)
}

// DeliverFulfillment 标记送达
func (h *Handler) DeliverFulfillment(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	fulfillment, err := h.FulfillmentService.MarkAsDelivered(id, adminID)
	if err != nil {
		if errors.Is(err, service.ErrFulfillmentNotFound) {
			respondError(c, response.CodeNotFound, "履约记录不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "标记送达失败", err)
		return
	}
	response.Success(c, fulfillment)
}

// CancelFulfillment 取消单条履约记录
func (h *Handler) CancelFulfillment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	fulfillment, err := h.FulfillmentService.Cancel(id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFulfillmentNotFound):
			respondError(c, response.CodeNotFound, "履约记录不存在", nil)
		case errors.Is(err, service.ErrFulfillmentNotCancellable):
			respondError(c, response.CodeBadRequest, "该履约记录不可取消", nil)
		default:
			respondError(c, response.CodeInternal, "取消失败", err)
		}
		return
	}
	response.Success(c, fulfillment)
}

// CreateOrderFulfillments 为订单补建履约记录（可重试）
func (h *Handler) CreateOrderFulfillments(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.FulfillmentService.CreateForOrder(orderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "订单不存在", nil)
		case errors.Is(err, service.ErrFulfillmentPartialFailure):
			requestLog(c).Warnw("admin_create_fulfillments_partial_failure",
				"order_id", orderID,
				"failed", result.Failed,
			)
			response.ErrorWithData(c, response.CodeInternal, "部分履约记录创建失败", result)
		default:
			respondError(c, response.CodeInternal, "创建履约记录失败", err)
		}
		return
	}
	response.Success(c, result)
}

// CancelOrderFulfillments 整单取消
func (h *Handler) CancelOrderFulfillments(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.FulfillmentService.CancelOrder(orderID); err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotCancellable):
			respondError(c, response.CodeBadRequest, "订单当前不可取消", nil)
		default:
			respondError(c, response.CodeInternal, "取消订单失败", err)
		}
		return
	}
	response.SuccessWithMsg(c, "订单已取消", nil)
}

// FulfillmentStats 履约状态统计
func (h *Handler) FulfillmentStats(c *gin.Context) {
	counts, err := h.FulfillmentService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "统计失败", err)
		return
	}
	response.Success(c, counts)
}
