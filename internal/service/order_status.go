package service

import (
	"github.com/bookvine/internal/constants"
	"github.com/bookvine/internal/models"
)

// DeriveOrderStatus 从履约记录集合派生订单展示状态。
// 判定顺序固定：空集合 -> none；全部取消 -> cancelled；全部送达 -> delivered；
// 存在已发货 -> shipped；存在处理中 -> processing；全部待处理 -> pending；
// 其余组合（如 pending 与 cancelled 混杂）-> mixed。
func DeriveOrderStatus(fulfillments []models.Fulfillment) string {
	total := len(fulfillments)
	if total == 0 {
		return constants.OrderStatusNone
	}

	var pendingCount int
	var processingCount int
	var shippedCount int
	var deliveredCount int
	var cancelledCount int
	for _, f := range fulfillments {
		switch f.Status {
		case constants.FulfillmentStatusPending:
			pendingCount++
		case constants.FulfillmentStatusProcessing:
			processingCount++
		case constants.FulfillmentStatusShipped:
			shippedCount++
		case constants.FulfillmentStatusDelivered:
			deliveredCount++
		case constants.FulfillmentStatusCancelled:
			cancelledCount++
		}
	}

	switch {
	case cancelledCount == total:
		return constants.OrderStatusCancelled
	case deliveredCount == total:
		return constants.OrderStatusDelivered
	case shippedCount > 0:
		return constants.OrderStatusShipped
	case processingCount > 0:
		return constants.OrderStatusProcessing
	case pendingCount == total:
		return constants.OrderStatusPending
	default:
		return constants.OrderStatusMixed
	}
}

// IsOrderCancellable 判断订单是否可整单取消：
// 履约记录非空，且全部为 pending 且未发过货。
func IsOrderCancellable(fulfillments []models.Fulfillment) bool {
	if len(fulfillments) == 0 {
		return false
	}
	for _, f := range fulfillments {
		if f.Status != constants.FulfillmentStatusPending || f.ShippedQty != 0 {
			return false
		}
	}
	return true
}
