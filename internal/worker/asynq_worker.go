package worker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/bookvine/internal/logger"
	"github.com/bookvine/internal/provider"
	"github.com/bookvine/internal/queue"
	"github.com/bookvine/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 消费订单相关的异步任务
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{Container: c}
}

// Register 挂载任务处理器
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderStatusEmail, c.handleOrderStatusEmail)
	mux.HandleFunc(queue.TaskOrderCreateFulfillment, c.handleOrderCreateFulfillment)
}

// skipTask 记录后吞掉任务，不触发重试
func skipTask(reason string, kv ...interface{}) error {
	logger.Debugw(reason, kv...)
	return nil
}

// failTask 记录后返回错误，交给 asynq 重试
func failTask(reason string, err error, kv ...interface{}) error {
	logger.Warnw(reason, append(kv, "error", err)...)
	return err
}

func (c *Consumer) handleOrderStatusEmail(_ context.Context, task *asynq.Task) error {
	var payload queue.OrderStatusEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return failTask("worker_order_status_email_unmarshal_failed", err)
	}
	if payload.OrderID == 0 {
		return skipTask("worker_order_status_email_skip_invalid_payload", "order_id", payload.OrderID)
	}

	order, err := c.OrderRepo.GetByID(payload.OrderID)
	if err != nil {
		return failTask("worker_order_status_email_fetch_order_failed", err, "order_id", payload.OrderID)
	}
	if order == nil {
		return skipTask("worker_order_status_email_skip_order_not_found", "order_id", payload.OrderID)
	}

	receiverEmail, err := c.OrderRepo.ResolveReceiverEmailByOrderID(order.ID)
	if err != nil {
		return failTask("worker_order_status_email_resolve_receiver_failed", err, "order_id", order.ID)
	}
	if strings.TrimSpace(receiverEmail) == "" {
		return skipTask("worker_order_status_email_skip_empty_receiver", "order_id", order.ID, "order_no", order.OrderNo)
	}
	if c.EmailService == nil {
		logger.Warnw("worker_order_status_email_skip_email_service_nil", "order_id", order.ID, "order_no", order.OrderNo)
		return nil
	}

	status := strings.TrimSpace(payload.Status)
	err = c.EmailService.SendOrderStatusEmail(receiverEmail, service.OrderStatusEmailInput{
		OrderNo:    order.OrderNo,
		Status:     status,
		TotalCents: order.TotalCents,
	})
	if err != nil {
		// 邮件未启用不算失败，避免无意义的重试
		if errors.Is(err, service.ErrEmailServiceDisabled) || errors.Is(err, service.ErrEmailServiceNotConfigured) {
			return skipTask("worker_order_status_email_skip_disabled", "order_id", order.ID, "order_no", order.OrderNo)
		}
		return failTask("worker_order_status_email_send_failed", err,
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"receiver_email", receiverEmail,
			"status", status,
		)
	}
	return nil
}

func (c *Consumer) handleOrderCreateFulfillment(_ context.Context, task *asynq.Task) error {
	var payload queue.OrderCreateFulfillmentPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return failTask("worker_order_create_fulfillment_unmarshal_failed", err)
	}
	if payload.OrderID == 0 {
		return skipTask("worker_order_create_fulfillment_skip_invalid_payload", "order_id", payload.OrderID)
	}

	result, err := c.FulfillmentService.CreateForOrder(payload.OrderID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, service.ErrOrderNotFound):
		return skipTask("worker_order_create_fulfillment_skip_order_not_found", "order_id", payload.OrderID)
	case errors.Is(err, service.ErrFulfillmentPartialFailure):
		return failTask("worker_order_create_fulfillment_partial", err,
			"order_id", payload.OrderID,
			"succeeded", result.Succeeded,
			"failed", result.Failed,
		)
	default:
		return failTask("worker_order_create_fulfillment_failed", err, "order_id", payload.OrderID)
	}
}
