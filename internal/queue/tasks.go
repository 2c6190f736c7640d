package queue

import (
	"encoding/json"

	"github.com/bookvine/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderStatusEmail 订单状态邮件通知任务
	TaskOrderStatusEmail = constants.TaskOrderStatusEmail
	// TaskOrderCreateFulfillment 订单履约记录创建任务
	TaskOrderCreateFulfillment = constants.TaskOrderCreateFulfillment
)

// OrderStatusEmailPayload 订单状态邮件任务载荷
type OrderStatusEmailPayload struct {
	OrderID uint   `json:"order_id"`
	Status  string `json:"status"`
}

// OrderCreateFulfillmentPayload 订单履约创建任务载荷
type OrderCreateFulfillmentPayload struct {
	OrderID uint `json:"order_id"`
}

func newTask(name string, payload interface{}) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(name, body), nil
}

// NewOrderStatusEmailTask 创建订单状态邮件任务
func NewOrderStatusEmailTask(payload OrderStatusEmailPayload) (*asynq.Task, error) {
	return newTask(TaskOrderStatusEmail, payload)
}

// NewOrderCreateFulfillmentTask 创建订单履约创建任务
func NewOrderCreateFulfillmentTask(payload OrderCreateFulfillmentPayload) (*asynq.Task, error) {
	return newTask(TaskOrderCreateFulfillment, payload)
}
