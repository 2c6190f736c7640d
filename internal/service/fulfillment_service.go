package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bookvine/internal/cache"
	"github.com/bookvine/internal/constants"
	"github.com/bookvine/internal/logger"
	"github.com/bookvine/internal/models"
	"github.com/bookvine/internal/queue"
	"github.com/bookvine/internal/repository"

	"gorm.io/gorm"
)

const fulfillmentStatsCacheKey = "fulfillment:stats"
const fulfillmentStatsCacheTTL = 60 * time.Second

// FulfillmentService 履约服务
type FulfillmentService struct {
	orderRepo       repository.OrderRepository
	fulfillmentRepo repository.FulfillmentRepository
	queueClient     *queue.Client
}

// NewFulfillmentService 创建履约服务
func NewFulfillmentService(orderRepo repository.OrderRepository, fulfillmentRepo repository.FulfillmentRepository, queueClient *queue.Client) *FulfillmentService {
	return &FulfillmentService{
		orderRepo:       orderRepo,
		fulfillmentRepo: fulfillmentRepo,
		queueClient:     queueClient,
	}
}

// CreateBatchResult 批量创建结果（元素为图书 ID）
type CreateBatchResult struct {
	Succeeded []uint `json:"succeeded"`
	Failed    []uint `json:"failed"`
}

// CreateForOrder 为订单的每个订单项创建一条 pending 履约记录。
// 已存在的 (order_id, book_id) 记录视为成功，重试可收敛；
// 部分失败时返回 ErrFulfillmentPartialFailure 与明细。
func (s *FulfillmentService) CreateForOrder(orderID uint) (*CreateBatchResult, error) {
	if orderID == 0 {
		return nil, ErrFulfillmentInvalid
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	result := &CreateBatchResult{
		Succeeded: make([]uint, 0, len(order.Items)),
		Failed:    make([]uint, 0),
	}
	if len(order.Items) == 0 {
		return result, nil
	}

	now := time.Now()
	for _, item := range order.Items {
		fulfillment := &models.Fulfillment{
			OrderID:   orderID,
			BookID:    item.BookID,
			Status:    constants.FulfillmentStatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.fulfillmentRepo.Create(fulfillment); err != nil {
			if isDuplicateKeyError(err) {
				result.Succeeded = append(result.Succeeded, item.BookID)
				continue
			}
			logger.Warnw("fulfillment_create_line_failed",
				"order_id", orderID,
				"book_id", item.BookID,
				"error", err,
			)
			result.Failed = append(result.Failed, item.BookID)
			continue
		}
		result.Succeeded = append(result.Succeeded, item.BookID)
	}

	if len(result.Failed) > 0 {
		return result, ErrFulfillmentPartialFailure
	}
	return result, nil
}

// UpdateFulfillmentInput 履约更新输入
type UpdateFulfillmentInput struct {
	Status         *string
	ShippedQty     *int
	TrackingNumber *string
	FulfilledBy    *uint
	FulfilledAt    *time.Time
	ShippedAt      *time.Time
}

// Update 更新履约记录。
// 状态转移不做前置限制；切到 processing/shipped 时自动补打时间戳，
// 除非输入已显式给出。
func (s *FulfillmentService) Update(id uint, input UpdateFulfillmentInput) (*models.Fulfillment, error) {
	fulfillment, err := s.fulfillmentRepo.GetByID(id)
	if err != nil {
		return nil, ErrFulfillmentUpdateFailed
	}
	if fulfillment == nil {
		return nil, ErrFulfillmentNotFound
	}

	now := time.Now()
	updates := map[string]interface{}{
		"updated_at": now,
	}
	if input.Status != nil {
		status := strings.ToLower(strings.TrimSpace(*input.Status))
		if !isValidFulfillmentStatus(status) {
			return nil, ErrStatusInvalid
		}
		updates["status"] = status
		if status == constants.FulfillmentStatusProcessing && input.FulfilledAt == nil && fulfillment.FulfilledAt == nil {
			updates["fulfilled_at"] = now
		}
		if status == constants.FulfillmentStatusShipped && input.ShippedAt == nil && fulfillment.ShippedAt == nil {
			updates["shipped_at"] = now
		}
	}
	if input.ShippedQty != nil {
		if *input.ShippedQty < 0 {
			return nil, ErrShippedQtyInvalid
		}
		updates["shipped_qty"] = *input.ShippedQty
	}
	if input.TrackingNumber != nil {
		updates["tracking_number"] = strings.TrimSpace(*input.TrackingNumber)
	}
	if input.FulfilledBy != nil {
		updates["fulfilled_by"] = *input.FulfilledBy
	}
	if input.FulfilledAt != nil {
		updates["fulfilled_at"] = *input.FulfilledAt
	}
	if input.ShippedAt != nil {
		updates["shipped_at"] = *input.ShippedAt
	}

	if err := s.fulfillmentRepo.Update(id, updates); err != nil {
		return nil, ErrFulfillmentUpdateFailed
	}
	updated, err := s.fulfillmentRepo.GetByID(id)
	if err != nil || updated == nil {
		return nil, ErrFulfillmentUpdateFailed
	}
	if input.Status != nil && updated.Status != fulfillment.Status {
		s.notifyOrderStatus(updated.OrderID)
	}
	return updated, nil
}

// MarkAsShipped 标记发货：物流单号必填，数量缺省为 1。
func (s *FulfillmentService) MarkAsShipped(id uint, trackingNumber string, shippedQty int, adminID uint) (*models.Fulfillment, error) {
	tracking := strings.TrimSpace(trackingNumber)
	if tracking == "" {
		return nil, ErrTrackingRequired
	}
	if shippedQty <= 0 {
		shippedQty = 1
	}
	status := constants.FulfillmentStatusShipped
	input := UpdateFulfillmentInput{
		Status:         &status,
		TrackingNumber: &tracking,
		ShippedQty:     &shippedQty,
	}
	if adminID > 0 {
		input.FulfilledBy = &adminID
	}
	return s.Update(id, input)
}

// MarkAsDelivered 标记送达
func (s *FulfillmentService) MarkAsDelivered(id uint, adminID uint) (*models.Fulfillment, error) {
	status := constants.FulfillmentStatusDelivered
	input := UpdateFulfillmentInput{Status: &status}
	if adminID > 0 {
		input.FulfilledBy = &adminID
	}
	return s.Update(id, input)
}

// Cancel 取消单条履约记录，仅允许 pending 且未发货的记录。
func (s *FulfillmentService) Cancel(id uint) (*models.Fulfillment, error) {
	fulfillment, err := s.fulfillmentRepo.GetByID(id)
	if err != nil {
		return nil, ErrFulfillmentUpdateFailed
	}
	if fulfillment == nil {
		return nil, ErrFulfillmentNotFound
	}
	if fulfillment.Status != constants.FulfillmentStatusPending || fulfillment.ShippedQty != 0 {
		return nil, ErrFulfillmentNotCancellable
	}
	status := constants.FulfillmentStatusCancelled
	return s.Update(id, UpdateFulfillmentInput{Status: &status})
}

// CancelOrder 整单取消：事务内一次条件批量更新，
// 影响行数必须等于订单的履约记录总数，否则回滚。
func (s *FulfillmentService) CancelOrder(orderID uint) error {
	if orderID == 0 {
		return ErrOrderNotFound
	}
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.fulfillmentRepo.WithTx(tx)
		total, err := repo.CountByOrder(orderID)
		if err != nil {
			return err
		}
		if total == 0 {
			return ErrOrderNotCancellable
		}
		affected, err := repo.CancelOrderPending(orderID)
		if err != nil {
			return err
		}
		if affected != total {
			return ErrOrderNotCancellable
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrOrderNotCancellable) {
			return ErrOrderNotCancellable
		}
		logger.Errorw("fulfillment_cancel_order_failed", "order_id", orderID, "error", err)
		return ErrFulfillmentUpdateFailed
	}
	s.notifyOrderStatus(orderID)
	return nil
}

// CanCancelOrder 判断订单当前是否可整单取消
func (s *FulfillmentService) CanCancelOrder(orderID uint) (bool, error) {
	fulfillments, err := s.fulfillmentRepo.ListByOrder(orderID)
	if err != nil {
		return false, ErrOrderFetchFailed
	}
	return IsOrderCancellable(fulfillments), nil
}

// OrderStatus 派生订单展示状态
func (s *FulfillmentService) OrderStatus(orderID uint) (string, error) {
	fulfillments, err := s.fulfillmentRepo.ListByOrder(orderID)
	if err != nil {
		return "", ErrOrderFetchFailed
	}
	return DeriveOrderStatus(fulfillments), nil
}

// ListByOrder 获取订单的履约记录
func (s *FulfillmentService) ListByOrder(orderID uint) ([]models.Fulfillment, error) {
	fulfillments, err := s.fulfillmentRepo.ListByOrder(orderID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	return fulfillments, nil
}

// ListAdmin 管理端分页查询
func (s *FulfillmentService) ListAdmin(filter repository.FulfillmentListFilter) ([]models.Fulfillment, int64, error) {
	return s.fulfillmentRepo.ListAdmin(filter)
}

// GetByID 获取履约记录
func (s *FulfillmentService) GetByID(id uint) (*models.Fulfillment, error) {
	fulfillment, err := s.fulfillmentRepo.GetByID(id)
	if err != nil {
		return nil, ErrFulfillmentUpdateFailed
	}
	if fulfillment == nil {
		return nil, ErrFulfillmentNotFound
	}
	return fulfillment, nil
}

// Stats 按状态统计履约记录数，结果缓存 60 秒。
func (s *FulfillmentService) Stats(ctx context.Context) (map[string]int64, error) {
	var cached map[string]int64
	if hit, err := cache.GetJSON(ctx, fulfillmentStatsCacheKey, &cached); err == nil && hit {
		return cached, nil
	} else if err != nil {
		logger.Warnw("fulfillment_stats_cache_read_failed", "error", err)
	}

	counts, err := s.fulfillmentRepo.CountByStatus()
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, fulfillmentStatsCacheKey, counts, fulfillmentStatsCacheTTL); err != nil {
		logger.Warnw("fulfillment_stats_cache_write_failed", "error", err)
	}
	return counts, nil
}

// notifyOrderStatus 推送派生状态邮件任务，失败仅记录日志。
func (s *FulfillmentService) notifyOrderStatus(orderID uint) {
	if !s.queueClient.Enabled() {
		return
	}
	status, err := s.OrderStatus(orderID)
	if err != nil {
		logger.Warnw("fulfillment_derive_status_failed", "order_id", orderID, "error", err)
		return
	}
	if err := s.queueClient.EnqueueOrderStatusEmail(queue.OrderStatusEmailPayload{
		OrderID: orderID,
		Status:  status,
	}); err != nil {
		logger.Warnw("fulfillment_enqueue_status_email_failed",
			"order_id", orderID,
			"status", status,
			"error", err,
		)
	}
}

func isValidFulfillmentStatus(status string) bool {
	for _, valid := range constants.FulfillmentStatuses {
		if status == valid {
			return true
		}
	}
	return false
}

func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	message := err.Error()
	return strings.Contains(message, "UNIQUE constraint") ||
		strings.Contains(message, "duplicate key")
}
