package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bookvine/internal/constants"
	"github.com/bookvine/internal/models"
	"github.com/bookvine/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newFulfillmentTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Order{}, &models.OrderItem{}, &models.Fulfillment{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func newFulfillmentTestService(db *gorm.DB) *FulfillmentService {
	orderRepo := repository.NewOrderRepository(db)
	fulfillmentRepo := repository.NewFulfillmentRepository(db)
	return NewFulfillmentService(orderRepo, fulfillmentRepo, nil)
}

func createTestOrder(t *testing.T, db *gorm.DB, bookIDs ...uint) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNo: fmt.Sprintf("BV%d", time.Now().UnixNano()),
		UserID:  1,
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	for _, bookID := range bookIDs {
		item := models.OrderItem{
			OrderID:        order.ID,
			BookID:         bookID,
			Title:          fmt.Sprintf("book-%d", bookID),
			UnitPriceCents: 1000,
			Quantity:       1,
			TotalCents:     1000,
		}
		if err := db.Create(&item).Error; err != nil {
			t.Fatalf("create order item failed: %v", err)
		}
	}
	return order
}

func TestCreateForOrderCreatesPendingLines(t *testing.T) {
	db := newFulfillmentTestDB(t, "fulfillment_create")
	svc := newFulfillmentTestService(db)
	order := createTestOrder(t, db, 10, 11)

	result, err := svc.CreateForOrder(order.ID)
	if err != nil {
		t.Fatalf("CreateForOrder error: %v", err)
	}
	if len(result.Succeeded) != 2 || len(result.Failed) != 0 {
		t.Fatalf("unexpected batch result: %+v", result)
	}

	var fulfillments []models.Fulfillment
	if err := db.Where("order_id = ?", order.ID).Find(&fulfillments).Error; err != nil {
		t.Fatalf("load fulfillments failed: %v", err)
	}
	if len(fulfillments) != 2 {
		t.Fatalf("expected 2 fulfillments, got %d", len(fulfillments))
	}
	for _, f := range fulfillments {
		if f.Status != constants.FulfillmentStatusPending {
			t.Fatalf("expected pending status, got %s", f.Status)
		}
		if f.ShippedQty != 0 {
			t.Fatalf("expected zero shipped qty, got %d", f.ShippedQty)
		}
	}
}

func TestCreateForOrderRetryIsIdempotent(t *testing.T) {
	db := newFulfillmentTestDB(t, "fulfillment_retry")
	svc := newFulfillmentTestService(db)
	order := createTestOrder(t, db, 10, 11)

	if _, err := svc.CreateForOrder(order.ID); err != nil {
		t.Fatalf("first CreateForOrder error: %v", err)
	}
	result, err := svc.CreateForOrder(order.ID)
	if err != nil {
		t.Fatalf("retry CreateForOrder error: %v", err)
	}
	if len(result.Succeeded) != 2 || len(result.Failed) != 0 {
		t.Fatalf("expected duplicates to count as succeeded, got: %+v", result)
	}

	var count int64
	if err := db.Model(&models.Fulfillment{}).Where("order_id = ?", order.ID).Count(&count).Error; err != nil {
		t.Fatalf("count fulfillments failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 fulfillments after retry, got %d", count)
	}
}

func TestCreateForOrderNotFound(t *testing.T) {
	db := newFulfillmentTestDB(t, "fulfillment_missing_order")
	svc := newFulfillmentTestService(db)

	if _, err := svc.CreateForOrder(999); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestUpdateAutoStampsProcessing(t *testing.T) {
	db := newFulfillmentTestDB(t, "fulfillment_update_processing")
	svc := newFulfillmentTestService(db)
	order := createTestOrder(t, db, 10)
	if _, err := svc.CreateForOrder(order.ID); err != nil {
		t.Fatalf("CreateForOrder error: %v", err)
	}
	fulfillments, err := svc.ListByOrder(order.ID)
	if err != nil || len(fulfillments) != 1 {
		t.Fatalf("list fulfillments failed: %v", err)
	}

	status := constants.FulfillmentStatusProcessing
	updated, err := svc.Update(fulfillments[0].ID, UpdateFulfillmentInput{Status: &status})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.Status != constants.FulfillmentStatusProcessing {
		t.Fatalf("expected processing, got %s", updated.Status)
	}
	if updated.FulfilledAt == nil {
		t.Fatalf("expected fulfilled_at to be stamped")
	}
}

func TestUpdateKeepsFirstFulfilledAt(t *testing.T) {
	db := newFulfillmentTestDB(t, "fulfillment_update_keep_stamp")
	svc := newFulfillmentTestService(db)
	order := createTestOrder(t, db, 10)
	if _, err := svc.CreateForOrder(order.ID); err != nil {
		t.Fatalf("CreateForOrder error: %v", err)
	}
	fulfillments, _ := svc.ListByOrder(order.ID)

	status := constants.FulfillmentStatusProcessing
	first, err := svc.Update(fulfillments[0].ID, UpdateFulfillmentInput{Status: &status})
	if err != nil || first.FulfilledAt == nil {
		t.Fatalf("first Update failed: %v", err)
	}

	// 重复切到 processing 不覆盖首次时间戳
	time.Sleep(10 * time.Millisecond)
	again, err := svc.Update(fulfillments[0].ID, UpdateFulfillmentInput{Status: &status})
	if err != nil {
		t.Fatalf("second Update error: %v", err)
	}
	if again.FulfilledAt == nil || !again.FulfilledAt.Equal(*first.FulfilledAt) {
		t.Fatalf("fulfilled_at changed on repeat update: first=%v again=%v", first.FulfilledAt, again.FulfilledAt)
	}

	// 显式传入则以输入为准
	explicit := time.Now().Add(-time.Hour).Truncate(time.Second)
	forced, err := svc.Update(fulfillments[0].ID, UpdateFulfillmentInput{Status: &status, FulfilledAt: &explicit})
	if err != nil {
		t.Fatalf("explicit Update error: %v", err)
	}
	if forced.FulfilledAt == nil || !forced.FulfilledAt.Equal(explicit) {
		t.Fatalf("explicit fulfilled_at not applied: %v", forced.FulfilledAt)
	}
}

func TestUpdateRejectsInvalidStatus(t *testing.T) {
	db := newFulfillmentTestDB(t, "fulfillment_update_invalid")
	svc := newFulfillmentTestService(db)
	order := createTestOrder(t, db, 10)
	if _, err := svc.CreateForOrder(order.ID); err != nil {
		t.Fatalf("CreateForOrder error: %v", err)
	}
	fulfillments, _ := svc.ListByOrder(order.ID)

	status := "teleported"
	if _, err := svc.Update(fulfillments[0].ID, UpdateFulfillmentInput{Status: &status}); !errors.Is(err, ErrStatusInvalid) {
		t.Fatalf("expected ErrStatusInvalid, got %v", err)
	}
}

func TestMarkAsShippedRequiresTracking(t *testing.T) {
	db := newFulfillmentTestDB(t, "fulfillment_ship_tracking")
	svc := newFulfillmentTestService(db)
	order := createTestOrder(t, db, 10)
	if _, err := svc.CreateForOrder(order.ID); err != nil {
		t.Fatalf("CreateForOrder error: %v", err)
	}
	fulfillments, _ := svc.ListByOrder(order.ID)

	if _, err := svc.MarkAsShipped(fulfillments[0].ID, "  ", 1, 0); !errors.Is(err, ErrTrackingRequired) {
		t.Fatalf("expected ErrTrackingRequired, got %v", err)
	}

	updated, err := svc.MarkAsShipped(fulfillments[0].ID, "SF123456", 0, 7)
	if err != nil {
		t.Fatalf("MarkAsShipped error: %v", err)
	}
	if updated.Status != constants.FulfillmentStatusShipped {
		t.Fatalf("expected shipped, got %s", updated.Status)
	}
	if updated.ShippedQty != 1 {
		t.Fatalf("expected default shipped qty 1, got %d", updated.ShippedQty)
	}
	if updated.TrackingNumber != "SF123456" {
		t.Fatalf("unexpected tracking number: %s", updated.TrackingNumber)
	}
	if updated.ShippedAt == nil {
		t.Fatalf("expected shipped_at to be stamped")
	}
	if updated.FulfilledBy == nil || *updated.FulfilledBy != 7 {
		t.Fatalf("expected fulfilled_by 7, got %+v", updated.FulfilledBy)
	}
}

func TestCancelSingleRejectsNonPending(t *testing.T) {
	db := newFulfillmentTestDB(t, "fulfillment_cancel_single")
	svc := newFulfillmentTestService(db)
	order := createTestOrder(t, db, 10)
	if _, err := svc.CreateForOrder(order.ID); err != nil {
		t.Fatalf("CreateForOrder error: %v", err)
	}
	fulfillments, _ := svc.ListByOrder(order.ID)

	if _, err := svc.MarkAsShipped(fulfillments[0].ID, "SF1", 1, 0); err != nil {
		t.Fatalf("MarkAsShipped error: %v", err)
	}
	if _, err := svc.Cancel(fulfillments[0].ID); !errors.Is(err, ErrFulfillmentNotCancellable) {
		t.Fatalf("expected ErrFulfillmentNotCancellable, got %v", err)
	}
}

func TestCancelOrderAllPending(t *testing.T) {
	db := newFulfillmentTestDB(t, "fulfillment_cancel_order")
	prevDB := models.DB
	models.DB = db
	defer func() { models.DB = prevDB }()

	svc := newFulfillmentTestService(db)
	order := createTestOrder(t, db, 10, 11, 12)
	if _, err := svc.CreateForOrder(order.ID); err != nil {
		t.Fatalf("CreateForOrder error: %v", err)
	}

	if err := svc.CancelOrder(order.ID); err != nil {
		t.Fatalf("CancelOrder error: %v", err)
	}

	var count int64
	if err := db.Model(&models.Fulfillment{}).
		Where("order_id = ? AND status = ?", order.ID, constants.FulfillmentStatusCancelled).
		Count(&count).Error; err != nil {
		t.Fatalf("count cancelled failed: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected all 3 fulfillments cancelled, got %d", count)
	}
}

func TestCancelOrderAllOrNothing(t *testing.T) {
	db := newFulfillmentTestDB(t, "fulfillment_cancel_partial")
	prevDB := models.DB
	models.DB = db
	defer func() { models.DB = prevDB }()

	svc := newFulfillmentTestService(db)
	order := createTestOrder(t, db, 10, 11)
	if _, err := svc.CreateForOrder(order.ID); err != nil {
		t.Fatalf("CreateForOrder error: %v", err)
	}
	fulfillments, _ := svc.ListByOrder(order.ID)
	status := constants.FulfillmentStatusProcessing
	if _, err := svc.Update(fulfillments[0].ID, UpdateFulfillmentInput{Status: &status}); err != nil {
		t.Fatalf("Update error: %v", err)
	}

	if err := svc.CancelOrder(order.ID); !errors.Is(err, ErrOrderNotCancellable) {
		t.Fatalf("expected ErrOrderNotCancellable, got %v", err)
	}

	// 事务回滚：pending 记录不能被部分取消
	var cancelled int64
	if err := db.Model(&models.Fulfillment{}).
		Where("order_id = ? AND status = ?", order.ID, constants.FulfillmentStatusCancelled).
		Count(&cancelled).Error; err != nil {
		t.Fatalf("count cancelled failed: %v", err)
	}
	if cancelled != 0 {
		t.Fatalf("expected no cancelled fulfillments after rollback, got %d", cancelled)
	}
}

func TestCancelOrderEmpty(t *testing.T) {
	db := newFulfillmentTestDB(t, "fulfillment_cancel_empty")
	prevDB := models.DB
	models.DB = db
	defer func() { models.DB = prevDB }()

	svc := newFulfillmentTestService(db)
	order := createTestOrder(t, db)

	if err := svc.CancelOrder(order.ID); !errors.Is(err, ErrOrderNotCancellable) {
		t.Fatalf("expected ErrOrderNotCancellable for empty order, got %v", err)
	}
}

func TestCanCancelOrder(t *testing.T) {
	db := newFulfillmentTestDB(t, "fulfillment_can_cancel")
	svc := newFulfillmentTestService(db)
	order := createTestOrder(t, db, 10)
	if _, err := svc.CreateForOrder(order.ID); err != nil {
		t.Fatalf("CreateForOrder error: %v", err)
	}

	ok, err := svc.CanCancelOrder(order.ID)
	if err != nil || !ok {
		t.Fatalf("expected cancellable, got ok=%v err=%v", ok, err)
	}

	fulfillments, _ := svc.ListByOrder(order.ID)
	if _, err := svc.MarkAsShipped(fulfillments[0].ID, "SF1", 1, 0); err != nil {
		t.Fatalf("MarkAsShipped error: %v", err)
	}
	ok, err = svc.CanCancelOrder(order.ID)
	if err != nil || ok {
		t.Fatalf("expected non-cancellable after ship, got ok=%v err=%v", ok, err)
	}
}

func TestOrderStatusDerivation(t *testing.T) {
	db := newFulfillmentTestDB(t, "fulfillment_order_status")
	svc := newFulfillmentTestService(db)
	order := createTestOrder(t, db, 10, 11)
	if _, err := svc.CreateForOrder(order.ID); err != nil {
		t.Fatalf("CreateForOrder error: %v", err)
	}

	status, err := svc.OrderStatus(order.ID)
	if err != nil || status != constants.OrderStatusPending {
		t.Fatalf("expected pending, got %s err=%v", status, err)
	}

	fulfillments, _ := svc.ListByOrder(order.ID)
	if _, err := svc.MarkAsShipped(fulfillments[0].ID, "SF1", 1, 0); err != nil {
		t.Fatalf("MarkAsShipped error: %v", err)
	}
	status, err = svc.OrderStatus(order.ID)
	if err != nil || status != constants.OrderStatusShipped {
		t.Fatalf("expected shipped, got %s err=%v", status, err)
	}
}
