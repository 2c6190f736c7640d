package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bookvine/internal/constants"
	"github.com/bookvine/internal/models"
	"github.com/bookvine/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newOrderTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Book{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Fulfillment{},
		&models.Discount{},
		&models.DiscountUsage{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func newOrderTestService(db *gorm.DB) *OrderService {
	orderRepo := repository.NewOrderRepository(db)
	bookRepo := repository.NewBookRepository(db)
	cartRepo := repository.NewCartRepository(db)
	discountRepo := repository.NewDiscountRepository(db)
	fulfillmentRepo := repository.NewFulfillmentRepository(db)
	discountService := NewDiscountService(discountRepo)
	fulfillmentService := NewFulfillmentService(orderRepo, fulfillmentRepo, nil)
	return NewOrderService(nil, orderRepo, bookRepo, cartRepo, discountRepo, discountService, fulfillmentService, nil)
}

func createTestBook(t *testing.T, db *gorm.DB, slug string, priceCents int64, stock int) *models.Book {
	t.Helper()
	book := &models.Book{
		Slug:       slug,
		Title:      slug,
		Author:     "tester",
		PriceCents: priceCents,
		Stock:      stock,
		IsActive:   true,
	}
	if err := db.Create(book).Error; err != nil {
		t.Fatalf("create book failed: %v", err)
	}
	return book
}

func TestCheckoutPersistsTotalsAndFulfillments(t *testing.T) {
	db := newOrderTestDB(t, "order_checkout")
	prevDB := models.DB
	models.DB = db
	defer func() { models.DB = prevDB }()

	svc := newOrderTestService(db)
	bookA := createTestBook(t, db, "book-a", 1999, 10)
	bookB := createTestBook(t, db, "book-b", 2000, 10)

	view, err := svc.Checkout(1, CheckoutInput{Items: []CheckoutItem{
		{BookID: bookA.ID, Quantity: 2},
		{BookID: bookB.ID, Quantity: 1},
	}})
	if err != nil {
		t.Fatalf("Checkout error: %v", err)
	}

	if view.SubtotalCents != 5998 {
		t.Fatalf("expected subtotal 5998, got %d", view.SubtotalCents)
	}
	if view.TaxCents != 495 {
		t.Fatalf("expected tax 495, got %d", view.TaxCents)
	}
	if view.TotalCents != 6493 {
		t.Fatalf("expected total 6493, got %d", view.TotalCents)
	}
	if !strings.HasPrefix(view.OrderNo, "BV") {
		t.Fatalf("unexpected order no: %s", view.OrderNo)
	}
	if view.Status != constants.OrderStatusPending {
		t.Fatalf("expected pending status, got %s", view.Status)
	}
	if !view.Cancellable {
		t.Fatalf("expected fresh order to be cancellable")
	}
	if len(view.Items) != 2 || len(view.Fulfillments) != 2 {
		t.Fatalf("expected 2 items and 2 fulfillments, got %d/%d", len(view.Items), len(view.Fulfillments))
	}

	// 库存已扣减
	var reloaded models.Book
	if err := db.First(&reloaded, bookA.ID).Error; err != nil {
		t.Fatalf("reload book failed: %v", err)
	}
	if reloaded.Stock != 8 {
		t.Fatalf("expected stock 8, got %d", reloaded.Stock)
	}
}

func TestCheckoutMergesDuplicateLines(t *testing.T) {
	db := newOrderTestDB(t, "order_checkout_merge")
	prevDB := models.DB
	models.DB = db
	defer func() { models.DB = prevDB }()

	svc := newOrderTestService(db)
	book := createTestBook(t, db, "book-merge", 1000, 10)

	view, err := svc.Checkout(1, CheckoutInput{Items: []CheckoutItem{
		{BookID: book.ID, Quantity: 1},
		{BookID: book.ID, Quantity: 2},
	}})
	if err != nil {
		t.Fatalf("Checkout error: %v", err)
	}
	if len(view.Items) != 1 {
		t.Fatalf("expected merged single item, got %d", len(view.Items))
	}
	if view.Items[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", view.Items[0].Quantity)
	}
}

func TestCheckoutUsesSalePrice(t *testing.T) {
	db := newOrderTestDB(t, "order_checkout_sale")
	prevDB := models.DB
	models.DB = db
	defer func() { models.DB = prevDB }()

	svc := newOrderTestService(db)
	salePrice := int64(1500)
	book := &models.Book{
		Slug:           "book-sale",
		Title:          "book-sale",
		Author:         "tester",
		PriceCents:     2000,
		SalePriceCents: &salePrice,
		OnSale:         true,
		Stock:          5,
		IsActive:       true,
	}
	if err := db.Create(book).Error; err != nil {
		t.Fatalf("create book failed: %v", err)
	}

	view, err := svc.Checkout(1, CheckoutInput{Items: []CheckoutItem{{BookID: book.ID, Quantity: 1}}})
	if err != nil {
		t.Fatalf("Checkout error: %v", err)
	}
	if view.Items[0].UnitPriceCents != 1500 {
		t.Fatalf("expected sale price 1500, got %d", view.Items[0].UnitPriceCents)
	}
}

func TestCheckoutInsufficientStock(t *testing.T) {
	db := newOrderTestDB(t, "order_checkout_stock")
	prevDB := models.DB
	models.DB = db
	defer func() { models.DB = prevDB }()

	svc := newOrderTestService(db)
	book := createTestBook(t, db, "book-low-stock", 1000, 1)

	if _, err := svc.Checkout(1, CheckoutInput{Items: []CheckoutItem{{BookID: book.ID, Quantity: 2}}}); !errors.Is(err, ErrStockInsufficient) {
		t.Fatalf("expected ErrStockInsufficient, got %v", err)
	}

	// 事务回滚：没有残留订单
	var count int64
	if err := db.Model(&models.Order{}).Count(&count).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no orders after rollback, got %d", count)
	}
}

func TestCheckoutInactiveBook(t *testing.T) {
	db := newOrderTestDB(t, "order_checkout_inactive")
	prevDB := models.DB
	models.DB = db
	defer func() { models.DB = prevDB }()

	svc := newOrderTestService(db)
	book := createTestBook(t, db, "book-inactive", 1000, 5)
	if err := db.Model(&models.Book{}).Where("id = ?", book.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate book failed: %v", err)
	}

	if _, err := svc.Checkout(1, CheckoutInput{Items: []CheckoutItem{{BookID: book.ID, Quantity: 1}}}); !errors.Is(err, ErrBookUnavailable) {
		t.Fatalf("expected ErrBookUnavailable, got %v", err)
	}
}

func TestCheckoutInvalidItems(t *testing.T) {
	db := newOrderTestDB(t, "order_checkout_invalid")
	prevDB := models.DB
	models.DB = db
	defer func() { models.DB = prevDB }()

	svc := newOrderTestService(db)
	if _, err := svc.Checkout(1, CheckoutInput{Items: []CheckoutItem{{BookID: 0, Quantity: 1}}}); !errors.Is(err, ErrCartItemInvalid) {
		t.Fatalf("expected ErrCartItemInvalid, got %v", err)
	}
	if _, err := svc.Checkout(1, CheckoutInput{Items: []CheckoutItem{{BookID: 1, Quantity: 0}}}); !errors.Is(err, ErrCartItemInvalid) {
		t.Fatalf("expected ErrCartItemInvalid, got %v", err)
	}
	if _, err := svc.Checkout(1, CheckoutInput{}); !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("expected ErrCartEmpty, got %v", err)
	}
}

func TestCheckoutWithDiscountRecordsUsage(t *testing.T) {
	db := newOrderTestDB(t, "order_checkout_discount")
	prevDB := models.DB
	models.DB = db
	defer func() { models.DB = prevDB }()

	svc := newOrderTestService(db)
	book := createTestBook(t, db, "book-discount", 1999, 10)
	discount := models.Discount{Code: "SAVE10", Type: "percent", PctOff: 10, IsActive: true, UsageLimit: 5}
	if err := db.Create(&discount).Error; err != nil {
		t.Fatalf("create discount failed: %v", err)
	}

	view, err := svc.Checkout(1, CheckoutInput{
		Items:        []CheckoutItem{{BookID: book.ID, Quantity: 2}, {BookID: book.ID, Quantity: 0}},
		DiscountCode: "save10",
	})
	if err == nil {
		t.Fatalf("expected invalid quantity to fail, got view %+v", view)
	}

	view, err = svc.Checkout(1, CheckoutInput{
		Items:        []CheckoutItem{{BookID: book.ID, Quantity: 2}},
		DiscountCode: "save10",
	})
	if err != nil {
		t.Fatalf("Checkout error: %v", err)
	}
	// 3998 * 10% = 399.8 -> 400
	if view.DiscountCents != 400 {
		t.Fatalf("expected discount 400, got %d", view.DiscountCents)
	}
	if view.DiscountID == nil || *view.DiscountID != discount.ID {
		t.Fatalf("expected discount id recorded, got %+v", view.DiscountID)
	}

	var reloaded models.Discount
	if err := db.First(&reloaded, discount.ID).Error; err != nil {
		t.Fatalf("reload discount failed: %v", err)
	}
	if reloaded.UsedCount != 1 {
		t.Fatalf("expected used_count 1, got %d", reloaded.UsedCount)
	}
	var usageCount int64
	if err := db.Model(&models.DiscountUsage{}).Where("discount_id = ? AND user_id = ?", discount.ID, 1).Count(&usageCount).Error; err != nil {
		t.Fatalf("count usages failed: %v", err)
	}
	if usageCount != 1 {
		t.Fatalf("expected 1 usage record, got %d", usageCount)
	}
}

func TestCheckoutFromCartClearsCart(t *testing.T) {
	db := newOrderTestDB(t, "order_checkout_cart")
	prevDB := models.DB
	models.DB = db
	defer func() { models.DB = prevDB }()

	svc := newOrderTestService(db)
	book := createTestBook(t, db, "book-cart", 1000, 10)
	if err := db.Create(&models.CartItem{UserID: 1, BookID: book.ID, Quantity: 2}).Error; err != nil {
		t.Fatalf("create cart item failed: %v", err)
	}

	view, err := svc.CheckoutFromCart(1, "")
	if err != nil {
		t.Fatalf("CheckoutFromCart error: %v", err)
	}
	if view.SubtotalCents != 2000 {
		t.Fatalf("expected subtotal 2000, got %d", view.SubtotalCents)
	}

	var cartCount int64
	if err := db.Model(&models.CartItem{}).Where("user_id = ?", 1).Count(&cartCount).Error; err != nil {
		t.Fatalf("count cart items failed: %v", err)
	}
	if cartCount != 0 {
		t.Fatalf("expected cart cleared, got %d items", cartCount)
	}
}

func TestCheckoutFromCartEmpty(t *testing.T) {
	db := newOrderTestDB(t, "order_checkout_cart_empty")
	prevDB := models.DB
	models.DB = db
	defer func() { models.DB = prevDB }()

	svc := newOrderTestService(db)
	if _, err := svc.CheckoutFromCart(1, ""); !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("expected ErrCartEmpty, got %v", err)
	}
}

func TestCancelUserOrderScopedToOwner(t *testing.T) {
	db := newOrderTestDB(t, "order_cancel_scope")
	prevDB := models.DB
	models.DB = db
	defer func() { models.DB = prevDB }()

	svc := newOrderTestService(db)
	book := createTestBook(t, db, "book-cancel", 1000, 10)
	view, err := svc.Checkout(1, CheckoutInput{Items: []CheckoutItem{{BookID: book.ID, Quantity: 1}}})
	if err != nil {
		t.Fatalf("Checkout error: %v", err)
	}

	if err := svc.CancelUserOrder(view.ID, 2); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound for other user, got %v", err)
	}
	if err := svc.CancelUserOrder(view.ID, 1); err != nil {
		t.Fatalf("CancelUserOrder error: %v", err)
	}

	reloaded, err := svc.GetUserOrder(view.ID, 1)
	if err != nil {
		t.Fatalf("GetUserOrder error: %v", err)
	}
	if reloaded.Status != constants.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", reloaded.Status)
	}
	if reloaded.Cancellable {
		t.Fatalf("expected cancelled order to be non-cancellable")
	}
}

func TestListOrdersAdminStatusFilter(t *testing.T) {
	db := newOrderTestDB(t, "order_admin_filter")
	prevDB := models.DB
	models.DB = db
	defer func() { models.DB = prevDB }()

	svc := newOrderTestService(db)
	book := createTestBook(t, db, "book-filter", 1000, 10)

	first, err := svc.Checkout(1, CheckoutInput{Items: []CheckoutItem{{BookID: book.ID, Quantity: 1}}})
	if err != nil {
		t.Fatalf("Checkout error: %v", err)
	}
	if _, err := svc.Checkout(2, CheckoutInput{Items: []CheckoutItem{{BookID: book.ID, Quantity: 1}}}); err != nil {
		t.Fatalf("Checkout error: %v", err)
	}
	if err := svc.CancelUserOrder(first.ID, 1); err != nil {
		t.Fatalf("CancelUserOrder error: %v", err)
	}

	views, total, err := svc.ListOrdersAdmin(repository.OrderListFilter{Page: 1, PageSize: 20}, "cancelled")
	if err != nil {
		t.Fatalf("ListOrdersAdmin error: %v", err)
	}
	if total != 1 || len(views) != 1 {
		t.Fatalf("expected 1 cancelled order, got total=%d len=%d", total, len(views))
	}
	if views[0].ID != first.ID {
		t.Fatalf("expected order %d, got %d", first.ID, views[0].ID)
	}

	views, total, err = svc.ListOrdersAdmin(repository.OrderListFilter{Page: 1, PageSize: 20}, "")
	if err != nil {
		t.Fatalf("ListOrdersAdmin error: %v", err)
	}
	if total != 2 || len(views) != 2 {
		t.Fatalf("expected 2 orders, got total=%d len=%d", total, len(views))
	}
}

func TestGenerateOrderNoFormat(t *testing.T) {
	orderNo := generateOrderNo()
	if !strings.HasPrefix(orderNo, "BV") {
		t.Fatalf("expected BV prefix, got %s", orderNo)
	}
	if len(orderNo) != 2+14+6 {
		t.Fatalf("unexpected order no length: %s", orderNo)
	}
}
