package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/bookvine/internal/config"
	"github.com/bookvine/internal/logger"
	"github.com/bookvine/internal/models"
	"github.com/bookvine/internal/queue"
	"github.com/bookvine/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var defaultTaxRate = decimal.RequireFromString("0.0825")

// OrderService 订单服务
type OrderService struct {
	cfg             *config.Config
	orderRepo       repository.OrderRepository
	bookRepo        repository.BookRepository
	cartRepo        repository.CartRepository
	discountRepo    repository.DiscountRepository
	discountService *DiscountService
	fulfillment     *FulfillmentService
	queueClient     *queue.Client
	taxRate         decimal.Decimal
}

// NewOrderService 创建订单服务
func NewOrderService(
	cfg *config.Config,
	orderRepo repository.OrderRepository,
	bookRepo repository.BookRepository,
	cartRepo repository.CartRepository,
	discountRepo repository.DiscountRepository,
	discountService *DiscountService,
	fulfillment *FulfillmentService,
	queueClient *queue.Client,
) *OrderService {
	return &OrderService{
		cfg:             cfg,
		orderRepo:       orderRepo,
		bookRepo:        bookRepo,
		cartRepo:        cartRepo,
		discountRepo:    discountRepo,
		discountService: discountService,
		fulfillment:     fulfillment,
		queueClient:     queueClient,
		taxRate:         resolveTaxRate(cfg),
	}
}

func resolveTaxRate(cfg *config.Config) decimal.Decimal {
	if cfg == nil {
		return defaultTaxRate
	}
	raw := strings.TrimSpace(cfg.Checkout.TaxRate)
	if raw == "" {
		return defaultTaxRate
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil || rate.IsNegative() {
		logger.Warnw("checkout_tax_rate_invalid", "raw", raw, "fallback", defaultTaxRate.String())
		return defaultTaxRate
	}
	return rate
}

// CheckoutItem 下单行
type CheckoutItem struct {
	BookID   uint
	Quantity int
}

// CheckoutInput 下单输入
type CheckoutInput struct {
	Items        []CheckoutItem
	DiscountCode string
	FromCart     bool
}

// OrderView 订单视图：持久化字段之外附带派生状态与可取消标记
type OrderView struct {
	models.Order
	Status      string `json:"status"`
	Cancellable bool   `json:"cancellable"`
}

// Checkout 下单：校验图书与折扣码，计算金额，事务内落库并扣减库存，
// 随后创建履约记录（队列可用则异步，否则内联）。
func (s *OrderService) Checkout(userID uint, input CheckoutInput) (*OrderView, error) {
	if userID == 0 {
		return nil, ErrOrderCreateFailed
	}
	lines, err := mergeCheckoutItems(input.Items)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrCartEmpty
	}

	ids := make([]uint, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.BookID)
	}
	books, err := s.bookRepo.GetActiveByIDs(ids)
	if err != nil {
		return nil, ErrOrderCreateFailed
	}
	bookByID := make(map[uint]models.Book, len(books))
	for _, book := range books {
		bookByID[book.ID] = book
	}

	now := time.Now()
	totalLines := make([]CheckoutLine, 0, len(lines))
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		book, ok := bookByID[line.BookID]
		if !ok {
			return nil, ErrBookUnavailable
		}
		unitPrice := book.EffectiveUnitPriceCents()
		totalLines = append(totalLines, CheckoutLine{
			UnitPriceCents: unitPrice,
			Quantity:       line.Quantity,
		})
		items = append(items, models.OrderItem{
			BookID:         book.ID,
			Title:          book.Title,
			UnitPriceCents: unitPrice,
			Quantity:       line.Quantity,
			TotalCents:     unitPrice * int64(line.Quantity),
		})
	}

	var discount *models.Discount
	pctOff := 0
	if strings.TrimSpace(input.DiscountCode) != "" {
		discount, err = s.discountService.Validate(input.DiscountCode, userID, now)
		if err != nil {
			return nil, err
		}
		pctOff = discount.PctOff
	}

	totals := CalculateTotals(totalLines, pctOff, s.taxRate)

	order := &models.Order{
		OrderNo:       generateOrderNo(),
		UserID:        userID,
		SubtotalCents: totals.SubtotalCents,
		DiscountCents: totals.DiscountCents,
		TaxCents:      totals.TaxCents,
		TotalCents:    totals.TotalCents,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if discount != nil {
		order.DiscountID = &discount.ID
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		bookRepo := s.bookRepo.WithTx(tx)
		for _, line := range lines {
			affected, err := bookRepo.DecrementStock(line.BookID, line.Quantity)
			if err != nil {
				return err
			}
			if affected == 0 {
				return ErrStockInsufficient
			}
		}

		if err := s.orderRepo.WithTx(tx).Create(order, items); err != nil {
			return err
		}

		if discount != nil {
			discountRepo := s.discountRepo.WithTx(tx)
			affected, err := discountRepo.IncrementUsed(discount.ID)
			if err != nil {
				return err
			}
			if affected == 0 {
				return ErrDiscountExhausted
			}
			if err := discountRepo.CreateUsage(&models.DiscountUsage{
				DiscountID: discount.ID,
				UserID:     userID,
				OrderID:    order.ID,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrStockInsufficient):
			return nil, ErrStockInsufficient
		case errors.Is(err, ErrDiscountExhausted):
			return nil, ErrDiscountExhausted
		default:
			logger.Errorw("order_checkout_failed", "user_id", userID, "error", err)
			return nil, ErrOrderCreateFailed
		}
	}

	if input.FromCart {
		if err := s.cartRepo.Clear(userID); err != nil {
			logger.Warnw("order_clear_cart_failed", "user_id", userID, "order_id", order.ID, "error", err)
		}
	}

	s.dispatchFulfillments(order.ID)

	view, err := s.GetUserOrder(order.ID, userID)
	if err != nil {
		return nil, err
	}
	return view, nil
}

// dispatchFulfillments 创建订单履约记录：队列可用则异步，否则内联执行。
func (s *OrderService) dispatchFulfillments(orderID uint) {
	if s.queueClient.Enabled() {
		err := s.queueClient.EnqueueOrderCreateFulfillment(queue.OrderCreateFulfillmentPayload{
			OrderID: orderID,
		})
		if err == nil {
			return
		}
		logger.Warnw("order_enqueue_create_fulfillment_failed", "order_id", orderID, "error", err)
	}
	if _, err := s.fulfillment.CreateForOrder(orderID); err != nil {
		logger.Warnw("order_create_fulfillments_inline_failed", "order_id", orderID, "error", err)
	}
}

// CheckoutFromCart 按购物车内容下单
func (s *OrderService) CheckoutFromCart(userID uint, discountCode string) (*OrderView, error) {
	cartItems, err := s.cartRepo.ListByUser(userID)
	if err != nil {
		return nil, ErrOrderCreateFailed
	}
	items := make([]CheckoutItem, 0, len(cartItems))
	for _, item := range cartItems {
		items = append(items, CheckoutItem{BookID: item.BookID, Quantity: item.Quantity})
	}
	return s.Checkout(userID, CheckoutInput{
		Items:        items,
		DiscountCode: discountCode,
		FromCart:     true,
	})
}

// GetUserOrder 获取用户订单详情（带派生状态）
func (s *OrderService) GetUserOrder(id uint, userID uint) (*OrderView, error) {
	order, err := s.orderRepo.GetByIDAndUser(id, userID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return s.buildView(order), nil
}

// GetOrder 管理端获取订单详情
func (s *OrderService) GetOrder(id uint) (*OrderView, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return s.buildView(order), nil
}

// ListUserOrders 用户订单列表
func (s *OrderService) ListUserOrders(filter repository.OrderListFilter) ([]OrderView, int64, error) {
	orders, total, err := s.orderRepo.ListByUser(filter)
	if err != nil {
		return nil, 0, ErrOrderFetchFailed
	}
	return s.buildViews(orders), total, nil
}

// ListOrdersAdmin 管理端订单列表；状态过滤在派生之后应用。
func (s *OrderService) ListOrdersAdmin(filter repository.OrderListFilter, status string) ([]OrderView, int64, error) {
	orders, total, err := s.orderRepo.ListAdmin(filter)
	if err != nil {
		return nil, 0, ErrOrderFetchFailed
	}
	views := s.buildViews(orders)
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" {
		return views, total, nil
	}
	filtered := make([]OrderView, 0, len(views))
	for _, view := range views {
		if view.Status == status {
			filtered = append(filtered, view)
		}
	}
	return filtered, int64(len(filtered)), nil
}

// CancelUserOrder 用户整单取消，委托履约服务的条件批量取消。
func (s *OrderService) CancelUserOrder(id uint, userID uint) error {
	order, err := s.orderRepo.GetByIDAndUser(id, userID)
	if err != nil {
		return ErrOrderFetchFailed
	}
	if order == nil {
		return ErrOrderNotFound
	}
	return s.fulfillment.CancelOrder(order.ID)
}

func (s *OrderService) buildView(order *models.Order) *OrderView {
	return &OrderView{
		Order:       *order,
		Status:      DeriveOrderStatus(order.Fulfillments),
		Cancellable: IsOrderCancellable(order.Fulfillments),
	}
}

func (s *OrderService) buildViews(orders []models.Order) []OrderView {
	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, *s.buildView(&orders[i]))
	}
	return views
}

// mergeCheckoutItems 合并重复图书的下单行
func mergeCheckoutItems(items []CheckoutItem) ([]CheckoutItem, error) {
	merged := make([]CheckoutItem, 0, len(items))
	index := make(map[uint]int, len(items))
	for _, item := range items {
		if item.BookID == 0 || item.Quantity <= 0 {
			return nil, ErrCartItemInvalid
		}
		if pos, ok := index[item.BookID]; ok {
			merged[pos].Quantity += item.Quantity
			continue
		}
		index[item.BookID] = len(merged)
		merged = append(merged, item)
	}
	return merged, nil
}

func generateOrderNo() string {
	now := time.Now().Format("20060102150405")
	return fmt.Sprintf("BV%s%s", now, randNumeric(6))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		fmt.Fprintf(&b, "%d", n.Int64())
	}
	return b.String()
}
