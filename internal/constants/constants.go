package constants

// 履约记录状态常量
const (
	FulfillmentStatusPending    = "pending"
	FulfillmentStatusProcessing = "processing"
	FulfillmentStatusShipped    = "shipped"
	FulfillmentStatusDelivered  = "delivered"
	FulfillmentStatusCancelled  = "cancelled"
)

// FulfillmentStatuses 履约状态全集（按生命周期顺序）
var FulfillmentStatuses = []string{
	FulfillmentStatusPending,
	FulfillmentStatusProcessing,
	FulfillmentStatusShipped,
	FulfillmentStatusDelivered,
	FulfillmentStatusCancelled,
}

// 订单派生状态常量（不落库，由履约记录集合实时计算）
const (
	OrderStatusNone       = "none"
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
	OrderStatusMixed      = "mixed"
)

// 折扣码类型常量
const (
	DiscountTypePercent = "percent"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 图书排序常量
const (
	BookSortNewest    = "newest"
	BookSortPriceAsc  = "price_asc"
	BookSortPriceDesc = "price_desc"
)

// 队列常量
const (
	QueueDefault               = "default"
	TaskOrderStatusEmail       = "order:status_email"
	TaskOrderCreateFulfillment = "order:create_fulfillments"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "bv"
)
