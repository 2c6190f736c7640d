package service

import "errors"

// 图书相关错误
var (
	ErrBookNotFound      = errors.New("book not found")
	ErrBookUnavailable   = errors.New("book unavailable")
	ErrBookSlugExists    = errors.New("book slug exists")
	ErrStockInsufficient = errors.New("stock insufficient")
)

// 购物车相关错误
var (
	ErrCartEmpty       = errors.New("cart empty")
	ErrCartItemInvalid = errors.New("cart item invalid")
)

// 订单相关错误
var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderFetchFailed    = errors.New("order fetch failed")
	ErrOrderCreateFailed   = errors.New("order create failed")
	ErrOrderNotCancellable = errors.New("order not cancellable")
)

// 履约相关错误
var (
	ErrFulfillmentNotFound       = errors.New("fulfillment not found")
	ErrFulfillmentInvalid        = errors.New("fulfillment invalid")
	ErrFulfillmentCreateFailed   = errors.New("fulfillment create failed")
	ErrFulfillmentUpdateFailed   = errors.New("fulfillment update failed")
	ErrFulfillmentPartialFailure = errors.New("fulfillment partial failure")
	ErrFulfillmentNotCancellable = errors.New("fulfillment not cancellable")
	ErrStatusInvalid             = errors.New("status invalid")
	ErrTrackingRequired          = errors.New("tracking number required")
	ErrShippedQtyInvalid         = errors.New("shipped quantity invalid")
)

// 折扣码相关错误
var (
	ErrDiscountNotFound   = errors.New("discount not found")
	ErrDiscountInactive   = errors.New("discount inactive")
	ErrDiscountNotStarted = errors.New("discount not started")
	ErrDiscountExpired    = errors.New("discount expired")
	ErrDiscountExhausted  = errors.New("discount exhausted")
	ErrDiscountUserLimit  = errors.New("discount user limit reached")
	ErrDiscountInvalid    = errors.New("discount invalid")
	ErrDiscountCodeExists = errors.New("discount code exists")
)

// 邮件相关错误
var (
	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrInvalidEmail              = errors.New("invalid email")
)

// 账号相关错误
var (
	ErrUserExists         = errors.New("user exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserDisabled       = errors.New("user disabled")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWeakPassword       = errors.New("weak password")
)
