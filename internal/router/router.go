package router

import (
	"fmt"

	"github.com/bookvine/internal/cache"
	"github.com/bookvine/internal/config"
	adminhandlers "github.com/bookvine/internal/http/handlers/admin"
	publichandlers "github.com/bookvine/internal/http/handlers/public"
	"github.com/bookvine/internal/logger"
	"github.com/bookvine/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 组装全部 HTTP 路由与中间件
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		RequestIDMiddleware(),
		LoggerMiddleware(log),
		CORSMiddleware(cfg.CORS),
	)

	apiV1 := r.Group("/api/v1")
	mountStorefront(apiV1, cfg, c)
	mountAdmin(apiV1.Group("/admin"), cfg, c)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	return r
}

// loginThrottle 登录接口限流规则，按配置的窗口与次数生效
func loginThrottle(cfg *config.Config, scope string) ThrottleRule {
	return ThrottleRule{
		Prefix:        fmt.Sprintf("%s:rate:%s", cache.Prefix(), scope),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "登录尝试过于频繁",
	}
}

// mountStorefront 前台路由：图书浏览、注册登录、购物车与订单
func mountStorefront(apiV1 *gin.RouterGroup, cfg *config.Config, c *provider.Container) {
	h := publichandlers.New(c)

	public := apiV1.Group("/public")
	public.GET("/books", h.ListBooks)
	public.GET("/books/:slug", h.GetBook)

	auth := apiV1.Group("/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login",
		Throttle(cache.Client(), loginThrottle(cfg, "login"), ThrottleByJSONField("email")),
		h.UserLogin,
	)

	user := apiV1.Group("")
	user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
	user.GET("/me", h.Profile)

	user.GET("/cart", h.ListCart)
	user.POST("/cart/items", h.AddCartItem)
	user.PUT("/cart/items/:book_id", h.UpdateCartItem)
	user.DELETE("/cart/items/:book_id", h.RemoveCartItem)

	user.POST("/orders", h.Checkout)
	user.GET("/orders", h.ListOrders)
	user.GET("/orders/:id", h.GetOrder)
	user.POST("/orders/:id/cancel", h.CancelOrder)
}

// mountAdmin 后台路由：登录之外全部要求管理员 token
func mountAdmin(admin *gin.RouterGroup, cfg *config.Config, c *provider.Container) {
	h := adminhandlers.New(c)

	admin.POST("/login",
		Throttle(cache.Client(), loginThrottle(cfg, "admin_login"), ThrottleByIP),
		h.Login,
	)

	authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo))
	authorized.GET("/profile", h.Profile)
	authorized.PUT("/password", h.ChangePassword)

	authorized.GET("/books", h.ListBooks)
	authorized.POST("/books", h.CreateBook)
	authorized.PUT("/books/:id", h.UpdateBook)
	authorized.DELETE("/books/:id", h.DeleteBook)

	authorized.GET("/discounts", h.ListDiscounts)
	authorized.POST("/discounts", h.CreateDiscount)
	authorized.PUT("/discounts/:id", h.UpdateDiscount)
	authorized.DELETE("/discounts/:id", h.DeleteDiscount)

	authorized.GET("/orders", h.ListOrders)
	authorized.GET("/orders/:id", h.GetOrder)
	authorized.POST("/orders/:id/fulfillments", h.CreateOrderFulfillments)
	authorized.POST("/orders/:id/cancel", h.CancelOrderFulfillments)

	authorized.GET("/fulfillments", h.ListFulfillments)
	authorized.GET("/fulfillments/stats", h.FulfillmentStats)
	authorized.GET("/fulfillments/:id", h.GetFulfillment)
	authorized.PATCH("/fulfillments/:id", h.UpdateFulfillment)
	authorized.POST("/fulfillments/:id/ship", h.ShipFulfillment)
	authorized.POST("/fulfillments/:id/deliver", h.DeliverFulfillment)
	authorized.POST("/fulfillments/:id/cancel", h.CancelFulfillment)
}
