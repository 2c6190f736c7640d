package provider

import (
	"github.com/bookvine/internal/cache"
	"github.com/bookvine/internal/config"
	"github.com/bookvine/internal/logger"
	"github.com/bookvine/internal/models"
	"github.com/bookvine/internal/queue"
	"github.com/bookvine/internal/repository"
	"github.com/bookvine/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo       repository.AdminRepository
	UserRepo        repository.UserRepository
	BookRepo        repository.BookRepository
	CartRepo        repository.CartRepository
	OrderRepo       repository.OrderRepository
	FulfillmentRepo repository.FulfillmentRepository
	DiscountRepo    repository.DiscountRepository

	// Services
	AdminAuthService   *service.AdminAuthService
	UserAuthService    *service.UserAuthService
	EmailService       *service.EmailService
	CatalogService     *service.CatalogService
	CartService        *service.CartService
	DiscountService    *service.DiscountService
	OrderService       *service.OrderService
	FulfillmentService *service.FulfillmentService
}

// NewContainer 装配仓库与服务。redis 与队列属可选依赖，
// 初始化失败只记录日志并降级，不阻塞启动。
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	c := &Container{Config: cfg}
	if cfg.Queue.Enabled {
		if qc, err := queue.NewClient(&cfg.Queue); err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			c.QueueClient = qc
		}
	}

	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.BookRepo = repository.NewBookRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.FulfillmentRepo = repository.NewFulfillmentRepository(db)
	c.DiscountRepo = repository.NewDiscountRepository(db)

	c.EmailService = service.NewEmailService(&cfg.Email)
	c.AdminAuthService = service.NewAdminAuthService(cfg, c.AdminRepo)
	c.UserAuthService = service.NewUserAuthService(cfg, c.UserRepo)
	c.CatalogService = service.NewCatalogService(c.BookRepo)
	c.CartService = service.NewCartService(c.CartRepo, c.BookRepo)
	c.DiscountService = service.NewDiscountService(c.DiscountRepo)
	c.FulfillmentService = service.NewFulfillmentService(c.OrderRepo, c.FulfillmentRepo, c.QueueClient)
	c.OrderService = service.NewOrderService(
		cfg,
		c.OrderRepo,
		c.BookRepo,
		c.CartRepo,
		c.DiscountRepo,
		c.DiscountService,
		c.FulfillmentService,
		c.QueueClient,
	)
	return c
}
