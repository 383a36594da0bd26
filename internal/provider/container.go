package provider

import (
	"github.com/weipos/internal/cache"
	"github.com/weipos/internal/config"
	"github.com/weipos/internal/logger"
	"github.com/weipos/internal/models"
	"github.com/weipos/internal/queue"
	"github.com/weipos/internal/repository"
	"github.com/weipos/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	OrderRepo      repository.OrderRepository
	OrderItemRepo  repository.OrderItemRepository
	OrderEventRepo repository.OrderEventRepository
	ProductRepo    repository.ProductRepository
	AggregatorRepo repository.AggregatorRepository
	CustomerRepo   repository.CustomerRepository
	LoyaltyRepo    repository.LoyaltyRepository
	StockRepo      repository.StockRepository
	SettingRepo    repository.SettingRepository

	// Services
	SettingService       *service.SettingService
	TotalsService        *service.TotalsService
	OrderService         *service.OrderService
	OrderItemService     *service.OrderItemService
	OrderDiscountService *service.OrderDiscountService
	OrderStatusService   *service.OrderStatusService
	OrderLockService     *service.OrderLockService
	ReversalService      *service.ReversalService
	RewardsService       *service.RewardsService
	StockflowService     *service.StockflowService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.OrderRepo = repository.NewOrderRepository(db)
	c.OrderItemRepo = repository.NewOrderItemRepository(db)
	c.OrderEventRepo = repository.NewOrderEventRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.AggregatorRepo = repository.NewAggregatorRepository(db)
	c.CustomerRepo = repository.NewCustomerRepository(db)
	c.LoyaltyRepo = repository.NewLoyaltyRepository(db)
	c.StockRepo = repository.NewStockRepository(db)
	c.SettingRepo = repository.NewSettingRepository(db)
}

func (c *Container) initServices() {
	c.SettingService = service.NewSettingService(c.SettingRepo)
	c.TotalsService = service.NewTotalsService(c.OrderRepo, c.OrderItemRepo, c.AggregatorRepo, c.SettingService)
	c.OrderItemService = service.NewOrderItemService(
		c.OrderRepo,
		c.OrderItemRepo,
		c.ProductRepo,
		c.OrderEventRepo,
		c.TotalsService,
		c.SettingService,
	)
	c.OrderDiscountService = service.NewOrderDiscountService(
		c.OrderRepo,
		c.OrderEventRepo,
		c.TotalsService,
		c.OrderItemService,
	)
	c.OrderService = service.NewOrderService(
		c.OrderRepo,
		c.OrderItemRepo,
		c.ProductRepo,
		c.OrderEventRepo,
		c.TotalsService,
		c.OrderItemService,
	)
	c.OrderLockService = service.NewOrderLockService(c.OrderRepo, c.OrderEventRepo)
	c.RewardsService = service.NewRewardsService(
		c.OrderRepo,
		c.LoyaltyRepo,
		c.CustomerRepo,
		c.OrderEventRepo,
		c.SettingService,
	)
	c.StockflowService = service.NewStockflowService(
		c.OrderRepo,
		c.OrderItemRepo,
		c.ProductRepo,
		c.StockRepo,
		c.OrderEventRepo,
	)
	c.ReversalService = service.NewReversalService(
		c.OrderRepo,
		c.OrderItemRepo,
		c.ProductRepo,
		c.LoyaltyRepo,
		c.CustomerRepo,
		c.StockRepo,
		c.OrderEventRepo,
		c.QueueClient,
	)
	c.OrderStatusService = service.NewOrderStatusService(
		c.OrderRepo,
		c.OrderItemRepo,
		c.OrderEventRepo,
		c.ReversalService,
		c.RewardsService,
		c.StockflowService,
		c.QueueClient,
	)
}
