package provider

import (
	"github.com/cangchu-next/internal/authz"
	"github.com/cangchu-next/internal/cache"
	"github.com/cangchu-next/internal/config"
	"github.com/cangchu-next/internal/logger"
	"github.com/cangchu-next/internal/models"
	"github.com/cangchu-next/internal/queue"
	"github.com/cangchu-next/internal/repository"
	"github.com/cangchu-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo         repository.AdminRepository
	ProductRepo       repository.ProductRepository
	WarehouseRepo     repository.WarehouseRepository
	StockLedgerRepo   repository.StockLedgerRepository
	StockDocumentRepo repository.StockDocumentRepository
	OrderRepo         repository.OrderRepository
	PaymentRepo       repository.PaymentRepository

	// Services
	AuthzService         *authz.Service
	AuthService          *service.AuthService
	WarehouseService     *service.WarehouseService
	StockDocumentService *service.StockDocumentService
	InventoryService     *service.InventoryService
	StockActionService   *service.StockActionService
	OrderService         *service.OrderService
	OrderFinanceService  *service.OrderFinanceService
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
	c.AdminRepo = repository.NewAdminRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.WarehouseRepo = repository.NewWarehouseRepository(db)
	c.StockLedgerRepo = repository.NewStockLedgerRepository(db)
	c.StockDocumentRepo = repository.NewStockDocumentRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.PaymentRepo = repository.NewPaymentRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.AuthService = service.NewAuthService(c.Config)
	c.WarehouseService = service.NewWarehouseService(c.WarehouseRepo, &c.Config.Stock)
	c.StockDocumentService = service.NewStockDocumentService(c.StockDocumentRepo, c.StockLedgerRepo, c.ProductRepo, c.WarehouseService)
	c.InventoryService = service.NewInventoryService(c.StockLedgerRepo, c.ProductRepo, &c.Config.Stock)
	c.StockActionService = service.NewStockActionService(c.OrderRepo, c.StockDocumentService, c.WarehouseService, c.QueueClient)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.ProductRepo, c.StockActionService, c.Config.Order.CancelReasonMinLength)
	c.OrderFinanceService = service.NewOrderFinanceService(c.OrderRepo, c.PaymentRepo, c.QueueClient)
}

// Close 释放容器持有的外部连接
func (c *Container) Close() {
	if c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			logger.Warnw("provider_close_queue_client_failed", "error", err)
		}
	}
	if err := cache.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
	}
}
