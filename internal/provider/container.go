package provider

import (
	"github.com/settle-next/internal/assets"
	"github.com/settle-next/internal/cache"
	"github.com/settle-next/internal/config"
	"github.com/settle-next/internal/constants"
	"github.com/settle-next/internal/exchange"
	"github.com/settle-next/internal/logger"
	"github.com/settle-next/internal/models"
	"github.com/settle-next/internal/queue"
	"github.com/settle-next/internal/registry"
	"github.com/settle-next/internal/repository"
	"github.com/settle-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	PaymentRepo  repository.PaymentRepository
	TokenRepo    repository.TokenRepository
	AssetRepo    repository.AssetRepository
	PoolRepo     repository.PoolRepository
	MerchantRepo repository.MerchantRepository
	ManagerRepo  repository.ManagerRepository
	SettingRepo  repository.SettingRepository

	// Domain collaborators
	Ledger    *assets.Ledger
	Router    *exchange.Router
	Registry  *registry.Registry
	Exchanges map[string]*exchange.Router

	// Services
	AuthService       *service.AuthService
	SettlementService *service.SettlementService
	ConfigService     *service.ConfigService
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

	// 2. 初始化领域组件与 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.PaymentRepo = repository.NewPaymentRepository(db)
	c.TokenRepo = repository.NewTokenRepository(db)
	c.AssetRepo = repository.NewAssetRepository(db)
	c.PoolRepo = repository.NewPoolRepository(db)
	c.MerchantRepo = repository.NewMerchantRepository(db)
	c.ManagerRepo = repository.NewManagerRepository(db)
	c.SettingRepo = repository.NewSettingRepository(db)
}

func (c *Container) initServices() {
	c.Ledger = assets.NewLedger(c.AssetRepo)
	c.Router = exchange.NewRouter(c.PoolRepo, c.Ledger)
	c.Registry = registry.NewRegistry(c.MerchantRepo)
	c.Exchanges = map[string]*exchange.Router{
		constants.ExchangeRefAMM: c.Router,
	}

	c.AuthService = service.NewAuthService(c.Config, c.ManagerRepo)
	c.SettlementService = service.NewSettlementService(
		c.Config,
		c.PaymentRepo,
		c.TokenRepo,
		c.SettingRepo,
		c.ManagerRepo,
		c.Ledger,
		c.Registry,
		c.Exchanges,
		c.QueueClient,
	)
	exchangeRefs := make([]string, 0, len(c.Exchanges))
	for ref := range c.Exchanges {
		exchangeRefs = append(exchangeRefs, ref)
	}
	c.ConfigService = service.NewConfigService(c.Config, c.SettingRepo, c.ManagerRepo, c.TokenRepo, exchangeRefs)

	if err := c.ConfigService.EnsureDefaults(); err != nil {
		logger.Errorw("provider_ensure_settings_failed", "error", err)
		panic(err)
	}
}
