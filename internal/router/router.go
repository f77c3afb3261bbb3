package router

import (
	"fmt"
	"strings"

	"github.com/settle-next/internal/cache"
	"github.com/settle-next/internal/config"
	adminhandlers "github.com/settle-next/internal/http/handlers/admin"
	publichandlers "github.com/settle-next/internal/http/handlers/public"
	"github.com/settle-next/internal/logger"
	"github.com/settle-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "sn"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:manager_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		MessageKey:    "error.login_too_many",
	}
	payRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:pay", redisPrefix),
		WindowSeconds: cfg.Security.PayRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.PayRateLimit.MaxAttempts,
		MessageKey:    "error.pay_too_many",
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/config", publicHandler.GetConfig)
			public.GET("/tokens", publicHandler.ListTokens)
			public.GET("/quote", publicHandler.QuoteAmountIn)
			public.GET("/payments", publicHandler.ListPayments)
			public.GET("/payments/count", publicHandler.GetPaymentsCount)
			public.GET("/payments/:idx", publicHandler.GetPayment)
			public.GET("/merchants/:org_id/active", publicHandler.GetMerchantActive)
			public.GET("/balances", publicHandler.GetBalance)
			public.GET("/allowances", publicHandler.GetAllowance)
		}

		// 支付入口（按付款方+IP 限流）
		pay := apiV1.Group("")
		{
			pay.POST("/payments/pay", RateLimitMiddleware(redisClient, payRule, KeyByIPAndJSONField("payer")), publicHandler.Pay)
			pay.POST("/payments/pay-native", RateLimitMiddleware(redisClient, payRule, KeyByIPAndJSONField("payer")), publicHandler.PayNative)
			pay.POST("/assets/approve", publicHandler.Approve)
		}

		// 管理端登录
		apiV1.POST("/admin/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("username")), adminHandler.Login)

		// 管理端接口（需鉴权）
		admin := apiV1.Group("/admin")
		admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.ManagerRepo))
		{
			admin.GET("/profile", adminHandler.GetProfile)

			admin.POST("/payments/:idx/refund", adminHandler.Refund)
			admin.GET("/payments/:idx/refund-quote", adminHandler.QuoteRefundOut)

			admin.PUT("/config/manager", adminHandler.ChangeManager)
			admin.PUT("/config/wallet", adminHandler.ChangeWallet)
			admin.PUT("/config/stable-asset", adminHandler.ChangeStableAsset)
			admin.PUT("/config/exchange", adminHandler.ChangeExchange)
			admin.PUT("/config/registry", adminHandler.ChangeRegistry)
			admin.PUT("/config/notify-url", adminHandler.ChangeNotifyURL)

			admin.POST("/merchants", adminHandler.CreateMerchant)
			admin.POST("/merchants/:org_id/toggle", adminHandler.ToggleMerchant)
			admin.GET("/merchants", adminHandler.ListMerchants)

			admin.POST("/tokens", adminHandler.RegisterToken)
			admin.POST("/assets/mint", adminHandler.Mint)
			admin.POST("/pools/liquidity", adminHandler.AddLiquidity)
			admin.GET("/pools", adminHandler.ListPools)
		}
	}

	return r
}
