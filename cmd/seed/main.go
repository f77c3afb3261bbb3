package main

import (
	"github.com/settle-next/internal/config"
	"github.com/settle-next/internal/constants"
	"github.com/settle-next/internal/logger"
	"github.com/settle-next/internal/models"
	"github.com/settle-next/internal/provider"
)

// 演示数据：稳定资产 USDC（6 位小数）、商户代币 LIF、原生币桥接池。
const (
	usdcAddress = "usdc"
	lifAddress  = "lif"

	demoPayer  = "payer-demo"
	demoFunder = "liquidity-funder"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}
	if err := models.InitDefaultManager("", ""); err != nil {
		stdLog.Printf("Failed to init default manager: %v", err)
	}

	if cfg.Settlement.StableAsset == "" {
		cfg.Settlement.StableAsset = usdcAddress
	}
	c := provider.NewContainer(cfg)

	// 代币登记
	tokens := []models.Token{
		{Address: usdcAddress, Symbol: "USDC", Decimals: 6},
		{Address: lifAddress, Symbol: "LIF", Decimals: 18},
		{Address: constants.NativeAsset, Symbol: "NATIVE", Decimals: 18},
	}
	for _, token := range tokens {
		existing, err := c.TokenRepo.GetByAddress(token.Address)
		if err != nil {
			stdLog.Fatalf("Failed to load token %s: %v", token.Address, err)
		}
		if existing != nil {
			stdLog.Printf("Token already exists: %s", token.Address)
			continue
		}
		record := token
		if err := c.TokenRepo.Create(&record); err != nil {
			stdLog.Fatalf("Failed to create token %s: %v", token.Address, err)
		}
		stdLog.Printf("Created token: %s", token.Address)
	}

	mustAmount := func(value string) models.Amount {
		amount, err := models.NewAmountFromString(value)
		if err != nil {
			stdLog.Fatalf("Invalid seed amount %s: %v", value, err)
		}
		return amount
	}

	// 出资账户与演示付款方入金
	mints := []struct {
		account string
		token   string
		amount  string
	}{
		{demoFunder, usdcAddress, "1000000000000"},  // 1,000,000 USDC
		{demoFunder, lifAddress, "500000000000000000000000"},
		{demoFunder, constants.NativeAsset, "10000000000000000000000"},
		{demoPayer, lifAddress, "1000000000000000000000"},
		{demoPayer, constants.NativeAsset, "100000000000000000000"},
		{cfg.Settlement.EngineAccount, usdcAddress, "100000000000"}, // 退款备付金
	}
	for _, mint := range mints {
		if err := c.Ledger.Mint(mint.account, mint.token, mustAmount(mint.amount)); err != nil {
			stdLog.Fatalf("Failed to mint %s %s to %s: %v", mint.amount, mint.token, mint.account, err)
		}
		stdLog.Printf("Minted %s %s to %s", mint.amount, mint.token, mint.account)
	}

	// 流动性：直接对 + 原生币桥接对
	pools := []struct {
		tokenA, tokenB   string
		amountA, amountB string
	}{
		{lifAddress, usdcAddress, "100000000000000000000000", "100000000000"},
		{lifAddress, constants.NativeAsset, "100000000000000000000000", "1000000000000000000000"},
		{constants.NativeAsset, usdcAddress, "1000000000000000000000", "100000000000"},
	}
	for _, pool := range pools {
		if _, err := c.Router.AddLiquidity(demoFunder, pool.tokenA, pool.tokenB,
			mustAmount(pool.amountA), mustAmount(pool.amountB)); err != nil {
			stdLog.Fatalf("Failed to add liquidity %s/%s: %v", pool.tokenA, pool.tokenB, err)
		}
		stdLog.Printf("Added liquidity: %s/%s", pool.tokenA, pool.tokenB)
	}

	// 商户：一家可用，一家创建后停用
	activeMerchant, err := c.Registry.Create("Demo Hotel")
	if err != nil {
		stdLog.Printf("Failed to create merchant: %v", err)
	} else {
		stdLog.Printf("Created merchant: %s (%s)", activeMerchant.Name, activeMerchant.OrgID)
	}
	inactiveMerchant, err := c.Registry.Create("Suspended Agency")
	if err != nil {
		stdLog.Printf("Failed to create merchant: %v", err)
	} else if _, err := c.Registry.ToggleActive(inactiveMerchant.OrgID); err != nil {
		stdLog.Printf("Failed to toggle merchant: %v", err)
	} else {
		stdLog.Printf("Created inactive merchant: %s (%s)", inactiveMerchant.Name, inactiveMerchant.OrgID)
	}

	stdLog.Printf("Seed completed")
}
