package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/settle-next/internal/assets"
	"github.com/settle-next/internal/config"
	"github.com/settle-next/internal/constants"
	"github.com/settle-next/internal/exchange"
	"github.com/settle-next/internal/models"
	"github.com/settle-next/internal/queue"
	"github.com/settle-next/internal/registry"
	"github.com/settle-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

const (
	testStableAsset   = "usdc"
	testAltAsset      = "lif"
	testPayoutWallet  = "wallet"
	testEngineAccount = "engine"
	testPayer         = "payer-1"
	testFunder        = "liquidity-funder"
)

func amt(t *testing.T, value string) models.Amount {
	t.Helper()
	a, err := models.NewAmountFromString(value)
	if err != nil {
		t.Fatalf("invalid amount %s: %v", value, err)
	}
	return a
}

type settlementFixture struct {
	svc         *SettlementService
	configSvc   *ConfigService
	ledger      *assets.Ledger
	router      *exchange.Router
	registry    *registry.Registry
	tokenRepo   repository.TokenRepository
	settingRepo repository.SettingRepository
	managerRepo repository.ManagerRepository
	paymentRepo repository.PaymentRepository
}

func setupSettlementTest(t *testing.T) *settlementFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:settlement_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	models.DB = db
	if err := models.AutoMigrate(); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.Settlement.DefaultDeadlineSeconds = 120

	assetRepo := repository.NewAssetRepository(db)
	ledger := assets.NewLedger(assetRepo)
	router := exchange.NewRouter(repository.NewPoolRepository(db), ledger)
	merchantRegistry := registry.NewRegistry(repository.NewMerchantRepository(db))
	tokenRepo := repository.NewTokenRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	managerRepo := repository.NewManagerRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	queueClient, err := queue.NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("queue client failed: %v", err)
	}

	exchanges := map[string]*exchange.Router{constants.ExchangeRefAMM: router}
	svc := NewSettlementService(
		cfg, paymentRepo, tokenRepo, settingRepo, managerRepo,
		ledger, merchantRegistry, exchanges, queueClient,
	)
	configSvc := NewConfigService(cfg, settingRepo, managerRepo, tokenRepo,
		[]string{constants.ExchangeRefAMM})

	for key, value := range map[string]string{
		constants.SettingStableAsset:   testStableAsset,
		constants.SettingPayoutWallet:  testPayoutWallet,
		constants.SettingEngineAccount: testEngineAccount,
		constants.SettingExchangeRef:   constants.ExchangeRefAMM,
	} {
		if err := settingRepo.Set(key, value); err != nil {
			t.Fatalf("seed setting %s failed: %v", key, err)
		}
	}
	for _, token := range []models.Token{
		{Address: testStableAsset, Symbol: "USDC", Decimals: 6},
		{Address: testAltAsset, Symbol: "LIF", Decimals: 18},
		{Address: constants.NativeAsset, Symbol: "NATIVE", Decimals: 18},
	} {
		record := token
		if err := tokenRepo.Create(&record); err != nil {
			t.Fatalf("seed token %s failed: %v", token.Address, err)
		}
	}

	return &settlementFixture{
		svc:         svc,
		configSvc:   configSvc,
		ledger:      ledger,
		router:      router,
		registry:    merchantRegistry,
		tokenRepo:   tokenRepo,
		settingRepo: settingRepo,
		managerRepo: managerRepo,
		paymentRepo: paymentRepo,
	}
}

// fundPool 铸币给流动性提供方并注入交易对储备
func (f *settlementFixture) fundPool(t *testing.T, tokenA, tokenB, reserveA, reserveB string) {
	t.Helper()
	if err := f.ledger.Mint(testFunder, tokenA, amt(t, reserveA)); err != nil {
		t.Fatalf("mint %s failed: %v", tokenA, err)
	}
	if err := f.ledger.Mint(testFunder, tokenB, amt(t, reserveB)); err != nil {
		t.Fatalf("mint %s failed: %v", tokenB, err)
	}
	if _, err := f.router.AddLiquidity(testFunder, tokenA, tokenB, amt(t, reserveA), amt(t, reserveB)); err != nil {
		t.Fatalf("add liquidity %s/%s failed: %v", tokenA, tokenB, err)
	}
}

func (f *settlementFixture) activeManager(t *testing.T) *models.Manager {
	t.Helper()
	manager := &models.Manager{Username: "root", PasswordHash: "unused", Active: true}
	if err := f.managerRepo.Create(manager); err != nil {
		t.Fatalf("create manager failed: %v", err)
	}
	return manager
}

func (f *settlementFixture) balance(t *testing.T, account, token string) models.Amount {
	t.Helper()
	b, err := f.ledger.BalanceOf(account, token)
	if err != nil {
		t.Fatalf("balance of %s/%s failed: %v", account, token, err)
	}
	return b
}

// payAlt 走通一笔 LIF -> USDC 支付，返回已结算台账记录
func (f *settlementFixture) payAlt(t *testing.T, amountOut string) *models.Payment {
	t.Helper()
	out := amt(t, amountOut)
	quoted, err := f.svc.GetAmountIn(out, testAltAsset)
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	if err := f.ledger.Mint(testPayer, testAltAsset, quoted); err != nil {
		t.Fatalf("mint payer failed: %v", err)
	}
	if err := f.ledger.Approve(testPayer, testEngineAccount, testAltAsset, quoted); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	payment, err := f.svc.Pay(PayInput{
		AmountOut:   out,
		AmountInMax: quoted,
		TokenIn:     testAltAsset,
		Payer:       testPayer,
	})
	if err != nil {
		t.Fatalf("pay failed: %v", err)
	}
	return payment
}

func TestPaySwapsToExactStable(t *testing.T) {
	f := setupSettlementTest(t)
	f.fundPool(t, testAltAsset, testStableAsset, "1000000000000", "1000000000000")

	amountOut := amt(t, "100000000")
	quoted, err := f.svc.GetAmountIn(amountOut, testAltAsset)
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	if quoted.Cmp(amountOut) <= 0 {
		t.Fatalf("expected quote above amount out after fee, got %s", quoted.String())
	}

	minted := quoted.Add(amt(t, "5000"))
	if err := f.ledger.Mint(testPayer, testAltAsset, minted); err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if err := f.ledger.Approve(testPayer, testEngineAccount, testAltAsset, quoted); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	payment, err := f.svc.Pay(PayInput{
		AmountOut:   amountOut,
		AmountInMax: quoted,
		TokenIn:     testAltAsset,
		Payer:       testPayer,
		Attachment:  "invoice-42",
	})
	if err != nil {
		t.Fatalf("pay failed: %v", err)
	}
	if payment.Idx != 0 {
		t.Fatalf("expected first ledger index 0, got %d", payment.Idx)
	}
	if payment.Status != constants.PaymentStatusPaid {
		t.Fatalf("expected status paid, got %s", payment.Status)
	}
	if !payment.AmountIn.Equal(quoted) {
		t.Fatalf("expected amount in %s, got %s", quoted.String(), payment.AmountIn.String())
	}
	if payment.IsNative {
		t.Fatalf("token payment must not be flagged native")
	}

	// 收款钱包收到精确的稳定数量，引擎不留余额
	if got := f.balance(t, testPayoutWallet, testStableAsset); !got.Equal(amountOut) {
		t.Fatalf("expected wallet balance %s, got %s", amountOut.String(), got.String())
	}
	if got := f.balance(t, testEngineAccount, testAltAsset); !got.IsZero() {
		t.Fatalf("expected engine input balance drained, got %s", got.String())
	}
	if got := f.balance(t, testEngineAccount, testStableAsset); !got.IsZero() {
		t.Fatalf("expected engine stable balance drained, got %s", got.String())
	}
	remaining, err := minted.Sub(quoted)
	if err != nil {
		t.Fatalf("sub failed: %v", err)
	}
	if got := f.balance(t, testPayer, testAltAsset); !got.Equal(remaining) {
		t.Fatalf("expected payer balance %s, got %s", remaining.String(), got.String())
	}
}

func TestPayWithStableAssetSkipsSwap(t *testing.T) {
	f := setupSettlementTest(t)

	amountOut := amt(t, "250000")
	if err := f.ledger.Mint(testPayer, testStableAsset, amountOut); err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if err := f.ledger.Approve(testPayer, testEngineAccount, testStableAsset, amountOut); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	payment, err := f.svc.Pay(PayInput{
		AmountOut:   amountOut,
		AmountInMax: amountOut,
		TokenIn:     testStableAsset,
		Payer:       testPayer,
	})
	if err != nil {
		t.Fatalf("pay failed: %v", err)
	}
	if !payment.AmountIn.Equal(amountOut) {
		t.Fatalf("expected identity amount in, got %s", payment.AmountIn.String())
	}
	if got := f.balance(t, testPayoutWallet, testStableAsset); !got.Equal(amountOut) {
		t.Fatalf("expected wallet balance %s, got %s", amountOut.String(), got.String())
	}
	if got := f.balance(t, testPayer, testStableAsset); !got.IsZero() {
		t.Fatalf("expected payer drained, got %s", got.String())
	}
}

func TestPayAppendsDenseIndices(t *testing.T) {
	f := setupSettlementTest(t)
	f.fundPool(t, testAltAsset, testStableAsset, "1000000000", "1000000000")

	first := f.payAlt(t, "1000")
	second := f.payAlt(t, "2000")
	if first.Idx != 0 || second.Idx != 1 {
		t.Fatalf("expected dense indices 0,1, got %d,%d", first.Idx, second.Idx)
	}
	count, err := f.svc.GetPaymentsCount()
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 payments, got %d", count)
	}
}

func TestPayValidation(t *testing.T) {
	f := setupSettlementTest(t)

	if _, err := f.svc.Pay(PayInput{TokenIn: testAltAsset, Payer: testPayer}); !errors.Is(err, ErrAmountInvalid) {
		t.Fatalf("expected ErrAmountInvalid for zero amount, got %v", err)
	}
	if _, err := f.svc.Pay(PayInput{AmountOut: amt(t, "100"), TokenIn: testAltAsset, Payer: "  "}); !errors.Is(err, ErrAmountInvalid) {
		t.Fatalf("expected ErrAmountInvalid for empty payer, got %v", err)
	}
	// 原生币必须走 PayWithNative 入口
	if _, err := f.svc.Pay(PayInput{AmountOut: amt(t, "100"), TokenIn: constants.NativeAsset, Payer: testPayer}); !errors.Is(err, ErrAssetInvalid) {
		t.Fatalf("expected ErrAssetInvalid for native token, got %v", err)
	}
	if _, err := f.svc.Pay(PayInput{AmountOut: amt(t, "100"), TokenIn: "ghost", Payer: testPayer}); !errors.Is(err, ErrAssetUnknown) {
		t.Fatalf("expected ErrAssetUnknown, got %v", err)
	}
}

func TestPayMerchantGate(t *testing.T) {
	f := setupSettlementTest(t)
	f.fundPool(t, testAltAsset, testStableAsset, "1000000000", "1000000000")

	merchant, err := f.registry.Create("Demo Hotel")
	if err != nil {
		t.Fatalf("create merchant failed: %v", err)
	}
	if _, err := f.registry.ToggleActive(merchant.OrgID); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}

	input := PayInput{
		AmountOut:   amt(t, "1000"),
		AmountInMax: amt(t, "2000"),
		TokenIn:     testAltAsset,
		Payer:       testPayer,
		Merchant:    merchant.OrgID,
	}
	if _, err := f.svc.Pay(input); !errors.Is(err, ErrMerchantIneligible) {
		t.Fatalf("expected ErrMerchantIneligible for suspended merchant, got %v", err)
	}

	input.Merchant = "never-registered"
	if _, err := f.svc.Pay(input); !errors.Is(err, ErrMerchantIneligible) {
		t.Fatalf("expected ErrMerchantIneligible for unknown merchant, got %v", err)
	}
}

func TestPayActiveMerchantSucceeds(t *testing.T) {
	f := setupSettlementTest(t)
	f.fundPool(t, testAltAsset, testStableAsset, "1000000000", "1000000000")

	merchant, err := f.registry.Create("Demo Hotel")
	if err != nil {
		t.Fatalf("create merchant failed: %v", err)
	}

	amountOut := amt(t, "1000")
	quoted, err := f.svc.GetAmountIn(amountOut, testAltAsset)
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	if err := f.ledger.Mint(testPayer, testAltAsset, quoted); err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if err := f.ledger.Approve(testPayer, testEngineAccount, testAltAsset, quoted); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	payment, err := f.svc.Pay(PayInput{
		AmountOut:   amountOut,
		AmountInMax: quoted,
		TokenIn:     testAltAsset,
		Payer:       testPayer,
		Merchant:    merchant.OrgID,
	})
	if err != nil {
		t.Fatalf("pay with active merchant failed: %v", err)
	}
	if payment.Status != constants.PaymentStatusPaid {
		t.Fatalf("expected status paid, got %s", payment.Status)
	}
	if payment.Merchant != merchant.OrgID {
		t.Fatalf("expected merchant %s on payment, got %s", merchant.OrgID, payment.Merchant)
	}

	stored, err := f.paymentRepo.GetByIdx(payment.Idx)
	if err != nil {
		t.Fatalf("get payment failed: %v", err)
	}
	if stored.Merchant != merchant.OrgID {
		t.Fatalf("expected stored merchant %s, got %s", merchant.OrgID, stored.Merchant)
	}
}

func TestPayInsufficientAllowance(t *testing.T) {
	f := setupSettlementTest(t)
	f.fundPool(t, testAltAsset, testStableAsset, "1000000000", "1000000000")

	amountOut := amt(t, "100000")
	quoted, err := f.svc.GetAmountIn(amountOut, testAltAsset)
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	if err := f.ledger.Mint(testPayer, testAltAsset, quoted); err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	short, err := quoted.Sub(amt(t, "1"))
	if err != nil {
		t.Fatalf("sub failed: %v", err)
	}
	if err := f.ledger.Approve(testPayer, testEngineAccount, testAltAsset, short); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	_, err = f.svc.Pay(PayInput{
		AmountOut:   amountOut,
		AmountInMax: quoted,
		TokenIn:     testAltAsset,
		Payer:       testPayer,
	})
	if !errors.Is(err, ErrInsufficientAllowance) {
		t.Fatalf("expected ErrInsufficientAllowance, got %v", err)
	}
	if got := f.balance(t, testPayer, testAltAsset); !got.Equal(quoted) {
		t.Fatalf("expected payer balance untouched, got %s", got.String())
	}
}

func TestPayDeadlineExpiredRollsBack(t *testing.T) {
	f := setupSettlementTest(t)
	f.fundPool(t, testAltAsset, testStableAsset, "1000000000", "1000000000")

	amountOut := amt(t, "100000")
	quoted, err := f.svc.GetAmountIn(amountOut, testAltAsset)
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	if err := f.ledger.Mint(testPayer, testAltAsset, quoted); err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if err := f.ledger.Approve(testPayer, testEngineAccount, testAltAsset, quoted); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	_, err = f.svc.Pay(PayInput{
		AmountOut:   amountOut,
		AmountInMax: quoted,
		TokenIn:     testAltAsset,
		Payer:       testPayer,
		Deadline:    time.Now().Add(-time.Minute),
	})
	if !errors.Is(err, ErrDeadlineExpired) {
		t.Fatalf("expected ErrDeadlineExpired, got %v", err)
	}
	// 兑换前已拉取的输入随事务整体回滚
	if got := f.balance(t, testPayer, testAltAsset); !got.Equal(quoted) {
		t.Fatalf("expected payer balance restored, got %s", got.String())
	}
	if got := f.balance(t, testEngineAccount, testAltAsset); !got.IsZero() {
		t.Fatalf("expected engine balance restored, got %s", got.String())
	}
	count, err := f.svc.GetPaymentsCount()
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no payment recorded, got %d", count)
	}
}

func TestPayRespectsAmountInMax(t *testing.T) {
	f := setupSettlementTest(t)
	f.fundPool(t, testAltAsset, testStableAsset, "1000000000", "1000000000")

	amountOut := amt(t, "100000")
	quoted, err := f.svc.GetAmountIn(amountOut, testAltAsset)
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	if err := f.ledger.Mint(testPayer, testAltAsset, quoted); err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if err := f.ledger.Approve(testPayer, testEngineAccount, testAltAsset, quoted); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	maxIn, err := quoted.Sub(amt(t, "1"))
	if err != nil {
		t.Fatalf("sub failed: %v", err)
	}

	_, err = f.svc.Pay(PayInput{
		AmountOut:   amountOut,
		AmountInMax: maxIn,
		TokenIn:     testAltAsset,
		Payer:       testPayer,
	})
	if !errors.Is(err, ErrSwapFailed) {
		t.Fatalf("expected ErrSwapFailed when quote exceeds max, got %v", err)
	}
	if got := f.balance(t, testPayer, testAltAsset); !got.Equal(quoted) {
		t.Fatalf("expected payer balance restored, got %s", got.String())
	}
}

func TestPayWithNativeRefundsExcess(t *testing.T) {
	f := setupSettlementTest(t)
	f.fundPool(t, constants.NativeAsset, testStableAsset, "1000000000", "1000000000")

	amountOut := amt(t, "100000")
	needed, err := f.svc.GetAmountIn(amountOut, constants.NativeAsset)
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	value := needed.Add(amt(t, "7777"))
	if err := f.ledger.Mint(testPayer, constants.NativeAsset, value); err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	payment, err := f.svc.PayWithNative(PayWithNativeInput{
		AmountOut: amountOut,
		Value:     value,
		Payer:     testPayer,
	})
	if err != nil {
		t.Fatalf("pay with native failed: %v", err)
	}
	if !payment.IsNative {
		t.Fatalf("expected native payment flag")
	}
	if payment.TokenIn != constants.NativeAsset {
		t.Fatalf("expected native token in, got %s", payment.TokenIn)
	}
	if !payment.AmountIn.Equal(needed) {
		t.Fatalf("expected amount in %s, got %s", needed.String(), payment.AmountIn.String())
	}

	// 未消耗的附带价值退回付款方
	if got := f.balance(t, testPayer, constants.NativeAsset); !got.Equal(amt(t, "7777")) {
		t.Fatalf("expected excess 7777 returned, got %s", got.String())
	}
	if got := f.balance(t, testPayoutWallet, testStableAsset); !got.Equal(amountOut) {
		t.Fatalf("expected wallet balance %s, got %s", amountOut.String(), got.String())
	}
	if got := f.balance(t, testEngineAccount, constants.NativeAsset); !got.IsZero() {
		t.Fatalf("expected engine native balance drained, got %s", got.String())
	}
}

func TestPayWithNativeInsufficientValue(t *testing.T) {
	f := setupSettlementTest(t)
	f.fundPool(t, constants.NativeAsset, testStableAsset, "1000000000", "1000000000")

	amountOut := amt(t, "100000")
	needed, err := f.svc.GetAmountIn(amountOut, constants.NativeAsset)
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	value, err := needed.Sub(amt(t, "1"))
	if err != nil {
		t.Fatalf("sub failed: %v", err)
	}
	if err := f.ledger.Mint(testPayer, constants.NativeAsset, value); err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	_, err = f.svc.PayWithNative(PayWithNativeInput{
		AmountOut: amountOut,
		Value:     value,
		Payer:     testPayer,
	})
	if !errors.Is(err, ErrSwapFailed) {
		t.Fatalf("expected ErrSwapFailed, got %v", err)
	}
	if got := f.balance(t, testPayer, constants.NativeAsset); !got.Equal(value) {
		t.Fatalf("expected payer value restored, got %s", got.String())
	}
}

func TestRefundReverseSwap(t *testing.T) {
	f := setupSettlementTest(t)
	f.fundPool(t, testAltAsset, testStableAsset, "1000000000000", "1000000000000")
	manager := f.activeManager(t)

	payment := f.payAlt(t, "100000000")
	payerBefore := f.balance(t, testPayer, testAltAsset)

	// 引擎需持有稳定资产备付金才能退款
	if err := f.ledger.Mint(testEngineAccount, testStableAsset, payment.AmountOut); err != nil {
		t.Fatalf("mint float failed: %v", err)
	}
	expectedOut, err := f.svc.QuoteRefundOut(payment.Idx)
	if err != nil {
		t.Fatalf("refund quote failed: %v", err)
	}

	refunded, err := f.svc.Refund(manager.ID, payment.Idx, false)
	if err != nil {
		t.Fatalf("refund failed: %v", err)
	}
	if refunded.Status != constants.PaymentStatusRefunded {
		t.Fatalf("expected refunded status, got %s", refunded.Status)
	}
	if refunded.RefundedAt == nil {
		t.Fatalf("expected refunded timestamp")
	}

	payerAfter := f.balance(t, testPayer, testAltAsset)
	received, err := payerAfter.Sub(payerBefore)
	if err != nil {
		t.Fatalf("sub failed: %v", err)
	}
	if !received.Equal(expectedOut) {
		t.Fatalf("expected payer to receive %s, got %s", expectedOut.String(), received.String())
	}
	if got := f.balance(t, testEngineAccount, testStableAsset); !got.IsZero() {
		t.Fatalf("expected refund float spent, got %s", got.String())
	}

	if _, err := f.svc.Refund(manager.ID, payment.Idx, false); !errors.Is(err, ErrAlreadyRefunded) {
		t.Fatalf("expected ErrAlreadyRefunded, got %v", err)
	}
}

func TestRefundStableOnly(t *testing.T) {
	f := setupSettlementTest(t)
	f.fundPool(t, testAltAsset, testStableAsset, "1000000000", "1000000000")
	manager := f.activeManager(t)

	payment := f.payAlt(t, "100000")
	if err := f.ledger.Mint(testEngineAccount, testStableAsset, payment.AmountOut); err != nil {
		t.Fatalf("mint float failed: %v", err)
	}

	if _, err := f.svc.Refund(manager.ID, payment.Idx, true); err != nil {
		t.Fatalf("refund failed: %v", err)
	}
	// stableOnly 跳过反向兑换，付款方直接收到稳定资产
	if got := f.balance(t, testPayer, testStableAsset); !got.Equal(payment.AmountOut) {
		t.Fatalf("expected payer stable balance %s, got %s", payment.AmountOut.String(), got.String())
	}
}

func TestRefundInsufficientFundsThenRetry(t *testing.T) {
	f := setupSettlementTest(t)
	f.fundPool(t, testAltAsset, testStableAsset, "1000000000", "1000000000")
	manager := f.activeManager(t)

	payment := f.payAlt(t, "100000")

	if _, err := f.svc.Refund(manager.ID, payment.Idx, true); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	reloaded, err := f.svc.GetPayment(payment.Idx)
	if err != nil {
		t.Fatalf("get payment failed: %v", err)
	}
	if reloaded.Status != constants.PaymentStatusPaid {
		t.Fatalf("expected failed refund to leave status paid, got %s", reloaded.Status)
	}

	// 补足备付金后可重试
	if err := f.ledger.Mint(testEngineAccount, testStableAsset, payment.AmountOut); err != nil {
		t.Fatalf("mint float failed: %v", err)
	}
	refunded, err := f.svc.Refund(manager.ID, payment.Idx, true)
	if err != nil {
		t.Fatalf("retry refund failed: %v", err)
	}
	if refunded.Status != constants.PaymentStatusRefunded {
		t.Fatalf("expected refunded status, got %s", refunded.Status)
	}
}

func TestRefundAuthorization(t *testing.T) {
	f := setupSettlementTest(t)
	f.fundPool(t, testAltAsset, testStableAsset, "1000000000", "1000000000")
	payment := f.payAlt(t, "100000")

	if _, err := f.svc.Refund(999, payment.Idx, true); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for unknown manager, got %v", err)
	}

	retired := &models.Manager{Username: "retired", PasswordHash: "unused", Active: false}
	if err := f.managerRepo.Create(retired); err != nil {
		t.Fatalf("create manager failed: %v", err)
	}
	if _, err := f.svc.Refund(retired.ID, payment.Idx, true); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for retired manager, got %v", err)
	}
}

func TestRefundPaymentNotFound(t *testing.T) {
	f := setupSettlementTest(t)
	manager := f.activeManager(t)
	if _, err := f.svc.Refund(manager.ID, 42, false); !errors.Is(err, ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound, got %v", err)
	}
}

func TestGetAmountIn(t *testing.T) {
	f := setupSettlementTest(t)
	f.fundPool(t, testAltAsset, testStableAsset, "1000000000", "1000000000")

	// 稳定资产恒等报价
	out := amt(t, "12345")
	quoted, err := f.svc.GetAmountIn(out, testStableAsset)
	if err != nil {
		t.Fatalf("identity quote failed: %v", err)
	}
	if !quoted.Equal(out) {
		t.Fatalf("expected identity quote, got %s", quoted.String())
	}

	if _, err := f.svc.GetAmountIn(out, testAltAsset); err != nil {
		t.Fatalf("liquid quote failed: %v", err)
	}

	// 无流动性时拒绝报价
	if _, err := f.svc.GetAmountIn(out, "ghost"); !errors.Is(err, ErrQuoteUnavailable) {
		t.Fatalf("expected ErrQuoteUnavailable, got %v", err)
	}
	if _, err := f.svc.GetAmountIn(models.Amount{}, testAltAsset); !errors.Is(err, ErrAmountInvalid) {
		t.Fatalf("expected ErrAmountInvalid, got %v", err)
	}
}

func TestPayNotConfigured(t *testing.T) {
	f := setupSettlementTest(t)
	if err := f.settingRepo.Set(constants.SettingPayoutWallet, ""); err != nil {
		t.Fatalf("clear setting failed: %v", err)
	}
	_, err := f.svc.Pay(PayInput{
		AmountOut: amt(t, "100"),
		TokenIn:   testAltAsset,
		Payer:     testPayer,
	})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestPayUnknownExchangeRef(t *testing.T) {
	f := setupSettlementTest(t)
	if err := f.settingRepo.Set(constants.SettingExchangeRef, "amm/v3"); err != nil {
		t.Fatalf("set exchange ref failed: %v", err)
	}
	_, err := f.svc.Pay(PayInput{
		AmountOut: amt(t, "100"),
		TokenIn:   testAltAsset,
		Payer:     testPayer,
	})
	if !errors.Is(err, ErrExchangeUnknown) {
		t.Fatalf("expected ErrExchangeUnknown, got %v", err)
	}
}
