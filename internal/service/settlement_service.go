package service

import (
	"errors"
	"strings"
	"time"

	"github.com/settle-next/internal/assets"
	"github.com/settle-next/internal/config"
	"github.com/settle-next/internal/constants"
	"github.com/settle-next/internal/exchange"
	"github.com/settle-next/internal/logger"
	"github.com/settle-next/internal/models"
	"github.com/settle-next/internal/queue"
	"github.com/settle-next/internal/registry"
	"github.com/settle-next/internal/repository"

	"gorm.io/gorm"
)

// SettlementService 结算引擎：编排资格校验、资产拉取、兑换与台账追加。
// 每个入口在单一数据库事务内全量提交或全量回滚。
type SettlementService struct {
	cfg         *config.Config
	paymentRepo repository.PaymentRepository
	tokenRepo   repository.TokenRepository
	settingRepo repository.SettingRepository
	managerRepo repository.ManagerRepository
	ledger      *assets.Ledger
	registry    *registry.Registry
	exchanges   map[string]*exchange.Router
	queueClient *queue.Client
}

// NewSettlementService 创建结算服务
func NewSettlementService(
	cfg *config.Config,
	paymentRepo repository.PaymentRepository,
	tokenRepo repository.TokenRepository,
	settingRepo repository.SettingRepository,
	managerRepo repository.ManagerRepository,
	ledger *assets.Ledger,
	merchantRegistry *registry.Registry,
	exchanges map[string]*exchange.Router,
	queueClient *queue.Client,
) *SettlementService {
	return &SettlementService{
		cfg:         cfg,
		paymentRepo: paymentRepo,
		tokenRepo:   tokenRepo,
		settingRepo: settingRepo,
		managerRepo: managerRepo,
		ledger:      ledger,
		registry:    merchantRegistry,
		exchanges:   exchanges,
		queueClient: queueClient,
	}
}

// PayInput 代币支付输入
type PayInput struct {
	AmountOut   models.Amount // 期望交付收款钱包的稳定数量
	AmountInMax models.Amount // 可接受的最大输入量
	TokenIn     string        // 输入资产地址
	Payer       string        // 付款方账户
	Deadline    time.Time     // 兑换截止时间（零值时使用默认时长）
	Attachment  string        // 调用方附言
	Merchant    string        // 商户标识（可为空）
}

// PayWithNativeInput 原生币支付输入
type PayWithNativeInput struct {
	AmountOut  models.Amount // 期望交付收款钱包的稳定数量
	Value      models.Amount // 随调用附带的原生币数量（兑换上限）
	Payer      string
	Deadline   time.Time
	Attachment string
	Merchant   string
}

// settlementContext 单次结算所需的配置快照
type settlementContext struct {
	stable        string
	payoutWallet  string
	engineAccount string
	router        *exchange.Router
}

// Pay 代币支付：拉取输入资产，必要时兑换为稳定资产，交付收款钱包并追加台账。
func (s *SettlementService) Pay(input PayInput) (*models.Payment, error) {
	if input.AmountOut.IsZero() {
		return nil, ErrAmountInvalid
	}
	payer := strings.TrimSpace(input.Payer)
	if payer == "" {
		return nil, ErrAmountInvalid
	}
	tokenIn := strings.TrimSpace(input.TokenIn)
	if tokenIn == constants.NativeAsset {
		// 原生币入口专用 PayWithNative
		return nil, ErrAssetInvalid
	}
	token, err := s.tokenRepo.GetByAddress(tokenIn)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, ErrAssetUnknown
	}

	sc, err := s.loadContext()
	if err != nil {
		return nil, err
	}
	if err := s.checkMerchant(input.Merchant); err != nil {
		return nil, err
	}
	deadline := s.normalizeDeadline(input.Deadline)

	log := logger.SW(
		"payer", payer,
		"token_in", tokenIn,
		"amount_out", input.AmountOut.String(),
	)

	var payment *models.Payment
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		ledger := s.ledger.WithTx(tx)
		router := sc.router.WithTx(tx)

		var amountIn models.Amount
		if tokenIn == sc.stable {
			// 输入即稳定资产：无兑换，精确拉取 amountOut
			amountIn = input.AmountOut
			if err := s.checkAllowance(ledger, payer, sc.engineAccount, tokenIn, amountIn); err != nil {
				return err
			}
			if err := pullAsset(ledger, payer, sc.engineAccount, tokenIn, amountIn); err != nil {
				return err
			}
		} else {
			path, err := router.BuildPath(tokenIn, sc.stable)
			if err != nil {
				return mapSwapError(err)
			}
			quoted, err := router.QuoteAmountIn(input.AmountOut, path)
			if err != nil {
				return mapSwapError(err)
			}
			// 转移发生前校验额度覆盖报价所需输入
			if err := s.checkAllowance(ledger, payer, sc.engineAccount, tokenIn, quoted); err != nil {
				return err
			}
			if err := pullAsset(ledger, payer, sc.engineAccount, tokenIn, quoted); err != nil {
				return err
			}
			amountIn, err = router.SwapTokensForExactTokens(
				input.AmountOut, input.AmountInMax, path,
				sc.engineAccount, sc.engineAccount, deadline,
			)
			if err != nil {
				return mapSwapError(err)
			}
		}

		if err := ledger.Transfer(sc.engineAccount, sc.payoutWallet, sc.stable, input.AmountOut); err != nil {
			return err
		}

		payment = &models.Payment{
			Status:     constants.PaymentStatusPaid,
			TokenIn:    tokenIn,
			AmountIn:   amountIn,
			TokenOut:   sc.stable,
			AmountOut:  input.AmountOut,
			Payer:      payer,
			IsNative:   false,
			Attachment: input.Attachment,
			Merchant:   strings.TrimSpace(input.Merchant),
			CreatedAt:  time.Now(),
		}
		return s.paymentRepo.WithTx(tx).Append(payment)
	})
	if err != nil {
		log.Infow("payment_rejected", "error", err)
		return nil, err
	}

	s.notify(payment.Idx, constants.PaymentEventPaid)
	log.Infow("payment_settled",
		"idx", payment.Idx,
		"amount_in", payment.AmountIn.String(),
	)
	return payment, nil
}

// PayWithNative 原生币支付：附带价值即兑换上限，未消耗部分退回付款方。
func (s *SettlementService) PayWithNative(input PayWithNativeInput) (*models.Payment, error) {
	if input.AmountOut.IsZero() || input.Value.IsZero() {
		return nil, ErrAmountInvalid
	}
	payer := strings.TrimSpace(input.Payer)
	if payer == "" {
		return nil, ErrAmountInvalid
	}

	sc, err := s.loadContext()
	if err != nil {
		return nil, err
	}
	if sc.stable == constants.NativeAsset {
		// 原生币不可同时充当稳定记账资产
		return nil, ErrAssetInvalid
	}
	if err := s.checkMerchant(input.Merchant); err != nil {
		return nil, err
	}
	deadline := s.normalizeDeadline(input.Deadline)

	log := logger.SW(
		"payer", payer,
		"token_in", constants.NativeAsset,
		"amount_out", input.AmountOut.String(),
	)

	var payment *models.Payment
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		ledger := s.ledger.WithTx(tx)
		router := sc.router.WithTx(tx)

		// 附带价值直接划入引擎账户（原生币无授权额度语义）
		if err := transferAsset(ledger, payer, sc.engineAccount, constants.NativeAsset, input.Value); err != nil {
			return err
		}

		path, err := router.BuildPath(constants.NativeAsset, sc.stable)
		if err != nil {
			return mapSwapError(err)
		}
		used, err := router.SwapTokensForExactTokens(
			input.AmountOut, input.Value, path,
			sc.engineAccount, sc.engineAccount, deadline,
		)
		if err != nil {
			return mapSwapError(err)
		}

		// 未消耗的附带价值退回付款方
		excess, err := input.Value.Sub(used)
		if err != nil {
			return err
		}
		if !excess.IsZero() {
			if err := ledger.Transfer(sc.engineAccount, payer, constants.NativeAsset, excess); err != nil {
				return err
			}
		}

		if err := ledger.Transfer(sc.engineAccount, sc.payoutWallet, sc.stable, input.AmountOut); err != nil {
			return err
		}

		payment = &models.Payment{
			Status:     constants.PaymentStatusPaid,
			TokenIn:    constants.NativeAsset,
			AmountIn:   used,
			TokenOut:   sc.stable,
			AmountOut:  input.AmountOut,
			Payer:      payer,
			IsNative:   true,
			Attachment: input.Attachment,
			Merchant:   strings.TrimSpace(input.Merchant),
			CreatedAt:  time.Now(),
		}
		return s.paymentRepo.WithTx(tx).Append(payment)
	})
	if err != nil {
		log.Infow("payment_rejected", "error", err)
		return nil, err
	}

	s.notify(payment.Idx, constants.PaymentEventPaid)
	log.Infow("payment_settled",
		"idx", payment.Idx,
		"amount_in", payment.AmountIn.String(),
	)
	return payment, nil
}

// Refund 退款：将所欠稳定数量兑换回原输入资产并退还付款方。
// 仅当前管理员可调用；stableOnly 为真时跳过反向兑换，直接以稳定资产退款。
// 引擎稳定资产备付金不足时失败，外部补足后可重试。
func (s *SettlementService) Refund(managerID uint, idx uint64, stableOnly bool) (*models.Payment, error) {
	if _, err := requireManager(s.managerRepo, managerID); err != nil {
		return nil, err
	}

	sc, err := s.loadContext()
	if err != nil {
		return nil, err
	}

	log := logger.SW("idx", idx, "manager_id", managerID, "stable_only", stableOnly)

	var payment *models.Payment
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		paymentRepo := s.paymentRepo.WithTx(tx)
		ledger := s.ledger.WithTx(tx)
		router := sc.router.WithTx(tx)

		payment, err = paymentRepo.GetByIdx(idx)
		if err != nil {
			return err
		}
		if payment == nil {
			return ErrPaymentNotFound
		}
		if payment.Status == constants.PaymentStatusRefunded {
			return ErrAlreadyRefunded
		}

		owed := payment.AmountOut
		engineBalance, err := ledger.BalanceOf(sc.engineAccount, sc.stable)
		if err != nil {
			return err
		}
		if engineBalance.Cmp(owed) < 0 {
			return ErrInsufficientFunds
		}

		if stableOnly || payment.TokenIn == sc.stable {
			if err := ledger.Transfer(sc.engineAccount, payment.Payer, sc.stable, owed); err != nil {
				return err
			}
		} else {
			path, err := router.BuildPath(sc.stable, payment.TokenIn)
			if err != nil {
				return mapSwapError(err)
			}
			deadline := s.normalizeDeadline(time.Time{})
			if _, err := router.SwapExactTokensForTokens(
				owed, models.Amount{}, path,
				sc.engineAccount, payment.Payer, deadline,
			); err != nil {
				return mapSwapError(err)
			}
		}

		now := time.Now()
		payment.Status = constants.PaymentStatusRefunded
		payment.RefundedAt = &now
		return paymentRepo.Update(payment)
	})
	if err != nil {
		log.Infow("refund_rejected", "error", err)
		return nil, err
	}

	s.notify(payment.Idx, constants.PaymentEventRefunded)
	log.Infow("payment_refunded", "payer", payment.Payer)
	return payment, nil
}

// GetAmountIn 只读报价：获得 amountOut 稳定资产所需的 tokenIn 输入量。
// 输入即稳定资产时为恒等；无流动性时返回 ErrQuoteUnavailable，绝不返回误导性报价。
func (s *SettlementService) GetAmountIn(amountOut models.Amount, tokenIn string) (models.Amount, error) {
	if amountOut.IsZero() {
		return models.Amount{}, ErrAmountInvalid
	}
	sc, err := s.loadContext()
	if err != nil {
		return models.Amount{}, err
	}
	tokenIn = strings.TrimSpace(tokenIn)
	if tokenIn == sc.stable {
		return amountOut, nil
	}
	path, err := sc.router.BuildPath(tokenIn, sc.stable)
	if err != nil {
		return models.Amount{}, ErrQuoteUnavailable
	}
	quoted, err := sc.router.QuoteAmountIn(amountOut, path)
	if err != nil || quoted.IsZero() {
		return models.Amount{}, ErrQuoteUnavailable
	}
	return quoted, nil
}

// QuoteRefundOut 只读反向报价：退款 idx 时付款方预期收到的原输入资产数量。
func (s *SettlementService) QuoteRefundOut(idx uint64) (models.Amount, error) {
	payment, err := s.GetPayment(idx)
	if err != nil {
		return models.Amount{}, err
	}
	sc, err := s.loadContext()
	if err != nil {
		return models.Amount{}, err
	}
	if payment.TokenIn == sc.stable {
		return payment.AmountOut, nil
	}
	path, err := sc.router.BuildPath(sc.stable, payment.TokenIn)
	if err != nil {
		return models.Amount{}, ErrQuoteUnavailable
	}
	out, err := sc.router.QuoteAmountOut(payment.AmountOut, path)
	if err != nil || out.IsZero() {
		return models.Amount{}, ErrQuoteUnavailable
	}
	return out, nil
}

// GetPayment 读取台账记录
func (s *SettlementService) GetPayment(idx uint64) (*models.Payment, error) {
	payment, err := s.paymentRepo.GetByIdx(idx)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	return payment, nil
}

// GetPaymentsCount 读取台账长度
func (s *SettlementService) GetPaymentsCount() (int64, error) {
	return s.paymentRepo.Count()
}

// ListPayments 分页读取台账
func (s *SettlementService) ListPayments(filter repository.PaymentListFilter) ([]models.Payment, int64, error) {
	return s.paymentRepo.List(filter)
}

// loadContext 读取结算所需配置快照并解析兑换实现
func (s *SettlementService) loadContext() (*settlementContext, error) {
	settings, err := s.settingRepo.All()
	if err != nil {
		return nil, err
	}
	sc := &settlementContext{
		stable:        strings.TrimSpace(settings[constants.SettingStableAsset]),
		payoutWallet:  strings.TrimSpace(settings[constants.SettingPayoutWallet]),
		engineAccount: strings.TrimSpace(settings[constants.SettingEngineAccount]),
	}
	if sc.stable == "" || sc.payoutWallet == "" || sc.engineAccount == "" {
		return nil, ErrNotConfigured
	}
	ref := strings.TrimSpace(settings[constants.SettingExchangeRef])
	if ref == "" {
		ref = constants.ExchangeRefAMM
	}
	router, ok := s.exchanges[ref]
	if !ok {
		return nil, ErrExchangeUnknown
	}
	sc.router = router
	return sc, nil
}

// checkMerchant 支付前置商户资格校验；空标识视为未指定商户。
func (s *SettlementService) checkMerchant(orgID string) error {
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return nil
	}
	active, err := s.registry.IsActive(orgID)
	if err != nil {
		return err
	}
	if !active {
		return ErrMerchantIneligible
	}
	return nil
}

func (s *SettlementService) checkAllowance(ledger *assets.Ledger, owner, spender, token string, required models.Amount) error {
	allowance, err := ledger.Allowance(owner, spender, token)
	if err != nil {
		return err
	}
	if allowance.Cmp(required) < 0 {
		return ErrInsufficientAllowance
	}
	return nil
}

func (s *SettlementService) normalizeDeadline(deadline time.Time) time.Time {
	if !deadline.IsZero() {
		return deadline
	}
	seconds := s.cfg.Settlement.DefaultDeadlineSeconds
	if seconds <= 0 {
		seconds = 120
	}
	return time.Now().Add(time.Duration(seconds) * time.Second)
}

// notify 支付事件入队（队列不可用时仅记录，不影响已提交的结算）
func (s *SettlementService) notify(idx uint64, event string) {
	if err := s.queueClient.EnqueuePaymentNotify(queue.PaymentNotifyPayload{
		Idx:   idx,
		Event: event,
	}); err != nil {
		logger.Warnw("payment_notify_enqueue_failed", "idx", idx, "event", event, "error", err)
	}
}

// pullAsset 以授权额度拉取资产并归一化账本错误
func pullAsset(ledger *assets.Ledger, owner, spender, token string, amount models.Amount) error {
	if err := ledger.Pull(owner, spender, token, amount); err != nil {
		return mapLedgerError(err)
	}
	return nil
}

// transferAsset 直接划转资产并归一化账本错误
func transferAsset(ledger *assets.Ledger, from, to, token string, amount models.Amount) error {
	if err := ledger.Transfer(from, to, token, amount); err != nil {
		return mapLedgerError(err)
	}
	return nil
}

// mapLedgerError 将资产账本错误映射为服务错误
func mapLedgerError(err error) error {
	switch {
	case errors.Is(err, assets.ErrInsufficientAllowance):
		return ErrInsufficientAllowance
	case errors.Is(err, assets.ErrInsufficientBalance):
		return ErrInsufficientBalance
	default:
		return err
	}
}

// mapSwapError 将兑换错误映射为服务错误
func mapSwapError(err error) error {
	switch {
	case errors.Is(err, exchange.ErrDeadlineExpired):
		return ErrDeadlineExpired
	case errors.Is(err, exchange.ErrNoLiquidity),
		errors.Is(err, exchange.ErrInvalidPath),
		errors.Is(err, exchange.ErrExcessiveInputAmount),
		errors.Is(err, exchange.ErrInsufficientInputAmount),
		errors.Is(err, exchange.ErrInsufficientOutputAmount):
		return ErrSwapFailed
	default:
		return err
	}
}
