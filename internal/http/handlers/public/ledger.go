package public

import (
	"strconv"
	"strings"

	handlershared "github.com/settle-next/internal/http/handlers/shared"
	"github.com/settle-next/internal/http/response"
	"github.com/settle-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetPayment 按索引读取台账记录
func (h *Handler) GetPayment(c *gin.Context) {
	idx, err := strconv.ParseUint(c.Param("idx"), 10, 64)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.index_invalid", nil)
		return
	}

	payment, err := h.SettlementService.GetPayment(idx)
	if err != nil {
		respondPaymentReadError(c, err)
		return
	}
	response.Success(c, payment)
}

// GetPaymentsCount 读取台账长度
func (h *Handler) GetPaymentsCount(c *gin.Context) {
	count, err := h.SettlementService.GetPaymentsCount()
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, gin.H{"count": count})
}

// ListPayments 分页读取台账
func (h *Handler) ListPayments(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	filter := repository.PaymentListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.TrimSpace(c.Query("status")),
		Payer:    strings.TrimSpace(c.Query("payer")),
		TokenIn:  strings.TrimSpace(c.Query("token_in")),
		Merchant: strings.TrimSpace(c.Query("merchant")),
	}

	payments, total, err := h.SettlementService.ListPayments(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, payments, response.NewPagination(page, pageSize, total))
}

// GetConfig 公开配置视图
func (h *Handler) GetConfig(c *gin.Context) {
	cfg, err := h.ConfigService.GetPublicConfig()
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, cfg)
}

// GetMerchantActive 查询商户资格
func (h *Handler) GetMerchantActive(c *gin.Context) {
	orgID := strings.TrimSpace(c.Param("org_id"))
	if orgID == "" {
		respondError(c, response.CodeBadRequest, "error.merchant_invalid", nil)
		return
	}
	active, err := h.Registry.IsActive(orgID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, gin.H{"org_id": orgID, "active": active})
}

// GetBalance 查询账户资产余额
func (h *Handler) GetBalance(c *gin.Context) {
	account := strings.TrimSpace(c.Query("account"))
	token := strings.TrimSpace(c.Query("token"))
	if account == "" || token == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	balance, err := h.Ledger.BalanceOf(account, token)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, gin.H{"account": account, "token": token, "balance": balance})
}

// ListTokens 已登记代币列表
func (h *Handler) ListTokens(c *gin.Context) {
	tokens, err := h.TokenRepo.List()
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, tokens)
}
