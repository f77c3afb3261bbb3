package admin

import (
	"errors"
	"strconv"

	"github.com/settle-next/internal/http/response"
	"github.com/settle-next/internal/service"

	"github.com/gin-gonic/gin"
)

// RefundRequest 退款请求
type RefundRequest struct {
	StableOnly bool `json:"stable_only"` // 为真时跳过反向兑换，直接以稳定资产退款
}

// Refund 按台账索引退款
func (h *Handler) Refund(c *gin.Context) {
	managerID, ok := getManagerID(c)
	if !ok {
		return
	}
	idx, err := strconv.ParseUint(c.Param("idx"), 10, 64)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.index_invalid", nil)
		return
	}

	var req RefundRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
	}

	payment, err := h.SettlementService.Refund(managerID, idx, req.StableOnly)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotAuthorized):
			respondError(c, response.CodeForbidden, "error.not_authorized", nil)
		case errors.Is(err, service.ErrPaymentNotFound):
			respondError(c, response.CodeNotFound, "error.payment_not_found", nil)
		case errors.Is(err, service.ErrAlreadyRefunded):
			respondError(c, response.CodeConflict, "error.already_refunded", nil)
		case errors.Is(err, service.ErrInsufficientFunds):
			respondError(c, response.CodeUnprocessable, "error.insufficient_funds", nil)
		case errors.Is(err, service.ErrSwapFailed):
			respondError(c, response.CodeUnprocessable, "error.swap_failed", nil)
		case errors.Is(err, service.ErrNotConfigured), errors.Is(err, service.ErrExchangeUnknown):
			respondError(c, response.CodeInternal, "error.not_configured", err)
		default:
			respondError(c, response.CodeInternal, "error.internal", err)
		}
		return
	}

	requestLog(c).Infow("admin_refund", "idx", idx, "manager_id", managerID)
	response.Success(c, payment)
}

// QuoteRefundOut 退款预估：付款方预期收回的原输入资产数量
func (h *Handler) QuoteRefundOut(c *gin.Context) {
	if _, ok := getManagerID(c); !ok {
		return
	}
	idx, err := strconv.ParseUint(c.Param("idx"), 10, 64)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.index_invalid", nil)
		return
	}
	out, err := h.SettlementService.QuoteRefundOut(idx)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentNotFound):
			respondError(c, response.CodeNotFound, "error.payment_not_found", nil)
		case errors.Is(err, service.ErrQuoteUnavailable):
			respondError(c, response.CodeUnprocessable, "error.quote_unavailable", nil)
		default:
			respondError(c, response.CodeInternal, "error.internal", err)
		}
		return
	}
	response.Success(c, gin.H{"idx": idx, "amount_out": out})
}
