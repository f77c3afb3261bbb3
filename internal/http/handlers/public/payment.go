package public

import (
	"time"

	"github.com/settle-next/internal/http/response"
	"github.com/settle-next/internal/models"
	"github.com/settle-next/internal/service"

	"github.com/gin-gonic/gin"
)

// PayRequest 代币支付请求
type PayRequest struct {
	AmountOut   models.Amount `json:"amount_out" binding:"required"`
	AmountInMax models.Amount `json:"amount_in_max" binding:"required"`
	TokenIn     string        `json:"token_in" binding:"required"`
	Payer       string        `json:"payer" binding:"required"`
	Deadline    int64         `json:"deadline"` // Unix 秒，缺省时使用服务端默认时长
	Attachment  string        `json:"attachment"`
	Merchant    string        `json:"merchant"`
}

// PayNativeRequest 原生币支付请求
type PayNativeRequest struct {
	AmountOut  models.Amount `json:"amount_out" binding:"required"`
	Value      models.Amount `json:"value" binding:"required"`
	Payer      string        `json:"payer" binding:"required"`
	Deadline   int64         `json:"deadline"`
	Attachment string        `json:"attachment"`
	Merchant   string        `json:"merchant"`
}

// Pay 代币支付
func (h *Handler) Pay(c *gin.Context) {
	var req PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	payment, err := h.SettlementService.Pay(service.PayInput{
		AmountOut:   req.AmountOut,
		AmountInMax: req.AmountInMax,
		TokenIn:     req.TokenIn,
		Payer:       req.Payer,
		Deadline:    parseDeadline(req.Deadline),
		Attachment:  req.Attachment,
		Merchant:    req.Merchant,
	})
	if err != nil {
		respondPayError(c, err)
		return
	}

	requestLog(c).Infow("public_payment_created", "idx", payment.Idx, "payer", payment.Payer)
	response.Success(c, payment)
}

// PayNative 原生币支付
func (h *Handler) PayNative(c *gin.Context) {
	var req PayNativeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	payment, err := h.SettlementService.PayWithNative(service.PayWithNativeInput{
		AmountOut:  req.AmountOut,
		Value:      req.Value,
		Payer:      req.Payer,
		Deadline:   parseDeadline(req.Deadline),
		Attachment: req.Attachment,
		Merchant:   req.Merchant,
	})
	if err != nil {
		respondPayError(c, err)
		return
	}

	requestLog(c).Infow("public_payment_created", "idx", payment.Idx, "payer", payment.Payer)
	response.Success(c, payment)
}

// QuoteAmountIn 只读报价：获得 amount_out 稳定资产所需输入量
func (h *Handler) QuoteAmountIn(c *gin.Context) {
	tokenIn := c.Query("token_in")
	amountOut, err := models.NewAmountFromString(c.Query("amount_out"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.amount_invalid", nil)
		return
	}

	quoted, err := h.SettlementService.GetAmountIn(amountOut, tokenIn)
	if err != nil {
		respondQuoteError(c, err)
		return
	}

	response.Success(c, gin.H{
		"token_in":   tokenIn,
		"amount_out": amountOut,
		"amount_in":  quoted,
	})
}

func parseDeadline(unixSeconds int64) time.Time {
	if unixSeconds <= 0 {
		return time.Time{}
	}
	return time.Unix(unixSeconds, 0)
}
