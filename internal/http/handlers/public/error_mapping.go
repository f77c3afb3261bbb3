package public

import (
	"errors"

	"github.com/settle-next/internal/http/response"
	"github.com/settle-next/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

var payCommonErrorRules = []mappedHandlerError{
	{target: service.ErrAmountInvalid, code: response.CodeBadRequest, key: "error.amount_invalid"},
	{target: service.ErrAssetUnknown, code: response.CodeBadRequest, key: "error.asset_unknown"},
	{target: service.ErrAssetInvalid, code: response.CodeBadRequest, key: "error.asset_invalid"},
	{target: service.ErrMerchantIneligible, code: response.CodeForbidden, key: "error.merchant_ineligible"},
	{target: service.ErrInsufficientAllowance, code: response.CodeUnprocessable, key: "error.insufficient_allowance"},
	{target: service.ErrInsufficientBalance, code: response.CodeUnprocessable, key: "error.insufficient_balance"},
	{target: service.ErrSwapFailed, code: response.CodeUnprocessable, key: "error.swap_failed"},
	{target: service.ErrDeadlineExpired, code: response.CodeBadRequest, key: "error.deadline_expired"},
	{target: service.ErrNotConfigured, code: response.CodeInternal, key: "error.not_configured"},
	{target: service.ErrExchangeUnknown, code: response.CodeInternal, key: "error.exchange_unknown"},
}

var quoteErrorRules = []mappedHandlerError{
	{target: service.ErrAmountInvalid, code: response.CodeBadRequest, key: "error.amount_invalid"},
	{target: service.ErrQuoteUnavailable, code: response.CodeUnprocessable, key: "error.quote_unavailable"},
	{target: service.ErrPaymentNotFound, code: response.CodeNotFound, key: "error.payment_not_found"},
	{target: service.ErrNotConfigured, code: response.CodeInternal, key: "error.not_configured"},
	{target: service.ErrExchangeUnknown, code: response.CodeInternal, key: "error.exchange_unknown"},
}

var paymentReadErrorRules = []mappedHandlerError{
	{target: service.ErrPaymentNotFound, code: response.CodeNotFound, key: "error.payment_not_found"},
}

func respondPayError(c *gin.Context, err error) {
	respondWithMappedError(c, err, payCommonErrorRules, response.CodeInternal, "error.internal")
}

func respondQuoteError(c *gin.Context, err error) {
	respondWithMappedError(c, err, quoteErrorRules, response.CodeInternal, "error.internal")
}

func respondPaymentReadError(c *gin.Context, err error) {
	respondWithMappedError(c, err, paymentReadErrorRules, response.CodeInternal, "error.internal")
}
