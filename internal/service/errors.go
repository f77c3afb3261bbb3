package service

import "errors"

// 结算服务错误（短原因串可供调用方程序化判定）
var (
	ErrNotAuthorized         = errors.New("not authorized")
	ErrMerchantIneligible    = errors.New("merchant ineligible")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrSwapFailed            = errors.New("swap failed")
	ErrDeadlineExpired       = errors.New("deadline expired")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrAlreadyRefunded       = errors.New("already refunded")
	ErrPaymentNotFound       = errors.New("payment not found")
	ErrQuoteUnavailable      = errors.New("quote unavailable")
	ErrAmountInvalid         = errors.New("amount invalid")
	ErrAssetUnknown          = errors.New("asset unknown")
	ErrAssetInvalid          = errors.New("asset invalid")
	ErrNotConfigured         = errors.New("settlement not configured")
	ErrExchangeUnknown       = errors.New("exchange reference unknown")
	ErrManagerInvalid        = errors.New("manager invalid")
	ErrLoginFailed           = errors.New("login failed")
)
