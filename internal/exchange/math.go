package exchange

import (
	"math/big"

	"github.com/settle-next/internal/models"
)

// 恒定乘积做市数学（0.3% 手续费，向付款方不利方向取整）。
var (
	feeNumerator   = big.NewInt(997)
	feeDenominator = big.NewInt(1000)
)

// getAmountOut 给定输入量与储备，返回可得输出量：
// out = in*997*reserveOut / (reserveIn*1000 + in*997)
func getAmountOut(amountIn, reserveIn, reserveOut models.Amount) (models.Amount, error) {
	if amountIn.IsZero() {
		return models.Amount{}, ErrInsufficientInputAmount
	}
	if reserveIn.IsZero() || reserveOut.IsZero() {
		return models.Amount{}, ErrNoLiquidity
	}
	amountInWithFee := new(big.Int).Mul(amountIn.Big(), feeNumerator)
	numerator := new(big.Int).Mul(amountInWithFee, reserveOut.Big())
	denominator := new(big.Int).Mul(reserveIn.Big(), feeDenominator)
	denominator.Add(denominator, amountInWithFee)
	return models.NewAmountFromBig(new(big.Int).Quo(numerator, denominator)), nil
}

// getAmountIn 给定目标输出量与储备，返回所需输入量：
// in = reserveIn*out*1000 / ((reserveOut-out)*997) + 1
func getAmountIn(amountOut, reserveIn, reserveOut models.Amount) (models.Amount, error) {
	if amountOut.IsZero() {
		return models.Amount{}, ErrInsufficientOutputAmount
	}
	if reserveIn.IsZero() || reserveOut.IsZero() || reserveOut.Cmp(amountOut) <= 0 {
		return models.Amount{}, ErrNoLiquidity
	}
	numerator := new(big.Int).Mul(reserveIn.Big(), amountOut.Big())
	numerator.Mul(numerator, feeDenominator)
	remaining, err := reserveOut.Sub(amountOut)
	if err != nil {
		return models.Amount{}, ErrNoLiquidity
	}
	denominator := new(big.Int).Mul(remaining.Big(), feeNumerator)
	result := new(big.Int).Quo(numerator, denominator)
	result.Add(result, big.NewInt(1))
	return models.NewAmountFromBig(result), nil
}
