package exchange

import (
	"errors"
	"fmt"
	"time"

	"github.com/settle-next/internal/assets"
	"github.com/settle-next/internal/constants"
	"github.com/settle-next/internal/models"
	"github.com/settle-next/internal/repository"

	"gorm.io/gorm"
)

// 兑换错误
var (
	ErrNoLiquidity              = errors.New("no liquidity for pair")
	ErrInvalidPath              = errors.New("invalid swap path")
	ErrDeadlineExpired          = errors.New("swap deadline expired")
	ErrExcessiveInputAmount     = errors.New("required input exceeds maximum")
	ErrInsufficientInputAmount  = errors.New("insufficient input amount")
	ErrInsufficientOutputAmount = errors.New("insufficient output amount")
)

// Router 恒定乘积(x*y=k)兑换路由：报价与沿路径执行兑换。
// 资金经由资产账本划转，池储备与余额在同一事务内更新。
type Router struct {
	poolRepo repository.PoolRepository
	ledger   *assets.Ledger
	now      func() time.Time
}

// NewRouter 创建兑换路由
func NewRouter(poolRepo repository.PoolRepository, ledger *assets.Ledger) *Router {
	return &Router{
		poolRepo: poolRepo,
		ledger:   ledger,
		now:      time.Now,
	}
}

// WithClock 覆盖时钟（测试用）
func (r *Router) WithClock(now func() time.Time) *Router {
	if now != nil {
		r.now = now
	}
	return r
}

// WithTx 绑定事务
func (r *Router) WithTx(tx *gorm.DB) *Router {
	if tx == nil {
		return r
	}
	bound := &Router{poolRepo: r.poolRepo, ledger: r.ledger.WithTx(tx), now: r.now}
	if gormRepo, ok := r.poolRepo.(*repository.GormPoolRepository); ok {
		bound.poolRepo = gormRepo.WithTx(tx)
	}
	return bound
}

// BuildPath 构造兑换路径：存在直接池则两跳，否则经原生币中转。
func (r *Router) BuildPath(tokenIn, tokenOut string) ([]string, error) {
	if tokenIn == tokenOut {
		return nil, ErrInvalidPath
	}
	direct, err := r.poolRepo.GetPair(tokenIn, tokenOut)
	if err != nil {
		return nil, err
	}
	if direct != nil {
		return []string{tokenIn, tokenOut}, nil
	}
	if tokenIn == constants.NativeAsset || tokenOut == constants.NativeAsset {
		return nil, ErrNoLiquidity
	}
	legIn, err := r.poolRepo.GetPair(tokenIn, constants.NativeAsset)
	if err != nil {
		return nil, err
	}
	legOut, err := r.poolRepo.GetPair(constants.NativeAsset, tokenOut)
	if err != nil {
		return nil, err
	}
	if legIn == nil || legOut == nil {
		return nil, ErrNoLiquidity
	}
	return []string{tokenIn, constants.NativeAsset, tokenOut}, nil
}

// QuoteAmountIn 报价：获得 amountOut 的路径末端资产所需的路径首端输入量。
func (r *Router) QuoteAmountIn(amountOut models.Amount, path []string) (models.Amount, error) {
	amounts, err := r.amountsForExactOut(amountOut, path)
	if err != nil {
		return models.Amount{}, err
	}
	return amounts[0], nil
}

// QuoteAmountOut 报价：投入 amountIn 的路径首端资产可得的路径末端输出量。
func (r *Router) QuoteAmountOut(amountIn models.Amount, path []string) (models.Amount, error) {
	amounts, err := r.amountsForExactIn(amountIn, path)
	if err != nil {
		return models.Amount{}, err
	}
	return amounts[len(amounts)-1], nil
}

// amountsForExactOut 反向推导路径各节点的成交量，amounts[len-1] 即目标输出。
func (r *Router) amountsForExactOut(amountOut models.Amount, path []string) ([]models.Amount, error) {
	if len(path) < 2 {
		return nil, ErrInvalidPath
	}
	amounts := make([]models.Amount, len(path))
	amounts[len(path)-1] = amountOut
	for i := len(path) - 1; i > 0; i-- {
		reserveIn, reserveOut, err := r.reserves(path[i-1], path[i])
		if err != nil {
			return nil, err
		}
		amounts[i-1], err = getAmountIn(amounts[i], reserveIn, reserveOut)
		if err != nil {
			return nil, err
		}
	}
	return amounts, nil
}

// amountsForExactIn 正向推导路径各节点的成交量，amounts[0] 即投入量。
func (r *Router) amountsForExactIn(amountIn models.Amount, path []string) ([]models.Amount, error) {
	if len(path) < 2 {
		return nil, ErrInvalidPath
	}
	amounts := make([]models.Amount, len(path))
	amounts[0] = amountIn
	for i := 0; i < len(path)-1; i++ {
		reserveIn, reserveOut, err := r.reserves(path[i], path[i+1])
		if err != nil {
			return nil, err
		}
		amounts[i+1], err = getAmountOut(amounts[i], reserveIn, reserveOut)
		if err != nil {
			return nil, err
		}
	}
	return amounts, nil
}

// SwapTokensForExactTokens 精确输出兑换：从 from 账户投入不超过 amountInMax 的
// 路径首端资产，使 to 账户恰好获得 amountOut 的路径末端资产。
// 返回实际消耗的输入量。
func (r *Router) SwapTokensForExactTokens(amountOut, amountInMax models.Amount, path []string, from, to string, deadline time.Time) (models.Amount, error) {
	if err := r.checkDeadline(deadline); err != nil {
		return models.Amount{}, err
	}
	amounts, err := r.amountsForExactOut(amountOut, path)
	if err != nil {
		return models.Amount{}, err
	}
	amountIn := amounts[0]
	if amountIn.Cmp(amountInMax) > 0 {
		return models.Amount{}, fmt.Errorf("%w: need %s, max %s",
			ErrExcessiveInputAmount, amountIn.String(), amountInMax.String())
	}
	if err := r.execute(amounts, path, from, to); err != nil {
		return models.Amount{}, err
	}
	return amountIn, nil
}

// SwapExactTokensForTokens 精确输入兑换：从 from 账户投入 amountIn 的路径首端
// 资产，to 账户获得不少于 amountOutMin 的路径末端资产。返回实际输出量。
func (r *Router) SwapExactTokensForTokens(amountIn, amountOutMin models.Amount, path []string, from, to string, deadline time.Time) (models.Amount, error) {
	if err := r.checkDeadline(deadline); err != nil {
		return models.Amount{}, err
	}
	amounts, err := r.amountsForExactIn(amountIn, path)
	if err != nil {
		return models.Amount{}, err
	}
	amountOut := amounts[len(amounts)-1]
	if amountOut.Cmp(amountOutMin) < 0 {
		return models.Amount{}, fmt.Errorf("%w: got %s, min %s",
			ErrInsufficientOutputAmount, amountOut.String(), amountOutMin.String())
	}
	if err := r.execute(amounts, path, from, to); err != nil {
		return models.Amount{}, err
	}
	return amountOut, nil
}

// AddLiquidity 注入流动性：从 funder 账户划入两侧资产并累加池储备，
// 池不存在时创建。种子数据与运维补充流动性使用。
func (r *Router) AddLiquidity(funder, tokenA, tokenB string, amountA, amountB models.Amount) (*models.Pool, error) {
	if tokenA == tokenB {
		return nil, ErrInvalidPath
	}
	if amountA.IsZero() || amountB.IsZero() {
		return nil, ErrInsufficientInputAmount
	}
	pool, err := r.poolRepo.GetPair(tokenA, tokenB)
	if err != nil {
		return nil, err
	}
	if pool == nil {
		token0, token1 := repository.SortPair(tokenA, tokenB)
		pool = &models.Pool{Token0: token0, Token1: token1}
		if err := r.poolRepo.Create(pool); err != nil {
			return nil, err
		}
	}

	poolAccount := poolAccountName(pool)
	if err := r.ledger.Transfer(funder, poolAccount, tokenA, amountA); err != nil {
		return nil, err
	}
	if err := r.ledger.Transfer(funder, poolAccount, tokenB, amountB); err != nil {
		return nil, err
	}

	reserveA, reserveB := orientReserves(pool, tokenA)
	applyReserves(pool, tokenA, reserveA.Add(amountA), reserveB.Add(amountB))
	if err := r.poolRepo.Update(pool); err != nil {
		return nil, err
	}
	return pool, nil
}

// reserves 读取交易对按方向排列的储备
func (r *Router) reserves(tokenIn, tokenOut string) (models.Amount, models.Amount, error) {
	pool, err := r.poolRepo.GetPair(tokenIn, tokenOut)
	if err != nil {
		return models.Amount{}, models.Amount{}, err
	}
	if pool == nil {
		return models.Amount{}, models.Amount{}, ErrNoLiquidity
	}
	reserveIn, reserveOut := orientReserves(pool, tokenIn)
	return reserveIn, reserveOut, nil
}

func (r *Router) checkDeadline(deadline time.Time) error {
	if deadline.IsZero() {
		return nil
	}
	if r.now().After(deadline) {
		return ErrDeadlineExpired
	}
	return nil
}

// execute 沿路径逐跳兑换，各跳按报价阶段算定的成交量划转：
// 从账本划入池、更新储备、划出至下一跳。成交量不重新推导，
// 收款账户到账的恰是 amounts 末端的量。
func (r *Router) execute(amounts []models.Amount, path []string, from, to string) error {
	holder := from
	for i := 0; i < len(path)-1; i++ {
		tokenIn, tokenOut := path[i], path[i+1]
		amountIn, amountOut := amounts[i], amounts[i+1]
		pool, err := r.poolRepo.GetPair(tokenIn, tokenOut)
		if err != nil {
			return err
		}
		if pool == nil {
			return ErrNoLiquidity
		}

		poolAccount := poolAccountName(pool)
		if err := r.ledger.Transfer(holder, poolAccount, tokenIn, amountIn); err != nil {
			return err
		}
		// 中间跳的产出暂存池账户，末跳直达收款账户
		recipient := to
		if i < len(path)-2 {
			recipient = poolAccount
		}
		if err := r.ledger.Transfer(poolAccount, recipient, tokenOut, amountOut); err != nil {
			return err
		}

		reserveIn, reserveOut := orientReserves(pool, tokenIn)
		newReserveOut, err := reserveOut.Sub(amountOut)
		if err != nil {
			return err
		}
		applyReserves(pool, tokenIn, reserveIn.Add(amountIn), newReserveOut)
		if err := r.poolRepo.Update(pool); err != nil {
			return err
		}

		holder = recipient
	}
	return nil
}

// poolAccountName 池在资产账本中的账户名
func poolAccountName(pool *models.Pool) string {
	return "pool:" + pool.Token0 + ":" + pool.Token1
}

func orientReserves(pool *models.Pool, tokenIn string) (models.Amount, models.Amount) {
	if pool.Token0 == tokenIn {
		return pool.Reserve0, pool.Reserve1
	}
	return pool.Reserve1, pool.Reserve0
}

func applyReserves(pool *models.Pool, tokenIn string, reserveIn, reserveOut models.Amount) {
	if pool.Token0 == tokenIn {
		pool.Reserve0 = reserveIn
		pool.Reserve1 = reserveOut
		return
	}
	pool.Reserve1 = reserveIn
	pool.Reserve0 = reserveOut
}
