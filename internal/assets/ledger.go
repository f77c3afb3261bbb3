package assets

import (
	"errors"
	"fmt"

	"github.com/settle-next/internal/models"
	"github.com/settle-next/internal/repository"

	"gorm.io/gorm"
)

// 资产账本错误
var (
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
)

// Ledger 资产转移适配器：统一原生币与代币的拉取/划转。
// 所有变更在调用方提供的事务内执行，失败即整体回滚。
type Ledger struct {
	assetRepo repository.AssetRepository
}

// NewLedger 创建资产账本
func NewLedger(assetRepo repository.AssetRepository) *Ledger {
	return &Ledger{assetRepo: assetRepo}
}

// WithTx 绑定事务
func (l *Ledger) WithTx(tx *gorm.DB) *Ledger {
	if tx == nil {
		return l
	}
	if gormRepo, ok := l.assetRepo.(*repository.GormAssetRepository); ok {
		return &Ledger{assetRepo: gormRepo.WithTx(tx)}
	}
	return l
}

// BalanceOf 查询账户余额
func (l *Ledger) BalanceOf(account, token string) (models.Amount, error) {
	return l.assetRepo.GetBalance(account, token)
}

// Allowance 查询剩余授权额度
func (l *Ledger) Allowance(owner, spender, token string) (models.Amount, error) {
	return l.assetRepo.GetAllowance(owner, spender, token)
}

// Approve 设置授权额度（覆盖写）
func (l *Ledger) Approve(owner, spender, token string, amount models.Amount) error {
	return l.assetRepo.SetAllowance(owner, spender, token, amount)
}

// Mint 向账户铸入资产（种子数据与备付金补充使用）
func (l *Ledger) Mint(account, token string, amount models.Amount) error {
	balance, err := l.assetRepo.GetBalanceForUpdate(account, token)
	if err != nil {
		return err
	}
	return l.assetRepo.SetBalance(account, token, balance.Add(amount))
}

// Transfer 划转资产（from 余额不足时失败）。
// 两侧余额行加锁读取，防止并发划转丢失更新。
func (l *Ledger) Transfer(from, to, token string, amount models.Amount) error {
	if amount.IsZero() {
		return nil
	}
	fromBalance, err := l.assetRepo.GetBalanceForUpdate(from, token)
	if err != nil {
		return err
	}
	if fromBalance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: account %s token %s has %s, need %s",
			ErrInsufficientBalance, from, token, fromBalance.String(), amount.String())
	}
	remaining, err := fromBalance.Sub(amount)
	if err != nil {
		return err
	}
	if err := l.assetRepo.SetBalance(from, token, remaining); err != nil {
		return err
	}
	toBalance, err := l.assetRepo.GetBalanceForUpdate(to, token)
	if err != nil {
		return err
	}
	return l.assetRepo.SetBalance(to, token, toBalance.Add(amount))
}

// Pull 以预授权额度从付款方拉取资产（transferFrom 语义），并扣减额度。
// 额度行加锁读取，同一授权不会被并发拉取重复消耗。
func (l *Ledger) Pull(owner, spender, token string, amount models.Amount) error {
	if amount.IsZero() {
		return nil
	}
	allowance, err := l.assetRepo.GetAllowanceForUpdate(owner, spender, token)
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: owner %s spender %s token %s allowed %s, need %s",
			ErrInsufficientAllowance, owner, spender, token, allowance.String(), amount.String())
	}
	if err := l.Transfer(owner, spender, token, amount); err != nil {
		return err
	}
	remaining, err := allowance.Sub(amount)
	if err != nil {
		return err
	}
	return l.assetRepo.SetAllowance(owner, spender, token, remaining)
}
