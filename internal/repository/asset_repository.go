package repository

import (
	"errors"
	"time"

	"github.com/settle-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AssetRepository 资产账本数据访问接口（余额与授权额度）。
// 变更路径的读取必须使用 ForUpdate 变体，避免并发读改写丢失更新。
type AssetRepository interface {
	GetBalance(account, token string) (models.Amount, error)
	GetBalanceForUpdate(account, token string) (models.Amount, error)
	SetBalance(account, token string, amount models.Amount) error
	GetAllowance(owner, spender, token string) (models.Amount, error)
	GetAllowanceForUpdate(owner, spender, token string) (models.Amount, error)
	SetAllowance(owner, spender, token string, amount models.Amount) error
	WithTx(tx *gorm.DB) *GormAssetRepository
}

// GormAssetRepository GORM 实现
type GormAssetRepository struct {
	db *gorm.DB
}

// NewAssetRepository 创建资产账本仓库
func NewAssetRepository(db *gorm.DB) *GormAssetRepository {
	return &GormAssetRepository{db: db}
}

// WithTx 绑定事务
func (r *GormAssetRepository) WithTx(tx *gorm.DB) *GormAssetRepository {
	if tx == nil {
		return r
	}
	return &GormAssetRepository{db: tx}
}

// GetBalance 获取账户余额（无记录视为零）
func (r *GormAssetRepository) GetBalance(account, token string) (models.Amount, error) {
	var balance models.Balance
	if err := r.db.Where("account = ? AND token = ?", account, token).First(&balance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Amount{}, nil
		}
		return models.Amount{}, err
	}
	return balance.Amount, nil
}

// GetBalanceForUpdate 加锁获取账户余额，供同事务内的读改写使用。
// 无记录视为零；首次写入由 (account, token) 唯一索引兜底并发创建。
func (r *GormAssetRepository) GetBalanceForUpdate(account, token string) (models.Amount, error) {
	var balance models.Balance
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("account = ? AND token = ?", account, token).
		First(&balance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Amount{}, nil
		}
		return models.Amount{}, err
	}
	return balance.Amount, nil
}

// SetBalance 写入账户余额（不存在时创建）
func (r *GormAssetRepository) SetBalance(account, token string, amount models.Amount) error {
	var balance models.Balance
	err := r.db.Where("account = ? AND token = ?", account, token).First(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		balance = models.Balance{
			Account:   account,
			Token:     token,
			Amount:    amount,
			UpdatedAt: time.Now(),
		}
		return r.db.Create(&balance).Error
	}
	if err != nil {
		return err
	}
	balance.Amount = amount
	balance.UpdatedAt = time.Now()
	return r.db.Save(&balance).Error
}

// GetAllowance 获取授权额度（无记录视为零）
func (r *GormAssetRepository) GetAllowance(owner, spender, token string) (models.Amount, error) {
	var allowance models.Allowance
	if err := r.db.Where("owner = ? AND spender = ? AND token = ?", owner, spender, token).
		First(&allowance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Amount{}, nil
		}
		return models.Amount{}, err
	}
	return allowance.Amount, nil
}

// GetAllowanceForUpdate 加锁获取授权额度，供同事务内的扣减使用
func (r *GormAssetRepository) GetAllowanceForUpdate(owner, spender, token string) (models.Amount, error) {
	var allowance models.Allowance
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("owner = ? AND spender = ? AND token = ?", owner, spender, token).
		First(&allowance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Amount{}, nil
		}
		return models.Amount{}, err
	}
	return allowance.Amount, nil
}

// SetAllowance 写入授权额度（不存在时创建）
func (r *GormAssetRepository) SetAllowance(owner, spender, token string, amount models.Amount) error {
	var allowance models.Allowance
	err := r.db.Where("owner = ? AND spender = ? AND token = ?", owner, spender, token).
		First(&allowance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		allowance = models.Allowance{
			Owner:     owner,
			Spender:   spender,
			Token:     token,
			Amount:    amount,
			UpdatedAt: time.Now(),
		}
		return r.db.Create(&allowance).Error
	}
	if err != nil {
		return err
	}
	allowance.Amount = amount
	allowance.UpdatedAt = time.Now()
	return r.db.Save(&allowance).Error
}
