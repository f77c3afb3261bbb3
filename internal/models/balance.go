package models

import "time"

// Balance 资产账本余额（账户+资产 唯一）
type Balance struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Account   string    `gorm:"uniqueIndex:idx_balance_account_token;not null" json:"account"` // 账户
	Token     string    `gorm:"uniqueIndex:idx_balance_account_token;not null" json:"token"`   // 资产地址
	Amount    Amount    `gorm:"type:decimal(78,0);not null" json:"amount"`                     // 余额
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Balance) TableName() string {
	return "balances"
}

// Allowance 资产授权额度（所有者授权给支取方）
type Allowance struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Owner     string    `gorm:"uniqueIndex:idx_allowance_owner_spender_token;not null" json:"owner"`   // 授权方
	Spender   string    `gorm:"uniqueIndex:idx_allowance_owner_spender_token;not null" json:"spender"` // 支取方
	Token     string    `gorm:"uniqueIndex:idx_allowance_owner_spender_token;not null" json:"token"`   // 资产地址
	Amount    Amount    `gorm:"type:decimal(78,0);not null" json:"amount"`                             // 剩余额度
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Allowance) TableName() string {
	return "allowances"
}
