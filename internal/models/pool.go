package models

import "time"

// Pool 恒定乘积流动性池（代币对按地址字典序存储）
type Pool struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Token0    string    `gorm:"uniqueIndex:idx_pool_pair;not null" json:"token0"` // 对内较小地址
	Token1    string    `gorm:"uniqueIndex:idx_pool_pair;not null" json:"token1"` // 对内较大地址
	Reserve0  Amount    `gorm:"type:decimal(78,0);not null" json:"reserve0"`      // token0 储备
	Reserve1  Amount    `gorm:"type:decimal(78,0);not null" json:"reserve1"`      // token1 储备
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Pool) TableName() string {
	return "pools"
}
