package models

import "time"

// Token 资产目录（含原生币哨兵记录）
type Token struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Address   string    `gorm:"uniqueIndex;not null" json:"address"` // 资产地址（原生币为哨兵值）
	Symbol    string    `gorm:"not null" json:"symbol"`              // 符号
	Decimals  int32     `gorm:"not null" json:"decimals"`            // 精度
	CreatedAt time.Time `json:"created_at"`
}

// TableName 指定表名
func (Token) TableName() string {
	return "tokens"
}
