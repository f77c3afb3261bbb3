package models

import (
	"time"
)

// Payment 结算台账记录（仅追加，索引密集且从不复用）
type Payment struct {
	ID         uint       `gorm:"primarykey" json:"-"`                      // 主键
	Idx        uint64     `gorm:"uniqueIndex;not null" json:"index"`        // 台账索引（从 0 起连续递增）
	Status     string     `gorm:"index;not null" json:"status"`             // 状态（paid/refunded）
	TokenIn    string     `gorm:"index;not null" json:"token_in"`           // 付款方实际支付的资产
	AmountIn   Amount     `gorm:"type:decimal(78,0);not null" json:"amount_in"`  // 实际拉取的输入数量
	TokenOut   string     `gorm:"not null" json:"token_out"`                // 稳定记账资产
	AmountOut  Amount     `gorm:"type:decimal(78,0);not null" json:"amount_out"` // 交付收款钱包的稳定数量
	Payer      string     `gorm:"index;not null" json:"payer"`              // 付款方账户（退款目的地）
	IsNative   bool       `gorm:"not null" json:"is_native"`                // 输入是否为原生币
	Attachment string     `gorm:"type:text" json:"attachment"`              // 调用方附言（原样存储，不解释）
	Merchant   string     `gorm:"index" json:"merchant"`                    // 商户标识（可为空；仅支付时校验资格）
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`                  // 创建时间
	RefundedAt *time.Time `json:"refunded_at"`                              // 退款时间
}

// TableName 指定表名
func (Payment) TableName() string {
	return "payments"
}
