package models

import "time"

// Merchant 商户注册表条目（资格仅在支付时校验）
type Merchant struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	OrgID     string    `gorm:"uniqueIndex;not null" json:"org_id"` // 商户标识（UUID）
	Name      string    `gorm:"not null" json:"name"`               // 商户名称
	Active    bool      `gorm:"not null" json:"active"`             // 是否在营
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Merchant) TableName() string {
	return "merchants"
}
