package models

import "time"

// Manager 管理员账号（任一时刻恰有一个 Active 为真）
type Manager struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"` // 登录名
	PasswordHash string    `gorm:"not null" json:"-"`                    // bcrypt 密码哈希
	Active       bool      `gorm:"index;not null" json:"active"`         // 是否为当前管理员
	TokenVersion uint64    `gorm:"not null;default:0" json:"-"`          // 令牌版本（用于吊销）
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Manager) TableName() string {
	return "managers"
}
