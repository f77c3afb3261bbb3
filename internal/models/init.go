package models

import (
	"github.com/settle-next/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

// InitDefaultManager 初始化默认管理员账号（已存在任一管理员时跳过）
func InitDefaultManager(username, password string) error {
	var count int64
	DB.Model(&Manager{}).Count(&count)
	if count > 0 {
		return nil
	}

	if username == "" {
		username = "manager"
	}
	if password == "" {
		password = "manager123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	manager := Manager{
		Username:     username,
		PasswordHash: string(hash),
		Active:       true,
	}
	if err := DB.Create(&manager).Error; err != nil {
		return err
	}

	if password == "manager123" {
		logger.Warnw("default_manager_created_with_default_password", "username", username)
		logger.Warnw("default_manager_password_change_required", "username", username)
	} else {
		logger.Warnw("default_manager_created", "username", username, "password_hidden", true)
	}
	return nil
}
