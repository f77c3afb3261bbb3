package repository

import (
	"errors"
	"strings"

	"github.com/settle-next/internal/models"

	"gorm.io/gorm"
)

// ManagerRepository 管理员数据访问接口
type ManagerRepository interface {
	Create(manager *models.Manager) error
	Update(manager *models.Manager) error
	GetByID(id uint) (*models.Manager, error)
	GetByUsername(username string) (*models.Manager, error)
	GetActive() (*models.Manager, error)
	WithTx(tx *gorm.DB) *GormManagerRepository
}

// GormManagerRepository GORM 实现
type GormManagerRepository struct {
	db *gorm.DB
}

// NewManagerRepository 创建管理员仓库
func NewManagerRepository(db *gorm.DB) *GormManagerRepository {
	return &GormManagerRepository{db: db}
}

// WithTx 绑定事务
func (r *GormManagerRepository) WithTx(tx *gorm.DB) *GormManagerRepository {
	if tx == nil {
		return r
	}
	return &GormManagerRepository{db: tx}
}

// Create 创建管理员
func (r *GormManagerRepository) Create(manager *models.Manager) error {
	return r.db.Create(manager).Error
}

// Update 更新管理员
func (r *GormManagerRepository) Update(manager *models.Manager) error {
	return r.db.Save(manager).Error
}

// GetByID 根据 ID 获取管理员
func (r *GormManagerRepository) GetByID(id uint) (*models.Manager, error) {
	var manager models.Manager
	if err := r.db.First(&manager, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &manager, nil
}

// GetByUsername 根据登录名获取管理员
func (r *GormManagerRepository) GetByUsername(username string) (*models.Manager, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, nil
	}
	var manager models.Manager
	if err := r.db.Where("username = ?", username).First(&manager).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &manager, nil
}

// GetActive 获取当前管理员（任一时刻恰有一个）
func (r *GormManagerRepository) GetActive() (*models.Manager, error) {
	var manager models.Manager
	if err := r.db.Where("active = ?", true).First(&manager).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &manager, nil
}
