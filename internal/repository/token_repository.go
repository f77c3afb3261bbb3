package repository

import (
	"errors"

	"github.com/settle-next/internal/models"

	"gorm.io/gorm"
)

// TokenRepository 资产目录数据访问接口
type TokenRepository interface {
	Create(token *models.Token) error
	GetByAddress(address string) (*models.Token, error)
	List() ([]models.Token, error)
}

// GormTokenRepository GORM 实现
type GormTokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository 创建资产目录仓库
func NewTokenRepository(db *gorm.DB) *GormTokenRepository {
	return &GormTokenRepository{db: db}
}

// Create 登记资产
func (r *GormTokenRepository) Create(token *models.Token) error {
	return r.db.Create(token).Error
}

// GetByAddress 根据地址获取资产
func (r *GormTokenRepository) GetByAddress(address string) (*models.Token, error) {
	var token models.Token
	if err := r.db.Where("address = ?", address).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &token, nil
}

// List 获取全部资产
func (r *GormTokenRepository) List() ([]models.Token, error) {
	var tokens []models.Token
	if err := r.db.Order("id asc").Find(&tokens).Error; err != nil {
		return nil, err
	}
	return tokens, nil
}
