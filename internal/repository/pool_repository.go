package repository

import (
	"errors"
	"strings"

	"github.com/settle-next/internal/models"

	"gorm.io/gorm"
)

// PoolRepository 流动性池数据访问接口
type PoolRepository interface {
	Create(pool *models.Pool) error
	Update(pool *models.Pool) error
	GetPair(tokenA, tokenB string) (*models.Pool, error)
	List() ([]models.Pool, error)
	WithTx(tx *gorm.DB) *GormPoolRepository
}

// GormPoolRepository GORM 实现
type GormPoolRepository struct {
	db *gorm.DB
}

// NewPoolRepository 创建流动性池仓库
func NewPoolRepository(db *gorm.DB) *GormPoolRepository {
	return &GormPoolRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPoolRepository) WithTx(tx *gorm.DB) *GormPoolRepository {
	if tx == nil {
		return r
	}
	return &GormPoolRepository{db: tx}
}

// SortPair 返回字典序排列的代币对
func SortPair(tokenA, tokenB string) (string, string) {
	if strings.Compare(tokenA, tokenB) > 0 {
		return tokenB, tokenA
	}
	return tokenA, tokenB
}

// Create 创建流动性池
func (r *GormPoolRepository) Create(pool *models.Pool) error {
	return r.db.Create(pool).Error
}

// Update 更新池储备
func (r *GormPoolRepository) Update(pool *models.Pool) error {
	return r.db.Save(pool).Error
}

// GetPair 获取代币对的池（顺序无关）
func (r *GormPoolRepository) GetPair(tokenA, tokenB string) (*models.Pool, error) {
	token0, token1 := SortPair(tokenA, tokenB)
	var pool models.Pool
	if err := r.db.Where("token0 = ? AND token1 = ?", token0, token1).First(&pool).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pool, nil
}

// List 获取全部流动性池
func (r *GormPoolRepository) List() ([]models.Pool, error) {
	var pools []models.Pool
	if err := r.db.Order("id asc").Find(&pools).Error; err != nil {
		return nil, err
	}
	return pools, nil
}
