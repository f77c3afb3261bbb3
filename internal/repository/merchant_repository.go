package repository

import (
	"errors"
	"strings"

	"github.com/settle-next/internal/models"

	"gorm.io/gorm"
)

// MerchantRepository 商户注册表数据访问接口
type MerchantRepository interface {
	Create(merchant *models.Merchant) error
	Update(merchant *models.Merchant) error
	GetByOrgID(orgID string) (*models.Merchant, error)
	List(filter MerchantListFilter) ([]models.Merchant, int64, error)
}

// GormMerchantRepository GORM 实现
type GormMerchantRepository struct {
	db *gorm.DB
}

// NewMerchantRepository 创建商户仓库
func NewMerchantRepository(db *gorm.DB) *GormMerchantRepository {
	return &GormMerchantRepository{db: db}
}

// Create 登记商户
func (r *GormMerchantRepository) Create(merchant *models.Merchant) error {
	return r.db.Create(merchant).Error
}

// Update 更新商户
func (r *GormMerchantRepository) Update(merchant *models.Merchant) error {
	return r.db.Save(merchant).Error
}

// GetByOrgID 根据商户标识获取条目
func (r *GormMerchantRepository) GetByOrgID(orgID string) (*models.Merchant, error) {
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return nil, nil
	}
	var merchant models.Merchant
	if err := r.db.Where("org_id = ?", orgID).First(&merchant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &merchant, nil
}

// List 分页查询商户
func (r *GormMerchantRepository) List(filter MerchantListFilter) ([]models.Merchant, int64, error) {
	query := r.db.Model(&models.Merchant{})
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var merchants []models.Merchant
	if err := applyPagination(query.Order("id asc"), filter.Page, filter.PageSize).
		Find(&merchants).Error; err != nil {
		return nil, 0, err
	}
	return merchants, total, nil
}
