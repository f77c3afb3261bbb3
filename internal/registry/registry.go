package registry

import (
	"errors"
	"strings"
	"time"

	"github.com/settle-next/internal/models"
	"github.com/settle-next/internal/repository"

	"github.com/google/uuid"
)

// 商户注册表错误
var (
	ErrMerchantNotFound = errors.New("merchant not found")
	ErrMerchantInvalid  = errors.New("merchant invalid")
)

// Registry 商户资格注册表：支付前置的在营资格查询与管理操作。
type Registry struct {
	merchantRepo repository.MerchantRepository
}

// NewRegistry 创建商户注册表
func NewRegistry(merchantRepo repository.MerchantRepository) *Registry {
	return &Registry{merchantRepo: merchantRepo}
}

// IsActive 查询商户是否登记且在营；无法解析的标识等同于不在营。
func (r *Registry) IsActive(orgID string) (bool, error) {
	merchant, err := r.merchantRepo.GetByOrgID(orgID)
	if err != nil {
		return false, err
	}
	if merchant == nil {
		return false, nil
	}
	return merchant.Active, nil
}

// Create 登记商户（分配 UUID 标识，初始在营）
func (r *Registry) Create(name string) (*models.Merchant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrMerchantInvalid
	}
	merchant := &models.Merchant{
		OrgID:  uuid.NewString(),
		Name:   name,
		Active: true,
	}
	if err := r.merchantRepo.Create(merchant); err != nil {
		return nil, err
	}
	return merchant, nil
}

// ToggleActive 切换商户在营状态
func (r *Registry) ToggleActive(orgID string) (*models.Merchant, error) {
	merchant, err := r.merchantRepo.GetByOrgID(orgID)
	if err != nil {
		return nil, err
	}
	if merchant == nil {
		return nil, ErrMerchantNotFound
	}
	merchant.Active = !merchant.Active
	merchant.UpdatedAt = time.Now()
	if err := r.merchantRepo.Update(merchant); err != nil {
		return nil, err
	}
	return merchant, nil
}

// List 分页查询商户
func (r *Registry) List(filter repository.MerchantListFilter) ([]models.Merchant, int64, error) {
	return r.merchantRepo.List(filter)
}
