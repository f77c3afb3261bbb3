package repository

import (
	"errors"
	"strings"

	"github.com/settle-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentRepository 台账数据访问接口（仅追加，无删除）
type PaymentRepository interface {
	Append(payment *models.Payment) error
	Update(payment *models.Payment) error
	GetByIdx(idx uint64) (*models.Payment, error)
	Count() (int64, error)
	List(filter PaymentListFilter) ([]models.Payment, int64, error)
	WithTx(tx *gorm.DB) *GormPaymentRepository
}

// GormPaymentRepository GORM 实现
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 创建台账仓库
func NewPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPaymentRepository) WithTx(tx *gorm.DB) *GormPaymentRepository {
	if tx == nil {
		return r
	}
	return &GormPaymentRepository{db: tx}
}

// Append 追加台账记录并分配下一个密集索引。
// 加锁读取末行串行化索引分配；首条记录无行可锁，由 idx 唯一索引兜底并发冲突。
func (r *GormPaymentRepository) Append(payment *models.Payment) error {
	if payment == nil {
		return errors.New("payment is nil")
	}
	var last models.Payment
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Order("idx desc").
		First(&last).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		payment.Idx = 0
	case err != nil:
		return err
	default:
		payment.Idx = last.Idx + 1
	}
	return r.db.Create(payment).Error
}

// Update 更新台账记录（状态流转）
func (r *GormPaymentRepository) Update(payment *models.Payment) error {
	return r.db.Save(payment).Error
}

// GetByIdx 根据台账索引获取记录
func (r *GormPaymentRepository) GetByIdx(idx uint64) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.Where("idx = ?", idx).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// Count 获取台账长度
func (r *GormPaymentRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Payment{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// List 分页查询台账记录
func (r *GormPaymentRepository) List(filter PaymentListFilter) ([]models.Payment, int64, error) {
	query := r.db.Model(&models.Payment{})

	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if payer := strings.TrimSpace(filter.Payer); payer != "" {
		query = query.Where("payer = ?", payer)
	}
	if tokenIn := strings.TrimSpace(filter.TokenIn); tokenIn != "" {
		query = query.Where("token_in = ?", tokenIn)
	}
	if merchant := strings.TrimSpace(filter.Merchant); merchant != "" {
		query = query.Where("merchant = ?", merchant)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payments []models.Payment
	if err := applyPagination(query.Order("idx asc"), filter.Page, filter.PageSize).
		Find(&payments).Error; err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}
