package repository

import "time"

// PaymentListFilter 查询台账记录的过滤条件
type PaymentListFilter struct {
	Page        int
	PageSize    int
	Status      string
	Payer       string
	TokenIn     string
	Merchant    string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// MerchantListFilter 查询商户列表的过滤条件
type MerchantListFilter struct {
	Page     int
	PageSize int
	Search   string
	Active   *bool
}
