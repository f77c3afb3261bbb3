package repository

import "gorm.io/gorm"

// applyPagination 为台账与名录的列表查询应用分页；pageSize 不为正时不分页。
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil || pageSize <= 0 {
		return query
	}
	if page < 1 {
		page = 1
	}
	return query.Limit(pageSize).Offset((page - 1) * pageSize)
}
