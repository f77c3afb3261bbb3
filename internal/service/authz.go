package service

import (
	"github.com/settle-next/internal/models"
	"github.com/settle-next/internal/repository"
)

// requireManager 校验调用方是当前在任管理员，否则返回 ErrNotAuthorized。
func requireManager(managerRepo repository.ManagerRepository, managerID uint) (*models.Manager, error) {
	if managerID == 0 {
		return nil, ErrNotAuthorized
	}
	manager, err := managerRepo.GetByID(managerID)
	if err != nil {
		return nil, err
	}
	if manager == nil || !manager.Active {
		return nil, ErrNotAuthorized
	}
	return manager, nil
}
