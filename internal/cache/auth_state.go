package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/settle-next/internal/models"
)

const authStateCacheTTL = 10 * time.Minute

// ManagerAuthState 管理员鉴权快照（仅用于服务端 Redis 缓存）
type ManagerAuthState struct {
	ManagerID    uint   `json:"manager_id"`
	Username     string `json:"username"`
	TokenVersion uint64 `json:"token_version"`
	Active       bool   `json:"active"`
	UpdatedAt    int64  `json:"updated_at"`
}

func managerAuthStateKey(managerID uint) string {
	return fmt.Sprintf("auth:manager:%d", managerID)
}

// BuildManagerAuthState 从管理员模型构建鉴权快照
func BuildManagerAuthState(manager *models.Manager) *ManagerAuthState {
	if manager == nil {
		return nil
	}
	return &ManagerAuthState{
		ManagerID:    manager.ID,
		Username:     manager.Username,
		TokenVersion: manager.TokenVersion,
		Active:       manager.Active,
		UpdatedAt:    time.Now().Unix(),
	}
}

// GetManagerAuthState 获取管理员鉴权快照
func GetManagerAuthState(ctx context.Context, managerID uint) (*ManagerAuthState, bool, error) {
	if managerID == 0 {
		return nil, false, nil
	}
	var state ManagerAuthState
	hit, err := GetJSON(ctx, managerAuthStateKey(managerID), &state)
	if err != nil || !hit {
		return nil, false, err
	}
	return &state, true, nil
}

// SetManagerAuthState 写入管理员鉴权快照
func SetManagerAuthState(ctx context.Context, state *ManagerAuthState) error {
	if state == nil || state.ManagerID == 0 {
		return nil
	}
	return SetJSON(ctx, managerAuthStateKey(state.ManagerID), state, authStateCacheTTL)
}

// DelManagerAuthState 删除管理员鉴权快照（管理员交接后立即失效）
func DelManagerAuthState(ctx context.Context, managerID uint) error {
	if managerID == 0 {
		return nil
	}
	return Del(ctx, managerAuthStateKey(managerID))
}
