package admin

import (
	"errors"

	"github.com/settle-next/internal/http/response"
	"github.com/settle-next/internal/service"

	"github.com/gin-gonic/gin"
)

func respondConfigError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotAuthorized):
		respondError(c, response.CodeForbidden, "error.not_authorized", nil)
	case errors.Is(err, service.ErrManagerInvalid):
		respondError(c, response.CodeBadRequest, "error.manager_invalid", nil)
	case errors.Is(err, service.ErrAssetInvalid):
		respondError(c, response.CodeBadRequest, "error.asset_invalid", nil)
	case errors.Is(err, service.ErrAssetUnknown):
		respondError(c, response.CodeBadRequest, "error.asset_unknown", nil)
	case errors.Is(err, service.ErrExchangeUnknown):
		respondError(c, response.CodeBadRequest, "error.exchange_unknown", nil)
	default:
		respondError(c, response.CodeInternal, "error.save_failed", err)
	}
}

// ChangeManagerRequest 管理权交接请求
type ChangeManagerRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ChangeManager 交接管理权；成功后当前令牌随即失效
func (h *Handler) ChangeManager(c *gin.Context) {
	managerID, ok := getManagerID(c)
	if !ok {
		return
	}
	var req ChangeManagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.ConfigService.ChangeManager(managerID, req.Username, req.Password); err != nil {
		respondConfigError(c, err)
		return
	}
	requestLog(c).Infow("admin_change_manager", "manager_id", managerID, "new_username", req.Username)
	response.Success(c, nil)
}

// ChangeValueRequest 单值配置变更请求
type ChangeValueRequest struct {
	Value string `json:"value" binding:"required"`
}

// ChangeWallet 更换收款钱包
func (h *Handler) ChangeWallet(c *gin.Context) {
	managerID, ok := getManagerID(c)
	if !ok {
		return
	}
	var req ChangeValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.ConfigService.ChangeWallet(managerID, req.Value); err != nil {
		respondConfigError(c, err)
		return
	}
	response.Success(c, nil)
}

// ChangeStableAsset 更换稳定记账资产
func (h *Handler) ChangeStableAsset(c *gin.Context) {
	managerID, ok := getManagerID(c)
	if !ok {
		return
	}
	var req ChangeValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.ConfigService.ChangeStableAsset(managerID, req.Value); err != nil {
		respondConfigError(c, err)
		return
	}
	response.Success(c, nil)
}

// ChangeExchange 更换兑换实现
func (h *Handler) ChangeExchange(c *gin.Context) {
	managerID, ok := getManagerID(c)
	if !ok {
		return
	}
	var req ChangeValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.ConfigService.ChangeExchange(managerID, req.Value); err != nil {
		respondConfigError(c, err)
		return
	}
	response.Success(c, nil)
}

// ChangeRegistry 更换商户名录引用
func (h *Handler) ChangeRegistry(c *gin.Context) {
	managerID, ok := getManagerID(c)
	if !ok {
		return
	}
	var req ChangeValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.ConfigService.ChangeRegistry(managerID, req.Value); err != nil {
		respondConfigError(c, err)
		return
	}
	response.Success(c, nil)
}

// ChangeNotifyURLRequest 回调地址变更请求（允许置空停用）
type ChangeNotifyURLRequest struct {
	Value string `json:"value"`
}

// ChangeNotifyURL 更换支付事件回调地址
func (h *Handler) ChangeNotifyURL(c *gin.Context) {
	managerID, ok := getManagerID(c)
	if !ok {
		return
	}
	var req ChangeNotifyURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.ConfigService.ChangeNotifyURL(managerID, req.Value); err != nil {
		respondConfigError(c, err)
		return
	}
	response.Success(c, nil)
}
