package admin

import (
	"errors"
	"time"

	"github.com/settle-next/internal/http/response"
	"github.com/settle-next/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token     string                 `json:"token"`
	Manager   map[string]interface{} `json:"manager"`
	ExpiresAt string                 `json:"expires_at"`
}

// Login 管理员登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	result, err := h.AuthService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrLoginFailed) {
			respondError(c, response.CodeUnauthorized, "error.login_invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.login_failed", err)
		return
	}

	requestLog(c).Infow("manager_login", "manager_id", result.Manager.ID)
	response.Success(c, LoginResponse{
		Token: result.Token,
		Manager: map[string]interface{}{
			"id":       result.Manager.ID,
			"username": result.Manager.Username,
		},
		ExpiresAt: result.ExpiresAt.Format(time.RFC3339),
	})
}

// GetProfile 当前管理员信息
func (h *Handler) GetProfile(c *gin.Context) {
	id, ok := getManagerID(c)
	if !ok {
		return
	}
	manager, err := h.ManagerRepo.GetByID(id)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	if manager == nil {
		respondError(c, response.CodeNotFound, "error.manager_not_found", nil)
		return
	}
	response.Success(c, manager)
}
