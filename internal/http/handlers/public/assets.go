package public

import (
	"github.com/settle-next/internal/http/response"
	"github.com/settle-next/internal/models"

	"github.com/gin-gonic/gin"
)

// ApproveRequest 授权额度请求
type ApproveRequest struct {
	Owner   string        `json:"owner" binding:"required"`
	Spender string        `json:"spender" binding:"required"`
	Token   string        `json:"token" binding:"required"`
	Amount  models.Amount `json:"amount"`
}

// Approve 付款方设置支出方的可用额度（覆盖式，非累加）
func (h *Handler) Approve(c *gin.Context) {
	var req ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.Ledger.Approve(req.Owner, req.Spender, req.Token, req.Amount); err != nil {
		respondError(c, response.CodeInternal, "error.save_failed", err)
		return
	}
	response.Success(c, gin.H{
		"owner":   req.Owner,
		"spender": req.Spender,
		"token":   req.Token,
		"amount":  req.Amount,
	})
}

// GetAllowance 查询授权额度
func (h *Handler) GetAllowance(c *gin.Context) {
	owner := c.Query("owner")
	spender := c.Query("spender")
	token := c.Query("token")
	if owner == "" || spender == "" || token == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	allowance, err := h.Ledger.Allowance(owner, spender, token)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, gin.H{
		"owner":   owner,
		"spender": spender,
		"token":   token,
		"amount":  allowance,
	})
}
