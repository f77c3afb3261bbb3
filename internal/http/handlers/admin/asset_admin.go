package admin

import (
	"errors"

	"github.com/settle-next/internal/exchange"
	"github.com/settle-next/internal/http/response"
	"github.com/settle-next/internal/models"

	"github.com/gin-gonic/gin"
)

// RegisterTokenRequest 代币登记请求
type RegisterTokenRequest struct {
	Address  string `json:"address" binding:"required"`
	Symbol   string `json:"symbol" binding:"required"`
	Decimals int32  `json:"decimals"`
}

// RegisterToken 登记代币
func (h *Handler) RegisterToken(c *gin.Context) {
	if _, ok := getManagerID(c); !ok {
		return
	}
	var req RegisterTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	existing, err := h.TokenRepo.GetByAddress(req.Address)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	if existing != nil {
		respondError(c, response.CodeConflict, "error.token_exists", nil)
		return
	}
	token := &models.Token{
		Address:  req.Address,
		Symbol:   req.Symbol,
		Decimals: req.Decimals,
	}
	if err := h.TokenRepo.Create(token); err != nil {
		respondError(c, response.CodeInternal, "error.save_failed", err)
		return
	}
	requestLog(c).Infow("admin_token_registered", "address", token.Address, "symbol", token.Symbol)
	response.Success(c, token)
}

// MintRequest 资产铸造请求（运维入金，退款备付金补足走这里）
type MintRequest struct {
	Account string        `json:"account" binding:"required"`
	Token   string        `json:"token" binding:"required"`
	Amount  models.Amount `json:"amount" binding:"required"`
}

// Mint 向账户铸造资产
func (h *Handler) Mint(c *gin.Context) {
	managerID, ok := getManagerID(c)
	if !ok {
		return
	}
	var req MintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if req.Amount.IsZero() {
		respondError(c, response.CodeBadRequest, "error.amount_invalid", nil)
		return
	}
	if err := h.Ledger.Mint(req.Account, req.Token, req.Amount); err != nil {
		respondError(c, response.CodeInternal, "error.save_failed", err)
		return
	}
	requestLog(c).Infow("admin_mint",
		"manager_id", managerID,
		"account", req.Account,
		"token", req.Token,
		"amount", req.Amount.String(),
	)
	response.Success(c, nil)
}

// AddLiquidityRequest 流动性注入请求
type AddLiquidityRequest struct {
	Funder  string        `json:"funder" binding:"required"`
	TokenA  string        `json:"token_a" binding:"required"`
	TokenB  string        `json:"token_b" binding:"required"`
	AmountA models.Amount `json:"amount_a" binding:"required"`
	AmountB models.Amount `json:"amount_b" binding:"required"`
}

// AddLiquidity 注入交易对流动性
func (h *Handler) AddLiquidity(c *gin.Context) {
	managerID, ok := getManagerID(c)
	if !ok {
		return
	}
	var req AddLiquidityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	pool, err := h.Router.AddLiquidity(req.Funder, req.TokenA, req.TokenB, req.AmountA, req.AmountB)
	if err != nil {
		switch {
		case errors.Is(err, exchange.ErrInvalidPath):
			respondError(c, response.CodeBadRequest, "error.pair_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.save_failed", err)
		}
		return
	}
	requestLog(c).Infow("admin_liquidity_added",
		"manager_id", managerID,
		"token0", pool.Token0,
		"token1", pool.Token1,
	)
	response.Success(c, pool)
}

// ListPools 交易对列表
func (h *Handler) ListPools(c *gin.Context) {
	if _, ok := getManagerID(c); !ok {
		return
	}
	pools, err := h.PoolRepo.List()
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, pools)
}
