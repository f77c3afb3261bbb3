package admin

import (
	"errors"
	"strconv"
	"strings"

	handlershared "github.com/settle-next/internal/http/handlers/shared"
	"github.com/settle-next/internal/http/response"
	"github.com/settle-next/internal/registry"
	"github.com/settle-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// CreateMerchantRequest 商户登记请求
type CreateMerchantRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateMerchant 登记商户（初始即为可用状态）
func (h *Handler) CreateMerchant(c *gin.Context) {
	if _, ok := getManagerID(c); !ok {
		return
	}
	var req CreateMerchantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	merchant, err := h.Registry.Create(req.Name)
	if err != nil {
		if errors.Is(err, registry.ErrMerchantInvalid) {
			respondError(c, response.CodeBadRequest, "error.merchant_invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.save_failed", err)
		return
	}
	requestLog(c).Infow("admin_merchant_created", "org_id", merchant.OrgID)
	response.Success(c, merchant)
}

// ToggleMerchant 切换商户可用状态
func (h *Handler) ToggleMerchant(c *gin.Context) {
	if _, ok := getManagerID(c); !ok {
		return
	}
	orgID := strings.TrimSpace(c.Param("org_id"))
	merchant, err := h.Registry.ToggleActive(orgID)
	if err != nil {
		if errors.Is(err, registry.ErrMerchantNotFound) {
			respondError(c, response.CodeNotFound, "error.merchant_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.save_failed", err)
		return
	}
	requestLog(c).Infow("admin_merchant_toggled", "org_id", merchant.OrgID, "active", merchant.Active)
	response.Success(c, merchant)
}

// ListMerchants 商户列表
func (h *Handler) ListMerchants(c *gin.Context) {
	if _, ok := getManagerID(c); !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	var active *bool
	if raw := strings.TrimSpace(c.Query("active")); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
		active = &parsed
	}

	merchants, total, err := h.Registry.List(repository.MerchantListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(c.Query("search")),
		Active:   active,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, merchants, response.NewPagination(page, pageSize, total))
}
