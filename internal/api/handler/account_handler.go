package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/brandpilot/internal/api/middleware"
	"github.com/d60-Lab/brandpilot/pkg/response"
)

// GetAutoPost 查询自动发布开关
// @Summary 查询自动发布开关
// @Tags 设置
// @Success 200 {object} response.Response
// @Router /api/v1/settings/autopost [get]
func (h *Handler) GetAutoPost(c *gin.Context) {
	enabled, err := h.settings.AutoPostEnabled(c.Request.Context(), c.GetString(middleware.CtxUserID))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"enabled": enabled})
}

type autoPostRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// SetAutoPost 切换自动发布；写穿缓存，调度器下个 tick 即可观察到
// @Summary 设置自动发布开关
// @Tags 设置
// @Param request body autoPostRequest true "开关"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/settings/autopost [put]
func (h *Handler) SetAutoPost(c *gin.Context) {
	var req autoPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	err := h.settings.SetAutoPost(c.Request.Context(), c.GetString(middleware.CtxUserID), *req.Enabled)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"enabled": *req.Enabled})
}

// GetCredits 余额
// @Summary 额度余额
// @Tags 额度
// @Success 200 {object} response.Response
// @Router /api/v1/credits [get]
func (h *Handler) GetCredits(c *gin.Context) {
	bal, err := h.credits.Balance(c.Request.Context(), c.GetString(middleware.CtxUserID))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"balance": bal})
}

// ListCreditHistory 额度流水（支付/消费历史）
// @Summary 额度流水
// @Tags 额度
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response
// @Router /api/v1/credits/history [get]
func (h *Handler) ListCreditHistory(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	list, err := h.credits.History(c.Request.Context(),
		c.GetString(middleware.CtxUserID), (page-1)*pageSize, pageSize)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": list})
}
