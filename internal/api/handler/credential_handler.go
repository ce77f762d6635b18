package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/d60-Lab/brandpilot/internal/api/middleware"
	"github.com/d60-Lab/brandpilot/internal/model"
	"github.com/d60-Lab/brandpilot/pkg/response"
)

type putCredentialRequest struct {
	Platform    model.Platform `json:"platform" binding:"required,oneof=instagram facebook x"`
	AccessToken string         `json:"access_token" binding:"required"`
	AccountID   string         `json:"account_id"`
}

// PutCredential 保存/更新平台凭证
// @Summary 保存平台凭证
// @Tags 凭证
// @Accept json
// @Produce json
// @Param request body putCredentialRequest true "凭证"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/credentials [put]
func (h *Handler) PutCredential(c *gin.Context) {
	var req putCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	cred := &model.PlatformCredential{
		UserID:      c.GetString(middleware.CtxUserID),
		Platform:    req.Platform,
		AccessToken: req.AccessToken,
		AccountID:   req.AccountID,
	}
	if err := h.creds.Upsert(c.Request.Context(), cred); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}

// ListCredentials 列出凭证（token 脱敏）
// @Summary 凭证列表
// @Tags 凭证
// @Success 200 {object} response.Response
// @Router /api/v1/credentials [get]
func (h *Handler) ListCredentials(c *gin.Context) {
	list, err := h.creds.ListByUser(c.Request.Context(), c.GetString(middleware.CtxUserID))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	type item struct {
		Platform  model.Platform `json:"platform"`
		AccountID string         `json:"account_id"`
		Token     string         `json:"token"`
	}
	res := make([]item, 0, len(list))
	for _, cr := range list {
		res = append(res, item{Platform: cr.Platform, AccountID: cr.AccountID, Token: cr.MaskedToken()})
	}
	response.Success(c, res)
}

// DeleteCredential 删除某平台凭证
// @Summary 删除凭证
// @Tags 凭证
// @Param platform path string true "平台"
// @Success 200 {object} response.Response
// @Router /api/v1/credentials/{platform} [delete]
func (h *Handler) DeleteCredential(c *gin.Context) {
	platform := model.Platform(c.Param("platform"))
	err := h.creds.Delete(c.Request.Context(), c.GetString(middleware.CtxUserID), platform)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.NotFound(c, "credential not found")
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}

// ListNotifications 通知列表
// @Summary 通知列表
// @Tags 通知
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response
// @Router /api/v1/notifications [get]
func (h *Handler) ListNotifications(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	list, err := h.notifs.ListByUser(c.Request.Context(),
		c.GetString(middleware.CtxUserID), (page-1)*pageSize, pageSize)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": list})
}

// ReadNotification 标记已读
// @Summary 标记通知已读
// @Tags 通知
// @Param id path string true "通知ID"
// @Success 200 {object} response.Response
// @Router /api/v1/notifications/{id}/read [post]
func (h *Handler) ReadNotification(c *gin.Context) {
	err := h.notifs.MarkRead(c.Request.Context(), c.GetString(middleware.CtxUserID), c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}
