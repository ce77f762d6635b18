package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/brandpilot/pkg/response"
)

// AdminListUsers 用户列表
// @Summary 用户列表（管理员）
// @Tags 管理
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(50)
// @Success 200 {object} response.Response
// @Router /api/v1/admin/users [get]
func (h *Handler) AdminListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}
	list, err := h.users.List(c.Request.Context(), (page-1)*pageSize, pageSize)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": list})
}

type setActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// AdminSetUserActive 启用/停用账户
// @Summary 启用或停用用户（管理员）
// @Tags 管理
// @Param id path string true "用户ID"
// @Param request body setActiveRequest true "状态"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/admin/users/{id}/active [put]
func (h *Handler) AdminSetUserActive(c *gin.Context) {
	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.users.SetActive(c.Request.Context(), c.Param("id"), *req.Active); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}

// AdminStats 帖子状态分布 + 在途发布数。
// publishing 计数持续大于在途数说明有卡死的帖子（进程崩溃遗留），
// 本核心不做自动回收，这里只保证可见。
// @Summary 调度统计（管理员）
// @Tags 管理
// @Param user_id query string false "按用户过滤"
// @Success 200 {object} response.Response
// @Router /api/v1/admin/stats [get]
func (h *Handler) AdminStats(c *gin.Context) {
	counts, err := h.posts.CountByStatus(c.Request.Context(), c.Query("user_id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{
		"status_counts": counts,
		"in_flight":     h.scheduler.InFlight(),
	})
}
