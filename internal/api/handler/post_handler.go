package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/d60-Lab/brandpilot/internal/api/middleware"
	"github.com/d60-Lab/brandpilot/internal/model"
	"github.com/d60-Lab/brandpilot/internal/service"
	"github.com/d60-Lab/brandpilot/pkg/response"
)

type createPostRequest struct {
	Platform     model.Platform `json:"platform" binding:"required,oneof=instagram facebook x"`
	Content      string         `json:"content" binding:"required"`
	ImageURL     string         `json:"image_url"`
	ScheduledFor *time.Time     `json:"scheduled_for"`
	Draft        bool           `json:"draft"`
}

// CreatePost 创建帖子；带 scheduled_for 的直接进入 scheduled 状态
// @Summary 创建帖子
// @Tags 帖子
// @Accept json
// @Produce json
// @Param request body createPostRequest true "帖子内容"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	status := model.PostStatusDraft
	if !req.Draft {
		if req.ScheduledFor == nil {
			response.BadRequest(c, "scheduled_for is required for scheduled posts")
			return
		}
		status = model.PostStatusScheduled
	}
	post := &model.Post{
		UserID:       c.GetString(middleware.CtxUserID),
		Platform:     req.Platform,
		Content:      req.Content,
		ImageURL:     req.ImageURL,
		Status:       status,
		ScheduledFor: req.ScheduledFor,
	}
	if err := h.posts.Create(c.Request.Context(), post); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, post)
}

// ListPosts 按状态分页列出帖子
// @Summary 帖子列表
// @Tags 帖子
// @Param status query string false "状态过滤"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response
// @Router /api/v1/posts [get]
func (h *Handler) ListPosts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	var status []model.PostStatus
	if s := c.Query("status"); s != "" {
		status = append(status, model.PostStatus(s))
	}
	list, err := h.posts.ListByUser(c.Request.Context(),
		c.GetString(middleware.CtxUserID), status, (page-1)*pageSize, pageSize)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": list})
}

// ownedPost 取帖子并校验归属
func (h *Handler) ownedPost(c *gin.Context) (*model.Post, bool) {
	post, err := h.posts.GetByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.NotFound(c, "post not found")
		return nil, false
	}
	if err != nil {
		response.InternalError(c, err)
		return nil, false
	}
	if post.UserID != c.GetString(middleware.CtxUserID) {
		response.NotFound(c, "post not found")
		return nil, false
	}
	return post, true
}

// GetPost 帖子详情
// @Summary 帖子详情
// @Tags 帖子
// @Param id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Router /api/v1/posts/{id} [get]
func (h *Handler) GetPost(c *gin.Context) {
	post, ok := h.ownedPost(c)
	if !ok {
		return
	}
	response.Success(c, post)
}

type updatePostRequest struct {
	Content      *string    `json:"content"`
	ImageURL     *string    `json:"image_url"`
	ScheduledFor *time.Time `json:"scheduled_for"`
}

// UpdatePost 编辑内容/图片/计划时间；在途或终态帖子不可编辑
// @Summary 编辑帖子
// @Tags 帖子
// @Param id path string true "帖子ID"
// @Param request body updatePostRequest true "修改内容"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/posts/{id} [put]
func (h *Handler) UpdatePost(c *gin.Context) {
	post, ok := h.ownedPost(c)
	if !ok {
		return
	}
	if post.Status != model.PostStatusDraft && post.Status != model.PostStatusScheduled {
		response.BadRequest(c, "only draft or scheduled posts can be edited")
		return
	}
	var req updatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	fields := map[string]any{}
	if req.Content != nil {
		fields["content"] = *req.Content
	}
	if req.ImageURL != nil {
		fields["image_url"] = *req.ImageURL
	}
	if req.ScheduledFor != nil {
		fields["scheduled_for"] = *req.ScheduledFor
	}
	if len(fields) == 0 {
		response.BadRequest(c, "nothing to update")
		return
	}
	if err := h.posts.Update(c.Request.Context(), post.ID, fields); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}

// DeletePost 删除帖子（人工管理动作，调度器自身从不删除）
// @Summary 删除帖子
// @Tags 帖子
// @Param id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Router /api/v1/posts/{id} [delete]
func (h *Handler) DeletePost(c *gin.Context) {
	post, ok := h.ownedPost(c)
	if !ok {
		return
	}
	if post.Status == model.PostStatusPublishing {
		response.BadRequest(c, "post is being published")
		return
	}
	if err := h.posts.Delete(c.Request.Context(), post.ID); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}

// PublishPost 手动立即发布，和调度器共用同一条发布路径
// @Summary 立即发布
// @Tags 帖子
// @Param id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/posts/{id}/publish [post]
func (h *Handler) PublishPost(c *gin.Context) {
	post, ok := h.ownedPost(c)
	if !ok {
		return
	}
	if err := h.scheduler.PublishNow(c.Request.Context(), post); err != nil {
		if errors.Is(err, service.ErrPostTerminal) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	// 结果查详情；发布尝试的终态已落库
	updated, err := h.posts.GetByID(c.Request.Context(), post.ID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, updated)
}

type rescheduleRequest struct {
	ScheduledFor time.Time `json:"scheduled_for" binding:"required"`
}

// ReschedulePost 人工把 failed/draft 帖子重新排期（状态机外部的重置动作）
// @Summary 重新排期
// @Tags 帖子
// @Param id path string true "帖子ID"
// @Param request body rescheduleRequest true "新计划时间"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/posts/{id}/reschedule [post]
func (h *Handler) ReschedulePost(c *gin.Context) {
	post, ok := h.ownedPost(c)
	if !ok {
		return
	}
	if post.Status == model.PostStatusPublishing || post.Status == model.PostStatusPublished {
		response.BadRequest(c, "post cannot be rescheduled")
		return
	}
	var req rescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	err := h.posts.Update(c.Request.Context(), post.ID, map[string]any{
		"status":         model.PostStatusScheduled,
		"scheduled_for":  req.ScheduledFor,
		"platform_error": "",
	})
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}
