package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/brandpilot/internal/model"
)

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id string) (*model.Post, error)
	ListByUser(ctx context.Context, userID string, status []model.PostStatus, offset, limit int) ([]*model.Post, error)
	// ListDue 返回某用户到期待发布的帖子（status=scheduled 且 scheduled_for <= before）
	ListDue(ctx context.Context, userID string, before time.Time) ([]*model.Post, error)
	// MarkPublishing 迁移到 publishing 并原子递增尝试计数；必须在平台调用前完成
	MarkPublishing(ctx context.Context, id string, at time.Time) error
	// Update 部分字段更新，终态迁移走这里
	Update(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context, userID string) (map[model.PostStatus]int64, error)
}

type postRepository struct{ db *gorm.DB }

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*model.Post, error) {
	var p model.Post
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postRepository) ListByUser(ctx context.Context, userID string, status []model.PostStatus, offset, limit int) ([]*model.Post, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if len(status) > 0 {
		q = q.Where("status IN ?", status)
	}
	var res []*model.Post
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&res).Error
	return res, err
}

func (r *postRepository) ListDue(ctx context.Context, userID string, before time.Time) ([]*model.Post, error) {
	var res []*model.Post
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ? AND scheduled_for IS NOT NULL AND scheduled_for <= ?",
			userID, model.PostStatusScheduled, before).
		Order("scheduled_for").
		Find(&res).Error
	return res, err
}

func (r *postRepository) MarkPublishing(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Post{}).Where("id = ?", id).Updates(map[string]any{
		"status":               model.PostStatusPublishing,
		"publish_attempts":     gorm.Expr("publish_attempts + 1"),
		"last_publish_attempt": at,
	}).Error
}

func (r *postRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&model.Post{}).Where("id = ?", id).Updates(fields).Error
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&model.Post{}, "id = ?", id).Error
}

func (r *postRepository) CountByStatus(ctx context.Context, userID string) (map[model.PostStatus]int64, error) {
	type row struct {
		Status model.PostStatus
		Cnt    int64
	}
	var rows []row
	q := r.db.WithContext(ctx).Model(&model.Post{}).Select("status, count(*) as cnt").Group("status")
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	res := make(map[model.PostStatus]int64, len(rows))
	for _, r := range rows {
		res[r.Status] = r.Cnt
	}
	return res, nil
}
