package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/brandpilot/internal/model"
)

type SettingRepository interface {
	Get(ctx context.Context, userID string) (*model.UserSetting, error)
	SetAutoPost(ctx context.Context, userID string, enabled bool) error
	// ListAutoPostEnabled 返回开启自动发布的用户 ID
	ListAutoPostEnabled(ctx context.Context) ([]string, error)
}

type settingRepository struct{ db *gorm.DB }

func NewSettingRepository(db *gorm.DB) SettingRepository { return &settingRepository{db: db} }

func (r *settingRepository) Get(ctx context.Context, userID string) (*model.UserSetting, error) {
	var s model.UserSetting
	err := r.db.WithContext(ctx).First(&s, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// 缺省关闭
		return &model.UserSetting{UserID: userID, AutoPostEnabled: false}, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *settingRepository) SetAutoPost(ctx context.Context, userID string, enabled bool) error {
	s := &model.UserSetting{UserID: userID, AutoPostEnabled: enabled}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"auto_post_enabled", "updated_at"}),
	}).Create(s).Error
}

func (r *settingRepository) ListAutoPostEnabled(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.UserSetting{}).
		Where("auto_post_enabled = ?", true).
		Pluck("user_id", &ids).Error
	return ids, err
}
