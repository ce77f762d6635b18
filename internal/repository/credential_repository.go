package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/brandpilot/internal/model"
)

type CredentialRepository interface {
	// Upsert 同一 (user, platform) 只保留一份凭证
	Upsert(ctx context.Context, cred *model.PlatformCredential) error
	Get(ctx context.Context, userID string, platform model.Platform) (*model.PlatformCredential, error)
	ListByUser(ctx context.Context, userID string) ([]*model.PlatformCredential, error)
	Delete(ctx context.Context, userID string, platform model.Platform) error
}

type credentialRepository struct{ db *gorm.DB }

func NewCredentialRepository(db *gorm.DB) CredentialRepository { return &credentialRepository{db: db} }

func (r *credentialRepository) Upsert(ctx context.Context, cred *model.PlatformCredential) error {
	if cred.ID == "" {
		cred.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "platform"}},
		DoUpdates: clause.AssignmentColumns([]string{"access_token", "account_id", "updated_at"}),
	}).Create(cred).Error
}

func (r *credentialRepository) Get(ctx context.Context, userID string, platform model.Platform) (*model.PlatformCredential, error) {
	var c model.PlatformCredential
	err := r.db.WithContext(ctx).
		First(&c, "user_id = ? AND platform = ?", userID, platform).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *credentialRepository) ListByUser(ctx context.Context, userID string) ([]*model.PlatformCredential, error) {
	var res []*model.PlatformCredential
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&res).Error
	return res, err
}

func (r *credentialRepository) Delete(ctx context.Context, userID string, platform model.Platform) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND platform = ?", userID, platform).
		Delete(&model.PlatformCredential{}).Error
}
