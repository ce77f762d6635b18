package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/brandpilot/internal/model"
)

type CreditRepository interface {
	Append(ctx context.Context, entry *model.CreditLedger) error
	Balance(ctx context.Context, userID string) (int, error)
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]*model.CreditLedger, error)
}

type creditRepository struct{ db *gorm.DB }

func NewCreditRepository(db *gorm.DB) CreditRepository { return &creditRepository{db: db} }

func (r *creditRepository) Append(ctx context.Context, entry *model.CreditLedger) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *creditRepository) Balance(ctx context.Context, userID string) (int, error) {
	var sum *int
	err := r.db.WithContext(ctx).Model(&model.CreditLedger{}).
		Select("sum(delta)").
		Where("user_id = ?", userID).
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}

func (r *creditRepository) ListByUser(ctx context.Context, userID string, offset, limit int) ([]*model.CreditLedger, error) {
	var res []*model.CreditLedger
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}
