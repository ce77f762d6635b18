package service

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/d60-Lab/brandpilot/internal/model"
	"github.com/d60-Lab/brandpilot/internal/repository"
	"github.com/d60-Lab/brandpilot/pkg/logger"
)

var ErrInsufficientCredits = errors.New("publishing credits exhausted, upgrade your plan")

// CreditService 发布额度：流水记账，余额 = sum(delta)
type CreditService struct {
	credits repository.CreditRepository
	users   repository.UserRepository
	cron    *cron.Cron
}

func NewCreditService(credits repository.CreditRepository, users repository.UserRepository) *CreditService {
	return &CreditService{credits: credits, users: users}
}

func (s *CreditService) Balance(ctx context.Context, userID string) (int, error) {
	return s.credits.Balance(ctx, userID)
}

func (s *CreditService) History(ctx context.Context, userID string, offset, limit int) ([]*model.CreditLedger, error) {
	return s.credits.ListByUser(ctx, userID, offset, limit)
}

// CheckBalance 发布前的余额预检
func (s *CreditService) CheckBalance(ctx context.Context, userID string) error {
	bal, err := s.credits.Balance(ctx, userID)
	if err != nil {
		return err
	}
	if bal <= 0 {
		return ErrInsufficientCredits
	}
	return nil
}

// ChargePublish 成功发布后扣 1 额度
func (s *CreditService) ChargePublish(ctx context.Context, userID, postID string) error {
	return s.credits.Append(ctx, &model.CreditLedger{
		UserID: userID,
		Delta:  -1,
		Type:   model.CreditEntryPublish,
		PostID: postID,
	})
}

// GrantSignup 注册时发放首月额度
func (s *CreditService) GrantSignup(ctx context.Context, user *model.User) error {
	return s.credits.Append(ctx, &model.CreditLedger{
		UserID: user.ID,
		Delta:  model.PlanMonthlyCredits(user.Plan),
		Type:   model.CreditEntryRefill,
	})
}

// StartMonthlyRefill 每月 1 号给所有活跃用户补充计划额度；返回停止函数
func (s *CreditService) StartMonthlyRefill() func(context.Context) error {
	s.cron = cron.New()
	_, err := s.cron.AddFunc("0 0 1 * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		s.refillAll(ctx)
	})
	if err != nil {
		logger.Error("credits: schedule refill", zap.Error(err))
	}
	s.cron.Start()
	return func(ctx context.Context) error {
		stopCtx := s.cron.Stop()
		select {
		case <-stopCtx.Done():
		case <-ctx.Done():
		}
		return nil
	}
}

func (s *CreditService) refillAll(ctx context.Context) {
	users, err := s.users.ListActive(ctx)
	if err != nil {
		logger.Error("credits: list users for refill", zap.Error(err))
		return
	}
	for _, u := range users {
		err := s.credits.Append(ctx, &model.CreditLedger{
			UserID: u.ID,
			Delta:  model.PlanMonthlyCredits(u.Plan),
			Type:   model.CreditEntryRefill,
		})
		if err != nil {
			logger.Warn("credits: refill failed", zap.String("user", u.ID), zap.Error(err))
		}
	}
	logger.Info("credits: monthly refill done", zap.Int("users", len(users)))
}
