package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/d60-Lab/brandpilot/internal/model"
	"github.com/d60-Lab/brandpilot/internal/repository"
	"github.com/d60-Lab/brandpilot/pkg/logger"
)

// Notifier 用户反馈回调；调度器不关心展示层怎么消费
type Notifier interface {
	Notify(ctx context.Context, userID string, kind model.NotificationKind, message string)
}

type storeNotifier struct {
	repo repository.NotificationRepository
}

// NewStoreNotifier 落库通知：前端轮询 /notifications 展示
func NewStoreNotifier(repo repository.NotificationRepository) Notifier {
	return &storeNotifier{repo: repo}
}

func (n *storeNotifier) Notify(ctx context.Context, userID string, kind model.NotificationKind, message string) {
	err := n.repo.Create(ctx, &model.Notification{UserID: userID, Kind: kind, Message: message})
	if err != nil {
		// 通知丢失可接受，不影响发布结果
		logger.Warn("notify: store failed", zap.String("user", userID), zap.Error(err))
	}
}
