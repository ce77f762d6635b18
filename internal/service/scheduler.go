package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/d60-Lab/brandpilot/internal/model"
	"github.com/d60-Lab/brandpilot/internal/platform"
	"github.com/d60-Lab/brandpilot/internal/repository"
	"github.com/d60-Lab/brandpilot/pkg/logger"
)

// 网关异常不带信息时的兜底文案
const genericPublishError = "Background Task Error"

var ErrPostTerminal = errors.New("post already published or failed")

// AutoPostFlag 自动发布开关读取；生产实现是 redis 读穿缓存
type AutoPostFlag interface {
	AutoPostEnabled(ctx context.Context, userID string) (bool, error)
}

// Scheduler 自动发布调度器：固定间隔扫描到期帖子，
// 经 claim 去重后驱动 scheduled -> publishing -> published|failed 状态机。
type Scheduler struct {
	interval time.Duration
	posts    repository.PostRepository
	users    repository.UserRepository
	creds    repository.CredentialRepository
	flags    AutoPostFlag
	registry *platform.Registry
	credits  *CreditService
	notifier Notifier

	claims *claimSet
	now    func() time.Time
}

func NewScheduler(
	interval time.Duration,
	posts repository.PostRepository,
	users repository.UserRepository,
	creds repository.CredentialRepository,
	flags AutoPostFlag,
	registry *platform.Registry,
	credits *CreditService,
	notifier Notifier,
) *Scheduler {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Scheduler{
		interval: interval,
		posts:    posts,
		users:    users,
		creds:    creds,
		flags:    flags,
		registry: registry,
		credits:  credits,
		notifier: notifier,
		claims:   newClaimSet(),
		now:      time.Now,
	}
}

// Start 启动定时循环；返回停止函数。tick 派发到独立 goroutine，
// 慢 tick 不阻塞计时器，重叠 tick 由 claim 去重兜底。
func (s *Scheduler) Start() func(context.Context) error {
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				go s.runTick(context.Background())
			}
		}
	}()
	logger.Info("scheduler: started", zap.Duration("interval", s.interval))
	return func(ctx context.Context) error {
		close(stop)
		logger.Info("scheduler: stopped")
		return nil
	}
}

// runTick 一次扫描：逐个活跃用户检查自动发布开关，开了才会去取帖子。
// 开关关闭的用户连 fetch 都不发生，而不只是跳过发布。
func (s *Scheduler) runTick(ctx context.Context) {
	users, err := s.users.ListActive(ctx)
	if err != nil {
		// fetch 失败：记日志、跳过本次 tick，不打扰用户
		logger.Warn("scheduler: list users", zap.Error(err))
		return
	}
	for _, u := range users {
		enabled, err := s.flags.AutoPostEnabled(ctx, u.ID)
		if err != nil {
			logger.Warn("scheduler: read autopost flag", zap.String("user", u.ID), zap.Error(err))
			continue
		}
		if !enabled {
			continue
		}
		s.scanUser(ctx, u.ID)
	}
}

// scanUser 扫描某用户的到期帖子并逐个发布
func (s *Scheduler) scanUser(ctx context.Context, userID string) {
	due, err := s.posts.ListDue(ctx, userID, s.now())
	if err != nil {
		logger.Warn("scheduler: list due posts", zap.String("user", userID), zap.Error(err))
		return
	}
	// 在途的先过滤掉；tryClaim 里还有一道最终判定
	due = lo.Filter(due, func(p *model.Post, _ int) bool {
		return !s.claims.held(p.ID)
	})
	for _, post := range due {
		s.publishOne(ctx, post)
	}
}

// PublishNow 手动立即发布（API 触发），与调度路径共用同一状态机
func (s *Scheduler) PublishNow(ctx context.Context, post *model.Post) error {
	if post.Status.Terminal() {
		return ErrPostTerminal
	}
	s.publishOne(ctx, post)
	return nil
}

// publishOne 驱动单个帖子走完一次发布尝试。
// 顺序是硬约束：内存 claim -> 落库 publishing -> 平台调用 -> 终态落库。
// 乱序会重新打开重复发布的窗口。
func (s *Scheduler) publishOne(ctx context.Context, post *model.Post) {
	if !s.claims.tryClaim(post.ID) {
		return
	}
	defer s.claims.release(post.ID)

	// 持久化屏障：进程重启丢了内存集合，publishing 状态也不会被再次选中
	if err := s.posts.MarkPublishing(ctx, post.ID, s.now()); err != nil {
		logger.Error("scheduler: mark publishing", zap.String("post", post.ID), zap.Error(err))
		return
	}

	pub, err := s.registry.Get(post.Platform)
	if err != nil {
		s.fail(ctx, post, err.Error())
		return
	}

	// 平台前置检查：必须有图的平台缺图时不发起网络调用
	if pub.RequiresImage() && post.ImageURL == "" {
		s.fail(ctx, post, fmt.Sprintf("%s posts require an image URL", post.Platform.Display()))
		return
	}

	cred, err := s.creds.Get(ctx, post.UserID, post.Platform)
	if err != nil {
		s.fail(ctx, post, fmt.Sprintf("no %s credentials configured", post.Platform.Display()))
		return
	}

	if s.credits != nil {
		if err := s.credits.CheckBalance(ctx, post.UserID); err != nil {
			s.fail(ctx, post, err.Error())
			return
		}
	}

	res, err := pub.Publish(ctx, platform.PublishRequest{
		UserID:      post.UserID,
		Content:     post.Content,
		ImageURL:    post.ImageURL,
		AccessToken: cred.AccessToken,
		AccountID:   cred.AccountID,
	})
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = genericPublishError
		}
		s.fail(ctx, post, msg)
		return
	}

	now := s.now()
	err = s.posts.Update(ctx, post.ID, map[string]any{
		"status":            model.PostStatusPublished,
		"published_at":      now,
		"platform_post_id":  res.PlatformPostID,
		"platform_response": res.Response,
	})
	if err != nil {
		logger.Error("scheduler: mark published", zap.String("post", post.ID), zap.Error(err))
		return
	}
	if s.credits != nil {
		if err := s.credits.ChargePublish(ctx, post.UserID, post.ID); err != nil {
			logger.Warn("scheduler: charge credits", zap.String("post", post.ID), zap.Error(err))
		}
	}
	logger.Info("scheduler: post published",
		zap.String("post", post.ID), zap.String("platform", string(post.Platform)))
	s.notifier.Notify(ctx, post.UserID, model.NotificationSuccess,
		fmt.Sprintf("Post published to %s", post.Platform.Display()))
}

// fail 终态 failed：记录错误、通知用户。本核心不做自动重试。
func (s *Scheduler) fail(ctx context.Context, post *model.Post, msg string) {
	err := s.posts.Update(ctx, post.ID, map[string]any{
		"status":         model.PostStatusFailed,
		"platform_error": msg,
	})
	if err != nil {
		logger.Error("scheduler: mark failed", zap.String("post", post.ID), zap.Error(err))
	}
	logger.Warn("scheduler: publish failed",
		zap.String("post", post.ID), zap.String("platform", string(post.Platform)), zap.String("reason", msg))
	sentry.CaptureMessage(fmt.Sprintf("publish failed [%s/%s]: %s", post.Platform, post.ID, msg))
	s.notifier.Notify(ctx, post.UserID, model.NotificationInfo,
		fmt.Sprintf("Failed to publish to %s: %s", post.Platform.Display(), msg))
}

// InFlight 当前在途发布数（管理端观测用）
func (s *Scheduler) InFlight() int { return s.claims.size() }
