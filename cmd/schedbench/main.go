package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/brandpilot/internal/model"
	"github.com/d60-Lab/brandpilot/internal/platform"
	"github.com/d60-Lab/brandpilot/internal/repository"
	"github.com/d60-Lab/brandpilot/internal/service"
)

// 本地基准：N 个到期帖子经由调度器全部发布完的耗时分布（网关为 no-op）

type noopPublisher struct{ name model.Platform }

func (p *noopPublisher) Name() model.Platform { return p.name }
func (p *noopPublisher) RequiresImage() bool  { return false }
func (p *noopPublisher) Publish(ctx context.Context, req platform.PublishRequest) (*platform.Result, error) {
	return &platform.Result{PlatformPostID: uuid.New().String()}, nil
}

type alwaysOn struct{}

func (alwaysOn) AutoPostEnabled(ctx context.Context, userID string) (bool, error) { return true, nil }

type noopNotifier struct{}

func (noopNotifier) Notify(ctx context.Context, userID string, kind model.NotificationKind, message string) {
}

func main() {
	POSTS := 2000
	if s := os.Getenv("POSTS"); s != "" {
		if v, e := strconv.Atoi(s); e == nil && v > 0 {
			POSTS = v
		}
	}
	INTERVAL := 50 * time.Millisecond
	if s := os.Getenv("INTERVAL_MS"); s != "" {
		if v, e := strconv.Atoi(s); e == nil && v > 0 {
			INTERVAL = time.Duration(v) * time.Millisecond
		}
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic(err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&model.User{}, &model.Post{}, &model.PlatformCredential{}); err != nil {
		panic(err)
	}

	ctx := context.Background()
	postRepo := repository.NewPostRepository(db)
	userRepo := repository.NewUserRepository(db)
	credRepo := repository.NewCredentialRepository(db)

	user := &model.User{Username: "bench", Email: "bench@example.com", Password: "p", Active: true}
	if err := userRepo.Create(ctx, user); err != nil {
		panic(err)
	}
	_ = credRepo.Upsert(ctx, &model.PlatformCredential{UserID: user.ID, Platform: model.PlatformFacebook, AccessToken: "t"})

	due := time.Now().Add(-time.Minute)
	for i := 0; i < POSTS; i++ {
		_ = postRepo.Create(ctx, &model.Post{
			UserID:       user.ID,
			Platform:     model.PlatformFacebook,
			Content:      fmt.Sprintf("post %d", i),
			Status:       model.PostStatusScheduled,
			ScheduledFor: &due,
		})
	}

	registry := platform.NewRegistry(&noopPublisher{name: model.PlatformFacebook})
	sched := service.NewScheduler(INTERVAL, postRepo, userRepo, credRepo, alwaysOn{}, registry, nil, noopNotifier{})

	start := time.Now()
	stop := sched.Start()
	defer stop(ctx)

	// 轮询直到全部出终态
	for {
		counts, err := postRepo.CountByStatus(ctx, user.ID)
		if err != nil {
			panic(err)
		}
		if counts[model.PostStatusScheduled] == 0 && counts[model.PostStatusPublishing] == 0 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	total := time.Since(start)

	// 每帖延迟 = published_at - 启动时刻
	var posts []*model.Post
	if err := db.Where("status = ?", model.PostStatusPublished).Find(&posts).Error; err != nil {
		panic(err)
	}
	lats := make([]time.Duration, 0, len(posts))
	for _, p := range posts {
		if p.PublishedAt != nil {
			lats = append(lats, p.PublishedAt.Sub(start))
		}
	}
	sort.Slice(lats, func(i, j int) bool { return lats[i] < lats[j] })
	pct := func(p float64) time.Duration {
		if len(lats) == 0 {
			return 0
		}
		k := int(float64(len(lats)) * p)
		if k >= len(lats) {
			k = len(lats) - 1
		}
		return lats[k]
	}

	fmt.Printf("POSTS=%d INTERVAL=%v\n", POSTS, INTERVAL)
	fmt.Printf("published=%d total=%v p50=%v p95=%v p99=%v\n", len(posts), total, pct(0.50), pct(0.95), pct(0.99))
}
