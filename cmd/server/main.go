package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/brandpilot/config"
	"github.com/d60-Lab/brandpilot/internal/api"
	"github.com/d60-Lab/brandpilot/internal/api/handler"
	"github.com/d60-Lab/brandpilot/internal/cache"
	"github.com/d60-Lab/brandpilot/internal/platform"
	"github.com/d60-Lab/brandpilot/internal/repository"
	"github.com/d60-Lab/brandpilot/internal/service"
	"github.com/d60-Lab/brandpilot/pkg/database"
	"github.com/d60-Lab/brandpilot/pkg/logger"
	"github.com/d60-Lab/brandpilot/pkg/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.Server.Mode); err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	if cfg.Trace.Enabled {
		shutdown, err := tracing.Init(ctx, "brandpilot", cfg.Trace.Endpoint)
		if err != nil {
			logger.Warn("tracing init failed", zap.Error(err))
		} else {
			defer shutdown(context.Background())
		}
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Error("init database", zap.Error(err))
		return
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	postRepo := repository.NewPostRepository(db)
	userRepo := repository.NewUserRepository(db)
	credRepo := repository.NewCredentialRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	creditRepo := repository.NewCreditRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	settings := cache.NewSettingsCache(rdb, settingRepo, time.Minute)
	authSvc := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expire)
	creditSvc := service.NewCreditService(creditRepo, userRepo)
	notifier := service.NewStoreNotifier(notifRepo)

	registry := platform.NewRegistry(
		platform.NewInstagramPublisher(cfg.Platforms.Instagram.BaseURL, cfg.Platforms.Instagram.RPS),
		platform.NewFacebookPublisher(cfg.Platforms.Facebook.BaseURL, cfg.Platforms.Facebook.RPS),
		platform.NewXPublisher(cfg.Platforms.X.BaseURL, cfg.Platforms.X.RPS),
	)

	scheduler := service.NewScheduler(cfg.Scheduler.Interval,
		postRepo, userRepo, credRepo, settings, registry, creditSvc, notifier)
	stopScheduler := scheduler.Start()
	stopRefill := creditSvc.StartMonthlyRefill()

	h := handler.New(authSvc, scheduler, creditSvc, settings,
		postRepo, userRepo, credRepo, notifRepo)
	router := api.NewRouter(h, authSvc, cfg.Server.Mode)

	srv := &http.Server{Addr: ":" + cfg.Server.Port, Handler: router}
	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = stopScheduler(shutdownCtx)
	_ = stopRefill(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
}
