package handler

import (
	"github.com/d60-Lab/brandpilot/internal/cache"
	"github.com/d60-Lab/brandpilot/internal/repository"
	"github.com/d60-Lab/brandpilot/internal/service"
)

// Handler API 处理器集合
type Handler struct {
	auth      *service.AuthService
	scheduler *service.Scheduler
	credits   *service.CreditService
	settings  *cache.SettingsCache

	posts  repository.PostRepository
	users  repository.UserRepository
	creds  repository.CredentialRepository
	notifs repository.NotificationRepository
}

func New(
	auth *service.AuthService,
	scheduler *service.Scheduler,
	credits *service.CreditService,
	settings *cache.SettingsCache,
	posts repository.PostRepository,
	users repository.UserRepository,
	creds repository.CredentialRepository,
	notifs repository.NotificationRepository,
) *Handler {
	return &Handler{
		auth:      auth,
		scheduler: scheduler,
		credits:   credits,
		settings:  settings,
		posts:     posts,
		users:     users,
		creds:     creds,
		notifs:    notifs,
	}
}
