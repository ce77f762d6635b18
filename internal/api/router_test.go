package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/brandpilot/internal/api/handler"
	"github.com/d60-Lab/brandpilot/internal/cache"
	"github.com/d60-Lab/brandpilot/internal/model"
	"github.com/d60-Lab/brandpilot/internal/platform"
	"github.com/d60-Lab/brandpilot/internal/repository"
	"github.com/d60-Lab/brandpilot/internal/service"
)

type okPublisher struct{ name model.Platform }

func (p *okPublisher) Name() model.Platform { return p.name }
func (p *okPublisher) RequiresImage() bool  { return false }
func (p *okPublisher) Publish(ctx context.Context, req platform.PublishRequest) (*platform.Result, error) {
	return &platform.Result{PlatformPostID: "api-test-1", Response: `{}`}, nil
}

func setupAPI(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&model.User{}, &model.Post{}, &model.PlatformCredential{},
		&model.Notification{}, &model.CreditLedger{}, &model.UserSetting{},
	))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	postRepo := repository.NewPostRepository(db)
	userRepo := repository.NewUserRepository(db)
	credRepo := repository.NewCredentialRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	creditRepo := repository.NewCreditRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	settings := cache.NewSettingsCache(rdb, settingRepo, time.Minute)
	authSvc := service.NewAuthService(userRepo, "test-secret", time.Hour)
	creditSvc := service.NewCreditService(creditRepo, userRepo)
	notifier := service.NewStoreNotifier(notifRepo)
	registry := platform.NewRegistry(&okPublisher{name: model.PlatformFacebook})
	sched := service.NewScheduler(time.Second, postRepo, userRepo, credRepo, settings, registry, creditSvc, notifier)

	h := handler.New(authSvc, sched, creditSvc, settings, postRepo, userRepo, credRepo, notifRepo)
	srv := httptest.NewServer(NewRouter(h, authSvc, "test"))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	var parsed map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	require.NoError(t, resp.Body.Close())
	return resp, parsed
}

func TestAPIEndToEndPublishFlow(t *testing.T) {
	srv := setupAPI(t)

	// 注册 + 登录
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/register", "", map[string]any{
		"username": "alice", "email": "alice@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/login", "", map[string]any{
		"username": "alice", "password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token := body["data"].(map[string]any)["token"].(string)
	require.NotEmpty(t, token)

	// 凭证
	resp, _ = doJSON(t, http.MethodPut, srv.URL+"/api/v1/credentials", token, map[string]any{
		"platform": "facebook", "access_token": "fb-token-1234",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/v1/credentials", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	creds := body["data"].([]any)
	require.Len(t, creds, 1)
	assert.Equal(t, "****1234", creds[0].(map[string]any)["token"], "token masked on read")

	// 注册赠送的额度
	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/v1/credits", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 30, body["data"].(map[string]any)["balance"])

	// 建帖并手动发布
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/v1/posts", token, map[string]any{
		"platform": "facebook", "content": "hello api", "draft": true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	postID := body["data"].(map[string]any)["id"].(string)

	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/v1/posts/"+postID+"/publish", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	published := body["data"].(map[string]any)
	assert.Equal(t, "published", published["status"])
	assert.Equal(t, "api-test-1", published["platform_post_id"])

	// 发布扣 1 额度
	_, body = doJSON(t, http.MethodGet, srv.URL+"/api/v1/credits", token, nil)
	assert.EqualValues(t, 29, body["data"].(map[string]any)["balance"])

	// 成功通知
	_, body = doJSON(t, http.MethodGet, srv.URL+"/api/v1/notifications", token, nil)
	list := body["data"].(map[string]any)["list"].([]any)
	require.Len(t, list, 1)
	assert.Contains(t, list[0].(map[string]any)["message"], "Facebook")

	// 终态帖子拒绝重复发布
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/posts/"+postID+"/publish", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPIAutoPostToggle(t *testing.T) {
	srv := setupAPI(t)
	_, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/register", "", map[string]any{
		"username": "bob", "email": "bob@example.com", "password": "password123",
	})
	_, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/login", "", map[string]any{
		"username": "bob", "password": "password123",
	})
	token := body["data"].(map[string]any)["token"].(string)

	_, body = doJSON(t, http.MethodGet, srv.URL+"/api/v1/settings/autopost", token, nil)
	assert.Equal(t, false, body["data"].(map[string]any)["enabled"], "default off")

	resp, _ := doJSON(t, http.MethodPut, srv.URL+"/api/v1/settings/autopost", token, map[string]any{"enabled": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, body = doJSON(t, http.MethodGet, srv.URL+"/api/v1/settings/autopost", token, nil)
	assert.Equal(t, true, body["data"].(map[string]any)["enabled"])
}

func TestAPIRejectsUnauthenticated(t *testing.T) {
	srv := setupAPI(t)
	resp, err := http.Get(srv.URL + "/api/v1/posts")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPIOwnershipIsolation(t *testing.T) {
	srv := setupAPI(t)
	mkUser := func(name string) string {
		_, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/register", "", map[string]any{
			"username": name, "email": fmt.Sprintf("%s@example.com", name), "password": "password123",
		})
		_, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/login", "", map[string]any{
			"username": name, "password": "password123",
		})
		return body["data"].(map[string]any)["token"].(string)
	}
	alice, eve := mkUser("alice2"), mkUser("eve2")

	_, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/posts", alice, map[string]any{
		"platform": "facebook", "content": "private", "draft": true,
	})
	postID := body["data"].(map[string]any)["id"].(string)

	// 他人帖子表现为 404
	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/v1/posts/"+postID, eve, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
