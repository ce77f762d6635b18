package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/brandpilot/internal/model"
)

func setupTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func newPost(t *testing.T, repo PostRepository, userID string, status model.PostStatus, schedAt *time.Time) *model.Post {
	t.Helper()
	p := &model.Post{
		UserID: userID, Platform: model.PlatformFacebook, Content: "c",
		Status: status, ScheduledFor: schedAt,
	}
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func TestPostRepositoryListDue(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	now := time.Now()

	past := now.Add(-time.Minute)
	earlier := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	due1 := newPost(t, repo, "u1", model.PostStatusScheduled, &past)
	due2 := newPost(t, repo, "u1", model.PostStatusScheduled, &earlier)
	newPost(t, repo, "u1", model.PostStatusScheduled, &future)      // 未到期
	newPost(t, repo, "u1", model.PostStatusDraft, &past)            // 非 scheduled
	newPost(t, repo, "u1", model.PostStatusPublishing, &past)       // 在途不重选
	newPost(t, repo, "u1", model.PostStatusPublished, &past)        // 终态
	newPost(t, repo, "u1", model.PostStatusFailed, &past)           // 终态
	newPost(t, repo, "u2", model.PostStatusScheduled, &past)        // 别人的
	newPost(t, repo, "u1", model.PostStatusScheduled, nil)          // 没排期

	got, err := repo.ListDue(ctx, "u1", now)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// 按计划时间升序
	assert.Equal(t, due2.ID, got[0].ID)
	assert.Equal(t, due1.ID, got[1].ID)
}

func TestPostRepositoryMarkPublishing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	past := time.Now().Add(-time.Minute)
	p := newPost(t, repo, "u1", model.PostStatusScheduled, &past)

	at := time.Now()
	require.NoError(t, repo.MarkPublishing(ctx, p.ID, at))
	require.NoError(t, repo.MarkPublishing(ctx, p.ID, at.Add(time.Second)))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PostStatusPublishing, got.Status)
	assert.Equal(t, 2, got.PublishAttempts, "attempts increment atomically")
	require.NotNil(t, got.LastPublishAttempt)
}

func TestPostRepositoryPartialUpdate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	past := time.Now().Add(-time.Minute)
	p := newPost(t, repo, "u1", model.PostStatusScheduled, &past)

	now := time.Now()
	require.NoError(t, repo.Update(ctx, p.ID, map[string]any{
		"status":            model.PostStatusPublished,
		"published_at":      now,
		"platform_post_id":  "x-1",
		"platform_response": `{"ok":true}`,
	}))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PostStatusPublished, got.Status)
	assert.Equal(t, "x-1", got.PlatformPostID)
	assert.Equal(t, "c", got.Content, "untouched fields survive partial update")
	require.NotNil(t, got.PublishedAt)
}

func TestPostRepositoryCountByStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	past := time.Now().Add(-time.Minute)

	newPost(t, repo, "u1", model.PostStatusScheduled, &past)
	newPost(t, repo, "u1", model.PostStatusScheduled, &past)
	newPost(t, repo, "u1", model.PostStatusFailed, &past)
	newPost(t, repo, "u2", model.PostStatusPublished, &past)

	counts, err := repo.CountByStatus(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[model.PostStatusScheduled])
	assert.Equal(t, int64(1), counts[model.PostStatusFailed])
	assert.Zero(t, counts[model.PostStatusPublished])

	all, err := repo.CountByStatus(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), all[model.PostStatusPublished])
}

func TestCredentialRepositoryUpsert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &model.PlatformCredential{
		UserID: "u1", Platform: model.PlatformX, AccessToken: "old",
	}))
	require.NoError(t, repo.Upsert(ctx, &model.PlatformCredential{
		UserID: "u1", Platform: model.PlatformX, AccessToken: "new", AccountID: "acc",
	}))

	got, err := repo.Get(ctx, "u1", model.PlatformX)
	require.NoError(t, err)
	assert.Equal(t, "new", got.AccessToken)
	assert.Equal(t, "acc", got.AccountID)

	list, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSettingRepositoryDefaultsOff(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSettingRepository(db)
	ctx := context.Background()

	s, err := repo.Get(ctx, "nobody")
	require.NoError(t, err)
	assert.False(t, s.AutoPostEnabled)

	require.NoError(t, repo.SetAutoPost(ctx, "u1", true))
	require.NoError(t, repo.SetAutoPost(ctx, "u2", false))
	require.NoError(t, repo.SetAutoPost(ctx, "u1", true)) // upsert 幂等

	ids, err := repo.ListAutoPostEnabled(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, ids)
}

func TestCreditRepositoryBalance(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCreditRepository(db)
	ctx := context.Background()

	bal, err := repo.Balance(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, bal, "no ledger rows means zero balance")

	require.NoError(t, repo.Append(ctx, &model.CreditLedger{UserID: "u1", Delta: 30, Type: model.CreditEntryRefill}))
	require.NoError(t, repo.Append(ctx, &model.CreditLedger{UserID: "u1", Delta: -1, Type: model.CreditEntryPublish, PostID: "p1"}))

	bal, err = repo.Balance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 29, bal)
}
