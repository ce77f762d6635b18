package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/brandpilot/internal/model"
	"github.com/d60-Lab/brandpilot/internal/repository"
)

func setupSettingsCache(t *testing.T) (*SettingsCache, *miniredis.Miniredis, repository.SettingRepository) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.UserSetting{}))
	repo := repository.NewSettingRepository(db)

	return NewSettingsCache(rdb, repo, time.Minute), mr, repo
}

func TestSettingsCacheReadThrough(t *testing.T) {
	c, mr, repo := setupSettingsCache(t)
	ctx := context.Background()

	// 未设置过：默认关闭，并回填缓存
	enabled, err := c.AutoPostEnabled(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, enabled)
	assert.True(t, mr.Exists("bp:autopost:u1"))

	// 绕过缓存直接改库，命中旧缓存
	require.NoError(t, repo.SetAutoPost(ctx, "u1", true))
	enabled, err = c.AutoPostEnabled(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, enabled, "stale until TTL or write-through")

	// TTL 过期后回源看到新值
	mr.FastForward(2 * time.Minute)
	enabled, err = c.AutoPostEnabled(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestSettingsCacheWriteThrough(t *testing.T) {
	c, _, repo := setupSettingsCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetAutoPost(ctx, "u1", true))

	// 缓存和库同时可见，调度器下个 tick 就能观察到
	enabled, err := c.AutoPostEnabled(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, enabled)

	s, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, s.AutoPostEnabled)

	require.NoError(t, c.SetAutoPost(ctx, "u1", false))
	enabled, err = c.AutoPostEnabled(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, enabled)
}
