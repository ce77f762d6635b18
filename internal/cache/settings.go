package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/brandpilot/internal/repository"
)

// SettingsCache 自动发布开关的 redis 读穿缓存。
// 调度器每个 tick 都要读这个开关，直接打库太浪费；写端（API）走写穿，
// 保证开关变化在一个 tick 边界内被观察到。
type SettingsCache struct {
	rdb  *redis.Client
	repo repository.SettingRepository
	ttl  time.Duration
}

func NewSettingsCache(rdb *redis.Client, repo repository.SettingRepository, ttl time.Duration) *SettingsCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &SettingsCache{rdb: rdb, repo: repo, ttl: ttl}
}

func autoPostKey(userID string) string { return fmt.Sprintf("bp:autopost:%s", userID) }

// AutoPostEnabled 读开关；缓存未命中回源数据库
func (c *SettingsCache) AutoPostEnabled(ctx context.Context, userID string) (bool, error) {
	val, err := c.rdb.Get(ctx, autoPostKey(userID)).Result()
	if err == nil {
		return val == "1", nil
	}
	if err != redis.Nil {
		return false, err
	}
	s, err := c.repo.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	c.set(ctx, userID, s.AutoPostEnabled)
	return s.AutoPostEnabled, nil
}

// SetAutoPost 写穿：先库后缓存
func (c *SettingsCache) SetAutoPost(ctx context.Context, userID string, enabled bool) error {
	if err := c.repo.SetAutoPost(ctx, userID, enabled); err != nil {
		return err
	}
	c.set(ctx, userID, enabled)
	return nil
}

func (c *SettingsCache) set(ctx context.Context, userID string, enabled bool) {
	v := "0"
	if enabled {
		v = "1"
	}
	// 缓存写失败不致命，下次回源即可
	_ = c.rdb.Set(ctx, autoPostKey(userID), v, c.ttl).Err()
}
