package redis

import (
	"context"
	"testing"

	"gitee.com/flycash/notification-dispatch/internal/domain"
	"gitee.com/flycash/notification-dispatch/internal/repository/cache"
	"github.com/alicebob/miniredis/v2"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return NewCache(client), mr
}

func TestCacheSetGet(t *testing.T) {
	t.Parallel()

	c, _ := newCache(t)
	ctx := context.Background()

	settings := domain.DefaultSettings(1)
	settings.WechatEnabled = true
	settings.TaskNotifications = false
	settings.QuietHoursStart = "22:00"
	settings.QuietHoursEnd = "08:00"
	require.NoError(t, c.Set(ctx, settings))

	got, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, settings, got)
}

func TestCacheGetMiss(t *testing.T) {
	t.Parallel()

	c, _ := newCache(t)

	_, err := c.Get(context.Background(), 404)
	assert.True(t, errors.Is(err, cache.ErrKeyNotFound))
}

func TestCacheGetCorruptedValue(t *testing.T) {
	t.Parallel()

	c, mr := newCache(t)

	// 脏数据不能当成缓存未命中
	require.NoError(t, mr.Set(cache.SettingsKey(2), "{not json"))
	_, err := c.Get(context.Background(), 2)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, cache.ErrKeyNotFound))
}

func TestCacheDel(t *testing.T) {
	t.Parallel()

	c, _ := newCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, domain.DefaultSettings(3)))
	require.NoError(t, c.Del(ctx, 3))

	_, err := c.Get(ctx, 3)
	assert.True(t, errors.Is(err, cache.ErrKeyNotFound))
}

func TestCacheSetExpiration(t *testing.T) {
	t.Parallel()

	c, mr := newCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, domain.DefaultSettings(4)))

	// 过期后按未命中处理，回源数据库
	mr.FastForward(defaultExpiration + 1)
	_, err := c.Get(ctx, 4)
	assert.True(t, errors.Is(err, cache.ErrKeyNotFound))
}
