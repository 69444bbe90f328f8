package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisService(t *testing.T, window time.Duration) (*RedisService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return NewRedisService(client, window), mr
}

func TestRedisServiceClaim(t *testing.T) {
	t.Parallel()

	svc, mr := newRedisService(t, time.Second)
	ctx := context.Background()
	n := newNotification()

	// 第一次通过并占住指纹
	dup, err := svc.CheckDuplicate(ctx, n)
	require.NoError(t, err)
	assert.False(t, dup)
	assert.True(t, mr.Exists(redisKeyPrefix+Fingerprint(n)))

	// 占位未过期时判定为重复
	dup, err = svc.CheckDuplicate(ctx, n)
	require.NoError(t, err)
	assert.True(t, dup)

	// 不同来源实体互不影响
	other := newNotification()
	other.SourceID = 101
	dup, err = svc.CheckDuplicate(ctx, other)
	require.NoError(t, err)
	assert.False(t, dup)
}

func TestRedisServiceWindowExpiry(t *testing.T) {
	t.Parallel()

	svc, mr := newRedisService(t, time.Second)
	ctx := context.Background()
	n := newNotification()

	dup, err := svc.CheckDuplicate(ctx, n)
	require.NoError(t, err)
	assert.False(t, dup)

	// 窗口过期后重新放行
	mr.FastForward(time.Second + 100*time.Millisecond)
	dup, err = svc.CheckDuplicate(ctx, n)
	require.NoError(t, err)
	assert.False(t, dup)
}

func TestRedisServiceMarkSentRefresh(t *testing.T) {
	t.Parallel()

	svc, mr := newRedisService(t, time.Second)
	ctx := context.Background()
	n := newNotification()

	dup, err := svc.CheckDuplicate(ctx, n)
	require.NoError(t, err)
	assert.False(t, dup)

	// 投递完成后刷新，窗口从投递时刻重新计算
	mr.FastForward(600 * time.Millisecond)
	require.NoError(t, svc.MarkSent(ctx, n))

	// 占位早已超过原窗口，但刷新后仍在窗口内
	mr.FastForward(600 * time.Millisecond)
	dup, err = svc.CheckDuplicate(ctx, n)
	require.NoError(t, err)
	assert.True(t, dup)
}

func TestRedisServiceRelease(t *testing.T) {
	t.Parallel()

	svc, mr := newRedisService(t, time.Second)
	ctx := context.Background()
	n := newNotification()

	dup, err := svc.CheckDuplicate(ctx, n)
	require.NoError(t, err)
	assert.False(t, dup)

	// 归还占位后同一指纹立即可以再次通过
	require.NoError(t, svc.Release(ctx, n))
	assert.False(t, mr.Exists(redisKeyPrefix+Fingerprint(n)))

	dup, err = svc.CheckDuplicate(ctx, n)
	require.NoError(t, err)
	assert.False(t, dup)
}

func TestRedisServiceForceSend(t *testing.T) {
	t.Parallel()

	svc, mr := newRedisService(t, time.Second)
	ctx := context.Background()

	n := newNotification()
	dup, err := svc.CheckDuplicate(ctx, n)
	require.NoError(t, err)
	assert.False(t, dup)

	// 刚占位的指纹，强制发送不受去重限制
	forced := newNotification()
	forced.ForceSend = true
	dup, err = svc.CheckDuplicate(ctx, forced)
	require.NoError(t, err)
	assert.False(t, dup)

	// 强制发送的MarkSent和Release都不碰缓存
	require.NoError(t, svc.MarkSent(ctx, forced))
	require.NoError(t, svc.Release(ctx, forced))
	assert.True(t, mr.Exists(redisKeyPrefix+Fingerprint(n)))

	dup, err = svc.CheckDuplicate(ctx, n)
	require.NoError(t, err)
	assert.True(t, dup)
}

func TestRedisServiceErrorPropagation(t *testing.T) {
	t.Parallel()

	svc, mr := newRedisService(t, time.Second)
	mr.Close()

	_, err := svc.CheckDuplicate(context.Background(), newNotification())
	assert.Error(t, err)
}
