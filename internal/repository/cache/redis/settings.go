package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gitee.com/flycash/notification-dispatch/internal/domain"
	"gitee.com/flycash/notification-dispatch/internal/repository/cache"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const defaultExpiration = 30 * time.Minute

// Cache 多实例共享的设置缓存
type Cache struct {
	rdb redis.Cmdable
}

func NewCache(rdb redis.Cmdable) *Cache {
	return &Cache{
		rdb: rdb,
	}
}

func (c *Cache) Get(ctx context.Context, userID int64) (domain.UserNotificationSettings, error) {
	key := cache.SettingsKey(userID)
	// 从Redis获取数据
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// 键不存在
			return domain.UserNotificationSettings{}, cache.ErrKeyNotFound
		}
		return domain.UserNotificationSettings{}, fmt.Errorf("failed to get settings from redis %w", err)
	}

	// 反序列化数据
	var settings domain.UserNotificationSettings
	err = json.Unmarshal([]byte(val), &settings)
	if err != nil {
		return domain.UserNotificationSettings{}, fmt.Errorf("failed to unmarshal settings data %w", err)
	}

	return settings, nil
}

func (c *Cache) Set(ctx context.Context, settings domain.UserNotificationSettings) error {
	key := cache.SettingsKey(settings.UserID)

	// 序列化数据
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings data %w", err)
	}

	// 存储到Redis
	return c.rdb.Set(ctx, key, data, defaultExpiration).Err()
}

func (c *Cache) Del(ctx context.Context, userID int64) error {
	return c.rdb.Del(ctx, cache.SettingsKey(userID)).Err()
}
