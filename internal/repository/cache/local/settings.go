package local

import (
	"context"
	"time"

	"gitee.com/flycash/notification-dispatch/internal/domain"
	"gitee.com/flycash/notification-dispatch/internal/repository/cache"
	ca "github.com/patrickmn/go-cache"
)

const defaultExpiration = 10 * time.Minute

// Cache 进程内的设置缓存，挡掉热点用户的重复查询
type Cache struct {
	c *ca.Cache
}

func NewLocalCache(c *ca.Cache) *Cache {
	return &Cache{
		c: c,
	}
}

func (l *Cache) Get(_ context.Context, userID int64) (domain.UserNotificationSettings, error) {
	v, ok := l.c.Get(cache.SettingsKey(userID))
	if !ok {
		return domain.UserNotificationSettings{}, cache.ErrKeyNotFound
	}
	return v.(domain.UserNotificationSettings), nil
}

func (l *Cache) Set(_ context.Context, settings domain.UserNotificationSettings) error {
	l.c.Set(cache.SettingsKey(settings.UserID), settings, defaultExpiration)
	return nil
}

func (l *Cache) Del(_ context.Context, userID int64) error {
	l.c.Delete(cache.SettingsKey(userID))
	return nil
}
