package dedup

import (
	"context"
	"fmt"
	"time"

	"gitee.com/flycash/notification-dispatch/internal/domain"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "notification:dedup:"

// RedisService 基于Redis的去重实现
// 引擎多实例部署时使用，SET NX保证检查和占位的原子性
type RedisService struct {
	client redis.Cmdable
	window time.Duration
}

// NewRedisService 创建Redis去重服务，window<=0时使用默认窗口
func NewRedisService(client redis.Cmdable, window time.Duration) *RedisService {
	if window <= 0 {
		window = DefaultWindow
	}
	return &RedisService{
		client: client,
		window: window,
	}
}

func (s *RedisService) CheckDuplicate(ctx context.Context, n domain.Notification) (bool, error) {
	// 强制发送不查缓存也不占位
	if n.ForceSend {
		return false, nil
	}

	// SET NX：键不存在时写入成功表示占位成功，即非重复
	ok, err := s.client.SetNX(ctx, s.key(n), time.Now().UnixMilli(), s.window).Result()
	if err != nil {
		return false, fmt.Errorf("重复通知检测失败: %w", err)
	}
	return !ok, nil
}

func (s *RedisService) MarkSent(ctx context.Context, n domain.Notification) error {
	// 强制发送不污染缓存
	if n.ForceSend {
		return nil
	}
	return s.client.Set(ctx, s.key(n), time.Now().UnixMilli(), s.window).Err()
}

func (s *RedisService) Release(ctx context.Context, n domain.Notification) error {
	if n.ForceSend {
		return nil
	}
	return s.client.Del(ctx, s.key(n)).Err()
}

func (s *RedisService) key(n domain.Notification) string {
	return redisKeyPrefix + Fingerprint(n)
}
