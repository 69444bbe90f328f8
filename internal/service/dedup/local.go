package dedup

import (
	"context"
	"sync"
	"time"

	"gitee.com/flycash/notification-dispatch/internal/domain"
	ca "github.com/patrickmn/go-cache"
)

// LocalService 基于进程内缓存的去重实现
// 条目带TTL，命中即视为窗口期内，过期条目等同不存在，
// 进程重启后缓存清空是可接受的取舍
type LocalService struct {
	mu     sync.Mutex
	c      *ca.Cache
	window time.Duration
}

// NewLocalService 创建本地去重服务，window<=0时使用默认窗口
func NewLocalService(window time.Duration) *LocalService {
	if window <= 0 {
		window = DefaultWindow
	}
	return &LocalService{
		c:      ca.New(window, window),
		window: window,
	}
}

func (s *LocalService) CheckDuplicate(_ context.Context, n domain.Notification) (bool, error) {
	// 强制发送不查缓存也不占位
	if n.ForceSend {
		return false, nil
	}

	key := Fingerprint(n)

	// 检查和占位必须在同一把锁内完成，
	// 否则两个并发的相同通知会同时通过检测
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.c.Get(key); ok {
		return true, nil
	}
	s.c.Set(key, time.Now(), s.window)
	return false, nil
}

func (s *LocalService) MarkSent(_ context.Context, n domain.Notification) error {
	// 强制发送不污染缓存
	if n.ForceSend {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.c.Set(Fingerprint(n), time.Now(), s.window)
	return nil
}

func (s *LocalService) Release(_ context.Context, n domain.Notification) error {
	if n.ForceSend {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.c.Delete(Fingerprint(n))
	return nil
}
