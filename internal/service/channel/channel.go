package channel

import (
	"context"

	"gitee.com/flycash/notification-dispatch/internal/domain"
)

//go:generate mockgen -source=./channel.go -destination=./mocks/channel.mock.go -package=channelmocks -typed Channel

// Channel 渠道接口
// 实现方只负责把通知送出去，失败通过error返回，
// 编排层会把error转成该渠道的失败结果，不会影响其他渠道
type Channel interface {
	// Send 发送通知
	Send(ctx context.Context, notification domain.Notification) error
}

// Registry 渠道注册表，按渠道标识路由到具体实现
type Registry struct {
	channels map[domain.Channel]Channel
}

// NewRegistry 创建渠道注册表
func NewRegistry(channels map[domain.Channel]Channel) *Registry {
	return &Registry{
		channels: channels,
	}
}

// Handler 查找渠道实现，未注册时second返回false
func (r *Registry) Handler(ch domain.Channel) (Channel, bool) {
	handler, ok := r.channels[ch]
	return handler, ok
}
