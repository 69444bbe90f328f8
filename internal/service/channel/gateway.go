package channel

import (
	"context"
	"fmt"

	"gitee.com/flycash/notification-dispatch/internal/domain"
	"gitee.com/flycash/notification-dispatch/internal/errs"
	"github.com/gotomicro/ego/core/elog"
)

//go:generate mockgen -source=./gateway.go -destination=./mocks/gateway.mock.go -package=channelmocks -typed Gateway

// Gateway 外部发送网关
// 邮件、企业微信、短信的具体协议对接（SMTP、IM网关鉴权等）
// 由业务应用实现并注入，本引擎只依赖这一层抽象
type Gateway interface {
	Send(ctx context.Context, notification domain.Notification) error
}

// gatewayChannel 包装外部网关的渠道实现
type gatewayChannel struct {
	name    domain.Channel
	gateway Gateway
}

// NewGatewayChannel 创建委托给外部网关的渠道
func NewGatewayChannel(name domain.Channel, gateway Gateway) Channel {
	return &gatewayChannel{
		name:    name,
		gateway: gateway,
	}
}

func (c *gatewayChannel) Send(ctx context.Context, notification domain.Notification) error {
	if c.gateway == nil {
		return fmt.Errorf("%w: channel = %s", errs.ErrGatewayNotConfigured, c.name)
	}
	return c.gateway.Send(ctx, notification)
}

// consoleChannel 控制台渠道，开发联调环境的网关替身
type consoleChannel struct {
	name   domain.Channel
	logger *elog.Component
}

// NewConsoleChannel 创建控制台渠道
func NewConsoleChannel(name domain.Channel) Channel {
	return &consoleChannel{
		name:   name,
		logger: elog.DefaultLogger,
	}
}

func (c *consoleChannel) Send(_ context.Context, notification domain.Notification) error {
	c.logger.Info("模拟发送通知",
		elog.String("channel", string(c.name)),
		elog.Int64("recipientID", notification.RecipientID),
		elog.String("type", notification.Type),
		elog.String("title", notification.Title),
	)
	return nil
}
