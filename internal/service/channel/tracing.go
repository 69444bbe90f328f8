package channel

import (
	"context"
	"strconv"

	"gitee.com/flycash/notification-dispatch/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracingChannel 为渠道实现添加链路追踪的装饰器
type tracingChannel struct {
	channel Channel
	name    domain.Channel
	tracer  trace.Tracer
}

// NewTracingChannel 创建一个新的带有链路追踪的渠道
func NewTracingChannel(name domain.Channel, c Channel) Channel {
	return &tracingChannel{
		channel: c,
		name:    name,
		tracer:  otel.Tracer("notification-dispatch/channel"),
	}
}

func (t *tracingChannel) Send(ctx context.Context, notification domain.Notification) error {
	ctx, span := t.tracer.Start(ctx, "Channel.Send",
		trace.WithAttributes(
			attribute.String("notification.channel", string(t.name)),
			attribute.String("notification.type", notification.Type),
			attribute.String("notification.recipientId", strconv.FormatInt(notification.RecipientID, 10)),
			attribute.String("notification.sourceType", notification.SourceType),
			attribute.String("notification.sourceId", strconv.FormatInt(notification.SourceID, 10)),
		))
	defer span.End()

	err := t.channel.Send(ctx, notification)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return err
}
