package channel

import (
	"context"
	"fmt"

	"gitee.com/flycash/notification-dispatch/internal/domain"
	"gitee.com/flycash/notification-dispatch/internal/errs"
	"gitee.com/flycash/notification-dispatch/internal/repository"
)

// inAppChannel 站内信渠道，投递即落库一条站内信
type inAppChannel struct {
	repo repository.MessageRepository
}

// NewInAppChannel 创建站内信渠道
func NewInAppChannel(repo repository.MessageRepository) Channel {
	return &inAppChannel{
		repo: repo,
	}
}

func (c *inAppChannel) Send(ctx context.Context, notification domain.Notification) error {
	_, err := c.repo.Create(ctx, domain.Message{
		RecipientID: notification.RecipientID,
		Type:        notification.Type,
		Category:    notification.Category,
		Title:       notification.Title,
		Content:     notification.Content,
		LinkURL:     notification.LinkURL,
		ExtraData:   notification.ExtraData,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrCreateMessageFailed, err)
	}
	return nil
}
