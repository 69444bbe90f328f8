package retention

import (
	"context"
	"time"

	"gitee.com/flycash/notification-dispatch/internal/repository"
	"github.com/gotomicro/ego/core/elog"
)

const (
	// defaultMessageRetention 站内信保留时长
	defaultMessageRetention = 90 * 24 * time.Hour
	// defaultLogRetention 投递记录保留时长
	defaultLogRetention = 30 * 24 * time.Hour
)

// Cron 定期清理过期的站内信和投递记录
type Cron struct {
	msgRepo repository.MessageRepository
	logRepo repository.DeliveryLogRepository

	messageRetention time.Duration
	logRetention     time.Duration
	logger           *elog.Component
}

func NewCron(msgRepo repository.MessageRepository, logRepo repository.DeliveryLogRepository) *Cron {
	return &Cron{
		msgRepo:          msgRepo,
		logRepo:          logRepo,
		messageRetention: defaultMessageRetention,
		logRetention:     defaultLogRetention,
		logger:           elog.DefaultLogger,
	}
}

func (c *Cron) Do(ctx context.Context) error {
	now := time.Now()

	msgCtx, cancel := context.WithTimeout(ctx, time.Second*30)
	cnt, err := c.msgRepo.DeleteBefore(msgCtx, now.Add(-c.messageRetention).UnixMilli())
	cancel()
	if err != nil {
		c.logger.Error("清理过期站内信失败", elog.FieldErr(err))
	} else {
		c.logger.Info("清理过期站内信完成", elog.Int64("count", cnt))
	}

	logCtx, cancel := context.WithTimeout(ctx, time.Second*30)
	cnt, err = c.logRepo.DeleteBefore(logCtx, now.Add(-c.logRetention).UnixMilli())
	cancel()
	if err != nil {
		c.logger.Error("清理过期投递记录失败", elog.FieldErr(err))
		return err
	}
	c.logger.Info("清理过期投递记录完成", elog.Int64("count", cnt))
	return nil
}
