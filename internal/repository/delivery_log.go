package repository

import (
	"context"
	"fmt"

	"gitee.com/flycash/notification-dispatch/internal/domain"
	"gitee.com/flycash/notification-dispatch/internal/errs"
	"gitee.com/flycash/notification-dispatch/internal/repository/dao"
	"github.com/ecodeclub/ekit/slice"
)

// DeliveryLogRepository 投递记录仓储接口
type DeliveryLogRepository interface {
	// BatchCreate 批量写入投递记录
	BatchCreate(ctx context.Context, logs []domain.DeliveryLog) error
	// DeleteBefore 清理指定时间之前的投递记录
	DeleteBefore(ctx context.Context, ctime int64) (int64, error)
}

type deliveryLogRepository struct {
	d dao.DeliveryLogDAO
}

// NewDeliveryLogRepository 创建投递记录仓储
func NewDeliveryLogRepository(d dao.DeliveryLogDAO) DeliveryLogRepository {
	return &deliveryLogRepository{
		d: d,
	}
}

func (r *deliveryLogRepository) BatchCreate(ctx context.Context, logs []domain.DeliveryLog) error {
	if len(logs) == 0 {
		return nil
	}
	entities := slice.Map(logs, func(_ int, src domain.DeliveryLog) dao.DeliveryLog {
		return dao.DeliveryLog{
			RecipientID:  src.RecipientID,
			Type:         src.Type,
			SourceType:   src.SourceType,
			SourceID:     src.SourceID,
			Channel:      string(src.Channel),
			Status:       string(src.Status),
			ErrorMessage: src.ErrorMessage,
		}
	})
	if err := r.d.BatchCreate(ctx, entities); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrCreateDeliveryLog, err)
	}
	return nil
}

func (r *deliveryLogRepository) DeleteBefore(ctx context.Context, ctime int64) (int64, error) {
	return r.d.DeleteBefore(ctx, ctime)
}
