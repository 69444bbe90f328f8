package dao

import (
	"context"
	"time"

	"github.com/ego-component/egorm"
)

// DeliveryLog 投递记录表，一次渠道尝试一条
type DeliveryLog struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	RecipientID  int64  `gorm:"type:BIGINT;NOT NULL;index:idx_recipient;comment:'接收人用户ID'"`
	Type         string `gorm:"type:VARCHAR(64);NOT NULL;comment:'事件类型'"`
	SourceType   string `gorm:"type:VARCHAR(64);comment:'来源业务实体类型'"`
	SourceID     int64  `gorm:"type:BIGINT;comment:'来源业务实体ID'"`
	Channel      string `gorm:"type:VARCHAR(16);NOT NULL;comment:'发送渠道'"`
	Status       string `gorm:"type:ENUM('SUCCEEDED','FAILED');NOT NULL;comment:'发送状态'"`
	ErrorMessage string `gorm:"type:VARCHAR(1024);comment:'失败原因'"`
	Ctime        int64  `gorm:"index:idx_ctime"`
}

// TableName 重命名表
func (DeliveryLog) TableName() string {
	return "delivery_logs"
}

type DeliveryLogDAO interface {
	// BatchCreate 批量创建投递记录
	BatchCreate(ctx context.Context, logs []DeliveryLog) error
	// DeleteBefore 删除指定时间之前的投递记录，返回删除行数
	DeleteBefore(ctx context.Context, ctime int64) (int64, error)
}

type deliveryLogDAO struct {
	db *egorm.Component
}

// NewDeliveryLogDAO 创建投递记录DAO实例
func NewDeliveryLogDAO(db *egorm.Component) DeliveryLogDAO {
	return &deliveryLogDAO{
		db: db,
	}
}

func (d *deliveryLogDAO) BatchCreate(ctx context.Context, logs []DeliveryLog) error {
	if len(logs) == 0 {
		return nil
	}
	now := time.Now().UnixMilli()
	for i := range logs {
		logs[i].Ctime = now
	}
	return d.db.WithContext(ctx).Create(&logs).Error
}

func (d *deliveryLogDAO) DeleteBefore(ctx context.Context, ctime int64) (int64, error) {
	res := d.db.WithContext(ctx).Where("ctime < ?", ctime).Delete(&DeliveryLog{})
	return res.RowsAffected, res.Error
}
