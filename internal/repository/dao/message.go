package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gitee.com/flycash/notification-dispatch/internal/errs"
	pkgdao "gitee.com/flycash/notification-dispatch/internal/pkg/dao"
	"github.com/ego-component/egorm"
	"github.com/go-sql-driver/mysql"
)

// Message 站内信表
type Message struct {
	ID          int64       `gorm:"primaryKey;comment:'雪花算法ID'"`
	RecipientID int64       `gorm:"type:BIGINT;NOT NULL;index:idx_recipient_read,priority:1;comment:'接收人用户ID'"`
	Type        string      `gorm:"type:VARCHAR(64);NOT NULL;comment:'事件类型'"`
	Category    string      `gorm:"type:VARCHAR(32);NOT NULL;comment:'通知分类'"`
	Title       string      `gorm:"type:VARCHAR(256);NOT NULL;comment:'标题'"`
	Content     string      `gorm:"type:TEXT;comment:'正文'"`
	LinkURL     string      `gorm:"type:VARCHAR(512);comment:'跳转链接'"`
	ExtraData   pkgdao.JSON `gorm:"type:JSON;comment:'透传的附加数据'"`
	ReadStatus  bool        `gorm:"NOT NULL;DEFAULT:0;index:idx_recipient_read,priority:2;comment:'是否已读'"`
	Ctime       int64
	Utime       int64
}

// TableName 重命名表
func (Message) TableName() string {
	return "messages"
}

type MessageDAO interface {
	// Create 创建单条站内信
	Create(ctx context.Context, data Message) (Message, error)
	// FindByRecipient 按接收人分页查询，按创建时间倒序
	FindByRecipient(ctx context.Context, recipientID int64, offset, limit int) ([]Message, error)
	// MarkRead 标记已读
	MarkRead(ctx context.Context, recipientID, id int64) error
	// DeleteBefore 删除指定时间之前的已读站内信，返回删除行数
	DeleteBefore(ctx context.Context, utime int64) (int64, error)
}

type messageDAO struct {
	db *egorm.Component
}

// NewMessageDAO 创建站内信DAO实例
func NewMessageDAO(db *egorm.Component) MessageDAO {
	return &messageDAO{
		db: db,
	}
}

func (d *messageDAO) Create(ctx context.Context, data Message) (Message, error) {
	now := time.Now().UnixMilli()
	data.Ctime, data.Utime = now, now

	if err := d.db.WithContext(ctx).Create(&data).Error; err != nil {
		if isUniqueConstraintError(err) {
			return Message{}, fmt.Errorf("%w", errs.ErrMessageDuplicate)
		}
		return Message{}, err
	}
	return data, nil
}

func (d *messageDAO) FindByRecipient(ctx context.Context, recipientID int64, offset, limit int) ([]Message, error) {
	var messages []Message
	err := d.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("ctime DESC").
		Offset(offset).
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (d *messageDAO) MarkRead(ctx context.Context, recipientID, id int64) error {
	return d.db.WithContext(ctx).Model(&Message{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Updates(map[string]any{
			"read_status": true,
			"utime":       time.Now().UnixMilli(),
		}).Error
}

func (d *messageDAO) DeleteBefore(ctx context.Context, utime int64) (int64, error) {
	res := d.db.WithContext(ctx).
		Where("read_status = ? AND utime < ?", true, utime).
		Delete(&Message{})
	return res.RowsAffected, res.Error
}

// isUniqueConstraintError 检查是否是唯一索引冲突错误
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	me := new(mysql.MySQLError)
	if ok := errors.As(err, &me); ok {
		const uniqueIndexErrNo uint16 = 1062
		return me.Number == uniqueIndexErrNo
	}
	return false
}
