package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"gitee.com/flycash/notification-dispatch/internal/domain"
	"gitee.com/flycash/notification-dispatch/internal/pkg/idgen"
	"gitee.com/flycash/notification-dispatch/internal/repository/dao"
	"github.com/ecodeclub/ekit/slice"
)

// MessageRepository 站内信仓储接口
type MessageRepository interface {
	// Create 创建站内信，返回带ID的记录
	Create(ctx context.Context, message domain.Message) (domain.Message, error)
	// FindByRecipient 按接收人分页查询
	FindByRecipient(ctx context.Context, recipientID int64, offset, limit int) ([]domain.Message, error)
	// MarkRead 标记已读
	MarkRead(ctx context.Context, recipientID, id int64) error
	// DeleteBefore 清理指定时间之前的已读站内信
	DeleteBefore(ctx context.Context, utime int64) (int64, error)
}

type messageRepository struct {
	d   dao.MessageDAO
	gen *idgen.Generator
}

// NewMessageRepository 创建站内信仓储
func NewMessageRepository(d dao.MessageDAO, gen *idgen.Generator) MessageRepository {
	return &messageRepository{
		d:   d,
		gen: gen,
	}
}

func (r *messageRepository) Create(ctx context.Context, message domain.Message) (domain.Message, error) {
	if message.ID == 0 {
		key := fmt.Sprintf("%s:%d", message.Type, message.Ctime)
		message.ID = r.gen.GenerateID(message.RecipientID, key)
	}

	created, err := r.d.Create(ctx, r.toEntity(message))
	if err != nil {
		return domain.Message{}, err
	}
	return r.toDomain(created), nil
}

func (r *messageRepository) FindByRecipient(ctx context.Context, recipientID int64, offset, limit int) ([]domain.Message, error) {
	entities, err := r.d.FindByRecipient(ctx, recipientID, offset, limit)
	if err != nil {
		return nil, err
	}
	return slice.Map(entities, func(_ int, src dao.Message) domain.Message {
		return r.toDomain(src)
	}), nil
}

func (r *messageRepository) MarkRead(ctx context.Context, recipientID, id int64) error {
	return r.d.MarkRead(ctx, recipientID, id)
}

func (r *messageRepository) DeleteBefore(ctx context.Context, utime int64) (int64, error) {
	return r.d.DeleteBefore(ctx, utime)
}

func (r *messageRepository) toDomain(e dao.Message) domain.Message {
	var extra map[string]string
	if len(e.ExtraData) > 0 {
		// 脏数据只丢附加字段，不影响正文展示
		_ = json.Unmarshal(e.ExtraData, &extra)
	}
	return domain.Message{
		ID:          e.ID,
		RecipientID: e.RecipientID,
		Type:        e.Type,
		Category:    domain.Category(e.Category),
		Title:       e.Title,
		Content:     e.Content,
		LinkURL:     e.LinkURL,
		ExtraData:   extra,
		Read:        e.ReadStatus,
		Ctime:       e.Ctime,
	}
}

func (r *messageRepository) toEntity(m domain.Message) dao.Message {
	extra, _ := json.Marshal(m.ExtraData)
	return dao.Message{
		ID:          m.ID,
		RecipientID: m.RecipientID,
		Type:        m.Type,
		Category:    string(m.Category),
		Title:       m.Title,
		Content:     m.Content,
		LinkURL:     m.LinkURL,
		ExtraData:   extra,
		ReadStatus:  m.Read,
	}
}
